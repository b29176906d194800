package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/otcheredev/clinic-desk/internal/cache"
	"github.com/otcheredev/clinic-desk/internal/models"
)

// flakyCache fails writes on demand
type flakyCache struct {
	*cache.MemoryCache
	failWrites bool
}

func (f *flakyCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if f.failWrites {
		return errors.New("disk full")
	}
	return f.MemoryCache.Set(ctx, key, value, ttl)
}

func (f *flakyCache) Delete(ctx context.Context, key string) error {
	if f.failWrites {
		return errors.New("disk full")
	}
	return f.MemoryCache.Delete(ctx, key)
}

type StoreSuite struct {
	suite.Suite
	storage *flakyCache
	store   *Store
	ctx     context.Context
}

func TestStoreSuite(t *testing.T) {
	suite.Run(t, new(StoreSuite))
}

func (s *StoreSuite) SetupTest() {
	s.storage = &flakyCache{MemoryCache: cache.NewMemoryCache()}
	s.store = NewStore(s.storage, DefaultKey)
	s.ctx = context.Background()
	s.Require().NoError(s.store.Load(s.ctx))
}

func (s *StoreSuite) TearDownTest() {
	s.storage.Close()
}

func session(token string) *models.Session {
	return &models.Session{
		User:         models.UserInfo{ID: "u1", Email: "staff@clinic.test"},
		AccessToken:  token,
		RefreshToken: "refresh",
	}
}

// persistedAuthenticated is the storage side of the auth invariant
func (s *StoreSuite) persistedAuthenticated() bool {
	fresh := NewStore(s.storage, DefaultKey)
	s.Require().NoError(fresh.Load(s.ctx))
	return fresh.IsAuthenticated()
}

func (s *StoreSuite) TestStartsAnonymousWithoutStorage() {
	s.Equal(Anonymous, s.store.State())
	s.Empty(s.store.Token())
	s.False(s.store.HasPersistedSession(s.ctx))
}

func (s *StoreSuite) TestInvariantAcrossTransitions() {
	steps := []*models.Session{session("a"), nil, session("b"), session(""), session("c"), nil, nil}

	for _, step := range steps {
		if step == nil {
			s.Require().NoError(s.store.ClearAuth(s.ctx))
		} else {
			s.Require().NoError(s.store.SetAuth(s.ctx, step))
		}
		s.Equal(s.persistedAuthenticated(), s.store.IsAuthenticated())
	}
}

func (s *StoreSuite) TestSetAuthPersistsForNextProcess() {
	s.Require().NoError(s.store.SetAuth(s.ctx, session("tok")))

	next := NewStore(s.storage, DefaultKey)
	s.Require().NoError(next.Load(s.ctx))

	s.Equal(Authenticated, next.State())
	s.Equal("tok", next.Token())
	user, ok := next.User()
	s.True(ok)
	s.Equal("staff@clinic.test", user.Email)
}

func (s *StoreSuite) TestMalformedStorageIsAnonymous() {
	s.Require().NoError(s.storage.Set(s.ctx, DefaultKey, []byte("{oops"), 0))

	s.Require().NoError(s.store.Load(s.ctx))

	s.Equal(Anonymous, s.store.State())
	s.False(s.store.HasPersistedSession(s.ctx))
}

func (s *StoreSuite) TestStorageFailureLeavesStateUntouched() {
	s.Require().NoError(s.store.SetAuth(s.ctx, session("old")))
	s.storage.failWrites = true

	s.Error(s.store.SetAuth(s.ctx, session("new")))
	s.Equal("old", s.store.Token())

	s.Error(s.store.ClearAuth(s.ctx))
	s.True(s.store.IsAuthenticated())
	s.True(s.persistedAuthenticated())
}

func TestStore_CorruptSessionFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"authSession":{"value":"eyJ`), 0o600))
	ctx := context.Background()

	storage, err := cache.NewFileCache(path)
	require.NoError(t, err)
	store := NewStore(storage, "")

	require.NoError(t, store.Load(ctx))
	assert.Equal(t, Anonymous, store.State())
	assert.False(t, store.HasPersistedSession(ctx))
	require.NoError(t, store.ClearAuth(ctx))

	require.NoError(t, store.SetAuth(ctx, session("fresh")))
	next := NewStore(storage, "")
	require.NoError(t, next.Load(ctx))
	assert.Equal(t, "fresh", next.Token())
}

type stubAuth struct {
	sess *models.Session
	err  error
}

func (a stubAuth) Login(ctx context.Context, email, password string) (*models.Session, error) {
	return a.sess, a.err
}

func TestStore_Login(t *testing.T) {
	ctx := context.Background()
	storage := cache.NewMemoryCache()
	defer storage.Close()
	store := NewStore(storage, "")

	_, err := store.Login(ctx, stubAuth{err: errors.New("bad credentials")}, "e", "p")
	require.Error(t, err)
	assert.False(t, store.IsAuthenticated())

	sess, err := store.Login(ctx, stubAuth{sess: session("tok")}, "e", "p")
	require.NoError(t, err)
	assert.Equal(t, "tok", sess.AccessToken)
	assert.True(t, store.HasPersistedSession(ctx))
	assert.Equal(t, "staff@clinic.test", store.UserEmail())
}
