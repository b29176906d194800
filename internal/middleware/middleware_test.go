package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/otcheredev/clinic-desk/internal/navigation"
)

type stubChecker struct {
	decision navigation.Decision
	seen     []string
}

func (s *stubChecker) Check(ctx context.Context, target navigation.Route) navigation.Decision {
	s.seen = append(s.seen, target.Name)
	return s.decision
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestGuard(t *testing.T) {
	t.Run("redirects when denied", func(t *testing.T) {
		checker := &stubChecker{decision: navigation.Decision{Redirect: "/login"}}
		rec := httptest.NewRecorder()

		Guard(checker)(okHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/patients", nil))

		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/login", rec.Header().Get("Location"))
		assert.Equal(t, []string{"patients"}, checker.seen)
	})

	t.Run("passes when allowed", func(t *testing.T) {
		checker := &stubChecker{decision: navigation.Decision{Allow: true}}
		rec := httptest.NewRecorder()

		Guard(checker)(okHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/appointments/3", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, []string{"appointments"}, checker.seen)
	})

	t.Run("ignores paths outside pages", func(t *testing.T) {
		checker := &stubChecker{decision: navigation.Decision{Redirect: "/login"}}
		rec := httptest.NewRecorder()

		Guard(checker)(okHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, checker.seen)
	})
}

func TestRecovery(t *testing.T) {
	panicky := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})
	rec := httptest.NewRecorder()

	Recovery(panicky).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestLogging(t *testing.T) {
	rec := httptest.NewRecorder()
	h := Logging(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
}
