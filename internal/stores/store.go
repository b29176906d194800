// Package stores keeps the client-side copy of each backend resource along
// with its loading and error state.
package stores

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/otcheredev/clinic-desk/internal/apperr"
	"github.com/otcheredev/clinic-desk/internal/models"
	"github.com/otcheredev/clinic-desk/pkg/logger"
	"github.com/otcheredev/clinic-desk/pkg/metrics"
)

// Auditor persists a record of each mutation. *repository.AuditRepository implements it.
type Auditor interface {
	Record(ctx context.Context, entry *models.AuditLog) error
}

// Option configures a store
type Option func(*base)

// WithAuditor records every mutation through a
func WithAuditor(a Auditor) Option {
	return func(b *base) {
		b.auditor = a
	}
}

// WithMetrics counts actions on m
func WithMetrics(m *metrics.Metrics) Option {
	return func(b *base) {
		b.metrics = m
	}
}

// WithActor names the staff member attached to audit records
func WithActor(actor func() string) Option {
	return func(b *base) {
		b.actor = actor
	}
}

// WithSampleData makes dashboard reads fall back to fixed sample data when
// the backend fails. Meant for development against no backend.
func WithSampleData(enabled bool) Option {
	return func(b *base) {
		b.sampleData = enabled
	}
}

// base is the state every store shares. mu guards the embedding store's
// fields too and is never held across a backend call.
type base struct {
	mu      sync.RWMutex
	name    string
	loading bool
	errMsg  string
	// seq is the generation of the latest fetch issued
	seq uint64

	auditor Auditor
	metrics *metrics.Metrics
	actor   func() string
	log     zerolog.Logger

	sampleData bool
}

func (b *base) init(name string, opts []Option) {
	b.name = name
	b.log = logger.Component(name + "_store")
	for _, opt := range opts {
		opt(b)
	}
}

// IsLoading reports whether a fetch is in flight
func (b *base) IsLoading() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.loading
}

// Err returns the message of the last failure, or ""
func (b *base) Err() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.errMsg
}

// beginFetch issues a new generation. Caller holds mu.
func (b *base) beginFetch() uint64 {
	b.seq++
	b.loading = true
	b.errMsg = ""
	return b.seq
}

// finishFetch reports whether gen is still the latest and, if so, clears
// the loading flag and stores the failure. Caller holds mu.
func (b *base) finishFetch(gen uint64, err error, fallback string) bool {
	if gen != b.seq {
		b.log.Debug().Uint64("generation", gen).Msg("Discarding superseded fetch")
		return false
	}
	b.loading = false
	if err != nil {
		b.errMsg = apperr.Message(err, fallback)
	}
	return true
}

// beginAction clears the error before a mutation
func (b *base) beginAction() {
	b.mu.Lock()
	b.errMsg = ""
	b.mu.Unlock()
}

// fail stores err as the current failure and returns it
func (b *base) fail(err error, fallback string) error {
	b.mu.Lock()
	b.errMsg = apperr.Message(err, fallback)
	b.mu.Unlock()
	return err
}

// setErr stores a failure raised before any backend call
func (b *base) setErr(err error) error {
	return b.fail(err, err.Error())
}

// observe counts the action and writes an audit record for mutations
func (b *base) observe(ctx context.Context, action string, id int, started time.Time, err error) {
	b.metrics.ObserveAction(b.name, action, err)

	if err != nil {
		b.log.Warn().Err(err).Str("action", action).Int("id", id).Msg("Action failed")
	} else {
		b.log.Debug().Str("action", action).Int("id", id).Msg("Action completed")
	}

	if b.auditor == nil {
		return
	}

	entry := &models.AuditLog{
		Action:       action,
		ResourceType: b.name,
		Status:       models.AuditStatusSuccess,
		Duration:     time.Since(started).Milliseconds(),
	}
	if id > 0 {
		entry.ResourceID = strconv.Itoa(id)
	}
	if b.actor != nil {
		entry.UserEmail = b.actor()
	}
	if err != nil {
		entry.Status = models.AuditStatusFailure
		entry.ErrorMessage = err.Error()
	}

	if auditErr := b.auditor.Record(ctx, entry); auditErr != nil {
		b.log.Error().Err(auditErr).Str("action", action).Msg("Failed to record audit entry")
	}
}

// removeByID returns items without the entry whose id matches, preserving order
func removeByID[T any](items []T, id int, idOf func(T) int) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if idOf(item) != id {
			out = append(out, item)
		}
	}
	return out
}

// replaceByID swaps in item for the entry with the same id and reports whether one was found
func replaceByID[T any](items []T, item T, idOf func(T) int) bool {
	for i := range items {
		if idOf(items[i]) == idOf(item) {
			items[i] = item
			return true
		}
	}
	return false
}

func clone[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return append(make([]T, 0, len(items)), items...)
}
