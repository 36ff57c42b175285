// Package syncer decides when a sync session may run and orchestrates the
// session itself: snapshot the pending records, walk the kinds in a fixed
// order, upload sequentially, and write results back through the store.
package syncer

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/keepsakeapp/keepsake/internal/logging"
	"github.com/keepsakeapp/keepsake/internal/models"
	"github.com/keepsakeapp/keepsake/internal/upload"
)

// Store is the record-store surface the engine needs. Only the store mutates
// sync_state; the engine goes through MarkSynced/Delete and never touches
// record fields itself.
type Store interface {
	PendingExperiences(ctx context.Context) ([]models.Experience, error)
	PendingEmotions(ctx context.Context) ([]models.EmotionCapture, error)
	PendingMessages(ctx context.Context) ([]models.ChatMessage, error)
	PendingHealthEntries(ctx context.Context) ([]models.HealthEntry, error)
	PendingCount(ctx context.Context) (int, error)
	MarkSynced(ctx context.Context, kind models.Kind, id string) error
	Delete(ctx context.Context, kind models.Kind, id string) error
	AutoSyncEnabled(ctx context.Context) bool
	SetLastSyncAt(ctx context.Context, t time.Time) error
}

// Result summarizes one trigger. Started is false when the policy declined
// or another session was already in flight.
type Result struct {
	Started     bool
	Uploaded    int
	Failed      int
	CompletedAt time.Time
}

// Engine runs at most one sync session at a time. Triggers that arrive while
// a session is running are dropped, not queued; the records they would have
// covered wait for the next qualifying trigger.
type Engine struct {
	store Store
	api   upload.API
	log   logging.Logger

	// deleteAfterSync holds the per-kind retention choice: true means a
	// confirmed record is removed locally instead of being kept as history.
	deleteAfterSync map[models.Kind]bool

	running atomic.Bool
	now     func() time.Time
}

type Option func(*Engine)

// WithDeleteAfterSync sets the kinds whose records are purged once the
// backend confirms them. Everything else is retained with sync_state=Synced.
func WithDeleteAfterSync(kinds ...models.Kind) Option {
	return func(e *Engine) {
		for _, k := range kinds {
			e.deleteAfterSync[k] = true
		}
	}
}

func New(store Store, api upload.API, log logging.Logger, opts ...Option) *Engine {
	e := &Engine{
		store:           store,
		api:             api,
		log:             log,
		deleteAfterSync: make(map[models.Kind]bool),
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Running reports whether a session is in flight.
func (e *Engine) Running() bool {
	return e.running.Load()
}

// Trigger evaluates the sync policy and, when it passes, starts a session on
// a background goroutine. Returns whether a session was started. Called on
// every transition into Wi-Fi reachability.
func (e *Engine) Trigger(ctx context.Context) bool {
	if !e.shouldSync(ctx) {
		return false
	}
	if !e.running.CompareAndSwap(false, true) {
		e.log.Debug(ctx, "sync trigger dropped, session already running")
		return false
	}
	go func() {
		defer e.running.Store(false)
		e.runSession(ctx)
	}()
	return true
}

// SyncNow evaluates the same policy and runs the session inline. Used by the
// user-initiated "sync now" action.
func (e *Engine) SyncNow(ctx context.Context) Result {
	if !e.shouldSync(ctx) {
		return Result{}
	}
	if !e.running.CompareAndSwap(false, true) {
		return Result{}
	}
	defer e.running.Store(false)
	return e.runSession(ctx)
}

// shouldSync is the policy: auto-sync enabled and at least one pending
// record anywhere.
func (e *Engine) shouldSync(ctx context.Context) bool {
	if !e.store.AutoSyncEnabled(ctx) {
		return false
	}
	n, err := e.store.PendingCount(ctx)
	if err != nil {
		e.log.Error(ctx, "failed to count pending records", "error", err)
		return false
	}
	return n > 0
}

// runSession performs one complete pass. The pending set is snapshotted at
// session start: records created while the session runs wait for the next
// one. Kinds go in fixed order with experiences first (attachment-bearing,
// slowest) and records upload strictly sequentially; one record's failure
// never aborts the session. last_sync_at advances unconditionally at the
// end: it means "last attempt", not "last full success".
func (e *Engine) runSession(ctx context.Context) Result {
	res := Result{Started: true}
	e.log.Info(ctx, "sync session started")

	experiences := e.pendingExperiences(ctx)
	emotions := e.pendingEmotions(ctx)
	messages := e.pendingMessages(ctx)
	health := e.pendingHealthEntries(ctx)

loop:
	for _, kind := range models.KindsInSyncOrder {
		switch kind {
		case models.KindExperience:
			for i := range experiences {
				if ctx.Err() != nil {
					break loop
				}
				e.uploadOne(ctx, &res, kind, experiences[i].ID, func(ctx context.Context) error {
					return e.api.UploadExperience(ctx, &experiences[i])
				})
			}
		case models.KindEmotion:
			for i := range emotions {
				if ctx.Err() != nil {
					break loop
				}
				e.uploadOne(ctx, &res, kind, emotions[i].ID, func(ctx context.Context) error {
					return e.api.UploadEmotion(ctx, &emotions[i])
				})
			}
		case models.KindMessage:
			for i := range messages {
				if ctx.Err() != nil {
					break loop
				}
				e.uploadOne(ctx, &res, kind, messages[i].ID, func(ctx context.Context) error {
					return e.api.UploadMessage(ctx, &messages[i])
				})
			}
		case models.KindHealth:
			for i := range health {
				if ctx.Err() != nil {
					break loop
				}
				e.uploadOne(ctx, &res, kind, health[i].ID, func(ctx context.Context) error {
					return e.api.UploadHealth(ctx, &health[i])
				})
			}
		}
	}

	res.CompletedAt = e.now()
	if err := e.store.SetLastSyncAt(ctx, res.CompletedAt); err != nil {
		e.log.Error(ctx, "failed to record last sync time", "error", err)
	}
	e.log.Info(ctx, "sync session finished",
		"uploaded", res.Uploaded, "failed", res.Failed)
	return res
}

// uploadOne sends one record and applies the outcome. A failure leaves the
// record pending for a future session.
func (e *Engine) uploadOne(ctx context.Context, res *Result, kind models.Kind, id string, send func(ctx context.Context) error) {
	if err := send(ctx); err != nil {
		e.log.Warn(ctx, "upload failed, record stays pending",
			"kind", string(kind), "id", id, "error", err)
		res.Failed++
		return
	}

	var err error
	if e.deleteAfterSync[kind] {
		err = e.store.Delete(ctx, kind, id)
	} else {
		err = e.store.MarkSynced(ctx, kind, id)
	}
	if err != nil {
		// The server has the record; the local state update failed. The
		// record stays pending and will be re-uploaded (the backend treats
		// uploads as at-least-once).
		e.log.Error(ctx, "failed to update record after upload",
			"kind", string(kind), "id", id, "error", err)
		res.Failed++
		return
	}
	res.Uploaded++
}

func (e *Engine) pendingExperiences(ctx context.Context) []models.Experience {
	list, err := e.store.PendingExperiences(ctx)
	if err != nil {
		e.log.Error(ctx, "failed to snapshot pending experiences", "error", err)
	}
	return list
}

func (e *Engine) pendingEmotions(ctx context.Context) []models.EmotionCapture {
	list, err := e.store.PendingEmotions(ctx)
	if err != nil {
		e.log.Error(ctx, "failed to snapshot pending emotion captures", "error", err)
	}
	return list
}

func (e *Engine) pendingMessages(ctx context.Context) []models.ChatMessage {
	list, err := e.store.PendingMessages(ctx)
	if err != nil {
		e.log.Error(ctx, "failed to snapshot pending messages", "error", err)
	}
	return list
}

func (e *Engine) pendingHealthEntries(ctx context.Context) []models.HealthEntry {
	list, err := e.store.PendingHealthEntries(ctx)
	if err != nil {
		e.log.Error(ctx, "failed to snapshot pending health entries", "error", err)
	}
	return list
}
