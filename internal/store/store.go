// Package store owns the durable record store: it opens the SQLite database,
// applies migrations, exposes the per-entity repositories behind typed
// operations, and maintains the in-memory mirror the UI layer reads.
//
// The store is the single component allowed to mutate sync_state. It is safe
// to call from multiple producer goroutines; the sync engine and the UI go
// through its methods, never through the repositories directly.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pressly/goose/v3"

	"github.com/keepsakeapp/keepsake/internal/logging"
	"github.com/keepsakeapp/keepsake/internal/migrations"
	"github.com/keepsakeapp/keepsake/internal/models"
	"github.com/keepsakeapp/keepsake/internal/store/emotions"
	"github.com/keepsakeapp/keepsake/internal/store/experiences"
	"github.com/keepsakeapp/keepsake/internal/store/health"
	"github.com/keepsakeapp/keepsake/internal/store/messages"
	"github.com/keepsakeapp/keepsake/internal/store/metadata"

	_ "modernc.org/sqlite" // pure-Go SQLite driver
)

type Store struct {
	db  *sql.DB
	log logging.Logger

	experiences experiences.Repository
	emotions    emotions.Repository
	messages    messages.Repository
	health      health.Repository
	metadata    metadata.Repository

	mu     sync.RWMutex
	mirror mirror
	subs   map[models.Kind][]chan struct{}
}

// mirror is the read-only snapshot served to observers. It is rebuilt from
// the database after every mutating call, never patched in place.
type mirror struct {
	experiences []models.Experience
	emotions    []models.EmotionCapture
	messages    []models.ChatMessage
	health      []models.HealthEntry
}

// Open opens (or creates) the database at dsn and applies pending
// migrations. A migration failure is logged and startup continues with
// whatever schema exists: the store may be degraded, but the app never
// fails to launch over it.
func Open(ctx context.Context, dsn string, log logging.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One writer connection keeps SQLite happy under concurrent producers.
	db.SetMaxOpenConns(1)

	if err := runMigrations(ctx, db); err != nil {
		log.Error(ctx, "schema migration failed, continuing with existing schema", "error", err)
	}

	s := &Store{
		db:          db,
		log:         log,
		experiences: experiences.NewSQLiteRepository(db),
		emotions:    emotions.NewSQLiteRepository(db),
		messages:    messages.NewSQLiteRepository(db),
		health:      health.NewSQLiteRepository(db),
		metadata:    metadata.NewSQLiteRepository(db),
		subs:        make(map[models.Kind][]chan struct{}),
	}

	for _, kind := range models.KindsInSyncOrder {
		s.refresh(ctx, kind)
	}
	return s, nil
}

func runMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	return goose.UpContext(ctx, db, ".")
}

func (s *Store) Close() error {
	return s.db.Close()
}

// DB exposes the underlying handle for migration tooling and tests.
func (s *Store) DB() *sql.DB { return s.db }

// --- producers ---

// SaveExperience persists a new experience in Pending state. A missing id or
// created-at is filled in; the mirror is refreshed before returning.
func (s *Store) SaveExperience(ctx context.Context, e *models.Experience) error {
	stampID(&e.ID)
	stampTime(&e.CreatedAt)
	// An unset experienced-at means "right now": the record moment and the
	// recording moment coincide unless the producer says otherwise.
	if e.ExperiencedAt.IsZero() {
		e.ExperiencedAt = e.CreatedAt
	}
	e.SyncState = models.SyncPending
	if err := s.experiences.Insert(ctx, e); err != nil {
		return err
	}
	s.refresh(ctx, models.KindExperience)
	s.notify(models.KindExperience)
	return nil
}

func (s *Store) SaveEmotion(ctx context.Context, c *models.EmotionCapture) error {
	stampID(&c.ID)
	stampTime(&c.CreatedAt)
	c.SyncState = models.SyncPending
	if err := s.emotions.Insert(ctx, c); err != nil {
		return err
	}
	s.refresh(ctx, models.KindEmotion)
	s.notify(models.KindEmotion)
	return nil
}

func (s *Store) SaveMessage(ctx context.Context, m *models.ChatMessage) error {
	stampID(&m.ID)
	stampTime(&m.CreatedAt)
	m.SyncState = models.SyncPending
	if err := s.messages.Insert(ctx, m); err != nil {
		return err
	}
	s.refresh(ctx, models.KindMessage)
	s.notify(models.KindMessage)
	return nil
}

// UpsertHealthEntry inserts or updates the entry for its tracked_date and
// synchronously recomputes the stats aggregate before returning.
func (s *Store) UpsertHealthEntry(ctx context.Context, e *models.HealthEntry) (*models.HealthEntry, error) {
	stampID(&e.ID)
	stampTime(&e.CreatedAt)
	e.SyncState = models.SyncPending
	stored, err := s.health.Upsert(ctx, e)
	if err != nil {
		return nil, err
	}
	s.refresh(ctx, models.KindHealth)
	s.notify(models.KindHealth)
	return stored, nil
}

// --- sync-session writes ---

// MarkSynced flips one record to Synced. Idempotent.
func (s *Store) MarkSynced(ctx context.Context, kind models.Kind, id string) error {
	var err error
	switch kind {
	case models.KindExperience:
		err = s.experiences.MarkSynced(ctx, id)
	case models.KindEmotion:
		err = s.emotions.MarkSynced(ctx, id)
	case models.KindMessage:
		err = s.messages.MarkSynced(ctx, id)
	case models.KindHealth:
		err = s.health.MarkSynced(ctx, id)
	default:
		return fmt.Errorf("unknown kind %q", kind)
	}
	if err != nil {
		return err
	}
	s.refresh(ctx, kind)
	s.notify(kind)
	return nil
}

// Delete removes one record, cascading to any child rows it owns.
func (s *Store) Delete(ctx context.Context, kind models.Kind, id string) error {
	var err error
	switch kind {
	case models.KindExperience:
		err = s.experiences.DeleteByID(ctx, id)
	case models.KindEmotion:
		err = s.emotions.DeleteByID(ctx, id)
	case models.KindMessage:
		err = s.messages.DeleteByID(ctx, id)
	case models.KindHealth:
		err = s.health.DeleteByID(ctx, id)
	default:
		return fmt.Errorf("unknown kind %q", kind)
	}
	if err != nil {
		return err
	}
	s.refresh(ctx, kind)
	s.notify(kind)
	return nil
}

// --- readers ---

// Experiences returns the mirror snapshot, most recent first.
func (s *Store) Experiences() []models.Experience {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Experience(nil), s.mirror.experiences...)
}

func (s *Store) Emotions() []models.EmotionCapture {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.EmotionCapture(nil), s.mirror.emotions...)
}

func (s *Store) Messages() []models.ChatMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.ChatMessage(nil), s.mirror.messages...)
}

func (s *Store) HealthEntries() []models.HealthEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.HealthEntry(nil), s.mirror.health...)
}

func (s *Store) HealthStats(ctx context.Context) (*models.Stats, error) {
	return s.health.Stats(ctx)
}

// Pending snapshots read straight from the database, not the mirror: a sync
// session must see exactly what is durable at session start.

func (s *Store) PendingExperiences(ctx context.Context) ([]models.Experience, error) {
	return s.experiences.GetAllPending(ctx)
}

func (s *Store) PendingEmotions(ctx context.Context) ([]models.EmotionCapture, error) {
	return s.emotions.GetAllPending(ctx)
}

func (s *Store) PendingMessages(ctx context.Context) ([]models.ChatMessage, error) {
	return s.messages.GetAllPending(ctx)
}

func (s *Store) PendingHealthEntries(ctx context.Context) ([]models.HealthEntry, error) {
	return s.health.GetAllPending(ctx)
}

// PendingCount counts unsynced records across all kinds.
func (s *Store) PendingCount(ctx context.Context) (int, error) {
	exp, err := s.experiences.GetAllPending(ctx)
	if err != nil {
		return 0, err
	}
	emo, err := s.emotions.GetAllPending(ctx)
	if err != nil {
		return 0, err
	}
	msg, err := s.messages.GetAllPending(ctx)
	if err != nil {
		return 0, err
	}
	hlt, err := s.health.GetAllPending(ctx)
	if err != nil {
		return 0, err
	}
	return len(exp) + len(emo) + len(msg) + len(hlt), nil
}

// --- observers ---

// Observe returns a channel that receives a notification after every change
// to the given kind. The channel is buffered and notifications are dropped
// rather than queued when the observer lags.
func (s *Store) Observe(kind models.Kind) <-chan struct{} {
	ch := make(chan struct{}, 1)
	s.mu.Lock()
	s.subs[kind] = append(s.subs[kind], ch)
	s.mu.Unlock()
	return ch
}

func (s *Store) notify(kind models.Kind) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, ch := range s.subs[kind] {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// refresh rebuilds the mirror for one kind. A read failure degrades to an
// empty snapshot: the store file is expected to exist, and corruption is not
// recoverable at this layer.
func (s *Store) refresh(ctx context.Context, kind models.Kind) {
	switch kind {
	case models.KindExperience:
		list, err := s.experiences.GetAll(ctx)
		if err != nil {
			s.log.Error(ctx, "failed to load experiences", "error", err)
			list = nil
		}
		s.mu.Lock()
		s.mirror.experiences = list
		s.mu.Unlock()
	case models.KindEmotion:
		list, err := s.emotions.GetAll(ctx)
		if err != nil {
			s.log.Error(ctx, "failed to load emotion captures", "error", err)
			list = nil
		}
		s.mu.Lock()
		s.mirror.emotions = list
		s.mu.Unlock()
	case models.KindMessage:
		list, err := s.messages.GetAll(ctx)
		if err != nil {
			s.log.Error(ctx, "failed to load messages", "error", err)
			list = nil
		}
		s.mu.Lock()
		s.mirror.messages = list
		s.mu.Unlock()
	case models.KindHealth:
		list, err := s.health.GetAll(ctx)
		if err != nil {
			s.log.Error(ctx, "failed to load health entries", "error", err)
			list = nil
		}
		s.mu.Lock()
		s.mirror.health = list
		s.mu.Unlock()
	}
}

func stampID(id *string) {
	if *id == "" {
		*id = uuid.NewString()
	}
}

func stampTime(t *time.Time) {
	if t.IsZero() {
		*t = time.Now()
	}
}
