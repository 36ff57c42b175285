package store

import (
	"context"
	"time"

	"github.com/keepsakeapp/keepsake/internal/dbx"
)

// Keys for client state persisted in the metadata table.
const (
	keyAutoSync      = "auto_sync_enabled"
	keyLastSyncAt    = "last_sync_at"
	keyServerBaseURL = "server_base_url"
)

// AutoSyncEnabled reports the persisted auto-sync toggle. Default is on.
func (s *Store) AutoSyncEnabled(ctx context.Context) bool {
	v, ok, err := s.metadata.Get(ctx, keyAutoSync)
	if err != nil {
		s.log.Error(ctx, "failed to read auto-sync toggle", "error", err)
		return true
	}
	if !ok {
		return true
	}
	return v != "0"
}

func (s *Store) SetAutoSyncEnabled(ctx context.Context, enabled bool) error {
	v := "1"
	if !enabled {
		v = "0"
	}
	return s.metadata.Set(ctx, keyAutoSync, v)
}

// LastSyncAt returns the completion time of the most recent sync session, or
// false when no session has ever run.
func (s *Store) LastSyncAt(ctx context.Context) (time.Time, bool) {
	v, ok, err := s.metadata.Get(ctx, keyLastSyncAt)
	if err != nil || !ok {
		return time.Time{}, false
	}
	t, err := dbx.ParseTime(v)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func (s *Store) SetLastSyncAt(ctx context.Context, t time.Time) error {
	return s.metadata.Set(ctx, keyLastSyncAt, dbx.FormatTime(t))
}

// ServerBaseURL returns the user's backend URL override, or "" when none is
// set (the config default applies then).
func (s *Store) ServerBaseURL(ctx context.Context) string {
	v, _, err := s.metadata.Get(ctx, keyServerBaseURL)
	if err != nil {
		s.log.Error(ctx, "failed to read server base url", "error", err)
		return ""
	}
	return v
}

func (s *Store) SetServerBaseURL(ctx context.Context, url string) error {
	return s.metadata.Set(ctx, keyServerBaseURL, url)
}
