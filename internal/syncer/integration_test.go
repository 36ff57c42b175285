package syncer

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keepsakeapp/keepsake/internal/logging"
	"github.com/keepsakeapp/keepsake/internal/models"
	"github.com/keepsakeapp/keepsake/internal/store"
)

// Three experiences saved offline, one upload fails mid-session: the other
// two end up synced, the failed one stays pending, and a later session picks
// it up alone. Runs against the real SQLite store.
func TestSessionAgainstRealStore(t *testing.T) {
	ctx := context.Background()
	st, err := store.Open(ctx, filepath.Join(t.TempDir(), "test.db"), logging.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	base := time.Now().Add(-time.Hour)
	var ids []string
	for i := 0; i < 3; i++ {
		e := &models.Experience{
			Title:         "trip",
			ExperiencedAt: base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, st.SaveExperience(ctx, e))
		ids = append(ids, e.ID)
	}

	api := &fakeAPI{failIDs: map[string]bool{ids[1]: true}}
	engine := New(st, api, logging.NewNop())

	res := engine.SyncNow(ctx)
	require.True(t, res.Started)
	assert.Equal(t, 2, res.Uploaded)
	assert.Equal(t, 1, res.Failed)

	pending, err := st.PendingExperiences(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, ids[1], pending[0].ID)

	lastSync, ok := st.LastSyncAt(ctx)
	require.True(t, ok)
	assert.WithinDuration(t, time.Now(), lastSync, time.Minute)

	// The next session retries only the failed record.
	api.failIDs = nil
	calls := len(api.callIDs())

	res = engine.SyncNow(ctx)
	require.True(t, res.Started)
	assert.Equal(t, 1, res.Uploaded)
	assert.Equal(t, []string{ids[1]}, api.callIDs()[calls:])

	n, err := st.PendingCount(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}
