package syncer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keepsakeapp/keepsake/internal/logging"
	"github.com/keepsakeapp/keepsake/internal/models"
)

type fakeStore struct {
	mu          sync.Mutex
	autoSync    bool
	experiences []models.Experience
	emotions    []models.EmotionCapture
	messages    []models.ChatMessage
	health      []models.HealthEntry
	synced      []string
	deleted     []string
	lastSyncAt  time.Time
	countErr    error
}

func newFakeStore() *fakeStore {
	return &fakeStore{autoSync: true}
}

func (s *fakeStore) PendingExperiences(ctx context.Context) ([]models.Experience, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Experience
	for _, e := range s.experiences {
		if e.SyncState == models.SyncPending {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *fakeStore) PendingEmotions(ctx context.Context) ([]models.EmotionCapture, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.EmotionCapture
	for _, c := range s.emotions {
		if c.SyncState == models.SyncPending {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *fakeStore) PendingMessages(ctx context.Context) ([]models.ChatMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.ChatMessage
	for _, m := range s.messages {
		if m.SyncState == models.SyncPending {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *fakeStore) PendingHealthEntries(ctx context.Context) ([]models.HealthEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.HealthEntry
	for _, h := range s.health {
		if h.SyncState == models.SyncPending {
			out = append(out, h)
		}
	}
	return out, nil
}

func (s *fakeStore) PendingCount(ctx context.Context) (int, error) {
	if s.countErr != nil {
		return 0, s.countErr
	}
	exp, _ := s.PendingExperiences(ctx)
	emo, _ := s.PendingEmotions(ctx)
	msg, _ := s.PendingMessages(ctx)
	hlt, _ := s.PendingHealthEntries(ctx)
	return len(exp) + len(emo) + len(msg) + len(hlt), nil
}

func (s *fakeStore) MarkSynced(ctx context.Context, kind models.Kind, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.experiences {
		if s.experiences[i].ID == id {
			s.experiences[i].SyncState = models.SyncSynced
		}
	}
	for i := range s.emotions {
		if s.emotions[i].ID == id {
			s.emotions[i].SyncState = models.SyncSynced
		}
	}
	for i := range s.messages {
		if s.messages[i].ID == id {
			s.messages[i].SyncState = models.SyncSynced
		}
	}
	for i := range s.health {
		if s.health[i].ID == id {
			s.health[i].SyncState = models.SyncSynced
		}
	}
	s.synced = append(s.synced, id)
	return nil
}

func (s *fakeStore) Delete(ctx context.Context, kind models.Kind, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.messages {
		if s.messages[i].ID == id {
			s.messages = append(s.messages[:i], s.messages[i+1:]...)
			break
		}
	}
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *fakeStore) AutoSyncEnabled(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.autoSync
}

func (s *fakeStore) SetLastSyncAt(ctx context.Context, t time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSyncAt = t
	return nil
}

func (s *fakeStore) addEmotion(c models.EmotionCapture) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.emotions = append(s.emotions, c)
}

// fakeAPI records upload order and fails the ids listed in failIDs. Hooks
// run during an upload so tests can interleave store mutations or block.
type fakeAPI struct {
	mu      sync.Mutex
	calls   []string
	failIDs map[string]bool
	onCall  func(id string)
}

func (a *fakeAPI) record(id string) error {
	if a.onCall != nil {
		a.onCall(id)
	}
	a.mu.Lock()
	a.calls = append(a.calls, id)
	fail := a.failIDs[id]
	a.mu.Unlock()
	if fail {
		return errors.New("upload failed")
	}
	return nil
}

func (a *fakeAPI) callIDs() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.calls...)
}

func (a *fakeAPI) UploadExperience(ctx context.Context, e *models.Experience) error {
	return a.record(e.ID)
}
func (a *fakeAPI) UploadEmotion(ctx context.Context, c *models.EmotionCapture) error {
	return a.record(c.ID)
}
func (a *fakeAPI) UploadMessage(ctx context.Context, m *models.ChatMessage) error {
	return a.record(m.ID)
}
func (a *fakeAPI) UploadHealth(ctx context.Context, h *models.HealthEntry) error {
	return a.record(h.ID)
}

func pendingExperience(id string) models.Experience {
	return models.Experience{ID: id, Title: "t", ExperiencedAt: time.Now(), CreatedAt: time.Now()}
}

func TestSyncNowUploadsKindsInOrder(t *testing.T) {
	st := newFakeStore()
	st.experiences = []models.Experience{pendingExperience("exp-1")}
	st.emotions = []models.EmotionCapture{{ID: "emo-1", Emotion: "calm", Intensity: 4}}
	st.messages = []models.ChatMessage{{ID: "msg-1", Speaker: models.SpeakerSelf, Text: "hi"}}
	st.health = []models.HealthEntry{{ID: "hlt-1", TrackedDate: "2026-08-29"}}

	api := &fakeAPI{}
	engine := New(st, api, logging.NewNop())

	res := engine.SyncNow(context.Background())

	require.True(t, res.Started)
	assert.Equal(t, 4, res.Uploaded)
	assert.Equal(t, 0, res.Failed)
	assert.Equal(t, []string{"exp-1", "emo-1", "msg-1", "hlt-1"}, api.callIDs())
	assert.Len(t, st.synced, 4)
	assert.False(t, st.lastSyncAt.IsZero())
}

func TestSyncNowFailureDoesNotAbortSession(t *testing.T) {
	st := newFakeStore()
	st.experiences = []models.Experience{
		pendingExperience("exp-1"),
		pendingExperience("exp-2"),
		pendingExperience("exp-3"),
	}

	api := &fakeAPI{failIDs: map[string]bool{"exp-2": true}}
	engine := New(st, api, logging.NewNop())

	res := engine.SyncNow(context.Background())

	require.True(t, res.Started)
	assert.Equal(t, 2, res.Uploaded)
	assert.Equal(t, 1, res.Failed)
	assert.Equal(t, []string{"exp-1", "exp-2", "exp-3"}, api.callIDs())

	// exp-2 stays pending for the next session.
	pending, err := st.PendingExperiences(context.Background())
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "exp-2", pending[0].ID)

	// The attempt still advances the last sync time.
	assert.False(t, st.lastSyncAt.IsZero())
}

func TestSyncNowDeclinesWhenAutoSyncDisabled(t *testing.T) {
	st := newFakeStore()
	st.autoSync = false
	st.experiences = []models.Experience{pendingExperience("exp-1")}

	api := &fakeAPI{}
	engine := New(st, api, logging.NewNop())

	res := engine.SyncNow(context.Background())

	assert.False(t, res.Started)
	assert.Empty(t, api.callIDs())
	assert.True(t, st.lastSyncAt.IsZero())
}

func TestSyncNowDeclinesWhenNothingPending(t *testing.T) {
	st := newFakeStore()

	api := &fakeAPI{}
	engine := New(st, api, logging.NewNop())

	res := engine.SyncNow(context.Background())

	assert.False(t, res.Started)
	assert.Empty(t, api.callIDs())
}

func TestTriggerDropsConcurrentSessions(t *testing.T) {
	st := newFakeStore()
	st.experiences = []models.Experience{pendingExperience("exp-1")}

	started := make(chan struct{})
	release := make(chan struct{})
	api := &fakeAPI{onCall: func(id string) {
		close(started)
		<-release
	}}
	engine := New(st, api, logging.NewNop())

	require.True(t, engine.Trigger(context.Background()))
	<-started

	// A second trigger while the session runs is dropped, not queued.
	assert.False(t, engine.Trigger(context.Background()))
	assert.False(t, engine.SyncNow(context.Background()).Started)
	assert.True(t, engine.Running())

	close(release)
	require.Eventually(t, func() bool { return !engine.Running() }, time.Second, 5*time.Millisecond)
	assert.Len(t, api.callIDs(), 1)
}

func TestSyncNowSnapshotExcludesMidSessionRecords(t *testing.T) {
	st := newFakeStore()
	st.experiences = []models.Experience{pendingExperience("exp-1")}

	api := &fakeAPI{}
	api.onCall = func(id string) {
		if id == "exp-1" {
			st.addEmotion(models.EmotionCapture{ID: "emo-late", Emotion: "surprise", Intensity: 5})
		}
	}
	engine := New(st, api, logging.NewNop())

	res := engine.SyncNow(context.Background())

	require.True(t, res.Started)
	assert.Equal(t, []string{"exp-1"}, api.callIDs())

	// The mid-session capture waits for the next session.
	pending, err := st.PendingEmotions(context.Background())
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "emo-late", pending[0].ID)
}

func TestSyncNowDeleteAfterSync(t *testing.T) {
	st := newFakeStore()
	st.messages = []models.ChatMessage{{ID: uuid.NewString(), Speaker: models.SpeakerSelf, Text: "bye"}}

	api := &fakeAPI{}
	engine := New(st, api, logging.NewNop(), WithDeleteAfterSync(models.KindMessage))

	res := engine.SyncNow(context.Background())

	require.True(t, res.Started)
	assert.Equal(t, 1, res.Uploaded)
	assert.Len(t, st.deleted, 1)
	assert.Empty(t, st.messages)
}

func TestSyncNowCancelledBetweenRecords(t *testing.T) {
	st := newFakeStore()
	st.experiences = []models.Experience{
		pendingExperience("exp-1"),
		pendingExperience("exp-2"),
	}

	ctx, cancel := context.WithCancel(context.Background())
	api := &fakeAPI{onCall: func(id string) {
		if id == "exp-1" {
			cancel()
		}
	}}
	engine := New(st, api, logging.NewNop())

	res := engine.SyncNow(ctx)

	require.True(t, res.Started)
	// exp-1 completes; exp-2 never starts.
	assert.Equal(t, []string{"exp-1"}, api.callIDs())
	assert.Equal(t, 1, res.Uploaded)
}
