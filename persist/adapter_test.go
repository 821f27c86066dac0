package persist

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"resume-builder/core"
	"resume-builder/resume"
	"resume-builder/stores/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingStore counts writes and can be told to fail them.
type recordingStore struct {
	core.BlobStore
	mu      sync.Mutex
	puts    [][]byte
	failPut error
}

func newRecordingStore() *recordingStore {
	return &recordingStore{BlobStore: memory.NewBlobStore()}
}

func (s *recordingStore) Put(ctx context.Context, key string, blob *core.Blob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failPut != nil {
		return s.failPut
	}
	s.puts = append(s.puts, append([]byte(nil), blob.Data...))
	return s.BlobStore.Put(ctx, key, blob)
}

func (s *recordingStore) writes() [][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([][]byte(nil), s.puts...)
}

func TestKeyFor(t *testing.T) {
	assert.Equal(t, "resumeData:42", KeyFor("42"))
}

func TestAdapter_SaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	adapter := NewAdapter(memory.NewBlobStore(), LocalKey, time.Hour)

	doc := resume.DefaultDocument()
	doc.CustomSections = []core.CustomSection{{ID: resume.NewID(), Title: "Volunteering", Content: "Food bank"}}
	require.NoError(t, adapter.Save(ctx, doc))

	loaded, err := adapter.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, doc, loaded)
}

func TestAdapter_LoadNotFound(t *testing.T) {
	adapter := NewAdapter(memory.NewBlobStore(), LocalKey, time.Hour)

	_, err := adapter.Load(context.Background())
	var loadErr *core.PersistenceLoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Equal(t, LocalKey, loadErr.Key)
	assert.True(t, errors.Is(err, core.ErrNotFound))
}

func TestAdapter_LoadParseError(t *testing.T) {
	ctx := context.Background()
	blobs := memory.NewBlobStore()
	require.NoError(t, blobs.Put(ctx, LocalKey, &core.Blob{Data: []byte("{broken")}))

	_, err := NewAdapter(blobs, LocalKey, time.Hour).Load(ctx)
	var loadErr *core.PersistenceLoadError
	assert.True(t, errors.As(err, &loadErr))
	assert.True(t, errors.Is(err, core.ErrUnreadable))
}

func TestAdapter_LoadRepairsLegacyBlob(t *testing.T) {
	ctx := context.Background()
	blobs := memory.NewBlobStore()
	legacy := `{"personal":{"name":"Ann"},"experience":[],"education":[],"skills":["Go"],"template":"tech"}`
	require.NoError(t, blobs.Put(ctx, LocalKey, &core.Blob{Data: []byte(legacy)}))

	doc, err := NewAdapter(blobs, LocalKey, time.Hour).Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []core.CustomSection{}, doc.CustomSections)
	assert.Equal(t, "Ann", doc.Personal.Name)
	assert.Equal(t, core.TemplateTech, doc.Template)
}

func TestAdapter_SaveFailureIsReportedNotFatal(t *testing.T) {
	blobs := newRecordingStore()
	blobs.failPut = errors.New("disk full")
	adapter := NewAdapter(blobs, LocalKey, time.Hour)

	err := adapter.Save(context.Background(), resume.DefaultDocument())
	var saveErr *core.PersistenceSaveError
	require.True(t, errors.As(err, &saveErr))
	assert.Contains(t, err.Error(), "disk full")
}

func TestAdapter_DebounceCoalescesMutations(t *testing.T) {
	blobs := newRecordingStore()
	adapter := NewAdapter(blobs, LocalKey, 40*time.Millisecond)
	store, err := resume.New(context.Background(), resume.Options{Persistence: adapter})
	require.NoError(t, err)
	defer store.Close()

	store.AddSkill("M1")
	store.AddSkill("M2")
	require.NoError(t, store.ChangeTemplate(core.TemplateMinimal))
	require.NoError(t, store.UpdatePersonalField(core.PersonalName, "M4"))
	store.AddCustomSection("M5")
	final := store.Snapshot()

	assert.Eventually(t, func() bool { return len(blobs.writes()) == 1 }, 2*time.Second, 5*time.Millisecond)
	time.Sleep(100 * time.Millisecond)
	writes := blobs.writes()
	require.Len(t, writes, 1)

	expected, err := json.Marshal(final)
	require.NoError(t, err)
	assert.JSONEq(t, string(expected), string(writes[0]))
}

func TestAdapter_StoreFallsBackAndReloads(t *testing.T) {
	ctx := context.Background()
	blobs := memory.NewBlobStore()

	first, err := resume.New(ctx, resume.Options{Persistence: NewAdapter(blobs, LocalKey, time.Hour)})
	require.NoError(t, err)
	assert.Equal(t, "John Doe", first.Snapshot().Personal.Name)
	require.NoError(t, first.UpdatePersonalField(core.PersonalName, "Reloaded"))
	adapter := NewAdapter(blobs, LocalKey, time.Hour)
	require.NoError(t, adapter.Save(ctx, first.Snapshot()))

	second, err := resume.New(ctx, resume.Options{Persistence: adapter})
	require.NoError(t, err)
	assert.Equal(t, "Reloaded", second.Snapshot().Personal.Name)
}

func TestAdapter_FlushWritesImmediately(t *testing.T) {
	blobs := newRecordingStore()
	adapter := NewAdapter(blobs, LocalKey, time.Hour)

	adapter.Schedule(resume.DefaultDocument())
	assert.Empty(t, blobs.writes())
	adapter.Flush()
	assert.Len(t, blobs.writes(), 1)
}

func TestAdapter_CloseAbandonsPendingWrite(t *testing.T) {
	blobs := newRecordingStore()
	adapter := NewAdapter(blobs, LocalKey, 20*time.Millisecond)

	adapter.Schedule(resume.DefaultDocument())
	adapter.Close()
	adapter.Schedule(resume.DefaultDocument())

	time.Sleep(60 * time.Millisecond)
	assert.Empty(t, blobs.writes())
}
