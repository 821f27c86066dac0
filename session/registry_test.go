package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"resume-builder/core"
	"resume-builder/persist"
	"resume-builder/resume"
	"resume-builder/stores/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flakyStore fails the first failGets reads and counts every read.
type flakyStore struct {
	core.BlobStore
	failGets int32
	gets     atomic.Int32
	delay    time.Duration
}

func (s *flakyStore) Get(ctx context.Context, key string) (*core.Blob, error) {
	n := s.gets.Add(1)
	time.Sleep(s.delay)
	if n <= s.failGets {
		return nil, errors.New("connection reset by peer")
	}
	return s.BlobStore.Get(ctx, key)
}

func mustGet(t *testing.T, reg *Registry, userID string) *Session {
	t.Helper()
	sess, err := reg.Get(context.Background(), userID)
	require.NoError(t, err)
	return sess
}

func TestRegistry_GetReturnsSameSession(t *testing.T) {
	reg := NewRegistry(memory.NewBlobStore(), time.Hour)
	defer reg.Close()

	a := mustGet(t, reg, "u1")
	b := mustGet(t, reg, "u1")
	c := mustGet(t, reg, "u2")

	assert.Same(t, a, b)
	assert.NotSame(t, a, c)
	assert.Equal(t, 2, reg.Len())
}

func TestRegistry_LoadsStoredDocument(t *testing.T) {
	ctx := context.Background()
	blobs := memory.NewBlobStore()
	require.NoError(t, blobs.Put(ctx, persist.KeyFor("u1"), &core.Blob{Data: []byte(`{"personal":{"name":"Stored"}}`)}))

	reg := NewRegistry(blobs, time.Hour)
	defer reg.Close()

	assert.Equal(t, "Stored", mustGet(t, reg, "u1").Snapshot().Personal.Name)
	assert.Equal(t, "John Doe", mustGet(t, reg, "u2").Snapshot().Personal.Name)
}

func TestRegistry_TransientReadErrorKeepsStoredDocument(t *testing.T) {
	ctx := context.Background()
	blobs := &flakyStore{BlobStore: memory.NewBlobStore(), failGets: 1}
	stored := `{"personal":{"name":"Real User"},"skills":["Go","Kubernetes"]}`
	require.NoError(t, blobs.Put(ctx, persist.KeyFor("u1"), &core.Blob{Data: []byte(stored)}))

	reg := NewRegistry(blobs, 10*time.Millisecond)
	defer reg.Close()

	_, err := reg.Get(ctx, "u1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset by peer")
	assert.Equal(t, 0, reg.Len())

	// nothing was written over the stored blob
	blob, err := blobs.BlobStore.Get(ctx, persist.KeyFor("u1"))
	require.NoError(t, err)
	assert.JSONEq(t, stored, string(blob.Data))

	sess := mustGet(t, reg, "u1")
	assert.Equal(t, "Real User", sess.Snapshot().Personal.Name)
	require.NoError(t, sess.Do(func(s *resume.Store) error {
		s.AddSkill("Rust")
		return nil
	}))

	assert.Eventually(t, func() bool {
		blob, err := blobs.BlobStore.Get(ctx, persist.KeyFor("u1"))
		if err != nil {
			return false
		}
		doc, err := resume.Repair(blob.Data)
		return err == nil && doc.Personal.Name == "Real User" &&
			assert.ObjectsAreEqual([]string{"Go", "Kubernetes", "Rust"}, doc.Skills)
	}, time.Second, 5*time.Millisecond)
}

func TestRegistry_CancelledRequestDoesNotAbortLoad(t *testing.T) {
	reg := NewRegistry(memory.NewBlobStore(), time.Hour)
	defer reg.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	sess, err := reg.Get(ctx, "u1")
	require.NoError(t, err)
	assert.NotNil(t, sess)
}

func TestRegistry_ConcurrentFirstGetsShareOneLoad(t *testing.T) {
	blobs := &flakyStore{BlobStore: memory.NewBlobStore(), delay: 20 * time.Millisecond}
	reg := NewRegistry(blobs, time.Hour)
	defer reg.Close()

	var wg sync.WaitGroup
	sessions := make([]*Session, 10)
	for i := range sessions {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sess, err := reg.Get(context.Background(), "u1")
			if assert.NoError(t, err) {
				sessions[i] = sess
			}
		}()
	}
	wg.Wait()

	for _, sess := range sessions {
		assert.Same(t, sessions[0], sess)
	}
	assert.EqualValues(t, 1, blobs.gets.Load())
}

// gatedStore blocks reads of one key until gate is closed.
type gatedStore struct {
	core.BlobStore
	key  string
	gate chan struct{}
}

func (s *gatedStore) Get(ctx context.Context, key string) (*core.Blob, error) {
	if key == s.key {
		<-s.gate
	}
	return s.BlobStore.Get(ctx, key)
}

func TestRegistry_SlowLoadDoesNotBlockOtherUsers(t *testing.T) {
	blobs := &gatedStore{BlobStore: memory.NewBlobStore(), key: persist.KeyFor("slow"), gate: make(chan struct{})}
	reg := NewRegistry(blobs, time.Hour)
	defer reg.Close()

	slowDone := make(chan error, 1)
	go func() {
		_, err := reg.Get(context.Background(), "slow")
		slowDone <- err
	}()

	fastDone := make(chan error, 1)
	go func() {
		_, err := reg.Get(context.Background(), "fast")
		fastDone <- err
	}()

	select {
	case err := <-fastDone:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("load of one user blocked another user")
	}

	close(blobs.gate)
	assert.NoError(t, <-slowDone)
	assert.Equal(t, 2, reg.Len())
}

func TestRegistry_ObserversReceiveUserSnapshots(t *testing.T) {
	var mu sync.Mutex
	got := map[string][]string{}
	observer := func(userID string, doc *core.Document) {
		mu.Lock()
		defer mu.Unlock()
		got[userID] = append(got[userID], doc.Skills[len(doc.Skills)-1])
	}
	reg := NewRegistry(memory.NewBlobStore(), time.Hour, observer)
	defer reg.Close()

	require.NoError(t, mustGet(t, reg, "u1").Do(func(s *resume.Store) error {
		s.AddSkill("Go")
		return nil
	}))
	require.NoError(t, mustGet(t, reg, "u2").Do(func(s *resume.Store) error {
		s.AddSkill("Rust")
		return nil
	}))

	assert.Equal(t, []string{"Go"}, got["u1"])
	assert.Equal(t, []string{"Rust"}, got["u2"])
}

func TestRegistry_ObserveAddsLateObserver(t *testing.T) {
	reg := NewRegistry(memory.NewBlobStore(), time.Hour)
	defer reg.Close()

	var users []string
	reg.Observe(func(userID string, _ *core.Document) { users = append(users, userID) })
	require.NoError(t, mustGet(t, reg, "u1").Do(func(s *resume.Store) error {
		return s.ChangeTemplate(core.TemplateTech)
	}))
	assert.Equal(t, []string{"u1"}, users)
}

func TestSession_DoSerializesWriters(t *testing.T) {
	reg := NewRegistry(memory.NewBlobStore(), time.Hour)
	defer reg.Close()
	sess := mustGet(t, reg, "u1")
	before := len(sess.Snapshot().Experience)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = sess.Do(func(s *resume.Store) error {
				s.AddExperienceEntry()
				return nil
			})
		}()
	}
	wg.Wait()

	assert.Len(t, sess.Snapshot().Experience, before+50)
}

func TestRegistry_SavesAfterDebounce(t *testing.T) {
	ctx := context.Background()
	blobs := memory.NewBlobStore()
	reg := NewRegistry(blobs, 10*time.Millisecond)
	defer reg.Close()

	require.NoError(t, mustGet(t, reg, "u1").Do(func(s *resume.Store) error {
		return s.UpdatePersonalField(core.PersonalName, "Saved")
	}))

	assert.Eventually(t, func() bool {
		blob, err := blobs.Get(ctx, persist.KeyFor("u1"))
		return err == nil && len(blob.Data) > 0
	}, time.Second, 5*time.Millisecond)
}

func TestRegistry_Close(t *testing.T) {
	reg := NewRegistry(memory.NewBlobStore(), time.Hour)
	mustGet(t, reg, "u1")
	reg.Close()
	assert.Equal(t, 0, reg.Len())

	_, err := reg.Get(context.Background(), "u2")
	assert.ErrorIs(t, err, ErrClosed)
}
