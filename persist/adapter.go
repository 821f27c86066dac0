// Package persist saves and restores resume documents through a BlobStore.
//
// Writes are debounced: a burst of scheduled saves collapses into a single
// write of the newest document once the delay has passed without another
// schedule. Close abandons a save that is still waiting, so a document edited
// less than one delay before teardown is lost. That window is the only
// durability gap; the last completed write is the durable state.
package persist

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"resume-builder/core"
	"resume-builder/debounce"
	"resume-builder/resume"

	"github.com/sirupsen/logrus"
)

// LocalKey is the key of the single document edited from the CLI.
const LocalKey = "resumeData"

const saveTimeout = 10 * time.Second

// KeyFor returns the blob key holding a user's document.
func KeyFor(userID string) string {
	return LocalKey + ":" + userID
}

type Adapter struct {
	blobs     core.BlobStore
	key       string
	debouncer *debounce.Debouncer
	log       *logrus.Entry
}

func NewAdapter(blobs core.BlobStore, key string, delay time.Duration) *Adapter {
	return &Adapter{
		blobs:     blobs,
		key:       key,
		debouncer: debounce.New(delay),
		log:       logrus.WithField("blob_key", key),
	}
}

// Load reads and repairs the stored document. Every failure, including a
// missing blob, is reported as *core.PersistenceLoadError.
func (a *Adapter) Load(ctx context.Context) (*core.Document, error) {
	blob, err := a.blobs.Get(ctx, a.key)
	if err != nil {
		return nil, &core.PersistenceLoadError{Key: a.key, Err: err}
	}
	doc, err := resume.Repair(blob.Data)
	if err != nil {
		return nil, &core.PersistenceLoadError{Key: a.key, Err: fmt.Errorf("%w: %w", core.ErrUnreadable, err)}
	}
	a.log.WithField("updated_at", blob.UpdatedAt).Debug("Document loaded")
	return doc, nil
}

// Save overwrites the stored document. Failures are logged and returned as
// *core.PersistenceSaveError; the in-memory document stays authoritative.
func (a *Adapter) Save(ctx context.Context, doc *core.Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return a.saveFailed(fmt.Errorf("failed to encode document: %w", err))
	}
	if err := a.blobs.Put(ctx, a.key, &core.Blob{Data: data}); err != nil {
		return a.saveFailed(err)
	}
	a.log.WithField("data_length", len(data)).Debug("Document saved")
	return nil
}

func (a *Adapter) saveFailed(err error) error {
	saveErr := &core.PersistenceSaveError{Key: a.key, Err: err}
	a.log.WithField("error", err).Error("Failed to save document")
	return saveErr
}

// Schedule replaces any pending save with a save of doc.
func (a *Adapter) Schedule(doc *core.Document) {
	a.debouncer.Trigger(func() {
		ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
		defer cancel()
		_ = a.Save(ctx, doc)
	})
}

// Flush performs a pending save now.
func (a *Adapter) Flush() {
	a.debouncer.Flush()
}

// Close abandons a pending save and ignores later schedules.
func (a *Adapter) Close() {
	if a.debouncer.Pending() {
		a.log.Warn("Abandoning unsaved changes")
	}
	a.debouncer.Stop()
}
