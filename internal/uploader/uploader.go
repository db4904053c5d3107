package uploader

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"image-vault/internal/storage"
	"image-vault/internal/store"
)

// Status is the lifecycle of one file in a batch. A file moves
// queued -> uploading -> one of the terminal states.
type Status string

const (
	StatusQueued      Status = "queued"
	StatusUploading   Status = "uploading"
	StatusUploaded    Status = "uploaded"
	StatusOverwritten Status = "overwritten"
	StatusSkipped     Status = "skipped"
	StatusError       Status = "error"
)

// Terminal reports whether a status ends a file's lifecycle.
func (s Status) Terminal() bool {
	switch s {
	case StatusUploaded, StatusOverwritten, StatusSkipped, StatusError:
		return true
	}
	return false
}

// File is one incoming payload in an upload batch.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Outcome is the per-file result reported back to the client and pushed
// as a status event on every transition.
type Outcome struct {
	Filename string `json:"filename"`
	URL      string `json:"url,omitempty"`
	Status   Status `json:"status"`
	Error    string `json:"error,omitempty"`
}

// NotifyFunc receives a snapshot of an outcome at each status transition.
// Called from worker goroutines; implementations must be safe for
// concurrent use.
type NotifyFunc func(Outcome)

// Coordinator drives upload batches against disk storage and the
// metadata store with bounded parallelism.
type Coordinator struct {
	disk       *storage.Disk
	store      *store.Store
	publicBase string
	notify     NotifyFunc
}

func New(disk *storage.Disk, st *store.Store, publicBase string, notify NotifyFunc) *Coordinator {
	return &Coordinator{disk: disk, store: st, publicBase: publicBase, notify: notify}
}

// Upload processes a batch of files with at most limit workers in flight,
// returning exactly one terminal outcome per input file. Per-file failures
// are contained in that file's outcome and never abort siblings.
//
// The limit is clamped to at least 1. A cancelled context stops further
// dispatch: undispatched files resolve as skipped ("cancelled") while
// in-flight workers run to completion.
//
// Duplicate filenames within one batch race against each other; the last
// worker to complete its store upsert wins. That nondeterminism is
// inherited from filename being the sole identity and is deliberate.
func (c *Coordinator) Upload(ctx context.Context, files []File, limit int, overwrite bool) []Outcome {
	outcomes := make([]Outcome, len(files))
	if len(files) == 0 {
		return outcomes
	}
	if limit < 1 {
		limit = 1
	}

	for i := range files {
		outcomes[i] = Outcome{Filename: storage.Sanitize(files[i].Name), Status: StatusQueued}
		c.emit(outcomes[i])
	}

	var g errgroup.Group
	g.SetLimit(limit)
	for i := range files {
		if ctx.Err() != nil {
			outcomes[i].Status = StatusSkipped
			outcomes[i].Error = "cancelled"
			c.emit(outcomes[i])
			continue
		}
		// Go blocks while the pool is full, so the ceiling holds and the
		// next file dispatches the instant a worker finishes.
		g.Go(func() error {
			outcomes[i].Status = StatusUploading
			c.emit(outcomes[i])
			c.process(files[i], &outcomes[i], overwrite)
			c.emit(outcomes[i])
			return nil
		})
	}
	g.Wait()
	return outcomes
}

func (c *Coordinator) process(f File, out *Outcome, overwrite bool) {
	exists, err := c.disk.Exists(out.Filename)
	if err != nil {
		out.Status = StatusError
		out.Error = fmt.Sprintf("checking existing file: %v", err)
		return
	}
	if exists && !overwrite {
		out.Status = StatusSkipped
		out.Error = "file already exists and overwrite is disabled"
		return
	}

	if err := c.disk.Save(out.Filename, f.Data); err != nil {
		out.Status = StatusError
		out.Error = err.Error()
		return
	}

	mime := storage.DetectType(f.ContentType, f.Data)
	url := storage.FileURL(c.publicBase, out.Filename)
	if _, err := c.store.Upsert(out.Filename, int64(len(f.Data)), mime, url); err != nil {
		out.Status = StatusError
		out.Error = err.Error()
		return
	}

	out.URL = url
	if exists {
		out.Status = StatusOverwritten
	} else {
		out.Status = StatusUploaded
	}
}

func (c *Coordinator) emit(out Outcome) {
	if c.notify != nil {
		c.notify(out)
	}
}
