package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

var (
	// ErrStoreIO is wrapped by any failure to read or write the persisted
	// document. The previous on-disk document survives a failed write.
	ErrStoreIO = errors.New("metadata store I/O failure")

	// ErrClosed is returned for mutations submitted after Close.
	ErrClosed = errors.New("metadata store closed")
)

const documentName = "images.json"

// ImageRecord is the catalog entry for one stored file. Filename is the
// sole identity: re-uploading an existing name mutates the record in
// place and never duplicates it.
type ImageRecord struct {
	Filename  string    `json:"filename"`
	URL       string    `json:"url"`
	Size      int64     `json:"size"`
	Mime      string    `json:"mime"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Store persists a filename-keyed mapping of ImageRecord as one JSON
// document. Every mutation goes through a single-consumer job queue, so
// read-modify-write cycles never interleave no matter how many uploads
// finish at the same instant. Writes replace the whole document via a
// temp file and rename, so readers only ever observe a fully-written
// document.
type Store struct {
	path      string
	jobs      chan job
	quit      chan struct{}
	closeOnce sync.Once
}

type job struct {
	apply func(doc map[string]ImageRecord) error
	done  chan error
}

func NewStore(dir string) (*Store, error) {
	dir = filepath.Clean(dir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	s := &Store{
		path: filepath.Join(dir, documentName),
		jobs: make(chan job, 64),
		quit: make(chan struct{}),
	}
	go s.run()
	return s, nil
}

// Close stops the write queue. In-flight mutations finish; later ones
// fail with ErrClosed. Safe to call more than once.
func (s *Store) Close() {
	s.closeOnce.Do(func() { close(s.quit) })
}

func (s *Store) run() {
	for {
		select {
		case j := <-s.jobs:
			j.done <- s.mutate(j.apply)
		case <-s.quit:
			return
		}
	}
}

// mutate runs one serialized read-modify-write cycle. A failure at any
// step leaves the previous document intact and is surfaced to the
// submitting caller only; the queue keeps processing.
func (s *Store) mutate(apply func(doc map[string]ImageRecord) error) error {
	doc, err := s.load()
	if err != nil {
		return err
	}
	if err := apply(doc); err != nil {
		return err
	}
	return s.save(doc)
}

func (s *Store) submit(apply func(doc map[string]ImageRecord) error) error {
	done := make(chan error, 1)
	select {
	case s.jobs <- job{apply: apply, done: done}:
	case <-s.quit:
		return ErrClosed
	}
	select {
	case err := <-done:
		return err
	case <-s.quit:
		return ErrClosed
	}
}

// GetAll returns every record, most recently updated first. Reads bypass
// the write queue: document replacement is atomic, so a plain read always
// observes a consistent document.
func (s *Store) GetAll() ([]ImageRecord, error) {
	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	records := make([]ImageRecord, 0, len(doc))
	for _, rec := range doc {
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool {
		if !records[i].UpdatedAt.Equal(records[j].UpdatedAt) {
			return records[i].UpdatedAt.After(records[j].UpdatedAt)
		}
		return records[i].Filename < records[j].Filename
	})
	return records, nil
}

// Upsert creates or replaces the record for filename. An existing record
// keeps its CreatedAt; Size, Mime and URL are replaced and UpdatedAt is
// set to now.
func (s *Store) Upsert(filename string, size int64, mime, url string) (ImageRecord, error) {
	var result ImageRecord
	err := s.submit(func(doc map[string]ImageRecord) error {
		now := time.Now().UTC()
		rec := ImageRecord{
			Filename:  filename,
			URL:       url,
			Size:      size,
			Mime:      mime,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if prev, ok := doc[filename]; ok {
			rec.CreatedAt = prev.CreatedAt
		}
		doc[filename] = rec
		result = rec
		return nil
	})
	return result, err
}

// DeleteByFilenames removes the given records. The returned map reports,
// per filename, whether a record existed and was removed.
func (s *Store) DeleteByFilenames(names []string) (map[string]bool, error) {
	removed := make(map[string]bool, len(names))
	err := s.submit(func(doc map[string]ImageRecord) error {
		for _, name := range names {
			_, ok := doc[name]
			removed[name] = ok
			delete(doc, name)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return removed, nil
}

// FilenamesFromUrls reverse-maps stored URLs to filenames. URLs with no
// matching record are silently dropped.
func (s *Store) FilenamesFromUrls(urls []string) ([]string, error) {
	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	byURL := make(map[string]string, len(doc))
	for name, rec := range doc {
		byURL[rec.URL] = name
	}
	var names []string
	for _, u := range urls {
		if name, ok := byURL[u]; ok {
			names = append(names, name)
		}
	}
	return names, nil
}

func (s *Store) load() (map[string]ImageRecord, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return make(map[string]ImageRecord), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %v: %w", documentName, err, ErrStoreIO)
	}
	doc := make(map[string]ImageRecord)
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding %s: %v: %w", documentName, err, ErrStoreIO)
	}
	return doc, nil
}

// save replaces the document atomically: marshal, write to a temp file in
// the same directory, then rename over the old document.
func (s *Store) save(doc map[string]ImageRecord) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %v: %w", documentName, err, ErrStoreIO)
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), documentName+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp document: %v: %w", err, ErrStoreIO)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing temp document: %v: %w", err, ErrStoreIO)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp document: %v: %w", err, ErrStoreIO)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing %s: %v: %w", documentName, err, ErrStoreIO)
	}
	return nil
}
