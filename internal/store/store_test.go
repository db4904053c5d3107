package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

func TestUpsertCreatesRecord(t *testing.T) {
	s := newTestStore(t)

	rec, err := s.Upsert("cat.png", 1234, "image/png", "/files/cat.png")
	require.NoError(t, err)

	assert.Equal(t, "cat.png", rec.Filename)
	assert.Equal(t, int64(1234), rec.Size)
	assert.Equal(t, "image/png", rec.Mime)
	assert.Equal(t, "/files/cat.png", rec.URL)
	assert.False(t, rec.CreatedAt.IsZero())
	assert.True(t, rec.CreatedAt.Equal(rec.UpdatedAt))
}

func TestUpsertPreservesCreatedAt(t *testing.T) {
	s := newTestStore(t)

	first, err := s.Upsert("cat.png", 100, "image/png", "/files/cat.png")
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)

	second, err := s.Upsert("cat.png", 999, "image/webp", "/files/cat.png")
	require.NoError(t, err)

	assert.True(t, second.CreatedAt.Equal(first.CreatedAt), "createdAt must survive overwrites")
	assert.True(t, second.UpdatedAt.After(first.UpdatedAt), "updatedAt must move forward")
	assert.Equal(t, int64(999), second.Size)
	assert.Equal(t, "image/webp", second.Mime)

	// Still exactly one record for the filename.
	records, err := s.GetAll()
	require.NoError(t, err)
	require.Len(t, records, 1)
}

func TestGetAllOrdering(t *testing.T) {
	s := newTestStore(t)

	for _, name := range []string{"oldest.png", "middle.png", "newest.png"} {
		_, err := s.Upsert(name, 1, "image/png", "/files/"+name)
		require.NoError(t, err)
		time.Sleep(5 * time.Millisecond)
	}

	records, err := s.GetAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "newest.png", records[0].Filename)
	assert.Equal(t, "middle.png", records[1].Filename)
	assert.Equal(t, "oldest.png", records[2].Filename)
}

func TestGetAllEmptyBeforeFirstWrite(t *testing.T) {
	s := newTestStore(t)

	records, err := s.GetAll()
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestDeleteByFilenames(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Upsert("cat.png", 1, "image/png", "/files/cat.png")
	require.NoError(t, err)

	removed, err := s.DeleteByFilenames([]string{"cat.png", "ghost.png"})
	require.NoError(t, err)
	assert.True(t, removed["cat.png"])
	assert.False(t, removed["ghost.png"])

	// Deleting again reports false for everything; never an error.
	removed, err = s.DeleteByFilenames([]string{"cat.png"})
	require.NoError(t, err)
	assert.False(t, removed["cat.png"])

	records, err := s.GetAll()
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestFilenamesFromUrls(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Upsert("cat.png", 1, "image/png", "https://img.example.com/files/cat.png")
	require.NoError(t, err)
	_, err = s.Upsert("dog.jpg", 1, "image/jpeg", "https://img.example.com/files/dog.jpg")
	require.NoError(t, err)

	names, err := s.FilenamesFromUrls([]string{
		"https://img.example.com/files/dog.jpg",
		"https://img.example.com/files/ghost.gif", // silently dropped
		"https://img.example.com/files/cat.png",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"dog.jpg", "cat.png"}, names)
}

func TestConcurrentUpsertsAreNotLost(t *testing.T) {
	s := newTestStore(t)

	const n = 32
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name := fmt.Sprintf("img-%02d.png", i)
			_, err := s.Upsert(name, int64(i), "image/png", "/files/"+name)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	records, err := s.GetAll()
	require.NoError(t, err)
	assert.Len(t, records, n, "serialized writes must not lose updates")
}

func TestConcurrentUpsertsSameFilename(t *testing.T) {
	s := newTestStore(t)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := s.Upsert("contested.png", int64(i), "image/png", "/files/contested.png")
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	// Last writer wins, but there is only ever one record.
	records, err := s.GetAll()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "contested.png", records[0].Filename)
}

func TestCorruptDocumentSurfacesStoreIO(t *testing.T) {
	dir := t.TempDir()
	s, err := NewStore(dir)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, os.WriteFile(filepath.Join(dir, documentName), []byte("{not json"), 0o644))

	_, err = s.GetAll()
	assert.ErrorIs(t, err, ErrStoreIO)

	_, err = s.Upsert("cat.png", 1, "image/png", "/files/cat.png")
	assert.ErrorIs(t, err, ErrStoreIO)

	// The queue keeps working once the document is repaired.
	require.NoError(t, os.WriteFile(filepath.Join(dir, documentName), []byte("{}"), 0o644))
	_, err = s.Upsert("cat.png", 1, "image/png", "/files/cat.png")
	assert.NoError(t, err)
}

func TestDocumentSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	s, err := NewStore(dir)
	require.NoError(t, err)

	_, err = s.Upsert("cat.png", 42, "image/png", "/files/cat.png")
	require.NoError(t, err)
	s.Close()

	reopened, err := NewStore(dir)
	require.NoError(t, err)
	defer reopened.Close()

	records, err := reopened.GetAll()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, int64(42), records[0].Size)
}

func TestMutationAfterClose(t *testing.T) {
	s, err := NewStore(t.TempDir())
	require.NoError(t, err)
	s.Close()

	_, err = s.Upsert("cat.png", 1, "image/png", "/files/cat.png")
	assert.ErrorIs(t, err, ErrClosed)
}
