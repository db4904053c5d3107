package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
)

// Disk stores uploaded files under a single flat directory, named exactly
// as uploaded (post-sanitization). Filenames key the directory, so
// concurrent writes to different names never collide.
type Disk struct {
	root string
}

func NewDisk(root string) (*Disk, error) {
	root = filepath.Clean(root)
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("creating upload directory: %w", err)
	}
	return &Disk{root: root}, nil
}

// Path returns the on-disk location for a sanitized filename.
func (d *Disk) Path(filename string) string {
	return filepath.Join(d.root, filename)
}

func (d *Disk) Exists(filename string) (bool, error) {
	_, err := os.Stat(d.Path(filename))
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Save writes the full payload, replacing any previous content at that name.
func (d *Disk) Save(filename string, data []byte) error {
	if err := os.WriteFile(d.Path(filename), data, 0o644); err != nil {
		return fmt.Errorf("writing file %q: %w", filename, err)
	}
	return nil
}

// Remove deletes the file if present. Absence is not an error; the bool
// reports whether a file was actually removed.
func (d *Disk) Remove(filename string) (bool, error) {
	err := os.Remove(d.Path(filename))
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("removing file %q: %w", filename, err)
	}
	return true, nil
}

// DetectType picks the content type for an upload: the declared multipart
// type wins when it says something, otherwise the payload is sniffed.
func DetectType(declared string, data []byte) string {
	if declared != "" && declared != "application/octet-stream" {
		return declared
	}
	return mimetype.Detect(data).String()
}
