package catalog

import (
	"encoding/json"
	"errors"
	"net/url"
	"path"
	"strings"

	"image-vault/internal/storage"
)

// ErrNoTargets is returned when a delete request resolves to zero
// filenames.
var ErrNoTargets = errors.New("no valid delete targets")

// DeleteResult reports both halves of one item's deletion. File and
// record removal are independent and best-effort; false flags mean
// "was not there", never a failure of the whole operation.
type DeleteResult struct {
	Filename      string `json:"filename"`
	FileDeleted   bool   `json:"fileDeleted"`
	RecordDeleted bool   `json:"recordDeleted"`
}

// ResolveTargets normalizes a heterogeneous list of delete identifiers to
// a deduplicated, ordered set of canonical filenames. Accepted shapes per
// item: a raw filename, an absolute URL (resolved to the URL-decoded
// basename of its path), a comma- or newline-separated list of either, or
// a JSON array of strings pasted as one item.
func ResolveTargets(items []string) []string {
	seen := make(map[string]bool)
	var names []string
	add := func(name string) {
		if name == "" || seen[name] {
			return
		}
		seen[name] = true
		names = append(names, name)
	}

	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		if strings.HasPrefix(item, "[") {
			var nested []string
			if err := json.Unmarshal([]byte(item), &nested); err == nil {
				for _, name := range ResolveTargets(nested) {
					add(name)
				}
				continue
			}
		}
		for _, token := range splitTokens(item) {
			add(resolveToken(token))
		}
	}
	return names
}

func splitTokens(item string) []string {
	return strings.FieldsFunc(item, func(r rune) bool {
		return r == ',' || r == '\n' || r == '\r'
	})
}

func resolveToken(token string) string {
	token = strings.TrimSpace(token)
	if token == "" {
		return ""
	}
	if u, err := url.Parse(token); err == nil && u.IsAbs() && u.Path != "" {
		base := path.Base(u.Path)
		if decoded, err := url.PathUnescape(base); err == nil {
			base = decoded
		}
		return storage.Sanitize(base)
	}
	return storage.Sanitize(token)
}

// DeleteItems resolves the raw identifiers, removes each file from disk
// and its record from the store, and reports per-item outcomes. Record
// removal for the whole set is one serialized store operation; a store
// failure aborts the call with prior state preserved.
func (s *Service) DeleteItems(items []string) ([]DeleteResult, error) {
	names := ResolveTargets(items)
	if len(names) == 0 {
		return nil, ErrNoTargets
	}

	removedRecords, err := s.store.DeleteByFilenames(names)
	if err != nil {
		return nil, err
	}

	results := make([]DeleteResult, 0, len(names))
	for _, name := range names {
		fileDeleted, err := s.disk.Remove(name)
		if err != nil {
			fileDeleted = false
		}
		results = append(results, DeleteResult{
			Filename:      name,
			FileDeleted:   fileDeleted,
			RecordDeleted: removedRecords[name],
		})
	}
	return results, nil
}
