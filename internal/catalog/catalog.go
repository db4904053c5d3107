package catalog

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"image-vault/internal/storage"
	"image-vault/internal/store"
)

// Service is the read/maintenance path over the catalog: listing,
// filtering, CSV export and bulk deletion.
type Service struct {
	store *store.Store
	disk  *storage.Disk
}

func New(st *store.Store, disk *storage.Disk) *Service {
	return &Service{store: st, disk: disk}
}

// List returns all records, newest update first. A non-empty filter keeps
// records whose filename, URL or MIME type contains it, case-insensitively.
func (s *Service) List(filter string) ([]store.ImageRecord, error) {
	records, err := s.store.GetAll()
	if err != nil {
		return nil, err
	}
	if filter == "" {
		return records, nil
	}
	needle := strings.ToLower(filter)
	matched := make([]store.ImageRecord, 0, len(records))
	for _, rec := range records {
		if strings.Contains(strings.ToLower(rec.Filename), needle) ||
			strings.Contains(strings.ToLower(rec.URL), needle) ||
			strings.Contains(strings.ToLower(rec.Mime), needle) {
			matched = append(matched, rec)
		}
	}
	return matched, nil
}

// ExportCSV projects the whole catalog as CSV with a fixed column order.
// Quoting and escaping follow RFC 4180 (embedded quotes doubled).
func (s *Service) ExportCSV() (string, error) {
	records, err := s.store.GetAll()
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"filename", "url", "size", "mime", "createdAt", "updatedAt"}); err != nil {
		return "", fmt.Errorf("writing csv header: %w", err)
	}
	for _, rec := range records {
		row := []string{
			rec.Filename,
			rec.URL,
			strconv.FormatInt(rec.Size, 10),
			rec.Mime,
			rec.CreatedAt.Format(time.RFC3339),
			rec.UpdatedAt.Format(time.RFC3339),
		}
		if err := w.Write(row); err != nil {
			return "", fmt.Errorf("writing csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("flushing csv: %w", err)
	}
	return buf.String(), nil
}
