package directory

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"wedding-relay/internal/models"
)

// FileStore keeps the directory in a local CSV file laid out like the sheet.
type FileStore struct {
	mu   sync.Mutex
	file string
}

// NewFileStore opens a CSV directory, creating it with a header row if needed.
func NewFileStore(filePath string) (*FileStore, error) {
	s := &FileStore{file: filePath}

	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		if err := s.save([][]string{models.HeaderRow()}); err != nil {
			return nil, fmt.Errorf("failed to initialize directory file: %w", err)
		}
	} else if err != nil {
		return nil, unavailable("stat directory file", err)
	}

	return s, nil
}

// ReadAll loads every row from disk, header included.
func (s *FileStore) ReadAll(_ context.Context) ([][]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.load()
}

// WriteCell rewrites the file with one cell replaced.
func (s *FileStore) WriteCell(_ context.Context, row models.RowLocator, col models.Column, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.load()
	if err != nil {
		return err
	}
	if !row.Valid() || int(row) > len(rows) {
		return fmt.Errorf("row %d of %d: %w", row, len(rows), ErrInvalidLocator)
	}
	if col < 0 || int(col) >= models.NumColumns {
		return fmt.Errorf("column %d out of range", col)
	}

	idx := int(row) - 1
	for len(rows[idx]) < models.NumColumns {
		rows[idx] = append(rows[idx], "")
	}
	rows[idx][col] = value

	return s.save(rows)
}

// Append adds guest rows below the existing ones.
func (s *FileStore) Append(guests ...[]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.load()
	if err != nil {
		return err
	}
	return s.save(append(rows, guests...))
}

func (s *FileStore) load() ([][]string, error) {
	f, err := os.Open(s.file)
	if err != nil {
		return nil, unavailable("open directory file", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, unavailable("parse directory file", err)
	}
	return rows, nil
}

// save writes to a temp file and renames it into place.
func (s *FileStore) save(rows [][]string) error {
	dir := filepath.Dir(s.file)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return unavailable("create directory", err)
	}

	tmp, err := os.CreateTemp(dir, ".directory-*.csv")
	if err != nil {
		return unavailable("create temp file", err)
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	if err := w.WriteAll(rows); err != nil {
		tmp.Close()
		return unavailable("write directory file", err)
	}
	if err := tmp.Close(); err != nil {
		return unavailable("close directory file", err)
	}

	if err := os.Rename(tmp.Name(), s.file); err != nil {
		return unavailable("replace directory file", err)
	}
	return nil
}
