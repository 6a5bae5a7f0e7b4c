// Package favorites stores named queries as .sql files in a directory.
package favorites

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
	"unicode"
)

// Ext is the file extension of a favorite.
const Ext = ".sql"

// ErrInvalidName is returned for names that can't be used as a file name.
var ErrInvalidName = errors.New("invalid favorite name")

// Favorite is a saved query.
type Favorite struct {
	Name    string
	Query   string
	Path    string
	ModTime time.Time
}

// Lines returns the query split into editor lines.
func (f Favorite) Lines() []string {
	return strings.Split(strings.TrimRight(f.Query, "\n"), "\n")
}

// Store reads and writes favorites in one directory.
type Store struct {
	dir string
}

// NewStore creates the directory if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create favorites directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the favorites directory.
func (s *Store) Dir() string {
	return s.dir
}

// ValidateName checks that name is usable as a file name: letters, digits,
// space, '-', '_' and '.', not starting with '.'.
func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" || strings.HasPrefix(name, ".") {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || strings.ContainsRune(" -_.", r) {
			continue
		}
		return fmt.Errorf("%w: %q contains %q", ErrInvalidName, name, r)
	}
	return nil
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, strings.TrimSpace(name)+Ext)
}

// Save writes query under name, replacing an existing favorite.
func (s *Store) Save(name, query string) (Favorite, error) {
	if err := ValidateName(name); err != nil {
		return Favorite{}, err
	}
	name = strings.TrimSpace(name)
	if !strings.HasSuffix(query, "\n") {
		query += "\n"
	}

	path := s.path(name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(query), 0644); err != nil {
		return Favorite{}, fmt.Errorf("failed to write favorite: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return Favorite{}, fmt.Errorf("failed to write favorite: %w", err)
	}
	return s.Get(name)
}

// Get reads one favorite.
func (s *Store) Get(name string) (Favorite, error) {
	path := s.path(name)
	data, err := os.ReadFile(path)
	if err != nil {
		return Favorite{}, fmt.Errorf("failed to read favorite: %w", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		return Favorite{}, fmt.Errorf("failed to read favorite: %w", err)
	}
	return Favorite{
		Name:    strings.TrimSpace(name),
		Query:   string(data),
		Path:    path,
		ModTime: info.ModTime(),
	}, nil
}

// Delete removes a favorite.
func (s *Store) Delete(name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	if err := os.Remove(s.path(name)); err != nil {
		return fmt.Errorf("failed to delete favorite: %w", err)
	}
	return nil
}

// List returns every favorite sorted by name.
func (s *Store) List() ([]Favorite, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read favorites directory: %w", err)
	}

	var out []Favorite
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != Ext || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		f, err := s.Get(strings.TrimSuffix(e.Name(), Ext))
		if err != nil {
			// removed between ReadDir and Get
			continue
		}
		out = append(out, f)
	}

	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out, nil
}
