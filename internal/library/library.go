// Package library stores imported datasets under a directory so they can be
// referenced by ID or name. Only datasets are stored; filter selections never
// are.
package library

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/KaramelBytes/msrp-cli/internal/dataset"
	"github.com/KaramelBytes/msrp-cli/internal/utils"
)

const (
	manifestFileName = "dataset.json"
	dataFileName     = "data.csv"
)

// ErrNotFound is returned when no imported dataset matches a reference.
var ErrNotFound = errors.New("dataset not found in library")

// Library is a directory of imported datasets, one subdirectory per ID.
type Library struct {
	root string
}

// Open returns the library rooted at dir, creating it when absent.
func Open(dir string) (*Library, error) {
	if dir == "" {
		return nil, errors.New("library directory not set")
	}
	if err := utils.EnsureDir(dir); err != nil {
		return nil, fmt.Errorf("ensure library dir: %w", err)
	}
	return &Library{root: dir}, nil
}

// Root returns the library directory.
func (l *Library) Root() string { return l.root }

// ImportOptions controls Import.
type ImportOptions struct {
	Name     string
	Profile  string
	Required []string
	Load     dataset.LoadOptions
}

// Import validates and normalizes a file and stores a copy with a generated
// ID. The stored CSV holds MSRP as plain integers.
func (l *Library) Import(path string, opt ImportOptions) (*Entry, error) {
	t, err := dataset.Load(path, opt.Load)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	if err := dataset.Validate(t, opt.Required); err != nil {
		return nil, err
	}
	ds, err := dataset.Normalize(t)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(opt.Name)
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	e := &Entry{
		ID:         uuid.NewString(),
		Name:       name,
		Source:     abs,
		Profile:    opt.Profile,
		Rows:       ds.Len(),
		Columns:    ds.Columns,
		ImportedAt: time.Now().UTC(),
	}
	e.dir = filepath.Join(l.root, e.ID)
	if err := utils.EnsureDir(e.dir); err != nil {
		return nil, fmt.Errorf("ensure dataset dir: %w", err)
	}

	var buf bytes.Buffer
	if err := dataset.WriteCSV(&buf, ds.Table()); err != nil {
		return nil, err
	}
	if err := utils.SafeWriteFile(e.DataPath(), buf.Bytes()); err != nil {
		return nil, err
	}
	if err := e.save(); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *Entry) save() error {
	data, err := utils.PrettyJSON(e)
	if err != nil {
		return err
	}
	return utils.SafeWriteFile(filepath.Join(e.dir, manifestFileName), data)
}

// LoadEntry reads a dataset.json from dir.
func LoadEntry(dir string) (*Entry, error) {
	path := filepath.Join(dir, manifestFileName)
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("dataset manifest not found at %s: %w", path, err)
		}
		return nil, fmt.Errorf("read dataset manifest: %w", err)
	}
	var e Entry
	if err := json.Unmarshal(b, &e); err != nil {
		return nil, fmt.Errorf("parse dataset manifest: %w", err)
	}
	e.dir = dir
	return &e, nil
}

// List returns all imported datasets, oldest first. Directories without a
// readable manifest are skipped.
func (l *Library) List() ([]*Entry, error) {
	items, err := os.ReadDir(l.root)
	if err != nil {
		return nil, fmt.Errorf("read library dir: %w", err)
	}
	var out []*Entry
	for _, it := range items {
		if !it.IsDir() {
			continue
		}
		e, err := LoadEntry(filepath.Join(l.root, it.Name()))
		if err != nil {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ImportedAt.Equal(out[j].ImportedAt) {
			return out[i].Name < out[j].Name
		}
		return out[i].ImportedAt.Before(out[j].ImportedAt)
	})
	return out, nil
}

// Resolve finds a dataset by full ID, unique ID prefix or case-insensitive
// name. A name shared by several datasets is ambiguous.
func (l *Library) Resolve(ref string) (*Entry, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, ErrNotFound
	}
	if _, err := uuid.Parse(ref); err == nil {
		e, err := LoadEntry(filepath.Join(l.root, ref))
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, ref)
		}
		return e, nil
	}
	all, err := l.List()
	if err != nil {
		return nil, err
	}
	var matches []*Entry
	for _, e := range all {
		if strings.EqualFold(e.Name, ref) {
			matches = append(matches, e)
		}
	}
	if len(matches) == 0 && len(ref) >= 4 {
		for _, e := range all {
			if strings.HasPrefix(e.ID, strings.ToLower(ref)) {
				matches = append(matches, e)
			}
		}
	}
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, ref)
	case 1:
		return matches[0], nil
	default:
		ids := make([]string, len(matches))
		for i, m := range matches {
			ids[i] = m.ID
		}
		return nil, fmt.Errorf("%q matches %d datasets (%s); use an ID", ref, len(matches), strings.Join(ids, ", "))
	}
}

// Table reads the stored copy of an entry.
func (e *Entry) Table() (*dataset.Table, error) {
	t, err := dataset.Load(e.DataPath(), dataset.LoadOptions{Delimiter: ','})
	if err != nil {
		return nil, err
	}
	t.Name = e.Name
	return t, nil
}

// Remove deletes an imported dataset.
func (l *Library) Remove(e *Entry) error {
	if e.dir == "" || filepath.Dir(e.dir) != filepath.Clean(l.root) {
		return fmt.Errorf("dataset %s is not in library %s", e.ID, l.root)
	}
	return os.RemoveAll(e.dir)
}
