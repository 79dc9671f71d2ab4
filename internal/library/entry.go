package library

import (
	"path/filepath"
	"time"
)

// Entry is the manifest of an imported dataset.
type Entry struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Source     string    `json:"source"`
	Profile    string    `json:"profile"`
	Rows       int       `json:"rows"`
	Columns    []string  `json:"columns"`
	ImportedAt time.Time `json:"imported_at"`

	// Not serialized: on-disk location of the dataset directory
	dir string `json:"-"`
}

// Dir returns the entry's directory inside the library.
func (e *Entry) Dir() string { return e.dir }

// DataPath returns the stored, normalized CSV copy.
func (e *Entry) DataPath() string { return filepath.Join(e.dir, dataFileName) }
