// Package catalog owns the authoritative book collection: the in-memory
// ordered sequence, its flat-file persistence, and the validated mutation
// operations layered on top.
package catalog

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/shelfstream-dev/shelfstream/pkg/schema"
)

// Persistence handles the disk I/O for the Store. The backing file holds the
// full serialized catalog and is overwritten wholesale on every mutation.
type Persistence struct {
	path string
	mu   sync.Mutex // Protects concurrent writes to the filesystem
}

// NewPersistence initializes a persistence handler for the given file path.
func NewPersistence(path string) (*Persistence, error) {
	// Ensure the parent directory exists
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
	}
	return &Persistence{path: path}, nil
}

// Save writes the full catalog to the backing file atomically.
func (p *Persistence) Save(books []schema.Book) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	tempPath := p.path + ".tmp"

	bytes, err := json.MarshalIndent(books, "", "  ")
	if err != nil {
		return err
	}

	// Write to a temporary file first, then swap it in with an atomic rename.
	// If the power fails mid-write, the old file survives intact.
	if err := os.WriteFile(tempPath, bytes, 0644); err != nil {
		return err
	}
	return os.Rename(tempPath, p.path)
}

// Load reads the catalog from the backing file. A missing file is not an
// error; it simply yields an empty catalog.
func (p *Persistence) Load() ([]schema.Book, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	content, err := os.ReadFile(p.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var books []schema.Book
	if err := json.Unmarshal(content, &books); err != nil {
		return nil, err
	}
	return books, nil
}
