package schema

import (
	"errors"
	"strings"
)

// ErrBookNotFound is returned when an operation references an id that is
// absent from the catalog.
var ErrBookNotFound = errors.New("book not found")

// ValidationError reports which required fields were missing or invalid on a
// create or update request.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "missing or invalid fields: " + strings.Join(e.Fields, ", ")
}

// --- Functional Interfaces (Interface Segregation) ---

// CatalogReader defines the side-effect-free read operations.
type CatalogReader interface {
	// ListBooks returns the full catalog in its current order.
	ListBooks() ([]Book, error)
	// GetBook returns the record with the given id, or ErrBookNotFound.
	GetBook(id string) (Book, error)
}

// CatalogWriter defines the mutating operations. Each successful mutation is
// persisted and broadcast before the call returns.
type CatalogWriter interface {
	// CreateBook validates the input, assigns a fresh id and timestamps, and
	// appends the record. Returns a *ValidationError on bad input.
	CreateBook(in BookInput) (Book, error)
	// UpdateBook replaces the record in place, preserving id, createdAt and
	// position. Returns ErrBookNotFound or a *ValidationError.
	UpdateBook(id string, in BookInput) (Book, error)
	// DeleteBook removes the record and returns its id, or ErrBookNotFound.
	DeleteBook(id string) (string, error)
}

// --- Composite Interface ---

// CatalogService is the primary contract for mutating and reading the
// catalog. Both the in-process service and the remote HTTP client implement
// it, so callers do not care whether the store is embedded or remote.
type CatalogService interface {
	CatalogReader
	CatalogWriter
}
