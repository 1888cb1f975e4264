package sdk

import (
	"fmt"

	"github.com/shelfstream-dev/shelfstream/pkg/schema"
)

// Migrate copies every record from a source catalog into a destination
// catalog. This works for:
// - Embedded -> Remote (seeding a fresh daemon from a local file)
// - Remote -> Embedded (an offline backup)
// Destination records get fresh ids and timestamps.
func Migrate(src schema.CatalogReader, dst schema.CatalogWriter) error {
	books, err := src.ListBooks()
	if err != nil {
		return fmt.Errorf("failed to list source catalog: %w", err)
	}

	for _, b := range books {
		in := schema.BookInput{
			Title:         b.Title,
			Author:        b.Author,
			Genre:         b.Genre,
			PublishedYear: schema.Year(b.PublishedYear),
			ISBN:          b.ISBN,
			Description:   b.Description,
		}
		if _, err := dst.CreateBook(in); err != nil {
			return fmt.Errorf("failed to copy %q into destination: %w", b.Title, err)
		}
	}
	return nil
}
