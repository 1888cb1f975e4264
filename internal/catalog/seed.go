package catalog

import (
	"time"

	"github.com/google/uuid"

	"github.com/shelfstream-dev/shelfstream/pkg/schema"
)

// SeedCatalog returns the starter records used when the backing file holds no
// data. Each call assigns fresh ids and timestamps.
func SeedCatalog() []schema.Book {
	now := time.Now().UTC()
	return []schema.Book{
		{
			ID:            uuid.NewString(),
			Title:         "The Great Gatsby",
			Author:        "F. Scott Fitzgerald",
			Genre:         "Classic Fiction",
			PublishedYear: 1925,
			ISBN:          "978-0-7432-7356-5",
			Description:   "A classic American novel set in the Jazz Age.",
			CreatedAt:     now,
			UpdatedAt:     now,
		},
		{
			ID:            uuid.NewString(),
			Title:         "To Kill a Mockingbird",
			Author:        "Harper Lee",
			Genre:         "Fiction",
			PublishedYear: 1960,
			ISBN:          "978-0-06-112008-4",
			Description:   "A gripping tale of racial injustice and childhood innocence.",
			CreatedAt:     now,
			UpdatedAt:     now,
		},
		{
			ID:            uuid.NewString(),
			Title:         "1984",
			Author:        "George Orwell",
			Genre:         "Dystopian Fiction",
			PublishedYear: 1949,
			ISBN:          "978-0-452-28423-4",
			Description:   "A dystopian social science fiction novel about totalitarian control.",
			CreatedAt:     now,
			UpdatedAt:     now,
		},
	}
}
