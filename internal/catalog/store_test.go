package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shelfstream-dev/shelfstream/pkg/schema"
)

func TestOpenSeedsWhenFileMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "books.json")

	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	books := store.List()
	if len(books) != 3 {
		t.Fatalf("Expected 3 seed books, got %d", len(books))
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatal("Seed catalog was not persisted to disk")
	}

	// Reopening must keep the same records instead of reseeding
	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("Reopen failed: %v", err)
	}
	again := reopened.List()
	if len(again) != 3 || again[0].ID != books[0].ID {
		t.Errorf("Reopen changed the catalog: %v vs %v", again[0].ID, books[0].ID)
	}
}

func TestOpenSeedsOnCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "books.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatalf("Failed to write corrupt file: %v", err)
	}

	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed on corrupt file: %v", err)
	}
	if len(store.List()) != 3 {
		t.Errorf("Expected seed catalog after corrupt file, got %d books", len(store.List()))
	}
}

func TestStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "books.json")
	p, err := NewPersistence(path)
	if err != nil {
		t.Fatalf("NewPersistence failed: %v", err)
	}

	store := NewStore(nil, p)
	store.Append(schema.Book{ID: "b1", Title: "Dune", Author: "Frank Herbert", Genre: "SciFi", PublishedYear: 1965})

	loaded, err := p.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(loaded) != 1 || loaded[0].ID != "b1" || loaded[0].Title != "Dune" {
		t.Errorf("Loaded data mismatch: %+v", loaded)
	}
}

func TestMutationsPreserveOrder(t *testing.T) {
	store := NewStore(nil, nil)
	store.Append(schema.Book{ID: "a", Title: "A"})
	store.Append(schema.Book{ID: "b", Title: "B"})
	store.Append(schema.Book{ID: "c", Title: "C"})

	if !store.ReplaceByID("b", schema.Book{ID: "b", Title: "B2"}) {
		t.Fatal("ReplaceByID did not find existing id")
	}
	books := store.List()
	if books[0].ID != "a" || books[1].ID != "b" || books[2].ID != "c" {
		t.Errorf("Replace changed the order: %v", books)
	}
	if books[1].Title != "B2" {
		t.Errorf("Replace did not swap the record: %+v", books[1])
	}

	if !store.RemoveByID("b") {
		t.Fatal("RemoveByID did not find existing id")
	}
	books = store.List()
	if len(books) != 2 || books[0].ID != "a" || books[1].ID != "c" {
		t.Errorf("Remove did not delete in place: %v", books)
	}

	if store.ReplaceByID("missing", schema.Book{ID: "missing"}) {
		t.Error("ReplaceByID reported success for unknown id")
	}
	if store.RemoveByID("missing") {
		t.Error("RemoveByID reported success for unknown id")
	}
}

func TestListReturnsCopy(t *testing.T) {
	store := NewStore(nil, nil)
	store.Append(schema.Book{ID: "a", Title: "A"})

	books := store.List()
	books[0].Title = "mutated"

	if store.List()[0].Title != "A" {
		t.Error("Mutating the List result leaked into the store")
	}
}
