package catalog

import (
	"log"
	"sync"

	"github.com/shelfstream-dev/shelfstream/pkg/schema"
)

// Store holds the authoritative ordered sequence of book records. Order
// reflects insertion order: updates replace in place and deletes remove in
// place, nothing else reorders the sequence.
//
// The mutators (Append, ReplaceByID, RemoveByID) are called only by the
// Service; every other component works with copies handed out by List.
type Store struct {
	mu        sync.RWMutex
	books     []schema.Book
	persister *Persistence
}

// NewStore initializes a store. It accepts existing data (from
// Persistence.Load) and a persister; both may be nil.
func NewStore(initial []schema.Book, p *Persistence) *Store {
	return &Store{
		books:     initial,
		persister: p,
	}
}

// Open loads the backing file and returns a ready store. If the file is
// absent, empty, or unparsable, the store starts from the seed catalog and
// persists it immediately. Open never fails on bad data; a read or parse
// error is logged and treated as no data.
func Open(path string) (*Store, error) {
	p, err := NewPersistence(path)
	if err != nil {
		return nil, err
	}

	books, err := p.Load()
	if err != nil {
		log.Printf("Warning: could not load catalog from %s: %v", path, err)
		books = nil
	}

	s := NewStore(books, p)
	if len(books) == 0 {
		s.books = SeedCatalog()
		s.persist(s.books)
	}
	return s, nil
}

// List returns a copy of the full sequence in current order. Callers must
// not assume the copy tracks later mutations.
func (s *Store) List() []schema.Book {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]schema.Book, len(s.books))
	copy(out, s.books)
	return out
}

// FindByID returns the record with the given id.
func (s *Store) FindByID(id string) (schema.Book, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, b := range s.books {
		if b.ID == id {
			return b, true
		}
	}
	return schema.Book{}, false
}

// Append adds a record to the end of the sequence and persists.
func (s *Store) Append(b schema.Book) {
	s.mu.Lock()
	s.books = append(s.books, b)
	snapshot := s.copyLocked()
	s.mu.Unlock()

	s.persist(snapshot)
}

// ReplaceByID swaps the record with the matching id in place, preserving its
// position, and persists. Reports whether the id was found.
func (s *Store) ReplaceByID(id string, b schema.Book) bool {
	s.mu.Lock()
	found := false
	for i := range s.books {
		if s.books[i].ID == id {
			s.books[i] = b
			found = true
			break
		}
	}
	var snapshot []schema.Book
	if found {
		snapshot = s.copyLocked()
	}
	s.mu.Unlock()

	if found {
		s.persist(snapshot)
	}
	return found
}

// RemoveByID deletes the record with the matching id in place and persists.
// Reports whether the id was found.
func (s *Store) RemoveByID(id string) bool {
	s.mu.Lock()
	found := false
	for i := range s.books {
		if s.books[i].ID == id {
			s.books = append(s.books[:i], s.books[i+1:]...)
			found = true
			break
		}
	}
	var snapshot []schema.Book
	if found {
		snapshot = s.copyLocked()
	}
	s.mu.Unlock()

	if found {
		s.persist(snapshot)
	}
	return found
}

// copyLocked snapshots the sequence for a safe out-of-lock disk write.
// It MUST be called while holding s.mu.
func (s *Store) copyLocked() []schema.Book {
	out := make([]schema.Book, len(s.books))
	copy(out, s.books)
	return out
}

// persist mirrors the sequence to the backing file. A write failure is
// degraded durability, not a failed mutation: the in-memory state stays
// authoritative for the running process and the broadcast still fires.
func (s *Store) persist(snapshot []schema.Book) {
	if s.persister == nil {
		return
	}
	if err := s.persister.Save(snapshot); err != nil {
		log.Printf("Warning: could not persist catalog: %v", err)
	}
}
