package sdk

import (
	"sync"

	"github.com/shelfstream-dev/shelfstream/pkg/schema"
)

// Mirror is a subscriber-side copy of the catalog. It starts empty, is
// replaced wholesale by a snapshot event, and then tracks incremental events.
//
// There is no sequence numbering upstream, so every rule is idempotent:
// applying the same event twice leaves the mirror exactly as applying it once.
type Mirror struct {
	mu    sync.RWMutex
	books []schema.Book
}

func NewMirror() *Mirror {
	return &Mirror{}
}

// Apply folds one event into the local copy.
func (m *Mirror) Apply(ev schema.Event) error {
	switch ev.Type {
	case schema.EventSnapshot:
		books, err := ev.Books()
		if err != nil {
			return err
		}
		m.mu.Lock()
		m.books = books
		m.mu.Unlock()

	case schema.EventAdded:
		book, err := ev.Book()
		if err != nil {
			return err
		}
		m.mu.Lock()
		if m.indexOf(book.ID) < 0 {
			m.books = append(m.books, book)
		}
		m.mu.Unlock()

	case schema.EventUpdated:
		book, err := ev.Book()
		if err != nil {
			return err
		}
		m.mu.Lock()
		if i := m.indexOf(book.ID); i >= 0 {
			m.books[i] = book
		}
		m.mu.Unlock()

	case schema.EventDeleted:
		id, err := ev.BookID()
		if err != nil {
			return err
		}
		m.mu.Lock()
		if i := m.indexOf(id); i >= 0 {
			m.books = append(m.books[:i], m.books[i+1:]...)
		}
		m.mu.Unlock()
	}
	// Unknown event types are skipped so older mirrors tolerate newer servers.
	return nil
}

// Books returns a copy of the local catalog in its current order.
func (m *Mirror) Books() []schema.Book {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]schema.Book, len(m.books))
	copy(out, m.books)
	return out
}

// Len returns the number of mirrored records.
func (m *Mirror) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.books)
}

// indexOf MUST be called while holding m.mu.
func (m *Mirror) indexOf(id string) int {
	for i, b := range m.books {
		if b.ID == id {
			return i
		}
	}
	return -1
}
