package catalog

import (
	"errors"
	"log"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/shelfstream-dev/shelfstream/pkg/schema"
)

// Publisher receives one event per committed mutation. The hub implements it;
// tests and the embedded mode pass nil.
type Publisher interface {
	Publish(ev schema.Event)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report JSON field names in validation errors, not Go struct names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Service is the mutation API over a Store. It validates caller input,
// assigns ids and timestamps, and publishes a change event after each
// committed mutation.
//
// The commit mutex serializes validate → mutate → persist → publish, so the
// event stream every subscriber sees matches the order mutations committed.
type Service struct {
	mu        sync.Mutex
	store     *Store
	publisher Publisher
}

// NewService creates the mutation API over the given store. publisher may be
// nil, in which case mutations commit silently.
func NewService(store *Store, publisher Publisher) *Service {
	return &Service{
		store:     store,
		publisher: publisher,
	}
}

// ListBooks returns the full catalog in its current order.
func (s *Service) ListBooks() ([]schema.Book, error) {
	return s.store.List(), nil
}

// GetBook returns the record with the given id, or schema.ErrBookNotFound.
func (s *Service) GetBook(id string) (schema.Book, error) {
	book, ok := s.store.FindByID(id)
	if !ok {
		return schema.Book{}, schema.ErrBookNotFound
	}
	return book, nil
}

// CreateBook validates the input, appends a freshly identified record, and
// broadcasts it.
func (s *Service) CreateBook(in schema.BookInput) (schema.Book, error) {
	if err := validateInput(in); err != nil {
		return schema.Book{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	book := schema.Book{
		ID:            uuid.NewString(),
		Title:         in.Title,
		Author:        in.Author,
		Genre:         in.Genre,
		PublishedYear: int(in.PublishedYear),
		ISBN:          in.ISBN,
		Description:   in.Description,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	s.store.Append(book)
	s.publish(schema.EventAdded, book)
	return book, nil
}

// UpdateBook replaces the record in place, preserving id, createdAt and
// position, and broadcasts the full updated record.
func (s *Service) UpdateBook(id string, in schema.BookInput) (schema.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.store.FindByID(id)
	if !ok {
		return schema.Book{}, schema.ErrBookNotFound
	}
	if err := validateInput(in); err != nil {
		return schema.Book{}, err
	}

	updated := schema.Book{
		ID:            current.ID,
		Title:         in.Title,
		Author:        in.Author,
		Genre:         in.Genre,
		PublishedYear: int(in.PublishedYear),
		ISBN:          in.ISBN,
		Description:   in.Description,
		CreatedAt:     current.CreatedAt,
		UpdatedAt:     time.Now().UTC(),
	}

	s.store.ReplaceByID(id, updated)
	s.publish(schema.EventUpdated, updated)
	return updated, nil
}

// DeleteBook removes the record and broadcasts the removed id.
func (s *Service) DeleteBook(id string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.store.RemoveByID(id) {
		return "", schema.ErrBookNotFound
	}

	s.publish(schema.EventDeleted, id)
	return id, nil
}

func (s *Service) publish(eventType string, payload any) {
	if s.publisher == nil {
		return
	}
	ev, err := schema.NewEvent(eventType, payload)
	if err != nil {
		log.Printf("Warning: could not encode %s event: %v", eventType, err)
		return
	}
	s.publisher.Publish(ev)
}

// validateInput checks the required fields and the publication-year bounds,
// collecting every offending field name.
func validateInput(in schema.BookInput) error {
	var fields []string

	if err := validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				fields = append(fields, fe.Field())
			}
		} else {
			return err
		}
	}

	// The year must be a plausible publication year, up to a decade ahead for
	// announced titles.
	maxYear := time.Now().Year() + 10
	if int(in.PublishedYear) > maxYear && !contains(fields, "publishedYear") {
		fields = append(fields, "publishedYear")
	}

	if len(fields) > 0 {
		return &schema.ValidationError{Fields: fields}
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
