// Package sdk provides the client-side library for the ShelfStream catalog.
// It talks to a remote daemon over HTTP for mutations and over the push
// channel for live mirroring, and falls back to a local embedded catalog
// when no daemon is reachable.
package sdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shelfstream-dev/shelfstream/pkg/schema"
)

// Client is a remote client for a ShelfStream daemon.
// It implements the schema.CatalogService interface.
type Client struct {
	baseURL string
	http    *http.Client
}

// Connect probes a remote daemon and returns a client for it. baseURL is the
// daemon's HTTP root, e.g. http://localhost:3001.
func Connect(baseURL string) (*Client, error) {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
	if _, err := c.Health(); err != nil {
		return nil, fmt.Errorf("could not reach %s: %w", baseURL, err)
	}
	return c, nil
}

// ListBooks fetches the full catalog in server order.
func (c *Client) ListBooks() ([]schema.Book, error) {
	var books []schema.Book
	err := c.request(http.MethodGet, "/api/books", nil, &books)
	return books, err
}

// GetBook fetches one record, or schema.ErrBookNotFound.
func (c *Client) GetBook(id string) (schema.Book, error) {
	var book schema.Book
	err := c.request(http.MethodGet, "/api/books/"+url.PathEscape(id), nil, &book)
	return book, err
}

// CreateBook submits a new record and returns it as the server stored it.
func (c *Client) CreateBook(in schema.BookInput) (schema.Book, error) {
	var book schema.Book
	err := c.request(http.MethodPost, "/api/books", in, &book)
	return book, err
}

// UpdateBook replaces a record and returns the stored result.
func (c *Client) UpdateBook(id string, in schema.BookInput) (schema.Book, error) {
	var book schema.Book
	err := c.request(http.MethodPut, "/api/books/"+url.PathEscape(id), in, &book)
	return book, err
}

// DeleteBook removes a record and returns the removed id.
func (c *Client) DeleteBook(id string) (string, error) {
	var out struct {
		ID string `json:"id"`
	}
	err := c.request(http.MethodDelete, "/api/books/"+url.PathEscape(id), nil, &out)
	return out.ID, err
}

// Health reports daemon status and the live subscriber count.
func (c *Client) Health() (schema.Health, error) {
	var health schema.Health
	err := c.request(http.MethodGet, "/api/health", nil, &health)
	return health, err
}

// Watch opens a live mirror of the catalog over the push channel. The watcher
// reconnects on its own until ctx is cancelled or its retry budget runs out.
func (c *Client) Watch(ctx context.Context, settings *WatcherSettings) *Watcher {
	return NewWatcher(ctx, c.PushURL(), settings)
}

// PushURL derives the websocket endpoint from the HTTP base URL.
func (c *Client) PushURL() string {
	return "ws" + strings.TrimPrefix(c.baseURL, "http") + "/ws"
}

// Internal helper for HTTP communication.
func (c *Client) request(method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

// decodeError rebuilds the service-level error from a wire response, so
// callers can match schema.ErrBookNotFound and *schema.ValidationError the
// same way they would against an embedded catalog.
func decodeError(resp *http.Response) error {
	var payload struct {
		Error  string   `json:"error"`
		Fields []string `json:"fields"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&payload)

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return schema.ErrBookNotFound
	case resp.StatusCode == http.StatusBadRequest && len(payload.Fields) > 0:
		return &schema.ValidationError{Fields: payload.Fields}
	case payload.Error != "":
		return fmt.Errorf("server error: %s", payload.Error)
	default:
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
}
