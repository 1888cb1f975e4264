// Package schema defines universal data structures shared by the ShelfStream
// server, the client SDK, and the wire protocol between them.
package schema

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Book represents a single catalog record. The JSON field names are the wire
// format used by both the HTTP API and the push channel.
type Book struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Author        string    `json:"author"`
	Genre         string    `json:"genre"`
	PublishedYear int       `json:"publishedYear"`
	ISBN          string    `json:"isbn"`
	Description   string    `json:"description"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// BookInput is the caller-supplied payload for create and update operations.
// Title, Author, Genre and PublishedYear are required; ISBN and Description
// default to the empty string.
type BookInput struct {
	Title         string `json:"title" validate:"required"`
	Author        string `json:"author" validate:"required"`
	Genre         string `json:"genre" validate:"required"`
	PublishedYear Year   `json:"publishedYear" validate:"required,gt=0"`
	ISBN          string `json:"isbn"`
	Description   string `json:"description"`
}

// Year is a publication year that accepts either a JSON number or a numeric
// string, so form-shaped payloads like {"publishedYear": "1965"} still parse.
type Year int

func (y *Year) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		*y = 0
		return nil
	}
	s = strings.Trim(s, `"`)
	if s == "" {
		*y = 0
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("publishedYear must be an integer: %q", s)
	}
	*y = Year(n)
	return nil
}

func (y Year) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Itoa(int(y))), nil
}

// Health is the payload of the health operation.
type Health struct {
	Status           string `json:"status"`
	Timestamp        string `json:"timestamp"`
	ConnectedClients int    `json:"connectedClients"`
}
