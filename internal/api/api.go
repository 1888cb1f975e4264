// Package api maps the catalog mutation operations onto HTTP.
package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/shelfstream-dev/shelfstream/internal/hub"
	"github.com/shelfstream-dev/shelfstream/pkg/schema"
)

type Handler struct {
	Catalog schema.CatalogService
	Hub     *hub.Hub
}

// Register wires the book routes onto a router group.
func (h *Handler) Register(r gin.IRouter) {
	r.GET("/books", h.ListBooks)
	r.GET("/books/:id", h.GetBook)
	r.POST("/books", h.CreateBook)
	r.PUT("/books/:id", h.UpdateBook)
	r.DELETE("/books/:id", h.DeleteBook)
	r.GET("/health", h.Health)
}

func (h *Handler) ListBooks(c *gin.Context) {
	books, err := h.Catalog.ListBooks()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if books == nil {
		books = []schema.Book{}
	}
	c.JSON(http.StatusOK, books)
}

func (h *Handler) GetBook(c *gin.Context) {
	book, err := h.Catalog.GetBook(c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, book)
}

func (h *Handler) CreateBook(c *gin.Context) {
	var in schema.BookInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	book, err := h.Catalog.CreateBook(in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, book)
}

func (h *Handler) UpdateBook(c *gin.Context) {
	var in schema.BookInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	book, err := h.Catalog.UpdateBook(c.Param("id"), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, book)
}

func (h *Handler) DeleteBook(c *gin.Context) {
	id, err := h.Catalog.DeleteBook(c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "message": "Book deleted successfully"})
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, schema.Health{
		Status:           "OK",
		Timestamp:        time.Now().UTC().Format(time.RFC3339),
		ConnectedClients: h.Hub.Count(),
	})
}

// fail translates service errors into wire responses. Validation failures
// name the offending fields; everything else stays generic.
func (h *Handler) fail(c *gin.Context, err error) {
	var verr *schema.ValidationError
	switch {
	case errors.Is(err, schema.ErrBookNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Book not found"})
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":  "Missing required fields",
			"fields": verr.Fields,
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
