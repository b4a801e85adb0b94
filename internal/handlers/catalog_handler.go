package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/visualenglishpl/backend/internal/models"
	"github.com/visualenglishpl/backend/internal/services"
	"github.com/visualenglishpl/backend/libs/handlers"
)

// CatalogService is the interface that wraps methods for book catalog business logic.
type CatalogService interface {
	// Books returns the full static book catalog.
	Books() []models.Book
	// Units returns the units of a book with thumbnail URLs or fallback
	// colors. Returns an error wrapping ErrBookNotFound for a book ID
	// outside the catalog.
	Units(ctx context.Context, bookID string) ([]models.Unit, error)
}

// CatalogHandler handles HTTP requests for the book catalog
type CatalogHandler struct {
	handlers.BaseHandler
	service CatalogService
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(svc CatalogService, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		BaseHandler: handlers.BaseHandler{Logger: logger},
		service:     svc,
	}
}

// RegisterRoutes registers all catalog handler routes
func (h *CatalogHandler) RegisterRoutes(r chi.Router) {
	r.Get("/books", h.GetBooks)
	r.Get("/books/{bookId}/units", h.GetUnits)
}

// GetBooks handles GET /api/v1/books
// @Summary Get the book catalog
// @Description Get all books with their levels, unit counts and cover colors
// @Tags catalog
// @Produce json
// @Success 200 {array} models.Book
// @Router /api/v1/books [get]
func (h *CatalogHandler) GetBooks(w http.ResponseWriter, r *http.Request) {
	h.RespondJSON(w, http.StatusOK, h.service.Books())
}

// GetUnits handles GET /api/v1/books/{bookId}/units
// @Summary Get the units of a book
// @Description Get the unit list of a book with thumbnail URLs where available
// @Tags catalog
// @Produce json
// @Param bookId path string true "Book ID, e.g. 0a or 3"
// @Success 200 {array} models.Unit
// @Failure 404 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /api/v1/books/{bookId}/units [get]
func (h *CatalogHandler) GetUnits(w http.ResponseWriter, r *http.Request) {
	bookID := chi.URLParam(r, "bookId")

	units, err := h.service.Units(r.Context(), bookID)
	if err != nil {
		if errors.Is(err, services.ErrBookNotFound) {
			h.RespondError(w, http.StatusNotFound, "book not found")
			return
		}
		h.Logger.Error("failed to get units", zap.String("book_id", bookID), zap.Error(err))
		h.RespondError(w, http.StatusInternalServerError, "failed to get units")
		return
	}

	h.RespondJSON(w, http.StatusOK, units)
}
