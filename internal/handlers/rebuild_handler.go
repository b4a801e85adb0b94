package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/visualenglishpl/backend/internal/models"
	"github.com/visualenglishpl/backend/internal/services"
	"github.com/visualenglishpl/backend/internal/storage"
	"github.com/visualenglishpl/backend/libs/handlers"
)

// QARebuilder recompiles a book's question mapping from its spreadsheet,
// implemented by services.QAStore.
type QARebuilder interface {
	// Rebuild recompiles the mapping and returns its entry count. The
	// previous snapshot stays live when the rebuild fails.
	Rebuild(ctx context.Context, bookID string) (int, error)
}

// RebuildHandler handles the service-to-service Q&A rebuild endpoint
type RebuildHandler struct {
	handlers.BaseHandler
	rebuilder QARebuilder
}

// NewRebuildHandler creates a new rebuild handler
func NewRebuildHandler(rebuilder QARebuilder, logger *zap.Logger) *RebuildHandler {
	return &RebuildHandler{
		BaseHandler: handlers.BaseHandler{Logger: logger},
		rebuilder:   rebuilder,
	}
}

// RegisterRoutes registers the rebuild route behind the API key middleware
func (h *RebuildHandler) RegisterRoutes(r chi.Router, apiKeyMiddleware func(http.Handler) http.Handler) {
	r.With(apiKeyMiddleware).Post("/admin/qa/{bookId}/rebuild", h.Rebuild)
}

// Rebuild handles POST /api/v1/admin/qa/{bookId}/rebuild
// @Summary Rebuild a book's question mapping
// @Description Recompile the question/answer mapping of a book from its spreadsheet. Called after a spreadsheet upload.
// @Tags admin
// @Produce json
// @Security ApiKeyAuth
// @Param bookId path string true "Book ID, e.g. 0a or 3"
// @Success 200 {object} map[string]any
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 502 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /api/v1/admin/qa/{bookId}/rebuild [post]
func (h *RebuildHandler) Rebuild(w http.ResponseWriter, r *http.Request) {
	bookID := chi.URLParam(r, "bookId")

	if _, ok := models.BookByID(bookID); !ok {
		h.RespondError(w, http.StatusNotFound, "book not found")
		return
	}

	entries, err := h.rebuilder.Rebuild(r.Context(), bookID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrSourceUnreadable):
			h.RespondError(w, http.StatusBadGateway, "question spreadsheet missing or unreadable")
		case errors.Is(err, storage.ErrSourceUnavailable):
			h.RespondError(w, http.StatusServiceUnavailable, "content storage unavailable")
		default:
			h.Logger.Error("failed to rebuild question mapping",
				zap.String("book_id", bookID),
				zap.Error(err),
			)
			h.RespondError(w, http.StatusInternalServerError, "failed to rebuild question mapping")
		}
		return
	}

	h.Logger.Info("question mapping rebuilt",
		zap.String("book_id", bookID),
		zap.Int("entries", entries),
	)
	h.RespondJSON(w, http.StatusOK, map[string]any{
		"bookId":  bookID,
		"entries": entries,
	})
}
