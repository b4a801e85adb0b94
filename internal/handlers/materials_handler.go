package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	authmw "github.com/visualenglishpl/backend/libs/auth/middleware"
	"github.com/visualenglishpl/backend/libs/handlers"

	"github.com/visualenglishpl/backend/internal/models"
	"github.com/visualenglishpl/backend/internal/services"
	"github.com/visualenglishpl/backend/internal/storage"
)

// MaterialsResolver is the interface that wraps slide resolution.
type MaterialsResolver interface {
	// Resolve returns the ordered, decorated slide list of one unit.
	// A listing failure returns an error wrapping storage.ErrSourceUnavailable.
	Resolve(ctx context.Context, bookID, unitID string, opts services.ResolveOptions) ([]models.AssetRecord, error)
}

// OverlayWriter mutates the per-user slide overlays,
// implemented by repositories.OverlayRepository.
type OverlayWriter interface {
	// SetOrder stores a custom slide order, replacing any previous one.
	SetOrder(ctx context.Context, userID int, bookID, unitID string, positions []int) error
	// ClearOrder removes the custom order, absence is not an error.
	ClearOrder(ctx context.Context, userID int, bookID, unitID string) error
	// MarkDeleted marks slide positions deleted, already-marked positions are ignored.
	MarkDeleted(ctx context.Context, userID int, bookID, unitID string, positions []int) error
	// Unmark restores one deleted slide position.
	Unmark(ctx context.Context, userID int, bookID, unitID string, position int) error
}

// MaterialsHandler handles HTTP requests for unit slide materials and
// the per-user overlays on them
type MaterialsHandler struct {
	handlers.BaseHandler
	resolver MaterialsResolver
	overlays OverlayWriter
}

// NewMaterialsHandler creates a new materials handler
func NewMaterialsHandler(resolver MaterialsResolver, overlays OverlayWriter, logger *zap.Logger) *MaterialsHandler {
	return &MaterialsHandler{
		BaseHandler: handlers.BaseHandler{Logger: logger},
		resolver:    resolver,
		overlays:    overlays,
	}
}

// RegisterRoutes registers all materials handler routes
func (h *MaterialsHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/books/{bookId}/units/{unitNumber}", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/materials", h.GetMaterials)
		r.Put("/order", h.SetOrder)
		r.Delete("/order", h.ClearOrder)
		r.Post("/deletions", h.MarkDeleted)
		r.Delete("/deletions/{position}", h.RestoreDeleted)
	})
}

// unitParams extracts and validates the book and unit path parameters
// against the static catalog. A false return means the 404 was already
// written.
func (h *MaterialsHandler) unitParams(w http.ResponseWriter, r *http.Request) (string, string, bool) {
	bookID := chi.URLParam(r, "bookId")
	unitID := chi.URLParam(r, "unitNumber")

	book, ok := models.BookByID(bookID)
	if !ok {
		h.RespondError(w, http.StatusNotFound, "book not found")
		return "", "", false
	}
	n, err := strconv.Atoi(unitID)
	if err != nil || n < 1 || n > book.UnitCount {
		h.RespondError(w, http.StatusNotFound, "unit not found")
		return "", "", false
	}

	return bookID, unitID, true
}

// GetMaterials handles GET /api/v1/books/{bookId}/units/{unitNumber}/materials
// @Summary Get the slide materials of a unit
// @Description Get the ordered slide list of a unit with question/answer pairs and retrieval URLs, with the caller's saved order and deletions applied
// @Tags materials
// @Produce json
// @Security ApiKeyAuth
// @Param bookId path string true "Book ID, e.g. 0a or 3"
// @Param unitNumber path int true "Unit number"
// @Param documents query string false "Set to 1 to include document and legacy flash materials"
// @Success 200 {array} models.AssetRecord
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /api/v1/books/{bookId}/units/{unitNumber}/materials [get]
func (h *MaterialsHandler) GetMaterials(w http.ResponseWriter, r *http.Request) {
	userID, ok := authmw.GetUserID(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "user ID not found in context")
		return
	}
	bookID, unitID, ok := h.unitParams(w, r)
	if !ok {
		return
	}

	opts := services.ResolveOptions{
		UserID:           userID,
		IncludeDocuments: r.URL.Query().Get("documents") == "1",
	}

	assets, err := h.resolver.Resolve(r.Context(), bookID, unitID, opts)
	if err != nil {
		if errors.Is(err, storage.ErrSourceUnavailable) {
			h.RespondError(w, http.StatusServiceUnavailable, "content storage unavailable")
			return
		}
		h.Logger.Error("failed to resolve materials",
			zap.String("book_id", bookID),
			zap.String("unit_id", unitID),
			zap.Error(err),
		)
		h.RespondError(w, http.StatusInternalServerError, "failed to resolve materials")
		return
	}

	h.RespondJSON(w, http.StatusOK, assets)
}

// SetOrder handles PUT /api/v1/books/{bookId}/units/{unitNumber}/order
// @Summary Save a custom slide order
// @Description Store the caller's custom slide order for a unit. Positions index into the unit's default resolved order.
// @Tags materials
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param bookId path string true "Book ID"
// @Param unitNumber path int true "Unit number"
// @Param order body models.SetOrderRequest true "Slide positions in the desired order"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /api/v1/books/{bookId}/units/{unitNumber}/order [put]
func (h *MaterialsHandler) SetOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := authmw.GetUserID(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "user ID not found in context")
		return
	}
	bookID, unitID, ok := h.unitParams(w, r)
	if !ok {
		return
	}

	var req models.SetOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Positions) == 0 {
		h.RespondError(w, http.StatusBadRequest, "positions array cannot be empty")
		return
	}
	for _, pos := range req.Positions {
		if pos < 0 {
			h.RespondError(w, http.StatusBadRequest, "positions must be non-negative")
			return
		}
	}

	if err := h.overlays.SetOrder(r.Context(), userID, bookID, unitID, req.Positions); err != nil {
		h.Logger.Error("failed to save slide order", zap.Int("user_id", userID), zap.Error(err))
		h.RespondError(w, http.StatusInternalServerError, "failed to save order")
		return
	}

	h.RespondJSON(w, http.StatusOK, map[string]string{"message": "order saved"})
}

// ClearOrder handles DELETE /api/v1/books/{bookId}/units/{unitNumber}/order
// @Summary Reset the slide order
// @Description Remove the caller's custom slide order for a unit, restoring the default order
// @Tags materials
// @Produce json
// @Security ApiKeyAuth
// @Param bookId path string true "Book ID"
// @Param unitNumber path int true "Unit number"
// @Success 204 "Order reset"
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /api/v1/books/{bookId}/units/{unitNumber}/order [delete]
func (h *MaterialsHandler) ClearOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := authmw.GetUserID(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "user ID not found in context")
		return
	}
	bookID, unitID, ok := h.unitParams(w, r)
	if !ok {
		return
	}

	if err := h.overlays.ClearOrder(r.Context(), userID, bookID, unitID); err != nil {
		h.Logger.Error("failed to clear slide order", zap.Int("user_id", userID), zap.Error(err))
		h.RespondError(w, http.StatusInternalServerError, "failed to clear order")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// MarkDeleted handles POST /api/v1/books/{bookId}/units/{unitNumber}/deletions
// @Summary Mark slides deleted
// @Description Mark slide positions deleted for the caller. Deleted slides are excluded from the materials list.
// @Tags materials
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param bookId path string true "Book ID"
// @Param unitNumber path int true "Unit number"
// @Param deletions body models.MarkDeletedRequest true "Slide positions to mark deleted"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /api/v1/books/{bookId}/units/{unitNumber}/deletions [post]
func (h *MaterialsHandler) MarkDeleted(w http.ResponseWriter, r *http.Request) {
	userID, ok := authmw.GetUserID(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "user ID not found in context")
		return
	}
	bookID, unitID, ok := h.unitParams(w, r)
	if !ok {
		return
	}

	var req models.MarkDeletedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Positions) == 0 {
		h.RespondError(w, http.StatusBadRequest, "positions array cannot be empty")
		return
	}
	for _, pos := range req.Positions {
		if pos < 0 {
			h.RespondError(w, http.StatusBadRequest, "positions must be non-negative")
			return
		}
	}

	if err := h.overlays.MarkDeleted(r.Context(), userID, bookID, unitID, req.Positions); err != nil {
		h.Logger.Error("failed to mark slides deleted", zap.Int("user_id", userID), zap.Error(err))
		h.RespondError(w, http.StatusInternalServerError, "failed to mark slides deleted")
		return
	}

	h.RespondJSON(w, http.StatusOK, map[string]string{"message": "slides marked deleted"})
}

// RestoreDeleted handles DELETE /api/v1/books/{bookId}/units/{unitNumber}/deletions/{position}
// @Summary Restore a deleted slide
// @Description Remove the deletion mark from one slide position
// @Tags materials
// @Produce json
// @Security ApiKeyAuth
// @Param bookId path string true "Book ID"
// @Param unitNumber path int true "Unit number"
// @Param position path int true "Slide position to restore"
// @Success 204 "Slide restored"
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /api/v1/books/{bookId}/units/{unitNumber}/deletions/{position} [delete]
func (h *MaterialsHandler) RestoreDeleted(w http.ResponseWriter, r *http.Request) {
	userID, ok := authmw.GetUserID(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "user ID not found in context")
		return
	}
	bookID, unitID, ok := h.unitParams(w, r)
	if !ok {
		return
	}

	position, err := strconv.Atoi(chi.URLParam(r, "position"))
	if err != nil || position < 0 {
		h.RespondError(w, http.StatusBadRequest, "invalid position parameter")
		return
	}

	if err := h.overlays.Unmark(r.Context(), userID, bookID, unitID, position); err != nil {
		h.Logger.Error("failed to restore slide", zap.Int("user_id", userID), zap.Error(err))
		h.RespondError(w, http.StatusInternalServerError, "failed to restore slide")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
