package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/visualenglishpl/backend/internal/models"
	"github.com/visualenglishpl/backend/internal/services"
	"github.com/visualenglishpl/backend/libs/handlers"
)

// ResourcesService is the interface that wraps methods for teacher resource business logic.
type ResourcesService interface {
	// List returns the resources of a unit in display order.
	List(ctx context.Context, bookID, unitID string) ([]models.TeacherResource, error)
	// Replace swaps a unit's resources for the submitted set.
	Replace(ctx context.Context, bookID, unitID string, resources []models.TeacherResource) error
}

// ResourcesHandler handles HTTP requests for teacher resources
type ResourcesHandler struct {
	handlers.BaseHandler
	service ResourcesService
}

// NewResourcesHandler creates a new resources handler
func NewResourcesHandler(svc ResourcesService, logger *zap.Logger) *ResourcesHandler {
	return &ResourcesHandler{
		BaseHandler: handlers.BaseHandler{Logger: logger},
		service:     svc,
	}
}

// RegisterRoutes registers all resources handler routes. Reads need
// authentication, replacement needs the admin role.
func (h *ResourcesHandler) RegisterRoutes(r chi.Router, authMiddleware, adminMiddleware func(http.Handler) http.Handler) {
	r.With(authMiddleware).Get("/books/{bookId}/units/{unitNumber}/resources", h.GetResources)
	r.With(adminMiddleware).Put("/books/{bookId}/units/{unitNumber}/resources", h.ReplaceResources)
}

// GetResources handles GET /api/v1/books/{bookId}/units/{unitNumber}/resources
// @Summary Get the teacher resources of a unit
// @Description Get the curated external resources of a unit (videos, games, lesson plans) in display order
// @Tags resources
// @Produce json
// @Security ApiKeyAuth
// @Param bookId path string true "Book ID, e.g. 0a or 3"
// @Param unitNumber path int true "Unit number"
// @Success 200 {array} models.TeacherResource
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /api/v1/books/{bookId}/units/{unitNumber}/resources [get]
func (h *ResourcesHandler) GetResources(w http.ResponseWriter, r *http.Request) {
	bookID := chi.URLParam(r, "bookId")
	unitID := chi.URLParam(r, "unitNumber")

	resources, err := h.service.List(r.Context(), bookID, unitID)
	if err != nil {
		if errors.Is(err, services.ErrBookNotFound) || errors.Is(err, services.ErrUnitNotFound) {
			h.RespondError(w, http.StatusNotFound, "unit not found")
			return
		}
		h.Logger.Error("failed to get resources",
			zap.String("book_id", bookID),
			zap.String("unit_id", unitID),
			zap.Error(err),
		)
		h.RespondError(w, http.StatusInternalServerError, "failed to get resources")
		return
	}

	h.RespondJSON(w, http.StatusOK, resources)
}

// ReplaceResources handles PUT /api/v1/books/{bookId}/units/{unitNumber}/resources
// @Summary Replace the teacher resources of a unit
// @Description Replace a unit's resources wholesale. The stored order follows the submitted array order. Requires the admin role.
// @Tags resources
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param bookId path string true "Book ID"
// @Param unitNumber path int true "Unit number"
// @Param resources body models.ReplaceResourcesRequest true "Replacement resource set"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /api/v1/books/{bookId}/units/{unitNumber}/resources [put]
func (h *ResourcesHandler) ReplaceResources(w http.ResponseWriter, r *http.Request) {
	bookID := chi.URLParam(r, "bookId")
	unitID := chi.URLParam(r, "unitNumber")

	var req models.ReplaceResourcesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.service.Replace(r.Context(), bookID, unitID, req.Resources); err != nil {
		switch {
		case errors.Is(err, services.ErrBookNotFound), errors.Is(err, services.ErrUnitNotFound):
			h.RespondError(w, http.StatusNotFound, "unit not found")
		case errors.Is(err, services.ErrInvalidResource):
			h.RespondError(w, http.StatusBadRequest, err.Error())
		default:
			h.Logger.Error("failed to replace resources",
				zap.String("book_id", bookID),
				zap.String("unit_id", unitID),
				zap.Error(err),
			)
			h.RespondError(w, http.StatusInternalServerError, "failed to replace resources")
		}
		return
	}

	h.RespondJSON(w, http.StatusOK, map[string]string{"message": "resources replaced"})
}
