package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/visualenglishpl/backend/internal/models"
)

// ErrUnitNotFound means the unit number is outside the book's range
var ErrUnitNotFound = errors.New("unit not found")

// ErrInvalidResource means a submitted resource fails validation
var ErrInvalidResource = errors.New("invalid resource")

// ResourceStore provides teacher resource persistence,
// implemented by repositories.ResourceRepository
type ResourceStore interface {
	// GetByUnit returns a unit's resources in display order
	GetByUnit(ctx context.Context, bookID, unitID string) ([]models.TeacherResource, error)
	// ReplaceForUnit replaces a unit's resources wholesale
	ReplaceForUnit(ctx context.Context, bookID, unitID string, resources []models.TeacherResource) error
}

// ResourceService serves the curated teacher resources of a unit
type ResourceService struct {
	store  ResourceStore
	logger *zap.Logger
}

// NewResourceService creates a resource service
func NewResourceService(store ResourceStore, logger *zap.Logger) *ResourceService {
	return &ResourceService{
		store:  store,
		logger: logger,
	}
}

// List returns the resources of a unit in display order
func (s *ResourceService) List(ctx context.Context, bookID, unitID string) ([]models.TeacherResource, error) {
	if err := validateUnit(bookID, unitID); err != nil {
		return nil, err
	}
	return s.store.GetByUnit(ctx, bookID, unitID)
}

// Replace swaps a unit's resources for the submitted set. The stored
// display order follows the submitted slice order regardless of the
// Order values sent.
func (s *ResourceService) Replace(ctx context.Context, bookID, unitID string, resources []models.TeacherResource) error {
	if err := validateUnit(bookID, unitID); err != nil {
		return err
	}
	for i := range resources {
		if err := validateResource(resources[i]); err != nil {
			return err
		}
		resources[i].Order = i
	}
	if err := s.store.ReplaceForUnit(ctx, bookID, unitID, resources); err != nil {
		return err
	}
	s.logger.Info("teacher resources replaced",
		zap.String("book_id", bookID),
		zap.String("unit_id", unitID),
		zap.Int("count", len(resources)),
	)
	return nil
}

// validateUnit checks the book is in the catalog and the unit number is
// within its range
func validateUnit(bookID, unitID string) error {
	book, ok := models.BookByID(bookID)
	if !ok {
		return fmt.Errorf("resources for %q: %w", bookID, ErrBookNotFound)
	}
	n, err := strconv.Atoi(unitID)
	if err != nil || n < 1 || n > book.UnitCount {
		return fmt.Errorf("resources for book %s unit %q: %w", bookID, unitID, ErrUnitNotFound)
	}
	return nil
}

// validateResource rejects resources with no title or an unknown type
func validateResource(res models.TeacherResource) error {
	if res.Title == "" {
		return fmt.Errorf("resource with empty title: %w", ErrInvalidResource)
	}
	switch res.ResourceType {
	case models.ResourceTypeVideo, models.ResourceTypeGame, models.ResourceTypePDF,
		models.ResourceTypeLessonPlan, models.ResourceTypeOther:
		return nil
	default:
		return fmt.Errorf("resource type %q: %w", res.ResourceType, ErrInvalidResource)
	}
}
