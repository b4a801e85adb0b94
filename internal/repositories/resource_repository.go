package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/visualenglishpl/backend/internal/models"
)

// resourceRepository implements teacher resource storage
type resourceRepository struct {
	db *sql.DB
}

// NewResourceRepository creates a new resource repository
func NewResourceRepository(db *sql.DB) *resourceRepository {
	return &resourceRepository{
		db: db,
	}
}

// GetByUnit retrieves the teacher resources of a unit in display order
func (r *resourceRepository) GetByUnit(ctx context.Context, bookID, unitID string) ([]models.TeacherResource, error) {
	query := `
		SELECT id, title, resource_type, provider, source_url, embed_code, display_order
		FROM teacher_resources
		WHERE book_id = ? AND unit_id = ?
		ORDER BY display_order ASC, id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, bookID, unitID)
	if err != nil {
		return nil, fmt.Errorf("failed to get teacher resources: %w", err)
	}
	defer rows.Close()

	resources := []models.TeacherResource{}
	for rows.Next() {
		res := models.TeacherResource{BookID: bookID, UnitID: unitID}
		err := rows.Scan(
			&res.ID,
			&res.Title,
			&res.ResourceType,
			&res.Provider,
			&res.SourceURL,
			&res.EmbedCode,
			&res.Order,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan teacher resource: %w", err)
		}
		resources = append(resources, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read teacher resources: %w", err)
	}

	return resources, nil
}

// ReplaceForUnit replaces a unit's resources wholesale inside a
// transaction, partial replacement is never observable
func (r *resourceRepository) ReplaceForUnit(ctx context.Context, bookID, unitID string, resources []models.TeacherResource) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	deleteQuery := `DELETE FROM teacher_resources WHERE book_id = ? AND unit_id = ?`
	if _, err := tx.ExecContext(ctx, deleteQuery, bookID, unitID); err != nil {
		return fmt.Errorf("failed to delete teacher resources: %w", err)
	}

	insertQuery := `
		INSERT INTO teacher_resources (book_id, unit_id, title, resource_type, provider, source_url, embed_code, display_order)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	for _, res := range resources {
		_, err := tx.ExecContext(ctx, insertQuery,
			bookID,
			unitID,
			res.Title,
			res.ResourceType,
			res.Provider,
			res.SourceURL,
			res.EmbedCode,
			res.Order,
		)
		if err != nil {
			return fmt.Errorf("failed to insert teacher resource: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit teacher resources: %w", err)
	}

	return nil
}
