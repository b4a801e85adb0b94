package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

// overlayRepository implements the per-user slide overlay operations
type overlayRepository struct {
	db *sql.DB
}

// NewOverlayRepository creates a new overlay repository
func NewOverlayRepository(db *sql.DB) *overlayRepository {
	return &overlayRepository{
		db: db,
	}
}

// GetOrder retrieves the custom slide order for a unit.
// Returns nil when no custom order is stored.
func (r *overlayRepository) GetOrder(ctx context.Context, userID int, bookID, unitID string) ([]int, error) {
	query := `
		SELECT positions
		FROM slide_orders
		WHERE user_id = ? AND book_id = ? AND unit_id = ?
		LIMIT 1
	`

	var raw []byte
	err := r.db.QueryRowContext(ctx, query, userID, bookID, unitID).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get slide order: %w", err)
	}

	var positions []int
	if err := json.Unmarshal(raw, &positions); err != nil {
		return nil, fmt.Errorf("failed to decode slide order: %w", err)
	}

	return positions, nil
}

// SetOrder stores the custom slide order for a unit, replacing any
// previous one
func (r *overlayRepository) SetOrder(ctx context.Context, userID int, bookID, unitID string, positions []int) error {
	raw, err := json.Marshal(positions)
	if err != nil {
		return fmt.Errorf("failed to encode slide order: %w", err)
	}

	query := `
		INSERT INTO slide_orders (user_id, book_id, unit_id, positions)
		VALUES (?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE positions = VALUES(positions)
	`

	_, err = r.db.ExecContext(ctx, query, userID, bookID, unitID, raw)
	if err != nil {
		return fmt.Errorf("failed to set slide order: %w", err)
	}

	return nil
}

// ClearOrder removes the custom slide order for a unit. Clearing an
// absent order is not an error.
func (r *overlayRepository) ClearOrder(ctx context.Context, userID int, bookID, unitID string) error {
	query := `DELETE FROM slide_orders WHERE user_id = ? AND book_id = ? AND unit_id = ?`

	_, err := r.db.ExecContext(ctx, query, userID, bookID, unitID)
	if err != nil {
		return fmt.Errorf("failed to clear slide order: %w", err)
	}

	return nil
}

// GetDeletedSet retrieves the slide positions marked deleted for a unit
func (r *overlayRepository) GetDeletedSet(ctx context.Context, userID int, bookID, unitID string) (map[int]bool, error) {
	query := `
		SELECT position
		FROM slide_deletions
		WHERE user_id = ? AND book_id = ? AND unit_id = ?
	`

	rows, err := r.db.QueryContext(ctx, query, userID, bookID, unitID)
	if err != nil {
		return nil, fmt.Errorf("failed to get slide deletions: %w", err)
	}
	defer rows.Close()

	deleted := make(map[int]bool)
	for rows.Next() {
		var position int
		if err := rows.Scan(&position); err != nil {
			return nil, fmt.Errorf("failed to scan slide deletion: %w", err)
		}
		deleted[position] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read slide deletions: %w", err)
	}

	return deleted, nil
}

// MarkDeleted adds positions to a unit's deletion set. Marking an
// already deleted position is a no-op.
func (r *overlayRepository) MarkDeleted(ctx context.Context, userID int, bookID, unitID string, positions []int) error {
	if len(positions) == 0 {
		return nil
	}

	query := `
		INSERT IGNORE INTO slide_deletions (user_id, book_id, unit_id, position)
		VALUES (?, ?, ?, ?)
	`

	for _, position := range positions {
		if _, err := r.db.ExecContext(ctx, query, userID, bookID, unitID, position); err != nil {
			return fmt.Errorf("failed to mark slide deleted: %w", err)
		}
	}

	return nil
}

// Unmark removes a position from a unit's deletion set
func (r *overlayRepository) Unmark(ctx context.Context, userID int, bookID, unitID string, position int) error {
	query := `
		DELETE FROM slide_deletions
		WHERE user_id = ? AND book_id = ? AND unit_id = ? AND position = ?
	`

	_, err := r.db.ExecContext(ctx, query, userID, bookID, unitID, position)
	if err != nil {
		return fmt.Errorf("failed to unmark slide deletion: %w", err)
	}

	return nil
}
