package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/akanksha86/governance-metadata-propagation/internal/domain"
)

// ReviewRepo implements domain.ReviewQueue using SQLite.
type ReviewRepo struct {
	db *sql.DB
}

// NewReviewRepo creates a new ReviewRepo.
func NewReviewRepo(db *sql.DB) *ReviewRepo {
	return &ReviewRepo{db: db}
}

// Enqueue stores a pending review item.
func (r *ReviewRepo) Enqueue(ctx context.Context, item domain.ReviewItem) error {
	if item.Status == "" {
		item.Status = "PENDING"
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO review_queue (id, target_fqn, source_fqn, description, confidence, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		item.ID, item.Target.FQN(), item.Source.FQN(), item.Description,
		item.Confidence, item.Status, item.CreatedAt.UTC().Format(time.RFC3339))
	return mapDBError(err)
}

// List returns review items filtered by status, oldest first. An empty
// status returns everything.
func (r *ReviewRepo) List(ctx context.Context, status string) ([]domain.ReviewItem, error) {
	query := `SELECT id, target_fqn, source_fqn, description, confidence, status, created_at
	          FROM review_queue ORDER BY created_at, id`
	args := []interface{}{}
	if status != "" {
		query = `SELECT id, target_fqn, source_fqn, description, confidence, status, created_at
		         FROM review_queue WHERE status = ? ORDER BY created_at, id`
		args = append(args, status)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapDBError(err)
	}
	defer rows.Close() //nolint:errcheck

	var items []domain.ReviewItem
	for rows.Next() {
		var item domain.ReviewItem
		var target, source, created string
		if err := rows.Scan(&item.ID, &target, &source, &item.Description, &item.Confidence, &item.Status, &created); err != nil {
			return nil, err
		}
		item.Target = parseColumnFQN(target)
		item.Source = parseColumnFQN(source)
		if ts, err := time.Parse(time.RFC3339, created); err == nil {
			item.CreatedAt = ts
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// Resolve moves a pending review item to APPROVED or REJECTED. Items that
// were already resolved keep their status.
func (r *ReviewRepo) Resolve(ctx context.Context, id, status string) error {
	if status != "APPROVED" && status != "REJECTED" {
		return domain.ErrValidation("invalid review status %q", status)
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE review_queue SET status = ? WHERE id = ? AND status = 'PENDING'`, status, id)
	if err != nil {
		return mapDBError(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		var existing string
		switch err := r.db.QueryRowContext(ctx,
			`SELECT status FROM review_queue WHERE id = ?`, id).Scan(&existing); {
		case err == sql.ErrNoRows:
			return domain.ErrNotFound("review item %s not found", id)
		case err != nil:
			return mapDBError(err)
		}
		return domain.ErrConflict("review item %s already resolved as %s", id, existing)
	}
	return nil
}

// parseColumnFQN splits "namespace.table.column" back into a reference.
// The column is the last segment; everything before the final two dots is
// the namespace, which may itself contain dots.
func parseColumnFQN(fqn string) domain.ColumnRef {
	table := domain.ParseTableRef(fqn)
	return domain.ColumnRef{
		Table:  domain.ParseTableRef(table.Namespace),
		Column: table.Table,
	}
}
