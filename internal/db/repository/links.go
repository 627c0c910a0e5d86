package repository

import (
	"context"
	"database/sql"

	"github.com/akanksha86/governance-metadata-propagation/internal/domain"
)

// LinkRepo implements domain.LinkStore using SQLite. Link ids are
// deterministic, so the primary-key constraint is what makes re-applied
// propagations detectable.
type LinkRepo struct {
	db *sql.DB
}

// NewLinkRepo creates a new LinkRepo.
func NewLinkRepo(db *sql.DB) *LinkRepo {
	return &LinkRepo{db: db}
}

// CreateLink records an applied metadata link. A duplicate id returns a
// *domain.ConflictError.
func (r *LinkRepo) CreateLink(ctx context.Context, source, target domain.ColumnRef, linkType, id string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO entry_links (id, source_fqn, target_fqn, link_type) VALUES (?, ?, ?, ?)`,
		id, source.FQN(), target.FQN(), linkType)
	return mapDBError(err)
}

// ListLinks returns applied links of one type, newest first.
func (r *LinkRepo) ListLinks(ctx context.Context, linkType string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id FROM entry_links WHERE link_type = ? ORDER BY created_at DESC, id`,
		linkType)
	if err != nil {
		return nil, mapDBError(err)
	}
	defer rows.Close() //nolint:errcheck

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
