package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/akanksha86/governance-metadata-propagation/internal/domain"
)

// StatementRepo implements domain.StatementProvider using SQLite. It keeps
// the most recent defining statement per derived table.
type StatementRepo struct {
	db *sql.DB
}

// NewStatementRepo creates a new StatementRepo.
func NewStatementRepo(db *sql.DB) *StatementRepo {
	return &StatementRepo{db: db}
}

// RecordStatement stores or replaces the defining statement of a table.
func (r *StatementRepo) RecordStatement(ctx context.Context, table domain.TableRef, stmt string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO statements (namespace, table_name, stmt)
		 VALUES (?, ?, ?)
		 ON CONFLICT (namespace, table_name) DO UPDATE SET
		   stmt = excluded.stmt,
		   recorded_at = datetime('now')`,
		table.Namespace, table.Table, stmt)
	return mapDBError(err)
}

// TransformationStatement returns the recorded statement for a table, or ""
// when none exists. Missing statements are normal for base tables.
func (r *StatementRepo) TransformationStatement(ctx context.Context, table domain.TableRef) (string, error) {
	var stmt string
	err := r.db.QueryRowContext(ctx,
		`SELECT stmt FROM statements WHERE namespace = ? AND table_name = ?`,
		table.Namespace, table.Table).Scan(&stmt)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", mapDBError(err)
	}
	return stmt, nil
}
