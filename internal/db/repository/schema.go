package repository

import (
	"context"
	"database/sql"

	"github.com/akanksha86/governance-metadata-propagation/internal/domain"
)

// SchemaRepo implements domain.SchemaStore using SQLite.
type SchemaRepo struct {
	db *sql.DB
}

// NewSchemaRepo creates a new SchemaRepo.
func NewSchemaRepo(db *sql.DB) *SchemaRepo {
	return &SchemaRepo{db: db}
}

// RegisterTable creates a table entry if it does not exist yet.
func (r *SchemaRepo) RegisterTable(ctx context.Context, table domain.TableRef) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO tables (namespace, name) VALUES (?, ?)
		 ON CONFLICT (namespace, name) DO NOTHING`,
		table.Namespace, table.Table)
	return mapDBError(err)
}

// UpsertColumn creates or replaces one schema column.
func (r *SchemaRepo) UpsertColumn(ctx context.Context, table domain.TableRef, col domain.Column, ordinal int) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO columns (namespace, table_name, name, description, col_type, tags, ordinal)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (namespace, table_name, name) DO UPDATE SET
		   description = excluded.description,
		   col_type    = excluded.col_type,
		   tags        = excluded.tags,
		   ordinal     = excluded.ordinal,
		   updated_at  = datetime('now')`,
		table.Namespace, table.Table, col.Name, col.Description, col.Type, marshalJSON(col.Tags), ordinal)
	return mapDBError(err)
}

// ListTables returns every registered table in a namespace, or in all
// namespaces when namespace is empty.
func (r *SchemaRepo) ListTables(ctx context.Context, namespace string) ([]domain.TableRef, error) {
	query := `SELECT namespace, name FROM tables ORDER BY namespace, name`
	args := []interface{}{}
	if namespace != "" {
		query = `SELECT namespace, name FROM tables WHERE namespace = ? ORDER BY name`
		args = append(args, namespace)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapDBError(err)
	}
	defer rows.Close() //nolint:errcheck

	var tables []domain.TableRef
	for rows.Next() {
		var t domain.TableRef
		if err := rows.Scan(&t.Namespace, &t.Table); err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	return tables, rows.Err()
}

// GetSchema returns the columns of a table in declaration order.
func (r *SchemaRepo) GetSchema(ctx context.Context, table domain.TableRef) ([]domain.Column, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT name, description, col_type, tags
		 FROM columns
		 WHERE namespace = ? AND table_name = ?
		 ORDER BY ordinal, name`,
		table.Namespace, table.Table)
	if err != nil {
		return nil, mapDBError(err)
	}
	defer rows.Close() //nolint:errcheck

	var cols []domain.Column
	for rows.Next() {
		var c domain.Column
		var tags string
		if err := rows.Scan(&c.Name, &c.Description, &c.Type, &tags); err != nil {
			return nil, err
		}
		c.Tags = unmarshalStrings(tags)
		cols = append(cols, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(cols) == 0 {
		return nil, domain.ErrNotFound("table %s not found", table.FQN())
	}
	return cols, nil
}

// UpdateColumnDescription sets the description of one column.
func (r *SchemaRepo) UpdateColumnDescription(ctx context.Context, table domain.TableRef, column, description string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE columns SET description = ?, updated_at = datetime('now')
		 WHERE namespace = ? AND table_name = ? AND name = ?`,
		description, table.Namespace, table.Table, column)
	if err != nil {
		return mapDBError(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotFound("column %s.%s not found", table.FQN(), column)
	}
	return nil
}

// UpdateColumnTags replaces the classification tags of one column.
func (r *SchemaRepo) UpdateColumnTags(ctx context.Context, table domain.TableRef, column string, tags []string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE columns SET tags = ?, updated_at = datetime('now')
		 WHERE namespace = ? AND table_name = ? AND name = ?`,
		marshalJSON(tags), table.Namespace, table.Table, column)
	if err != nil {
		return mapDBError(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotFound("column %s.%s not found", table.FQN(), column)
	}
	return nil
}
