package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/akanksha86/governance-metadata-propagation/internal/domain"
)

// LineageRepo implements domain.LineageQuerier using SQLite.
type LineageRepo struct {
	db *sql.DB
}

// NewLineageRepo creates a new LineageRepo.
func NewLineageRepo(db *sql.DB) *LineageRepo {
	return &LineageRepo{db: db}
}

// InsertEdge records a column-level lineage edge. The id is caller-supplied
// so ingestion jobs can be idempotent.
func (r *LineageRepo) InsertEdge(ctx context.Context, id string, source, target domain.ColumnRef) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO lineage_edges
		   (id, source_namespace, source_table, source_column,
		    target_namespace, target_table, target_column)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id,
		source.Table.Namespace, source.Table.Table, source.Column,
		target.Table.Namespace, target.Table.Table, target.Column)
	return mapDBError(err)
}

// SearchLinks returns the lineage peers of a table restricted to the given
// fields, grouped per peer table. Upstream queries match on the target side
// of stored edges and report source fields; downstream is the mirror.
func (r *LineageRepo) SearchLinks(ctx context.Context, ref domain.TableRef, fields []string, direction domain.Direction) ([]domain.Link, error) {
	if len(fields) == 0 {
		return nil, nil
	}

	var query string
	if direction == domain.Upstream {
		query = `SELECT source_namespace, source_table, source_column
		         FROM lineage_edges
		         WHERE target_namespace = ? AND target_table = ?
		           AND target_column IN (` + placeholders(len(fields)) + `)
		         ORDER BY created_at, id`
	} else {
		query = `SELECT target_namespace, target_table, target_column
		         FROM lineage_edges
		         WHERE source_namespace = ? AND source_table = ?
		           AND source_column IN (` + placeholders(len(fields)) + `)
		         ORDER BY created_at, id`
	}

	args := make([]interface{}, 0, len(fields)+2)
	args = append(args, ref.Namespace, ref.Table)
	for _, f := range fields {
		args = append(args, f)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapDBError(err)
	}
	defer rows.Close() //nolint:errcheck

	// Group fields per peer, preserving first-seen peer order.
	var order []string
	grouped := make(map[string]*domain.Link)
	for rows.Next() {
		var ns, table, column string
		if err := rows.Scan(&ns, &table, &column); err != nil {
			return nil, err
		}
		peer := domain.TableRef{Namespace: ns, Table: table}
		key := peer.FQN()
		link, ok := grouped[key]
		if !ok {
			link = &domain.Link{Peer: peer}
			grouped[key] = link
			order = append(order, key)
		}
		if !containsField(link.Fields, column) {
			link.Fields = append(link.Fields, column)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	links := make([]domain.Link, 0, len(order))
	for _, key := range order {
		links = append(links, *grouped[key])
	}
	return links, nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func containsField(fields []string, f string) bool {
	for _, existing := range fields {
		if existing == f {
			return true
		}
	}
	return false
}
