package repository

import (
	"context"
	"database/sql"

	"github.com/akanksha86/governance-metadata-propagation/internal/domain"
)

// GlossaryRepo implements domain.Glossary using SQLite.
type GlossaryRepo struct {
	db *sql.DB
}

// NewGlossaryRepo creates a new GlossaryRepo.
func NewGlossaryRepo(db *sql.DB) *GlossaryRepo {
	return &GlossaryRepo{db: db}
}

// UpsertTerm creates or replaces a vocabulary term.
func (r *GlossaryRepo) UpsertTerm(ctx context.Context, vocabulary string, term domain.Term) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO glossary_terms (vocabulary, term_id, display_name, description, embedding)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (vocabulary, term_id) DO UPDATE SET
		   display_name = excluded.display_name,
		   description  = excluded.description,
		   embedding    = excluded.embedding`,
		vocabulary, term.ID, term.DisplayName, term.Description, marshalJSON(term.Embedding))
	return mapDBError(err)
}

// ListTerms returns every term of a vocabulary ordered by id.
func (r *GlossaryRepo) ListTerms(ctx context.Context, vocabulary string) ([]domain.Term, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT term_id, display_name, description, embedding
		 FROM glossary_terms WHERE vocabulary = ? ORDER BY term_id`,
		vocabulary)
	if err != nil {
		return nil, mapDBError(err)
	}
	defer rows.Close() //nolint:errcheck

	var terms []domain.Term
	for rows.Next() {
		var t domain.Term
		var embedding string
		if err := rows.Scan(&t.ID, &t.DisplayName, &t.Description, &embedding); err != nil {
			return nil, err
		}
		t.Embedding = unmarshalFloats(embedding)
		terms = append(terms, t)
	}
	return terms, rows.Err()
}
