package domain

import "context"

// SchemaStore is the tabular metadata store the engine reads schemas from
// and writes approved descriptions/tags back to.
type SchemaStore interface {
	ListTables(ctx context.Context, namespace string) ([]TableRef, error)
	GetSchema(ctx context.Context, table TableRef) ([]Column, error)
	UpdateColumnDescription(ctx context.Context, table TableRef, column, description string) error
	UpdateColumnTags(ctx context.Context, table TableRef, column string, tags []string) error
}

// LineageQuerier answers column-level lineage queries, one call per
// (entity, direction, field list). An empty result means "no lineage
// found", never an error the engine should propagate.
type LineageQuerier interface {
	SearchLinks(ctx context.Context, ref TableRef, fields []string, direction Direction) ([]Link, error)
}

// StatementProvider returns the most recent defining statement for a
// derived table, or "" when none is recorded.
type StatementProvider interface {
	TransformationStatement(ctx context.Context, table TableRef) (string, error)
}

// Glossary lists the controlled-vocabulary terms of a named vocabulary.
type Glossary interface {
	ListTerms(ctx context.Context, vocabulary string) ([]Term, error)
}

// Embedder produces embedding vectors for a batch of texts. Implementations
// impose their own timeout; the engine tolerates failures by falling back
// to its lexical description-overlap signal.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float64, error)
}

// LinkStore persists applied column→term and column→source mappings.
// CreateLink must be idempotent under the deterministic ID: a second create
// with the same ID returns a *ConflictError, which callers treat as success.
type LinkStore interface {
	CreateLink(ctx context.Context, source, target ColumnRef, linkType, id string) error
}

// ReviewQueue is the durable queue moderate-confidence records are handed
// to for human review.
type ReviewQueue interface {
	Enqueue(ctx context.Context, item ReviewItem) error
	List(ctx context.Context, status string) ([]ReviewItem, error)
	Resolve(ctx context.Context, id, status string) error
}

// HintSource supplies externally derived relationship hints originating
// from a source table (dataset insights, join-key equivalence scans).
type HintSource interface {
	HintsFor(table TableRef) []RelationshipHint
}
