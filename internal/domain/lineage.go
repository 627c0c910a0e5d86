package domain

// Direction selects which way a lineage query walks the graph.
type Direction string

const (
	// Upstream walks producer edges: who feeds this column.
	Upstream Direction = "upstream"
	// Downstream walks consumer edges: who reads this column.
	Downstream Direction = "downstream"
)

// Edge provenance tags. Graph-sourced edges outrank supplied hints when a
// candidate set is deduplicated.
const (
	ProvenanceGraph = "graph-api"
	ProvenanceHint  = "supplied-hint"
)

// Link is one raw result from a lineage graph query: a peer entity and the
// field names it offers for the queried column. Field resolution (picking
// the best-matching field) is the resolver's job, not the query's.
type Link struct {
	Peer   TableRef
	Fields []string
}

// LineageEdge is a resolved producer→consumer relationship between two
// column-level fields. Produced transiently per resolution call; the core
// never persists it.
type LineageEdge struct {
	Source     ColumnRef
	Target     ColumnRef
	Confidence float64
	Provenance string
}

// ResolvedSource is the outcome of a (possibly multi-hop) upstream search
// for a described source column. HopDepth is zero-based: a described
// direct producer is depth 0.
type ResolvedSource struct {
	Source     ColumnRef
	Confidence float64
	HopDepth   int
	// Hints holds transformation fragments accumulated in traversal order,
	// downstream-to-upstream.
	Hints []string
}

// RelationshipHint is an externally supplied column mapping (structural
// name equivalence of join keys, dataset insight scans, and the like).
// Hints are merged as lower-priority downstream candidates.
type RelationshipHint struct {
	SourceTable  TableRef
	TargetTable  TableRef
	SourceColumn string
	TargetColumn string
	Confidence   float64
	Kind         string
}

// LineageSummary aggregates upstream and downstream reach for one table.
type LineageSummary struct {
	Table               TableRef
	UpstreamEntities    map[string]int // entity FQN → contributed columns
	DownstreamEntities  map[string]int // entity FQN → receiving columns
	MissingDescriptions []string
	Enrichable          int
}
