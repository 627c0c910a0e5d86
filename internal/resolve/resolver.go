// Package resolve walks the lineage graph to find the producer and consumer
// columns of a target column, scoring each candidate by name specificity.
package resolve

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/akanksha86/governance-metadata-propagation/internal/config"
	"github.com/akanksha86/governance-metadata-propagation/internal/domain"
	"github.com/akanksha86/governance-metadata-propagation/internal/match"
	"github.com/akanksha86/governance-metadata-propagation/internal/transform"
)

// Resolver answers "where does this column come from" and "where does it
// go" questions against the lineage graph, schema store, and statement
// history. Stateless; safe for concurrent use.
type Resolver struct {
	cfg        config.Scoring
	lineage    domain.LineageQuerier
	schema     domain.SchemaStore
	statements domain.StatementProvider
	hints      domain.HintSource
	logger     *slog.Logger
}

// NewResolver creates a resolver. The hint source may be nil.
func NewResolver(
	cfg config.Scoring,
	lineage domain.LineageQuerier,
	schema domain.SchemaStore,
	statements domain.StatementProvider,
	hints domain.HintSource,
	logger *slog.Logger,
) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		cfg:        cfg,
		lineage:    lineage,
		schema:     schema,
		statements: statements,
		hints:      hints,
		logger:     logger,
	}
}

var separators = strings.NewReplacer("_", "", "-", "")

// fieldScore rates how specifically a candidate field name matches the
// target column, from exact identity down to a low-information fallback.
// singleOption applies when the link offered exactly one field.
func (r *Resolver) fieldScore(column, field string, singleOption bool) float64 {
	base := r.cfg.FallbackScore
	switch {
	case field == column:
		base = r.cfg.ExactScore
	case strings.EqualFold(field, column):
		base = r.cfg.CaseFoldScore
	case strings.EqualFold(separators.Replace(field), separators.Replace(column)):
		base = r.cfg.SeparatorScore
	case containsFold(field, column) || containsFold(column, field):
		base = r.cfg.ContainmentScore
	case singleOption:
		base = r.cfg.SingleOptionScore
	}

	// A name match across disagreeing concepts (an id feeding an amount) is
	// probably coincidental; discount it hard rather than dropping it.
	colConcept := match.Concept(column)
	fieldConcept := match.Concept(field)
	if colConcept != "" && fieldConcept != "" && colConcept != fieldConcept {
		base *= r.cfg.MismatchMultiplier
	}
	return base
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

// bestField picks the highest-scoring field of a link for the column.
// Ties keep the first field, so results are stable for a stable graph.
func (r *Resolver) bestField(column string, fields []string) (string, float64) {
	if len(fields) == 0 {
		return "", 0
	}
	single := len(fields) == 1
	bestName, bestScore := "", -1.0
	for _, f := range fields {
		if s := r.fieldScore(column, f, single); s > bestScore {
			bestName, bestScore = f, s
		}
	}
	return bestName, bestScore
}

// searchLinks queries the graph, downgrading provider unavailability to an
// empty result. A flaky lineage backend must not fail a whole batch.
func (r *Resolver) searchLinks(ctx context.Context, table domain.TableRef, fields []string, dir domain.Direction) ([]domain.Link, error) {
	links, err := r.lineage.SearchLinks(ctx, table, fields, dir)
	if err != nil {
		var unavailable *domain.UnavailableError
		if errors.As(err, &unavailable) {
			r.logger.Warn("lineage lookup unavailable, treating as no lineage",
				"table", table.FQN(), "direction", dir, "error", err)
			return nil, nil
		}
		return nil, err
	}
	return links, nil
}

// ResolveUpstream finds the single best direct producer of the target
// column, or nil when the graph has no upstream edge for it.
func (r *Resolver) ResolveUpstream(ctx context.Context, target domain.ColumnRef) (*domain.LineageEdge, error) {
	links, err := r.searchLinks(ctx, target.Table, []string{target.Column}, domain.Upstream)
	if err != nil {
		return nil, err
	}

	var best *domain.LineageEdge
	for _, link := range links {
		field, score := r.bestField(target.Column, link.Fields)
		if field == "" {
			continue
		}
		if best == nil || score > best.Confidence {
			best = &domain.LineageEdge{
				Source:     domain.ColumnRef{Table: link.Peer, Column: field},
				Target:     target,
				Confidence: score,
				Provenance: domain.ProvenanceGraph,
			}
		}
	}
	return best, nil
}

// hydrate fills in the description and type of a bare column reference from
// the schema store. Unknown tables or columns leave the reference bare, and
// so does store unavailability: a flaky metadata backend must not fail a
// whole batch.
func (r *Resolver) hydrate(ctx context.Context, ref domain.ColumnRef) (domain.ColumnRef, error) {
	cols, err := r.schema.GetSchema(ctx, ref.Table)
	if err != nil {
		var notFound *domain.NotFoundError
		if errors.As(err, &notFound) {
			return ref, nil
		}
		var unavailable *domain.UnavailableError
		if errors.As(err, &unavailable) {
			r.logger.Warn("schema lookup unavailable, leaving column undescribed",
				"table", ref.Table.FQN(), "error", err)
			return ref, nil
		}
		return ref, err
	}
	for _, c := range cols {
		if strings.EqualFold(c.Name, ref.Column) {
			hydrated := c.Ref(ref.Table)
			hydrated.Column = ref.Column
			return hydrated, nil
		}
	}
	return ref, nil
}

// transformationHint derives a natural-language fragment for the expression
// that computes the column in its table's defining statement. Passthrough
// references produce no hint.
func (r *Resolver) transformationHint(ctx context.Context, target domain.ColumnRef, sourceColumn string) string {
	if r.statements == nil {
		return ""
	}
	stmt, err := r.statements.TransformationStatement(ctx, target.Table)
	if err != nil || stmt == "" {
		return ""
	}
	expr, ok := transform.ExtractColumnExpr(stmt, target.Column)
	if !ok || transform.IsPassthrough(expr, target.Column, sourceColumn) {
		return ""
	}
	return transform.Describe(expr)
}

// FindDescribedSource walks upstream from the target, hop by hop, until it
// reaches a column that carries a description. The walk is bounded by
// MaxDepth and a visited set, so lineage cycles terminate. Transformation
// hints accumulate in traversal order; the returned confidence is that of
// the final hop, the edge whose naming actually bound the description.
// Hop depth is zero-based: a described direct producer is depth 0, each
// undescribed intermediate adds one.
func (r *Resolver) FindDescribedSource(ctx context.Context, target domain.ColumnRef) (*domain.ResolvedSource, error) {
	visited := map[string]struct{}{target.FQN(): {}}
	return r.findDescribed(ctx, target, 0, visited, nil)
}

func (r *Resolver) findDescribed(ctx context.Context, target domain.ColumnRef, depth int, visited map[string]struct{}, hints []string) (*domain.ResolvedSource, error) {
	if depth >= r.cfg.MaxDepth {
		r.logger.Debug("max lineage depth reached", "column", target.FQN(), "depth", depth)
		return nil, nil
	}

	edge, err := r.ResolveUpstream(ctx, target)
	if err != nil {
		return nil, err
	}
	if edge == nil {
		return nil, nil
	}

	source, err := r.hydrate(ctx, edge.Source)
	if err != nil {
		return nil, err
	}

	if hint := r.transformationHint(ctx, target, source.Column); hint != "" {
		hints = append(hints, hint)
	}

	if source.Described() {
		return &domain.ResolvedSource{
			Source:     source,
			Confidence: edge.Confidence,
			HopDepth:   depth,
			Hints:      hints,
		}, nil
	}

	if _, seen := visited[source.FQN()]; seen {
		return nil, nil
	}
	visited[source.FQN()] = struct{}{}
	return r.findDescribed(ctx, source, depth+1, visited, hints)
}

// ResolveDownstream finds every direct consumer of the source column. Graph
// edges come first; relationship hints are merged behind them and never
// override a graph edge for the same target column.
func (r *Resolver) ResolveDownstream(ctx context.Context, source domain.ColumnRef) ([]domain.LineageEdge, error) {
	links, err := r.searchLinks(ctx, source.Table, []string{source.Column}, domain.Downstream)
	if err != nil {
		return nil, err
	}

	var edges []domain.LineageEdge
	seen := make(map[string]struct{})
	for _, link := range links {
		field, score := r.bestField(source.Column, link.Fields)
		if field == "" {
			continue
		}
		target := domain.ColumnRef{Table: link.Peer, Column: field}
		if _, dup := seen[target.FQN()]; dup {
			continue
		}
		seen[target.FQN()] = struct{}{}
		edges = append(edges, domain.LineageEdge{
			Source:     source,
			Target:     target,
			Confidence: score,
			Provenance: domain.ProvenanceGraph,
		})
	}

	if r.hints != nil {
		for _, h := range r.hints.HintsFor(source.Table) {
			if !strings.EqualFold(h.SourceColumn, source.Column) {
				continue
			}
			target := domain.ColumnRef{Table: h.TargetTable, Column: h.TargetColumn}
			if _, dup := seen[target.FQN()]; dup {
				continue
			}
			seen[target.FQN()] = struct{}{}
			confidence := h.Confidence
			if confidence <= 0 {
				confidence = r.cfg.FallbackScore
			}
			edges = append(edges, domain.LineageEdge{
				Source:     source,
				Target:     target,
				Confidence: confidence,
				Provenance: domain.ProvenanceHint,
			})
		}
	}
	return edges, nil
}

// Summary aggregates the lineage neighborhood of one table: which entities
// feed it, which read from it, and how many of its undescribed columns have
// at least one upstream producer to inherit from.
func (r *Resolver) Summary(ctx context.Context, table domain.TableRef) (*domain.LineageSummary, error) {
	cols, err := r.schema.GetSchema(ctx, table)
	if err != nil {
		return nil, err
	}

	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
	}

	upstream, err := r.searchLinks(ctx, table, names, domain.Upstream)
	if err != nil {
		return nil, err
	}
	downstream, err := r.searchLinks(ctx, table, names, domain.Downstream)
	if err != nil {
		return nil, err
	}

	summary := &domain.LineageSummary{
		Table:              table,
		UpstreamEntities:   make(map[string]int),
		DownstreamEntities: make(map[string]int),
	}

	upstreamFields := make(map[string]struct{})
	for _, link := range upstream {
		summary.UpstreamEntities[link.Peer.FQN()] += len(link.Fields)
		for _, f := range link.Fields {
			upstreamFields[strings.ToLower(f)] = struct{}{}
		}
	}
	for _, link := range downstream {
		summary.DownstreamEntities[link.Peer.FQN()] += len(link.Fields)
	}

	for _, c := range cols {
		if strings.TrimSpace(c.Description) != "" {
			continue
		}
		summary.MissingDescriptions = append(summary.MissingDescriptions, c.Name)
		if _, ok := upstreamFields[strings.ToLower(c.Name)]; ok {
			summary.Enrichable++
		}
	}
	return summary, nil
}
