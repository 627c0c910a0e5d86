// Package steward orchestrates metadata recommendation and propagation:
// pull and push description propagation, vocabulary term matching,
// classification-tag recommendations, and namespace scans.
package steward

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/akanksha86/governance-metadata-propagation/internal/config"
	"github.com/akanksha86/governance-metadata-propagation/internal/domain"
	"github.com/akanksha86/governance-metadata-propagation/internal/match"
	"github.com/akanksha86/governance-metadata-propagation/internal/propagate"
	"github.com/akanksha86/governance-metadata-propagation/internal/resolve"
	"github.com/akanksha86/governance-metadata-propagation/internal/transform"
)

// Service is the steward facade the API, CLI, and scheduler call into.
// Recommendation methods never mutate; Apply is the only write path.
type Service struct {
	cfg        *config.Config
	schema     domain.SchemaStore
	glossary   domain.Glossary
	embedder   domain.Embedder
	statements domain.StatementProvider
	resolver   *resolve.Resolver
	engine     *propagate.Engine
	queue      domain.ReviewQueue
	logger     *slog.Logger
}

// NewService wires the steward service. embedder may be nil; matching then
// relies on the description-overlap fallback.
func NewService(
	cfg *config.Config,
	schema domain.SchemaStore,
	glossary domain.Glossary,
	embedder domain.Embedder,
	statements domain.StatementProvider,
	resolver *resolve.Resolver,
	engine *propagate.Engine,
	queue domain.ReviewQueue,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		cfg:        cfg,
		schema:     schema,
		glossary:   glossary,
		embedder:   embedder,
		statements: statements,
		resolver:   resolver,
		engine:     engine,
		queue:      queue,
		logger:     logger.With("component", "steward"),
	}
}

// composeDescription joins the inherited description with the accumulated
// transformation fragments.
func composeDescription(description string, hints []string) string {
	if len(hints) == 0 {
		return description
	}
	return description + " (" + strings.Join(hints, "; ") + ")"
}

// RecommendDescriptions pulls description recommendations for every
// undescribed column of the target table, resolving columns concurrently.
// On context cancellation the records resolved so far are returned with
// the error.
func (s *Service) RecommendDescriptions(ctx context.Context, table domain.TableRef) ([]domain.PropagationRecord, error) {
	cols, err := s.schema.GetSchema(ctx, table)
	if err != nil {
		return nil, err
	}

	var targets []domain.ColumnRef
	for _, c := range cols {
		if strings.TrimSpace(c.Description) != "" {
			continue
		}
		targets = append(targets, c.Ref(table))
	}

	results := make([]*domain.PropagationRecord, len(targets))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.ResolveWorkers)

	for i, target := range targets {
		g.Go(func() error {
			resolved, err := s.resolver.FindDescribedSource(gctx, target)
			if err != nil {
				return err
			}
			if resolved == nil {
				s.logger.Info("no described source found", "column", target.FQN())
				return nil
			}

			decision, err := propagate.Decide(s.cfg.Scoring, resolved.Confidence)
			if err != nil {
				return err
			}
			results[i] = &domain.PropagationRecord{
				Target:      target,
				Source:      resolved.Source,
				Description: composeDescription(resolved.Source.Description, resolved.Hints),
				Confidence:  resolved.Confidence,
				HopDepth:    resolved.HopDepth,
				Hints:       resolved.Hints,
				Decision:    decision,
			}
			return nil
		})
	}
	err = g.Wait()

	records := make([]domain.PropagationRecord, 0, len(targets))
	for _, r := range results {
		if r != nil {
			records = append(records, *r)
		}
	}
	return records, err
}

// RecommendTerms ranks controlled-vocabulary terms for every column of the
// table. Embeddings are warmed per call; provider failures degrade to the
// lexical fallback instead of failing the call.
func (s *Service) RecommendTerms(ctx context.Context, table domain.TableRef) (map[string][]domain.MatchCandidate, error) {
	cols, err := s.schema.GetSchema(ctx, table)
	if err != nil {
		return nil, err
	}
	terms, err := s.glossary.ListTerms(ctx, s.cfg.Vocabulary)
	if err != nil {
		return nil, err
	}
	if len(terms) == 0 {
		return map[string][]domain.MatchCandidate{}, nil
	}

	cache := match.NewSessionCache()
	if err := cache.Warm(ctx, s.embedder, terms); err != nil {
		s.logger.Warn("term embedding warm-up failed, using overlap fallback", "error", err)
	}
	engine := match.NewEngine(s.cfg.Scoring, cache, s.logger)

	colEmbeddings := s.embedColumns(ctx, cols)

	out := make(map[string][]domain.MatchCandidate, len(cols))
	for i, c := range cols {
		var emb []float64
		if i < len(colEmbeddings) {
			emb = colEmbeddings[i]
		}
		candidates := engine.Rank(c.Ref(table), terms, emb)
		if len(candidates) > 0 {
			out[c.Name] = candidates
		}
	}
	return out, nil
}

// embedColumns batch-embeds "name: description" texts for the table's
// columns. Any failure returns nil, which downgrades scoring to the
// overlap fallback.
func (s *Service) embedColumns(ctx context.Context, cols []domain.Column) [][]float64 {
	if s.embedder == nil {
		return nil
	}
	texts := make([]string, len(cols))
	for i, c := range cols {
		texts[i] = c.Name + ": " + c.Description
	}
	vecs, err := s.embedder.Embed(ctx, texts)
	if err != nil {
		s.logger.Warn("column embedding failed, using overlap fallback", "error", err)
		return nil
	}
	return vecs
}

// PushDescriptions propagates every described column of the source table to
// downstream consumers that lack a description.
func (s *Service) PushDescriptions(ctx context.Context, source domain.TableRef) ([]domain.PropagationRecord, error) {
	cols, err := s.schema.GetSchema(ctx, source)
	if err != nil {
		return nil, err
	}

	schemaCache := make(map[string][]domain.Column)
	var records []domain.PropagationRecord
	for _, c := range cols {
		if strings.TrimSpace(c.Description) == "" {
			continue
		}
		sourceRef := c.Ref(source)

		edges, err := s.resolver.ResolveDownstream(ctx, sourceRef)
		if err != nil {
			return records, err
		}
		for _, edge := range edges {
			if described, err := s.targetDescribed(ctx, schemaCache, edge.Target); err != nil {
				return records, err
			} else if described {
				s.logger.Info("target already described, skipping push", "target", edge.Target.FQN())
				continue
			}

			decision, err := propagate.Decide(s.cfg.Scoring, edge.Confidence)
			if err != nil {
				return records, err
			}
			records = append(records, domain.PropagationRecord{
				Target:      edge.Target,
				Source:      sourceRef,
				Description: c.Description,
				Confidence:  edge.Confidence,
				Decision:    decision,
			})
		}
	}
	return records, nil
}

func (s *Service) targetDescribed(ctx context.Context, cache map[string][]domain.Column, target domain.ColumnRef) (bool, error) {
	key := target.Table.FQN()
	cols, ok := cache[key]
	if !ok {
		var err error
		cols, err = s.schema.GetSchema(ctx, target.Table)
		if err != nil {
			var notFound *domain.NotFoundError
			if errors.As(err, &notFound) {
				cache[key] = nil
				return false, nil
			}
			var unavailable *domain.UnavailableError
			if errors.As(err, &unavailable) {
				s.logger.Warn("schema lookup unavailable, treating target as undescribed",
					"table", key, "error", err)
				cache[key] = nil
				return false, nil
			}
			return false, err
		}
		cache[key] = cols
	}
	for _, c := range cols {
		if strings.EqualFold(c.Name, target.Column) {
			return strings.TrimSpace(c.Description) != "", nil
		}
	}
	return false, nil
}

// ScanMissing walks every table of a namespace and reports the columns that
// lack a description. Tables are scanned concurrently.
func (s *Service) ScanMissing(ctx context.Context, namespace string) ([]domain.ColumnRef, error) {
	tables, err := s.schema.ListTables(ctx, namespace)
	if err != nil {
		return nil, err
	}

	var mu sync.Mutex
	var missing []domain.ColumnRef
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.ResolveWorkers)

	for _, table := range tables {
		g.Go(func() error {
			cols, err := s.schema.GetSchema(gctx, table)
			if err != nil {
				return err
			}
			var found []domain.ColumnRef
			for _, c := range cols {
				if strings.TrimSpace(c.Description) == "" {
					found = append(found, c.Ref(table))
				}
			}
			mu.Lock()
			missing = append(missing, found...)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(missing, func(i, j int) bool { return missing[i].FQN() < missing[j].FQN() })
	return missing, nil
}

// LineageSummary aggregates upstream/downstream reach for a table.
func (s *Service) LineageSummary(ctx context.Context, table domain.TableRef) (*domain.LineageSummary, error) {
	return s.resolver.Summary(ctx, table)
}

// RecommendTagPropagation proposes classification-tag propagation for every
// column of the table with a tagged direct producer. Pure passthrough
// columns are safe to propagate; transformed columns need a human to judge
// whether the transformation strips the sensitivity.
func (s *Service) RecommendTagPropagation(ctx context.Context, table domain.TableRef) ([]domain.TagRecommendation, error) {
	cols, err := s.schema.GetSchema(ctx, table)
	if err != nil {
		return nil, err
	}

	stmt := ""
	if s.statements != nil {
		if recorded, err := s.statements.TransformationStatement(ctx, table); err == nil {
			stmt = recorded
		}
	}

	schemaCache := make(map[string][]domain.Column)
	var recs []domain.TagRecommendation
	for _, c := range cols {
		target := c.Ref(table)
		edge, err := s.resolver.ResolveUpstream(ctx, target)
		if err != nil {
			return recs, err
		}
		if edge == nil {
			continue
		}

		tags, err := s.sourceTags(ctx, schemaCache, edge.Source)
		if err != nil {
			return recs, err
		}
		if len(tags) == 0 {
			continue
		}

		rec := domain.TagRecommendation{
			Target:         target,
			Source:         edge.Source,
			Tags:           tags,
			DirectCopy:     true,
			Recommendation: "propagate",
		}
		if expr, ok := transform.ExtractColumnExpr(stmt, c.Name); ok && !transform.IsPassthrough(expr, c.Name, edge.Source.Column) {
			rec.DirectCopy = false
			rec.Logic = transform.Describe(expr)
			rec.Recommendation = "review-required"
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

func (s *Service) sourceTags(ctx context.Context, cache map[string][]domain.Column, source domain.ColumnRef) ([]string, error) {
	key := source.Table.FQN()
	cols, ok := cache[key]
	if !ok {
		var err error
		cols, err = s.schema.GetSchema(ctx, source.Table)
		if err != nil {
			var notFound *domain.NotFoundError
			if errors.As(err, &notFound) {
				cache[key] = nil
				return nil, nil
			}
			var unavailable *domain.UnavailableError
			if errors.As(err, &unavailable) {
				s.logger.Warn("schema lookup unavailable, treating source as untagged",
					"table", key, "error", err)
				cache[key] = nil
				return nil, nil
			}
			return nil, err
		}
		cache[key] = cols
	}
	for _, c := range cols {
		if strings.EqualFold(c.Name, source.Column) {
			return c.Tags, nil
		}
	}
	return nil, nil
}

// Apply gates and executes propagation records. With dryRun the decisions
// are reported but nothing is written.
func (s *Service) Apply(ctx context.Context, records []domain.PropagationRecord, dryRun bool) ([]domain.ApplyOutcome, error) {
	return s.engine.Apply(ctx, records, dryRun)
}

// ApplyTags executes classification-tag recommendations.
func (s *Service) ApplyTags(ctx context.Context, recs []domain.TagRecommendation) []domain.ApplyOutcome {
	return s.engine.ApplyTags(ctx, recs)
}

// ReviewQueue lists pending review items by status.
func (s *Service) ReviewQueue(ctx context.Context, status string) ([]domain.ReviewItem, error) {
	return s.queue.List(ctx, status)
}

// ResolveReview approves or rejects a pending queue item. Approval applies
// the proposed description; resolving an item that is no longer pending
// fails without touching the target.
func (s *Service) ResolveReview(ctx context.Context, id, status string) error {
	if status == "APPROVED" {
		items, err := s.queue.List(ctx, "PENDING")
		if err != nil {
			return err
		}
		for _, item := range items {
			if item.ID != id {
				continue
			}
			if err := s.schema.UpdateColumnDescription(ctx, item.Target.Table, item.Target.Column, item.Description); err != nil {
				return err
			}
			break
		}
	}
	// The queue only resolves pending items, so an already-resolved or
	// unknown id fails here without the description having been applied.
	return s.queue.Resolve(ctx, id, status)
}

// Chain runs pull propagation into the entity table, applies, then push
// propagation out of it, so freshly inherited descriptions flow onward in
// one pass.
func (s *Service) Chain(ctx context.Context, entity domain.TableRef, dryRun bool) ([]domain.ApplyOutcome, error) {
	pulled, err := s.RecommendDescriptions(ctx, entity)
	if err != nil {
		return nil, err
	}
	outcomes, err := s.engine.Apply(ctx, pulled, dryRun)
	if err != nil {
		return outcomes, err
	}

	pushed, err := s.PushDescriptions(ctx, entity)
	if err != nil {
		return outcomes, err
	}
	pushOutcomes, err := s.engine.Apply(ctx, pushed, dryRun)
	outcomes = append(outcomes, pushOutcomes...)
	return outcomes, err
}
