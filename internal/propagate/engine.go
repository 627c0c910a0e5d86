package propagate

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/akanksha86/governance-metadata-propagation/internal/config"
	"github.com/akanksha86/governance-metadata-propagation/internal/domain"
)

// Engine gates propagation records by confidence and applies the surviving
// ones: descriptions to the schema store, provenance links to the link
// store, moderate-confidence records to the review queue.
type Engine struct {
	cfg    config.Scoring
	schema domain.SchemaStore
	links  domain.LinkStore
	queue  domain.ReviewQueue
	logger *slog.Logger
	now    func() time.Time
}

// NewEngine creates a propagation engine.
func NewEngine(cfg config.Scoring, schema domain.SchemaStore, links domain.LinkStore, queue domain.ReviewQueue, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{cfg: cfg, schema: schema, links: links, queue: queue, logger: logger, now: time.Now}
}

// Apply gates and executes a batch of propagation records, reporting a
// per-record outcome. Store failures mark the one record errored and the
// batch continues; an out-of-range confidence aborts the whole batch
// because every later record came from the same broken scoring pass.
// With dryRun set, decisions are computed and reported but nothing is
// written.
func (e *Engine) Apply(ctx context.Context, records []domain.PropagationRecord, dryRun bool) ([]domain.ApplyOutcome, error) {
	outcomes := make([]domain.ApplyOutcome, 0, len(records))
	for _, rec := range records {
		decision, err := Decide(e.cfg, rec.Confidence)
		if err != nil {
			return outcomes, err
		}
		rec.Decision = decision

		if dryRun {
			outcomes = append(outcomes, domain.ApplyOutcome{Record: rec, Status: previewStatus(decision)})
			continue
		}
		outcomes = append(outcomes, e.applyOne(ctx, rec))
	}
	return outcomes, nil
}

func previewStatus(decision domain.Decision) domain.ApplyStatus {
	switch decision {
	case domain.DecisionAutoApply:
		return domain.ApplyApplied
	case domain.DecisionReview:
		return domain.ApplyQueued
	default:
		return domain.ApplySkipped
	}
}

func (e *Engine) applyOne(ctx context.Context, rec domain.PropagationRecord) domain.ApplyOutcome {
	switch rec.Decision {
	case domain.DecisionAutoApply:
		return e.autoApply(ctx, rec)
	case domain.DecisionReview:
		return e.enqueue(ctx, rec)
	default:
		e.logger.Debug("skipping low-confidence record",
			"target", rec.Target.FQN(), "confidence", rec.Confidence)
		return domain.ApplyOutcome{Record: rec, Status: domain.ApplySkipped}
	}
}

func (e *Engine) autoApply(ctx context.Context, rec domain.PropagationRecord) domain.ApplyOutcome {
	if err := e.schema.UpdateColumnDescription(ctx, rec.Target.Table, rec.Target.Column, rec.Description); err != nil {
		e.logger.Error("description update failed",
			"target", rec.Target.FQN(), "error", err)
		return domain.ApplyOutcome{Record: rec, Status: domain.ApplyErrored, Err: err}
	}

	id := domain.LinkID(rec.Target.Table, rec.Target.Column)
	if err := e.links.CreateLink(ctx, rec.Source, rec.Target, "description-propagation", id); err != nil {
		var conflict *domain.ConflictError
		if errors.As(err, &conflict) {
			// A link under the deterministic id already exists, so an
			// earlier run applied this record. Re-running is a success.
			e.logger.Info("propagation link already exists",
				"target", rec.Target.FQN(), "link_id", id)
			return domain.ApplyOutcome{Record: rec, Status: domain.ApplyAlreadyExists}
		}
		return domain.ApplyOutcome{Record: rec, Status: domain.ApplyErrored, Err: err}
	}

	e.logger.Info("description applied",
		"target", rec.Target.FQN(), "source", rec.Source.FQN(),
		"confidence", rec.Confidence, "hop_depth", rec.HopDepth)
	return domain.ApplyOutcome{Record: rec, Status: domain.ApplyApplied}
}

func (e *Engine) enqueue(ctx context.Context, rec domain.PropagationRecord) domain.ApplyOutcome {
	item := domain.ReviewItem{
		ID:          domain.NewID(),
		Target:      rec.Target,
		Source:      rec.Source,
		Description: rec.Description,
		Confidence:  rec.Confidence,
		Status:      "PENDING",
		CreatedAt:   e.now(),
	}
	if err := e.queue.Enqueue(ctx, item); err != nil {
		return domain.ApplyOutcome{Record: rec, Status: domain.ApplyErrored, Err: err}
	}
	e.logger.Info("record queued for review",
		"target", rec.Target.FQN(), "confidence", rec.Confidence)
	return domain.ApplyOutcome{Record: rec, Status: domain.ApplyQueued}
}

// ApplyTags executes classification-tag recommendations. Only direct-copy
// recommendations are applied; transformed columns always require a human.
func (e *Engine) ApplyTags(ctx context.Context, recs []domain.TagRecommendation) []domain.ApplyOutcome {
	outcomes := make([]domain.ApplyOutcome, 0, len(recs))
	for _, rec := range recs {
		out := domain.ApplyOutcome{Record: domain.PropagationRecord{
			Target:      rec.Target,
			Source:      rec.Source,
			Description: "tags: " + strings.Join(rec.Tags, ", "),
		}}
		if rec.Recommendation != "propagate" {
			e.logger.Info("tag propagation requires review",
				"target", rec.Target.FQN(), "logic", rec.Logic)
			out.Status = domain.ApplySkipped
			outcomes = append(outcomes, out)
			continue
		}
		if err := e.schema.UpdateColumnTags(ctx, rec.Target.Table, rec.Target.Column, rec.Tags); err != nil {
			out.Status = domain.ApplyErrored
			out.Err = err
			outcomes = append(outcomes, out)
			continue
		}
		e.logger.Info("tags applied", "target", rec.Target.FQN(), "tags", rec.Tags)
		out.Status = domain.ApplyApplied
		outcomes = append(outcomes, out)
	}
	return outcomes
}
