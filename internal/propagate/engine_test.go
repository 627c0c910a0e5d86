package propagate

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akanksha86/governance-metadata-propagation/internal/config"
	"github.com/akanksha86/governance-metadata-propagation/internal/domain"
)

// === Mocks ===

type mockSchemaStore struct {
	UpdateColumnDescriptionFn func(ctx context.Context, table domain.TableRef, column, description string) error
	UpdateColumnTagsFn        func(ctx context.Context, table domain.TableRef, column string, tags []string) error
}

func (m *mockSchemaStore) ListTables(context.Context, string) ([]domain.TableRef, error) {
	return nil, nil
}

func (m *mockSchemaStore) GetSchema(context.Context, domain.TableRef) ([]domain.Column, error) {
	return nil, nil
}

func (m *mockSchemaStore) UpdateColumnDescription(ctx context.Context, table domain.TableRef, column, description string) error {
	return m.UpdateColumnDescriptionFn(ctx, table, column, description)
}

func (m *mockSchemaStore) UpdateColumnTags(ctx context.Context, table domain.TableRef, column string, tags []string) error {
	return m.UpdateColumnTagsFn(ctx, table, column, tags)
}

type mockLinkStore struct {
	CreateLinkFn func(ctx context.Context, source, target domain.ColumnRef, linkType, id string) error
}

func (m *mockLinkStore) CreateLink(ctx context.Context, source, target domain.ColumnRef, linkType, id string) error {
	return m.CreateLinkFn(ctx, source, target, linkType, id)
}

type mockReviewQueue struct {
	EnqueueFn func(ctx context.Context, item domain.ReviewItem) error
}

func (m *mockReviewQueue) Enqueue(ctx context.Context, item domain.ReviewItem) error {
	return m.EnqueueFn(ctx, item)
}

func (m *mockReviewQueue) List(context.Context, string) ([]domain.ReviewItem, error) {
	return nil, nil
}

func (m *mockReviewQueue) Resolve(context.Context, string, string) error { return nil }

func record(confidence float64) domain.PropagationRecord {
	return domain.PropagationRecord{
		Target: domain.ColumnRef{
			Table:  domain.TableRef{Namespace: "gold", Table: "orders"},
			Column: "amount",
		},
		Source: domain.ColumnRef{
			Table:       domain.TableRef{Namespace: "raw", Table: "sales"},
			Column:      "amount",
			Description: "Gross amount",
		},
		Description: "Gross amount",
		Confidence:  confidence,
		HopDepth:    1,
	}
}

// === Apply ===

func TestEngine_Apply(t *testing.T) {
	cfg := config.DefaultScoring()

	t.Run("auto_apply_writes_description_and_link", func(t *testing.T) {
		var wroteDesc, wroteLink bool
		schema := &mockSchemaStore{
			UpdateColumnDescriptionFn: func(_ context.Context, table domain.TableRef, column, description string) error {
				wroteDesc = true
				assert.Equal(t, "gold.orders", table.FQN())
				assert.Equal(t, "amount", column)
				assert.Equal(t, "Gross amount", description)
				return nil
			},
		}
		links := &mockLinkStore{
			CreateLinkFn: func(_ context.Context, _, _ domain.ColumnRef, linkType, id string) error {
				wroteLink = true
				assert.Equal(t, "description-propagation", linkType)
				assert.Equal(t, "link-gold-orders-amount", id)
				return nil
			},
		}

		e := NewEngine(cfg, schema, links, &mockReviewQueue{}, nil)
		outcomes, err := e.Apply(context.Background(), []domain.PropagationRecord{record(0.95)}, false)

		require.NoError(t, err)
		require.Len(t, outcomes, 1)
		assert.Equal(t, domain.ApplyApplied, outcomes[0].Status)
		assert.Equal(t, domain.DecisionAutoApply, outcomes[0].Record.Decision)
		assert.True(t, wroteDesc)
		assert.True(t, wroteLink)
	})

	t.Run("rerun_with_existing_link_succeeds", func(t *testing.T) {
		schema := &mockSchemaStore{
			UpdateColumnDescriptionFn: func(context.Context, domain.TableRef, string, string) error {
				return nil
			},
		}
		links := &mockLinkStore{
			CreateLinkFn: func(_ context.Context, _, _ domain.ColumnRef, _, id string) error {
				return domain.ErrConflict("link %s already exists", id)
			},
		}

		e := NewEngine(cfg, schema, links, &mockReviewQueue{}, nil)
		outcomes, err := e.Apply(context.Background(), []domain.PropagationRecord{record(0.95)}, false)

		require.NoError(t, err)
		require.Len(t, outcomes, 1)
		assert.Equal(t, domain.ApplyAlreadyExists, outcomes[0].Status)
		assert.NoError(t, outcomes[0].Err)
	})

	t.Run("review_band_enqueues_with_provenance", func(t *testing.T) {
		var queued domain.ReviewItem
		queue := &mockReviewQueue{
			EnqueueFn: func(_ context.Context, item domain.ReviewItem) error {
				queued = item
				return nil
			},
		}

		e := NewEngine(cfg, &mockSchemaStore{}, &mockLinkStore{}, queue, nil)
		outcomes, err := e.Apply(context.Background(), []domain.PropagationRecord{record(0.80)}, false)

		require.NoError(t, err)
		assert.Equal(t, domain.ApplyQueued, outcomes[0].Status)
		assert.NotEmpty(t, queued.ID)
		assert.Equal(t, "PENDING", queued.Status)
		assert.Equal(t, "gold.orders.amount", queued.Target.FQN())
		assert.Equal(t, "raw.sales.amount", queued.Source.FQN())
		assert.Equal(t, 0.80, queued.Confidence)
		assert.False(t, queued.CreatedAt.IsZero())
	})

	t.Run("skip_band_touches_nothing", func(t *testing.T) {
		e := NewEngine(cfg, &mockSchemaStore{}, &mockLinkStore{}, &mockReviewQueue{}, nil)
		outcomes, err := e.Apply(context.Background(), []domain.PropagationRecord{record(0.40)}, false)

		require.NoError(t, err)
		assert.Equal(t, domain.ApplySkipped, outcomes[0].Status)
	})

	t.Run("invalid_confidence_aborts_batch", func(t *testing.T) {
		applied := 0
		schema := &mockSchemaStore{
			UpdateColumnDescriptionFn: func(context.Context, domain.TableRef, string, string) error {
				applied++
				return nil
			},
		}
		links := &mockLinkStore{
			CreateLinkFn: func(context.Context, domain.ColumnRef, domain.ColumnRef, string, string) error {
				return nil
			},
		}

		e := NewEngine(cfg, schema, links, &mockReviewQueue{}, nil)
		outcomes, err := e.Apply(context.Background(), []domain.PropagationRecord{
			record(0.95), record(1.2), record(0.95),
		}, false)

		var invalid *domain.InvalidConfidenceError
		require.ErrorAs(t, err, &invalid)
		// The batch stops at the bad record; nothing after it is touched.
		assert.Len(t, outcomes, 1)
		assert.Equal(t, 1, applied)
	})

	t.Run("store_error_marks_record_and_continues", func(t *testing.T) {
		calls := 0
		schema := &mockSchemaStore{
			UpdateColumnDescriptionFn: func(context.Context, domain.TableRef, string, string) error {
				calls++
				if calls == 1 {
					return errors.New("store down")
				}
				return nil
			},
		}
		links := &mockLinkStore{
			CreateLinkFn: func(context.Context, domain.ColumnRef, domain.ColumnRef, string, string) error {
				return nil
			},
		}

		e := NewEngine(cfg, schema, links, &mockReviewQueue{}, nil)
		outcomes, err := e.Apply(context.Background(), []domain.PropagationRecord{
			record(0.95), record(0.95),
		}, false)

		require.NoError(t, err)
		require.Len(t, outcomes, 2)
		assert.Equal(t, domain.ApplyErrored, outcomes[0].Status)
		assert.Error(t, outcomes[0].Err)
		assert.Equal(t, domain.ApplyApplied, outcomes[1].Status)
	})

	t.Run("dry_run_reports_without_writing", func(t *testing.T) {
		e := NewEngine(cfg, &mockSchemaStore{}, &mockLinkStore{}, &mockReviewQueue{}, nil)
		outcomes, err := e.Apply(context.Background(), []domain.PropagationRecord{
			record(0.95), record(0.80), record(0.40),
		}, true)

		require.NoError(t, err)
		require.Len(t, outcomes, 3)
		assert.Equal(t, domain.ApplyApplied, outcomes[0].Status)
		assert.Equal(t, domain.ApplyQueued, outcomes[1].Status)
		assert.Equal(t, domain.ApplySkipped, outcomes[2].Status)
	})
}

// === ApplyTags ===

func TestEngine_ApplyTags(t *testing.T) {
	cfg := config.DefaultScoring()
	target := domain.ColumnRef{Table: domain.TableRef{Namespace: "gold", Table: "orders"}, Column: "email"}
	source := domain.ColumnRef{Table: domain.TableRef{Namespace: "raw", Table: "users"}, Column: "email"}

	t.Run("direct_copy_propagates", func(t *testing.T) {
		var gotTags []string
		schema := &mockSchemaStore{
			UpdateColumnTagsFn: func(_ context.Context, _ domain.TableRef, column string, tags []string) error {
				assert.Equal(t, "email", column)
				gotTags = tags
				return nil
			},
		}

		e := NewEngine(cfg, schema, &mockLinkStore{}, &mockReviewQueue{}, nil)
		outcomes := e.ApplyTags(context.Background(), []domain.TagRecommendation{
			{Target: target, Source: source, Tags: []string{"pii"}, DirectCopy: true, Recommendation: "propagate"},
		})

		require.Len(t, outcomes, 1)
		assert.Equal(t, domain.ApplyApplied, outcomes[0].Status)
		assert.Equal(t, []string{"pii"}, gotTags)
	})

	t.Run("transformed_column_requires_review", func(t *testing.T) {
		e := NewEngine(cfg, &mockSchemaStore{}, &mockLinkStore{}, &mockReviewQueue{}, nil)
		outcomes := e.ApplyTags(context.Background(), []domain.TagRecommendation{
			{Target: target, Source: source, Tags: []string{"pii"}, Logic: "String formatting applied", Recommendation: "review-required"},
		})

		require.Len(t, outcomes, 1)
		assert.Equal(t, domain.ApplySkipped, outcomes[0].Status)
	})
}
