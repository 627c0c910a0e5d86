package repository

import (
	"context"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akanksha86/governance-metadata-propagation/internal/db"
	"github.com/akanksha86/governance-metadata-propagation/internal/domain"
)

func TestReviewRepo(t *testing.T) {
	writeDB, _ := db.OpenTestSQLite(t)
	repo := NewReviewRepo(writeDB)
	ctx := context.Background()

	item := domain.ReviewItem{
		ID:          domain.NewID(),
		Target:      colRef("gold", "report", "amount"),
		Source:      colRef("raw", "sales", "amount"),
		Description: "Gross amount",
		Confidence:  0.82,
		CreatedAt:   time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC),
	}
	require.NoError(t, repo.Enqueue(ctx, item))

	t.Run("list_pending", func(t *testing.T) {
		items, err := repo.List(ctx, "PENDING")
		require.NoError(t, err)
		require.Len(t, items, 1)

		got := items[0]
		assert.Equal(t, item.ID, got.ID)
		assert.Equal(t, "gold.report.amount", got.Target.FQN())
		assert.Equal(t, "raw.sales.amount", got.Source.FQN())
		assert.Equal(t, 0.82, got.Confidence)
		assert.Equal(t, "PENDING", got.Status)
		assert.Equal(t, item.CreatedAt, got.CreatedAt)
	})

	t.Run("resolve", func(t *testing.T) {
		require.NoError(t, repo.Resolve(ctx, item.ID, "APPROVED"))

		pending, err := repo.List(ctx, "PENDING")
		require.NoError(t, err)
		assert.Empty(t, pending)

		approved, err := repo.List(ctx, "APPROVED")
		require.NoError(t, err)
		assert.Len(t, approved, 1)
	})

	t.Run("resolve_is_final", func(t *testing.T) {
		err := repo.Resolve(ctx, item.ID, "REJECTED")

		var conflict *domain.ConflictError
		require.ErrorAs(t, err, &conflict)

		approved, err := repo.List(ctx, "APPROVED")
		require.NoError(t, err)
		assert.Len(t, approved, 1)
	})

	t.Run("resolve_rejects_bad_status", func(t *testing.T) {
		err := repo.Resolve(ctx, item.ID, "MAYBE")

		var validation *domain.ValidationError
		require.ErrorAs(t, err, &validation)
	})

	t.Run("resolve_unknown_id", func(t *testing.T) {
		err := repo.Resolve(ctx, "absent", "APPROVED")

		var notFound *domain.NotFoundError
		require.ErrorAs(t, err, &notFound)
	})
}
