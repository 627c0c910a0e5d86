package repository

import (
	"context"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akanksha86/governance-metadata-propagation/internal/db"
	"github.com/akanksha86/governance-metadata-propagation/internal/domain"
)

func TestGlossaryRepo(t *testing.T) {
	writeDB, _ := db.OpenTestSQLite(t)
	repo := NewGlossaryRepo(writeDB)
	ctx := context.Background()

	require.NoError(t, repo.UpsertTerm(ctx, "business-glossary", domain.Term{
		ID:          "terms/order-id",
		DisplayName: "Order ID",
		Description: "The unique ID for orders",
		Embedding:   []float64{0.1, 0.2},
	}))
	require.NoError(t, repo.UpsertTerm(ctx, "business-glossary", domain.Term{
		ID:          "terms/customer-id",
		DisplayName: "Customer Identifier",
		Description: "The unique ID for customers",
	}))
	require.NoError(t, repo.UpsertTerm(ctx, "other", domain.Term{
		ID: "terms/x", DisplayName: "X",
	}))

	t.Run("list_is_scoped_to_vocabulary", func(t *testing.T) {
		terms, err := repo.ListTerms(ctx, "business-glossary")
		require.NoError(t, err)
		require.Len(t, terms, 2)
		assert.Equal(t, "terms/customer-id", terms[0].ID)
		assert.Equal(t, "terms/order-id", terms[1].ID)
		assert.Equal(t, []float64{0.1, 0.2}, terms[1].Embedding)
		assert.Nil(t, terms[0].Embedding)
	})

	t.Run("upsert_replaces", func(t *testing.T) {
		require.NoError(t, repo.UpsertTerm(ctx, "business-glossary", domain.Term{
			ID:          "terms/order-id",
			DisplayName: "Order Identifier",
			Description: "Renamed",
		}))

		terms, err := repo.ListTerms(ctx, "business-glossary")
		require.NoError(t, err)
		assert.Equal(t, "Order Identifier", terms[1].DisplayName)
	})

	t.Run("unknown_vocabulary_is_empty", func(t *testing.T) {
		terms, err := repo.ListTerms(ctx, "absent")
		require.NoError(t, err)
		assert.Empty(t, terms)
	})
}
