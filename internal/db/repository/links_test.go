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

func TestLinkRepo(t *testing.T) {
	writeDB, _ := db.OpenTestSQLite(t)
	repo := NewLinkRepo(writeDB)
	ctx := context.Background()

	source := colRef("raw", "sales", "amount")
	target := colRef("gold", "report", "amount")
	id := domain.LinkID(target.Table, target.Column)

	t.Run("create_and_list", func(t *testing.T) {
		require.NoError(t, repo.CreateLink(ctx, source, target, "description-propagation", id))

		ids, err := repo.ListLinks(ctx, "description-propagation")
		require.NoError(t, err)
		assert.Equal(t, []string{"link-gold-report-amount"}, ids)
	})

	t.Run("duplicate_id_conflicts", func(t *testing.T) {
		err := repo.CreateLink(ctx, source, target, "description-propagation", id)

		var conflict *domain.ConflictError
		require.ErrorAs(t, err, &conflict)
	})
}
