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

func TestStatementRepo(t *testing.T) {
	writeDB, _ := db.OpenTestSQLite(t)
	repo := NewStatementRepo(writeDB)
	ctx := context.Background()

	report := domain.TableRef{Namespace: "gold", Table: "report"}

	t.Run("missing_statement_is_empty", func(t *testing.T) {
		stmt, err := repo.TransformationStatement(ctx, report)
		require.NoError(t, err)
		assert.Empty(t, stmt)
	})

	t.Run("record_and_read_back", func(t *testing.T) {
		require.NoError(t, repo.RecordStatement(ctx, report, "SELECT a AS b FROM t"))

		stmt, err := repo.TransformationStatement(ctx, report)
		require.NoError(t, err)
		assert.Equal(t, "SELECT a AS b FROM t", stmt)
	})

	t.Run("rerecord_replaces", func(t *testing.T) {
		require.NoError(t, repo.RecordStatement(ctx, report, "SELECT x AS b FROM t2"))

		stmt, err := repo.TransformationStatement(ctx, report)
		require.NoError(t, err)
		assert.Equal(t, "SELECT x AS b FROM t2", stmt)
	})
}
