package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akanksha86/governance-metadata-propagation/internal/config"
	"github.com/akanksha86/governance-metadata-propagation/internal/db"
	"github.com/akanksha86/governance-metadata-propagation/internal/db/repository"
	"github.com/akanksha86/governance-metadata-propagation/internal/domain"
)

const snapshotYAML = `
tables:
  - name: raw.sales
    columns:
      - name: amount
        description: Gross amount
        type: NUMERIC
        tags: [finance]
      - name: customer_id
        description: Buyer id
        type: INT64
  - name: gold.report
    statement: "SELECT ROUND(amount, 2) AS amount, customer_id FROM raw.sales"
    columns:
      - name: amount
        type: NUMERIC
      - name: customer_id
        description: Buyer id
        type: INT64
edges:
  - source: raw.sales.amount
    target: gold.report.amount
  - source: raw.sales.customer_id
    target: gold.report.customer_id
terms:
  - id: terms/customer-id
    display_name: Customer Identifier
    description: The unique ID for customers
`

func newTestApp(t *testing.T) (*App, DBDeps) {
	t.Helper()

	writeDB, readDB := db.OpenTestSQLite(t)
	cfg := &config.Config{
		Vocabulary:         "business-glossary",
		ResolveWorkers:     2,
		RateLimitRPS:       100,
		RateLimitBurst:     100,
		CORSAllowedOrigins: []string{"*"},
		Scoring:            config.DefaultScoring(),
	}

	a, err := New(Deps{Cfg: cfg, WriteDB: writeDB, ReadDB: readDB})
	require.NoError(t, err)

	deps := DBDeps{
		Schema:     repository.NewSchemaRepo(writeDB),
		Lineage:    repository.NewLineageRepo(writeDB),
		Statements: repository.NewStatementRepo(writeDB),
		Glossary:   repository.NewGlossaryRepo(writeDB),
	}
	return a, deps
}

func loadTestSnapshot(t *testing.T, deps DBDeps) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "snapshot.yaml")
	require.NoError(t, os.WriteFile(path, []byte(snapshotYAML), 0o600))

	snap, err := ReadSnapshot(path)
	require.NoError(t, err)
	require.NoError(t, LoadSnapshot(context.Background(), deps, snap))
}

func TestLoadSnapshot(t *testing.T) {
	a, deps := newTestApp(t)
	loadTestSnapshot(t, deps)

	ctx := context.Background()
	cols, err := deps.Schema.GetSchema(ctx, domain.TableRef{Namespace: "raw", Table: "sales"})
	require.NoError(t, err)
	require.Len(t, cols, 2)
	assert.Equal(t, "Gross amount", cols[0].Description)
	assert.Equal(t, []string{"finance"}, cols[0].Tags)

	terms, err := deps.Glossary.ListTerms(ctx, "business-glossary")
	require.NoError(t, err)
	require.Len(t, terms, 1)
	assert.Equal(t, "Customer Identifier", terms[0].DisplayName)

	t.Run("reload_is_idempotent", func(t *testing.T) {
		loadTestSnapshot(t, deps)
	})

	t.Run("service_resolves_over_loaded_metastore", func(t *testing.T) {
		records, err := a.Service.RecommendDescriptions(ctx, domain.TableRef{Namespace: "gold", Table: "report"})
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "Gross amount (Numerical rounding applied)", records[0].Description)
		assert.Equal(t, domain.DecisionAutoApply, records[0].Decision)
	})
}

func TestReadSnapshot_BadColumnRef(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.yaml")
	require.NoError(t, os.WriteFile(path, []byte("edges:\n  - source: amount\n    target: gold.report.amount\n"), 0o600))

	snap, err := ReadSnapshot(path)
	require.NoError(t, err)

	_, deps := newTestApp(t)
	err = LoadSnapshot(context.Background(), deps, snap)
	var validation *domain.ValidationError
	require.ErrorAs(t, err, &validation)
}

func TestRouter_HealthAndAuth(t *testing.T) {
	a, _ := newTestApp(t)
	router := a.Router()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	t.Run("auth_enforced_when_secret_set", func(t *testing.T) {
		a.Cfg.JWTSecret = "router-test-secret"
		secured := a.Router()

		rec := httptest.NewRecorder()
		secured.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/reviews", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("open_when_no_secret", func(t *testing.T) {
		a.Cfg.JWTSecret = ""
		open := a.Router()

		rec := httptest.NewRecorder()
		open.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/reviews", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}
