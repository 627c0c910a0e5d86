package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akanksha86/governance-metadata-propagation/internal/config"
	"github.com/akanksha86/governance-metadata-propagation/internal/domain"
	"github.com/akanksha86/governance-metadata-propagation/internal/propagate"
	"github.com/akanksha86/governance-metadata-propagation/internal/resolve"
	"github.com/akanksha86/governance-metadata-propagation/internal/steward"
)

// === In-memory fakes ===

type fakeSchema struct {
	tables map[string][]domain.Column
}

func (f *fakeSchema) ListTables(_ context.Context, namespace string) ([]domain.TableRef, error) {
	var out []domain.TableRef
	for fqn := range f.tables {
		ref := domain.ParseTableRef(fqn)
		if namespace == "" || ref.Namespace == namespace {
			out = append(out, ref)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FQN() < out[j].FQN() })
	return out, nil
}

func (f *fakeSchema) GetSchema(_ context.Context, table domain.TableRef) ([]domain.Column, error) {
	cols, ok := f.tables[table.FQN()]
	if !ok {
		return nil, domain.ErrNotFound("table %s not found", table.FQN())
	}
	return cols, nil
}

func (f *fakeSchema) UpdateColumnDescription(_ context.Context, table domain.TableRef, column, description string) error {
	cols := f.tables[table.FQN()]
	for i, c := range cols {
		if c.Name == column {
			cols[i].Description = description
			return nil
		}
	}
	return domain.ErrNotFound("column %s.%s not found", table.FQN(), column)
}

func (f *fakeSchema) UpdateColumnTags(_ context.Context, table domain.TableRef, column string, tags []string) error {
	cols := f.tables[table.FQN()]
	for i, c := range cols {
		if c.Name == column {
			cols[i].Tags = tags
			return nil
		}
	}
	return domain.ErrNotFound("column %s.%s not found", table.FQN(), column)
}

type fakeEdge struct {
	source, target domain.ColumnRef
}

type fakeLineage struct {
	edges []fakeEdge
}

func (f *fakeLineage) SearchLinks(_ context.Context, ref domain.TableRef, fields []string, direction domain.Direction) ([]domain.Link, error) {
	inFields := func(name string) bool {
		for _, field := range fields {
			if field == name {
				return true
			}
		}
		return false
	}
	grouped := map[string]*domain.Link{}
	var order []string
	add := func(peer domain.TableRef, field string) {
		key := peer.FQN()
		link, ok := grouped[key]
		if !ok {
			link = &domain.Link{Peer: peer}
			grouped[key] = link
			order = append(order, key)
		}
		link.Fields = append(link.Fields, field)
	}
	for _, e := range f.edges {
		if direction == domain.Upstream && e.target.Table == ref && inFields(e.target.Column) {
			add(e.source.Table, e.source.Column)
		}
		if direction == domain.Downstream && e.source.Table == ref && inFields(e.source.Column) {
			add(e.target.Table, e.target.Column)
		}
	}
	var links []domain.Link
	for _, key := range order {
		links = append(links, *grouped[key])
	}
	return links, nil
}

type fakeStatements struct {
	stmts map[string]string
}

func (f *fakeStatements) TransformationStatement(_ context.Context, table domain.TableRef) (string, error) {
	return f.stmts[table.FQN()], nil
}

type fakeGlossary struct{}

func (fakeGlossary) ListTerms(context.Context, string) ([]domain.Term, error) { return nil, nil }

type fakeLinks struct {
	ids map[string]bool
}

func (f *fakeLinks) CreateLink(_ context.Context, _, _ domain.ColumnRef, _, id string) error {
	if f.ids == nil {
		f.ids = map[string]bool{}
	}
	if f.ids[id] {
		return domain.ErrConflict("link %s already exists", id)
	}
	f.ids[id] = true
	return nil
}

type fakeQueue struct {
	items []domain.ReviewItem
}

func (f *fakeQueue) Enqueue(_ context.Context, item domain.ReviewItem) error {
	f.items = append(f.items, item)
	return nil
}

func (f *fakeQueue) List(_ context.Context, status string) ([]domain.ReviewItem, error) {
	var out []domain.ReviewItem
	for _, item := range f.items {
		if status == "" || item.Status == status {
			out = append(out, item)
		}
	}
	return out, nil
}

func (f *fakeQueue) Resolve(_ context.Context, id, status string) error {
	if status != "APPROVED" && status != "REJECTED" {
		return domain.ErrValidation("status must be APPROVED or REJECTED, got %q", status)
	}
	for i, item := range f.items {
		if item.ID != id {
			continue
		}
		if item.Status != "PENDING" {
			return domain.ErrConflict("review item %s already resolved as %s", id, item.Status)
		}
		f.items[i].Status = status
		return nil
	}
	return domain.ErrNotFound("review item %s not found", id)
}

// === Harness ===

type harness struct {
	router chi.Router
	schema *fakeSchema
	queue  *fakeQueue
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	schema := &fakeSchema{tables: map[string][]domain.Column{
		"raw.sales": {
			{Name: "amount", Description: "Gross amount", Type: "NUMERIC"},
		},
		"gold.report": {
			{Name: "amount", Type: "NUMERIC"},
			{Name: "notes", Type: "STRING"},
		},
	}}
	lineage := &fakeLineage{edges: []fakeEdge{
		{
			source: domain.ColumnRef{Table: domain.TableRef{Namespace: "raw", Table: "sales"}, Column: "amount"},
			target: domain.ColumnRef{Table: domain.TableRef{Namespace: "gold", Table: "report"}, Column: "amount"},
		},
	}}
	statements := &fakeStatements{stmts: map[string]string{
		"gold.report": "SELECT ROUND(amount, 2) AS amount, notes FROM raw.sales",
	}}

	cfg := &config.Config{Vocabulary: "business-glossary", ResolveWorkers: 2, Scoring: config.DefaultScoring()}
	resolver := resolve.NewResolver(cfg.Scoring, lineage, schema, statements, nil, nil)
	queue := &fakeQueue{}
	engine := propagate.NewEngine(cfg.Scoring, schema, &fakeLinks{}, queue, nil)
	service := steward.NewService(cfg, schema, fakeGlossary{}, nil, statements, resolver, engine, queue, nil)

	router := chi.NewRouter()
	NewHandler(service, nil).Register(router)
	return &harness{router: router, schema: schema, queue: queue}
}

func (h *harness) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	return out
}

// === Tests ===

func TestHandler_RecommendDescriptions(t *testing.T) {
	h := newHarness(t)

	rec := h.do(t, http.MethodGet, "/tables/gold/report/recommendations/descriptions", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "gold.report", body["table"])

	records := body["records"].([]interface{})
	require.Len(t, records, 1)
	first := records[0].(map[string]interface{})
	assert.Equal(t, "Gross amount (Numerical rounding applied)", first["description"])
	assert.Equal(t, "AUTO_APPLY", first["decision"])
	assert.InDelta(t, 1.0, first["confidence"], 0.001)
}

func TestHandler_UnknownTableReturns404(t *testing.T) {
	h := newHarness(t)

	rec := h.do(t, http.MethodGet, "/tables/gold/nope/recommendations/descriptions", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	body := decode(t, rec)
	assert.InDelta(t, float64(404), body["code"], 0.001)
}

func TestHandler_LineageSummary(t *testing.T) {
	h := newHarness(t)

	rec := h.do(t, http.MethodGet, "/tables/gold/report/lineage-summary", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "gold.report", body["table"])
	assert.Equal(t, map[string]interface{}{"raw.sales": float64(1)}, body["upstream_entities"])
	assert.Equal(t, []interface{}{"amount", "notes"}, body["missing_descriptions"])
	assert.InDelta(t, 1, body["enrichable"], 0.001)
}

func TestHandler_ScanMissing(t *testing.T) {
	h := newHarness(t)

	rec := h.do(t, http.MethodGet, "/namespaces/gold/missing-descriptions", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	missing := body["missing"].([]interface{})
	require.Len(t, missing, 2)
	first := missing[0].(map[string]interface{})
	assert.Equal(t, "gold.report", first["table"])
	assert.Equal(t, "amount", first["column"])
}

func TestHandler_Apply(t *testing.T) {
	h := newHarness(t)

	payload := map[string]interface{}{
		"records": []map[string]interface{}{{
			"target":      map[string]string{"table": "gold.report", "column": "amount"},
			"source":      map[string]string{"table": "raw.sales", "column": "amount"},
			"description": "Gross amount (Numerical rounding applied)",
			"confidence":  1.0,
		}},
	}
	rec := h.do(t, http.MethodPost, "/propagation/apply", payload)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	outcomes := body["outcomes"].([]interface{})
	require.Len(t, outcomes, 1)
	assert.Equal(t, "applied", outcomes[0].(map[string]interface{})["status"])

	cols, err := h.schema.GetSchema(context.Background(), domain.TableRef{Namespace: "gold", Table: "report"})
	require.NoError(t, err)
	assert.Equal(t, "Gross amount (Numerical rounding applied)", cols[0].Description)
}

func TestHandler_Apply_DryRunDoesNotWrite(t *testing.T) {
	h := newHarness(t)

	payload := map[string]interface{}{
		"dry_run": true,
		"records": []map[string]interface{}{{
			"target":      map[string]string{"table": "gold.report", "column": "amount"},
			"source":      map[string]string{"table": "raw.sales", "column": "amount"},
			"description": "Gross amount",
			"confidence":  1.0,
		}},
	}
	rec := h.do(t, http.MethodPost, "/propagation/apply", payload)

	require.Equal(t, http.StatusOK, rec.Code)
	cols, err := h.schema.GetSchema(context.Background(), domain.TableRef{Namespace: "gold", Table: "report"})
	require.NoError(t, err)
	assert.Empty(t, cols[0].Description)
}

func TestHandler_Apply_MalformedBody(t *testing.T) {
	h := newHarness(t)

	req := httptest.NewRequest(http.MethodPost, "/propagation/apply", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_Chain(t *testing.T) {
	h := newHarness(t)

	rec := h.do(t, http.MethodPost, "/propagation/chain", map[string]interface{}{"table": "gold.report"})

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	outcomes := body["outcomes"].([]interface{})
	require.NotEmpty(t, outcomes)

	cols, err := h.schema.GetSchema(context.Background(), domain.TableRef{Namespace: "gold", Table: "report"})
	require.NoError(t, err)
	assert.Equal(t, "Gross amount (Numerical rounding applied)", cols[0].Description)
}

func TestHandler_Chain_MissingTable(t *testing.T) {
	h := newHarness(t)

	rec := h.do(t, http.MethodPost, "/propagation/chain", map[string]interface{}{})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_Reviews(t *testing.T) {
	h := newHarness(t)
	item := domain.ReviewItem{
		ID:          domain.NewID(),
		Target:      domain.ColumnRef{Table: domain.TableRef{Namespace: "gold", Table: "report"}, Column: "notes"},
		Source:      domain.ColumnRef{Table: domain.TableRef{Namespace: "raw", Table: "sales"}, Column: "amount"},
		Description: "Free-form order notes",
		Confidence:  0.8,
		Status:      "PENDING",
	}
	require.NoError(t, h.queue.Enqueue(context.Background(), item))

	t.Run("list_defaults_to_pending", func(t *testing.T) {
		rec := h.do(t, http.MethodGet, "/reviews", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		body := decode(t, rec)
		items := body["items"].([]interface{})
		require.Len(t, items, 1)
		assert.Equal(t, item.ID, items[0].(map[string]interface{})["id"])
	})

	t.Run("resolve_invalid_status", func(t *testing.T) {
		rec := h.do(t, http.MethodPost, "/reviews/"+item.ID+"/resolve", map[string]string{"status": "MAYBE"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("approve_applies_description", func(t *testing.T) {
		rec := h.do(t, http.MethodPost, "/reviews/"+item.ID+"/resolve", map[string]string{"status": "APPROVED"})
		require.Equal(t, http.StatusOK, rec.Code)

		cols, err := h.schema.GetSchema(context.Background(), domain.TableRef{Namespace: "gold", Table: "report"})
		require.NoError(t, err)
		assert.Equal(t, "Free-form order notes", cols[1].Description)
	})

	t.Run("re_resolve_conflicts", func(t *testing.T) {
		rec := h.do(t, http.MethodPost, "/reviews/"+item.ID+"/resolve", map[string]string{"status": "REJECTED"})
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("resolve_unknown_id", func(t *testing.T) {
		rec := h.do(t, http.MethodPost, "/reviews/does-not-exist/resolve", map[string]string{"status": "REJECTED"})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
