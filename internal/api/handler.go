// Package api provides the HTTP surface of the metadata steward: JSON
// handlers over the steward service, mounted on a chi router.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/akanksha86/governance-metadata-propagation/internal/domain"
	"github.com/akanksha86/governance-metadata-propagation/internal/steward"
)

// Handler exposes the steward service over HTTP.
type Handler struct {
	service *steward.Service
	logger  *slog.Logger
}

// NewHandler creates an API handler around the steward service.
func NewHandler(service *steward.Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{service: service, logger: logger.With("component", "api")}
}

// Register mounts all routes on the given router. Callers attach auth and
// rate-limit middleware before registering.
func (h *Handler) Register(r chi.Router) {
	r.Route("/tables/{namespace}/{table}", func(r chi.Router) {
		r.Get("/recommendations/descriptions", h.recommendDescriptions)
		r.Get("/recommendations/terms", h.recommendTerms)
		r.Get("/recommendations/tags", h.recommendTags)
		r.Get("/lineage-summary", h.lineageSummary)
	})
	r.Get("/namespaces/{namespace}/missing-descriptions", h.scanMissing)
	r.Post("/propagation/apply", h.apply)
	r.Post("/propagation/push", h.push)
	r.Post("/propagation/chain", h.chain)
	r.Post("/propagation/tags/apply", h.applyTags)
	r.Get("/reviews", h.listReviews)
	r.Post("/reviews/{id}/resolve", h.resolveReview)
}

func tableFromURL(r *http.Request) domain.TableRef {
	return domain.TableRef{
		Namespace: chi.URLParam(r, "namespace"),
		Table:     chi.URLParam(r, "table"),
	}
}

// === Read endpoints ===

func (h *Handler) recommendDescriptions(w http.ResponseWriter, r *http.Request) {
	table := tableFromURL(r)
	records, err := h.service.RecommendDescriptions(r.Context(), table)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"table":   table.FQN(),
		"records": recordsToAPI(records),
	})
}

func (h *Handler) recommendTerms(w http.ResponseWriter, r *http.Request) {
	table := tableFromURL(r)
	matches, err := h.service.RecommendTerms(r.Context(), table)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make(map[string][]termMatch, len(matches))
	for column, candidates := range matches {
		ranked := make([]termMatch, len(candidates))
		for i, c := range candidates {
			ranked[i] = termMatchToAPI(c)
		}
		out[column] = ranked
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"table":   table.FQN(),
		"matches": out,
	})
}

func (h *Handler) recommendTags(w http.ResponseWriter, r *http.Request) {
	table := tableFromURL(r)
	recs, err := h.service.RecommendTagPropagation(r.Context(), table)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]tagRecommendation, len(recs))
	for i, rec := range recs {
		out[i] = tagRecommendationToAPI(rec)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"table":           table.FQN(),
		"recommendations": out,
	})
}

func (h *Handler) lineageSummary(w http.ResponseWriter, r *http.Request) {
	table := tableFromURL(r)
	summary, err := h.service.LineageSummary(r.Context(), table)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, lineageSummaryToAPI(summary))
}

func (h *Handler) scanMissing(w http.ResponseWriter, r *http.Request) {
	namespace := chi.URLParam(r, "namespace")
	missing, err := h.service.ScanMissing(r.Context(), namespace)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]columnRef, len(missing))
	for i, col := range missing {
		out[i] = columnRefToAPI(col)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"namespace": namespace,
		"missing":   out,
	})
}

// === Write endpoints ===

func (h *Handler) apply(w http.ResponseWriter, r *http.Request) {
	var req applyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body: "+err.Error())
		return
	}
	records := make([]domain.PropagationRecord, len(req.Records))
	for i, rec := range req.Records {
		records[i] = rec.toDomain()
	}
	outcomes, err := h.service.Apply(r.Context(), records, req.DryRun)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"dry_run":  req.DryRun,
		"outcomes": outcomesToAPI(outcomes),
	})
}

func (h *Handler) push(w http.ResponseWriter, r *http.Request) {
	var req tableRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body: "+err.Error())
		return
	}
	table, err := req.tableRef()
	if err != nil {
		writeError(w, err)
		return
	}
	records, err := h.service.PushDescriptions(r.Context(), table)
	if err != nil {
		writeError(w, err)
		return
	}
	outcomes, err := h.service.Apply(r.Context(), records, req.DryRun)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"table":    table.FQN(),
		"dry_run":  req.DryRun,
		"outcomes": outcomesToAPI(outcomes),
	})
}

func (h *Handler) chain(w http.ResponseWriter, r *http.Request) {
	var req tableRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body: "+err.Error())
		return
	}
	table, err := req.tableRef()
	if err != nil {
		writeError(w, err)
		return
	}
	outcomes, err := h.service.Chain(r.Context(), table, req.DryRun)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"table":    table.FQN(),
		"dry_run":  req.DryRun,
		"outcomes": outcomesToAPI(outcomes),
	})
}

func (h *Handler) applyTags(w http.ResponseWriter, r *http.Request) {
	var req applyTagsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body: "+err.Error())
		return
	}
	recs := make([]domain.TagRecommendation, len(req.Recommendations))
	for i, rec := range req.Recommendations {
		recs[i] = rec.toDomain()
	}
	outcomes := h.service.ApplyTags(r.Context(), recs)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"outcomes": outcomesToAPI(outcomes),
	})
}

func (h *Handler) listReviews(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	if status == "" {
		status = "PENDING"
	}
	items, err := h.service.ReviewQueue(r.Context(), status)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]reviewItem, len(items))
	for i, item := range items {
		out[i] = reviewItemToAPI(item)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": status,
		"items":  out,
	})
}

func (h *Handler) resolveReview(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req resolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body: "+err.Error())
		return
	}
	if err := h.service.ResolveReview(r.Context(), id, req.Status); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"id":     id,
		"status": req.Status,
	})
}
