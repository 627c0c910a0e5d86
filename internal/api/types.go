package api

import (
	"strings"
	"time"

	"github.com/akanksha86/governance-metadata-propagation/internal/domain"
)

// === Request payloads ===

type tableRequest struct {
	Table  string `json:"table"`
	DryRun bool   `json:"dry_run"`
}

func (r tableRequest) tableRef() (domain.TableRef, error) {
	if strings.TrimSpace(r.Table) == "" {
		return domain.TableRef{}, domain.ErrValidation("table is required")
	}
	return domain.ParseTableRef(r.Table), nil
}

type applyRequest struct {
	Records []propagationRecord `json:"records"`
	DryRun  bool                `json:"dry_run"`
}

type applyTagsRequest struct {
	Recommendations []tagRecommendation `json:"recommendations"`
}

type resolveRequest struct {
	Status string `json:"status"`
}

// === Wire types ===

type columnRef struct {
	Table       string `json:"table"`
	Column      string `json:"column"`
	Description string `json:"description,omitempty"`
}

func columnRefToAPI(c domain.ColumnRef) columnRef {
	return columnRef{Table: c.Table.FQN(), Column: c.Column, Description: c.Description}
}

func (c columnRef) toDomain() domain.ColumnRef {
	return domain.ColumnRef{
		Table:       domain.ParseTableRef(c.Table),
		Column:      c.Column,
		Description: c.Description,
	}
}

type propagationRecord struct {
	Target      columnRef `json:"target"`
	Source      columnRef `json:"source"`
	Description string    `json:"description"`
	Confidence  float64   `json:"confidence"`
	HopDepth    int       `json:"hop_depth"`
	Hints       []string  `json:"hints,omitempty"`
	Decision    string    `json:"decision,omitempty"`
}

func recordToAPI(rec domain.PropagationRecord) propagationRecord {
	return propagationRecord{
		Target:      columnRefToAPI(rec.Target),
		Source:      columnRefToAPI(rec.Source),
		Description: rec.Description,
		Confidence:  rec.Confidence,
		HopDepth:    rec.HopDepth,
		Hints:       rec.Hints,
		Decision:    string(rec.Decision),
	}
}

func recordsToAPI(records []domain.PropagationRecord) []propagationRecord {
	out := make([]propagationRecord, len(records))
	for i, rec := range records {
		out[i] = recordToAPI(rec)
	}
	return out
}

func (r propagationRecord) toDomain() domain.PropagationRecord {
	return domain.PropagationRecord{
		Target:      r.Target.toDomain(),
		Source:      r.Source.toDomain(),
		Description: r.Description,
		Confidence:  r.Confidence,
		HopDepth:    r.HopDepth,
		Hints:       r.Hints,
		Decision:    domain.Decision(r.Decision),
	}
}

type applyOutcome struct {
	Record propagationRecord `json:"record"`
	Status string            `json:"status"`
	Error  string            `json:"error,omitempty"`
}

func outcomesToAPI(outcomes []domain.ApplyOutcome) []applyOutcome {
	out := make([]applyOutcome, len(outcomes))
	for i, o := range outcomes {
		out[i] = applyOutcome{Record: recordToAPI(o.Record), Status: string(o.Status)}
		if o.Err != nil {
			out[i].Error = o.Err.Error()
		}
	}
	return out
}

type termMatch struct {
	TermID      string  `json:"term_id"`
	DisplayName string  `json:"display_name"`
	Confidence  float64 `json:"confidence"`
	Lexical     float64 `json:"lexical"`
	Semantic    float64 `json:"semantic"`
}

func termMatchToAPI(c domain.MatchCandidate) termMatch {
	return termMatch{
		TermID:      c.TermID,
		DisplayName: c.DisplayName,
		Confidence:  c.Confidence,
		Lexical:     c.Signals.Lexical,
		Semantic:    c.Signals.Semantic,
	}
}

type tagRecommendation struct {
	Target         columnRef `json:"target"`
	Source         columnRef `json:"source"`
	Tags           []string  `json:"tags"`
	DirectCopy     bool      `json:"direct_copy"`
	Logic          string    `json:"logic,omitempty"`
	Recommendation string    `json:"recommendation"`
}

func tagRecommendationToAPI(rec domain.TagRecommendation) tagRecommendation {
	return tagRecommendation{
		Target:         columnRefToAPI(rec.Target),
		Source:         columnRefToAPI(rec.Source),
		Tags:           rec.Tags,
		DirectCopy:     rec.DirectCopy,
		Logic:          rec.Logic,
		Recommendation: rec.Recommendation,
	}
}

func (r tagRecommendation) toDomain() domain.TagRecommendation {
	return domain.TagRecommendation{
		Target:         r.Target.toDomain(),
		Source:         r.Source.toDomain(),
		Tags:           r.Tags,
		DirectCopy:     r.DirectCopy,
		Logic:          r.Logic,
		Recommendation: r.Recommendation,
	}
}

type reviewItem struct {
	ID          string    `json:"id"`
	Target      columnRef `json:"target"`
	Source      columnRef `json:"source"`
	Description string    `json:"description"`
	Confidence  float64   `json:"confidence"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

func reviewItemToAPI(item domain.ReviewItem) reviewItem {
	return reviewItem{
		ID:          item.ID,
		Target:      columnRefToAPI(item.Target),
		Source:      columnRefToAPI(item.Source),
		Description: item.Description,
		Confidence:  item.Confidence,
		Status:      item.Status,
		CreatedAt:   item.CreatedAt,
	}
}

type lineageSummary struct {
	Table               string         `json:"table"`
	UpstreamEntities    map[string]int `json:"upstream_entities"`
	DownstreamEntities  map[string]int `json:"downstream_entities"`
	MissingDescriptions []string       `json:"missing_descriptions"`
	Enrichable          int            `json:"enrichable"`
}

func lineageSummaryToAPI(s *domain.LineageSummary) lineageSummary {
	return lineageSummary{
		Table:               s.Table.FQN(),
		UpstreamEntities:    s.UpstreamEntities,
		DownstreamEntities:  s.DownstreamEntities,
		MissingDescriptions: s.MissingDescriptions,
		Enrichable:          s.Enrichable,
	}
}
