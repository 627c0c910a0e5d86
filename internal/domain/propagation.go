package domain

import "time"

// Decision is the three-way outcome of the confidence gate.
type Decision string

const (
	DecisionAutoApply Decision = "AUTO_APPLY"
	DecisionReview    Decision = "REVIEW"
	DecisionSkip      Decision = "SKIP"
)

// PropagationRecord is one proposed metadata change, created per
// recommendation cycle. AUTO_APPLY records go straight to the schema store,
// REVIEW records to the durable review queue, SKIP records are dropped
// (logged only).
type PropagationRecord struct {
	Target      ColumnRef
	Source      ColumnRef
	Description string
	Confidence  float64
	HopDepth    int
	Hints       []string
	Decision    Decision
}

// ApplyStatus is the per-record outcome of an apply call.
type ApplyStatus string

const (
	ApplyApplied       ApplyStatus = "applied"
	ApplyQueued        ApplyStatus = "queued"
	ApplySkipped       ApplyStatus = "skipped"
	ApplyAlreadyExists ApplyStatus = "already_exists"
	ApplyErrored       ApplyStatus = "errored"
)

// ApplyOutcome reports what happened to one record. Batch operations report
// per-item outcomes instead of failing the whole batch on one item.
type ApplyOutcome struct {
	Record PropagationRecord
	Status ApplyStatus
	Err    error
}

// ReviewItem is a durable pending-review entry with full provenance.
type ReviewItem struct {
	ID          string
	Target      ColumnRef
	Source      ColumnRef
	Description string
	Confidence  float64
	Status      string // "PENDING", "APPROVED", "REJECTED"
	CreatedAt   time.Time
}

// TagRecommendation proposes propagating an access-classification tag along
// a direct lineage edge. Transformed columns are never auto-propagated.
type TagRecommendation struct {
	Target         ColumnRef
	Source         ColumnRef
	Tags           []string
	DirectCopy     bool
	Logic          string
	Recommendation string // "propagate" or "review-required"
}
