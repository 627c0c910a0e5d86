// Package propagate turns resolved recommendations into decisions and
// applies them to the metadata store.
package propagate

import (
	"github.com/akanksha86/governance-metadata-propagation/internal/config"
	"github.com/akanksha86/governance-metadata-propagation/internal/domain"
)

// Decide maps a confidence value onto the three-way gate. A confidence
// outside [0,1] is a scoring bug: the caller must abort the operation, so
// it is reported as an error instead of being clamped into a band.
func Decide(cfg config.Scoring, confidence float64) (domain.Decision, error) {
	if confidence < 0 || confidence > 1 {
		return "", &domain.InvalidConfidenceError{Confidence: confidence}
	}
	switch {
	case confidence > cfg.AutoApplyAbove:
		return domain.DecisionAutoApply, nil
	case confidence >= cfg.ReviewAtLeast:
		return domain.DecisionReview, nil
	default:
		return domain.DecisionSkip, nil
	}
}
