// Package match scores columns against controlled-vocabulary terms using
// blended lexical, semantic, and entity/concept signals.
package match

import (
	"log/slog"
	"math"
	"sort"
	"strings"

	"github.com/akanksha86/governance-metadata-propagation/internal/config"
	"github.com/akanksha86/governance-metadata-propagation/internal/domain"
	"github.com/akanksha86/governance-metadata-propagation/internal/embedding"
)

// Engine ranks vocabulary terms for columns. Construct one per matching
// session with its session cache; the engine holds no other mutable state.
type Engine struct {
	cfg    config.Scoring
	cache  *SessionCache
	logger *slog.Logger
}

// NewEngine creates a matching engine with the given tunables and
// session-scoped embedding cache.
func NewEngine(cfg config.Scoring, cache *SessionCache, logger *slog.Logger) *Engine {
	if cache == nil {
		cache = NewSessionCache()
	}
	return &Engine{cfg: cfg, cache: cache, logger: logger}
}

// Cache exposes the session cache for warming.
func (e *Engine) Cache() *SessionCache { return e.cache }

// termIDBase strips any hierarchical prefix from a term id
// ("glossaries/retail/terms/order-id" → "order-id").
func termIDBase(id string) string {
	if i := strings.LastIndex(id, "/"); i >= 0 {
		return id[i+1:]
	}
	return id
}

// lexical computes Jaccard similarity over normalized token sets of the
// column name versus the term display name unioned with its id tokens.
func lexical(colName string, term domain.Term) float64 {
	s1 := tokenSet(colName)
	s2 := union(tokenSet(term.DisplayName), tokenSet(termIDBase(term.ID)))
	if len(s1) == 0 || len(s2) == 0 {
		return 0
	}
	inter := intersectionSize(s1, s2)
	unionSize := len(s1) + len(s2) - inter
	return float64(inter) / float64(unionSize)
}

// semantic computes cosine similarity when both embeddings are available,
// falling back to description token overlap normalized by the smaller set.
func (e *Engine) semantic(col domain.ColumnRef, term domain.Term, colEmb []float64) float64 {
	if termEmb, ok := e.cache.Get(term.ID); ok && len(colEmb) > 0 && len(termEmb) > 0 {
		return embedding.Cosine(colEmb, termEmb)
	}

	colDesc := strings.TrimSpace(col.Description)
	termDesc := strings.TrimSpace(term.Description)
	if colDesc == "" || termDesc == "" {
		return 0
	}
	s1 := tokenSet(colDesc)
	s2 := union(tokenSet(termDesc), tokenSet(term.DisplayName))
	if len(s1) == 0 || len(s2) == 0 {
		return 0
	}
	smaller := len(s1)
	if len(s2) < smaller {
		smaller = len(s2)
	}
	score := float64(intersectionSize(s1, s2)) / float64(smaller)
	return math.Min(score, 1.0)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Score computes the match signals and blended confidence for one
// column/term pair. The blend is lexical*LexicalWeight +
// semantic*SemanticWeight plus the ordered entity/concept adjustments,
// clamped to [0,1] and rounded to 2 decimals.
func (e *Engine) Score(col domain.ColumnRef, term domain.Term, colEmb []float64) (domain.MatchSignals, float64) {
	idBase := termIDBase(term.ID)

	lex := lexical(col.Column, term)
	sem := e.semantic(col, term, colEmb)
	score := lex*e.cfg.LexicalWeight + sem*e.cfg.SemanticWeight

	signals := domain.MatchSignals{
		Lexical:  round2(lex),
		Semantic: round2(sem),
	}

	// 1. Entity conflict penalty.
	if entityConflict(col.Column, term.DisplayName, idBase) {
		signals.EntityConflict = true
		score -= e.cfg.EntityConflictPenalty
	}

	// 2. Entity match boost.
	colEntity := primaryEntity(col.Column)
	termEntity := primaryEntity(term.DisplayName)
	if termEntity == "" {
		termEntity = primaryEntity(idBase)
	}
	if colEntity != "" && colEntity == termEntity {
		score += e.cfg.EntityMatchBoost
	}

	// 3. Concept alignment.
	colConcept := concept(col.Column)
	termConcept := concept(term.DisplayName)
	if termConcept == "" {
		termConcept = concept(idBase)
	}
	if colConcept != "" && termConcept != "" {
		if colConcept == termConcept {
			signals.ConceptBoost = e.cfg.ConceptMatchBoost
			score += e.cfg.ConceptMatchBoost
		} else {
			signals.ConceptBoost = -e.cfg.ConceptMismatchPenalty
			score -= e.cfg.ConceptMismatchPenalty
		}
	}

	// 4. Exact shared token boost.
	if intersectionSize(tokenSet(col.Column), tokenSet(term.DisplayName)) > 0 {
		score += e.cfg.SharedTokenBoost
	}

	// The additive boosts can push the raw blend past 1; the data-model
	// invariant pins confidence to [0,1].
	return signals, round2(math.Min(math.Max(score, 0), 1))
}

// Rank scores a column against every term and returns the filtered,
// descending-ranked suggestion list: below-floor candidates are dropped,
// competitive filtering prunes the weak tail once a clear winner exists,
// and at most MaxSuggestions survive.
func (e *Engine) Rank(col domain.ColumnRef, terms []domain.Term, colEmb []float64) []domain.MatchCandidate {
	var candidates []domain.MatchCandidate
	for _, term := range terms {
		signals, confidence := e.Score(col, term, colEmb)
		if confidence < e.cfg.SuggestionFloor {
			continue
		}
		candidates = append(candidates, domain.MatchCandidate{
			TermID:      term.ID,
			DisplayName: term.DisplayName,
			Column:      col,
			Signals:     signals,
			Confidence:  confidence,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Confidence > candidates[j].Confidence
	})

	if len(candidates) > 0 {
		top := candidates[0].Confidence
		if top > e.cfg.CompetitiveTrigger {
			cutoff := top * e.cfg.CompetitiveFraction
			kept := candidates[:0]
			for _, c := range candidates {
				if c.Confidence >= cutoff {
					kept = append(kept, c)
				}
			}
			candidates = kept
		}
	}

	if len(candidates) > e.cfg.MaxSuggestions {
		candidates = candidates[:e.cfg.MaxSuggestions]
	}
	if e.logger != nil && len(candidates) > 0 {
		e.logger.Debug("ranked term suggestions",
			"column", col.FQN(), "candidates", len(candidates), "top", candidates[0].DisplayName)
	}
	return candidates
}
