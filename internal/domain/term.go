package domain

// Term is a controlled-vocabulary entry owned by an external glossary.
// The engine treats terms as read-only input, cached per matching session.
type Term struct {
	ID          string
	DisplayName string
	Description string
	Embedding   []float64
}

// MatchSignals breaks a term match score into its component signals.
type MatchSignals struct {
	Lexical        float64
	Semantic       float64
	EntityConflict bool
	ConceptBoost   float64
}

// MatchCandidate is one ranked term suggestion for a column. Ephemeral;
// candidates are filtered before being returned and never persisted.
type MatchCandidate struct {
	TermID      string
	DisplayName string
	Column      ColumnRef
	Signals     MatchSignals
	Confidence  float64
}
