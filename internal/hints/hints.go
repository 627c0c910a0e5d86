// Package hints loads externally supplied column relationship hints from a
// YAML file. Hints complement the lineage graph: join-key equivalences and
// dataset insights that the graph API does not record.
package hints

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/akanksha86/governance-metadata-propagation/internal/domain"
)

type hintEntry struct {
	SourceTable  string  `yaml:"source_table"`
	SourceColumn string  `yaml:"source_column"`
	TargetTable  string  `yaml:"target_table"`
	TargetColumn string  `yaml:"target_column"`
	Confidence   float64 `yaml:"confidence"`
	Kind         string  `yaml:"kind"`
}

type hintFile struct {
	Hints []hintEntry `yaml:"hints"`
}

// Set is an in-memory hint collection indexed by source table. Immutable
// after Load; safe for concurrent reads.
type Set struct {
	bySource map[string][]domain.RelationshipHint
}

// Empty returns a set with no hints.
func Empty() *Set {
	return &Set{bySource: make(map[string][]domain.RelationshipHint)}
}

// Load reads a hint file. An empty path yields an empty set, so callers can
// pass the configured path through unconditionally.
func Load(path string) (*Set, error) {
	if path == "" {
		return Empty(), nil
	}
	data, err := os.ReadFile(path) //nolint:gosec // path is operator-controlled
	if err != nil {
		return nil, fmt.Errorf("read hints file %s: %w", path, err)
	}

	var file hintFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse hints file %s: %w", path, err)
	}

	set := Empty()
	for i, entry := range file.Hints {
		if entry.SourceTable == "" || entry.SourceColumn == "" || entry.TargetTable == "" || entry.TargetColumn == "" {
			return nil, domain.ErrValidation("hint %d in %s is missing a table or column", i, path)
		}
		if entry.Confidence < 0 || entry.Confidence > 1 {
			return nil, domain.ErrValidation("hint %d in %s has confidence %.2f outside [0,1]", i, path, entry.Confidence)
		}
		source := domain.ParseTableRef(entry.SourceTable)
		hint := domain.RelationshipHint{
			SourceTable:  source,
			TargetTable:  domain.ParseTableRef(entry.TargetTable),
			SourceColumn: entry.SourceColumn,
			TargetColumn: entry.TargetColumn,
			Confidence:   entry.Confidence,
			Kind:         entry.Kind,
		}
		key := strings.ToLower(source.FQN())
		set.bySource[key] = append(set.bySource[key], hint)
	}
	return set, nil
}

// HintsFor returns the hints originating from the given table.
func (s *Set) HintsFor(table domain.TableRef) []domain.RelationshipHint {
	return s.bySource[strings.ToLower(table.FQN())]
}

// Len reports the total number of loaded hints.
func (s *Set) Len() int {
	n := 0
	for _, hints := range s.bySource {
		n += len(hints)
	}
	return n
}
