package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/akanksha86/governance-metadata-propagation/internal/db/repository"
	"github.com/akanksha86/governance-metadata-propagation/internal/domain"
)

// Snapshot is a declarative metastore seed: tables with columns, lineage
// edges, defining statements, and glossary terms. Loading is idempotent so
// re-running against a populated metastore is safe.
type Snapshot struct {
	Tables []snapshotTable `yaml:"tables"`
	Edges  []snapshotEdge  `yaml:"edges"`
	Terms  []snapshotTerm  `yaml:"terms"`
}

type snapshotTable struct {
	Name      string           `yaml:"name"`
	Statement string           `yaml:"statement"`
	Columns   []snapshotColumn `yaml:"columns"`
}

type snapshotColumn struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Type        string   `yaml:"type"`
	Tags        []string `yaml:"tags"`
}

type snapshotEdge struct {
	Source string `yaml:"source"`
	Target string `yaml:"target"`
}

type snapshotTerm struct {
	Vocabulary  string `yaml:"vocabulary"`
	ID          string `yaml:"id"`
	DisplayName string `yaml:"display_name"`
	Description string `yaml:"description"`
}

// ReadSnapshot parses a snapshot file.
func ReadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot %s: %w", path, err)
	}
	var snap Snapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("parse snapshot %s: %w", path, err)
	}
	return &snap, nil
}

// LoadSnapshot writes a snapshot into the metastore.
func LoadSnapshot(ctx context.Context, db DBDeps, snap *Snapshot) error {
	for _, tbl := range snap.Tables {
		ref := domain.ParseTableRef(tbl.Name)
		if ref.Table == "" {
			return domain.ErrValidation("snapshot table entry has no name")
		}
		if err := db.Schema.RegisterTable(ctx, ref); err != nil {
			return fmt.Errorf("register table %s: %w", ref.FQN(), err)
		}
		for i, col := range tbl.Columns {
			c := domain.Column{Name: col.Name, Description: col.Description, Type: col.Type, Tags: col.Tags}
			if err := db.Schema.UpsertColumn(ctx, ref, c, i); err != nil {
				return fmt.Errorf("upsert column %s.%s: %w", ref.FQN(), col.Name, err)
			}
		}
		if tbl.Statement != "" {
			if err := db.Statements.RecordStatement(ctx, ref, tbl.Statement); err != nil {
				return fmt.Errorf("record statement for %s: %w", ref.FQN(), err)
			}
		}
	}

	for _, edge := range snap.Edges {
		source, err := parseColumnFQN(edge.Source)
		if err != nil {
			return err
		}
		target, err := parseColumnFQN(edge.Target)
		if err != nil {
			return err
		}
		id := domain.LinkID(target.Table, target.Column) + "-from-" + strings.ReplaceAll(source.FQN(), ".", "-")
		err = db.Lineage.InsertEdge(ctx, id, source, target)
		var conflict *domain.ConflictError
		if err != nil && !errors.As(err, &conflict) {
			return fmt.Errorf("insert edge %s -> %s: %w", source.FQN(), target.FQN(), err)
		}
	}

	for _, term := range snap.Terms {
		vocabulary := term.Vocabulary
		if vocabulary == "" {
			vocabulary = "business-glossary"
		}
		t := domain.Term{ID: term.ID, DisplayName: term.DisplayName, Description: term.Description}
		if err := db.Glossary.UpsertTerm(ctx, vocabulary, t); err != nil {
			return fmt.Errorf("upsert term %s: %w", term.ID, err)
		}
	}
	return nil
}

// DBDeps groups the write-side repositories the snapshot loader needs.
type DBDeps struct {
	Schema     *repository.SchemaRepo
	Lineage    *repository.LineageRepo
	Statements *repository.StatementRepo
	Glossary   *repository.GlossaryRepo
}

// parseColumnFQN splits "namespace.table.column" into a column reference.
func parseColumnFQN(fqn string) (domain.ColumnRef, error) {
	i := strings.LastIndex(fqn, ".")
	if i <= 0 {
		return domain.ColumnRef{}, domain.ErrValidation("column reference %q must be namespace.table.column", fqn)
	}
	return domain.ColumnRef{
		Table:  domain.ParseTableRef(fqn[:i]),
		Column: fqn[i+1:],
	}, nil
}
