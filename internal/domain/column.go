package domain

import "strings"

// TableRef identifies a table within a namespace (dataset/schema).
// Immutable value type; namespace scoping is always explicit so that
// same-named tables in different namespaces never collide.
type TableRef struct {
	Namespace string
	Table     string
}

// FQN returns the fully qualified "namespace.table" name.
func (t TableRef) FQN() string {
	if t.Namespace == "" {
		return t.Table
	}
	return t.Namespace + "." + t.Table
}

// ParseTableRef splits a "namespace.table" name. A bare name is treated as
// a table in the empty namespace.
func ParseTableRef(fqn string) TableRef {
	// Warehouse-prefixed FQNs ("bigquery:proj.ds.table") keep only the
	// entity part.
	if i := strings.LastIndex(fqn, ":"); i >= 0 {
		fqn = fqn[i+1:]
	}
	i := strings.LastIndex(fqn, ".")
	if i < 0 {
		return TableRef{Table: fqn}
	}
	return TableRef{Namespace: fqn[:i], Table: fqn[i+1:]}
}

// ColumnRef identifies a single column. Identity is the (namespace, table,
// column) triple. Immutable value type.
type ColumnRef struct {
	Table       TableRef
	Column      string
	Description string
	Type        string
}

// FQN returns the fully qualified "namespace.table.column" name.
func (c ColumnRef) FQN() string {
	return c.Table.FQN() + "." + c.Column
}

// Described reports whether the column carries a non-empty description.
func (c ColumnRef) Described() bool {
	return strings.TrimSpace(c.Description) != ""
}

// Column is one entry of a table schema as returned by the schema store.
type Column struct {
	Name        string
	Description string
	Type        string
	Tags        []string
}

// Ref binds a schema column to its table.
func (c Column) Ref(table TableRef) ColumnRef {
	return ColumnRef{Table: table, Column: c.Name, Description: c.Description, Type: c.Type}
}
