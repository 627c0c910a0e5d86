package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTableRef(t *testing.T) {
	tests := []struct {
		name string
		fqn  string
		want TableRef
	}{
		{"namespace_and_table", "raw.sales", TableRef{Namespace: "raw", Table: "sales"}},
		{"nested_namespace", "lake.raw.sales", TableRef{Namespace: "lake.raw", Table: "sales"}},
		{"bare_table", "sales", TableRef{Table: "sales"}},
		{"warehouse_prefix_stripped", "bigquery:proj.dataset.orders", TableRef{Namespace: "proj.dataset", Table: "orders"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseTableRef(tt.fqn))
		})
	}
}

func TestColumnRef_Described(t *testing.T) {
	col := ColumnRef{Table: TableRef{Namespace: "raw", Table: "sales"}, Column: "amount"}
	assert.False(t, col.Described())

	col.Description = "   "
	assert.False(t, col.Described())

	col.Description = "Gross amount"
	assert.True(t, col.Described())
	assert.Equal(t, "raw.sales.amount", col.FQN())
}

func TestLinkID(t *testing.T) {
	table := TableRef{Namespace: "gold", Table: "Order Report"}
	assert.Equal(t, "link-gold-order-report-total-amount", LinkID(table, "Total_Amount"))

	// Same-named tables in different namespaces must not collide.
	other := TableRef{Namespace: "silver", Table: "Order Report"}
	assert.NotEqual(t, LinkID(table, "Total_Amount"), LinkID(other, "Total_Amount"))

	// Deterministic across calls.
	assert.Equal(t, LinkID(table, "Total_Amount"), LinkID(table, "Total_Amount"))
}

func TestNewID_Unique(t *testing.T) {
	a, b := NewID(), NewID()
	require.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
}

func TestErrorUnwrapping(t *testing.T) {
	cause := errors.New("connection refused")
	err := ErrUnavailable(cause, "embedding provider at %s", "http://localhost:9999")

	var unavailable *UnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.ErrorIs(t, err, cause)

	t.Run("typed_matching", func(t *testing.T) {
		var notFound *NotFoundError
		assert.True(t, errors.As(ErrNotFound("table %s", "raw.sales"), &notFound))

		var conflict *ConflictError
		assert.True(t, errors.As(ErrConflict("link exists"), &conflict))

		var validation *ValidationError
		assert.True(t, errors.As(ErrValidation("bad input"), &validation))
	})
}
