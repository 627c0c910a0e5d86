package domain

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// NewID generates a UUIDv7 string for application-owned entities.
func NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// LinkID builds the deterministic identifier for an applied metadata link.
// Repeated runs produce the same ID for the same target, so the link store
// can reject duplicates instead of accumulating them. IDs are lower-case
// with every non-alphanumeric run replaced by a single hyphen.
func LinkID(table TableRef, column string) string {
	clean := func(s string) string {
		return strings.Trim(nonAlnum.ReplaceAllString(strings.ToLower(s), "-"), "-")
	}
	return "link-" + clean(table.FQN()) + "-" + clean(column)
}
