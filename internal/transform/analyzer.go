// Package transform extracts and classifies the expression that computes a
// derived column from a table's defining statement.
package transform

import (
	"regexp"
	"strings"
)

// Family classifies a column expression into an operation family.
type Family string

const (
	FamilyConversion   Family = "type-conversion"
	FamilyNullHandling Family = "null-handling"
	FamilyRounding     Family = "numeric-rounding"
	FamilyAdjustment   Family = "arithmetic-adjustment"
	FamilyString       Family = "string-formatting"
	FamilyTemporal     Family = "temporal-extraction"
	FamilyConditional  Family = "conditional-branching"
	FamilySafe         Family = "safe-execution"
	FamilyUnclassified Family = "unclassified"
)

// rule pairs a family with its matcher and natural-language fragment.
// Rules are evaluated in order, first match wins.
type rule struct {
	family   Family
	fragment string
	match    func(expr, upper string) bool
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

var rules = []rule{
	{FamilyConversion, "Converted data type", func(_, u string) bool {
		return containsAny(u, "CAST(", "SAFE_CAST(")
	}},
	{FamilyNullHandling, "Handles missing values", func(_, u string) bool {
		return containsAny(u, "COALESCE(", "IFNULL(", "NULLIF(")
	}},
	{FamilyRounding, "Numerical rounding applied", func(_, u string) bool {
		return containsAny(u, "ROUND(", "CEIL(", "FLOOR(", "TRUNC(")
	}},
	{FamilyAdjustment, "Value adjustment applied", func(e, _ string) bool {
		return strings.ContainsAny(e, "*/+-") && strings.ContainsAny(e, "0123456789")
	}},
	{FamilyString, "String formatting applied", func(_, u string) bool {
		return containsAny(u, "UPPER(", "LOWER(", "TRIM(", "CONCAT(", "SUBSTR(")
	}},
	{FamilyTemporal, "Date/Time component extracted", func(_, u string) bool {
		return strings.Contains(u, "EXTRACT(")
	}},
	{FamilyConditional, "Conditional logic applied", func(_, u string) bool {
		return containsAny(u, "CASE", "IF(")
	}},
	{FamilySafe, "Safe execution applied", func(_, u string) bool {
		return strings.Contains(u, "SAFE.")
	}},
}

// Classify returns the operation family of an expression.
func Classify(expr string) Family {
	upper := strings.ToUpper(expr)
	for _, r := range rules {
		if r.match(expr, upper) {
			return r.family
		}
	}
	return FamilyUnclassified
}

// Describe converts an expression into a natural-language hint fragment.
// Unclassified expressions quote the logic verbatim.
func Describe(expr string) string {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return ""
	}
	upper := strings.ToUpper(expr)
	for _, r := range rules {
		if r.match(expr, upper) {
			return r.fragment
		}
	}
	return "Calculated via logic: `" + expr + "`"
}

var (
	lineComment    = regexp.MustCompile(`--[^\n]*`)
	blockComment   = regexp.MustCompile(`(?s)/\*.*?\*/`)
	whitespace     = regexp.MustCompile(`\s+`)
	selectKeyword  = regexp.MustCompile(`(?i)\bselect\b`)
	distinctPrefix = regexp.MustCompile(`(?i)^distinct\s+`)
)

// normalize strips comments and collapses whitespace.
func normalize(stmt string) string {
	stmt = blockComment.ReplaceAllString(stmt, " ")
	stmt = lineComment.ReplaceAllString(stmt, " ")
	return strings.TrimSpace(whitespace.ReplaceAllString(stmt, " "))
}

// ExtractColumnExpr returns the textual expression bound to the target
// column via an "AS <column>" clause in the statement, or ("", false) when
// no unambiguous binding exists. Matching is word-bounded on the column
// name, so a short name never matches inside a longer one.
func ExtractColumnExpr(stmt, column string) (string, bool) {
	if strings.TrimSpace(stmt) == "" || column == "" {
		return "", false
	}
	s := normalize(stmt)

	quoted := regexp.QuoteMeta(column)
	// Accept an optionally back-quoted target; the bare form requires a
	// word boundary so `amount` cannot match inside `amount_discounted`.
	re := regexp.MustCompile(`(?i)\bAS\s+(?:` + "`" + quoted + "`" + `|` + quoted + `\b)`)
	loc := re.FindStringIndex(s)
	if loc == nil {
		return "", false
	}

	expr := captureExpression(s[:loc[0]])
	if expr == "" {
		return "", false
	}
	// CREATE ... AS SELECT prefixes and nested subqueries leave an earlier
	// SELECT keyword on the capture; keep only what follows the last
	// top-level one. SELECTs inside parentheses belong to the expression.
	if cut := lastTopLevelSelect(expr); cut >= 0 {
		expr = strings.TrimSpace(expr[cut:])
	}
	expr = strings.TrimSpace(distinctPrefix.ReplaceAllString(expr, ""))
	if expr == "" {
		return "", false
	}
	return expr, true
}

// captureExpression walks backwards from the AS keyword to the start of the
// select-list item: a top-level comma, an unbalanced opening parenthesis,
// or the start of the statement.
func captureExpression(prefix string) string {
	depth := 0
	start := 0
scan:
	for i := len(prefix) - 1; i >= 0; i-- {
		switch prefix[i] {
		case ')':
			depth++
		case '(':
			if depth == 0 {
				start = i + 1
				break scan
			}
			depth--
		case ',':
			if depth == 0 {
				start = i + 1
				break scan
			}
		}
	}
	return strings.TrimSpace(prefix[start:])
}

// lastTopLevelSelect returns the index just past the last SELECT keyword
// that sits at parenthesis depth zero, or -1 when there is none.
func lastTopLevelSelect(expr string) int {
	depth := 0
	cut := -1
	for _, loc := range selectKeyword.FindAllStringIndex(expr, -1) {
		for _, ch := range expr[:loc[0]] {
			switch ch {
			case '(':
				depth++
			case ')':
				depth--
			}
		}
		if depth == 0 {
			cut = loc[1]
		}
		depth = 0
	}
	return cut
}

var identQuotes = strings.NewReplacer("`", "", `"`, "")

// IsPassthrough reports whether the expression is a trivial reference to
// one of the given column names — the bare name, optionally qualified
// (t.amount) or back-quoted. Passthroughs carry no descriptive value and
// are excluded from accumulated hints.
func IsPassthrough(expr string, names ...string) bool {
	cleaned := strings.TrimSpace(identQuotes.Replace(expr))
	if cleaned == "" {
		return false
	}
	if i := strings.LastIndex(cleaned, "."); i >= 0 {
		cleaned = cleaned[i+1:]
	}
	for _, name := range names {
		if name != "" && strings.EqualFold(cleaned, name) {
			return true
		}
	}
	return false
}
