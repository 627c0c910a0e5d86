package match

import (
	"regexp"
	"strings"
)

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// tokens lower-cases the text, strips non-alphanumerics, and splits into
// normalized tokens.
func tokens(text string) []string {
	text = nonAlnum.ReplaceAllString(strings.ToLower(text), " ")
	return strings.Fields(text)
}

func tokenSet(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range tokens(text) {
		set[tok] = struct{}{}
	}
	return set
}

func union(a, b map[string]struct{}) map[string]struct{} {
	out := make(map[string]struct{}, len(a)+len(b))
	for k := range a {
		out[k] = struct{}{}
	}
	for k := range b {
		out[k] = struct{}{}
	}
	return out
}

func intersectionSize(a, b map[string]struct{}) int {
	if len(b) < len(a) {
		a, b = b, a
	}
	n := 0
	for k := range a {
		if _, ok := b[k]; ok {
			n++
		}
	}
	return n
}

// keywordRule maps a tag to the tokens that select it. Rules are evaluated
// in order, first match wins — kept as data so the tables are independently
// testable and extensible.
type keywordRule struct {
	tag      string
	keywords []string
}

// entityAliases resolve abbreviations before the full entity names are
// consulted.
var entityAliases = []keywordRule{
	{"customer", []string{"cust"}},
	{"product", []string{"prod"}},
	{"transaction", []string{"txn", "trans"}},
	{"account", []string{"acc"}},
}

// primaryEntities are the conflict-prone business entities a name can
// resolve to. At most one is assigned per name.
var primaryEntities = []keywordRule{
	{"customer", []string{"customer"}},
	{"order", []string{"order"}},
	{"item", []string{"item"}},
	{"product", []string{"product"}},
	{"transaction", []string{"transaction"}},
	{"user", []string{"user"}},
	{"account", []string{"account"}},
	{"membership", []string{"membership"}},
	{"loyalty", []string{"loyalty"}},
}

// concepts classify the technical role of a name: identifier, monetary
// amount, point in time, or categorical bucket.
var concepts = []keywordRule{
	{"id", []string{"id", "identifier", "pk", "fk", "key", "code", "sku"}},
	{"amount", []string{"amount", "price", "total", "sum", "cost", "value", "subtotal", "tax", "discount"}},
	{"timestamp", []string{"timestamp", "date", "time", "ts", "added", "at", "created", "updated"}},
	{"category", []string{"category", "group", "type", "class", "genre", "level"}},
}

// hardEntities are entities whose pairwise mismatch counts as a conflict
// (unless allow-listed as compatible).
var hardEntities = map[string]struct{}{
	"customer": {}, "user": {}, "account": {},
	"product": {}, "item": {},
	"order": {}, "transaction": {},
}

// compatiblePairs are entity pairs that legitimately overlap.
var compatiblePairs = [][2]string{
	{"order", "transaction"},
	{"item", "product"},
	{"amount", "price"},
	{"date", "timestamp"},
}

func matchRule(rules []keywordRule, toks map[string]struct{}) string {
	for _, r := range rules {
		for _, kw := range r.keywords {
			if _, ok := toks[kw]; ok {
				return r.tag
			}
		}
	}
	return ""
}

// primaryEntity extracts the primary business entity from a name, or ""
// when none resolves. Aliases are checked before full names.
func primaryEntity(text string) string {
	toks := tokenSet(text)
	if tag := matchRule(entityAliases, toks); tag != "" {
		return tag
	}
	return matchRule(primaryEntities, toks)
}

// concept identifies the technical or business concept of a name, or "".
func concept(text string) string {
	return matchRule(concepts, tokenSet(text))
}

// Concept exposes the concept classifier to the lineage resolver, which
// discounts field matches whose concepts disagree.
func Concept(text string) string { return concept(text) }

func compatible(a, b string) bool {
	for _, pair := range compatiblePairs {
		if (a == pair[0] && b == pair[1]) || (a == pair[1] && b == pair[0]) {
			return true
		}
	}
	return false
}

// entityConflict reports whether a column name and a term belong to
// fundamentally different business entities.
func entityConflict(colName, termDisplay, termID string) bool {
	colEntity := primaryEntity(colName)
	termEntity := primaryEntity(termDisplay)
	if termEntity == "" {
		termEntity = primaryEntity(termID)
	}
	if colEntity == "" || termEntity == "" || colEntity == termEntity {
		return false
	}
	if compatible(colEntity, termEntity) {
		return false
	}
	_, colHard := hardEntities[colEntity]
	_, termHard := hardEntities[termEntity]
	return colHard && termHard
}
