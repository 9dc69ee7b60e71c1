package search

import "strings"

// Criteria narrows a search. Zero fields impose no constraint, so the zero
// Criteria matches every record.
type Criteria struct {
	Text       string
	CategoryID string
	MinLevel   int
}

// IsEmpty reports whether no constraint is set. Whitespace-only text counts
// as no text.
func (c Criteria) IsEmpty() bool {
	return strings.TrimSpace(c.Text) == "" && strings.TrimSpace(c.CategoryID) == "" && c.MinLevel <= 0
}

type query struct {
	text     string
	category string
	minLevel int
}

func (c Criteria) compile() query {
	return query{
		text:     lowerText(c.Text),
		category: strings.TrimSpace(c.CategoryID),
		minLevel: c.MinLevel,
	}
}

// lowerText is the needle for substring matching: the input lower-cased and
// otherwise untouched.
func lowerText(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}
	return strings.ToLower(text)
}

func containsFold(haystack, lowerNeedle string) bool {
	if lowerNeedle == "" {
		return true
	}
	return strings.Contains(strings.ToLower(haystack), lowerNeedle)
}
