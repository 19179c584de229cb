package retrieval

import (
	"regexp"
	"strings"
)

// Stop words dropped from keyword fallback terms
var stopWords = map[string]bool{
	"a": true, "an": true, "and": true, "or": true, "the": true, "is": true,
	"are": true, "to": true, "of": true, "for": true, "with": true, "in": true,
	"on": true, "by": true, "from": true, "having": true, "has": true,
	"have": true, "valid": true,
}

var termPattern = regexp.MustCompile(`[a-zA-Z0-9/+.-]{2,}`)

// queryTerms lowercases the query, extracts its terms and removes stop words.
// When nothing survives, the trimmed lowercased query is the only term.
func queryTerms(query string) []string {
	lowered := strings.ToLower(query)
	matches := termPattern.FindAllString(lowered, -1)
	terms := make([]string, 0, len(matches))
	for _, term := range matches {
		if !stopWords[term] {
			terms = append(terms, term)
		}
	}
	if len(terms) == 0 {
		return []string{strings.TrimSpace(lowered)}
	}
	return terms
}

// countHits returns how many terms occur as substrings of the lowercased text.
func countHits(text string, terms []string) int {
	lowered := strings.ToLower(text)
	hits := 0
	for _, term := range terms {
		if term != "" && strings.Contains(lowered, term) {
			hits++
		}
	}
	return hits
}

// truncateRunes returns at most n runes of s.
func truncateRunes(s string, n int) string {
	if n <= 0 {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
