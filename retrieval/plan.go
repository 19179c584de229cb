package retrieval

import (
	"regexp"
	"strings"
)

// Operator combines sub-query results.
type Operator string

const (
	OperatorNone Operator = ""
	OperatorAnd  Operator = "AND"
	OperatorOr   Operator = "OR"
)

// Plan is the decomposition of a query into sub-queries.
type Plan struct {
	Compound   bool
	Operator   Operator
	SubQueries []string
}

var (
	andSeparator = regexp.MustCompile(`(?i) and `)
	orSeparator  = regexp.MustCompile(`(?i) or `)
)

// PlanQuery splits a query on a literal " and " (preferred) or " or ",
// case-insensitively. Detection is lexical: a connective inside a phrase such
// as "research and development" still splits the query.
func PlanQuery(query string) Plan {
	simple := Plan{SubQueries: []string{query}}

	var (
		op  Operator
		sep *regexp.Regexp
	)
	switch {
	case andSeparator.MatchString(query):
		op, sep = OperatorAnd, andSeparator
	case orSeparator.MatchString(query):
		op, sep = OperatorOr, orSeparator
	default:
		return simple
	}

	parts := sep.Split(query, -1)
	subQueries := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			subQueries = append(subQueries, part)
		}
	}
	if len(subQueries) < 2 {
		return simple
	}
	return Plan{Compound: true, Operator: op, SubQueries: subQueries}
}

// IsCompoundAnd reports whether the query carries a literal " and ".
func IsCompoundAnd(query string) bool {
	return strings.Contains(strings.ToLower(query), " and ")
}
