// Package retrieval selects candidate resumes for a query.
//
// A query is first planned: a literal " and " or " or " splits it into
// sub-queries combined with AND or OR logic. Each sub-query is embedded and
// searched in the rank's vector partition; when no embedding is available the
// keyword Fallback scans the rank folder instead. Per-sub-query results are
// combined with Merge.
//
// Basic usage:
//
//	r, err := retrieval.NewRetriever(vectors, resolver, fallback)
//	plan := retrieval.PlanQuery(query)
//	results, err := r.RetrieveAll(ctx, rank, plan.SubQueries)
//	candidates := retrieval.Merge(plan.Operator, results)
package retrieval
