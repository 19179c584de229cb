// Package analysis orchestrates a candidate search for one rank.
//
// An Analyzer indexes new or modified documents in the rank folder, plans
// the query, retrieves candidates (vector search, or keyword fallback when no
// embedding is available), and asks the reasoner about each candidate in
// turn. Progress is reported as a stream of core.Event values on a channel
// that is closed after the final complete or error event.
//
// Run consumes the stream and returns an aggregated core.Report.
package analysis
