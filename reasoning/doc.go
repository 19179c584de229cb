// Package reasoning asks a language model whether a candidate's resume
// satisfies a query and routes the verdict by confidence.
//
// The Reasoner builds a prompt from the candidate's retrieved chunks and any
// past user corrections, sends it through an ai.Completer and parses the JSON
// verdict defensively. Every failure collapses into a non-match decision, so a
// single bad reply never aborts an analysis.
//
// Route maps a Decision to Verified, Uncertain or Drop using the confidence
// threshold.
package reasoning
