package reasoning

import (
	"fmt"
	"strings"

	"github.com/poiesic/rankmatch/core"
	"github.com/poiesic/rankmatch/retrieval"
)

const compoundNote = "[Note: This is a compound query - ALL conditions must be satisfied]"

const contextSeparator = "\n---\n"

// Placeholders: query, compound note, resume context, feedback block.
const reasoningPromptTemplate = `
Analyze the resume context below to determine if it matches the user's requirements.

User Requirements: "%s"
%s

Resume Context:
%s
%s

Instructions:

1. **US VISA VALIDATION - VERY STRICT:**
   - If the "US Visa / Other" field shows "Other" → This means NO US VISA (mark FALSE)
   - If the field shows "US Visa", "C1/D", "B1/B2", etc. → Check expiry date
   - If expiry date is before 2025 → EXPIRED (mark FALSE)
   - If expiry date shows year "0001" or "-0001" → INVALID (mark FALSE)
   - If the field is blank or "N/A" → NO VISA (mark FALSE)
   - ONLY mark TRUE if there's a specific visa type (not "Other") with valid future expiry

2. COMPOUND REQUIREMENTS:
   - "A and B" requires BOTH A AND B
   - "A or B" requires EITHER A OR B (or both)
   - If ANY required condition (in AND queries) is missing → mark FALSE

3. TERMINOLOGY FLEXIBILITY:
   - "US visa" matches: "C1/D visa", "B1/B2 visa", "American visa", "US work authorization"
   - "Oil tanker" matches: "crude oil tanker", "product tanker", "VLCC", "oil/chem tanker"
   - "Bulk carrier" matches: "dry cargo vessel", "handy size", "capesize", "panamax"

4. CONFIDENCE SCORING:
   - 0.9-1.0: Perfect match, all requirements clearly met with strong evidence
   - 0.7-0.89: Good match, requirements met but some minor ambiguity
   - 0.5-0.69: Uncertain, some requirements unclear or borderline (FLAG FOR REVIEW)
   - 0.0-0.49: Poor match, requirements not met or very unclear

   **Flag as "uncertain" if confidence < 0.7 - user will review these**

5. REASON CLARITY:
   - Be specific about visa status (type, expiry date)
   - Quantify experience (years, vessel types)
   - State what's missing if no-match
   - Use natural language recruiters understand

Respond ONLY with valid JSON (no markdown):
{"is_match": boolean, "reason": "Clear specific explanation", "confidence": 0.0-1.0}

Examples of GOOD responses:

{"is_match": true, "reason": "Candidate has valid US C1/D visa expiring 2028 and 12 years as Chief Engineer on oil tankers including VLCCs", "confidence": 0.95}

{"is_match": false, "reason": "US visa field shows 'Other' (not a valid US visa type), though candidate has extensive oil tanker experience", "confidence": 0.3}

{"is_match": true, "reason": "Valid US B1/B2 visa until 2027, but only 3 years oil tanker experience (requirement was 5+)", "confidence": 0.65}

{"is_match": false, "reason": "US visa expired in 2023, candidate needs valid current visa", "confidence": 0.2}
`

// BuildPrompt renders the reasoning prompt for one candidate.
func BuildPrompt(query string, chunks []core.Chunk, feedback []*core.FeedbackRecord) string {
	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}

	note := ""
	if retrieval.IsCompoundAnd(query) {
		note = compoundNote
	}

	return fmt.Sprintf(reasoningPromptTemplate,
		query,
		note,
		strings.Join(texts, contextSeparator),
		feedbackBlock(feedback),
	)
}

// feedbackBlock lists past corrections, or returns "" when there are none.
func feedbackBlock(feedback []*core.FeedbackRecord) string {
	if len(feedback) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("\n\nPast User Corrections (learn from these):\n")
	for _, fb := range feedback {
		if fb == nil {
			continue
		}
		fmt.Fprintf(&b, "- File: %s\n", fb.FileName)
		fmt.Fprintf(&b, "  LLM said: %s (%s)\n", fb.LLMDecision, fb.LLMReason)
		fmt.Fprintf(&b, "  User corrected: %s", fb.UserDecision)
		if fb.UserNotes != "" {
			fmt.Fprintf(&b, " - Note: %s", fb.UserNotes)
		}
		b.WriteString("\n")
	}
	return b.String()
}
