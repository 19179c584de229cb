package retrieval

import "github.com/poiesic/rankmatch/core"

// Merge combines per-sub-query candidate sets. AND keeps resume IDs present
// in every set, any other operator keeps the union. IDs are ordered by first
// appearance across the sets in order, and each resume's chunks are
// concatenated set by set with duplicate chunk IDs dropped.
func Merge(op Operator, results []*core.CandidateSet) *core.CandidateSet {
	merged := core.NewCandidateSet()
	if len(results) == 0 {
		return merged
	}

	for _, set := range results {
		for _, id := range set.IDs() {
			if merged.Has(id) || !keep(op, id, results) {
				continue
			}
			seen := make(map[string]bool)
			for _, other := range results {
				for _, chunk := range other.Chunks(id) {
					if seen[chunk.ID] {
						continue
					}
					seen[chunk.ID] = true
					merged.Add(chunk)
				}
			}
		}
	}
	return merged
}

func keep(op Operator, id string, results []*core.CandidateSet) bool {
	if op != OperatorAnd {
		return true
	}
	for _, set := range results {
		if !set.Has(id) {
			return false
		}
	}
	return true
}
