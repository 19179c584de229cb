package reasoning

import (
	"github.com/poiesic/rankmatch/core"
	"github.com/poiesic/rankmatch/metrics"
)

// DefaultConfidenceThreshold is the lowest confidence routed to Verified.
const DefaultConfidenceThreshold = 0.7

// Bucket is where a decision is routed.
type Bucket int

const (
	Drop Bucket = iota
	Verified
	Uncertain
)

// String returns the bucket's metrics label.
func (b Bucket) String() string {
	switch b {
	case Verified:
		return metrics.BucketVerified
	case Uncertain:
		return metrics.BucketUncertain
	default:
		return metrics.BucketDropped
	}
}

// Route sends non-matches to Drop, matches at or above threshold to Verified
// and all other matches to Uncertain.
func Route(decision core.Decision, threshold float64) Bucket {
	switch {
	case !decision.IsMatch:
		return Drop
	case decision.Confidence >= threshold:
		return Verified
	default:
		return Uncertain
	}
}
