package quality

import "fmt"

// PermitStatus describes the building permission state of a plot.
type PermitStatus string

const (
	PermitApproved    PermitStatus = "approved"
	PermitPreliminary PermitStatus = "preliminary"
	PermitNone        PermitStatus = "none"
)

// UtilityConnection describes how far a plot is developed
// (water, sewage, power, road access).
type UtilityConnection string

const (
	UtilityFull    UtilityConnection = "full"
	UtilityPartial UtilityConnection = "partial"
	UtilityNone    UtilityConnection = "none"
)

// Bucket is the qualitative classification of a quality score.
type Bucket string

const (
	BucketVeryGood Bucket = "very_good"
	BucketGood     Bucket = "good"
	BucketMedium   Bucket = "medium"
	BucketLow      Bucket = "low"
)

// Buckets lists all buckets from best to worst.
var Buckets = []Bucket{BucketVeryGood, BucketGood, BucketMedium, BucketLow}

// Criteria weights, must sum to 1.0.
const (
	weightPermit     = 0.40
	weightUtility    = 0.25
	weightBuildable  = 0.20
	weightDemolition = 0.15
)

var (
	permitPoints = map[PermitStatus]float64{
		PermitApproved:    100,
		PermitPreliminary: 60,
		PermitNone:        30,
	}

	utilityPoints = map[UtilityConnection]float64{
		UtilityFull:    100,
		UtilityPartial: 50,
		UtilityNone:    0,
	}
)

// Criteria holds the four categorical inputs the quality score is derived from.
type Criteria struct {
	Permit             PermitStatus      `json:"permit_status" yaml:"permitStatus"`
	Utility            UtilityConnection `json:"utility_connection" yaml:"utilityConnection"`
	ShortTermBuildable bool              `json:"short_term_buildable" yaml:"shortTermBuildable"`
	DemolitionRequired bool              `json:"demolition_required" yaml:"demolitionRequired"`
}

// ValidationError indicates a categorical field outside its enumerated domain.
type ValidationError struct {
	Field string
	Value string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid value %q for field %s", e.Value, e.Field)
}

// Score maps criteria to a 0-100 quality score and its bucket. The score is the
// weighted sum of the four categorical inputs and is kept fractional; rounding
// is left to the presentation layer. Score is pure, any number of callers may
// invoke it concurrently.
func Score(c Criteria) (float64, Bucket, error) {
	pp, ok := permitPoints[c.Permit]
	if !ok {
		return 0, "", &ValidationError{Field: "permitStatus", Value: string(c.Permit)}
	}

	up, ok := utilityPoints[c.Utility]
	if !ok {
		return 0, "", &ValidationError{Field: "utilityConnection", Value: string(c.Utility)}
	}

	var bp float64
	if c.ShortTermBuildable {
		bp = 100
	}

	var dp float64
	if !c.DemolitionRequired {
		dp = 100
	}

	score := pp*weightPermit + up*weightUtility + bp*weightBuildable + dp*weightDemolition
	return score, BucketFor(score), nil
}

// BucketFor classifies a score using half-open intervals,
// except the top bucket which is closed at 100.
func BucketFor(score float64) Bucket {
	switch {
	case score >= 80:
		return BucketVeryGood
	case score >= 60:
		return BucketGood
	case score >= 40:
		return BucketMedium
	default:
		return BucketLow
	}
}
