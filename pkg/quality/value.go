package quality

// ReferenceScore is the quality score at which a listing's asking price is
// considered fair relative to its district.
const ReferenceScore = 70.0

// Deal score blend: quality dominates, price attractiveness adjusts.
const (
	dealWeightQuality = 0.6
	dealWeightPrice   = 0.4
)

// ValueRating classifies the price/quality ratio of a listing.
type ValueRating string

const (
	ValueVeryCheap     ValueRating = "very_cheap"
	ValueCheap         ValueRating = "cheap"
	ValueFair          ValueRating = "fair"
	ValueExpensive     ValueRating = "expensive"
	ValueVeryExpensive ValueRating = "very_expensive"
	ValueUnknown       ValueRating = "unknown"
)

// Valuation describes how a listing's asking price relates to its quality.
type Valuation struct {
	Factor              float64     `json:"quality_factor" yaml:"qualityFactor"`
	ExpectedPricePerSqm float64     `json:"expected_price_per_sqm" yaml:"expectedPricePerSqm"`
	PriceQualityRatio   float64     `json:"price_quality_ratio" yaml:"priceQualityRatio"`
	Rating              ValueRating `json:"value_rating" yaml:"valueRating"`
	DealScore           float64     `json:"deal_score" yaml:"dealScore"`
}

// Evaluate relates a listing's price per square meter to what its quality
// score would justify in its district. The expected price is the district
// average scaled by the quality factor (score relative to ReferenceScore).
// Returns false when there is not enough price data to evaluate.
func Evaluate(pricePerSqm, districtAvgPricePerSqm, score float64) (Valuation, bool) {
	if pricePerSqm <= 0 || districtAvgPricePerSqm <= 0 || score <= 0 {
		return Valuation{Rating: ValueUnknown}, false
	}

	factor := score / ReferenceScore
	expected := districtAvgPricePerSqm * factor
	ratio := pricePerSqm / expected

	return Valuation{
		Factor:              factor,
		ExpectedPricePerSqm: expected,
		PriceQualityRatio:   ratio,
		Rating:              RateValue(ratio),
		DealScore:           DealScore(score, ratio),
	}, true
}

// RateValue classifies a price/quality ratio: below 1.0 the listing asks less
// than its quality justifies.
func RateValue(ratio float64) ValueRating {
	switch {
	case ratio <= 0:
		return ValueUnknown
	case ratio < 0.85:
		return ValueVeryCheap
	case ratio < 0.95:
		return ValueCheap
	case ratio <= 1.05:
		return ValueFair
	case ratio <= 1.15:
		return ValueExpensive
	default:
		return ValueVeryExpensive
	}
}

// DealScore combines quality with price attractiveness into a single
// ranking value. Higher is better.
func DealScore(score, ratio float64) float64 {
	return score*dealWeightQuality + (100-ratio*50)*dealWeightPrice
}
