package quality

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeightsSumToOne(t *testing.T) {
	assert.InDelta(t, 1.0, weightPermit+weightUtility+weightBuildable+weightDemolition, 1e-9)
}

func TestScoreBestCase(t *testing.T) {
	c := Criteria{
		Permit:             PermitApproved,
		Utility:            UtilityFull,
		ShortTermBuildable: true,
		DemolitionRequired: false,
	}

	score, bucket, err := Score(c)
	require.NoError(t, err)
	assert.InDelta(t, 100.0, score, 1e-9)
	assert.Equal(t, BucketVeryGood, bucket)
}

func TestScoreWorstCase(t *testing.T) {
	c := Criteria{
		Permit:             PermitNone,
		Utility:            UtilityNone,
		ShortTermBuildable: false,
		DemolitionRequired: true,
	}

	// 0.40*30 + 0.25*0 + 0.20*0 + 0.15*0 = 12
	score, bucket, err := Score(c)
	require.NoError(t, err)
	assert.InDelta(t, 12.0, score, 1e-9)
	assert.Equal(t, BucketLow, bucket)
}

func TestScoreBounds(t *testing.T) {
	for _, p := range []PermitStatus{PermitApproved, PermitPreliminary, PermitNone} {
		for _, u := range []UtilityConnection{UtilityFull, UtilityPartial, UtilityNone} {
			for _, b := range []bool{true, false} {
				for _, d := range []bool{true, false} {
					score, bucket, err := Score(Criteria{
						Permit:             p,
						Utility:            u,
						ShortTermBuildable: b,
						DemolitionRequired: d,
					})
					require.NoError(t, err)
					assert.GreaterOrEqual(t, score, 0.0)
					assert.LessOrEqual(t, score, 100.0)
					assert.Contains(t, Buckets, bucket)
				}
			}
		}
	}
}

func TestScoreIsPure(t *testing.T) {
	c := Criteria{
		Permit:             PermitPreliminary,
		Utility:            UtilityPartial,
		ShortTermBuildable: true,
		DemolitionRequired: false,
	}

	s1, b1, err := Score(c)
	require.NoError(t, err)

	for i := 0; i < 100; i++ {
		s2, b2, err := Score(c)
		require.NoError(t, err)
		assert.Equal(t, s1, s2)
		assert.Equal(t, b1, b2)
	}
}

func TestScoreInvalidPermit(t *testing.T) {
	_, _, err := Score(Criteria{
		Permit:  PermitStatus("pending"),
		Utility: UtilityFull,
	})
	require.Error(t, err)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "permitStatus", verr.Field)
	assert.Equal(t, "pending", verr.Value)
	assert.Contains(t, err.Error(), "permitStatus")
}

func TestScoreInvalidUtility(t *testing.T) {
	_, _, err := Score(Criteria{
		Permit:  PermitApproved,
		Utility: UtilityConnection("half"),
	})
	require.Error(t, err)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "utilityConnection", verr.Field)
}

func TestBucketBoundaries(t *testing.T) {
	tests := []struct {
		score float64
		want  Bucket
	}{
		{0, BucketLow},
		{39.999, BucketLow},
		{40, BucketMedium},
		{59.999, BucketMedium},
		{60, BucketGood},
		{79.999, BucketGood},
		{80, BucketVeryGood},
		{100, BucketVeryGood},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, BucketFor(tt.score), "score %v", tt.score)
	}
}

// Combinations that land exactly on bucket boundaries must classify into the
// upper bucket.
func TestScoreBoundaryCombinations(t *testing.T) {
	// 0.40*100 + 0.25*0 + 0.20*100 + 0.15*0 = 60 -> good, not medium
	score, bucket, err := Score(Criteria{
		Permit:             PermitApproved,
		Utility:            UtilityNone,
		ShortTermBuildable: true,
		DemolitionRequired: true,
	})
	require.NoError(t, err)
	assert.InDelta(t, 60.0, score, 1e-9)
	assert.Equal(t, BucketGood, bucket)

	// 0.40*100 + 0.25*0 + 0.20*0 + 0.15*0 = 40 -> medium, not low
	score, bucket, err = Score(Criteria{
		Permit:             PermitApproved,
		Utility:            UtilityNone,
		ShortTermBuildable: false,
		DemolitionRequired: true,
	})
	require.NoError(t, err)
	assert.InDelta(t, 40.0, score, 1e-9)
	assert.Equal(t, BucketMedium, bucket)

	// 0.40*100 + 0.25*100 + 0.20*0 + 0.15*100 = 80 -> very_good
	score, bucket, err = Score(Criteria{
		Permit:             PermitApproved,
		Utility:            UtilityFull,
		ShortTermBuildable: false,
		DemolitionRequired: false,
	})
	require.NoError(t, err)
	assert.InDelta(t, 80.0, score, 1e-9)
	assert.Equal(t, BucketVeryGood, bucket)
}
