package data

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grundctl/pkg/quality"
)

func TestGetDistrictStats(t *testing.T) {
	db := testDB(t)
	require.NoError(t, SaveListings(db, []*Listing{
		testListing("plot-1", "Duvenstedt", 400000, 800, bestCriteria),
		testListing("plot-2", "Duvenstedt", 600000, 1200, worstCriteria),
		testListing("plot-3", "Blankenese", 1600000, 2100, bestCriteria),
	}))

	stats, err := GetDistrictStats(db, 1)
	require.NoError(t, err)
	require.Len(t, stats, 2)

	// ordered by avg price, Blankenese first
	assert.Equal(t, "Blankenese", stats[0].District)
	assert.Equal(t, 1, stats[0].Listings)
	assert.Equal(t, "Duvenstedt", stats[1].District)
	assert.Equal(t, 2, stats[1].Listings)
	require.NotNil(t, stats[1].AvgPrice)
	assert.InDelta(t, 500000, *stats[1].AvgPrice, 1e-6)

	// minimum listing threshold filters small districts
	stats, err = GetDistrictStats(db, 2)
	require.NoError(t, err)
	require.Len(t, stats, 1)
	assert.Equal(t, "Duvenstedt", stats[0].District)
}

func TestGetBucketStats(t *testing.T) {
	db := testDB(t)
	require.NoError(t, SaveListings(db, []*Listing{
		testListing("plot-1", "Duvenstedt", 400000, 800, bestCriteria),
		testListing("plot-2", "Duvenstedt", 600000, 1200, worstCriteria),
	}))

	stats, err := GetBucketStats(db)
	require.NoError(t, err)
	require.Len(t, stats, 2)

	// best bucket first
	assert.Equal(t, string(quality.BucketVeryGood), stats[0].Bucket)
	assert.Equal(t, string(quality.BucketLow), stats[1].Bucket)
	assert.Equal(t, 1, stats[0].Listings)
}

func TestGetPriceSegments(t *testing.T) {
	db := testDB(t)
	require.NoError(t, SaveListings(db, []*Listing{
		testListing("plot-1", "Duvenstedt", 400000, 800, bestCriteria),
		testListing("plot-2", "Duvenstedt", 900000, 1200, bestCriteria),
		testListing("plot-3", "Blankenese", 1400000, 2100, bestCriteria),
		testListing("plot-4", "Blankenese", 2500000, 450, bestCriteria),
	}))

	segments, err := GetPriceSegments(db)
	require.NoError(t, err)
	require.Len(t, segments, 4)

	// ordered cheap to expensive
	assert.Equal(t, "up_to_500k", segments[0].Segment)
	assert.Equal(t, "500k_to_1m", segments[1].Segment)
	assert.Equal(t, "1m_to_1.5m", segments[2].Segment)
	assert.Equal(t, "over_1.5m", segments[3].Segment)
	for _, s := range segments {
		assert.Equal(t, 1, s.Listings)
	}
}

func TestGetSizeCategories(t *testing.T) {
	db := testDB(t)
	require.NoError(t, SaveListings(db, []*Listing{
		testListing("plot-1", "Duvenstedt", 400000, 450, bestCriteria),
		testListing("plot-2", "Duvenstedt", 900000, 800, bestCriteria),
		testListing("plot-3", "Blankenese", 1400000, 1500, bestCriteria),
		testListing("plot-4", "Blankenese", 2500000, 2500, bestCriteria),
	}))

	categories, err := GetSizeCategories(db)
	require.NoError(t, err)
	require.Len(t, categories, 4)

	assert.Equal(t, "small_under_500", categories[0].Segment)
	assert.Equal(t, "medium_500_to_1000", categories[1].Segment)
	assert.Equal(t, "large_1000_to_2000", categories[2].Segment)
	assert.Equal(t, "very_large_over_2000", categories[3].Segment)
}

func TestGetSummary(t *testing.T) {
	db := testDB(t)
	require.NoError(t, SaveListings(db, []*Listing{
		testListing("plot-1", "Duvenstedt", 400000, 800, bestCriteria),
		testListing("plot-2", "Duvenstedt", 600000, 1200, worstCriteria),
		testListing("plot-3", "Blankenese", 1600000, 2100, bestCriteria),
	}))

	s, err := GetSummary(db)
	require.NoError(t, err)
	assert.Equal(t, 3, s.Listings)
	assert.Equal(t, 2, s.Districts)
	require.NotNil(t, s.AvgPrice)
	assert.InDelta(t, (400000.0+600000+1600000)/3, *s.AvgPrice, 1e-6)
	require.NotNil(t, s.MedianPrice)
	assert.InDelta(t, 600000, *s.MedianPrice, 1e-6)
	require.NotNil(t, s.MinPrice)
	assert.InDelta(t, 400000, *s.MinPrice, 1e-6)
	require.NotNil(t, s.MaxPrice)
	assert.InDelta(t, 1600000, *s.MaxPrice, 1e-6)
}

func TestGetSummaryEmpty(t *testing.T) {
	db := testDB(t)

	s, err := GetSummary(db)
	require.NoError(t, err)
	assert.Equal(t, 0, s.Listings)
	assert.Nil(t, s.MedianPrice)
}

func TestGetGeoPoints(t *testing.T) {
	db := testDB(t)

	geocoded := testListing("plot-1", "Duvenstedt", 400000, 800, bestCriteria)
	lat, lng := 53.708, 10.103
	geocoded.Latitude = &lat
	geocoded.Longitude = &lng

	require.NoError(t, SaveListings(db, []*Listing{
		geocoded,
		testListing("plot-2", "Duvenstedt", 600000, 1200, worstCriteria),
	}))

	points, err := GetGeoPoints(db)
	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.Equal(t, "plot-1", points[0].ID)
	assert.InDelta(t, 53.708, points[0].Latitude, 1e-6)
	assert.Equal(t, string(quality.BucketVeryGood), points[0].QualityBucket)
}
