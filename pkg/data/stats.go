package data

import (
	"database/sql"
	"errors"
	"fmt"
)

const (
	selectDistrictStatsSQL = `SELECT
			district,
			COUNT(*) as listings,
			AVG(purchase_price) as avg_price,
			MIN(purchase_price) as min_price,
			MAX(purchase_price) as max_price,
			AVG(plot_area) as avg_area,
			AVG(price_per_sqm) as avg_price_sqm,
			AVG(quality_score) as avg_score
		FROM listing
		WHERE district != ''
		GROUP BY district
		HAVING COUNT(*) >= ?
		ORDER BY 3 DESC
	`

	selectBucketStatsSQL = `SELECT
			quality_bucket,
			COUNT(*) as listings,
			AVG(purchase_price) as avg_price,
			AVG(price_per_sqm) as avg_price_sqm,
			AVG(quality_score) as avg_score
		FROM listing
		GROUP BY quality_bucket
		ORDER BY 5 DESC
	`

	selectPriceSegmentsSQL = `SELECT
			CASE
				WHEN purchase_price <= 500000 THEN 'up_to_500k'
				WHEN purchase_price <= 1000000 THEN '500k_to_1m'
				WHEN purchase_price <= 1500000 THEN '1m_to_1.5m'
				ELSE 'over_1.5m'
			END as segment,
			COUNT(*) as listings,
			AVG(plot_area) as avg_area,
			AVG(price_per_sqm) as avg_price_sqm,
			AVG(quality_score) as avg_score
		FROM listing
		WHERE purchase_price IS NOT NULL
		GROUP BY 1
		ORDER BY MIN(purchase_price)
	`

	selectSizeCategoriesSQL = `SELECT
			CASE
				WHEN plot_area < 500 THEN 'small_under_500'
				WHEN plot_area < 1000 THEN 'medium_500_to_1000'
				WHEN plot_area < 2000 THEN 'large_1000_to_2000'
				ELSE 'very_large_over_2000'
			END as category,
			COUNT(*) as listings,
			AVG(purchase_price) as avg_price,
			AVG(price_per_sqm) as avg_price_sqm
		FROM listing
		WHERE plot_area IS NOT NULL
		GROUP BY 1
		ORDER BY MIN(plot_area)
	`

	selectTopDealsSQL = `SELECT ` + listingColumns + `
		FROM listing
		WHERE deal_score IS NOT NULL
		ORDER BY deal_score DESC
		LIMIT ?
	`

	selectSummarySQL = `SELECT
			COUNT(*),
			COUNT(DISTINCT CASE WHEN district != '' THEN district END),
			AVG(purchase_price),
			MIN(purchase_price),
			MAX(purchase_price),
			AVG(plot_area),
			AVG(price_per_sqm),
			AVG(quality_score)
		FROM listing
	`

	selectPricesSQL = `SELECT purchase_price
		FROM listing
		WHERE purchase_price IS NOT NULL
		ORDER BY purchase_price
	`

	selectGeoPointsSQL = `SELECT
			id,
			title,
			district,
			latitude,
			longitude,
			purchase_price,
			price_per_sqm,
			quality_score,
			quality_bucket
		FROM listing
		WHERE latitude IS NOT NULL
		AND longitude IS NOT NULL
		ORDER BY id
	`
)

// DistrictStats aggregates the scored dataset per district.
type DistrictStats struct {
	District       string   `json:"district" yaml:"district"`
	Listings       int      `json:"listings" yaml:"listings"`
	AvgPrice       *float64 `json:"avg_price,omitempty" yaml:"avgPrice,omitempty"`
	MinPrice       *float64 `json:"min_price,omitempty" yaml:"minPrice,omitempty"`
	MaxPrice       *float64 `json:"max_price,omitempty" yaml:"maxPrice,omitempty"`
	AvgArea        *float64 `json:"avg_area,omitempty" yaml:"avgArea,omitempty"`
	AvgPricePerSqm *float64 `json:"avg_price_per_sqm,omitempty" yaml:"avgPricePerSqm,omitempty"`
	AvgScore       *float64 `json:"avg_quality_score,omitempty" yaml:"avgQualityScore,omitempty"`
}

// BucketStats aggregates the scored dataset per quality bucket.
type BucketStats struct {
	Bucket         string   `json:"bucket" yaml:"bucket"`
	Listings       int      `json:"listings" yaml:"listings"`
	AvgPrice       *float64 `json:"avg_price,omitempty" yaml:"avgPrice,omitempty"`
	AvgPricePerSqm *float64 `json:"avg_price_per_sqm,omitempty" yaml:"avgPricePerSqm,omitempty"`
	AvgScore       *float64 `json:"avg_quality_score,omitempty" yaml:"avgQualityScore,omitempty"`
}

// SegmentStats aggregates the dataset into named bins (price or size).
type SegmentStats struct {
	Segment        string   `json:"segment" yaml:"segment"`
	Listings       int      `json:"listings" yaml:"listings"`
	AvgPrice       *float64 `json:"avg_price,omitempty" yaml:"avgPrice,omitempty"`
	AvgArea        *float64 `json:"avg_area,omitempty" yaml:"avgArea,omitempty"`
	AvgPricePerSqm *float64 `json:"avg_price_per_sqm,omitempty" yaml:"avgPricePerSqm,omitempty"`
	AvgScore       *float64 `json:"avg_quality_score,omitempty" yaml:"avgQualityScore,omitempty"`
}

// Summary is the market overview over the whole scored dataset.
type Summary struct {
	Listings       int      `json:"listings" yaml:"listings"`
	Districts      int      `json:"districts" yaml:"districts"`
	AvgPrice       *float64 `json:"avg_price,omitempty" yaml:"avgPrice,omitempty"`
	MedianPrice    *float64 `json:"median_price,omitempty" yaml:"medianPrice,omitempty"`
	MinPrice       *float64 `json:"min_price,omitempty" yaml:"minPrice,omitempty"`
	MaxPrice       *float64 `json:"max_price,omitempty" yaml:"maxPrice,omitempty"`
	AvgArea        *float64 `json:"avg_area,omitempty" yaml:"avgArea,omitempty"`
	AvgPricePerSqm *float64 `json:"avg_price_per_sqm,omitempty" yaml:"avgPricePerSqm,omitempty"`
	AvgScore       *float64 `json:"avg_quality_score,omitempty" yaml:"avgQualityScore,omitempty"`
}

// GeoPoint is the map projection of a listing.
type GeoPoint struct {
	ID            string   `json:"id" yaml:"id"`
	Title         string   `json:"title,omitempty" yaml:"title,omitempty"`
	District      string   `json:"district,omitempty" yaml:"district,omitempty"`
	Latitude      float64  `json:"latitude" yaml:"latitude"`
	Longitude     float64  `json:"longitude" yaml:"longitude"`
	PurchasePrice *float64 `json:"purchase_price,omitempty" yaml:"purchasePrice,omitempty"`
	PricePerSqm   *float64 `json:"price_per_sqm,omitempty" yaml:"pricePerSqm,omitempty"`
	QualityScore  float64  `json:"quality_score" yaml:"qualityScore"`
	QualityBucket string   `json:"quality_bucket" yaml:"qualityBucket"`
}

// GetDistrictStats returns per-district aggregates for districts with at
// least minListings listings.
func GetDistrictStats(db *sql.DB, minListings int) ([]*DistrictStats, error) {
	if db == nil {
		return nil, errDBNotInitialized
	}

	if minListings < 1 {
		minListings = 1
	}

	rows, err := db.Query(selectDistrictStatsSQL, minListings)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to execute district stats statement: %w", err)
	}
	defer rows.Close()

	list := make([]*DistrictStats, 0)
	for rows.Next() {
		s := &DistrictStats{}
		if err := rows.Scan(&s.District, &s.Listings, &s.AvgPrice, &s.MinPrice,
			&s.MaxPrice, &s.AvgArea, &s.AvgPricePerSqm, &s.AvgScore); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		list = append(list, s)
	}

	return list, rows.Err()
}

// GetBucketStats returns per-bucket aggregates, best bucket first.
func GetBucketStats(db *sql.DB) ([]*BucketStats, error) {
	if db == nil {
		return nil, errDBNotInitialized
	}

	rows, err := db.Query(selectBucketStatsSQL)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to execute bucket stats statement: %w", err)
	}
	defer rows.Close()

	list := make([]*BucketStats, 0)
	for rows.Next() {
		s := &BucketStats{}
		if err := rows.Scan(&s.Bucket, &s.Listings, &s.AvgPrice, &s.AvgPricePerSqm, &s.AvgScore); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		list = append(list, s)
	}

	return list, rows.Err()
}

// GetPriceSegments bins priced listings into market segments.
func GetPriceSegments(db *sql.DB) ([]*SegmentStats, error) {
	return getSegments(db, selectPriceSegmentsSQL, true)
}

// GetSizeCategories bins listings with a known area into size categories.
func GetSizeCategories(db *sql.DB) ([]*SegmentStats, error) {
	return getSegments(db, selectSizeCategoriesSQL, false)
}

func getSegments(db *sql.DB, sqlQuery string, priced bool) ([]*SegmentStats, error) {
	if db == nil {
		return nil, errDBNotInitialized
	}

	rows, err := db.Query(sqlQuery)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to execute segment statement: %w", err)
	}
	defer rows.Close()

	list := make([]*SegmentStats, 0)
	for rows.Next() {
		s := &SegmentStats{}
		var scanErr error
		if priced {
			scanErr = rows.Scan(&s.Segment, &s.Listings, &s.AvgArea, &s.AvgPricePerSqm, &s.AvgScore)
		} else {
			scanErr = rows.Scan(&s.Segment, &s.Listings, &s.AvgPrice, &s.AvgPricePerSqm)
		}
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan row: %w", scanErr)
		}
		list = append(list, s)
	}

	return list, rows.Err()
}

// GetTopDeals returns the n listings with the best deal score.
func GetTopDeals(db *sql.DB, n int) ([]*Listing, error) {
	if db == nil {
		return nil, errDBNotInitialized
	}

	rows, err := db.Query(selectTopDealsSQL, n)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to execute top deals statement: %w", err)
	}
	defer rows.Close()

	list := make([]*Listing, 0)
	for rows.Next() {
		l := &Listing{}
		if err := scanListing(rows.Scan, l); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		list = append(list, l)
	}

	return list, rows.Err()
}

// GetSummary returns the market overview over the whole dataset.
func GetSummary(db *sql.DB) (*Summary, error) {
	if db == nil {
		return nil, errDBNotInitialized
	}

	s := &Summary{}
	row := db.QueryRow(selectSummarySQL)
	if err := row.Scan(&s.Listings, &s.Districts, &s.AvgPrice, &s.MinPrice,
		&s.MaxPrice, &s.AvgArea, &s.AvgPricePerSqm, &s.AvgScore); err != nil {
		return nil, fmt.Errorf("failed to scan summary row: %w", err)
	}

	median, err := getMedianPrice(db)
	if err != nil {
		return nil, err
	}
	s.MedianPrice = median

	return s, nil
}

// Sqlite has no median aggregate, derive it from the ordered price list.
func getMedianPrice(db *sql.DB) (*float64, error) {
	rows, err := db.Query(selectPricesSQL)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to execute price list statement: %w", err)
	}
	defer rows.Close()

	prices := make([]float64, 0)
	for rows.Next() {
		var p float64
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		prices = append(prices, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	n := len(prices)
	if n == 0 {
		return nil, nil
	}

	var m float64
	if n%2 == 1 {
		m = prices[n/2]
	} else {
		m = (prices[n/2-1] + prices[n/2]) / 2
	}
	return &m, nil
}

// GetGeoPoints returns the map projection of all geocoded listings.
func GetGeoPoints(db *sql.DB) ([]*GeoPoint, error) {
	if db == nil {
		return nil, errDBNotInitialized
	}

	rows, err := db.Query(selectGeoPointsSQL)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to execute geo points statement: %w", err)
	}
	defer rows.Close()

	list := make([]*GeoPoint, 0)
	for rows.Next() {
		p := &GeoPoint{}
		if err := rows.Scan(&p.ID, &p.Title, &p.District, &p.Latitude, &p.Longitude,
			&p.PurchasePrice, &p.PricePerSqm, &p.QualityScore, &p.QualityBucket); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		list = append(list, p)
	}

	return list, rows.Err()
}
