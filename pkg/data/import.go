package data

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"grundctl/pkg/feed"
	"grundctl/pkg/quality"
)

const (
	importDateFormat = "2006-01-02"

	selectDistrictAvgSQL = `SELECT district, AVG(price_per_sqm)
		FROM listing
		WHERE price_per_sqm IS NOT NULL
		AND district != ''
		GROUP BY district
	`

	selectValuationInputSQL = `SELECT id, district, price_per_sqm, quality_score FROM listing`

	updateValuationSQL = `UPDATE listing SET
			quality_factor = ?,
			expected_price_sqm = ?,
			price_quality_ratio = ?,
			value_rating = ?,
			deal_score = ?
		WHERE id = ?
	`
)

// ImportSummary reports the outcome of importing one feed source.
type ImportSummary struct {
	Source   string         `json:"source" yaml:"source"`
	Parsed   int            `json:"parsed" yaml:"parsed"`
	Saved    int            `json:"saved" yaml:"saved"`
	Skipped  int            `json:"skipped" yaml:"skipped"`
	Buckets  map[string]int `json:"buckets,omitempty" yaml:"buckets,omitempty"`
	Duration string         `json:"duration" yaml:"duration"`
}

// FromRecord maps a parsed feed record into a scored listing. Records whose
// normalized criteria still fail validation are rejected whole, no partial
// scoring.
func FromRecord(r *feed.Record, imported time.Time) (*Listing, error) {
	if r.ID == "" {
		return nil, errors.New("feed record has no id")
	}

	c := r.Criteria()
	score, bucket, err := quality.Score(c)
	if err != nil {
		return nil, fmt.Errorf("error scoring listing %s: %w", r.ID, err)
	}

	l := &Listing{
		ID:                 r.ID,
		Title:              r.Title,
		Street:             r.Street,
		FullAddress:        r.FullAddress,
		District:           r.District,
		Latitude:           r.Latitude,
		Longitude:          r.Longitude,
		PurchasePrice:      r.PurchasePrice,
		PlotArea:           r.PlotArea,
		PricePerSqm:        r.PricePerSqm,
		PermitStatus:       c.Permit,
		UtilityConnection:  c.Utility,
		ShortTermBuildable: c.ShortTermBuildable,
		DemolitionRequired: c.DemolitionRequired,
		RecommendedUse:     r.RecommendedUse,
		AgentCompany:       r.AgentCompany,
		AgentName:          r.AgentName,
		AgentRating:        r.AgentRating,
		Imported:           imported.UTC().Format(importDateFormat),
		QualityScore:       score,
		QualityBucket:      bucket,
		ValueRating:        quality.ValueUnknown,
	}

	// derive missing price per m² when both price and area are known
	if l.PricePerSqm == nil && l.PurchasePrice != nil && l.PlotArea != nil && *l.PlotArea > 0 {
		v := *l.PurchasePrice / *l.PlotArea
		l.PricePerSqm = &v
	}

	return l, nil
}

// ImportRecords scores and saves parsed feed records. Returns the number of
// saved listings, per-bucket counts, and the number of skipped records.
func ImportRecords(db *sql.DB, records []*feed.Record, imported time.Time) (saved int, buckets map[string]int, skipped int, err error) {
	if db == nil {
		return 0, nil, 0, errDBNotInitialized
	}

	buckets = make(map[string]int)
	list := make([]*Listing, 0, len(records))

	for _, r := range records {
		l, mapErr := FromRecord(r, imported)
		if mapErr != nil {
			skipped++
			continue
		}
		buckets[string(l.QualityBucket)]++
		list = append(list, l)
	}

	if err := SaveListings(db, list); err != nil {
		return 0, nil, skipped, fmt.Errorf("error saving listings: %w", err)
	}

	return len(list), buckets, skipped, nil
}

// ComputeValuations derives the price/quality valuation columns for every
// listing from its district's average price per m². Runs after import so the
// district baselines cover the whole dataset.
func ComputeValuations(db *sql.DB) (int, error) {
	if db == nil {
		return 0, errDBNotInitialized
	}

	averages, err := getDistrictAverages(db)
	if err != nil {
		return 0, err
	}

	rows, err := db.Query(selectValuationInputSQL)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("failed to execute valuation input statement: %w", err)
	}
	defer rows.Close()

	type valuationUpdate struct {
		id  string
		val quality.Valuation
		ok  bool
	}

	updates := make([]valuationUpdate, 0)
	for rows.Next() {
		var id, district string
		var pricePerSqm *float64
		var score float64
		if err := rows.Scan(&id, &district, &pricePerSqm, &score); err != nil {
			return 0, fmt.Errorf("failed to scan row: %w", err)
		}

		var price, avg float64
		if pricePerSqm != nil {
			price = *pricePerSqm
		}
		avg = averages[district]

		v, ok := quality.Evaluate(price, avg, score)
		updates = append(updates, valuationUpdate{id: id, val: v, ok: ok})
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("failed to read valuation input rows: %w", err)
	}

	stmt, err := db.Prepare(updateValuationSQL)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare valuation update statement: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}

	evaluated := 0
	for _, u := range updates {
		var execErr error
		if u.ok {
			_, execErr = tx.Stmt(stmt).Exec(
				u.val.Factor, u.val.ExpectedPricePerSqm, u.val.PriceQualityRatio,
				u.val.Rating, u.val.DealScore, u.id)
			evaluated++
		} else {
			_, execErr = tx.Stmt(stmt).Exec(nil, nil, nil, quality.ValueUnknown, nil, u.id)
		}
		if execErr != nil {
			rollbackTransaction(tx)
			return 0, fmt.Errorf("error updating valuation for %s: %w", u.id, execErr)
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return evaluated, nil
}

func getDistrictAverages(db *sql.DB) (map[string]float64, error) {
	rows, err := db.Query(selectDistrictAvgSQL)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to execute district average statement: %w", err)
	}
	defer rows.Close()

	averages := make(map[string]float64)
	for rows.Next() {
		var district string
		var avg float64
		if err := rows.Scan(&district, &avg); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		averages[district] = avg
	}

	return averages, rows.Err()
}
