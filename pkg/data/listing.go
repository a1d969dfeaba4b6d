package data

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"grundctl/pkg/quality"
)

const (
	insertListingSQL = `INSERT INTO listing (
			id,
			title,
			street,
			full_address,
			district,
			latitude,
			longitude,
			purchase_price,
			plot_area,
			price_per_sqm,
			permit_status,
			utility_connection,
			short_term_buildable,
			demolition_required,
			recommended_use,
			agent_company,
			agent_name,
			agent_rating,
			import_date,
			quality_score,
			quality_bucket
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			street = excluded.street,
			full_address = excluded.full_address,
			district = excluded.district,
			latitude = excluded.latitude,
			longitude = excluded.longitude,
			purchase_price = excluded.purchase_price,
			plot_area = excluded.plot_area,
			price_per_sqm = excluded.price_per_sqm,
			permit_status = excluded.permit_status,
			utility_connection = excluded.utility_connection,
			short_term_buildable = excluded.short_term_buildable,
			demolition_required = excluded.demolition_required,
			recommended_use = excluded.recommended_use,
			agent_company = excluded.agent_company,
			agent_name = excluded.agent_name,
			agent_rating = excluded.agent_rating,
			import_date = excluded.import_date,
			quality_score = excluded.quality_score,
			quality_bucket = excluded.quality_bucket
	`

	listingColumns = `id,
			title,
			street,
			full_address,
			district,
			latitude,
			longitude,
			purchase_price,
			plot_area,
			price_per_sqm,
			permit_status,
			utility_connection,
			short_term_buildable,
			demolition_required,
			recommended_use,
			agent_company,
			agent_name,
			agent_rating,
			import_date,
			quality_score,
			quality_bucket,
			quality_factor,
			expected_price_sqm,
			price_quality_ratio,
			value_rating,
			deal_score`

	selectListingSQL = `SELECT ` + listingColumns + ` FROM listing WHERE id = ?`

	searchListingSQL = `SELECT ` + listingColumns + `
		FROM listing
		WHERE district = COALESCE(?, district)
		AND quality_bucket = COALESCE(?, quality_bucket)
		AND COALESCE(purchase_price, -1) >= COALESCE(?, -1)
		AND COALESCE(purchase_price, 0) <= COALESCE(?, 1e18)
		AND COALESCE(plot_area, -1) >= COALESCE(?, -1)
		ORDER BY quality_score DESC, id
		LIMIT ? OFFSET ?
	`
)

// Listing is one scored real-estate offering. Listings are written once at
// import time and read-only afterwards.
type Listing struct {
	ID                  string                    `json:"id" yaml:"id"`
	Title               string                    `json:"title,omitempty" yaml:"title,omitempty"`
	Street              string                    `json:"street,omitempty" yaml:"street,omitempty"`
	FullAddress         string                    `json:"full_address,omitempty" yaml:"fullAddress,omitempty"`
	District            string                    `json:"district,omitempty" yaml:"district,omitempty"`
	Latitude            *float64                  `json:"latitude,omitempty" yaml:"latitude,omitempty"`
	Longitude           *float64                  `json:"longitude,omitempty" yaml:"longitude,omitempty"`
	PurchasePrice       *float64                  `json:"purchase_price,omitempty" yaml:"purchasePrice,omitempty"`
	PlotArea            *float64                  `json:"plot_area,omitempty" yaml:"plotArea,omitempty"`
	PricePerSqm         *float64                  `json:"price_per_sqm,omitempty" yaml:"pricePerSqm,omitempty"`
	PermitStatus        quality.PermitStatus      `json:"permit_status" yaml:"permitStatus"`
	UtilityConnection   quality.UtilityConnection `json:"utility_connection" yaml:"utilityConnection"`
	ShortTermBuildable  bool                      `json:"short_term_buildable" yaml:"shortTermBuildable"`
	DemolitionRequired  bool                      `json:"demolition_required" yaml:"demolitionRequired"`
	RecommendedUse      string                    `json:"recommended_use,omitempty" yaml:"recommendedUse,omitempty"`
	AgentCompany        string                    `json:"agent_company,omitempty" yaml:"agentCompany,omitempty"`
	AgentName           string                    `json:"agent_name,omitempty" yaml:"agentName,omitempty"`
	AgentRating         *float64                  `json:"agent_rating,omitempty" yaml:"agentRating,omitempty"`
	Imported            string                    `json:"import_date" yaml:"importDate"`
	QualityScore        float64                   `json:"quality_score" yaml:"qualityScore"`
	QualityBucket       quality.Bucket            `json:"quality_bucket" yaml:"qualityBucket"`
	QualityFactor       *float64                  `json:"quality_factor,omitempty" yaml:"qualityFactor,omitempty"`
	ExpectedPricePerSqm *float64                  `json:"expected_price_per_sqm,omitempty" yaml:"expectedPricePerSqm,omitempty"`
	PriceQualityRatio   *float64                  `json:"price_quality_ratio,omitempty" yaml:"priceQualityRatio,omitempty"`
	ValueRating         quality.ValueRating       `json:"value_rating" yaml:"valueRating"`
	DealScore           *float64                  `json:"deal_score,omitempty" yaml:"dealScore,omitempty"`
}

// Criteria returns the listing's categorical scoring inputs.
func (l *Listing) Criteria() quality.Criteria {
	return quality.Criteria{
		Permit:             l.PermitStatus,
		Utility:            l.UtilityConnection,
		ShortTermBuildable: l.ShortTermBuildable,
		DemolitionRequired: l.DemolitionRequired,
	}
}

// ListingSearchCriteria filters the scored dataset.
type ListingSearchCriteria struct {
	District *string  `json:"district,omitempty"`
	Bucket   *string  `json:"bucket,omitempty"`
	MinPrice *float64 `json:"min_price,omitempty"`
	MaxPrice *float64 `json:"max_price,omitempty"`
	MinArea  *float64 `json:"min_area,omitempty"`
	Page     int      `json:"page,omitempty"`
	PageSize int      `json:"page_size,omitempty"`
}

func (c ListingSearchCriteria) String() string {
	b, err := json.Marshal(c)
	if err != nil {
		return ""
	}
	return string(b)
}

// SaveListings upserts the given listings in a single transaction.
func SaveListings(db *sql.DB, list []*Listing) error {
	if db == nil {
		return errDBNotInitialized
	}

	if len(list) == 0 {
		return nil
	}

	stmt, err := db.Prepare(insertListingSQL)
	if err != nil {
		return fmt.Errorf("failed to prepare listing insert statement: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	for i, l := range list {
		if _, err = tx.Stmt(stmt).Exec(
			l.ID, l.Title, l.Street, l.FullAddress, l.District,
			l.Latitude, l.Longitude, l.PurchasePrice, l.PlotArea, l.PricePerSqm,
			l.PermitStatus, l.UtilityConnection, l.ShortTermBuildable, l.DemolitionRequired,
			l.RecommendedUse, l.AgentCompany, l.AgentName, l.AgentRating,
			l.Imported, l.QualityScore, l.QualityBucket); err != nil {
			slog.Error("failed to insert listing",
				"index", i,
				"error", err,
				"id", l.ID,
				"district", l.District,
			)
			rollbackTransaction(tx)
			return fmt.Errorf("error inserting listing[%d]: %s: %w", i, l.ID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetListing returns a single listing by its source ID, nil when not found.
func GetListing(db *sql.DB, id string) (*Listing, error) {
	if db == nil {
		return nil, errDBNotInitialized
	}

	stmt, err := db.Prepare(selectListingSQL)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare listing select statement: %w", err)
	}

	row := stmt.QueryRow(id)

	l := &Listing{}
	if err = scanListing(row.Scan, l); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan row: %w", err)
	}

	return l, nil
}

// SearchListings returns listings matching the given criteria, best first.
func SearchListings(db *sql.DB, q *ListingSearchCriteria) ([]*Listing, error) {
	if db == nil {
		return nil, errDBNotInitialized
	}

	stmt, err := db.Prepare(searchListingSQL)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare listing search statement: %w", err)
	}

	page := q.Page
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * q.PageSize

	rows, err := stmt.Query(q.District, q.Bucket, q.MinPrice, q.MaxPrice, q.MinArea, q.PageSize, offset)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to execute listing search statement: %w", err)
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

	return list, nil
}

func scanListing(scan func(...any) error, l *Listing) error {
	return scan(
		&l.ID, &l.Title, &l.Street, &l.FullAddress, &l.District,
		&l.Latitude, &l.Longitude, &l.PurchasePrice, &l.PlotArea, &l.PricePerSqm,
		&l.PermitStatus, &l.UtilityConnection, &l.ShortTermBuildable, &l.DemolitionRequired,
		&l.RecommendedUse, &l.AgentCompany, &l.AgentName, &l.AgentRating,
		&l.Imported, &l.QualityScore, &l.QualityBucket,
		&l.QualityFactor, &l.ExpectedPricePerSqm, &l.PriceQualityRatio,
		&l.ValueRating, &l.DealScore,
	)
}
