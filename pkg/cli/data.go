package cli

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"grundctl/pkg/data"
)

const (
	pageSizeMax     = 1000
	pageSizeDefault = 100
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func indexAPIHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":    appName,
		"version": version,
		"endpoints": []string{
			"/api/listings",
			"/api/listings/{id}",
			"/api/districts",
			"/api/buckets",
			"/api/segments",
			"/api/sizes",
			"/api/deals",
			"/api/summary",
			"/api/geo",
		},
	})
}

func listingsAPIHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := &data.ListingSearchCriteria{
			District: optional(r.URL.Query().Get("district")),
			Bucket:   optional(r.URL.Query().Get("bucket")),
			MinPrice: queryParamFloat(r, "min_price"),
			MaxPrice: queryParamFloat(r, "max_price"),
			MinArea:  queryParamFloat(r, "min_area"),
			Page:     queryParamInt(r, "page", 1),
			PageSize: queryParamInt(r, "page_size", pageSizeDefault),
		}
		if q.PageSize > pageSizeMax {
			q.PageSize = pageSizeMax
		}

		slog.Debug("listing search", "criteria", q)

		res, err := data.SearchListings(db, q)
		if err != nil {
			slog.Error("failed to search listings", "error", err)
			writeError(w, http.StatusInternalServerError, "error querying listings")
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

func listingAPIHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		if id == "" {
			writeError(w, http.StatusBadRequest, "listing id required")
			return
		}

		res, err := data.GetListing(db, id)
		if err != nil {
			slog.Error("failed to get listing", "id", id, "error", err)
			writeError(w, http.StatusInternalServerError, "error querying listing")
			return
		}
		if res == nil {
			writeError(w, http.StatusNotFound, "listing not found")
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

func districtsAPIHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		minListings := queryParamInt(r, "min_listings", districtMinListingsDefault)
		res, err := data.GetDistrictStats(db, minListings)
		if err != nil {
			slog.Error("failed to get district stats", "error", err)
			writeError(w, http.StatusInternalServerError, "error querying district stats")
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

func bucketsAPIHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		res, err := data.GetBucketStats(db)
		if err != nil {
			slog.Error("failed to get bucket stats", "error", err)
			writeError(w, http.StatusInternalServerError, "error querying bucket stats")
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

func segmentsAPIHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		res, err := data.GetPriceSegments(db)
		if err != nil {
			slog.Error("failed to get price segments", "error", err)
			writeError(w, http.StatusInternalServerError, "error querying price segments")
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

func sizesAPIHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		res, err := data.GetSizeCategories(db)
		if err != nil {
			slog.Error("failed to get size categories", "error", err)
			writeError(w, http.StatusInternalServerError, "error querying size categories")
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

func dealsAPIHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		top := queryParamInt(r, "top", 10)
		res, err := data.GetTopDeals(db, top)
		if err != nil {
			slog.Error("failed to get top deals", "error", err)
			writeError(w, http.StatusInternalServerError, "error querying top deals")
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

func summaryAPIHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		res, err := data.GetSummary(db)
		if err != nil {
			slog.Error("failed to get summary", "error", err)
			writeError(w, http.StatusInternalServerError, "error querying summary")
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

func geoAPIHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		res, err := data.GetGeoPoints(db)
		if err != nil {
			slog.Error("failed to get geo points", "error", err)
			writeError(w, http.StatusInternalServerError, "error querying geo points")
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

func queryParamInt(r *http.Request, key string, def int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}

	i, err := strconv.Atoi(v)
	if err != nil || i < 1 {
		slog.Debug("invalid int query param, using default", "key", key, "value", v)
		return def
	}

	return i
}

func queryParamFloat(r *http.Request, key string) *float64 {
	v := r.URL.Query().Get(key)
	if v == "" {
		return nil
	}

	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		slog.Debug("invalid float query param, ignoring", "key", key, "value", v)
		return nil
	}

	return &f
}
