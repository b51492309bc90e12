package visits

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/parkpulse/nps-backend/internal/catalog"
	"github.com/parkpulse/nps-backend/internal/db"
	"github.com/parkpulse/nps-backend/internal/httputil"
	gocache "github.com/patrickmn/go-cache"
)

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to encode response")
	}
}

// writeError emits the error contract: a JSON body with a single detail field.
// %q rather than an encoder so messages keep literal <= and friends.
func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	fmt.Fprintf(w, "{\"detail\":%q}\n", msg)
}

// writeQueryError maps the query-layer taxonomy onto HTTP: ErrNoRows is a 404
// with the operation's message, BadRequestError a 400, anything else a 500.
func writeQueryError(w http.ResponseWriter, err error, notFoundMsg string) {
	var badReq *BadRequestError
	switch {
	case errors.Is(err, ErrNoRows):
		writeError(w, http.StatusNotFound, notFoundMsg)
	case errors.As(err, &badReq):
		writeError(w, http.StatusBadRequest, badReq.Msg)
	default:
		writeError(w, http.StatusInternalServerError, "Query failed: "+err.Error())
	}
}

// requireIntParam parses a required integer query parameter, writing the 400
// itself. The bool reports whether the handler may continue.
func requireIntParam(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		writeError(w, http.StatusBadRequest, "Missing required parameter: "+name)
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid "+name+" format")
		return 0, false
	}
	return v, true
}

func optionalIntParam(w http.ResponseWriter, r *http.Request, name string, def int) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid "+name+" format")
		return 0, false
	}
	return v, true
}

func sinceMillis(start time.Time) string {
	return fmt.Sprintf("%.1f", float64(time.Since(start).Microseconds())/1000.0)
}

// ParkMonthlyVisits handles GET /parks/{park_code}/monthly-visits.
func ParkMonthlyVisits(w http.ResponseWriter, r *http.Request) {
	parkCode := chi.URLParam(r, "park_code")
	year, ok := requireIntParam(w, r, "year")
	if !ok {
		return
	}
	threshold, ok := optionalIntParam(w, r, "threshold", 0)
	if !ok {
		return
	}

	out, err := MonthlySeries(db.DB, parkCode, year, threshold)
	if err != nil {
		writeQueryError(w, err, "No visits for that park/year")
		return
	}
	writeJSON(w, out)
}

// AnnualVisitsByPark handles GET /annual-visits/parks.
func AnnualVisitsByPark(w http.ResponseWriter, r *http.Request) {
	year, ok := requireIntParam(w, r, "year")
	if !ok {
		return
	}
	limit, ok := optionalIntParam(w, r, "limit", 100)
	if !ok {
		return
	}

	p := AnnualParams{
		Year:     year,
		RegionID: r.URL.Query().Get("region_id"),
		ParkCode: r.URL.Query().Get("park_code"),
		Query:    r.URL.Query().Get("query"),
		Limit:    limit,
	}
	if raw := r.URL.Query().Get("min_total"); raw != "" {
		minTotal, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid min_total format")
			return
		}
		p.MinTotal = &minTotal
	}

	start := time.Now()
	out, err := AnnualByPark(db.DB, p)
	if err != nil {
		writeQueryError(w, err, "No visits for that year/filters")
		return
	}
	httputil.AddServerTiming(w, [2]string{"aggregate", sinceMillis(start)})
	writeJSON(w, out)
}

// AverageMonthlyVisits handles GET /visits/parks/average-monthly.
func AverageMonthlyVisits(w http.ResponseWriter, r *http.Request) {
	startYear, ok := requireIntParam(w, r, "start_year")
	if !ok {
		return
	}
	endYear, ok := requireIntParam(w, r, "end_year")
	if !ok {
		return
	}
	limit, ok := optionalIntParam(w, r, "limit", 100)
	if !ok {
		return
	}

	out, err := AverageMonthly(db.DB, RangeParams{
		StartYear: startYear,
		EndYear:   endYear,
		RegionID:  r.URL.Query().Get("region_id"),
		ParkCode:  r.URL.Query().Get("park_code"),
		Query:     r.URL.Query().Get("query"),
		Limit:     limit,
	})
	if err != nil {
		writeQueryError(w, err, "No visits in that year range")
		return
	}
	writeJSON(w, out)
}

// PeakSeasonAboveThreshold handles GET /visits/peak-season/above-threshold.
func PeakSeasonAboveThreshold(w http.ResponseWriter, r *http.Request) {
	year, ok := requireIntParam(w, r, "year")
	if !ok {
		return
	}
	threshold, ok := requireIntParam(w, r, "threshold")
	if !ok {
		return
	}

	out, err := PeakSeason(db.DB, year, threshold, r.URL.Query().Get("region_id"))
	if err != nil {
		writeQueryError(w, err, "No parks meet that peak-season threshold")
		return
	}
	writeJSON(w, out)
}

// ParksAboveSystemAverage handles GET /visits/parks/above-system-average.
func ParksAboveSystemAverage(w http.ResponseWriter, r *http.Request) {
	year, ok := requireIntParam(w, r, "year")
	if !ok {
		return
	}

	out, err := AboveAverage(db.DB, AboveAverageParams{
		Year:     year,
		RegionID: r.URL.Query().Get("region_id"),
		ParkCode: r.URL.Query().Get("park_code"),
		Query:    r.URL.Query().Get("query"),
	})
	if err != nil {
		writeQueryError(w, err, "No data for that year/filters")
		return
	}
	writeJSON(w, out)
}

// TopParksByYear handles GET /annual-visits/top.
func TopParksByYear(w http.ResponseWriter, r *http.Request) {
	year, ok := requireIntParam(w, r, "year")
	if !ok {
		return
	}
	limit, ok := optionalIntParam(w, r, "limit", 10)
	if !ok {
		return
	}

	out, err := TopParks(db.DB, TopParams{
		Year:     year,
		Limit:    limit,
		RegionID: r.URL.Query().Get("region_id"),
		Query:    r.URL.Query().Get("query"),
	})
	if err != nil {
		writeQueryError(w, err, "No visits for that year/filters")
		return
	}
	writeJSON(w, out)
}

// ParksByMetric handles GET /annual-visits/parks/metrics.
func ParksByMetric(w http.ResponseWriter, r *http.Request) {
	year, ok := requireIntParam(w, r, "year")
	if !ok {
		return
	}
	metric := r.URL.Query().Get("metric")
	if metric == "" {
		writeError(w, http.StatusBadRequest, "Missing required parameter: metric")
		return
	}
	limit, ok := optionalIntParam(w, r, "limit", 50)
	if !ok {
		return
	}

	out, err := MetricTotals(db.DB, MetricParams{
		Year:     year,
		Metric:   metric,
		RegionID: r.URL.Query().Get("region_id"),
		Limit:    limit,
	})
	if err != nil {
		writeQueryError(w, err, "No data for that metric/year")
		return
	}
	writeJSON(w, out)
}

// AnnualVisitsByRegion handles GET /annual-visits/regions.
func AnnualVisitsByRegion(w http.ResponseWriter, r *http.Request) {
	year, ok := requireIntParam(w, r, "year")
	if !ok {
		return
	}

	out, err := RegionTotals(db.DB, year, r.URL.Query().Get("region_id"))
	if err != nil {
		writeQueryError(w, err, "No regional data for that year")
		return
	}
	writeJSON(w, out)
}

// ParkMonthToMonthChange handles GET /parks/{park_code}/month-to-month-change.
func ParkMonthToMonthChange(w http.ResponseWriter, r *http.Request) {
	parkCode := chi.URLParam(r, "park_code")
	year, ok := requireIntParam(w, r, "year")
	if !ok {
		return
	}

	out, err := MonthToMonthChange(db.DB, parkCode, year)
	if err != nil {
		writeQueryError(w, err, "No visits for that park/year")
		return
	}
	writeJSON(w, out)
}

// RegionGrowth handles GET /regions/{region_id}/growth.
func RegionGrowth(w http.ResponseWriter, r *http.Request) {
	regionID := chi.URLParam(r, "region_id")
	startYear, ok := requireIntParam(w, r, "start_year")
	if !ok {
		return
	}
	endYear, ok := requireIntParam(w, r, "end_year")
	if !ok {
		return
	}

	out, err := Growth(db.DB, regionID, startYear, endYear)
	if err != nil {
		writeQueryError(w, err, "No data for that region/years")
		return
	}
	writeJSON(w, out)
}

// ParkVisitVariability handles GET /visits/parks/variability.
func ParkVisitVariability(w http.ResponseWriter, r *http.Request) {
	year, ok := requireIntParam(w, r, "year")
	if !ok {
		return
	}
	limit, ok := optionalIntParam(w, r, "limit", 10)
	if !ok {
		return
	}

	start := time.Now()
	out, err := Variability(db.DB, VariabilityParams{
		Year:     year,
		RegionID: r.URL.Query().Get("region_id"),
		ParkCode: r.URL.Query().Get("park_code"),
		Query:    r.URL.Query().Get("query"),
		Limit:    limit,
	})
	if err != nil {
		writeQueryError(w, err, "No data for that year/filters")
		return
	}
	httputil.AddServerTiming(w, [2]string{"aggregate", sinceMillis(start)})
	writeJSON(w, out)
}

// AvailableYears handles GET /metadata/years. The bounds only move on ingest,
// so the result sits in the reference cache with the region list.
func AvailableYears(w http.ResponseWriter, r *http.Request) {
	if cached, ok := catalog.RefCache.Get(catalog.CacheKeyYearBounds); ok {
		writeJSON(w, cached)
		return
	}

	out, err := YearBounds(db.DB)
	if err != nil {
		writeQueryError(w, err, "No year data available")
		return
	}

	catalog.RefCache.Set(catalog.CacheKeyYearBounds, out, gocache.DefaultExpiration)
	writeJSON(w, out)
}
