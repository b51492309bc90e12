package visits

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes attaches the analytics catalogue. Paths are part of the
// dashboard contract and register on the shared router.
func RegisterRoutes(r chi.Router) {
	r.Get("/parks/{park_code}/monthly-visits", ParkMonthlyVisits)
	r.Get("/parks/{park_code}/month-to-month-change", ParkMonthToMonthChange)

	r.Get("/annual-visits/parks", AnnualVisitsByPark)
	r.Get("/annual-visits/parks/metrics", ParksByMetric)
	r.Get("/annual-visits/regions", AnnualVisitsByRegion)
	r.Get("/annual-visits/top", TopParksByYear)

	r.Get("/visits/parks/average-monthly", AverageMonthlyVisits)
	r.Get("/visits/parks/above-system-average", ParksAboveSystemAverage)
	r.Get("/visits/parks/variability", ParkVisitVariability)
	r.Get("/visits/peak-season/above-threshold", PeakSeasonAboveThreshold)

	r.Get("/regions/{region_id}/growth", RegionGrowth)

	r.Get("/metadata/years", AvailableYears)
}
