package catalog

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/parkpulse/nps-backend/internal/db"
	gocache "github.com/patrickmn/go-cache"
)

// writeError emits the shared error contract: a JSON body with a detail field.
func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	fmt.Fprintf(w, "{\"detail\":%q}\n", msg)
}

// ListRegions returns all regions, ordered by region code. Cached because the
// dashboard requests the list on every page load to build its dropdowns.
func ListRegions(w http.ResponseWriter, r *http.Request) {
	if cached, ok := RefCache.Get(cacheKeyRegions); ok {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(cached)
		return
	}

	var regions []Region
	if err := db.DB.Order("region_id").Find(&regions).Error; err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch regions: "+err.Error())
		return
	}
	if len(regions) == 0 {
		writeError(w, http.StatusNotFound, "No regions found")
		return
	}

	RefCache.Set(cacheKeyRegions, regions, gocache.DefaultExpiration)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(regions)
}

// GetParkDetails returns the complete park record, including description,
// website, and boundary GeoJSON for the map overlay.
func GetParkDetails(w http.ResponseWriter, r *http.Request) {
	parkCode := strings.ToUpper(chi.URLParam(r, "park_code"))

	var park Park
	if err := db.DB.Preload("Region").First(&park, "park_code = ?", parkCode).Error; err != nil {
		writeError(w, http.StatusNotFound, "Park "+parkCode+" not found")
		return
	}

	out := ParkDetailOut{
		ParkCode:    park.ParkCode,
		ParkName:    park.ParkName,
		State:       strings.Join(park.States, ","),
		Designation: park.Designation,
		Latitude:    park.Latitude,
		Longitude:   park.Longitude,
		Description: park.Description,
		Website:     park.Website,
		Boundary:    park.Boundary,
	}
	if park.Region != nil {
		out.RegionID = &park.Region.RegionID
		out.RegionName = &park.Region.RegionName
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(out)
}
