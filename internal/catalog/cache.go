package catalog

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// RefCache holds reference lookups that the dashboard requests on every page
// load (region list, year bounds). Entries expire after five minutes;
// FlushRefCache drops everything at once.
var RefCache = gocache.New(5*time.Minute, 10*time.Minute)

const (
	cacheKeyRegions = "regions"

	// CacheKeyYearBounds is shared with the metadata handler in visits.
	CacheKeyYearBounds = "year_bounds"
)

func FlushRefCache() {
	RefCache.Flush()
}
