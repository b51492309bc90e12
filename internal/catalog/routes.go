package catalog

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes attaches the catalog endpoints. Paths are fixed by the
// dashboard contract, so they register on the shared router rather than under
// a mount prefix.
func RegisterRoutes(r chi.Router) {
	r.Get("/regions/", ListRegions)
	r.Get("/parks/{park_code}/details", GetParkDetails)
}
