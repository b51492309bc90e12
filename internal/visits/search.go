package visits

import (
	"golang.org/x/text/language"
	"golang.org/x/text/search"
)

var nameMatcher = search.New(language.English, search.IgnoreCase)

// nameContains reports whether the park name contains the search term under
// case folding. Used for the app-side name filter that runs after rank
// assignment, where a SQL LIKE is no longer available.
func nameContains(name, term string) bool {
	if term == "" {
		return true
	}
	start, _ := nameMatcher.IndexString(name, term)
	return start >= 0
}
