// Package geocode resolves free-text place queries to coordinates.
package geocode

import (
	"context"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

// Searcher is a read-only place lookup keyed by free text.
type Searcher interface {
	Name() string
	Search(ctx context.Context, query string) ([]weather.Place, error)
}
