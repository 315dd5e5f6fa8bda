package weather

import "context"

// Fetcher is the weather provider collaborator.
// It receives the caller's original, unrounded coordinates.
type Fetcher interface {
	Fetch(ctx context.Context, lat, lon float64) (Observation, error)
}

// FetcherFunc adapts a plain function to Fetcher.
type FetcherFunc func(ctx context.Context, lat, lon float64) (Observation, error)

func (f FetcherFunc) Fetch(ctx context.Context, lat, lon float64) (Observation, error) {
	return f(ctx, lat, lon)
}
