package features

import "context"

// Extractor is the feature-extraction provider: given an image reference it
// answers every question in Questions with a raw string.
type Extractor interface {
	Extract(ctx context.Context, imageRef string) (Answers, error)
}

// ExtractorFunc adapts a plain function to Extractor.
type ExtractorFunc func(ctx context.Context, imageRef string) (Answers, error)

func (f ExtractorFunc) Extract(ctx context.Context, imageRef string) (Answers, error) {
	return f(ctx, imageRef)
}
