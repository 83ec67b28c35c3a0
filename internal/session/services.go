package session

import (
	"context"
	"image"

	"photorelief/internal/depth"
)

// DepthEstimator supplies real depth for an image, replacing the luminance
// heuristic when available. Implementations are external services; failures
// are tolerated and the session falls back to luminance.
type DepthEstimator interface {
	EstimateDepth(ctx context.Context, img *image.NRGBA) (*depth.Field, error)
}

// BackFiller synthesizes a plausible back-face texture for an image.
// Like DepthEstimator it is best-effort; on failure the session keeps the
// mirrored front texture.
type BackFiller interface {
	FillBack(ctx context.Context, img *image.NRGBA) (*image.NRGBA, error)
}
