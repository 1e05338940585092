package outbound

import (
	"context"
	"errors"
)

var ErrRendererUnavailable = errors.New("slide renderer is not available")

type RenderSlidesRequest struct {
	SlidePath string
	OutputDir string
}

type SlideRendererPort interface {
	Version(ctx context.Context) (string, error)
	// Render writes one PNG per slide page into OutputDir.
	Render(ctx context.Context, req RenderSlidesRequest) error
}
