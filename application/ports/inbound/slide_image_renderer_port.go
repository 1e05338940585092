package inbound

import (
	"context"

	"slide-narrator/domain"
)

type RenderImagesParams struct {
	SlidePath string
	OutputDir string
}

type SlideImageRendererPort interface {
	Render(ctx context.Context, params RenderImagesParams) ([]domain.PageImage, error)
}
