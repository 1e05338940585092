package inbound

import (
	"context"

	"slide-narrator/config"
	"slide-narrator/domain"
)

type ComposeVideoParams struct {
	Pairs      []domain.SlidePair
	OutputFile string
	Settings   config.VideoSettings
}

type ComposeVideoResult struct {
	OutputFile string
	Duration   float64
	Slides     int
	Size       int64
}

type VideoComposerPort interface {
	Compose(ctx context.Context, params ComposeVideoParams) (*ComposeVideoResult, error)
}
