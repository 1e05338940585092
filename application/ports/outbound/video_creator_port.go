package outbound

import (
	"context"

	"slide-narrator/domain"
)

type CreateSegmentRequest struct {
	Pair         domain.SlidePair
	LeadSeconds  float64
	TrailSeconds float64
	FPS          int
	Width        int
	Height       int
	Codec        string
	AudioCodec   string
	OutputDir    string
}

type CreateVideoResponse struct {
	FileName string
	Duration float64
}

type SegmentVideoCreator interface {
	Create(ctx context.Context, req CreateSegmentRequest) (*CreateVideoResponse, error)
}

type MediaProberPort interface {
	Duration(ctx context.Context, fileName string) (float64, error)
}
