package outbound

import (
	"context"

	"slide-narrator/domain"
)

type ConcatenateVideosPort interface {
	Concatenate(ctx context.Context, segments []domain.VideoSegment, outputFile string) error
}
