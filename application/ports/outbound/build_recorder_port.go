package outbound

import (
	"context"

	"slide-narrator/domain"
)

type BuildRecorderPort interface {
	Save(ctx context.Context, record domain.BuildRecord) error
}
