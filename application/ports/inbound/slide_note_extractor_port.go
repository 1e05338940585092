package inbound

import (
	"context"

	"slide-narrator/domain"
)

type SlideNoteExtractorPort interface {
	Extract(ctx context.Context, slidePath string) ([]domain.Page, error)
	Parse(content string) []domain.Page
}
