package inbound

import (
	"context"

	"slide-narrator/domain"
)

type GenerateNarrationParams struct {
	OutputDir string
	SpeakerID int
}

type NarrationGeneratorPort interface {
	// CheckEngine verifies the speech engine answers before any page is sent.
	CheckEngine(ctx context.Context) error
	Generate(ctx context.Context, pages <-chan domain.Page, params GenerateNarrationParams) (<-chan domain.PageAudio, <-chan error)
}
