package outbound

import "context"

type SynthesizeRequest struct {
	Text      string
	SpeakerID int
}

type SpeechSynthesizerPort interface {
	Version(ctx context.Context) (string, error)
	Synthesize(ctx context.Context, req SynthesizeRequest) ([]byte, error)
}
