package adapters

import (
	"context"
	"os"
	"path/filepath"

	"slide-narrator/application/ports/outbound"
)

// localVideoPublisher leaves the video in the output directory.
type localVideoPublisher struct {
	logger outbound.LoggerPort
}

func NewLocalVideoPublisher(logger outbound.LoggerPort) outbound.VideoPublisherPort {
	return &localVideoPublisher{
		logger: logger,
	}
}

func (l *localVideoPublisher) Publish(ctx context.Context, req outbound.PublishVideoRequest) (*outbound.PublishVideoResponse, error) {
	if _, err := os.Stat(req.VideoFileName); err != nil {
		l.logger.Error(err, "video file is missing")
		return nil, err
	}

	location, err := filepath.Abs(req.VideoFileName)
	if err != nil {
		location = req.VideoFileName
	}

	return &outbound.PublishVideoResponse{
		Location: location,
	}, nil
}
