package outbound

import "context"

type PublishVideoRequest struct {
	VideoFileName string
	BuildID       string
	// Metadata is stored alongside the video where the store supports it.
	Metadata map[string]string
}

type PublishVideoResponse struct {
	Location    string
	StoreRegion string
}

type VideoPublisherPort interface {
	Publish(ctx context.Context, req PublishVideoRequest) (*PublishVideoResponse, error)
}
