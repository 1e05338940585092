package inbound

import (
	"context"
)

type StartBuildParams struct {
	BuildID   string
	SlidePath string
	OutputDir string
}

type BuildResult struct {
	BuildID       string
	VideoLocation string
	Pages         int
	Pairs         int
	Duration      float64
}

type BuildPipelinePort interface {
	StartBuild(ctx context.Context, params StartBuildParams) (*BuildResult, error)
}
