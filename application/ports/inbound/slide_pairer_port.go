package inbound

import (
	"context"
	"errors"

	"slide-narrator/domain"
)

var ErrNoPairs = errors.New("no matching image and audio pairs found")

type PairResult struct {
	Pairs         []domain.SlidePair
	MissingAudio  []int
	MissingImages []int
}

type SlidePairerPort interface {
	Pair(ctx context.Context, dirs ...string) (*PairResult, error)
}
