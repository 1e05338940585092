package services

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync"

	"slide-narrator/application/ports/inbound"
	"slide-narrator/application/ports/outbound"
	"slide-narrator/domain"
)

type videoComposer struct {
	logger       outbound.LoggerPort
	videoCreator outbound.SegmentVideoCreator
	concatenator outbound.ConcatenateVideosPort
	workerPool   outbound.TaskDispatcher
	tempDir      string
}

func NewVideoComposer(logger outbound.LoggerPort, videoCreator outbound.SegmentVideoCreator,
	concatenator outbound.ConcatenateVideosPort, workerPool outbound.TaskDispatcher, tempDir string) inbound.VideoComposerPort {
	return &videoComposer{
		logger:       logger,
		videoCreator: videoCreator,
		concatenator: concatenator,
		workerPool:   workerPool,
		tempDir:      tempDir,
	}
}

func (s *videoComposer) Compose(ctx context.Context, params inbound.ComposeVideoParams) (*inbound.ComposeVideoResult, error) {
	if len(params.Pairs) == 0 {
		return nil, inbound.ErrNoPairs
	}
	if err := params.Settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid video settings: %w", err)
	}

	pairs := make([]domain.SlidePair, len(params.Pairs))
	copy(pairs, params.Pairs)
	sort.Sort(domain.SlidePairsAscByNumber(pairs))

	segmentDir, err := os.MkdirTemp(s.tempDir, "narrator-segments-")
	if err != nil {
		s.logger.Error(err, "Failed to create segment directory")
		return nil, err
	}
	defer func() {
		if err := os.RemoveAll(segmentDir); err != nil {
			s.logger.Error(err, "Failed to remove segment directory")
		}
	}()

	s.logger.InfoWithFields("composing video", map[string]interface{}{
		"slides": len(pairs),
		"output": params.OutputFile,
	})

	segments, err := s.createSegments(ctx, pairs, params, segmentDir)
	if err != nil {
		return nil, err
	}

	if err := s.concatenator.Concatenate(ctx, segments, params.OutputFile); err != nil {
		return nil, err
	}

	info, err := os.Stat(params.OutputFile)
	if err != nil {
		s.logger.Error(err, "Failed to stat composed video")
		return nil, err
	}

	var total float64
	for _, segment := range segments {
		total += segment.Duration
	}

	s.logger.InfoWithFields("video composed", map[string]interface{}{
		"output":   params.OutputFile,
		"duration": total,
		"slides":   len(segments),
		"size":     info.Size(),
	})

	return &inbound.ComposeVideoResult{
		OutputFile: params.OutputFile,
		Duration:   total,
		Slides:     len(segments),
		Size:       info.Size(),
	}, nil
}

// createSegments encodes one clip per pair on the worker pool. The first
// failure cancels the others.
func (s *videoComposer) createSegments(ctx context.Context, pairs []domain.SlidePair, params inbound.ComposeVideoParams, segmentDir string) ([]domain.VideoSegment, error) {
	newCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	segments := make([]domain.VideoSegment, 0, len(pairs))

	fail := func(err error) {
		mu.Lock()
		defer mu.Unlock()
		if firstErr == nil {
			firstErr = err
			cancel()
		}
	}

	settings := params.Settings
	for i, pair := range pairs {
		req := outbound.CreateSegmentRequest{
			Pair:       pair,
			FPS:        settings.FPS,
			Width:      settings.Width(),
			Height:     settings.Height(),
			Codec:      settings.Codec,
			AudioCodec: settings.AudioCodec,
			OutputDir:  segmentDir,
		}
		if i > 0 {
			req.LeadSeconds = settings.PauseBefore
		}
		if i < len(pairs)-1 {
			req.TrailSeconds = settings.PauseAfter
		}

		wg.Add(1)
		err := s.workerPool.Submit(func() {
			defer wg.Done()
			if newCtx.Err() != nil {
				return
			}

			resp, err := s.videoCreator.Create(newCtx, req)
			if err != nil {
				fail(fmt.Errorf("failed to create segment for page %d: %w", req.Pair.Number, err))
				return
			}

			mu.Lock()
			segments = append(segments, domain.VideoSegment{
				Number:   req.Pair.Number,
				FileName: resp.FileName,
				Duration: resp.Duration,
			})
			mu.Unlock()
		})
		if err != nil {
			wg.Done()
			fail(err)
			break
		}
	}

	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sort.Sort(domain.VideoSegmentsAscByNumber(segments))
	return segments, nil
}
