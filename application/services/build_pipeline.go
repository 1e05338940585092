package services

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"slide-narrator/application/ports/inbound"
	"slide-narrator/application/ports/outbound"
	"slide-narrator/channel_utils"
	"slide-narrator/config"
	"slide-narrator/domain"
)

type BuildPipelineConfig struct {
	SpeakerID     int
	VideoName     string
	VideoSettings config.VideoSettings
}

type buildPipeline struct {
	logger         outbound.LoggerPort
	imageRenderer  inbound.SlideImageRendererPort
	noteExtractor  inbound.SlideNoteExtractorPort
	narration      inbound.NarrationGeneratorPort
	pairer         inbound.SlidePairerPort
	composer       inbound.VideoComposerPort
	videoPublisher outbound.VideoPublisherPort
	buildRecorder  outbound.BuildRecorderPort
	eventPublisher outbound.BuildEventPublisherPort
	pipelineConfig BuildPipelineConfig
	now            func() time.Time
}

func NewBuildPipeline(logger outbound.LoggerPort, imageRenderer inbound.SlideImageRendererPort,
	noteExtractor inbound.SlideNoteExtractorPort, narration inbound.NarrationGeneratorPort,
	pairer inbound.SlidePairerPort, composer inbound.VideoComposerPort,
	videoPublisher outbound.VideoPublisherPort, buildRecorder outbound.BuildRecorderPort,
	eventPublisher outbound.BuildEventPublisherPort, pipelineConfig BuildPipelineConfig) inbound.BuildPipelinePort {
	return &buildPipeline{
		logger:         logger,
		imageRenderer:  imageRenderer,
		noteExtractor:  noteExtractor,
		narration:      narration,
		pairer:         pairer,
		composer:       composer,
		videoPublisher: videoPublisher,
		buildRecorder:  buildRecorder,
		eventPublisher: eventPublisher,
		pipelineConfig: pipelineConfig,
		now:            time.Now,
	}
}

func (s *buildPipeline) StartBuild(ctx context.Context, params inbound.StartBuildParams) (*inbound.BuildResult, error) {
	newCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	logger := s.logger.WithFields(map[string]interface{}{"build_id": params.BuildID})

	events := newBuildEvents(params.BuildID, s.eventPublisher, s.now)
	record := domain.BuildRecord{
		BuildID:   params.BuildID,
		SlidePath: params.SlidePath,
		Status:    domain.BuildRunning,
		StartedAt: s.now().UTC(),
	}
	s.saveRecord(newCtx, record)

	result, err := s.run(newCtx, params, events, &record)
	record.FinishedAt = s.now().UTC()
	if err != nil {
		cancel()
		record.Status = domain.BuildFailed
		record.Error = err.Error()
		// the build context may already be cancelled
		s.saveRecord(context.WithoutCancel(ctx), record)
		events.emit(domain.FailedStage, 0, err.Error())
		logger.Error(err, "build failed")
		return nil, err
	}

	record.Status = domain.BuildSucceeded
	events.emit(domain.RecordStage, 0, "saving build record")
	s.saveRecord(newCtx, record)
	events.emit(domain.CompletedStage, 0, result.VideoLocation)

	logger.InfoWithFields("build completed", map[string]interface{}{
		"location": result.VideoLocation,
		"pages":    result.Pages,
		"pairs":    result.Pairs,
		"duration": result.Duration,
	})

	return result, nil
}

func (s *buildPipeline) run(ctx context.Context, params inbound.StartBuildParams, events *buildEvents, record *domain.BuildRecord) (*inbound.BuildResult, error) {
	imagesDir := filepath.Join(params.OutputDir, "images")
	audioDir := filepath.Join(params.OutputDir, "audio")
	videoFile := filepath.Join(params.OutputDir, s.pipelineConfig.VideoName)

	events.emit(domain.RenderStage, 0, "rendering slides")
	images, err := s.imageRenderer.Render(ctx, inbound.RenderImagesParams{
		SlidePath: params.SlidePath,
		OutputDir: imagesDir,
	})
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	events.emit(domain.RenderStage, 0, fmt.Sprintf("rendered %d images", len(images)))

	pages, err := s.noteExtractor.Extract(ctx, params.SlidePath)
	if err != nil {
		return nil, fmt.Errorf("extract notes: %w", err)
	}
	if len(pages) == 0 {
		return nil, ErrNoNotes
	}
	record.Pages = len(pages)

	events.emit(domain.NarrateStage, 0, fmt.Sprintf("narrating %d pages", len(pages)))
	summary, err := s.narrate(ctx, pages, audioDir, events)
	if err != nil {
		return nil, fmt.Errorf("narrate: %w", err)
	}
	events.emit(domain.NarrateStage, 0, fmt.Sprintf("narrated %d/%d pages", len(summary.Audios), len(pages)))

	events.emit(domain.PairStage, 0, "matching images with audio")
	paired, err := s.pairer.Pair(ctx, imagesDir, audioDir)
	if err != nil {
		return nil, fmt.Errorf("pair: %w", err)
	}
	record.Pairs = len(paired.Pairs)

	events.emit(domain.ComposeStage, 0, fmt.Sprintf("composing %d slides", len(paired.Pairs)))
	composed, err := s.composer.Compose(ctx, inbound.ComposeVideoParams{
		Pairs:      paired.Pairs,
		OutputFile: videoFile,
		Settings:   s.pipelineConfig.VideoSettings,
	})
	if err != nil {
		return nil, fmt.Errorf("compose: %w", err)
	}
	record.Duration = composed.Duration

	events.emit(domain.PublishStage, 0, "publishing video")
	published, err := s.videoPublisher.Publish(ctx, outbound.PublishVideoRequest{
		VideoFileName: composed.OutputFile,
		BuildID:       params.BuildID,
		Metadata: map[string]string{
			"slide":    filepath.Base(params.SlidePath),
			"pairs":    strconv.Itoa(len(paired.Pairs)),
			"duration": strconv.FormatFloat(composed.Duration, 'f', 2, 64),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("publish: %w", err)
	}
	record.VideoLocation = published.Location

	return &inbound.BuildResult{
		BuildID:       params.BuildID,
		VideoLocation: published.Location,
		Pages:         len(pages),
		Pairs:         len(paired.Pairs),
		Duration:      composed.Duration,
	}, nil
}

func (s *buildPipeline) narrate(ctx context.Context, pages []domain.Page, audioDir string, events *buildEvents) (*NarrationSummary, error) {
	if err := s.narration.CheckEngine(ctx); err != nil {
		return nil, err
	}

	pageCh, feedErrCh := FeedPages(ctx, pages)
	audioCh, narrateErrCh := s.narration.Generate(ctx, pageCh, inbound.GenerateNarrationParams{
		OutputDir: audioDir,
		SpeakerID: s.pipelineConfig.SpeakerID,
	})

	errCh := channel_utils.MergeChannels(ctx, feedErrCh, narrateErrCh)

	summary, err := CollectNarration(ctx, audioCh, errCh,
		func(audio domain.PageAudio) {
			events.emit(domain.NarrateStage, audio.Number, "page narrated")
		},
		func(failure *PageNarrationError) {
			events.emit(domain.NarrateStage, failure.Page, "page skipped: "+failure.Err.Error())
		},
	)
	if err != nil {
		channel_utils.Drain(audioCh)
		channel_utils.Drain(errCh)
		return nil, err
	}

	return summary, nil
}

// FeedPages turns a slice into the page stream consumed by the narration stage.
func FeedPages(ctx context.Context, pages []domain.Page) (<-chan domain.Page, <-chan error) {
	out := make(chan domain.Page)
	errCh := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errCh)
		for _, page := range pages {
			select {
			case out <- page:
			case <-ctx.Done():
				errCh <- ctx.Err()
				return
			}
		}
	}()

	return out, errCh
}

func (s *buildPipeline) saveRecord(ctx context.Context, record domain.BuildRecord) {
	if err := s.buildRecorder.Save(ctx, record); err != nil {
		s.logger.ErrorWithFields(err, "Failed to save build record", map[string]interface{}{
			"build_id": record.BuildID,
			"status":   record.Status,
		})
	}
}

// buildEvents numbers the events of one build so SSE replay keeps their order.
type buildEvents struct {
	mu        sync.Mutex
	seq       int
	buildID   string
	publisher outbound.BuildEventPublisherPort
	now       func() time.Time
}

func newBuildEvents(buildID string, publisher outbound.BuildEventPublisherPort, now func() time.Time) *buildEvents {
	return &buildEvents{
		buildID:   buildID,
		publisher: publisher,
		now:       now,
	}
}

func (e *buildEvents) emit(stage domain.BuildStage, page int, message string) {
	e.mu.Lock()
	e.seq++
	event := domain.BuildEvent{
		EventID: EventID(e.seq),
		BuildID: e.buildID,
		Stage:   stage,
		Message: message,
		Page:    page,
		Time:    e.now().UTC(),
	}
	e.mu.Unlock()

	e.publisher.Publish(event)
}

// EventID pads seq so ids compare in order as strings.
func EventID(seq int) string {
	return fmt.Sprintf("%08d", seq)
}
