package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slide-narrator/application/ports/inbound"
	"slide-narrator/config"
	"slide-narrator/domain"
	"slide-narrator/infrastructure/adapters"
)

type fakeImageRenderer struct {
	pages int
	err   error
}

func (f *fakeImageRenderer) Render(ctx context.Context, params inbound.RenderImagesParams) ([]domain.PageImage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.err != nil {
		return nil, f.err
	}
	if err := os.MkdirAll(params.OutputDir, 0o755); err != nil {
		return nil, err
	}
	images := make([]domain.PageImage, 0, f.pages)
	for i := 1; i <= f.pages; i++ {
		name := filepath.Join(params.OutputDir, fmt.Sprintf("page.%03d.png", i))
		if err := os.WriteFile(name, []byte("png"), 0o644); err != nil {
			return nil, err
		}
		images = append(images, domain.PageImage{Number: i, FileName: name})
	}
	return images, nil
}

type pipelineFixture struct {
	pipeline  inbound.BuildPipelinePort
	renderer  *fakeImageRenderer
	events    *fakeEventPublisher
	recorder  *fakeRecorder
	slidePath string
	outputDir string
}

func newPipelineFixture(t *testing.T, slide string) *pipelineFixture {
	t.Helper()
	return newPipelineFixtureOnPool(t, slide, testPool(t, 4))
}

func newPipelineFixtureOnPool(t *testing.T, slide string, pool *ants.Pool) *pipelineFixture {
	t.Helper()
	logger := testLogger()
	store := adapters.NewLocalMediaStore(logger)

	dir := t.TempDir()
	slidePath := filepath.Join(dir, "slide.md")
	require.NoError(t, os.WriteFile(slidePath, []byte(slide), 0o644))

	f := &pipelineFixture{
		renderer:  &fakeImageRenderer{pages: 3},
		events:    &fakeEventPublisher{},
		recorder:  &fakeRecorder{},
		slidePath: slidePath,
		outputDir: filepath.Join(dir, "output"),
	}
	f.pipeline = NewBuildPipeline(logger,
		f.renderer,
		NewSlideNoteExtractor(logger),
		NewNarrationGenerator(logger, &fakeSynthesizer{}, store, pool, 2, 0),
		NewSlidePairer(logger, store, config.DefaultInputSettings()),
		NewVideoComposer(logger, &fakeSegmentCreator{}, &fakeConcatenator{}, pool, dir),
		adapters.NewLocalVideoPublisher(logger),
		f.recorder,
		f.events,
		BuildPipelineConfig{SpeakerID: 3, VideoName: "presentation.mp4", VideoSettings: config.DefaultVideoSettings()},
	)
	return f
}

const threePageDeck = "---\nmarp: true\n---\n# One\n<!-- first -->\n---\n# Two\n---\n# Three\n<!-- third -->\n"

func TestBuildPipeline_StartBuild(t *testing.T) {
	f := newPipelineFixture(t, threePageDeck)

	result, err := f.pipeline.StartBuild(context.Background(), inbound.StartBuildParams{
		BuildID:   "build-1",
		SlidePath: f.slidePath,
		OutputDir: f.outputDir,
	})
	require.NoError(t, err)

	assert.Equal(t, "build-1", result.BuildID)
	assert.Equal(t, 2, result.Pages)
	assert.Equal(t, 2, result.Pairs)
	assert.InDelta(t, 2.75+2.75, result.Duration, 1e-9)
	assert.Equal(t, filepath.Join(f.outputDir, "presentation.mp4"), result.VideoLocation)
	assert.FileExists(t, filepath.Join(f.outputDir, "audio", "slide_page_01.wav"))
	assert.FileExists(t, filepath.Join(f.outputDir, "audio", "slide_page_03.wav"))

	assert.Equal(t, []domain.BuildStage{
		domain.RenderStage,
		domain.NarrateStage,
		domain.PairStage,
		domain.ComposeStage,
		domain.PublishStage,
		domain.RecordStage,
		domain.CompletedStage,
	}, f.events.stages())

	for i, event := range f.events.events {
		assert.Equal(t, EventID(i+1), event.EventID)
		assert.Equal(t, "build-1", event.BuildID)
	}

	record := f.recorder.last()
	assert.Equal(t, domain.BuildSucceeded, record.Status)
	assert.Equal(t, result.VideoLocation, record.VideoLocation)
	assert.Equal(t, 2, record.Pairs)
	assert.Equal(t, domain.BuildRunning, f.recorder.records[0].Status)
}

func TestBuildPipeline_NoNotes(t *testing.T) {
	f := newPipelineFixture(t, "# One\n---\n# Two\n")

	_, err := f.pipeline.StartBuild(context.Background(), inbound.StartBuildParams{
		BuildID:   "build-2",
		SlidePath: f.slidePath,
		OutputDir: f.outputDir,
	})
	assert.ErrorIs(t, err, ErrNoNotes)

	last := f.events.events[len(f.events.events)-1]
	assert.Equal(t, domain.FailedStage, last.Stage)
	assert.Equal(t, domain.BuildFailed, f.recorder.last().Status)
	assert.NotEmpty(t, f.recorder.last().Error)
}

func TestBuildPipeline_RenderFailure(t *testing.T) {
	f := newPipelineFixture(t, threePageDeck)
	f.renderer.err = errors.New("npx not found")

	_, err := f.pipeline.StartBuild(context.Background(), inbound.StartBuildParams{
		BuildID:   "build-3",
		SlidePath: f.slidePath,
		OutputDir: f.outputDir,
	})
	assert.ErrorContains(t, err, "render: npx not found")
	assert.Equal(t, []domain.BuildStage{domain.RenderStage, domain.FailedStage}, f.events.stages())
}

func TestBuildPipeline_CancelledBuildRecordsFailure(t *testing.T) {
	f := newPipelineFixture(t, threePageDeck)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.pipeline.StartBuild(ctx, inbound.StartBuildParams{
		BuildID:   "build-4",
		SlidePath: f.slidePath,
		OutputDir: f.outputDir,
	})
	assert.ErrorIs(t, err, context.Canceled)

	record := f.recorder.last()
	assert.Equal(t, domain.BuildFailed, record.Status)
	assert.Contains(t, record.Error, context.Canceled.Error())
	assert.False(t, record.FinishedAt.IsZero())

	last := f.events.events[len(f.events.events)-1]
	assert.Equal(t, domain.FailedStage, last.Stage)
}

func TestBuildPipeline_SmallPools(t *testing.T) {
	for _, tt := range []struct {
		name     string
		poolSize int
		builds   int
	}{
		{name: "single worker", poolSize: 1, builds: 1},
		{name: "more builds than workers", poolSize: 2, builds: 4},
	} {
		t.Run(tt.name, func(t *testing.T) {
			pool := testPool(t, tt.poolSize)
			fixtures := make([]*pipelineFixture, tt.builds)
			for i := range fixtures {
				fixtures[i] = newPipelineFixtureOnPool(t, threePageDeck, pool)
			}

			errs := make([]error, tt.builds)
			var wg sync.WaitGroup
			for i, f := range fixtures {
				wg.Add(1)
				go func(i int, f *pipelineFixture) {
					defer wg.Done()
					_, errs[i] = f.pipeline.StartBuild(context.Background(), inbound.StartBuildParams{
						BuildID:   fmt.Sprintf("build-%d", i),
						SlidePath: f.slidePath,
						OutputDir: f.outputDir,
					})
				}(i, f)
			}

			done := make(chan struct{})
			go func() {
				wg.Wait()
				close(done)
			}()
			select {
			case <-done:
			case <-time.After(10 * time.Second):
				t.Fatalf("builds did not finish; running=%d free=%d", pool.Running(), pool.Free())
			}

			for i, err := range errs {
				assert.NoError(t, err, "build %d", i)
				assert.Equal(t, domain.BuildSucceeded, fixtures[i].recorder.last().Status)
			}
		})
	}
}

func TestEventID_Ordering(t *testing.T) {
	assert.Less(t, EventID(9), EventID(10))
	assert.Equal(t, "00000042", EventID(42))
}
