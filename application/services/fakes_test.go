package services

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/panjf2000/ants/v2"
	"github.com/stretchr/testify/require"

	"slide-narrator/application/ports/outbound"
	"slide-narrator/domain"
	"slide-narrator/infrastructure/adapters"
)

func testLogger() outbound.LoggerPort {
	return adapters.NewZerologWrapper(io.Discard, nil)
}

// testPool is a blocking ants pool like the one cmd builds.
func testPool(t *testing.T, size int) *ants.Pool {
	t.Helper()
	pool, err := ants.NewPool(size)
	require.NoError(t, err)
	t.Cleanup(pool.Release)
	return pool
}

type fakeSynthesizer struct {
	mu         sync.Mutex
	failOn     map[string]error
	versionErr error
	calls      []outbound.SynthesizeRequest
}

func (f *fakeSynthesizer) Version(ctx context.Context) (string, error) {
	if f.versionErr != nil {
		return "", f.versionErr
	}
	return "0.14.0", nil
}

func (f *fakeSynthesizer) Synthesize(ctx context.Context, req outbound.SynthesizeRequest) ([]byte, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	f.mu.Unlock()
	if err, ok := f.failOn[req.Text]; ok {
		return nil, err
	}
	return []byte("RIFF" + req.Text), nil
}

type fakeSegmentCreator struct {
	mu       sync.Mutex
	requests []outbound.CreateSegmentRequest
	failPage int
}

func (f *fakeSegmentCreator) Create(ctx context.Context, req outbound.CreateSegmentRequest) (*outbound.CreateVideoResponse, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()
	if req.Pair.Number == f.failPage {
		return nil, errors.New("ffmpeg exited with code 1")
	}
	return &outbound.CreateVideoResponse{
		FileName: filepath.Join(req.OutputDir, filepath.Base(req.Pair.ImageFileName)+".mp4"),
		Duration: req.LeadSeconds + 2 + req.TrailSeconds,
	}, nil
}

func (f *fakeSegmentCreator) byPage() map[int]outbound.CreateSegmentRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[int]outbound.CreateSegmentRequest)
	for _, req := range f.requests {
		out[req.Pair.Number] = req
	}
	return out
}

type fakeConcatenator struct {
	segments []domain.VideoSegment
}

func (f *fakeConcatenator) Concatenate(ctx context.Context, segments []domain.VideoSegment, outputFile string) error {
	f.segments = segments
	if err := os.MkdirAll(filepath.Dir(outputFile), 0o755); err != nil {
		return err
	}
	return os.WriteFile(outputFile, []byte("mp4"), 0o644)
}

type fakeEventPublisher struct {
	mu     sync.Mutex
	events []domain.BuildEvent
}

func (f *fakeEventPublisher) Publish(event domain.BuildEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
}

func (f *fakeEventPublisher) stages() []domain.BuildStage {
	f.mu.Lock()
	defer f.mu.Unlock()
	stages := make([]domain.BuildStage, 0, len(f.events))
	for _, event := range f.events {
		if len(stages) == 0 || stages[len(stages)-1] != event.Stage {
			stages = append(stages, event.Stage)
		}
	}
	return stages
}

type fakeRecorder struct {
	mu      sync.Mutex
	records []domain.BuildRecord
}

func (f *fakeRecorder) Save(ctx context.Context, record domain.BuildRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, record)
	return nil
}

func (f *fakeRecorder) last() domain.BuildRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.records[len(f.records)-1]
}
