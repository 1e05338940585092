package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"slide-narrator/application/ports/inbound"
	"slide-narrator/application/ports/outbound"
	"slide-narrator/domain"
)

var ErrNoNotes = errors.New("no speaker notes found")

// PageNarrationError marks a page whose synthesis failed. The remaining pages
// are still narrated.
type PageNarrationError struct {
	Page int
	Err  error
}

func (e *PageNarrationError) Error() string {
	return fmt.Sprintf("page %d: %v", e.Page, e.Err)
}

func (e *PageNarrationError) Unwrap() error {
	return e.Err
}

type narrationGenerator struct {
	logger       outbound.LoggerPort
	synthesizer  outbound.SpeechSynthesizerPort
	mediaStore   outbound.MediaStorePort
	workerPool   outbound.TaskDispatcher
	concurrency  int
	pauseBetween time.Duration
}

func NewNarrationGenerator(logger outbound.LoggerPort, synthesizer outbound.SpeechSynthesizerPort,
	mediaStore outbound.MediaStorePort, workerPool outbound.TaskDispatcher, concurrency int,
	pauseBetween time.Duration) inbound.NarrationGeneratorPort {
	if concurrency < 1 {
		concurrency = 1
	}
	return &narrationGenerator{
		logger:       logger,
		synthesizer:  synthesizer,
		mediaStore:   mediaStore,
		workerPool:   workerPool,
		concurrency:  concurrency,
		pauseBetween: pauseBetween,
	}
}

func (s *narrationGenerator) CheckEngine(ctx context.Context) error {
	version, err := s.synthesizer.Version(ctx)
	if err != nil {
		s.logger.Error(err, "speech engine is not reachable")
		return fmt.Errorf("speech engine is not reachable: %w", err)
	}
	s.logger.InfoWithFields("speech engine available", map[string]interface{}{
		"version": version,
	})
	return nil
}

func (s *narrationGenerator) Generate(ctx context.Context, pages <-chan domain.Page, params inbound.GenerateNarrationParams) (<-chan domain.PageAudio, <-chan error) {
	out := make(chan domain.PageAudio)
	errCh := make(chan error, 5)

	newCtx, cancel := context.WithCancel(ctx)

	// the dispatch loop waits on its own page tasks, so it stays off the pool
	go func() {
		defer close(out)
		defer close(errCh)
		defer cancel()

		var wg sync.WaitGroup
		slots := make(chan struct{}, s.concurrency)

	loop:
		for page := range pages {
			select {
			case <-newCtx.Done():
				break loop
			case slots <- struct{}{}:
			}

			wg.Add(1)
			p := page
			err := s.workerPool.Submit(func() {
				defer wg.Done()
				defer func() { <-slots }()

				audio, err := s.narratePage(newCtx, p, params)
				if err != nil {
					select {
					case errCh <- &PageNarrationError{Page: p.Number, Err: err}:
					case <-newCtx.Done():
					}
					return
				}

				select {
				case out <- *audio:
				case <-newCtx.Done():
					return
				}

				s.pause(newCtx)
			})
			if err != nil {
				wg.Done()
				<-slots
				select {
				case errCh <- err:
				case <-newCtx.Done():
				}
				break loop
			}
		}

		wg.Wait()
	}()

	return out, errCh
}

func (s *narrationGenerator) narratePage(ctx context.Context, page domain.Page, params inbound.GenerateNarrationParams) (*domain.PageAudio, error) {
	s.logger.DebugWithFields("synthesizing page notes", map[string]interface{}{
		"page": page.Number,
		"text": preview(page.Notes, 100),
	})

	wav, err := s.synthesizer.Synthesize(ctx, outbound.SynthesizeRequest{
		Text:      page.Notes,
		SpeakerID: params.SpeakerID,
	})
	if err != nil {
		s.logger.ErrorWithFields(err, "Failed to synthesize page notes", map[string]interface{}{
			"page": page.Number,
		})
		return nil, err
	}

	fileName, err := s.mediaStore.Save(ctx, params.OutputDir, AudioFileName(page.Number), bytes.NewReader(wav))
	if err != nil {
		s.logger.ErrorWithFields(err, "Failed to save page audio", map[string]interface{}{
			"page": page.Number,
		})
		return nil, err
	}

	s.logger.InfoWithFields("page audio saved", map[string]interface{}{
		"page": page.Number,
		"file": fileName,
	})

	return &domain.PageAudio{
		Number:   page.Number,
		FileName: fileName,
		Text:     page.Notes,
	}, nil
}

// pause spaces out consecutive requests from the same worker slot.
func (s *narrationGenerator) pause(ctx context.Context) {
	if s.pauseBetween <= 0 {
		return
	}
	timer := time.NewTimer(s.pauseBetween)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}

func AudioFileName(page int) string {
	return fmt.Sprintf("slide_page_%02d.wav", page)
}

func preview(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "..."
}
