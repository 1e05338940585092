package services

import (
	"context"
	"errors"
	"sort"

	"slide-narrator/domain"
)

type NarrationSummary struct {
	Audios   []domain.PageAudio
	Failures []*PageNarrationError
}

// CollectNarration drains a narration stage. Page failures are gathered and
// any other error aborts the collection. onAudio and onFailure may be nil.
func CollectNarration(ctx context.Context, audioCh <-chan domain.PageAudio, errCh <-chan error,
	onAudio func(domain.PageAudio), onFailure func(*PageNarrationError)) (*NarrationSummary, error) {
	summary := &NarrationSummary{
		Audios:   make([]domain.PageAudio, 0),
		Failures: make([]*PageNarrationError, 0),
	}

	for audioCh != nil || errCh != nil {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case audio, ok := <-audioCh:
			if !ok {
				audioCh = nil
				continue
			}
			summary.Audios = append(summary.Audios, audio)
			if onAudio != nil {
				onAudio(audio)
			}
		case err, ok := <-errCh:
			if !ok {
				errCh = nil
				continue
			}
			var pageErr *PageNarrationError
			if errors.As(err, &pageErr) {
				summary.Failures = append(summary.Failures, pageErr)
				if onFailure != nil {
					onFailure(pageErr)
				}
				continue
			}
			return nil, err
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sort.Slice(summary.Audios, func(i, j int) bool {
		return summary.Audios[i].Number < summary.Audios[j].Number
	})
	sort.Slice(summary.Failures, func(i, j int) bool {
		return summary.Failures[i].Page < summary.Failures[j].Page
	})

	return summary, nil
}
