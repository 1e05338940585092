package mock_generator

import (
	"context"
	"time"

	"slide-narrator/application/ports/outbound"
	"slide-narrator/application/services"
	"slide-narrator/channel_utils"
	"slide-narrator/domain"
)

type Runner struct {
	logger         outbound.LoggerPort
	eventReader    EventReader
	eventPublisher outbound.BuildEventPublisherPort
	fixture        string
}

func NewRunner(eventReader EventReader, eventPublisher outbound.BuildEventPublisherPort,
	fixture string, logger outbound.LoggerPort) *Runner {
	return &Runner{
		logger:         logger,
		eventReader:    eventReader,
		eventPublisher: eventPublisher,
		fixture:        fixture,
	}
}

// Run replays the fixture as the events of buildID. Every event is published
// before it is passed on.
func (r *Runner) Run(ctx context.Context, buildID string) (<-chan domain.BuildEvent, <-chan error) {
	eventCh, streamErrCh := r.createEventStream(ctx, buildID)

	published, publishErrCh := r.publish(ctx, eventCh)

	return published, channel_utils.MergeChannels(ctx, streamErrCh, publishErrCh)
}

func (r *Runner) createEventStream(ctx context.Context, buildID string) (<-chan domain.BuildEvent, <-chan error) {
	out := make(chan domain.BuildEvent)
	errCh := make(chan error, 1)

	mockEvents, err := r.eventReader.Read(r.fixture)
	if err != nil {
		r.logger.Error(err, "failed to read mock events")
		errCh <- err
		close(errCh)
		close(out)
		return out, errCh
	}

	go func() {
		defer close(out)
		defer close(errCh)
		for i, e := range mockEvents {
			if e.Delay > 0 {
				timer := time.NewTimer(time.Duration(e.Delay * float64(time.Second)))
				select {
				case <-ctx.Done():
					timer.Stop()
					return
				case <-timer.C:
				}
			}

			event := domain.BuildEvent{
				EventID: services.EventID(i + 1),
				BuildID: buildID,
				Stage:   e.Stage,
				Message: e.Message,
				Page:    e.Page,
				Time:    time.Now().UTC(),
			}
			select {
			case <-ctx.Done():
				return
			case out <- event:
			}
		}
		r.logger.Info("Finished replaying mock events.")
	}()

	return out, errCh
}

func (r *Runner) publish(ctx context.Context, in <-chan domain.BuildEvent) (<-chan domain.BuildEvent, <-chan error) {
	out := make(chan domain.BuildEvent)
	errCh := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errCh)
		for event := range in {
			r.eventPublisher.Publish(event)
			select {
			case <-ctx.Done():
				errCh <- ctx.Err()
				return
			case out <- event:
			}
		}
	}()

	return out, errCh
}
