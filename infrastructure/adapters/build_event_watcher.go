package adapters

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/donovanhide/eventsource"

	"slide-narrator/application/ports/outbound"
	"slide-narrator/domain"
)

const MaxRetries = 3

// BuildEventWatcher follows the event stream of a build started on a remote server.
type BuildEventWatcher interface {
	Watch(ctx context.Context, eventsURL string) (<-chan domain.BuildEvent, <-chan error)
}

type buildEventWatcher struct {
	logger     outbound.LoggerPort
	workerPool outbound.TaskDispatcher
	tokens     TokenSource
}

func NewBuildEventWatcher(workerPool outbound.TaskDispatcher, tokens TokenSource, logger outbound.LoggerPort) BuildEventWatcher {
	return &buildEventWatcher{
		logger:     logger,
		workerPool: workerPool,
		tokens:     tokens,
	}
}

func (w *buildEventWatcher) Watch(ctx context.Context, eventsURL string) (<-chan domain.BuildEvent, <-chan error) {
	out := make(chan domain.BuildEvent)
	errCh := make(chan error, 1)

	err := w.workerPool.Submit(func() {
		defer close(out)
		defer close(errCh)

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, eventsURL, nil)
		if err != nil {
			w.logger.Error(err, "Failed to create HTTP request for build events")
			errCh <- err
			return
		}
		token, err := w.tokens.Token(ctx)
		if err != nil {
			w.logger.Error(err, "Failed to obtain an access token")
			errCh <- err
			return
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}

		stream, err := eventsource.SubscribeWithRequest("", req)
		if err != nil {
			w.logger.Error(err, "Failed to subscribe to build events")
			errCh <- err
			return
		}
		defer stream.Close()

		retryCount := 0
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-stream.Events:
				if !ok {
					return
				}
				retryCount = 0
				event, err := w.decode(ev)
				if err != nil {
					errCh <- err
					return
				}
				select {
				case out <- event:
				case <-ctx.Done():
					return
				}
				if event.Stage.Terminal() {
					return
				}
			case err := <-stream.Errors:
				if err == io.EOF {
					w.logger.Info("Build event stream closed")
					return
				} else if retryCount < MaxRetries {
					w.logger.ErrorWithFields(err, "Error occurred during streaming, retrying", map[string]interface{}{
						"retry_count": retryCount})
					retryCount++
					continue
				}
				w.logger.Error(err, "Error occurred during streaming, max retries reached")
				errCh <- err
				return
			}
		}
	})
	if err != nil {
		w.logger.Error(err, "Failed to submit task to worker pool")
		errCh <- err
		close(errCh)
		close(out)
	}

	return out, errCh
}

func (w *buildEventWatcher) decode(ev eventsource.Event) (domain.BuildEvent, error) {
	var event domain.BuildEvent
	if err := json.Unmarshal([]byte(ev.Data()), &event); err != nil {
		w.logger.ErrorWithFields(err, "Failed to unmarshal build event", map[string]interface{}{
			"id":   ev.Id(),
			"data": ev.Data(),
		})
		return domain.BuildEvent{}, err
	}
	return event, nil
}
