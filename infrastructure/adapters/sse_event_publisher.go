package adapters

import (
	"net/http"
	"sort"
	"sync"

	"github.com/donovanhide/eventsource"

	"slide-narrator/application/ports/outbound"
	"slide-narrator/domain"
)

// buildEventRepository replays the events of a build to late subscribers.
// Event ids are zero padded so lexical order matches emission order.
type buildEventRepository struct {
	mu     sync.RWMutex
	events map[string][]eventsource.Event
}

func newBuildEventRepository() *buildEventRepository {
	return &buildEventRepository{
		events: make(map[string][]eventsource.Event),
	}
}

func (r *buildEventRepository) add(channel string, event eventsource.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events[channel] = append(r.events[channel], event)
}

func (r *buildEventRepository) Replay(channel, id string) chan eventsource.Event {
	r.mu.RLock()
	events := r.events[channel]
	start := 0
	if id != "" {
		start = sort.Search(len(events), func(i int) bool {
			return events[i].Id() > id
		})
	}
	pending := make([]eventsource.Event, len(events)-start)
	copy(pending, events[start:])
	r.mu.RUnlock()

	out := make(chan eventsource.Event, len(pending))
	for _, event := range pending {
		out <- event
	}
	close(out)
	return out
}

// SSEEventPublisher streams build events over server-sent events.
type SSEEventPublisher struct {
	server     *eventsource.Server
	repository *buildEventRepository
	logger     outbound.LoggerPort
	registered sync.Map
}

func NewSSEEventPublisher(logger outbound.LoggerPort) *SSEEventPublisher {
	server := eventsource.NewServer()
	server.AllowCORS = true
	server.ReplayAll = true

	return &SSEEventPublisher{
		server:     server,
		repository: newBuildEventRepository(),
		logger:     logger,
	}
}

func (p *SSEEventPublisher) Publish(event domain.BuildEvent) {
	p.register(event.BuildID)
	p.repository.add(event.BuildID, event)
	p.server.Publish([]string{event.BuildID}, event)

	p.logger.DebugWithFields("build event published", map[string]interface{}{
		"build_id": event.BuildID,
		"stage":    event.Stage,
		"id":       event.EventID,
	})
}

func (p *SSEEventPublisher) Handler(buildID string) http.HandlerFunc {
	p.register(buildID)
	return p.server.Handler(buildID)
}

func (p *SSEEventPublisher) Close() {
	p.server.Close()
}

func (p *SSEEventPublisher) register(buildID string) {
	if _, loaded := p.registered.LoadOrStore(buildID, struct{}{}); !loaded {
		p.server.Register(buildID, p.repository)
	}
}
