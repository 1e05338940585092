package adapters

import (
	"slide-narrator/application/ports/outbound"
	"slide-narrator/domain"
)

// logEventPublisher logs each event and hands it on to next.
type logEventPublisher struct {
	logger outbound.LoggerPort
	next   []outbound.BuildEventPublisherPort
}

func NewLogEventPublisher(logger outbound.LoggerPort, next ...outbound.BuildEventPublisherPort) outbound.BuildEventPublisherPort {
	return &logEventPublisher{
		logger: logger,
		next:   next,
	}
}

func (l *logEventPublisher) Publish(event domain.BuildEvent) {
	for _, publisher := range l.next {
		publisher.Publish(event)
	}

	fields := map[string]interface{}{
		"build_id": event.BuildID,
		"stage":    event.Stage,
	}
	if event.Page > 0 {
		fields["page"] = event.Page
	}
	if event.Stage == domain.FailedStage {
		l.logger.WarnWithFields(event.Message, fields)
		return
	}
	l.logger.InfoWithFields(event.Message, fields)
}
