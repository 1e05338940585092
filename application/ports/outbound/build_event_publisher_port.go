package outbound

import "slide-narrator/domain"

type BuildEventPublisherPort interface {
	Publish(event domain.BuildEvent)
}
