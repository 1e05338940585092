package mock_generator

import (
	"context"

	"github.com/gin-gonic/gin"

	"slide-narrator/application/ports/outbound"
)

func Init(ctx context.Context, g *gin.Engine, buildPool outbound.TaskDispatcher, eventPublisher outbound.BuildEventPublisherPort,
	fixture string, logger outbound.LoggerPort) {
	eventReader := NewFileEventReader(logger)
	runner := NewRunner(eventReader, eventPublisher, fixture, logger)
	mockController := NewMockBuildController(ctx, logger, buildPool, runner)

	mockController.RegisterRoutes(g)
}
