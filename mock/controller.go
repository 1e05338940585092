package mock_generator

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"slide-narrator/application/ports/outbound"
	"slide-narrator/infrastructure/gin_interface/dto"
)

type MockBuildController interface {
	CreateBuild(c *gin.Context)
	RegisterRoutes(g *gin.Engine)
}

type mockBuildController struct {
	ctx       context.Context
	logger    outbound.LoggerPort
	buildPool outbound.TaskDispatcher
	runner    *Runner
}

// NewMockBuildController replays fixture builds on buildPool until ctx is done.
func NewMockBuildController(ctx context.Context, logger outbound.LoggerPort, buildPool outbound.TaskDispatcher, runner *Runner) MockBuildController {
	return &mockBuildController{
		ctx:       ctx,
		logger:    logger,
		buildPool: buildPool,
		runner:    runner,
	}
}

// CreateBuild starts a fake build whose events come from the fixture, so
// clients of the event stream can be developed without marp or VOICEVOX.
func (m *mockBuildController) CreateBuild(c *gin.Context) {
	buildID := uuid.NewString()

	err := m.buildPool.Submit(func() {
		events, errCh := m.runner.Run(m.ctx, buildID)

		count := 0
		for range events {
			count++
		}
		for err := range errCh {
			m.logger.ErrorWithFields(err, "error in mock build", map[string]interface{}{
				"build_id": buildID,
			})
		}
		m.logger.InfoWithFields("mock build replayed", map[string]interface{}{
			"build_id": buildID,
			"events":   count,
		})
	})
	if err != nil {
		m.logger.Error(err, "failed to submit mock build")
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "too many builds in progress"})
		return
	}

	c.JSON(http.StatusAccepted, dto.CreateBuildResponse{
		BuildID:   buildID,
		EventsURL: dto.EventsURL(buildID),
	})
}

func (m *mockBuildController) RegisterRoutes(g *gin.Engine) {
	g.POST("/builds/mock", m.CreateBuild)
}
