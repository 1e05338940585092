package controllers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"slide-narrator/application/ports/inbound"
	"slide-narrator/application/ports/outbound"
	"slide-narrator/domain"
	"slide-narrator/infrastructure/gin_interface/dto"
	"slide-narrator/middleware"
)

type BuildRecordReader interface {
	Get(buildID string) (domain.BuildRecord, bool)
}

type BuildEventStreamer interface {
	Handler(buildID string) http.HandlerFunc
}

type BuildsController interface {
	Health(c *gin.Context)
	CreateBuild(c *gin.Context)
	GetBuild(c *gin.Context)
	StreamEvents(c *gin.Context)
	RegisterRoutes(g *gin.Engine)
}

var errOutsideWorkspace = errors.New("path is outside the workspace")

type buildsController struct {
	ctx           context.Context
	logger        outbound.LoggerPort
	buildPool     outbound.TaskDispatcher
	buildPipeline inbound.BuildPipelinePort
	records       BuildRecordReader
	events        BuildEventStreamer
	workspaceRoot string
	outputRoot    string
}

// NewBuildsController runs accepted builds on buildPool under ctx, so
// cancelling ctx stops every build in flight. buildPool should be
// nonblocking: a full pool answers 503 instead of holding the request.
func NewBuildsController(
	ctx context.Context,
	logger outbound.LoggerPort,
	buildPool outbound.TaskDispatcher,
	buildPipeline inbound.BuildPipelinePort,
	records BuildRecordReader,
	events BuildEventStreamer,
	workspaceRoot string,
	outputRoot string,
) BuildsController {
	return &buildsController{
		ctx:           ctx,
		logger:        logger,
		buildPool:     buildPool,
		buildPipeline: buildPipeline,
		records:       records,
		events:        events,
		workspaceRoot: filepath.Clean(workspaceRoot),
		outputRoot:    outputRoot,
	}
}

func (b *buildsController) Health(c *gin.Context) {
	c.JSON(http.StatusOK, dto.HealthResponse{Status: "ok"})
}

// CreateBuild accepts the build and runs it on the worker pool. Progress is
// read from the events stream.
func (b *buildsController) CreateBuild(c *gin.Context) {
	var createBuildRequest dto.CreateBuildRequest
	if err := c.ShouldBindJSON(&createBuildRequest); err != nil {
		err = c.AbortWithError(http.StatusBadRequest, err)
		if err != nil {
			b.logger.Error(err, "failed to abort with error")
		}
		return
	}

	slidePath, err := confinePath(b.workspaceRoot, createBuildRequest.SlidePath)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "slide_path: " + err.Error()})
		return
	}

	buildID := uuid.NewString()
	outputDir := filepath.Join(b.outputRoot, buildID)
	if createBuildRequest.OutputDir != "" {
		outputDir, err = confinePath(b.workspaceRoot, createBuildRequest.OutputDir)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "output_dir: " + err.Error()})
			return
		}
	}

	params := inbound.StartBuildParams{
		BuildID:   buildID,
		SlidePath: slidePath,
		OutputDir: outputDir,
	}
	fields := map[string]interface{}{
		"build_id": buildID,
		"slide":    params.SlidePath,
		"user_id":  c.GetString(middleware.ContextUserIDKey),
	}

	err = b.buildPool.Submit(func() {
		// the build outlives the request but not the server
		_, err := b.buildPipeline.StartBuild(b.ctx, params)
		if err != nil {
			b.logger.ErrorWithFields(err, "build finished with error", fields)
		}
	})
	if err != nil {
		b.logger.ErrorWithFields(err, "failed to submit build", fields)
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "too many builds in progress"})
		return
	}

	b.logger.InfoWithFields("build accepted", fields)
	c.JSON(http.StatusAccepted, dto.CreateBuildResponse{
		BuildID:   buildID,
		EventsURL: dto.EventsURL(buildID),
	})
}

func (b *buildsController) GetBuild(c *gin.Context) {
	buildID := c.Param("id")
	record, ok := b.records.Get(buildID)
	if !ok {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "build not found"})
		return
	}

	c.JSON(http.StatusOK, dto.BuildStatusResponse{
		BuildRecord: record,
		EventsURL:   dto.EventsURL(buildID),
	})
}

func (b *buildsController) StreamEvents(c *gin.Context) {
	b.events.Handler(c.Param("id")).ServeHTTP(c.Writer, c.Request)
}

func (b *buildsController) RegisterRoutes(g *gin.Engine) {
	g.GET("/health", b.Health)
	g.POST("/builds", b.CreateBuild)
	g.GET("/builds/:id", b.GetBuild)
	g.GET("/builds/:id/events", middleware.SSEMiddleware(), b.StreamEvents)
}

// confinePath resolves path against root and rejects anything that leaves it.
func confinePath(root, path string) (string, error) {
	if !filepath.IsAbs(path) {
		path = filepath.Join(root, path)
	}
	path = filepath.Clean(path)
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", errOutsideWorkspace, path)
	}
	return path, nil
}
