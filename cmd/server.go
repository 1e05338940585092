package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/panjf2000/ants/v2"

	"slide-narrator/cli"
	"slide-narrator/config"
	"slide-narrator/infrastructure/adapters"
	"slide-narrator/infrastructure/gin_interface/controllers"
	"slide-narrator/middleware"
	mockgenerator "slide-narrator/mock"
)

func (a *app) runServe(ctx context.Context, opts *cli.ServeOptions) error {
	serverConfig, err := config.GetServerConfig()
	if err != nil {
		return &cli.ExitError{Code: 2, Message: err.Error()}
	}
	addr := serverConfig.Addr
	if opts.Addr != "" {
		addr = opts.Addr
	}

	persistent, err := a.buildRecorder()
	if err != nil {
		return err
	}
	records := adapters.NewMemoryBuildRecorder(persistent)

	sse := adapters.NewSSEEventPublisher(a.logger)
	events := adapters.NewLogEventPublisher(a.logger, sse)

	pipeline, err := a.buildPipeline(config.DefaultVideoConfigFile(), records, events)
	if err != nil {
		return err
	}

	// one slot per build; a full pool rejects new builds with 503
	buildPool, err := ants.NewPool(serverConfig.MaxBuilds, ants.WithNonblocking(true), ants.WithPanicHandler(a.panicHandler))
	if err != nil {
		return fmt.Errorf("failed to create build pool: %w", err)
	}
	defer buildPool.Release()
	buildCtx, cancelBuilds := context.WithCancel(context.Background())
	defer cancelBuilds()

	// stopBuilds cancels running builds and waits for them to record their
	// failure while the event stream is still open.
	stopBuilds := func() {
		cancelBuilds()
		if err := buildPool.ReleaseTimeout(serverConfig.BuildGrace); err != nil {
			a.logger.ErrorWithFields(err, "builds did not stop in time", map[string]interface{}{
				"running": buildPool.Running(),
			})
		}
		sse.Close()
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(a.logger))

	err = router.SetTrustedProxies(nil)
	if err != nil {
		a.logger.Error(err, "Failed to set trusted proxies!")
		return err
	}

	if serverConfig.JwksUrl != "" {
		authHandler, err := middleware.NewAuthHandler(serverConfig.JwksUrl, serverConfig.JwtIssuer, a.logger)
		if err != nil {
			a.logger.Error(err, "Failed to create auth handler!")
			return err
		}
		router.Use(authHandler.AuthMiddleware())
	} else {
		a.logger.Warn("JWKS_URL is not set, the API is unauthenticated")
	}

	buildsController := controllers.NewBuildsController(buildCtx, a.logger, buildPool, pipeline, records, sse,
		a.workspace.Root, a.workspace.OutputDir)
	buildsController.RegisterRoutes(router)

	mockgenerator.Init(buildCtx, router, buildPool, events, serverConfig.MockEventsFile, a.logger)

	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		a.logger.InfoWithFields("server listening", map[string]interface{}{"addr": addr})
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		stopBuilds()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		a.logger.Error(err, "Failed to start server!")
		return err
	case <-ctx.Done():
	}

	a.logger.Info("shutting down server")
	// open event streams would hold Shutdown until its deadline
	stopBuilds()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
