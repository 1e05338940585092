package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"

	"slide-narrator/application/ports/inbound"
	"slide-narrator/application/ports/outbound"
	"slide-narrator/application/services"
	"slide-narrator/cli"
	"slide-narrator/config"
	"slide-narrator/domain"
	"slide-narrator/infrastructure/adapters"
)

// app wires adapters and services for one CLI invocation.
type app struct {
	out        io.Writer
	logger     outbound.LoggerPort
	workerPool *ants.Pool
	workspace  *config.WorkspaceConfig
	runner     adapters.CommandRunner
	mediaStore outbound.MediaStorePort

	sessOnce sync.Once
	sess     *session.Session
	sessErr  error
}

func newApp(out io.Writer, logOut io.Writer, workspace *config.WorkspaceConfig, logConfig *config.LogConfig) (*app, error) {
	serverConfig, err := config.GetServerConfig()
	if err != nil {
		return nil, &cli.ExitError{Code: 2, Message: err.Error()}
	}

	zeroLogger := adapters.NewZerologWrapper(logOut, logConfig)

	a := &app{
		out:        out,
		logger:     zeroLogger,
		workspace:  workspace,
		runner:     adapters.NewExecCommandRunner(zeroLogger),
		mediaStore: adapters.NewLocalMediaStore(zeroLogger),
	}

	workerPool, err := ants.NewPool(serverConfig.WorkerPoolSize, ants.WithPanicHandler(a.panicHandler))
	if err != nil {
		return nil, fmt.Errorf("failed to create worker pool: %w", err)
	}
	a.workerPool = workerPool

	return a, nil
}

func (a *app) panicHandler(p interface{}) {
	a.logger.Error(fmt.Errorf("%v", p), "Panic in worker pool")
}

func (a *app) close() {
	a.workerPool.Release()
}

func (a *app) awsSession(region string) (*session.Session, error) {
	a.sessOnce.Do(func() {
		a.sess, a.sessErr = session.NewSessionWithOptions(session.Options{
			SharedConfigState: session.SharedConfigEnable,
			Config:            aws.Config{Region: aws.String(region)},
		})
	})
	if a.sessErr != nil {
		return nil, fmt.Errorf("failed to create aws session: %w", a.sessErr)
	}
	return a.sess, nil
}

func (a *app) imageRenderer() (inbound.SlideImageRendererPort, error) {
	marpConfig, err := config.GetMarpConfig()
	if err != nil {
		return nil, &cli.ExitError{Code: 2, Message: err.Error()}
	}
	renderer := adapters.NewMarpSlideRenderer(a.runner, marpConfig, a.logger)
	return services.NewSlideImageRenderer(a.logger, renderer, a.mediaStore), nil
}

func (a *app) narrationGenerator() (inbound.NarrationGeneratorPort, *config.VoicevoxConfig, error) {
	voicevoxConfig, err := config.GetVoicevoxConfig()
	if err != nil {
		return nil, nil, &cli.ExitError{Code: 2, Message: err.Error()}
	}
	fetcher := adapters.NewContentFetcher(&http.Client{}, a.logger)
	synthesizer := adapters.NewVoicevoxSynthesizer(fetcher, voicevoxConfig, a.logger)
	generator := services.NewNarrationGenerator(a.logger, synthesizer, a.mediaStore, a.workerPool,
		voicevoxConfig.Concurrency, voicevoxConfig.PauseBetween)
	return generator, voicevoxConfig, nil
}

func (a *app) videoComposer() inbound.VideoComposerPort {
	prober := adapters.NewFFprobeMediaProber(a.runner, a.workspace.FFprobePath, a.logger)
	creator := adapters.NewFFMPEGVideoCreator(a.runner, prober, a.workspace.FFmpegPath, a.logger)
	concatenator := adapters.NewFFmpegVideoConcatenate(a.runner, a.workspace.FFmpegPath, a.logger)
	return services.NewVideoComposer(a.logger, creator, concatenator, a.workerPool, a.workspace.TempDir)
}

// videoPublisher uploads to S3 when BUCKET_NAME is set and keeps the local file otherwise.
func (a *app) videoPublisher() (outbound.VideoPublisherPort, error) {
	if !config.S3Enabled() {
		return adapters.NewLocalVideoPublisher(a.logger), nil
	}
	s3Config, err := config.GetS3Config()
	if err != nil {
		return nil, &cli.ExitError{Code: 2, Message: err.Error()}
	}
	sess, err := a.awsSession(s3Config.Region)
	if err != nil {
		return nil, err
	}
	return adapters.NewS3VideoPublisher(s3.New(sess), s3Config, a.logger), nil
}

// buildRecorder persists to DynamoDB when DYNAMO_TABLE_NAME is set and only logs otherwise.
func (a *app) buildRecorder() (outbound.BuildRecorderPort, error) {
	if !config.DynamoEnabled() {
		return adapters.NewLogBuildRecorder(a.logger), nil
	}
	dynamoConfig, err := config.GetDynamoConfig()
	if err != nil {
		return nil, &cli.ExitError{Code: 2, Message: err.Error()}
	}
	sess, err := a.awsSession(dynamoConfig.Region)
	if err != nil {
		return nil, err
	}
	return adapters.NewDynamoBuildRecorder(dynamodb.New(sess), dynamoConfig, a.logger), nil
}

func (a *app) buildPipeline(settings config.VideoConfigFile, recorder outbound.BuildRecorderPort,
	events outbound.BuildEventPublisherPort) (inbound.BuildPipelinePort, error) {
	renderer, err := a.imageRenderer()
	if err != nil {
		return nil, err
	}
	narration, voicevoxConfig, err := a.narrationGenerator()
	if err != nil {
		return nil, err
	}
	publisher, err := a.videoPublisher()
	if err != nil {
		return nil, err
	}

	return services.NewBuildPipeline(a.logger,
		renderer,
		services.NewSlideNoteExtractor(a.logger),
		narration,
		services.NewSlidePairer(a.logger, a.mediaStore, settings.InputSettings),
		a.videoComposer(),
		publisher,
		recorder,
		events,
		services.BuildPipelineConfig{
			SpeakerID:     voicevoxConfig.SpeakerID,
			VideoName:     a.workspace.VideoName,
			VideoSettings: settings.VideoSettings,
		},
	), nil
}

func (a *app) runImages(ctx context.Context, opts *cli.ImagesOptions) error {
	renderer, err := a.imageRenderer()
	if err != nil {
		return err
	}

	images, err := renderer.Render(ctx, inbound.RenderImagesParams{
		SlidePath: opts.SlidePath,
		OutputDir: opts.OutputDir,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "%d images written to %s\n", len(images), opts.OutputDir)
	for _, image := range images {
		fmt.Fprintf(a.out, "  %s\n", filepath.Base(image.FileName))
	}
	return nil
}

func (a *app) runVoice(ctx context.Context, opts *cli.VoiceOptions) error {
	pages, err := services.NewSlideNoteExtractor(a.logger).Extract(ctx, opts.SlidePath)
	if err != nil {
		return err
	}
	if len(pages) == 0 {
		a.logger.Warn(services.ErrNoNotes.Error())
		fmt.Fprintln(a.out, "no speaker notes found")
		return nil
	}

	generator, voicevoxConfig, err := a.narrationGenerator()
	if err != nil {
		return err
	}
	if err := generator.CheckEngine(ctx); err != nil {
		return err
	}

	speakerID := voicevoxConfig.SpeakerID
	if opts.SpeakerID >= 0 {
		speakerID = opts.SpeakerID
	}

	pageCh, feedErrCh := services.FeedPages(ctx, pages)
	audioCh, errCh := generator.Generate(ctx, pageCh, inbound.GenerateNarrationParams{
		OutputDir: opts.OutputDir,
		SpeakerID: speakerID,
	})

	summary, err := services.CollectNarration(ctx, audioCh, errCh, nil, nil)
	if err != nil {
		return err
	}
	if err, ok := <-feedErrCh; ok && err != nil {
		return err
	}

	fmt.Fprintf(a.out, "%d/%d pages narrated into %s\n", len(summary.Audios), len(pages), opts.OutputDir)
	for _, failure := range summary.Failures {
		fmt.Fprintf(a.out, "  page %d failed: %v\n", failure.Page, failure.Err)
	}
	if len(summary.Audios) == 0 {
		return errors.New("no page could be narrated")
	}
	return nil
}

func (a *app) runMovie(ctx context.Context, opts *cli.MovieOptions) error {
	pairer := services.NewSlidePairer(a.logger, a.mediaStore, opts.Settings.InputSettings)
	paired, err := pairer.Pair(ctx, opts.InputDir)
	if err != nil {
		return err
	}

	result, err := a.videoComposer().Compose(ctx, inbound.ComposeVideoParams{
		Pairs:      paired.Pairs,
		OutputFile: opts.Output,
		Settings:   opts.Settings.VideoSettings,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "video written to %s (%d slides, %.2fs, %.1f MB)\n",
		result.OutputFile, result.Slides, result.Duration, float64(result.Size)/(1024*1024))
	return nil
}

func (a *app) runCreateConfig(opts *cli.CreateConfigOptions) error {
	if err := config.WriteVideoConfigTemplate(opts.Path); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "config template written to %s\n", opts.Path)
	return nil
}

func (a *app) runBuild(ctx context.Context, opts *cli.BuildOptions) error {
	settings := config.DefaultVideoConfigFile()
	if opts.Config != "" {
		loaded, err := config.LoadVideoConfigFile(opts.Config)
		if err != nil {
			return &cli.ExitError{Code: 2, Message: err.Error()}
		}
		settings = *loaded
	}

	recorder, err := a.buildRecorder()
	if err != nil {
		return err
	}
	pipeline, err := a.buildPipeline(settings, recorder, adapters.NewLogEventPublisher(a.logger))
	if err != nil {
		return err
	}

	if _, err := os.Stat(opts.SlidePath); err != nil {
		return fmt.Errorf("slide file: %w", err)
	}

	result, err := pipeline.StartBuild(ctx, inbound.StartBuildParams{
		BuildID:   uuid.NewString(),
		SlidePath: opts.SlidePath,
		OutputDir: opts.OutputDir,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "build %s finished: %s (%d/%d pages, %.2fs)\n",
		result.BuildID, result.VideoLocation, result.Pairs, result.Pages, result.Duration)
	return nil
}

func (a *app) runWatch(ctx context.Context, opts *cli.WatchOptions) error {
	tokens, err := a.tokenSource(opts.Token)
	if err != nil {
		return err
	}

	watcher := adapters.NewBuildEventWatcher(a.workerPool, tokens, a.logger)
	events, errCh := watcher.Watch(ctx, opts.URL)

	var failed bool
	for event := range events {
		if event.Page > 0 {
			fmt.Fprintf(a.out, "[%s] page %d: %s\n", event.Stage, event.Page, event.Message)
		} else {
			fmt.Fprintf(a.out, "[%s] %s\n", event.Stage, event.Message)
		}
		if event.Stage.Terminal() {
			failed = event.Stage == domain.FailedStage
		}
	}
	if err, ok := <-errCh; ok && err != nil {
		return err
	}
	if failed {
		return errors.New("build failed")
	}
	return nil
}

// tokenSource prefers an explicit token, then NARRATOR_TOKEN, then the
// client credentials grant when CLIENT_ID is configured.
func (a *app) tokenSource(explicit string) (adapters.TokenSource, error) {
	if explicit != "" {
		return adapters.StaticToken(explicit), nil
	}
	if token := os.Getenv("NARRATOR_TOKEN"); token != "" {
		return adapters.StaticToken(token), nil
	}
	if !config.ClientCredentialsEnabled() {
		return adapters.StaticToken(""), nil
	}
	conf, err := config.GetClientCredentialsConfig()
	if err != nil {
		return nil, err
	}
	return adapters.NewClientCredentialsTokenSource(adapters.NewContentFetcher(&http.Client{}, a.logger), conf, a.logger), nil
}
