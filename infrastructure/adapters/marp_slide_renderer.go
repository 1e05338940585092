package adapters

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"slide-narrator/application/ports/outbound"
	"slide-narrator/config"
)

type marpSlideRenderer struct {
	runner     CommandRunner
	logger     outbound.LoggerPort
	marpConfig *config.MarpConfig
}

func NewMarpSlideRenderer(runner CommandRunner, marpConfig *config.MarpConfig, logger outbound.LoggerPort) outbound.SlideRendererPort {
	return &marpSlideRenderer{
		runner:     runner,
		logger:     logger,
		marpConfig: marpConfig,
	}
}

func (m *marpSlideRenderer) Version(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, m.marpConfig.VersionTimeout)
	defer cancel()

	out, err := m.runner.Run(ctx, m.marpConfig.Command, append(m.baseArgs(), "--version")...)
	if err != nil {
		m.logger.ErrorWithFields(err, "marp-cli is not available", map[string]interface{}{
			"command": m.marpConfig.Command,
			"package": m.marpConfig.Package,
		})
		return "", fmt.Errorf("%w: %v", outbound.ErrRendererUnavailable, err)
	}

	return strings.TrimSpace(string(out)), nil
}

func (m *marpSlideRenderer) Render(ctx context.Context, req outbound.RenderSlidesRequest) error {
	if _, err := os.Stat(req.SlidePath); err != nil {
		m.logger.ErrorWithFields(err, "slide file not found", map[string]interface{}{
			"slide": req.SlidePath,
		})
		return fmt.Errorf("slide file %s: %w", req.SlidePath, err)
	}

	if err := os.MkdirAll(req.OutputDir, 0o755); err != nil {
		m.logger.ErrorWithFields(err, "failed to create image output directory", map[string]interface{}{
			"dir": req.OutputDir,
		})
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, m.marpConfig.RenderTimeout)
	defer cancel()

	_, err := m.runner.Run(ctx, m.marpConfig.Command, m.renderArgs(req)...)
	if err != nil {
		m.logger.ErrorWithFields(err, "marp-cli failed to render slides", map[string]interface{}{
			"slide": req.SlidePath,
			"dir":   req.OutputDir,
		})
		if errors.Is(err, ErrCommandNotFound) {
			return fmt.Errorf("%w: %v", outbound.ErrRendererUnavailable, err)
		}
		return err
	}

	return nil
}

func (m *marpSlideRenderer) renderArgs(req outbound.RenderSlidesRequest) []string {
	return append(m.baseArgs(),
		"--images", "png",
		"-o", filepath.ToSlash(filepath.Join(req.OutputDir, "page.png")),
		"--image-scale", strconv.Itoa(m.marpConfig.ImageScale),
		req.SlidePath,
	)
}

// baseArgs prefixes the package when marp is launched through npx.
func (m *marpSlideRenderer) baseArgs() []string {
	if strings.TrimSuffix(filepath.Base(m.marpConfig.Command), ".cmd") == "npx" {
		return []string{"-y", m.marpConfig.Package}
	}
	return []string{}
}
