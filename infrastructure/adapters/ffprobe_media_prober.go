package adapters

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"slide-narrator/application/ports/outbound"
)

type ffprobeMediaProber struct {
	runner      CommandRunner
	logger      outbound.LoggerPort
	ffprobePath string
}

func NewFFprobeMediaProber(runner CommandRunner, ffprobePath string, logger outbound.LoggerPort) outbound.MediaProberPort {
	return &ffprobeMediaProber{
		runner:      runner,
		logger:      logger,
		ffprobePath: ffprobePath,
	}
}

func (p *ffprobeMediaProber) Duration(ctx context.Context, fileName string) (float64, error) {
	out, err := p.runner.Run(ctx, p.ffprobePath, "-v", "error", "-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1", fileName)
	if err != nil {
		p.logger.ErrorWithFields(err, "error getting media duration", map[string]interface{}{
			"file": fileName,
		})
		return 0, err
	}

	durationStr := strings.TrimSpace(string(out))
	duration, err := strconv.ParseFloat(durationStr, 64)
	if err != nil {
		p.logger.ErrorWithFields(err, "error parsing media duration", map[string]interface{}{
			"file":     fileName,
			"duration": durationStr,
		})
		return 0, fmt.Errorf("unexpected duration %q for %s: %w", durationStr, fileName, err)
	}
	if duration <= 0 {
		return 0, fmt.Errorf("media file %s has no duration", fileName)
	}

	return duration, nil
}
