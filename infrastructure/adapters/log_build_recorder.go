package adapters

import (
	"context"

	"slide-narrator/application/ports/outbound"
	"slide-narrator/domain"
)

type logBuildRecorder struct {
	logger outbound.LoggerPort
}

func NewLogBuildRecorder(logger outbound.LoggerPort) outbound.BuildRecorderPort {
	return &logBuildRecorder{
		logger: logger,
	}
}

func (l *logBuildRecorder) Save(_ context.Context, record domain.BuildRecord) error {
	fields := map[string]interface{}{
		"build_id": record.BuildID,
		"status":   record.Status,
		"slide":    record.SlidePath,
	}
	if record.Status != domain.BuildRunning {
		fields["pages"] = record.Pages
		fields["pairs"] = record.Pairs
		fields["duration"] = record.Duration
		fields["video"] = record.VideoLocation
	}
	if record.Error != "" {
		fields["error"] = record.Error
	}
	l.logger.InfoWithFields("build record", fields)
	return nil
}
