package adapters

import (
	"io"
	"os"

	"github.com/rs/zerolog"

	"slide-narrator/application/ports/outbound"
	"slide-narrator/config"
)

type zerologWrapper struct {
	logger zerolog.Logger
}

func NewZerologWrapper(w io.Writer, logConfig *config.LogConfig) outbound.LoggerPort {
	if w == nil {
		w = os.Stderr
	}
	level := zerolog.InfoLevel
	if logConfig != nil {
		if parsed, err := zerolog.ParseLevel(logConfig.Level); err == nil {
			level = parsed
		}
		if logConfig.Format == "console" {
			w = zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}
		}
	}

	return &zerologWrapper{
		logger: zerolog.New(w).Level(level).With().Timestamp().Logger(),
	}
}

func (z *zerologWrapper) Info(msg string) {
	z.logger.Info().Msg(msg)
}

func (z *zerologWrapper) Error(err error, msg string) {
	z.logger.Error().Err(err).Msg(msg)
}

func (z *zerologWrapper) Debug(msg string) {
	z.logger.Debug().Msg(msg)
}

func (z *zerologWrapper) Warn(msg string) {
	z.logger.Warn().Msg(msg)
}

func (z *zerologWrapper) InfoWithFields(msg string, fields map[string]interface{}) {
	z.logger.Info().Fields(fields).Msg(msg)
}

func (z *zerologWrapper) ErrorWithFields(err error, msg string, fields map[string]interface{}) {
	z.logger.Error().Err(err).Fields(fields).Msg(msg)
}

func (z *zerologWrapper) DebugWithFields(msg string, fields map[string]interface{}) {
	z.logger.Debug().Fields(fields).Msg(msg)
}

func (z *zerologWrapper) WarnWithFields(msg string, fields map[string]interface{}) {
	z.logger.Warn().Fields(fields).Msg(msg)
}

func (z *zerologWrapper) WithFields(fields map[string]interface{}) outbound.LoggerPort {
	return &zerologWrapper{
		logger: z.logger.With().Fields(fields).Logger(),
	}
}
