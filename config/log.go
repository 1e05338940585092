package config

import (
	"fmt"
	"strings"
)

type LogConfig struct {
	Level  string
	Format string
}

func GetLogConfig() (*LogConfig, error) {
	level := strings.ToLower(getEnv("LOG_LEVEL", "info"))
	switch level {
	case "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error")
	}

	format := strings.ToLower(getEnv("LOG_FORMAT", "console"))
	if format != "json" && format != "console" {
		return nil, fmt.Errorf("LOG_FORMAT must be json or console")
	}

	return &LogConfig{Level: level, Format: format}, nil
}
