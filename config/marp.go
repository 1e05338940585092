package config

import (
	"fmt"
	"time"
)

type MarpConfig struct {
	Command        string
	Package        string
	ImageScale     int
	VersionTimeout time.Duration
	RenderTimeout  time.Duration
}

func GetMarpConfig() (*MarpConfig, error) {
	scale, err := getEnvInt("MARP_IMAGE_SCALE", 2)
	if err != nil {
		return nil, err
	}
	if scale < 1 {
		return nil, fmt.Errorf("MARP_IMAGE_SCALE must be at least 1")
	}
	versionTimeout, err := getEnvDuration("MARP_VERSION_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}
	renderTimeout, err := getEnvDuration("MARP_RENDER_TIMEOUT", 120*time.Second)
	if err != nil {
		return nil, err
	}

	return &MarpConfig{
		Command:        getEnv("MARP_COMMAND", "npx"),
		Package:        getEnv("MARP_PACKAGE", "@marp-team/marp-cli@latest"),
		ImageScale:     scale,
		VersionTimeout: versionTimeout,
		RenderTimeout:  renderTimeout,
	}, nil
}
