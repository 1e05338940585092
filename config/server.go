package config

import (
	"fmt"
	"time"
)

type ServerConfig struct {
	Addr           string
	JwksUrl        string
	JwtIssuer      string
	WorkerPoolSize int
	MaxBuilds      int
	BuildGrace     time.Duration
	MockEventsFile string
}

func GetServerConfig() (*ServerConfig, error) {
	poolSize, err := getEnvInt("WORKER_POOL_SIZE", 64)
	if err != nil {
		return nil, err
	}
	if poolSize < 1 {
		return nil, fmt.Errorf("WORKER_POOL_SIZE must be at least 1")
	}

	maxBuilds, err := getEnvInt("MAX_CONCURRENT_BUILDS", 4)
	if err != nil {
		return nil, err
	}
	if maxBuilds < 1 {
		return nil, fmt.Errorf("MAX_CONCURRENT_BUILDS must be at least 1")
	}

	grace, err := getEnvDuration("BUILD_SHUTDOWN_GRACE", 30*time.Second)
	if err != nil {
		return nil, err
	}

	return &ServerConfig{
		Addr:           getEnv("SERVER_ADDR", ":8080"),
		JwksUrl:        getEnv("JWKS_URL", ""),
		JwtIssuer:      getEnv("JWT_ISSUER", ""),
		WorkerPoolSize: poolSize,
		MaxBuilds:      maxBuilds,
		BuildGrace:     grace,
		MockEventsFile: getEnv("MOCK_EVENTS_FILE", "mock/events.json"),
	}, nil
}
