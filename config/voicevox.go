package config

import (
	"fmt"
	"time"
)

const (
	DefaultVoicevoxURL = "http://voicevox:50021"
	// ZundamonSpeakerID is the VOICEVOX style used when none is configured.
	ZundamonSpeakerID = 3
)

type VoicevoxConfig struct {
	ApiUrl           string
	SpeakerID        int
	VersionTimeout   time.Duration
	QueryTimeout     time.Duration
	SynthesisTimeout time.Duration
	PauseBetween     time.Duration
	Concurrency      int
}

func GetVoicevoxConfig() (*VoicevoxConfig, error) {
	speakerID, err := getEnvInt("VOICEVOX_SPEAKER_ID", ZundamonSpeakerID)
	if err != nil {
		return nil, err
	}
	if speakerID < 0 {
		return nil, fmt.Errorf("VOICEVOX_SPEAKER_ID must not be negative")
	}
	versionTimeout, err := getEnvDuration("VOICEVOX_VERSION_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	queryTimeout, err := getEnvDuration("VOICEVOX_QUERY_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}
	synthesisTimeout, err := getEnvDuration("VOICEVOX_SYNTHESIS_TIMEOUT", 60*time.Second)
	if err != nil {
		return nil, err
	}
	pause, err := getEnvDuration("VOICEVOX_PAUSE", 500*time.Millisecond)
	if err != nil {
		return nil, err
	}
	concurrency, err := getEnvInt("VOICEVOX_CONCURRENCY", 1)
	if err != nil {
		return nil, err
	}
	if concurrency < 1 {
		return nil, fmt.Errorf("VOICEVOX_CONCURRENCY must be at least 1")
	}

	return &VoicevoxConfig{
		ApiUrl:           getEnv("VOICEVOX_URL", DefaultVoicevoxURL),
		SpeakerID:        speakerID,
		VersionTimeout:   versionTimeout,
		QueryTimeout:     queryTimeout,
		SynthesisTimeout: synthesisTimeout,
		PauseBetween:     pause,
		Concurrency:      concurrency,
	}, nil
}
