package adapters

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"slide-narrator/application/ports/outbound"
	"slide-narrator/config"
)

type voicevoxSynthesizer struct {
	ContentFetcher
	logger         outbound.LoggerPort
	voicevoxConfig *config.VoicevoxConfig
}

func NewVoicevoxSynthesizer(contentFetcher ContentFetcher, voicevoxConfig *config.VoicevoxConfig, logger outbound.LoggerPort) outbound.SpeechSynthesizerPort {
	return &voicevoxSynthesizer{
		ContentFetcher: contentFetcher,
		logger:         logger,
		voicevoxConfig: voicevoxConfig,
	}
}

func (v *voicevoxSynthesizer) Version(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, v.voicevoxConfig.VersionTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.endpoint("/version", nil), nil)
	if err != nil {
		v.logger.Error(err, "Failed to create the HTTP request")
		return "", err
	}

	payload, err := v.FetchContent(req)
	if err != nil {
		return "", err
	}

	// The engine answers with a JSON string such as "0.14.6".
	var version string
	if err := json.Unmarshal(payload, &version); err != nil {
		return strings.TrimSpace(string(payload)), nil
	}
	return version, nil
}

func (v *voicevoxSynthesizer) Synthesize(ctx context.Context, req outbound.SynthesizeRequest) ([]byte, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, errors.New("text to synthesize is empty")
	}

	query, err := v.audioQuery(ctx, req)
	if err != nil {
		return nil, err
	}

	return v.synthesis(ctx, query, req.SpeakerID)
}

func (v *voicevoxSynthesizer) audioQuery(ctx context.Context, req outbound.SynthesizeRequest) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, v.voicevoxConfig.QueryTimeout)
	defer cancel()

	params := url.Values{}
	params.Set("text", req.Text)
	params.Set("speaker", strconv.Itoa(req.SpeakerID))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, v.endpoint("/audio_query", params), nil)
	if err != nil {
		v.logger.Error(err, "Failed to create the audio query request")
		return nil, err
	}

	return v.FetchContent(httpReq)
}

func (v *voicevoxSynthesizer) synthesis(ctx context.Context, query []byte, speakerID int) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, v.voicevoxConfig.SynthesisTimeout)
	defer cancel()

	params := url.Values{}
	params.Set("speaker", strconv.Itoa(speakerID))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, v.endpoint("/synthesis", params), bytes.NewReader(query))
	if err != nil {
		v.logger.Error(err, "Failed to create the synthesis request")
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "audio/wav")

	return v.FetchContent(httpReq)
}

func (v *voicevoxSynthesizer) endpoint(path string, params url.Values) string {
	u := strings.TrimRight(v.voicevoxConfig.ApiUrl, "/") + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	return u
}
