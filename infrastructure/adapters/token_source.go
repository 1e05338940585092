package adapters

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"slide-narrator/application/ports/outbound"
	"slide-narrator/config"
)

// TokenSource supplies the bearer token sent with build event subscriptions.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

type StaticToken string

func (s StaticToken) Token(context.Context) (string, error) {
	return string(s), nil
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
	TokenType   string `json:"token_type"`
}

type clientCredentialsTokenSource struct {
	ContentFetcher
	logger outbound.LoggerPort
	conf   *config.ClientCredentialsConfig
}

func NewClientCredentialsTokenSource(contentFetcher ContentFetcher, conf *config.ClientCredentialsConfig, logger outbound.LoggerPort) TokenSource {
	return &clientCredentialsTokenSource{
		ContentFetcher: contentFetcher,
		logger:         logger,
		conf:           conf,
	}
}

func (c *clientCredentialsTokenSource) Token(ctx context.Context) (string, error) {
	c.logger.DebugWithFields("requesting access token", map[string]interface{}{
		"endpoint": c.conf.TokenEndpoint,
	})

	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.conf.TokenEndpoint, strings.NewReader(form.Encode()))
	if err != nil {
		c.logger.Error(err, "Failed to create the token request")
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(c.conf.ClientID, c.conf.ClientSecret)

	body, err := c.FetchContent(req)
	if err != nil {
		return "", err
	}

	var resp tokenResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		c.logger.Error(err, "Failed to unmarshal the token response")
		return "", err
	}
	if resp.AccessToken == "" {
		return "", errors.New("token endpoint returned no access_token")
	}

	return resp.AccessToken, nil
}
