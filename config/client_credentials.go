package config

import (
	"fmt"
	"os"
)

// ClientCredentialsConfig lets `narrator watch` fetch its own bearer token
// from an OAuth2 token endpoint.
type ClientCredentialsConfig struct {
	ClientID      string
	ClientSecret  string
	TokenEndpoint string
}

func ClientCredentialsEnabled() bool {
	return os.Getenv("CLIENT_ID") != ""
}

func GetClientCredentialsConfig() (*ClientCredentialsConfig, error) {
	clientID := os.Getenv("CLIENT_ID")
	if clientID == "" {
		return nil, fmt.Errorf("CLIENT_ID must be set")
	}

	clientSecret := os.Getenv("CLIENT_SECRET")
	if clientSecret == "" {
		return nil, fmt.Errorf("CLIENT_SECRET must be set")
	}

	tokenEndpoint := os.Getenv("TOKEN_ENDPOINT")
	if tokenEndpoint == "" {
		return nil, fmt.Errorf("TOKEN_ENDPOINT must be set")
	}

	return &ClientCredentialsConfig{
		ClientID:      clientID,
		ClientSecret:  clientSecret,
		TokenEndpoint: tokenEndpoint,
	}, nil
}
