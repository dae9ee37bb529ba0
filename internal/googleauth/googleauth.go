// Package googleauth loads OAuth client credentials and a cached user token
// for the Sheets and Gmail APIs. Token acquisition is out of scope: the
// token file must already exist (or be refreshable via its refresh token).
package googleauth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// Scopes required by the campaign: append-only spreadsheet access and
// draft composition.
var Scopes = []string{
	"https://www.googleapis.com/auth/spreadsheets",
	"https://www.googleapis.com/auth/gmail.compose",
}

// Client builds an authenticated HTTP client from a client-credentials file
// and a cached token file. Expired access tokens are refreshed
// transparently by the token source when a refresh token is present.
func Client(ctx context.Context, credentialsPath, tokenPath string) (*http.Client, error) {
	credData, err := os.ReadFile(credentialsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials file %s: %w", credentialsPath, err)
	}

	config, err := google.ConfigFromJSON(credData, Scopes...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse credentials file: %w", err)
	}

	token, err := loadToken(tokenPath)
	if err != nil {
		return nil, fmt.Errorf("no usable token (run the authorization flow first): %w", err)
	}

	return config.Client(ctx, token), nil
}

// loadToken reads a cached OAuth token from disk.
func loadToken(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read token file %s: %w", path, err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("failed to parse token file %s: %w", path, err)
	}

	return &token, nil
}
