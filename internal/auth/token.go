package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"golang.org/x/oauth2"
)

// LoadToken reads a cached OAuth token from path.
func LoadToken(path string) (*oauth2.Token, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	token := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(token); err != nil {
		return nil, fmt.Errorf("failed to decode token file %s: %w", path, err)
	}
	return token, nil
}

// SaveToken writes a token to path as JSON. The file is created private to
// the user since it grants Drive access.
func SaveToken(path string, token *oauth2.Token) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("failed to write token file %s: %w", path, err)
	}
	defer f.Close()

	return json.NewEncoder(f).Encode(token)
}

// TokenSource wraps the standard oauth2 source and writes every refreshed
// token back to the token file, so the next run picks it up without going
// through the browser flow again.
type TokenSource struct {
	path   string
	source oauth2.TokenSource
	last   *oauth2.Token
}

// NewTokenSource creates a persisting token source seeded with token.
func NewTokenSource(ctx context.Context, config *oauth2.Config, path string, token *oauth2.Token) *TokenSource {
	return &TokenSource{
		path:   path,
		source: config.TokenSource(ctx, token),
		last:   token,
	}
}

// Token returns a valid token, refreshing and persisting it when the
// cached one has expired.
func (ts *TokenSource) Token() (*oauth2.Token, error) {
	token, err := ts.source.Token()
	if err != nil {
		return nil, fmt.Errorf("failed to refresh token: %w", err)
	}

	if ts.last == nil || token.AccessToken != ts.last.AccessToken {
		if err := SaveToken(ts.path, token); err != nil {
			return nil, fmt.Errorf("failed to persist refreshed token: %w", err)
		}
		ts.last = token
	}
	return token, nil
}
