package auth

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"gdrive-backup/internal/logger"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	// RedirectURL is the local callback server the OAuth flow listens on.
	RedirectURL = "http://localhost:8080/callback"

	// DriveFileScope limits access to files this tool created or opened.
	DriveFileScope = "https://www.googleapis.com/auth/drive.file"
)

// OAuthConfig builds the Drive OAuth2 configuration from a Google client
// secret file (the credentials.json downloaded from the Cloud console).
func OAuthConfig(credentialsFile string) (*oauth2.Config, error) {
	data, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}
	config, err := google.ConfigFromJSON(data, DriveFileScope)
	if err != nil {
		return nil, fmt.Errorf("failed to parse credentials file %s: %w", credentialsFile, err)
	}
	config.RedirectURL = RedirectURL
	return config, nil
}

// PerformFlow initiates the OAuth flow and returns the granted token. It
// prints the authorization URL, waits for the provider to redirect to the
// local callback server, then exchanges the code for a token.
func PerformFlow(ctx context.Context, config *oauth2.Config) (*oauth2.Token, error) {
	// Generate a random state for CSRF protection
	state := generateRandomState()

	authURL := config.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)

	logger.Info("Please visit this URL to authorize the application:")
	logger.Info("%s", authURL)

	// Channel to receive the authorization code
	codeChan := make(chan string, 1)
	errChan := make(chan error, 1)

	mux := http.NewServeMux()
	server := &http.Server{Addr: ":8080", Handler: mux}

	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		// Verify state parameter
		if r.URL.Query().Get("state") != state {
			errChan <- fmt.Errorf("state mismatch")
			fmt.Fprintf(w, "Error: State mismatch. You can close this window.")
			return
		}

		code := r.URL.Query().Get("code")
		if code == "" {
			errChan <- fmt.Errorf("no authorization code received")
			fmt.Fprintf(w, "Error: No authorization code received. You can close this window.")
			return
		}

		codeChan <- code
		fmt.Fprintf(w, "Authorization successful! You can close this window and return to the terminal.")
	})

	go func() {
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			errChan <- fmt.Errorf("callback server error: %w", err)
		}
	}()

	// Wait for code or error with timeout
	var code string
	select {
	case code = <-codeChan:
	case err := <-errChan:
		server.Shutdown(ctx)
		return nil, err
	case <-time.After(5 * time.Minute):
		server.Shutdown(ctx)
		return nil, fmt.Errorf("OAuth flow timed out after 5 minutes")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	server.Shutdown(shutdownCtx)

	token, err := config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange code for token: %w", err)
	}
	return token, nil
}

// generateRandomState creates a random state string for OAuth CSRF protection
func generateRandomState() string {
	return fmt.Sprintf("%d", time.Now().UnixNano())
}
