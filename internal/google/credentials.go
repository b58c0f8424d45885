package google

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
)

// CredentialsSource says where service credentials are read from.
// At most one of JSON and File is expected to be set; JSON wins.
type CredentialsSource struct {
	JSON string
	File string
}

// FindCredentials resolves credentials for the given scopes. With neither
// JSON nor File set it falls back to Application Default Credentials.
func FindCredentials(ctx context.Context, src CredentialsSource, scopes ...string) (*google.Credentials, error) {
	if len(scopes) == 0 {
		scopes = DefaultScopes
	}

	switch {
	case src.JSON != "":
		creds, err := google.CredentialsFromJSON(ctx, []byte(src.JSON), scopes...)
		if err != nil {
			return nil, fmt.Errorf("failed to parse inline Google credentials: %w", err)
		}
		return creds, nil

	case src.File != "":
		data, err := os.ReadFile(src.File)
		if err != nil {
			return nil, fmt.Errorf("failed to read Google credentials file: %w", err)
		}
		creds, err := google.CredentialsFromJSON(ctx, data, scopes...)
		if err != nil {
			return nil, fmt.Errorf("failed to parse Google credentials file %s: %w", src.File, err)
		}
		return creds, nil

	default:
		creds, err := google.FindDefaultCredentials(ctx, scopes...)
		if err != nil {
			return nil, fmt.Errorf("no Google credentials configured and no application default credentials found: %w", err)
		}
		return creds, nil
	}
}

// NewHTTPClient returns an HTTP client authorized by creds.
// The client is configured to use HTTP/1.1 to avoid HTTP/2 protocol errors
func NewHTTPClient(ctx context.Context, creds *google.Credentials) *http.Client {
	client := oauth2.NewClient(ctx, creds.TokenSource)

	// Force HTTP/1.1 by disabling HTTP/2
	if transport, ok := client.Transport.(*oauth2.Transport); ok {
		transport.Base = &http.Transport{
			Proxy:             http.ProxyFromEnvironment,
			ForceAttemptHTTP2: false,
		}
	}

	return client
}

// ClientOptions resolves credentials and returns the options every Google
// service client is built with.
func ClientOptions(ctx context.Context, src CredentialsSource) ([]option.ClientOption, error) {
	creds, err := FindCredentials(ctx, src, DefaultScopes...)
	if err != nil {
		return nil, err
	}
	return []option.ClientOption{option.WithHTTPClient(NewHTTPClient(ctx, creds))}, nil
}
