package google

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

// authorizedUserJSON parses without network access.
const authorizedUserJSON = `{
  "type": "authorized_user",
  "client_id": "client.apps.googleusercontent.com",
  "client_secret": "secret",
  "refresh_token": "refresh"
}`

func TestFindCredentials_Inline(t *testing.T) {
	creds, err := FindCredentials(context.Background(), CredentialsSource{JSON: authorizedUserJSON})
	require.NoError(t, err)
	assert.NotNil(t, creds.TokenSource)
	assert.JSONEq(t, authorizedUserJSON, string(creds.JSON))
}

func TestFindCredentials_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "creds.json")
	require.NoError(t, os.WriteFile(path, []byte(authorizedUserJSON), 0o600))

	creds, err := FindCredentials(context.Background(), CredentialsSource{File: path})
	require.NoError(t, err)
	assert.NotNil(t, creds.TokenSource)
}

func TestFindCredentials_Errors(t *testing.T) {
	_, err := FindCredentials(context.Background(), CredentialsSource{JSON: "{not json"})
	assert.Error(t, err)

	_, err = FindCredentials(context.Background(), CredentialsSource{File: filepath.Join(t.TempDir(), "missing.json")})
	assert.Error(t, err)
}

func TestNewHTTPClient_ForcesHTTP1(t *testing.T) {
	creds, err := FindCredentials(context.Background(), CredentialsSource{JSON: authorizedUserJSON})
	require.NoError(t, err)

	client := NewHTTPClient(context.Background(), creds)
	transport, ok := client.Transport.(*oauth2.Transport)
	require.True(t, ok)
	assert.NotNil(t, transport.Base)
}

func TestClientOptions(t *testing.T) {
	opts, err := ClientOptions(context.Background(), CredentialsSource{JSON: authorizedUserJSON})
	require.NoError(t, err)
	assert.Len(t, opts, 1)
}
