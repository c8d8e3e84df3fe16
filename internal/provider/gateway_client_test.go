package provider

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"alttext/internal/errors"
)

func TestGatewayClientUsesCredentialProvider(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer gateway-token-1", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(chatCompletionBody(`{"alt_text":"ok"}`))
	}))
	defer server.Close()

	client, err := NewGatewayClient("enterprise-gpt", Config{
		BaseURL:     server.URL,
		Credentials: StaticToken("gateway-token-1"),
	})
	require.NoError(t, err)

	resp, err := client.CompleteText(context.Background(), TextRequest{Prompt: "x"})
	require.NoError(t, err)
	require.Contains(t, resp.Text, "ok")
}

func TestGatewayClientRequiresBaseURLAndCredentials(t *testing.T) {
	t.Parallel()

	_, err := NewGatewayClient("m", Config{Credentials: StaticToken("t")})
	require.Error(t, err)

	_, err = NewGatewayClient("m", Config{BaseURL: "https://gateway.example"})
	require.Error(t, err)
}

func TestGatewayClientCredentialFailureIsPermanent(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected when credentials fail")
	}))
	defer server.Close()

	failing := NewCachedCredentials(func(ctx context.Context) (string, time.Time, error) {
		return "", time.Time{}, stderrors.New("oauth flow failed")
	})

	client, err := NewGatewayClient("enterprise-gpt", Config{
		BaseURL:     server.URL,
		Credentials: failing,
	})
	require.NoError(t, err)

	_, err = client.CompleteText(context.Background(), TextRequest{Prompt: "x"})
	require.Error(t, err)

	var permanentErr *errors.PermanentError
	require.ErrorAs(t, err, &permanentErr)
}
