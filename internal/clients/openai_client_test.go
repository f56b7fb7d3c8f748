package clients_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/openai/openai-go/option"
	"github.com/spacesedan/moodflow/internal/clients"
	"github.com/stretchr/testify/require"
)

func TestOpenAIClient_Generate(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req.Equal("/chat/completions", r.URL.Path)
		req.Equal("Bearer sk-test", r.Header.Get("Authorization"))

		var body map[string]any
		req.NoError(json.NewDecoder(r.Body).Decode(&body))
		req.Equal("gpt-4o-mini", body["model"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"created": 1700000000,
			"model": "gpt-4o-mini",
			"choices": [{
				"index": 0,
				"finish_reason": "stop",
				"message": {"role": "assistant", "content": "{\"emotion\":\"calm\",\"confidence\":0.7}"}
			}]
		}`))
	}))
	defer srv.Close()

	client, err := clients.NewOpenAIClient("sk-test", "gpt-4o-mini", option.WithBaseURL(srv.URL+"/"))
	req.NoError(err)

	reply, err := client.Generate(ctx, "Analyze this")
	req.NoError(err)
	req.Equal(`{"emotion":"calm","confidence":0.7}`, reply)
}

func TestNewOpenAIClient_MissingKey(t *testing.T) {
	_, err := clients.NewOpenAIClient("", "gpt-4o-mini")
	require.Error(t, err)
}

func TestOpenAIClient_Ping(t *testing.T) {
	req := require.New(t)

	status := http.StatusOK
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req.Equal("/models/gpt-4o-mini", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"id":"gpt-4o-mini","object":"model","created":1700000000,"owned_by":"openai"}`))
	}))
	defer srv.Close()

	client, err := clients.NewOpenAIClient("sk-test", "gpt-4o-mini", option.WithBaseURL(srv.URL+"/"))
	req.NoError(err)
	req.NoError(client.Ping(context.Background()))

	status = http.StatusUnauthorized
	req.Error(client.Ping(context.Background()))
}
