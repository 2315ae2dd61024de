package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doeshing/ytgenius/internal/domain"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := domain.Config{Service: domain.ServiceSettings{BaseURL: server.URL + "/"}}
	opts = append([]Option{WithRequestIDs(func() string { return "req-1" })}, opts...)
	client, err := NewClient(cfg, opts...)
	require.NoError(t, err)
	return client
}

func respond(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}
}

func metadataRequest(sub domain.MetadataSubType) domain.GenerationRequest {
	return domain.GenerationRequest{Prompt: "cats", TaskType: domain.TaskMetadata, MetadataSubType: &sub}
}

func TestGenerateSendsWireRequest(t *testing.T) {
	var captured struct {
		method, path, auth, requestID, contentType string
		body                                       map[string]interface{}
	}
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		captured.method = r.Method
		captured.path = r.URL.Path
		captured.auth = r.Header.Get("Authorization")
		captured.requestID = r.Header.Get("X-Request-ID")
		captured.contentType = r.Header.Get("Content-Type")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured.body))
		respond(http.StatusOK, `{"result":"1. Cats","coins_left":49,"is_json":false}`)(w, r)
	})

	outcome, err := client.Generate(context.Background(), "tok", metadataRequest(domain.MetadataTags))
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, captured.method)
	assert.Equal(t, "/api/generate", captured.path)
	assert.Equal(t, "Bearer tok", captured.auth)
	assert.Equal(t, "req-1", captured.requestID)
	assert.Equal(t, "application/json", captured.contentType)
	assert.Equal(t, map[string]interface{}{
		"prompt":        "cats",
		"task_type":     "metadata",
		"metadata_type": "tags",
	}, captured.body)

	assert.Equal(t, 49, outcome.CoinsLeft)
	assert.Equal(t, "req-1", outcome.RequestID)
	assert.Equal(t, domain.PayloadText, outcome.Payload.Kind)
	assert.Equal(t, "1. Cats", outcome.Payload.Text)
}

func TestGenerateSendsNullMetadataType(t *testing.T) {
	var body map[string]interface{}
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		respond(http.StatusOK, `{"result":{"score":42},"coins_left":7,"is_json":true}`)(w, r)
	})

	outcome, err := client.Generate(context.Background(), "tok",
		domain.GenerationRequest{Prompt: "https://youtu.be/x", TaskType: domain.TaskAudit})
	require.NoError(t, err)

	value, present := body["metadata_type"]
	assert.True(t, present)
	assert.Nil(t, value)
	require.NotNil(t, outcome.Payload.Audit)
	assert.Equal(t, 42, outcome.Payload.Audit.Score)
	assert.Equal(t, 7, outcome.CoinsLeft)
}

func TestGenerateFailures(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantKind domain.ErrorKind
		wantMsg  string
	}{
		{"string detail", http.StatusPaymentRequired, `{"detail":"Insufficient coins. Need 10."}`, domain.ErrServiceRejected, "Insufficient coins. Need 10."},
		{"validation detail", http.StatusUnprocessableEntity,
			`{"detail":[{"loc":["body","prompt"],"msg":"field required","type":"value_error.missing"},{"loc":["body","task_type"],"msg":"field required"}]}`,
			domain.ErrServiceRejected, "prompt: field required; task_type: field required"},
		{"no detail", http.StatusInternalServerError, `{}`, domain.ErrServiceRejected, "Error"},
		{"html error page", http.StatusBadGateway, `<html>bad gateway</html>`, domain.ErrServiceRejected, "Error"},
		{"ok with error field", http.StatusOK, `{"detail":"Invalid Session"}`, domain.ErrServiceRejected, "Invalid Session"},
		{"ok malformed", http.StatusOK, `{"result":`, domain.ErrTransport, "System Error"},
		{"ok without result", http.StatusOK, `{"coins_left":3}`, domain.ErrTransport, "System Error"},
		{"ok without coins", http.StatusOK, `{"result":"x"}`, domain.ErrTransport, "System Error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, respond(tt.status, tt.body))

			_, err := client.Generate(context.Background(), "tok", metadataRequest(domain.MetadataTitle))
			require.Error(t, err)
			var genErr *domain.GenerationError
			require.ErrorAs(t, err, &genErr)
			assert.Equal(t, tt.wantKind, genErr.Kind)
			assert.Equal(t, tt.wantMsg, genErr.UserMessage())
		})
	}
}

func TestGenerateTransportFailures(t *testing.T) {
	t.Run("timeout", func(t *testing.T) {
		release := make(chan struct{})
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		}, WithTimeout(50*time.Millisecond))
		defer close(release)

		_, err := client.Generate(context.Background(), "tok", metadataRequest(domain.MetadataTitle))
		assert.Equal(t, domain.ErrTransport, domain.KindOf(err))
	})

	t.Run("connection refused", func(t *testing.T) {
		server := httptest.NewServer(respond(http.StatusOK, `{}`))
		url := server.URL
		server.Close()

		client, err := NewClient(domain.Config{Service: domain.ServiceSettings{BaseURL: url}})
		require.NoError(t, err)
		_, err = client.Generate(context.Background(), "tok", metadataRequest(domain.MetadataTitle))
		assert.Equal(t, domain.ErrTransport, domain.KindOf(err))
	})

	t.Run("oversized body", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, `{"result":"`+strings.Repeat("a", domain.MaxResponseBytes)+`","coins_left":1}`)
		})
		_, err := client.Generate(context.Background(), "tok", metadataRequest(domain.MetadataTitle))
		assert.Equal(t, domain.ErrTransport, domain.KindOf(err))
	})
}

func TestNewClientRejectsBadBaseURL(t *testing.T) {
	_, err := NewClient(domain.Config{Service: domain.ServiceSettings{BaseURL: "ftp://example.com"}})
	assert.Error(t, err)

	client, err := NewClient(domain.Config{})
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultBaseURL+domain.GeneratePath, client.Endpoint())
}
