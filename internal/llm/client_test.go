// internal/llm/client_test.go
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SaiffMoh/FastTravelGraph/internal/common/config"
)

func newTestHTTPClient(handler http.Handler) (*HTTPClient, *httptest.Server) {
	srv := httptest.NewServer(handler)
	client := NewHTTPClient(config.LLMConfig{
		BaseURL:     srv.URL,
		APIKey:      "test-key",
		Model:       "gpt-4o-mini",
		Temperature: 0.1,
		Timeout:     2000,
	})
	return client, srv
}

func TestComplete_SendsChatRequest(t *testing.T) {
	client, srv := newTestHTTPClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var body chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "gpt-4o-mini", body.Model)
		require.Len(t, body.Messages, 1)
		assert.Equal(t, "user", body.Messages[0].Role)
		assert.Equal(t, "Say hello", body.Messages[0].Content)

		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"  hello  "}}]}`))
	}))
	defer srv.Close()

	out, err := client.Complete(context.Background(), "Say hello")

	require.NoError(t, err)
	assert.Equal(t, "hello", out, "response content is trimmed")
}

func TestComplete_NoAPIKeyFailsFast(t *testing.T) {
	client := NewHTTPClient(config.LLMConfig{BaseURL: "http://localhost:1", Timeout: 1000})

	require.False(t, client.Configured())

	_, err := client.Complete(context.Background(), "anything")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestComplete_UpstreamErrorIsUnavailable(t *testing.T) {
	client, srv := newTestHTTPClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := client.Complete(context.Background(), "anything")

	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestComplete_EmptyChoicesIsBadResponse(t *testing.T) {
	client, srv := newTestHTTPClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	_, err := client.Complete(context.Background(), "anything")

	assert.ErrorIs(t, err, ErrBadResponse)
}

func TestComplete_CancelledContextIsTimeout(t *testing.T) {
	client, srv := newTestHTTPClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[{"message":{"content":"late"}}]}`))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Complete(ctx, "anything")

	assert.True(t, errors.Is(err, ErrTimeout))
}

func TestStripFences(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"surrounding whitespace", "  {\"a\":1}  ", `{"a":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripFences(tt.input))
		})
	}
}

func TestValidateExtraction(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		wantErr bool
	}{
		{
			name:    "complete payload",
			payload: `{"departure_date":"2030-08-13","origin":"Cairo","destination":"Paris","cabin_class":"economy","duration":7,"followup_question":null,"needs_followup":false,"info_complete":true}`,
		},
		{
			name:    "nullable fields omitted",
			payload: `{"needs_followup":true,"info_complete":false}`,
		},
		{
			name:    "prose instead of ISO date",
			payload: `{"departure_date":"next tuesday","needs_followup":false,"info_complete":true}`,
			wantErr: true,
		},
		{
			name:    "missing control flags",
			payload: `{"origin":"Cairo"}`,
			wantErr: true,
		},
		{
			name:    "duration out of range",
			payload: `{"duration":0,"needs_followup":false,"info_complete":true}`,
			wantErr: true,
		},
		{
			name:    "not json",
			payload: `I would love to help you fly!`,
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateExtraction([]byte(tt.payload))
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrBadResponse)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
