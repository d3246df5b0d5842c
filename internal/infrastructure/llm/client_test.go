package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"secure-agent-api/internal/config"
	"secure-agent-api/internal/domain/entity"
)

func TestGenerateSendsContextAndReturnsAnswer(t *testing.T) {
	var gotReq chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer lm-studio", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		resp := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": "The roadmap focuses on microservices. "}},
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	c := NewClient(&config.LLMConfig{
		BaseURL: srv.URL + "/v1",
		APIKey:  "lm-studio",
		Model:   "gpt-3.5-turbo",
	})

	answer, err := c.Generate(context.Background(), "What is the roadmap?", []entity.Candidate{
		{ID: "1", Title: "Engineering Roadmap 2025", Category: "Engineering", Excerpt: "microservices migration"},
	})
	require.NoError(t, err)
	assert.Equal(t, "The roadmap focuses on microservices.", answer)

	require.Len(t, gotReq.Messages, 1)
	assert.Contains(t, gotReq.Messages[0].Content, "Engineering Roadmap 2025")
	assert.Contains(t, gotReq.Messages[0].Content, "What is the roadmap?")
}

func TestGenerateUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]string{"message": "model not loaded"},
		})
	}))
	defer srv.Close()

	c := NewClient(&config.LLMConfig{BaseURL: srv.URL + "/v1"})

	_, err := c.Generate(context.Background(), "q", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model not loaded")
}
