package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPClientGenerateParsesResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		var body chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "gpt-test", body.Model)

		_ = json.NewEncoder(w).Encode(chatResponse{
			Choices: []struct {
				Message chatMessage `json:"message"`
			}{{Message: chatMessage{Role: "assistant", Content: "```ts\nexport const x = 1;\n```"}}},
		})
	}))
	defer server.Close()

	c := NewHTTPClient(server.URL, "test-key")
	resp, err := c.Generate(context.Background(), GenerateRequest{
		Model:    "gpt-test",
		Messages: []Message{{Role: RoleUser, Content: "generate widget"}},
	})
	require.NoError(t, err)
	assert.Contains(t, resp.Text, "export const x = 1;")
}

func TestHTTPClientGenerateErrorsOnNonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	c := NewHTTPClient(server.URL, "test-key")
	_, err := c.Generate(context.Background(), GenerateRequest{Model: "gpt-test"})
	assert.Error(t, err)
}

func TestHTTPClientGenerateErrorsOnEmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(chatResponse{})
	}))
	defer server.Close()

	c := NewHTTPClient(server.URL, "test-key")
	_, err := c.Generate(context.Background(), GenerateRequest{Model: "gpt-test"})
	assert.Error(t, err)
}
