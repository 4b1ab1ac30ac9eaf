// Package llmprovider implements a concrete, minimal workflow.Provider so
// the llm_* builtin adapters have something real to drive in tests and
// demos. Its internals are exactly the kind of thing spec §1 calls
// "opaque" to the core: message formatting and transport are this
// package's business, not the scheduler's. Grounded on the shape of the
// teacher's openaicompat adapter (internal/llm/providers/openaicompat),
// trimmed to a single non-streaming Complete call since the core never
// needs more than that.
package llmprovider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/danshapiro/flowdag/internal/workflow"
)

// HTTPProvider posts an OpenAI-compatible chat completion request to
// whatever endpoint the model provider table resolves for the requested
// model.
type HTTPProvider struct {
	Table      workflow.ModelProviderTable
	APIKey     string
	HTTPClient *http.Client
}

// NewHTTPProvider builds a provider reading its API key from the given
// environment variable, matching the teacher's env-driven construction
// pattern (internal/llmclient.NewFromEnv).
func NewHTTPProvider(table workflow.ModelProviderTable, apiKeyEnv string) *HTTPProvider {
	return &HTTPProvider{
		Table:      table,
		APIKey:     os.Getenv(apiKeyEnv),
		HTTPClient: &http.Client{Timeout: 60 * time.Second},
	}
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Message string `json:"message"` // ollama's flatter shape
	Response string `json:"response"`
}

// Complete implements workflow.Provider.
func (p *HTTPProvider) Complete(ctx context.Context, model, prompt string) (string, error) {
	endpoint, _ := p.Table.Lookup(model)
	if endpoint.APIURL == "" {
		return "", fmt.Errorf("llmprovider: no endpoint configured for model %q", model)
	}

	reqBody, err := json.Marshal(chatRequest{
		Model:    model,
		Messages: []chatMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.APIURL, bytes.NewReader(reqBody))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if p.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.APIKey)
	}

	client := p.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("llmprovider: %s returned status %d: %s", endpoint.Platform, resp.StatusCode, raw)
	}

	var decoded chatResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return string(raw), nil
	}
	if len(decoded.Choices) > 0 {
		return decoded.Choices[0].Message.Content, nil
	}
	if decoded.Response != "" {
		return decoded.Response, nil
	}
	return decoded.Message, nil
}
