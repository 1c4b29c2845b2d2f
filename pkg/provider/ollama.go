package provider

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const defaultOllamaURL = "http://localhost:11434"

// OllamaAdapter calls a local Ollama inference server.
type OllamaAdapter struct {
	baseURL    string
	httpClient *http.Client
}

// ollamaRequest represents the generate request body.
type ollamaRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

// ollamaFragment represents one decoded line of the response stream.
type ollamaFragment struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// NewOllamaAdapter creates an Ollama adapter. An empty baseURL falls back
// to the default local endpoint.
func NewOllamaAdapter(baseURL string) *OllamaAdapter {
	if baseURL == "" {
		baseURL = defaultOllamaURL
	}
	return &OllamaAdapter{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
	}
}

// Name returns the adapter identifier.
func (a *OllamaAdapter) Name() string {
	return "ollama"
}

// Call sends a prompt to the local server and returns the response text.
// The server may answer with a stream of newline-delimited JSON fragments
// even when streaming is off; only the last decoded fragment is the final
// answer, earlier partials are discarded.
func (a *OllamaAdapter) Call(ctx context.Context, model, prompt string) (string, error) {
	reqBody := ollamaRequest{
		Model:  modelTag(model),
		Prompt: prompt,
		Stream: false,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/api/generate", bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return "", &CallError{Provider: a.Name(), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", &CallError{
			Provider: a.Name(),
			Status:   resp.StatusCode,
			Err:      fmt.Errorf("status %d: %s", resp.StatusCode, string(body)),
		}
	}

	var final string
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var fragment ollamaFragment
		if err := json.Unmarshal(line, &fragment); err != nil {
			return "", &CallError{Provider: a.Name(), Err: fmt.Errorf("malformed response fragment: %w", err)}
		}
		final = fragment.Response
	}
	if err := scanner.Err(); err != nil {
		return "", &CallError{Provider: a.Name(), Err: err}
	}

	return final, nil
}
