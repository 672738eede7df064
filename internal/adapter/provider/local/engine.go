package local

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// engineClient talks to a llama.cpp runtime over its HTTP API
// (Ollama wire format).
type engineClient struct {
	baseURL    string
	httpClient *http.Client
}

func newEngineClient(baseURL string) *engineClient {
	return &engineClient{
		baseURL: baseURL,
		// Token generation on CPU can be slow; the per-request context
		// controls cancellation.
		httpClient: &http.Client{Timeout: 30 * time.Minute},
	}
}

type createRequest struct {
	Name      string `json:"name"`
	Modelfile string `json:"modelfile"`
}

type generateOptions struct {
	Temperature float32  `json:"temperature"`
	NumPredict  int      `json:"num_predict,omitempty"`
	NumCtx      int      `json:"num_ctx,omitempty"`
	NumGPU      int      `json:"num_gpu,omitempty"`
	Stop        []string `json:"stop,omitempty"`
}

type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	Raw     bool            `json:"raw"`
	Stream  bool            `json:"stream"`
	Options generateOptions `json:"options"`
}

type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// CreateModel registers a GGUF file with the runtime under the given name.
// The runtime streams status lines; only the terminal error matters.
func (c *engineClient) CreateModel(ctx context.Context, name, modelPath string) error {
	body := createRequest{
		Name:      name,
		Modelfile: fmt.Sprintf("FROM %s", modelPath),
	}
	resp, err := c.post(ctx, "/api/create", body)
	if err != nil {
		return fmt.Errorf("create model: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("create model: unexpected status %d", resp.StatusCode)
	}

	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		var status struct {
			Status string `json:"status"`
			Error  string `json:"error"`
		}
		if err := json.Unmarshal(scanner.Bytes(), &status); err != nil {
			continue
		}
		if status.Error != "" {
			return fmt.Errorf("create model: %s", status.Error)
		}
	}
	return scanner.Err()
}

// Generate performs a blocking raw completion.
func (c *engineClient) Generate(ctx context.Context, req generateRequest) (string, error) {
	req.Stream = false
	resp, err := c.post(ctx, "/api/generate", req)
	if err != nil {
		return "", fmt.Errorf("generate: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("generate: unexpected status %d", resp.StatusCode)
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("generate: decode response: %w", err)
	}
	return out.Response, nil
}

// GenerateStream performs a raw completion and invokes emit for every
// token the runtime produces. It returns once the runtime reports done.
func (c *engineClient) GenerateStream(ctx context.Context, req generateRequest, emit func(token string) error) error {
	req.Stream = true
	resp, err := c.post(ctx, "/api/generate", req)
	if err != nil {
		return fmt.Errorf("generate stream: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("generate stream: unexpected status %d", resp.StatusCode)
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		var chunk generateResponse
		if err := json.Unmarshal(scanner.Bytes(), &chunk); err != nil {
			return fmt.Errorf("generate stream: decode chunk: %w", err)
		}
		if chunk.Response != "" {
			if err := emit(chunk.Response); err != nil {
				return err
			}
		}
		if chunk.Done {
			return nil
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("generate stream: read: %w", err)
	}
	return nil
}

// Ping checks that the runtime answers on its root endpoint.
func (c *engineClient) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("engine status %d", resp.StatusCode)
	}
	return nil
}

func (c *engineClient) post(ctx context.Context, path string, body any) (*http.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.httpClient.Do(req)
}
