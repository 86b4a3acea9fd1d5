package judge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ppiankov/dealbench/internal/model"
)

// OllamaJudge scores answers through a local Ollama instance.
type OllamaJudge struct {
	baseURL    string
	httpClient *http.Client
	config     model.JudgeConfig
}

type ollamaRequest struct {
	Model   string             `json:"model"`
	Prompt  string             `json:"prompt"`
	System  string             `json:"system,omitempty"`
	Stream  bool               `json:"stream"`
	Options map[string]float64 `json:"options,omitempty"`
}

type ollamaResponse struct {
	Model    string `json:"model"`
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// NewOllamaJudge creates an Ollama-backed judge. No API key is needed.
func NewOllamaJudge(cfg model.JudgeConfig) (*OllamaJudge, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}

	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout == 0 {
		// Local models are slow; give them more room than hosted APIs.
		timeout = 120 * time.Second
	}

	return &OllamaJudge{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		config: cfg,
	}, nil
}

// Name returns the provider name.
func (j *OllamaJudge) Name() string {
	return "ollama"
}

// Score judges one answer.
func (j *OllamaJudge) Score(ctx context.Context, req ScoreRequest) (*Verdict, error) {
	mdl := j.config.Model
	if mdl == "" {
		mdl = "llama3.2"
	}

	apiReq := ollamaRequest{
		Model:  mdl,
		Prompt: BuildPrompt(req),
		System: "You are a strict, consistent judge of sales-assistant output. You respond only with the requested JSON object.",
		Stream: false,
		Options: map[string]float64{
			"temperature": 0,
		},
	}

	body, err := json.Marshal(apiReq)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/api/generate", j.baseURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := j.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = httpResp.Body.Close() }()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Ollama API error (%d): %s", httpResp.StatusCode, string(respBody))
	}

	var resp ollamaResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	return ParseVerdict(resp.Response, req.Dimensions)
}
