package judge

import (
	"context"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/ppiankov/dealbench/internal/model"
)

// OpenAIJudge scores answers through OpenAI's Chat Completions API.
type OpenAIJudge struct {
	client *openai.Client
	config model.JudgeConfig
}

// NewOpenAIJudge creates an OpenAI-backed judge.
func NewOpenAIJudge(cfg model.JudgeConfig) (*OpenAIJudge, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	return &OpenAIJudge{
		client: openai.NewClientWithConfig(clientConfig),
		config: cfg,
	}, nil
}

// Name returns the provider name.
func (j *OpenAIJudge) Name() string {
	return "openai"
}

// Score judges one answer.
func (j *OpenAIJudge) Score(ctx context.Context, req ScoreRequest) (*Verdict, error) {
	mdl := j.config.Model
	if mdl == "" {
		mdl = openai.GPT4oMini
	}

	maxTokens := j.config.MaxTokens
	if maxTokens == 0 {
		maxTokens = 1000
	}

	timeout := time.Duration(j.config.Timeout) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	ctxWithTimeout, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	chatReq := openai.ChatCompletionRequest{
		Model: mdl,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You are a strict, consistent judge of sales-assistant output. You respond only with the requested JSON object.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: BuildPrompt(req),
			},
		},
		MaxTokens:   maxTokens,
		Temperature: 0, // Judging must be as reproducible as the API allows
	}

	resp, err := j.client.CreateChatCompletion(ctxWithTimeout, chatReq)
	if err != nil {
		return nil, fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from OpenAI")
	}

	return ParseVerdict(resp.Choices[0].Message.Content, req.Dimensions)
}
