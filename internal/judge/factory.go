package judge

import (
	"fmt"
	"strings"

	"github.com/ppiankov/dealbench/internal/model"
)

// NewJudge creates a judge from configuration. An empty provider yields the
// deterministic rule judge, so a run without judge credentials still scores.
func NewJudge(cfg model.JudgeConfig) (Judge, error) {
	provider := strings.ToLower(cfg.Provider)

	switch provider {
	case "openai":
		return NewOpenAIJudge(cfg)

	case "anthropic", "claude":
		return NewAnthropicJudge(cfg)

	case "ollama":
		return NewOllamaJudge(cfg)

	case "rule", "":
		return NewRuleJudge(), nil

	default:
		return nil, fmt.Errorf("unknown judge provider: %s (supported: openai, anthropic, ollama, rule)", cfg.Provider)
	}
}
