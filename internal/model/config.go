package model

import "time"

// Config is the full pipeline configuration. Values come from (highest to
// lowest priority) CLI flags, DEALBENCH_* environment variables, the config
// file, and these defaults.
type Config struct {
	DealsDir  string   `yaml:"deals_dir"`
	OutputDir string   `yaml:"output_dir"`
	Deals     []string `yaml:"deals"` // explicit subset filter; empty means all

	Mode         string `yaml:"mode"` // public or private
	SkipExternal bool   `yaml:"skip_external"`
	DryRun       bool   `yaml:"dry_run"`
	Anonymize    bool   `yaml:"anonymize"`

	Agent       AgentConfig       `yaml:"agent"`
	Judge       JudgeConfig       `yaml:"judge"`
	Classifier  ClassifierConfig  `yaml:"classifier"`
	Concurrency ConcurrencyConfig `yaml:"concurrency"`
	Cache       CacheConfig       `yaml:"cache"`
	Store       StoreConfig       `yaml:"store"`
	Output      OutputConfig      `yaml:"output"`
}

// AgentConfig configures the external agent endpoint and the multi-turn
// dispatch protocol around it.
type AgentConfig struct {
	ID       string `yaml:"id"`
	Endpoint string `yaml:"endpoint"`

	Timeout    time.Duration `yaml:"timeout"`
	MaxRetries int           `yaml:"max_retries"`

	// Rate limiting of outbound agent calls (per endpoint host).
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size"`

	DefaultMaxTurns int              `yaml:"default_max_turns"`
	MaxTurnsByType  map[TaskType]int `yaml:"max_turns_by_type"`

	HTTPProxy  string `yaml:"http_proxy"`
	HTTPSProxy string `yaml:"https_proxy"`
	NoProxy    string `yaml:"no_proxy"`
}

// JudgeConfig configures the pluggable judge.
type JudgeConfig struct {
	// Provider name: "openai", "anthropic", "ollama", "rule", ""
	Provider string `yaml:"provider"`
	Model    string `yaml:"model"`
	APIKey   string `yaml:"api_key"`
	BaseURL  string `yaml:"base_url"`

	Timeout    int `yaml:"timeout"` // seconds
	MaxTokens  int `yaml:"max_tokens"`
	MaxRetries int `yaml:"max_retries"`
}

// ClassifierConfig holds the tier thresholds. They are configuration, not
// constants: the rich/standard boundary is policy, and tests pin the
// defaults.
type ClassifierConfig struct {
	RichMinTranscripts     int `yaml:"rich_min_transcripts"`
	StandardMinTranscripts int `yaml:"standard_min_transcripts"`
}

// ConcurrencyConfig bounds in-flight work.
type ConcurrencyConfig struct {
	TaskWorkers int `yaml:"task_workers"`
}

// CacheConfig configures judge-verdict memoization.
type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	Backend string        `yaml:"backend"` // "memory" or "disk"
	Dir     string        `yaml:"dir"`
	TTL     time.Duration `yaml:"ttl"`
}

// StoreConfig configures the optional run-history store.
type StoreConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// OutputConfig controls result rendering.
type OutputConfig struct {
	Verbose     bool `yaml:"verbose"`
	WriteLegacy bool `yaml:"write_legacy"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		DealsDir:  "./deals",
		OutputDir: "./dealbench-results",
		Mode:      ModePublic,
		Anonymize: true,
		Agent: AgentConfig{
			ID:                "agent",
			Timeout:           60 * time.Second,
			MaxRetries:        3,
			RequestsPerSecond: 2,
			BurstSize:         5,
			DefaultMaxTurns:   3,
			MaxTurnsByType: map[TaskType]int{
				TaskCallSummary:   2,
				TaskFollowUpDraft: 2,
			},
		},
		Judge: JudgeConfig{
			Provider:   "",
			Timeout:    30,
			MaxTokens:  1000,
			MaxRetries: 3,
		},
		Classifier: ClassifierConfig{
			RichMinTranscripts:     5,
			StandardMinTranscripts: 1,
		},
		Concurrency: ConcurrencyConfig{
			TaskWorkers: 4,
		},
		Cache: CacheConfig{
			Enabled: true,
			Backend: "memory",
			Dir:     "./.dealbench-cache",
			TTL:     24 * time.Hour,
		},
		Store: StoreConfig{
			Enabled: false,
			Path:    "./dealbench.db",
		},
		Output: OutputConfig{
			WriteLegacy: true,
		},
	}
}
