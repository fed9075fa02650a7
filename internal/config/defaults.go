package config

import "time"

// DefaultConfig returns a Config with sensible defaults: a mock brain,
// the standard fetch/compute/summarize roles, and the default retry
// policy for external calls.
func DefaultConfig() *Config {
	return &Config{
		Orchestrator: OrchestratorConfig{
			AbortOnFirstFailure: false,
			DigestLimit:         4096,
			ParallelRuns:        4,
			Retry:               DefaultRetryConfig(),
		},
		Brain: BrainConfig{
			Provider:    "mock",
			Temperature: 0.2,
		},
		Workers: []WorkerConfig{
			{Role: "fetch", SystemPrompt: "You retrieve the raw data a request needs."},
			{Role: "compute", SystemPrompt: "You derive figures and comparisons from retrieved data."},
			{Role: "summarize", SystemPrompt: "You condense findings into clear prose."},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// DefaultRetryConfig mirrors the runtime default retry policy.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:   3,
		Delay:         2 * time.Second,
		BackoffFactor: 2.0,
		CallTimeout:   5 * time.Minute,
	}
}
