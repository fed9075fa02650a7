// Package config defines the application configuration surface and its
// YAML loader.
package config

import (
	"time"

	"github.com/orchestra-ai/orchestra/internal/brain"
)

// Config is the root configuration for the orchestra service.
type Config struct {
	Orchestrator OrchestratorConfig `mapstructure:"orchestrator" yaml:"orchestrator"`
	Brain        BrainConfig        `mapstructure:"brain" yaml:"brain"`
	Planner      PlannerConfig      `mapstructure:"planner" yaml:"planner"`
	Workers      []WorkerConfig     `mapstructure:"workers" yaml:"workers" validate:"required,min=1,dive"`
	Logging      LoggingConfig      `mapstructure:"logging" yaml:"logging"`
}

// OrchestratorConfig controls the execution loop.
type OrchestratorConfig struct {
	// AbortOnFirstFailure stops the run at the first failed subtask
	// instead of continuing to a best-effort report.
	AbortOnFirstFailure bool `mapstructure:"abort_on_first_failure" yaml:"abort_on_first_failure"`

	// DigestLimit bounds each prior output's size in context digests.
	DigestLimit int `mapstructure:"digest_limit" yaml:"digest_limit" validate:"gte=0"`

	// ParallelRuns caps concurrent runs in batch mode. Zero means no
	// limit.
	ParallelRuns int `mapstructure:"parallel_runs" yaml:"parallel_runs" validate:"gte=0"`

	// Retry is the worker invocation retry policy.
	Retry RetryConfig `mapstructure:"retry" yaml:"retry"`
}

// RetryConfig shapes a bounded retry loop with backoff.
type RetryConfig struct {
	MaxAttempts   int           `mapstructure:"max_attempts" yaml:"max_attempts" validate:"gte=1,lte=10"`
	Delay         time.Duration `mapstructure:"delay" yaml:"delay" validate:"gte=0"`
	BackoffFactor float64       `mapstructure:"backoff_factor" yaml:"backoff_factor" validate:"gte=0"`
	CallTimeout   time.Duration `mapstructure:"call_timeout" yaml:"call_timeout" validate:"gte=0"`
}

// Policy converts the config into the runtime retry policy.
func (c RetryConfig) Policy() brain.RetryPolicy {
	return brain.RetryPolicy{
		MaxAttempts:   c.MaxAttempts,
		Delay:         c.Delay,
		BackoffFactor: c.BackoffFactor,
		CallTimeout:   c.CallTimeout,
	}
}

// BrainConfig selects and tunes a reasoning backend.
type BrainConfig struct {
	Provider    string  `mapstructure:"provider" yaml:"provider" validate:"required,oneof=openai anthropic ollama mock"`
	Model       string  `mapstructure:"model" yaml:"model"`
	APIKey      string  `mapstructure:"api_key" yaml:"api_key"`
	BaseURL     string  `mapstructure:"base_url" yaml:"base_url" validate:"omitempty,url"`
	Temperature float64 `mapstructure:"temperature" yaml:"temperature" validate:"gte=0,lte=2"`

	// RequestsPerSecond throttles calls to the backend. Zero disables
	// throttling.
	RequestsPerSecond float64 `mapstructure:"requests_per_second" yaml:"requests_per_second" validate:"gte=0"`
	Burst             int     `mapstructure:"burst" yaml:"burst" validate:"gte=0"`
}

// PlannerConfig controls the planning phase.
type PlannerConfig struct {
	// ExampleLibrary is an optional path to a YAML file of worked
	// planning examples.
	ExampleLibrary string `mapstructure:"example_library" yaml:"example_library"`

	// Retry overrides the orchestrator retry policy for planning when
	// set.
	Retry *RetryConfig `mapstructure:"retry" yaml:"retry"`

	// Brain overrides the shared brain for planning when set.
	Brain *BrainConfig `mapstructure:"brain" yaml:"brain"`
}

// WorkerConfig declares one worker role backed by the shared brain.
type WorkerConfig struct {
	Role         string `mapstructure:"role" yaml:"role" validate:"required"`
	SystemPrompt string `mapstructure:"system_prompt" yaml:"system_prompt"`

	// Brain overrides the shared brain for this role when set.
	Brain *BrainConfig `mapstructure:"brain" yaml:"brain"`
}

// LoggingConfig controls the slog handler.
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" yaml:"format" validate:"oneof=text json"`
}
