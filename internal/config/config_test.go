package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orchestra-ai/orchestra/internal/types"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "orchestra.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, Validate(cfg))
	assert.Equal(t, "mock", cfg.Brain.Provider)
	assert.Len(t, cfg.Workers, 3)
	assert.False(t, cfg.Orchestrator.AbortOnFirstFailure)
}

func TestLoadFullConfig(t *testing.T) {
	path := writeConfig(t, `
orchestrator:
  abort_on_first_failure: true
  digest_limit: 2048
  parallel_runs: 8
  retry:
    max_attempts: 5
    delay: 500ms
    backoff_factor: 1.5
    call_timeout: 2m
brain:
  provider: openai
  model: gpt-4o-mini
  api_key: test-key
  temperature: 0.7
planner:
  example_library: /tmp/examples.yaml
workers:
  - role: fetch
    system_prompt: You fetch things.
  - role: compute
    system_prompt: You compute things.
logging:
  level: debug
  format: json
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.True(t, cfg.Orchestrator.AbortOnFirstFailure)
	assert.Equal(t, 2048, cfg.Orchestrator.DigestLimit)
	assert.Equal(t, 5, cfg.Orchestrator.Retry.MaxAttempts)
	assert.Equal(t, 500*time.Millisecond, cfg.Orchestrator.Retry.Delay)
	assert.Equal(t, 2*time.Minute, cfg.Orchestrator.Retry.CallTimeout)
	assert.Equal(t, "openai", cfg.Brain.Provider)
	assert.Equal(t, "gpt-4o-mini", cfg.Brain.Model)
	assert.Equal(t, "/tmp/examples.yaml", cfg.Planner.ExampleLibrary)
	require.Len(t, cfg.Workers, 2)
	assert.Equal(t, "compute", cfg.Workers[1].Role)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoadAppliesDefaultsForOmittedSections(t *testing.T) {
	path := writeConfig(t, `
brain:
  provider: ollama
  model: llama3
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "ollama", cfg.Brain.Provider)
	assert.Equal(t, 3, cfg.Orchestrator.Retry.MaxAttempts)
	assert.Len(t, cfg.Workers, 3)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadInterpolatesEnvVars(t *testing.T) {
	t.Setenv("ORCHESTRA_TEST_KEY", "secret-from-env")
	path := writeConfig(t, `
brain:
  provider: openai
  model: gpt-4o-mini
  api_key: ${ORCHESTRA_TEST_KEY}
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "secret-from-env", cfg.Brain.APIKey)
}

func TestLoadLeavesUnsetEnvVarsUntouched(t *testing.T) {
	path := writeConfig(t, `
brain:
  provider: openai
  api_key: ${ORCHESTRA_DEFINITELY_UNSET_VAR}
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "${ORCHESTRA_DEFINITELY_UNSET_VAR}", cfg.Brain.APIKey)
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad provider", "brain:\n  provider: carrier-pigeon\n"},
		{"bad retry bounds", "orchestrator:\n  retry:\n    max_attempts: 99\n"},
		{"bad log level", "logging:\n  level: shouty\n"},
		{"worker missing role", "workers:\n  - system_prompt: no role here\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Equal(t, types.CONFIG_VALIDATION_FAILED, types.ErrorCodeOf(err))
		})
	}
}

func TestValidateRejectsDuplicateRoles(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Workers = append(cfg.Workers, WorkerConfig{Role: "fetch"})

	err := Validate(cfg)
	require.Error(t, err)
	assert.Equal(t, types.CONFIG_VALIDATION_FAILED, types.ErrorCodeOf(err))

	var orchErr *types.OrchestraError
	require.ErrorAs(t, err, &orchErr)
	assert.Equal(t, "fetch", orchErr.Context["role"])
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Equal(t, types.CONFIG_LOAD_FAILED, types.ErrorCodeOf(err))
}

func TestLoadWithDefaultsMissingFile(t *testing.T) {
	cfg, err := LoadWithDefaults(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "mock", cfg.Brain.Provider)
}

func TestRetryConfigPolicy(t *testing.T) {
	rc := RetryConfig{
		MaxAttempts:   4,
		Delay:         time.Second,
		BackoffFactor: 2.0,
		CallTimeout:   time.Minute,
	}
	p := rc.Policy()
	assert.Equal(t, 4, p.MaxAttempts)
	assert.Equal(t, time.Second, p.Delay)
	assert.Equal(t, 2.0, p.BackoffFactor)
	assert.Equal(t, time.Minute, p.CallTimeout)
}
