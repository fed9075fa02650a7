package main

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/orchestra-ai/orchestra/internal/brain"
	"github.com/orchestra-ai/orchestra/internal/brain/providers"
	"github.com/orchestra-ai/orchestra/internal/config"
	"github.com/orchestra-ai/orchestra/internal/events"
	"github.com/orchestra-ai/orchestra/internal/orchestrator"
	"github.com/orchestra-ai/orchestra/internal/planner"
	"github.com/orchestra-ai/orchestra/internal/reporter"
	"github.com/orchestra-ai/orchestra/internal/worker"
)

var runStream bool

// timeResolution rounds durations in event output.
const timeResolution = time.Millisecond

var runCmd = &cobra.Command{
	Use:   "run <request...>",
	Short: "Run the full pipeline for a request",
	Long: `Run plans the request, executes every subtask in order, and prints
the synthesized report. With --stream, phase and subtask events are
printed as they happen.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runPipeline,
}

func init() {
	runCmd.Flags().BoolVar(&runStream, "stream", false, "Print run events as they occur")
}

func runPipeline(cmd *cobra.Command, args []string) error {
	request := strings.Join(args, " ")

	o, err := buildOrchestrator(cfg)
	if err != nil {
		return err
	}

	if !runStream {
		rec, err := o.Run(cmd.Context(), request)
		if err != nil {
			return err
		}
		cmd.Println(rec.FinalOutput())
		return nil
	}

	s := o.Stream(cmd.Context(), request)
	for ev := range s.Events() {
		printEvent(cmd, ev)
	}
	rec, err := s.Wait()
	if err != nil {
		return err
	}
	cmd.Println()
	cmd.Println(rec.FinalOutput())
	return nil
}

func printEvent(cmd *cobra.Command, ev events.Event) {
	switch ev.Type {
	case events.EventSubtaskStarted:
		cmd.Printf("[%s] subtask %d (%s) started\n", ev.Type, ev.SubtaskIndex+1, ev.Role)
	case events.EventSubtaskCompleted:
		cmd.Printf("[%s] subtask %d (%s) done in %s\n", ev.Type, ev.SubtaskIndex+1, ev.Role, ev.Duration.Round(timeResolution))
	case events.EventSubtaskFailed:
		cmd.Printf("[%s] subtask %d (%s) failed: %s\n", ev.Type, ev.SubtaskIndex+1, ev.Role, ev.Error)
	case events.EventRunFailed, events.EventRunCancelled:
		cmd.Printf("[%s] %s\n", ev.Type, ev.Error)
	default:
		cmd.Printf("[%s]\n", ev.Type)
	}
}

// buildOrchestrator wires brains, workers, planner, and reporter from
// configuration.
func buildOrchestrator(cfg *config.Config) (*orchestrator.Orchestrator, error) {
	shared, err := buildBrain(cfg.Brain)
	if err != nil {
		return nil, err
	}

	registry := worker.NewRegistry()
	for _, wc := range cfg.Workers {
		b := shared
		if wc.Brain != nil {
			if b, err = buildBrain(*wc.Brain); err != nil {
				return nil, fmt.Errorf("worker %s: %w", wc.Role, err)
			}
		}
		if err := registry.Register(worker.NewBrainWorker(wc.Role, wc.SystemPrompt, b)); err != nil {
			return nil, err
		}
	}

	planBrain := shared
	if cfg.Planner.Brain != nil {
		if planBrain, err = buildBrain(*cfg.Planner.Brain); err != nil {
			return nil, fmt.Errorf("planner: %w", err)
		}
	}

	plannerOpts := []planner.Option{planner.WithLogger(slog.Default())}
	if cfg.Planner.Retry != nil {
		plannerOpts = append(plannerOpts, planner.WithRetryPolicy(cfg.Planner.Retry.Policy()))
	} else {
		plannerOpts = append(plannerOpts, planner.WithRetryPolicy(cfg.Orchestrator.Retry.Policy()))
	}
	if cfg.Planner.ExampleLibrary != "" {
		library, err := planner.LoadFileLibrary(cfg.Planner.ExampleLibrary)
		if err != nil {
			return nil, err
		}
		plannerOpts = append(plannerOpts, planner.WithExampleRetriever(library))
	}
	p := planner.New(planBrain, registry, plannerOpts...)

	r := reporter.New(shared,
		reporter.WithLogger(slog.Default()),
		reporter.WithRetryPolicy(cfg.Orchestrator.Retry.Policy()))

	return orchestrator.New(p, registry, r,
		orchestrator.WithLogger(slog.Default()),
		orchestrator.WithWorkerRetryPolicy(cfg.Orchestrator.Retry.Policy()),
		orchestrator.WithAbortOnFirstFailure(cfg.Orchestrator.AbortOnFirstFailure),
		orchestrator.WithDigestLimit(cfg.Orchestrator.DigestLimit),
	), nil
}

// buildBrain constructs one reasoning backend, throttled when the
// config asks for it.
func buildBrain(bc config.BrainConfig) (brain.Brain, error) {
	b, err := providers.New(providers.Config{
		Provider:    bc.Provider,
		Model:       bc.Model,
		APIKey:      bc.APIKey,
		BaseURL:     bc.BaseURL,
		Temperature: bc.Temperature,
	})
	if err != nil {
		return nil, err
	}
	if bc.RequestsPerSecond > 0 {
		b = brain.NewThrottled(b, bc.RequestsPerSecond, bc.Burst)
	}
	return b, nil
}
