package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/zen-systems/modelgate/pkg/agent"
	"github.com/zen-systems/modelgate/pkg/catalog"
	"github.com/zen-systems/modelgate/pkg/config"
	"github.com/zen-systems/modelgate/pkg/fallback"
	"github.com/zen-systems/modelgate/pkg/gpu"
	"github.com/zen-systems/modelgate/pkg/health"
	"github.com/zen-systems/modelgate/pkg/metrics"
	"github.com/zen-systems/modelgate/pkg/perflog"
	"github.com/zen-systems/modelgate/pkg/provider"
	"github.com/zen-systems/modelgate/pkg/router"
)

var (
	routingFile string
	debugFlag   bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "modelgate",
		Short: "Routes prompts to AI model backends with automatic fallback",
		Long: `Modelgate routes a natural-language task to the best available AI model
	backend and transparently falls back through an ordered chain of
	alternative models and providers when a call fails or times out,
	tracking per-model health along the way.`,
	}

	rootCmd.PersistentFlags().StringVar(&routingFile, "routing", "", "path to routing config file")
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "enable debug logging")

	rootCmd.AddCommand(askCmd())
	rootCmd.AddCommand(routeCmd())
	rootCmd.AddCommand(modelsCmd())
	rootCmd.AddCommand(healthCmd())
	rootCmd.AddCommand(validateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// deps bundles the explicitly constructed components. Everything is built
// once here and passed by reference; nothing is looked up ambiently.
type deps struct {
	cfg      *config.Config
	logger   *zap.Logger
	catalog  *catalog.Catalog
	probe    *gpu.Probe
	store    *metrics.Store
	keyword  *router.KeywordRouter
	executor *fallback.Executor
	agents   *agent.Registry
}

func buildDeps() (*deps, error) {
	logger, err := newLogger(debugFlag)
	if err != nil {
		return nil, err
	}

	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	descriptors := catalog.DefaultDescriptors()
	catalogPath := filepath.Join(cfg.ConfigDir, "catalog.yaml")
	if _, err := os.Stat(catalogPath); err == nil {
		descriptors, err = catalog.Load(catalogPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load catalog: %w", err)
		}
	}

	cat := catalog.New(descriptors, logger, catalog.WithBaseURL(cfg.OllamaURL))
	probe := gpu.New(logger)
	store := metrics.NewStore()
	perf := perflog.New(cfg.PerfLogPath, logger)
	dispatcher := provider.NewDispatcher(cfg, logger)
	policy := fallback.PolicyFromConfig(cfg.RoutingConfig.Retry)
	executor := fallback.NewExecutor(dispatcher, store, perf, policy, logger)
	keyword := router.NewKeywordRouter(cfg.RoutingConfig, logger)

	agents := agent.NewRegistry()
	agents.Register("tasks", func() (agent.Agent, error) {
		return agent.NewTaskAgent("tasks", keyword, executor), nil
	})

	return &deps{
		cfg:      cfg,
		logger:   logger,
		catalog:  cat,
		probe:    probe,
		store:    store,
		keyword:  keyword,
		executor: executor,
		agents:   agents,
	}, nil
}

func askCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ask [prompt]",
		Short: "Route a prompt to the matching task and execute its model chain",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prompt := args[0]

			d, err := buildDeps()
			if err != nil {
				return err
			}
			defer d.logger.Sync()

			a, err := d.agents.New("tasks")
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if err := a.Initialize(ctx); err != nil {
				return err
			}
			defer a.Shutdown(ctx)

			out, err := a.Process(ctx, map[string]any{"prompt": prompt})
			if err != nil {
				return err
			}

			d.logger.Info("task completed",
				zap.Any("task", out["task"]),
				zap.Any("model", out["model"]))

			fmt.Fprintf(cmd.OutOrStdout(), "[%s]\n\n%s\n", out["model"], out["response"])
			return nil
		},
	}
}

func routeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "route [task-type]",
		Short: "Show which catalog model a structured task type routes to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			taskType, err := catalog.ParseTaskType(args[0])
			if err != nil {
				return err
			}

			d, err := buildDeps()
			if err != nil {
				return err
			}
			defer d.logger.Sync()

			d.catalog.RefreshAvailability(cmd.Context())

			name, descriptor, err := router.New(d.catalog, d.probe, d.logger).Route(cmd.Context(), taskType)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s (priority %d, %d MB)\n",
				taskType, name, descriptor.Priority, descriptor.MemoryMB)
			return nil
		},
	}
}

func modelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List catalog models and their availability",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := buildDeps()
			if err != nil {
				return err
			}
			defer d.logger.Sync()

			d.catalog.RefreshAvailability(cmd.Context())

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "MODEL\tPRIORITY\tMEMORY\tTASKS\tAVAILABLE")
			for _, m := range d.catalog.List() {
				tasks := make([]string, 0, len(m.TaskTypes))
				for _, t := range m.TaskTypes {
					tasks = append(tasks, t.String())
				}
				fmt.Fprintf(w, "%s\t%d\t%d MB\t%s\t%v\n",
					m.Name, m.Priority, m.MemoryMB, strings.Join(tasks, ","), m.Available)
			}
			return w.Flush()
		},
	}
}

func healthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Print the system health snapshot as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := buildDeps()
			if err != nil {
				return err
			}
			defer d.logger.Sync()

			snapshot := health.Collect(cmd.Context(), d.catalog, d.probe, d.store)
			out, err := json.MarshalIndent(snapshot, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
}

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the routing configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := buildDeps()
			if err != nil {
				return err
			}
			defer d.logger.Sync()

			if err := d.cfg.RoutingConfig.Validate(); err != nil {
				return fmt.Errorf("routing config invalid: %w", err)
			}

			var warnings int
			for _, task := range d.cfg.RoutingConfig.Tasks {
				for _, model := range task.Models {
					prefix, _, found := strings.Cut(model, "/")
					if !found {
						fmt.Fprintf(cmd.OutOrStdout(), "warning: task %s: model %q has no provider prefix\n", task.Name, model)
						warnings++
						continue
					}
					if !d.cfg.HasProvider(prefix) {
						fmt.Fprintf(cmd.OutOrStdout(), "warning: task %s: provider %s has no credential configured\n", task.Name, prefix)
						warnings++
					}
				}
			}

			if warnings == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "routing config OK")
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "routing config OK with %d warning(s)\n", warnings)
			}
			return nil
		},
	}
}

func loadConfig() (*config.Config, error) {
	if routingFile != "" {
		return config.LoadWithRoutingFile(routingFile)
	}
	return config.Load()
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stderr"}
	return cfg.Build()
}
