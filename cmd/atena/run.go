package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"expandev/atena/pkg/agent"
	"expandev/atena/pkg/cli"
	"expandev/atena/pkg/config"
	"expandev/atena/pkg/evidence"
	"expandev/atena/pkg/evidence/recorder"
	"expandev/atena/pkg/evidence/retention"
	"expandev/atena/pkg/evidence/storage"
	"expandev/atena/pkg/history"
	"expandev/atena/pkg/rules/engine"
	"expandev/atena/pkg/rules/engine/source"
	"expandev/atena/pkg/telemetry/logging"
	"expandev/atena/pkg/telemetry/metrics"
)

var runFlags struct {
	catalogPath    string
	logLevel       string
	conversationID string
	dryRun         bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start an interactive advisory session",
	Long: `Start an interactive conversation with the rule-governed agent.

Each line you type is evaluated against the rule catalog; the response
is constrained by the governing rules of the turn and ends with a trace
of their identifiers.

Session commands:
  /open <topic>     open a topic (it becomes current)
  /close <topic>    close an open topic
  /topics           show open and closed topics
  /flag <name> [v]  set a conversation flag
  /unflag <name>    clear a conversation flag
  /flags            show current flags
  /history          show the finalized turns of this session
  /save             persist the transcript
  /reload           reload the rule catalog
  /exit             end the session

Examples:
  # Start with default config
  atena run

  # Start with custom config
  atena run --config /etc/atena/config.yaml

  # Override the catalog location
  atena run --catalog ./rules

  # Validate config and catalog without starting a session
  atena run --dry-run`,
}

func init() {
	runCmd.RunE = runAgent
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&runFlags.catalogPath, "catalog", "", "override rule catalog path")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().StringVar(&runFlags.conversationID, "conversation-id", "", "resume with a fixed conversation id")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config and catalog without starting a session")
}

// loadRunConfig loads the configuration file, falling back to defaults
// when the default config file is absent.
func loadRunConfig() (*config.Config, error) {
	if _, err := os.Stat(cfgFile); err != nil {
		if os.IsNotExist(err) && !rootCmd.PersistentFlags().Changed("config") {
			return config.DefaultConfig(), nil
		}
		return nil, cli.NewConfigError("", fmt.Sprintf("cannot read config file %q: %v", cfgFile, err))
	}
	return config.LoadConfigWithEnvOverrides(cfgFile)
}

func runAgent(cmd *cobra.Command, args []string) error {
	cfg, err := loadRunConfig()
	if err != nil {
		return err
	}

	if runFlags.catalogPath != "" {
		cfg.Catalog.Path = runFlags.catalogPath
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}

	logger, err := logging.Setup(logging.Config{
		Level:          cfg.Telemetry.Logging.Level,
		Format:         cfg.Telemetry.Logging.Format,
		AddSource:      cfg.Telemetry.Logging.AddSource,
		RedactPII:      cfg.Telemetry.Logging.RedactPII,
		RedactPatterns: cfg.Telemetry.Logging.RedactPatterns,
	})
	if err != nil {
		return cli.NewConfigError("telemetry.logging", err.Error())
	}

	catalogSource := source.NewFileSource(cfg.Catalog.Path, logger.Slog()).
		WithDebounce(cfg.Catalog.DebounceInterval)

	eng, err := engine.New(&engine.Config{
		SituationalBudget: cfg.Engine.SituationalBudget,
		MaxRules:          cfg.Engine.MaxRules,
		MaxConditionDepth: cfg.Catalog.MaxConditionDepth,
	}, catalogSource, logger.Slog())
	if err != nil {
		return cli.NewCommandError("run", err)
	}
	defer eng.Close()

	if runFlags.dryRun {
		catalog := eng.Catalog()
		fmt.Printf("✓ Configuration valid\n")
		fmt.Printf("✓ Catalog %q (version %s) loaded with %d rules\n",
			catalog.Name(), catalog.Version(), catalog.RuleCount())
		return nil
	}

	ctx := cli.SetupSignalHandler()

	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
	if cfg.Telemetry.Metrics.Enabled && cfg.Telemetry.Metrics.ListenAddress != "" {
		go func() {
			if err := collector.Serve(cfg.Telemetry.Metrics.ListenAddress, cfg.Telemetry.Metrics.Path); err != nil {
				logger.Error("metrics server failed", "error", err)
			}
		}()
	}

	opts := []agent.Option{
		agent.WithLogger(logger.Slog()),
		agent.WithMetrics(collector),
	}

	if cfg.Evidence.Enabled {
		store, err := newEvidenceStorage(cfg)
		if err != nil {
			return cli.NewCommandError("run", err)
		}
		defer store.Close()

		rec := recorder.NewRecorder(store, &recorder.Config{
			Enabled:          true,
			AsyncBuffer:      cfg.Evidence.Recorder.AsyncBuffer,
			WriteTimeout:     cfg.Evidence.Recorder.WriteTimeout,
			MaxExcerptLength: cfg.Evidence.Recorder.MaxExcerptLength,
		})
		opts = append(opts, agent.WithRecorder(rec))

		if cfg.Evidence.Retention.Days > 0 {
			pruner := retention.NewPruner(store, &retention.Config{
				RetentionDays: cfg.Evidence.Retention.Days,
				PruneSchedule: cfg.Evidence.Retention.PruneSchedule,
			})
			scheduler := retention.NewScheduler(pruner)
			if err := scheduler.Start(ctx); err != nil {
				return cli.NewCommandError("run", err)
			}
			defer scheduler.Stop()
		}
	}

	if cfg.History.Enabled {
		store, err := history.NewSQLiteStore(cfg.History.Path)
		if err != nil {
			return cli.NewCommandError("run", err)
		}
		defer store.Close()
		opts = append(opts, agent.WithHistoryStore(store))
	}

	az, err := agent.New(eng, newAnalystGenerator(), opts...)
	if err != nil {
		return cli.NewCommandError("run", err)
	}
	defer az.Close()

	printBanner(eng)

	return runSession(ctx, az, eng, cfg)
}

// newEvidenceStorage constructs the configured evidence backend.
func newEvidenceStorage(cfg *config.Config) (evidence.Storage, error) {
	switch cfg.Evidence.Backend {
	case "sqlite":
		return storage.NewSQLiteStorage(&storage.SQLiteConfig{
			Path:         cfg.Evidence.SQLite.Path,
			MaxOpenConns: cfg.Evidence.SQLite.MaxOpenConns,
			MaxIdleConns: cfg.Evidence.SQLite.MaxIdleConns,
			WALMode:      cfg.Evidence.SQLite.WALMode,
		})
	case "memory":
		return storage.NewMemoryStorage(), nil
	default:
		return nil, fmt.Errorf("unknown evidence backend: %s", cfg.Evidence.Backend)
	}
}

func printBanner(eng engine.Engine) {
	catalog := eng.Catalog()
	fmt.Println("Atena - business analysis agent")
	fmt.Printf("Catalog %q version %s, %d rules\n",
		catalog.Name(), catalog.Version(), catalog.RuleCount())
	fmt.Println("Type your question, or /help for session commands.")
	fmt.Println()
}

// runSession is the interactive read-evaluate-respond loop.
func runSession(ctx context.Context, az *agent.Agent, eng engine.Engine, cfg *config.Config) error {
	conv := az.StartConversation(runFlags.conversationID)
	scanner := bufio.NewScanner(os.Stdin)

	for {
		if ctx.Err() != nil {
			fmt.Println("\nsession interrupted")
			return az.EndConversation(context.Background(), conv.ID())
		}

		fmt.Print("you> ")
		if !scanner.Scan() {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			done, err := handleCommand(ctx, az, eng, conv, line)
			if err != nil {
				fmt.Printf("error: %v\n", err)
			}
			if done {
				return nil
			}
			continue
		}

		result, err := az.ProcessTurn(ctx, conv.ID(), line)
		if err != nil {
			if errors.Is(err, agent.ErrConversationFailed) || conv.State() == agent.StateError {
				fmt.Printf("conversation failed: %v\n", err)
				return err
			}
			fmt.Printf("error: %v\n", err)
			continue
		}

		fmt.Printf("atena> %s\n\n", result.Response)
	}

	return az.EndConversation(context.Background(), conv.ID())
}

// handleCommand dispatches a /command line. It returns true when the
// session should end.
func handleCommand(ctx context.Context, az *agent.Agent, eng engine.Engine, conv *agent.Conversation, line string) (bool, error) {
	fields := strings.Fields(line)
	command := fields[0]
	args := fields[1:]

	switch command {
	case "/exit", "/quit":
		if err := az.EndConversation(context.Background(), conv.ID()); err != nil {
			return true, err
		}
		fmt.Println("session ended")
		return true, nil

	case "/help":
		fmt.Println(runCmd.Long)
		return false, nil

	case "/open":
		if len(args) != 1 {
			return false, fmt.Errorf("usage: /open <topic>")
		}
		if err := conv.OpenTopic(args[0]); err != nil {
			return false, err
		}
		fmt.Printf("topic %q opened\n", args[0])
		return false, nil

	case "/close":
		if len(args) != 1 {
			return false, fmt.Errorf("usage: /close <topic>")
		}
		if err := conv.CloseTopic(args[0]); err != nil {
			return false, err
		}
		fmt.Printf("topic %q closed\n", args[0])
		return false, nil

	case "/topics":
		fmt.Printf("open:   %s\n", strings.Join(conv.OpenTopics(), ", "))
		fmt.Printf("closed: %s\n", strings.Join(conv.ClosedTopics(), ", "))
		return false, nil

	case "/flag":
		if len(args) < 1 || len(args) > 2 {
			return false, fmt.Errorf("usage: /flag <name> [value]")
		}
		value := "true"
		if len(args) == 2 {
			value = args[1]
		}
		conv.SetFlag(args[0], value)
		fmt.Printf("flag %s=%s\n", args[0], value)
		return false, nil

	case "/unflag":
		if len(args) != 1 {
			return false, fmt.Errorf("usage: /unflag <name>")
		}
		conv.ClearFlag(args[0])
		return false, nil

	case "/flags":
		for name, value := range conv.Flags() {
			fmt.Printf("%s=%s\n", name, value)
		}
		return false, nil

	case "/history":
		for i, turn := range conv.History() {
			fmt.Printf("[%d] you>   %s\n", i+1, turn.Utterance)
			fmt.Printf("[%d] atena> %s\n", i+1, turn.Response)
		}
		return false, nil

	case "/save":
		if err := az.SaveHistory(ctx, conv.ID()); err != nil {
			return false, err
		}
		fmt.Println("transcript saved")
		return false, nil

	case "/reload":
		if err := eng.ReloadCatalog(ctx); err != nil {
			return false, err
		}
		catalog := eng.Catalog()
		fmt.Printf("catalog reloaded: %d rules\n", catalog.RuleCount())
		return false, nil

	default:
		return false, fmt.Errorf("unknown command %s (try /help)", command)
	}
}
