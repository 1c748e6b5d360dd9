package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/PizzaHomicide/mediabind/internal/config"
	"github.com/PizzaHomicide/mediabind/internal/debug"
	"github.com/PizzaHomicide/mediabind/internal/log"
	"github.com/PizzaHomicide/mediabind/internal/metrics"
	"github.com/PizzaHomicide/mediabind/internal/ui/tui"
	"github.com/PizzaHomicide/mediabind/internal/version"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mediabind [source]",
		Short: "Drive mpv from a terminal media controller",
		Long: "mediabind runs a media player controller in the terminal and binds it to mpv over its JSON IPC socket.\n" +
			"The optional source (a file path or URL) is played as soon as mpv is ready.",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if showVersion, _ := cmd.Flags().GetBool("version"); showVersion {
				fmt.Println(version.GetVersionInfo())
				return nil
			}
			if showEnv, _ := cmd.Flags().GetBool("env"); showEnv {
				fmt.Print("Supported environment variables:\n\n" + config.EnvVarHelp())
				return nil
			}

			var source string
			if len(args) == 1 {
				source = args[0]
			}
			return run(source)
		},
	}
	cmd.Flags().BoolP("version", "v", false, "Print the application version")
	cmd.Flags().Bool("env", false, "List the environment variables that override the config file")
	return cmd
}

func run(source string) error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		// It is unrecoverable if we cannot produce an application config
		_, _ = fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		return err
	}

	// Initialise logger
	logger, err := log.New(log.Config{
		Level:    cfg.Logging.Level,
		Format:   cfg.Logging.Format,
		FilePath: cfg.Logging.FilePath,
	})
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "failed to initialise logger: %v\n", err)
		return err
	}
	defer logger.Close()

	// Set the default global logger
	log.SetDefaultLogger(logger)

	log.Info("Starting up mediabind", "version", version.GetVersion(), "build_time", version.GetBuildTime())

	m := metrics.New()
	log.SetErrorHook(m.IncErrors)

	app, err := tui.New(cfg, m, source)
	if err != nil {
		log.Error("Unable to build the player", "error", err)
		_, _ = fmt.Fprintf(os.Stderr, "failed to build the player: %v\n", err)
		return err
	}

	if cfg.Debug.Addr != "" {
		srv := debug.NewServer(cfg.Debug.Addr, debug.NewRouter(app, m))
		srv.Start()
		defer func() {
			if err := srv.Shutdown(); err != nil {
				log.Warn("Debug server did not shut down cleanly", "error", err)
			}
		}()
	}

	if err := app.Run(); err != nil {
		log.Error("Unhandled error while running TUI", "error", err)
		return err
	}

	log.Info("mediabind shutting down.  Goodbye!")
	return nil
}
