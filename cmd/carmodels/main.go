// Command carmodels runs the Forza car model resolver against a telemetry
// feed and publishes the current car's name. With -check it only verifies
// the lookup tables of every supported game and exits.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/Guliveer/fh-car-models/internal/config"
	"github.com/Guliveer/fh-car-models/internal/host"
	"github.com/Guliveer/fh-car-models/internal/logger"
)

func main() {
	configPath := flag.String("config", config.DefaultConfigPath, "Path to the YAML configuration file")
	envPath := flag.String("env", ".env", "Path to an optional .env file")
	logLevel := flag.String("log-level", "", "Log level: DEBUG, INFO, WARN, ERROR (overrides LOG_LEVEL env)")
	noColor := flag.Bool("no-color", false, "Disable colored output (overrides TTY detection)")
	check := flag.Bool("check", false, "Load the lookup table of every supported game and exit")
	flag.Parse()

	if err := config.LoadDotEnv(*envPath); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load env file: %v\n", err)
		os.Exit(1)
	}

	level := slog.LevelInfo
	if *logLevel != "" {
		level = logger.ParseLevel(*logLevel)
	} else if envLevel := os.Getenv("LOG_LEVEL"); envLevel != "" {
		level = logger.ParseLevel(envLevel)
	}

	colored := !*noColor && term.IsTerminal(int(os.Stdout.Fd())) && os.Getenv("NO_COLOR") == ""

	rootLog, err := logger.Setup(logger.Config{
		Level:     level,
		FileLevel: slog.LevelDebug,
		Colored:   colored,
		LogDir:    os.Getenv("LOG_DIR"),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to setup logger: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		rootLog.Error("Failed to load config", "path", *configPath, "error", err)
		os.Exit(1)
	}
	if err := config.Validate(cfg); err != nil {
		rootLog.Error("Invalid config", "path", *configPath, "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if *check {
		os.Exit(runCheck(ctx, cfg, rootLog))
	}

	rootLog.Info("🚀 Starting Forza car model resolver",
		"games", cfg.GameSet().Names(),
		"lookup", cfg.Lookup.Path,
		"feed", cfg.Feed.URL,
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		rootLog.Info("Received shutdown signal", "signal", sig.String())
		cancel()

		time.AfterFunc(30*time.Second, func() {
			rootLog.Error("Graceful shutdown timed out, forcing exit")
			os.Exit(1)
		})
	}()

	if err := host.New(cfg, rootLog).Run(ctx); err != nil {
		rootLog.Error("Runner failed", "error", err)
		os.Exit(1)
	}

	rootLog.Info("👋 Shutdown complete. Goodbye!")
}

func runCheck(ctx context.Context, cfg *config.Config, log *logger.Logger) int {
	reports, err := host.CheckLookups(ctx, cfg, log)
	for _, r := range reports {
		if r.Err != nil {
			continue
		}
		if r.Entries == 0 {
			log.Warn("Lookup table is empty", "game", r.Game, "path", r.Path)
			continue
		}
		log.Info("📖 Lookup table OK", "game", r.Game, "path", r.Path, "entries", r.Entries)
	}
	if err != nil {
		log.Error("Lookup check failed", "error", err)
		return 1
	}
	return 0
}
