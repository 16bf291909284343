package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/mattn/go-isatty"

	"castella/internal/cli"
	"castella/internal/config"
	"castella/internal/logging"
)

func main() {
	os.Exit(run(os.Args))
}

func run(args []string) int {
	if _, err := os.Stat(".env"); err == nil {
		_ = godotenv.Load(".env")
	}

	cfg := config.Load()
	level := cfg.LogLevel
	if os.Getenv("LOG_LEVEL") == "" {
		level = "warn"
	}
	logger, err := logging.New(level, cfg.Env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		return 1
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app := cli.NewApp(cli.Options{
		Config:      cfg,
		Log:         logger,
		Out:         os.Stdout,
		ErrOut:      os.Stderr,
		Interactive: isatty.IsTerminal(os.Stderr.Fd()),
	})
	if err := app.RunContext(ctx, args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return cli.ExitCode(err)
	}
	return 0
}
