package testctl

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"
)

type Config struct {
	Port    int
	LogLvl  string
	Timeout time.Duration
}

func defaultConfig() *Config {
	return &Config{
		Port:    envInt("SHUFFLERD_SMOKE_PORT", 18080),
		LogLvl:  envStr("TESTCTL_LOG_LEVEL", "info"),
		Timeout: envDuration("TESTCTL_TIMEOUT", 30*time.Second),
	}
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		var n int
		if _, err := fmt.Sscanf(v, "%d", &n); err == nil {
			return n
		}
	}
	return def
}

// MainWithArgs is a testable variant of Main that accepts args explicitly.
// It returns an exit code (0 for success, non-zero on error).
func MainWithArgs(ctx context.Context, args []string) int {
	root := buildRootCmdWith(defaultConfig())
	root.SetArgs(args)
	if len(args) == 0 {
		_ = root.Help()
		return 2
	}
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		return 1
	}
	return 0
}

// Main returns an exit code for use by cmd/testctl.
func Main() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return MainWithArgs(ctx, os.Args[1:])
}
