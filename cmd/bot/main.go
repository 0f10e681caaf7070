package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"planetwars-server/internal/bot"
	"planetwars-server/internal/shared/config"
	"planetwars-server/internal/shared/logger"
	"planetwars-server/internal/shared/utils"

	"github.com/spf13/pflag"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "bot: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		seed     int64
		logLevel string
	)

	flagSet := pflag.NewFlagSet("bot", pflag.ContinueOnError)
	flagSet.Int64Var(&seed, "seed", 0, "random seed for target selection (default: current time)")
	flagSet.StringVar(&logLevel, "log-level", utils.GetEnv("LOG_LEVEL", "warn"), "log level written to stderr")

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}
	if !flagSet.Changed("seed") {
		seed = time.Now().UnixNano()
	}

	// stdout carries the turn protocol
	log := logger.New(config.LoggingConfig{Level: logLevel}, os.Stderr)
	log.Debug("Agent starting", "seed", seed, "pid", os.Getpid())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	agent := bot.NewAgent(rand.New(rand.NewSource(seed)), log)
	return agent.Run(ctx, os.Stdin, os.Stdout)
}
