// Package main starts the status feed observer process lifecycle.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	statuswatchcmd "github.com/louisbranch/shellrelay/internal/cmd/statuswatch"
	"github.com/louisbranch/shellrelay/internal/platform/config"
)

func main() {
	cfg, err := statuswatchcmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("parse config: %v", err)
	}
	log.SetPrefix("[STATUSWATCH] ")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := statuswatchcmd.Run(ctx, cfg); err != nil {
		stop()
		config.Exitf("failed to watch: %v", err)
	}
}
