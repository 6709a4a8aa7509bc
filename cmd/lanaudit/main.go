package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/projectdiscovery/gologger"

	"github.com/marcuoli/go-lanaudit/internal/runner"
)

func main() {
	options := runner.ParseOptions()
	lanauditRunner, err := runner.NewRunner(options)
	if err != nil {
		gologger.Fatal().Msgf("Could not create runner: %s\n", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := lanauditRunner.Run(ctx); err != nil {
		gologger.Fatal().Msgf("Could not run lanaudit: %s\n", err)
	}
}
