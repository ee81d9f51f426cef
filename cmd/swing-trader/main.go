package main

import (
	"fmt"
	"os"

	"swing-trader/internal/cli"
	"swing-trader/internal/config"
	"swing-trader/internal/logging"
)

func main() {
	logger := logging.NewLogger()

	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	rootCmd := cli.NewRootCmd(cfg, logger)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
