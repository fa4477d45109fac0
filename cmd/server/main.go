package main

import (
	"log/slog"
	"os"

	"littlehttp/internal/logging"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		logging.New(os.Stderr, slog.LevelError, logging.TextFormat).
			Error("command failed", "err", err)
		os.Exit(1)
	}
}
