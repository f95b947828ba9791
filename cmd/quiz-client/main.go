package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"study-assistant/internal/cli"
	"study-assistant/internal/config"
)

func main() {
	configPath := flag.String("config", "", "path to a config file (default ./config.yaml if present)")
	server := flag.String("server", "", "quiz backend base URL (overrides SERVER_URL)")
	dbPath := flag.String("db", "", "local sqlite database path (overrides DATABASE_PATH)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
	if *server != "" {
		cfg.ServerURL = *server
	}
	if *dbPath != "" {
		cfg.DatabasePath = *dbPath
	}

	logger := log.New(io.Discard, "", 0)
	if cfg.Debug {
		logger = log.New(os.Stderr, "quiz-client ", log.Ldate|log.Ltime|log.Lshortfile)
	}

	err = cli.Run(context.Background(), os.Stdin, os.Stdout, cli.Config{
		ServerURL:     cfg.ServerURL,
		HTTPTimeout:   cfg.HTTPTimeout,
		DatabasePath:  cfg.DatabasePath,
		Token:         cfg.Token,
		TickInterval:  cfg.TickInterval,
		SubmitTimeout: cfg.SubmitTimeout,
		Logger:        logger,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
