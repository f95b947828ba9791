package main

import (
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"time"

	"study-assistant/internal/backendtest"
)

// quiz-fake-backend serves the in-memory quiz backend for trying the client
// without the real service.
func main() {
	defaultAddr := os.Getenv("ADDR")
	if defaultAddr == "" {
		defaultAddr = ":5000"
	}

	addr := flag.String("addr", defaultAddr, "HTTP listen address")
	token := flag.String("token", "dev-token", "bearer token the backend accepts")
	timeLimit := flag.Int("time-limit", 30, "time limit in minutes for generated quizzes")
	flag.Parse()

	fake := backendtest.New(*token)
	fake.SetTimeLimit(*timeLimit)

	server := &http.Server{
		Addr:              *addr,
		Handler:           fake.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	log.Printf("quiz-fake-backend listening on %s", *addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("server failed: %v", err)
	}
}
