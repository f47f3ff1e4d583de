package simratings

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/classrank/classrank/pkg/logger"
)

// File permission constants.
const (
	logFilePermission = 0600
)

// SetupLogging configures logging to both console and file.
// If logFile is empty, a timestamped filename is generated.
func SetupLogging(logFile string) error {
	// Initialize the logger first
	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if logFile == "" {
		timestamp := time.Now().Format("20060102_150405")
		logFile = "sim_log_" + timestamp + ".log"
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}

	multiWriter := io.MultiWriter(os.Stdout, file)
	log.SetOutput(multiWriter)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	logger.Get().Info(context.Background(), "logging to file", logger.String("logFile", logFile))
	return nil
}

// ShowHelp prints usage information for the rating simulation tool.
func ShowHelp() {
	os.Stdout.WriteString(`ClassRank Rating Simulator
==========================

A concurrent tool for exercising the rating and leaderboard API.

Usage:
  go run cmd/sim-ratings/main.go [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -teachers int
        Number of teachers to rate (default 50)
  -submitters int
        Size of the anonymous submitter population (default 500)
  -ratings int
        Number of rating submissions to send (default 5000)
  -top int
        Number of leaderboard entries to fetch (default 20)
  -workers int
        Number of concurrent workers (default CPU cores * 2)
  -timeout duration
        HTTP request timeout (default 30s)
  -output string
        Output file for submitted ratings (default: submitted_ratings_TIMESTAMP.json)
  -log string
        Log file for simulation output (default: sim_log_TIMESTAMP.log)
  -verbose
        Enable verbose logging
  -help
        Show this help message

Examples:
  # Simulate with default settings
  go run cmd/sim-ratings/main.go

  # Heavier load against a local instance
  go run cmd/sim-ratings/main.go -ratings 50000 -workers 16 -url http://localhost:8080

  # A small population produces many same-week overwrites
  go run cmd/sim-ratings/main.go -submitters 20 -ratings 2000
`)
}
