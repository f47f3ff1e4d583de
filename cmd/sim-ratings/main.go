package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/classrank/classrank/internal/simratings"
)

// Default configuration constants.
const (
	defaultNumTeachers   = 50
	defaultNumSubmitters = 500
	defaultNumRatings    = 5000
	defaultTopN          = 20
	defaultWorkers       = 2 // multiplier for runtime.NumCPU()
	defaultTimeout       = 30 * time.Second
	defaultRunTimeout    = 10 * time.Minute
)

func main() {
	var (
		baseURL    = flag.String("url", "http://localhost:9080", "Base URL of the service")
		teachers   = flag.Int("teachers", defaultNumTeachers, "Number of teachers to rate")
		submitters = flag.Int("submitters", defaultNumSubmitters, "Size of the anonymous submitter population")
		ratings    = flag.Int("ratings", defaultNumRatings, "Number of rating submissions to send")
		topN       = flag.Int("top", defaultTopN, "Number of leaderboard entries to fetch")
		workers    = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
		timeout    = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		outputFile = flag.String("output", "", "Output file for submitted ratings (default: submitted_ratings_TIMESTAMP.json)")
		logFile    = flag.String("log", "", "Log file for simulation output (default: sim_log_TIMESTAMP.log)")
		verbose    = flag.Bool("verbose", false, "Enable verbose logging")
		help       = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		simratings.ShowHelp()
		return
	}

	// Setup logging
	if err := simratings.SetupLogging(*logFile); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		return
	}

	// Create context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)
	defer cancel()

	// Create simulation configuration
	config := &simratings.Config{
		BaseURL:       *baseURL,
		NumTeachers:   *teachers,
		NumSubmitters: *submitters,
		NumRatings:    *ratings,
		TopN:          *topN,
		Workers:       *workers,
		Timeout:       *timeout,
		OutputFile:    *outputFile,
		LogFile:       *logFile,
		Verbose:       *verbose,
	}

	// Run the simulation
	if err := simratings.Run(ctx, config); err != nil {
		os.Stderr.WriteString("Simulation failed: " + err.Error() + "\n")
		return
	}
}
