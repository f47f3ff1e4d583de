package simratings

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/classrank/classrank/internal/domain/aggregate"
	"github.com/classrank/classrank/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0750
)

// Run executes the complete rating simulation.
func Run(ctx context.Context, config *Config) error {
	stats := &Stats{
		StartTime: time.Now(),
	}

	logger.Get().Info(ctx, "starting rating simulation",
		logger.String("baseURL", config.BaseURL),
		logger.Int("teachers", config.NumTeachers),
		logger.Int("submitters", config.NumSubmitters),
		logger.Int("ratings", config.NumRatings),
		logger.Int("workers", config.Workers),
		logger.String("timeout", config.Timeout.String()),
		logger.Int("topN", config.TopN),
		logger.Any("verbose", config.Verbose))

	// Step 1: Check service health
	if err := checkServiceHealth(ctx, config); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Generate ratings
	ratings, err := generateRatings(ctx, config, stats)
	if err != nil {
		return fmt.Errorf("rating generation failed: %w", err)
	}

	// Step 3: Submit ratings concurrently
	if err := submitRatings(ctx, config, ratings, stats); err != nil {
		return fmt.Errorf("rating submission failed: %w", err)
	}

	// Step 4: Fetch the weekly leaderboard
	leaderboard, err := getLeaderboard(ctx, config, stats)
	if err != nil {
		return fmt.Errorf("leaderboard retrieval failed: %w", err)
	}

	// Step 5: Verify results against a local replay
	if err := verifyResults(config, ratings, leaderboard, aggregate.DefaultMinWeeklySample); err != nil {
		return fmt.Errorf("result verification failed: %w", err)
	}

	// Step 6: Save submitted ratings to file
	if err := saveRatingsToFile(ctx, config, ratings); err != nil {
		logger.Get().Warn(ctx, "failed to save ratings to file", logger.Error(err))
	}

	// Final statistics
	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)

	displayFinalStats(stats)

	logger.Get().Info(ctx, "simulation completed successfully")
	return nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, config *Config) error {
	logger.Get().Info(ctx, "checking service health")

	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/healthz"

	resp, err := client.Get(ctx, url)
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Get().Error(context.Background(), "failed to close response body", logger.Error(err))
		}
	}()

	if resp.StatusCode != statusOK {
		return fmt.Errorf("service health check failed with status: %d", resp.StatusCode)
	}

	logger.Get().Info(ctx, "service is healthy")
	return nil
}

// saveRatingsToFile saves the submitted ratings to a JSON file.
func saveRatingsToFile(ctx context.Context, config *Config, ratings []Rating) error {
	if len(ratings) == 0 {
		return fmt.Errorf("no ratings to save")
	}

	filename := config.OutputFile
	if filename == "" {
		timestamp := time.Now().Format("20060102_150405")
		filename = "submitted_ratings_" + timestamp + ".json"
	}

	dir := filepath.Dir(filename)
	if dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			logger.Get().Error(context.Background(), "failed to close file", logger.Error(err))
		}
	}()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(ratings); err != nil {
		return fmt.Errorf("failed to write ratings: %w", err)
	}

	logger.Get().Info(ctx, "ratings saved to file", logger.String("filename", filename))
	return nil
}

// displayFinalStats prints the final simulation statistics.
func displayFinalStats(stats *Stats) {
	var successRate, ratingsPerSecond float64

	if stats.RatingsSubmitted > 0 {
		successRate = float64(stats.RatingsRecorded+stats.RatingsOverwritten) / float64(stats.RatingsSubmitted) * 100
	}

	if stats.Duration > 0 {
		ratingsPerSecond = float64(stats.RatingsSubmitted) / stats.Duration.Seconds()
	}

	logger.Get().Info(context.Background(), "final statistics",
		logger.Int("ratingsGenerated", stats.RatingsGenerated),
		logger.Int("ratingsSubmitted", stats.RatingsSubmitted),
		logger.Int("ratingsRecorded", stats.RatingsRecorded),
		logger.Int("ratingsOverwritten", stats.RatingsOverwritten),
		logger.Int("ratingsFailed", stats.RatingsFailed),
		logger.Int("leaderboardEntries", stats.LeaderboardEntries),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("successRate", successRate),
		logger.Float64("ratingsPerSecond", ratingsPerSecond))
}
