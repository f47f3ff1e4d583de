package simratings

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// HTTP status code constants.
const (
	statusOK = 200
)

// HTTPClient wraps http.Client with timeout.
type HTTPClient struct {
	client  *http.Client
	timeout time.Duration
}

// newHTTPClient creates a new HTTP client with timeout.
func newHTTPClient(timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client: &http.Client{
			Timeout: timeout,
		},
		timeout: timeout,
	}
}

// Get performs a GET request.
func (c *HTTPClient) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.client.Do(req)
}

// Post performs a POST request with JSON body.
func (c *HTTPClient) Post(ctx context.Context, url string, body interface{}) (*http.Response, error) {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	return c.client.Do(req)
}

// readResponseBody reads and closes the response body.
func readResponseBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

// submitRatings submits ratings concurrently using a worker pool.
func submitRatings(ctx context.Context, config *Config, ratings []Rating, stats *Stats) error {
	log.Printf("submitting %d ratings with %d workers...", len(ratings), config.Workers)

	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/ratings"

	// Counters for statistics
	var (
		recorded    int64
		overwritten int64
		failed      int64
		submitted   int64
	)

	ratingChan := make(chan Rating, config.Workers*2)
	var wg sync.WaitGroup

	// Start workers
	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for rating := range ratingChan {
				select {
				case <-ctx.Done():
					return
				default:
					result := submitSingleRating(ctx, client, url, rating)

					atomic.AddInt64(&submitted, 1)
					switch result {
					case "recorded":
						atomic.AddInt64(&recorded, 1)
					case "updated":
						atomic.AddInt64(&overwritten, 1)
					case "failed":
						atomic.AddInt64(&failed, 1)
					}

					if config.Verbose {
						total := atomic.LoadInt64(&submitted)
						if total%500 == 0 {
							log.Printf("progress: %d/%d submitted (recorded: %d, overwritten: %d, failed: %d)",
								total, len(ratings),
								atomic.LoadInt64(&recorded),
								atomic.LoadInt64(&overwritten),
								atomic.LoadInt64(&failed))
						}
					}
				}
			}
		}()
	}

	// Feed ratings to workers
	go func() {
		defer close(ratingChan)
		for _, rating := range ratings {
			select {
			case <-ctx.Done():
				return
			case ratingChan <- rating:
			}
		}
	}()

	wg.Wait()

	stats.RatingsSubmitted = int(atomic.LoadInt64(&submitted))
	stats.RatingsRecorded = int(atomic.LoadInt64(&recorded))
	stats.RatingsOverwritten = int(atomic.LoadInt64(&overwritten))
	stats.RatingsFailed = int(atomic.LoadInt64(&failed))

	log.Printf(`rating submission completed:
   Recorded: %d
   Overwritten: %d
   Failed: %d
`, stats.RatingsRecorded, stats.RatingsOverwritten, stats.RatingsFailed)

	return nil
}

// submitSingleRating submits one rating and classifies the outcome.
func submitSingleRating(ctx context.Context, client *HTTPClient, url string, rating Rating) string {
	resp, err := client.Post(ctx, url, rating)
	if err != nil {
		return "failed"
	}

	body, err := readResponseBody(resp)
	if err != nil {
		return "failed"
	}

	if resp.StatusCode != statusOK {
		return "failed"
	}

	var ack Ack
	if err := json.Unmarshal(body, &ack); err != nil {
		return "failed"
	}
	if ack.WeeklyUpdated {
		return "updated"
	}
	return "recorded"
}

// getLeaderboard fetches the current weekly leaderboard.
func getLeaderboard(ctx context.Context, config *Config, stats *Stats) ([]BoardEntry, error) {
	log.Printf("fetching top %d leaderboard entries...", config.TopN)

	client := newHTTPClient(config.Timeout)
	url := fmt.Sprintf("%s/leaderboard?mode=weekly&direction=top&limit=%d", config.BaseURL, config.TopN)

	resp, err := client.Get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch leaderboard: %w", err)
	}

	body, err := readResponseBody(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to read leaderboard response: %w", err)
	}

	if resp.StatusCode != statusOK {
		return nil, fmt.Errorf("leaderboard request failed with status: %d", resp.StatusCode)
	}

	var entries []BoardEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse leaderboard: %w", err)
	}

	stats.LeaderboardEntries = len(entries)
	return entries, nil
}
