// Package retrieval is the HTTP client for the external frame-retrieval
// service: text-query candidate search and per-video frame listings.
package retrieval

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/abelbrown/frameseq/internal/model"
)

// FrameSource provides all frames of a video, in keyframe order.
// Implemented by Client (remote service) and store.Store (local corpus).
type FrameSource interface {
	VideoFrames(ctx context.Context, videoID string) ([]model.Frame, error)
}

// Client talks to the retrieval API.
type Client struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
}

// searchTextResponse is the envelope returned by POST /search/text.
type searchTextResponse struct {
	Query      string        `json:"query"`
	Results    []model.Frame `json:"results"`
	TotalFound int           `json:"total_found"`
}

// NewClient creates a Client for the service at baseURL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Every(50*time.Millisecond), 5),
	}
}

// Available returns true if the retrieval service responds to a health probe.
// Uses a 3-second timeout for the availability check.
func (c *Client) Available() bool {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return false
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK
}

// SearchText retrieves the topK best-matching frames for a text query.
// If videoID is non-empty, results are restricted to that video.
func (c *Client) SearchText(ctx context.Context, query string, topK int, videoID string) ([]model.Frame, error) {
	if query == "" {
		return nil, fmt.Errorf("retrieval: empty query")
	}
	if topK <= 0 {
		topK = 10
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("top_k", strconv.Itoa(topK))
	if videoID != "" {
		params.Set("video_id", videoID)
	}

	body, err := c.do(ctx, http.MethodPost, "/search/text?"+params.Encode())
	if err != nil {
		return nil, err
	}

	var resp searchTextResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("retrieval: failed to parse search response: %w", err)
	}

	return resp.Results, nil
}

// VideoFrames returns all frames of a video, in keyframe order.
func (c *Client) VideoFrames(ctx context.Context, videoID string) ([]model.Frame, error) {
	if videoID == "" {
		return nil, fmt.Errorf("retrieval: empty video id")
	}

	body, err := c.do(ctx, http.MethodGet, "/video/"+url.PathEscape(videoID)+"/frames")
	if err != nil {
		return nil, err
	}

	var frames []model.Frame
	if err := json.Unmarshal(body, &frames); err != nil {
		return nil, fmt.Errorf("retrieval: failed to parse frames response: %w", err)
	}

	return frames, nil
}

// do executes a request with retry logic for transient errors.
// Retries up to 3 times on HTTP 429 or 5xx with exponential backoff.
// On 429, honors the Retry-After header if present.
func (c *Client) do(ctx context.Context, method, path string) ([]byte, error) {
	maxRetries := 3
	backoffs := []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("retrieval: rate limiter wait failed: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
		if err != nil {
			return nil, fmt.Errorf("retrieval: failed to create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("retrieval: request cancelled: %w", ctx.Err())
			}
			return nil, fmt.Errorf("retrieval: request failed: %w", err)
		}

		body, readErr := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
		resp.Body.Close()
		if readErr != nil {
			return nil, fmt.Errorf("retrieval: failed to read response: %w", readErr)
		}

		if resp.StatusCode == http.StatusOK {
			return body, nil
		}

		retryable := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
		if !retryable {
			return nil, fmt.Errorf("retrieval: service returned status %d: %s", resp.StatusCode, string(body))
		}

		lastErr = fmt.Errorf("retrieval: service returned status %d: %s", resp.StatusCode, string(body))

		if attempt < maxRetries {
			delay := backoffs[attempt]
			if resp.StatusCode == http.StatusTooManyRequests {
				if ra := resp.Header.Get("Retry-After"); ra != "" {
					if seconds, parseErr := strconv.Atoi(ra); parseErr == nil && seconds > 0 {
						delay = time.Duration(seconds) * time.Second
						if delay > 30*time.Second {
							delay = 30 * time.Second
						}
					}
				}
			}

			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("retrieval: request cancelled during retry: %w", ctx.Err())
			case <-time.After(delay):
			}
		}
	}

	return nil, fmt.Errorf("retrieval: all retries exhausted: %w", lastErr)
}
