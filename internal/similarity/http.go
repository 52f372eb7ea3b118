package similarity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/abelbrown/frameseq/internal/model"
)

// HTTPProvider implements PairProvider and MatrixProvider against the
// external similarity API. Batch-matrix calls are chunked to the service's
// per-request limits and reassembled client-side.
type HTTPProvider struct {
	baseURL         string
	client          *http.Client
	limiter         *rate.Limiter
	maxBatchFrames  int
	maxBatchQueries int
}

type pairRequest struct {
	FrameID   int64  `json:"frame_id"`
	TextQuery string `json:"text_query"`
}

type pairResponse struct {
	Similarity float64 `json:"similarity"`
}

type matrixRequest struct {
	FrameIDs    []int64  `json:"frame_ids"`
	TextQueries []string `json:"text_queries"`
}

// matrixResponse rows follow text_queries, columns follow frame_ids.
type matrixResponse struct {
	SimilarityMatrix [][]float64 `json:"similarity_matrix"`
	Shape            []int       `json:"shape"`
}

// NewHTTPProvider creates a provider for the similarity API at baseURL.
func NewHTTPProvider(baseURL string, timeout time.Duration, maxBatchFrames, maxBatchQueries int) *HTTPProvider {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if maxBatchFrames <= 0 {
		maxBatchFrames = 200
	}
	if maxBatchQueries <= 0 {
		maxBatchQueries = 10
	}
	return &HTTPProvider{
		baseURL:         baseURL,
		client:          &http.Client{Timeout: timeout},
		limiter:         rate.NewLimiter(rate.Every(20*time.Millisecond), 10),
		maxBatchFrames:  maxBatchFrames,
		maxBatchQueries: maxBatchQueries,
	}
}

// Name returns the provider identifier.
func (p *HTTPProvider) Name() string {
	return "similarity-http"
}

// Available returns true if the similarity service responds to a health probe.
func (p *HTTPProvider) Available() bool {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/health", nil)
	if err != nil {
		return false
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK
}

// Pair scores one (frame, text) pair via POST /similarity/frame-text.
func (p *HTTPProvider) Pair(ctx context.Context, frameID int64, text string) (float64, error) {
	body, err := p.post(ctx, "/similarity/frame-text", pairRequest{
		FrameID:   frameID,
		TextQuery: text,
	})
	if err != nil {
		return 0, err
	}

	var resp pairResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return 0, fmt.Errorf("similarity: failed to parse pair response: %w", err)
	}

	return clamp01(resp.Similarity), nil
}

// Matrix scores a frames × queries grid via POST /similarity/batch-matrix.
// Requests exceeding the service limits are split into chunks and the
// partial results reassembled. Any chunk failure fails the whole matrix.
func (p *HTTPProvider) Matrix(ctx context.Context, frameIDs []int64, queries []string) (*model.SimilarityMatrix, error) {
	if len(frameIDs) == 0 || len(queries) == 0 {
		return nil, fmt.Errorf("similarity: empty matrix request")
	}

	out := model.NewSimilarityMatrix(len(queries), len(frameIDs))

	for qOff := 0; qOff < len(queries); qOff += p.maxBatchQueries {
		qEnd := min(qOff+p.maxBatchQueries, len(queries))

		for fOff := 0; fOff < len(frameIDs); fOff += p.maxBatchFrames {
			fEnd := min(fOff+p.maxBatchFrames, len(frameIDs))

			chunk, err := p.matrixChunk(ctx, frameIDs[fOff:fEnd], queries[qOff:qEnd])
			if err != nil {
				return nil, err
			}

			for qi, row := range chunk {
				for fi, score := range row {
					out.Scores[qOff+qi][fOff+fi] = clamp01(score)
				}
			}
		}
	}

	return out, nil
}

func (p *HTTPProvider) matrixChunk(ctx context.Context, frameIDs []int64, queries []string) ([][]float64, error) {
	body, err := p.post(ctx, "/similarity/batch-matrix", matrixRequest{
		FrameIDs:    frameIDs,
		TextQueries: queries,
	})
	if err != nil {
		return nil, err
	}

	var resp matrixResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("similarity: failed to parse matrix response: %w", err)
	}

	if len(resp.SimilarityMatrix) != len(queries) {
		return nil, fmt.Errorf("similarity: matrix has %d rows, want %d", len(resp.SimilarityMatrix), len(queries))
	}
	for i, row := range resp.SimilarityMatrix {
		if len(row) != len(frameIDs) {
			return nil, fmt.Errorf("similarity: matrix row %d has %d columns, want %d", i, len(row), len(frameIDs))
		}
	}

	return resp.SimilarityMatrix, nil
}

// post executes a JSON POST with retry on 429/5xx, honoring Retry-After.
func (p *HTTPProvider) post(ctx context.Context, path string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("similarity: failed to marshal request: %w", err)
	}

	maxRetries := 3
	backoffs := []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if err := p.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("similarity: rate limiter wait failed: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+path, bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("similarity: failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := p.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("similarity: request cancelled: %w", ctx.Err())
			}
			return nil, fmt.Errorf("similarity: request failed: %w", err)
		}

		body, readErr := io.ReadAll(io.LimitReader(resp.Body, 50<<20))
		resp.Body.Close()
		if readErr != nil {
			return nil, fmt.Errorf("similarity: failed to read response: %w", readErr)
		}

		if resp.StatusCode == http.StatusOK {
			return body, nil
		}

		retryable := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
		if !retryable {
			return nil, fmt.Errorf("similarity: service returned status %d: %s", resp.StatusCode, string(body))
		}

		lastErr = fmt.Errorf("similarity: service returned status %d: %s", resp.StatusCode, string(body))

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
				return nil, fmt.Errorf("similarity: request cancelled during retry: %w", ctx.Err())
			case <-time.After(delay):
			}
		}
	}

	return nil, fmt.Errorf("similarity: all retries exhausted: %w", lastErr)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
