// Package classifier is the client for the external tag-classification
// service that assigns normalized tags to narrative buckets.
package classifier

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog/log"

	"lingotale/models"
	"lingotale/retry"
)

// Client calls the classifier's predict endpoint. Transient failures (5xx,
// network) are retried with exponential backoff; client errors are not.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	backoff    retry.Config
}

func NewClient(baseURL, token string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		baseURL:    baseURL,
		token:      token,
		backoff:    retry.DefaultConfig,
	}
}

type predictRequest struct {
	Tags []string `json:"tags"`
}

type predictResponse struct {
	Predictions []models.Prediction `json:"predictions"`
}

// Predict classifies normalized tags into narrative buckets. An empty input
// yields no predictions without a network call.
func (c *Client) Predict(ctx context.Context, tags []string) ([]models.Prediction, error) {
	if len(tags) == 0 {
		return nil, nil
	}

	payload, err := json.Marshal(predictRequest{Tags: tags})
	if err != nil {
		return nil, fmt.Errorf("encode predict request: %w", err)
	}

	var predictions []models.Prediction
	err = retry.Do(ctx, c.backoff, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost,
			c.baseURL+"/predict", bytes.NewReader(payload))
		if err != nil {
			return retry.Permanent(fmt.Errorf("build predict request: %w", err))
		}
		req.Header.Set("Content-Type", "application/json")
		if c.token != "" {
			req.Header.Set("Authorization", "Bearer "+c.token)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("classifier request: %w", err)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read classifier response: %w", err)
		}

		if resp.StatusCode >= 500 {
			log.Warn().Int("status", resp.StatusCode).Msg("classifier transient failure, will retry")
			return fmt.Errorf("classifier returned status %d", resp.StatusCode)
		}
		if resp.StatusCode != http.StatusOK {
			log.Error().Int("status", resp.StatusCode).Str("body", string(body)).Msg("classifier error")
			return retry.Permanent(fmt.Errorf("classifier returned status %d", resp.StatusCode))
		}

		var parsed predictResponse
		if err := json.Unmarshal(body, &parsed); err != nil {
			return retry.Permanent(fmt.Errorf("decode classifier response: %w", err))
		}
		if parsed.Predictions == nil {
			return retry.Permanent(fmt.Errorf("classifier response missing predictions"))
		}
		predictions = parsed.Predictions
		return nil
	})
	if err != nil {
		return nil, err
	}
	return predictions, nil
}
