// internal/common/scoring/client.go
package scoring

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	httpclient "loan-workers/internal/common/http"
	"loan-workers/internal/common/logger"
)

// DefaultTimeout bounds a single scoring call.
const DefaultTimeout = 10 * time.Second

// Client talks to the external risk scoring service. The scorer is a
// collaborator, not a dependency: every failure degrades to an error
// payload so the evaluation pipeline keeps moving.
type Client struct {
	endpoint   string
	httpClient *httpclient.Client
	logger     logger.Logger
}

func NewClient(endpoint string, timeout time.Duration, log logger.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		endpoint:   endpoint,
		httpClient: httpclient.NewClient(timeout),
		logger:     log.WithFields(map[string]interface{}{"client": "scoring"}),
	}
}

type scoreRequest struct {
	Features     map[string]interface{} `json:"features"`
	Vector       []float64              `json:"vector"`
	FeatureOrder []string               `json:"feature_order"`
}

// Score submits the feature record plus its encoded vector. The
// returned map is either the scorer's inference or {"error": ...}.
func (c *Client) Score(ctx context.Context, features map[string]interface{}, vector []float64, order []string) map[string]interface{} {
	payload, err := json.Marshal(scoreRequest{
		Features:     features,
		Vector:       vector,
		FeatureOrder: order,
	})
	if err != nil {
		return c.degrade(fmt.Errorf("marshal score request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return c.degrade(fmt.Errorf("build score request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.degrade(fmt.Errorf("score call failed: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.degrade(fmt.Errorf("score service returned %d", resp.StatusCode))
	}

	var inference map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&inference); err != nil {
		return c.degrade(fmt.Errorf("decode score response: %w", err))
	}
	return inference
}

func (c *Client) degrade(err error) map[string]interface{} {
	c.logger.Warn("scoring degraded", map[string]interface{}{
		"error": err.Error(),
	})
	return map[string]interface{}{"error": err.Error()}
}
