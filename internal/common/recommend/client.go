// internal/common/recommend/client.go
package recommend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	httpclient "loan-workers/internal/common/http"
	"loan-workers/internal/common/logger"
)

// DefaultTimeout bounds a single recommender call.
const DefaultTimeout = 15 * time.Second

// PredictionRejected is assumed when the recommender gives no usable
// prediction.
const PredictionRejected = "Rejected"

// Recommendation is the recommender's verdict. Error is set when the
// call degraded; Prediction then holds the rejected default.
type Recommendation struct {
	Prediction string                 `json:"prediction"`
	Approved   bool                   `json:"approved"`
	Raw        map[string]interface{} `json:"raw,omitempty"`
	Error      string                 `json:"error,omitempty"`
}

// Client talks to the offer recommendation service.
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
		logger:     log.WithFields(map[string]interface{}{"client": "recommend"}),
	}
}

type recommendRequest struct {
	ApplicantID    string                 `json:"applicant_id"`
	LoanID         string                 `json:"loan_id"`
	ApplicantInput map[string]interface{} `json:"applicant_input"`
}

// Recommend asks the recommender for a verdict on the applicant. A
// degraded call returns the rejected default with Error populated.
func (c *Client) Recommend(ctx context.Context, applicantID, loanID string, applicantInput map[string]interface{}) Recommendation {
	payload, err := json.Marshal(recommendRequest{
		ApplicantID:    applicantID,
		LoanID:         loanID,
		ApplicantInput: applicantInput,
	})
	if err != nil {
		return c.degrade(fmt.Errorf("marshal recommend request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return c.degrade(fmt.Errorf("build recommend request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.degrade(fmt.Errorf("recommend call failed: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.degrade(fmt.Errorf("recommend service returned %d", resp.StatusCode))
	}

	var raw map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return c.degrade(fmt.Errorf("decode recommend response: %w", err))
	}

	prediction := PredictionRejected
	if p, ok := raw["prediction"].(string); ok && p != "" {
		prediction = p
	}

	return Recommendation{
		Prediction: prediction,
		Approved:   strings.EqualFold(prediction, "approved"),
		Raw:        raw,
	}
}

func (c *Client) degrade(err error) Recommendation {
	c.logger.Warn("recommendation degraded", map[string]interface{}{
		"error": err.Error(),
	})
	return Recommendation{
		Prediction: PredictionRejected,
		Approved:   false,
		Error:      err.Error(),
	}
}
