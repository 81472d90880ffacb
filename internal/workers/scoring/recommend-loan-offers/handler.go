// internal/workers/scoring/recommend-loan-offers/handler.go
package recommendloanoffers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"loan-workers/internal/common/logger"
	"loan-workers/internal/common/recommend"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "recommend-loan-offers"
)

var (
	ErrMissingApplicant = errors.New("MISSING_APPLICANT_ID")
)

type Handler struct {
	recommender *recommend.Client
	logger      logger.Logger
}

func NewHandler(config *Config, recommender *recommend.Client, log logger.Logger) *Handler {
	return &Handler{
		recommender: recommender,
		logger:      log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(client, job, "PARSE_ERROR", fmt.Sprintf("parse input: %v", err), 0)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		errorCode := "UNKNOWN_ERROR"
		if errors.Is(err, ErrMissingApplicant) {
			errorCode = "MISSING_APPLICANT_ID"
		}
		h.failJob(client, job, errorCode, err.Error(), 0)
		return
	}

	h.completeJob(client, job, output)
}

// execute calls the recommender. The client degrades to the rejected
// default internally, so the pipeline always gets a verdict.
func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.ApplicantID == "" {
		return nil, fmt.Errorf("%w: applicantId is required", ErrMissingApplicant)
	}

	rec := h.recommender.Recommend(ctx, input.ApplicantID, input.LoanID, input.ApplicantInput)

	degraded := rec.Error != ""
	if degraded {
		h.logger.Warn("recommendation degraded", map[string]interface{}{
			"applicantId": input.ApplicantID,
			"loanId":      input.LoanID,
			"error":       rec.Error,
		})
	} else {
		h.logger.Info("recommendation received", map[string]interface{}{
			"applicantId": input.ApplicantID,
			"loanId":      input.LoanID,
			"prediction":  rec.Prediction,
			"approved":    rec.Approved,
		})
	}

	return &Output{
		Prediction:    rec.Prediction,
		Approved:      rec.Approved,
		Raw:           rec.Raw,
		Degraded:      degraded,
		RecommendedAt: time.Now().UTC().Format(time.RFC3339),
	}, nil
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	_, err = cmd.Send(context.Background())
	if err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
	} else {
		h.logger.Info("job completed successfully", map[string]interface{}{
			"jobKey": job.Key,
		})
	}
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, errorCode, errorMessage string, retries int32) {
	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":       job.Key,
		"errorCode":    errorCode,
		"errorMessage": errorMessage,
		"retries":      retries,
	})

	_, err := client.NewThrowErrorCommand().
		JobKey(job.Key).
		ErrorCode(errorCode).
		ErrorMessage(errorMessage).
		Send(context.Background())
	if err != nil {
		h.logger.Error("failed to throw error", map[string]interface{}{
			"error": err,
		})
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
