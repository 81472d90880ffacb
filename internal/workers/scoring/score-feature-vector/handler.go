// internal/workers/scoring/score-feature-vector/handler.go
package scorefeaturevector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"loan-workers/internal/common/logger"
	"loan-workers/internal/common/scoring"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "score-feature-vector"
)

var (
	ErrMissingApplicant = errors.New("MISSING_APPLICANT_ID")
)

type Handler struct {
	scorer *scoring.Client
	logger logger.Logger
}

func NewHandler(config *Config, scorer *scoring.Client, log logger.Logger) *Handler {
	return &Handler{
		scorer: scorer,
		logger: log.WithFields(map[string]interface{}{"taskType": TaskType}),
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

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
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

// execute calls the scoring service. The client degrades internally on
// any failure, so the pipeline always gets an inference document.
func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.ApplicantID == "" {
		return nil, fmt.Errorf("%w: applicantId is required", ErrMissingApplicant)
	}

	profile := input.ApplicantProfile
	inference := h.scorer.Score(ctx, profile.Features.OrderedMap(), profile.Vector, profile.VectorOrder)

	_, degraded := inference["error"]
	if degraded {
		h.logger.Warn("scoring degraded", map[string]interface{}{
			"applicantId": input.ApplicantID,
			"loanId":      input.LoanID,
		})
	} else {
		h.logger.Info("feature vector scored", map[string]interface{}{
			"applicantId": input.ApplicantID,
			"loanId":      input.LoanID,
		})
	}

	return &Output{
		Inference: inference,
		Degraded:  degraded,
		ScoredAt:  time.Now().UTC().Format(time.RFC3339),
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
