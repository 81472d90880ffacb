// internal/workers/applicant/build-applicant-profile/handler.go
package buildapplicantprofile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"loan-workers/internal/common/logger"
	"loan-workers/internal/features"
	"loan-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "build-applicant-profile"
)

var (
	ErrMissingApplicant = errors.New("MISSING_APPLICANT_ID")
)

type Handler struct {
	logger logger.Logger
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	return &Handler{
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

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
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

func (h *Handler) execute(_ context.Context, input *Input) (*Output, error) {
	if input.ApplicantID == "" {
		return nil, fmt.Errorf("%w: applicantId is required", ErrMissingApplicant)
	}

	merged, provenance, extra := features.Merge(input.Submitted, input.Extracted)
	normalized := features.Normalize(merged)
	record := features.BuildRecord(normalized)

	// Bounds findings and cross-field findings go in one list; hard
	// findings mark the profile for review but never stop the build.
	issues := record.Validate()
	issues = append(issues, features.Check(normalized, record)...)

	quality := features.QualityScore(input.Confidences)

	profile := models.ApplicantProfile{
		ApplicantID:    input.ApplicantID,
		LoanID:         input.LoanID,
		Features:       record,
		Quality:        quality,
		Consistency:    issues,
		Provenance:     provenance,
		ExtraExtracted: extra,
		Vector:         record.Vector(),
		VectorOrder:    features.FeatureOrder,
		Timestamp:      time.Now().UTC().Format(time.RFC3339),
	}

	h.logger.Info("applicant profile built", map[string]interface{}{
		"applicantId": input.ApplicantID,
		"loanId":      input.LoanID,
		"quality":     quality,
		"issueCount":  len(issues),
	})

	return &Output{
		ApplicantProfile: profile,
		RequiresReview:   features.HasHardStop(issues),
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
