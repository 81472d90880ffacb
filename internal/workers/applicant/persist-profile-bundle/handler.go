// internal/workers/applicant/persist-profile-bundle/handler.go
package persistprofilebundle

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"loan-workers/internal/common/logger"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
)

const (
	TaskType = "persist-profile-bundle"
)

var (
	ErrMissingApplicant = errors.New("MISSING_APPLICANT_ID")
	ErrBundleEncode     = errors.New("BUNDLE_ENCODE_FAILED")
)

type Handler struct {
	db     *sql.DB
	logger logger.Logger
}

func NewHandler(config *Config, db *sql.DB, log logger.Logger) *Handler {
	return &Handler{
		db:     db,
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
		} else if errors.Is(err, ErrBundleEncode) {
			errorCode = "BUNDLE_ENCODE_FAILED"
		}
		h.failJob(client, job, errorCode, err.Error(), 0)
		return
	}

	h.completeJob(client, job, output)
}

// execute stores the full bundle as one JSONB document. A storage
// failure degrades to persisted=false: losing the ops copy must never
// lose the evaluation itself.
func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.ApplicantID == "" {
		return nil, fmt.Errorf("%w: applicantId is required", ErrMissingApplicant)
	}

	bundle := map[string]interface{}{
		"profile":        input.ApplicantProfile,
		"inference":      input.Inference,
		"recommendation": input.Recommendation,
		"vector":         input.ApplicantProfile.Vector,
		"vectorOrder":    input.ApplicantProfile.VectorOrder,
	}

	bundleJSON, err := json.Marshal(bundle)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBundleEncode, err)
	}

	bundleID := uuid.New().String()
	createdAt := time.Now().UTC().Format(time.RFC3339)

	_, err = h.db.ExecContext(ctx, `
		INSERT INTO profile_bundles (id, applicant_id, loan_id, bundle, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		bundleID,
		input.ApplicantID,
		input.LoanID,
		bundleJSON,
		createdAt,
	)
	if err != nil {
		h.logger.Warn("bundle insert failed, continuing without persistence", map[string]interface{}{
			"error":       err,
			"applicantId": input.ApplicantID,
			"loanId":      input.LoanID,
		})
		return &Output{Persisted: false}, nil
	}

	h.logger.Info("profile bundle persisted", map[string]interface{}{
		"bundleId":    bundleID,
		"applicantId": input.ApplicantID,
		"loanId":      input.LoanID,
	})

	return &Output{
		BundleID:  bundleID,
		Persisted: true,
		CreatedAt: createdAt,
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
