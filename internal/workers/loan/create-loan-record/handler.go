// internal/workers/loan/create-loan-record/handler.go
package createloanrecord

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"loan-workers/internal/common/idempotency"
	"loan-workers/internal/common/logger"
	"loan-workers/internal/common/metrics"
	"loan-workers/internal/common/validation"
	"loan-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
)

const (
	TaskType = "create-loan-record"
)

var (
	ErrValidationFailed     = errors.New("LOAN_VALIDATION_FAILED")
	ErrDatabaseInsertFailed = errors.New("DATABASE_INSERT_FAILED")
)

type Handler struct {
	config *Config
	db     *sql.DB
	store  idempotency.Store
	logger logger.Logger
}

func NewHandler(config *Config, db *sql.DB, store idempotency.Store, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		db:     db,
		store:  store,
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
		retries := int32(0)
		if errors.Is(err, ErrValidationFailed) {
			errorCode = "LOAN_VALIDATION_FAILED"
		} else if errors.Is(err, ErrDatabaseInsertFailed) {
			errorCode = "DATABASE_INSERT_FAILED"
			retries = 3
		}
		h.failJob(client, job, errorCode, err.Error(), retries)
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	payload := map[string]interface{}{
		"applicantId":  input.ApplicantID,
		"loanAmount":   input.LoanAmount,
		"termMonths":   input.TermMonths,
		"annualIncome": input.AnnualIncome,
	}

	result, err := validation.Validate(payload, validation.LoanRecordSchema)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}
	if !result.Valid {
		return nil, fmt.Errorf("%w: %s", ErrValidationFailed,
			strings.Join(result.GetErrorMessages(), "; "))
	}

	// Replay a stored response when the same key arrives with the same
	// body. A different body under the same key is a fresh request.
	bodyHash := idempotency.BodyHash(payload)
	if input.IdempotencyKey != "" {
		entry, found, err := h.store.Get(ctx, input.IdempotencyKey, bodyHash)
		if err != nil {
			h.logger.Warn("idempotency lookup failed, treating as miss", map[string]interface{}{
				"error": err,
				"key":   input.IdempotencyKey,
			})
		} else if found {
			var replay Output
			if err := json.Unmarshal(entry.Response, &replay); err == nil {
				replay.Replayed = true
				metrics.IdempotentReplays.Inc()
				h.logger.Info("idempotent replay", map[string]interface{}{
					"key":    input.IdempotencyKey,
					"loanId": replay.LoanID,
				})
				return &replay, nil
			}
			h.logger.Warn("stored idempotency response unreadable, treating as miss", map[string]interface{}{
				"key": input.IdempotencyKey,
			})
		}
	}

	loanID := uuid.New().String()
	createdAt := time.Now().UTC().Format(time.RFC3339)

	_, err = h.db.ExecContext(ctx, `
		INSERT INTO loans (
			id, applicant_id, loan_amount, term_months,
			annual_income, purpose, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)`,
		loanID,
		input.ApplicantID,
		input.LoanAmount,
		input.TermMonths,
		input.AnnualIncome,
		input.Purpose,
		models.LoanStatusSubmitted,
		createdAt,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: insert failed: %v", ErrDatabaseInsertFailed, err)
	}

	// Audit entry is best-effort
	auditDetailsJSON, err := json.Marshal(map[string]interface{}{
		"applicantId": input.ApplicantID,
		"loanAmount":  input.LoanAmount,
		"termMonths":  input.TermMonths,
	})
	if err != nil {
		auditDetailsJSON = []byte("{}")
	}
	_, err = h.db.ExecContext(ctx, `
		INSERT INTO audit_log (event_type, resource_type, resource_id, details, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		"loan_created",
		"loan",
		loanID,
		auditDetailsJSON,
		createdAt,
	)
	if err != nil {
		h.logger.Warn("audit log insert failed", map[string]interface{}{
			"error":  err,
			"loanId": loanID,
		})
	}

	output := &Output{
		LoanID:     loanID,
		LoanStatus: models.LoanStatusSubmitted,
		CreatedAt:  createdAt,
	}

	if input.IdempotencyKey != "" {
		responseJSON, err := json.Marshal(output)
		if err == nil {
			if err := h.store.Put(ctx, input.IdempotencyKey, bodyHash, responseJSON, h.config.IdempotencyTTL); err != nil {
				h.logger.Warn("idempotency store write failed", map[string]interface{}{
					"error": err,
					"key":   input.IdempotencyKey,
				})
			}
		}
	}

	h.logger.Info("loan record created", map[string]interface{}{
		"loanId":      loanID,
		"applicantId": input.ApplicantID,
		"loanAmount":  input.LoanAmount,
		"termMonths":  input.TermMonths,
	})

	return output, nil
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
