// internal/workers/loan/evaluate-loan-eligibility/handler.go
package evaluateloaneligibility

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"loan-workers/internal/common/logger"
	"loan-workers/internal/common/metrics"
	"loan-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	TaskType = "evaluate-loan-eligibility"
)

var (
	ErrMissingLoan          = errors.New("MISSING_LOAN_ID")
	ErrDatabaseInsertFailed = errors.New("DATABASE_INSERT_FAILED")
)

// piiKeys are stripped from audit details before they are written or
// logged.
var piiKeys = map[string]bool{
	"email": true,
	"phone": true,
}

type Handler struct {
	config *Config
	db     *sql.DB
	cache  *redis.Client
	logger logger.Logger
}

func NewHandler(config *Config, db *sql.DB, cache *redis.Client, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		db:     db,
		cache:  cache,
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
		if errors.Is(err, ErrMissingLoan) {
			errorCode = "MISSING_LOAN_ID"
		} else if errors.Is(err, ErrInvalidTerm) {
			errorCode = "PAYMENT_TERM_INVALID"
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
	if input.LoanID == "" {
		return nil, fmt.Errorf("%w: loanId is required", ErrMissingLoan)
	}

	th := h.loadThresholds(ctx)

	estPayment, err := monthlyPayment(input.LoanAmount, input.TermMonths, th.AnnualInterestRate)
	if err != nil {
		return nil, fmt.Errorf("%w: term_months=%d", err, input.TermMonths)
	}

	// The rule thresholds are monthly figures. Some upstream payloads
	// only carry the annual income; derive the monthly side then.
	monthlyIncome := input.MonthlyIncome
	if monthlyIncome == 0 {
		monthlyIncome = input.AnnualIncome / 12
	}

	score := 50
	outcome := models.DecisionReview
	var reasons []string

	denominator := monthlyIncome
	if denominator < 1 {
		denominator = 1
	}
	debtRatio := (input.ExistingMonthlyDebt + estPayment) / denominator

	// Rules run in fixed order and the last match decides the outcome.
	if monthlyIncome < th.MinIncome && input.LoanAmount/denominator > 12 {
		score -= 30
		outcome = models.DecisionFail
		reasons = append(reasons, "Insufficient income vs requested amount")
	}
	if input.EmploymentStatus == "unemployed" && input.OtherIncome < th.UnemployedMinOtherIncome {
		score -= 30
		outcome = models.DecisionFail
		reasons = append(reasons, "Unemployed without sufficient other income")
	}
	if monthlyIncome >= th.MinIncome && debtRatio < th.MaxDebtRatio {
		score += 20
		outcome = models.DecisionPass
		reasons = append(reasons,
			fmt.Sprintf("Debt ratio below %d%%", int(th.MaxDebtRatio*100)),
			"Monthly income above threshold",
		)
	}

	if len(reasons) == 0 {
		reasons = append(reasons, "Manual review required")
	}

	if score < 0 {
		score = 0
	} else if score > 100 {
		score = 100
	}

	loanStatus := models.LoanStatusReview
	switch outcome {
	case models.DecisionPass:
		loanStatus = models.LoanStatusApproved
	case models.DecisionFail:
		loanStatus = models.LoanStatusRejected
	}

	evaluationID, evaluatedAt, err := h.persist(ctx, input, score, outcome, reasons, estPayment, debtRatio, loanStatus)
	if err != nil {
		return nil, err
	}

	metrics.EvaluationOutcomes.WithLabelValues(outcome).Inc()

	h.logger.Info("loan evaluated", map[string]interface{}{
		"evaluationId": evaluationID,
		"loanId":       input.LoanID,
		"decision":     outcome,
		"score":        score,
		"debtRatio":    debtRatio,
	})

	return &Output{
		EvaluationID:     evaluationID,
		Decision:         outcome,
		Score:            score,
		Reasons:          reasons,
		EstimatedPayment: estPayment,
		DebtRatio:        debtRatio,
		LoanStatus:       loanStatus,
		EvaluatedAt:      evaluatedAt,
	}, nil
}

func (h *Handler) persist(ctx context.Context, input *Input, score int, outcome string, reasons []string, estPayment, debtRatio float64, loanStatus string) (string, string, error) {
	evaluationID := uuid.New().String()
	evaluatedAt := time.Now().UTC().Format(time.RFC3339)

	reasonsJSON, err := json.Marshal(reasons)
	if err != nil {
		return "", "", fmt.Errorf("%w: marshal reasons: %v", ErrDatabaseInsertFailed, err)
	}

	_, err = h.db.ExecContext(ctx, `
		INSERT INTO evaluations (
			id, loan_id, applicant_id, score, outcome,
			reasons, est_monthly_payment, debt_ratio, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		evaluationID,
		input.LoanID,
		input.ApplicantID,
		score,
		outcome,
		reasonsJSON,
		estPayment,
		debtRatio,
		evaluatedAt,
	)
	if err != nil {
		return "", "", fmt.Errorf("%w: insert evaluation: %v", ErrDatabaseInsertFailed, err)
	}

	_, err = h.db.ExecContext(ctx, `
		UPDATE loans SET status = $1, updated_at = $2 WHERE id = $3`,
		loanStatus,
		evaluatedAt,
		input.LoanID,
	)
	if err != nil {
		return "", "", fmt.Errorf("%w: update loan status: %v", ErrDatabaseInsertFailed, err)
	}

	// Audit entry is best-effort and never carries PII
	details := stripPII(map[string]interface{}{
		"loanId":    input.LoanID,
		"decision":  outcome,
		"score":     score,
		"debtRatio": debtRatio,
		"email":     input.Email,
		"phone":     input.Phone,
	})
	detailsJSON, err := json.Marshal(details)
	if err != nil {
		detailsJSON = []byte("{}")
	}
	_, err = h.db.ExecContext(ctx, `
		INSERT INTO audit_log (event_type, resource_type, resource_id, details, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		"loan_evaluated",
		"evaluation",
		evaluationID,
		detailsJSON,
		evaluatedAt,
	)
	if err != nil {
		h.logger.Warn("audit log insert failed", map[string]interface{}{
			"error":        err,
			"evaluationId": evaluationID,
		})
	}

	return evaluationID, evaluatedAt, nil
}

func stripPII(details map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(details))
	for k, v := range details {
		if piiKeys[k] {
			continue
		}
		out[k] = v
	}
	return out
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
