// internal/workers/loan/index-evaluation/handler.go
package indexevaluation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"loan-workers/internal/common/logger"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "index-evaluation"
)

var (
	ErrMissingEvaluation = errors.New("MISSING_EVALUATION_ID")
)

// DocumentIndexer is satisfied by database.ElasticsearchClient.
type DocumentIndexer interface {
	IndexDocument(ctx context.Context, index, docID string, body []byte) error
}

type Handler struct {
	config  *Config
	indexer DocumentIndexer
	logger  logger.Logger
}

func NewHandler(config *Config, indexer DocumentIndexer, log logger.Logger) *Handler {
	return &Handler{
		config:  config,
		indexer: indexer,
		logger:  log.WithFields(map[string]interface{}{"taskType": TaskType}),
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
		if errors.Is(err, ErrMissingEvaluation) {
			errorCode = "MISSING_EVALUATION_ID"
		}
		h.failJob(client, job, errorCode, err.Error(), 0)
		return
	}

	h.completeJob(client, job, output)
}

// execute writes the evaluation document for ops search. Indexing is
// best-effort: a failed write is a Warn and indexed=false, never a
// failed job.
func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.EvaluationID == "" {
		return nil, fmt.Errorf("%w: evaluationId is required", ErrMissingEvaluation)
	}

	indexedAt := time.Now().UTC().Format(time.RFC3339)

	doc, err := json.Marshal(map[string]interface{}{
		"evaluationId":     input.EvaluationID,
		"applicantId":      input.ApplicantID,
		"loanId":           input.LoanID,
		"decision":         input.Decision,
		"score":            input.Score,
		"reasons":          input.Reasons,
		"estimatedPayment": input.EstimatedPayment,
		"debtRatio":        input.DebtRatio,
		"evaluatedAt":      input.EvaluatedAt,
		"indexedAt":        indexedAt,
	})
	if err != nil {
		h.logger.Warn("evaluation document encode failed", map[string]interface{}{
			"error":        err,
			"evaluationId": input.EvaluationID,
		})
		return &Output{Indexed: false, IndexedAt: indexedAt}, nil
	}

	if err := h.indexer.IndexDocument(ctx, h.config.Index, input.EvaluationID, doc); err != nil {
		h.logger.Warn("evaluation index write failed", map[string]interface{}{
			"error":        err,
			"evaluationId": input.EvaluationID,
			"index":        h.config.Index,
		})
		return &Output{Indexed: false, IndexedAt: indexedAt}, nil
	}

	h.logger.Info("evaluation indexed", map[string]interface{}{
		"evaluationId": input.EvaluationID,
		"index":        h.config.Index,
	})

	return &Output{
		Indexed:   true,
		Index:     h.config.Index,
		IndexedAt: indexedAt,
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
