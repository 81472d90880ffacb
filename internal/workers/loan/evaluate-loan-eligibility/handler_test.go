// internal/workers/loan/evaluate-loan-eligibility/handler_test.go
package evaluateloaneligibility

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"loan-workers/internal/common/logger"
	"loan-workers/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func createTestConfig() *Config {
	return &Config{
		AnnualInterestRate:       0.12,
		MinIncome:                50000,
		UnemployedMinOtherIncome: 25000,
		MaxDebtRatio:             0.40,
		CacheKey:                 "rule-config",
		CacheTTL:                 time.Minute,
	}
}

type testLogger struct {
	t *testing.T
}

func (tl *testLogger) Debug(msg string, fields map[string]interface{}) {
	tl.t.Logf("DEBUG: %s %v", msg, fields)
}

func (tl *testLogger) Info(msg string, fields map[string]interface{}) {
	tl.t.Logf("INFO: %s %v", msg, fields)
}

func (tl *testLogger) Warn(msg string, fields map[string]interface{}) {
	tl.t.Logf("WARN: %s %v", msg, fields)
}

func (tl *testLogger) Error(msg string, fields map[string]interface{}) {
	tl.t.Logf("ERROR: %s %v", msg, fields)
}

func (tl *testLogger) WithFields(fields map[string]interface{}) logger.Logger {
	return tl
}

func (tl *testLogger) WithError(err error) logger.Logger {
	return tl.WithFields(map[string]interface{}{"error": err})
}

func newTestLogger(t *testing.T) logger.Logger {
	return &testLogger{t: t}
}

// expectNoRuleConfig simulates an empty rule_config table so the
// evaluator falls back to config defaults.
func expectNoRuleConfig(mock sqlmock.Sqlmock) {
	mock.ExpectQuery(`SELECT config FROM rule_config`).
		WillReturnError(sql.ErrNoRows)
}

func expectPersistence(mock sqlmock.Sqlmock) {
	mock.ExpectExec(`INSERT INTO evaluations`).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`UPDATE loans`).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`INSERT INTO audit_log`).
		WillReturnResult(sqlmock.NewResult(1, 1))
}

// ==========================
// Decision Rule Tests
// ==========================

func TestHandler_Execute_Pass(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	expectNoRuleConfig(mock)
	expectPersistence(mock)

	handler := NewHandler(createTestConfig(), db, nil, newTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{
		ApplicantID:   "applicant-001",
		LoanID:        "loan-001",
		LoanAmount:    100000,
		TermMonths:    12,
		MonthlyIncome: 100000,
	})

	require.NoError(t, err)
	assert.Equal(t, models.DecisionPass, output.Decision)
	assert.Equal(t, 70, output.Score)
	assert.Equal(t, models.LoanStatusApproved, output.LoanStatus)
	assert.Contains(t, output.Reasons, "Debt ratio below 40%")
	assert.Contains(t, output.Reasons, "Monthly income above threshold")
	assert.InDelta(t, 8884.88, output.EstimatedPayment, 0.01)
	assert.NotEmpty(t, output.EvaluationID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_FailInsufficientIncome(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	expectNoRuleConfig(mock)
	expectPersistence(mock)

	handler := NewHandler(createTestConfig(), db, nil, newTestLogger(t))

	// 4500/mo against a 100k loan: loan-to-monthly-income is ~22, well
	// past the 12x bar, and income is below the monthly minimum.
	output, err := handler.Execute(context.Background(), &Input{
		ApplicantID:   "applicant-001",
		LoanID:        "loan-001",
		LoanAmount:    100000,
		TermMonths:    120,
		MonthlyIncome: 4500,
	})

	require.NoError(t, err)
	assert.Equal(t, models.DecisionFail, output.Decision)
	assert.Equal(t, 20, output.Score)
	assert.Equal(t, models.LoanStatusRejected, output.LoanStatus)
	assert.Contains(t, output.Reasons, "Insufficient income vs requested amount")
	assert.NotContains(t, output.Reasons, "Monthly income above threshold")
	assert.InDelta(t, 0.3188, output.DebtRatio, 0.0001)
}

func TestHandler_Execute_LoanUnder12xIncomeDoesNotFail(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	expectNoRuleConfig(mock)
	expectPersistence(mock)

	handler := NewHandler(createTestConfig(), db, nil, newTestLogger(t))

	// Income below the minimum but the loan is only 10x monthly income,
	// so the insufficient-income rule stays quiet.
	output, err := handler.Execute(context.Background(), &Input{
		ApplicantID:   "applicant-001",
		LoanID:        "loan-001",
		LoanAmount:    50000,
		TermMonths:    12,
		MonthlyIncome: 5000,
	})

	require.NoError(t, err)
	assert.Equal(t, models.DecisionReview, output.Decision)
	assert.Equal(t, 50, output.Score)
	assert.Equal(t, []string{"Manual review required"}, output.Reasons)
}

func TestHandler_Execute_FailUnemployed(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	expectNoRuleConfig(mock)
	expectPersistence(mock)

	handler := NewHandler(createTestConfig(), db, nil, newTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{
		ApplicantID:      "applicant-001",
		LoanID:           "loan-001",
		LoanAmount:       200000,
		TermMonths:       48,
		MonthlyIncome:    20000,
		EmploymentStatus: "unemployed",
		OtherIncome:      10000,
	})

	require.NoError(t, err)
	assert.Equal(t, models.DecisionFail, output.Decision)
	assert.Equal(t, 20, output.Score)
	assert.Contains(t, output.Reasons, "Unemployed without sufficient other income")
}

func TestHandler_Execute_LastRuleWins(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	expectNoRuleConfig(mock)
	expectPersistence(mock)

	handler := NewHandler(createTestConfig(), db, nil, newTestLogger(t))

	// The unemployed rule fails the applicant but the pass rule fires
	// afterwards; the later rule decides the outcome while both adjust
	// the score.
	output, err := handler.Execute(context.Background(), &Input{
		ApplicantID:      "applicant-001",
		LoanID:           "loan-001",
		LoanAmount:       100000,
		TermMonths:       12,
		MonthlyIncome:    60000,
		EmploymentStatus: "unemployed",
		OtherIncome:      0,
	})

	require.NoError(t, err)
	assert.Equal(t, models.DecisionPass, output.Decision)
	assert.Equal(t, 40, output.Score)
	assert.Contains(t, output.Reasons, "Unemployed without sufficient other income")
	assert.Contains(t, output.Reasons, "Debt ratio below 40%")
}

func TestHandler_Execute_DebtRatioAtThresholdIsNotPass(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	expectNoRuleConfig(mock)
	expectPersistence(mock)

	// Zero rate makes the payment exact: 120000/12 = 10000, and with
	// 10000 existing debt the ratio lands on 0.40 to the cent.
	cfg := createTestConfig()
	cfg.AnnualInterestRate = 0

	handler := NewHandler(cfg, db, nil, newTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{
		ApplicantID:         "applicant-001",
		LoanID:              "loan-001",
		LoanAmount:          120000,
		TermMonths:          12,
		MonthlyIncome:       50000,
		ExistingMonthlyDebt: 10000,
	})

	require.NoError(t, err)
	assert.InDelta(t, 0.40, output.DebtRatio, 0.0001)
	assert.Equal(t, models.DecisionReview, output.Decision)
	assert.Equal(t, 50, output.Score)
}

func TestHandler_Execute_AnnualIncomeDividedBy12(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	expectNoRuleConfig(mock)
	expectPersistence(mock)

	handler := NewHandler(createTestConfig(), db, nil, newTestLogger(t))

	// Only the annual figure arrives: 1.2M/yr is 100k/mo, enough to pass.
	output, err := handler.Execute(context.Background(), &Input{
		ApplicantID:  "applicant-001",
		LoanID:       "loan-001",
		LoanAmount:   100000,
		TermMonths:   12,
		AnnualIncome: 1200000,
	})

	require.NoError(t, err)
	assert.Equal(t, models.DecisionPass, output.Decision)
	assert.Equal(t, 70, output.Score)
}

func TestHandler_Execute_ScoreClampedAtZero(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	expectNoRuleConfig(mock)
	expectPersistence(mock)

	handler := NewHandler(createTestConfig(), db, nil, newTestLogger(t))

	// Both fail rules fire: 50 - 30 - 30 clamps to 0
	output, err := handler.Execute(context.Background(), &Input{
		ApplicantID:      "applicant-001",
		LoanID:           "loan-001",
		LoanAmount:       100000,
		TermMonths:       12,
		MonthlyIncome:    4000,
		EmploymentStatus: "unemployed",
		OtherIncome:      0,
	})

	require.NoError(t, err)
	assert.Equal(t, 0, output.Score)
	assert.Equal(t, models.DecisionFail, output.Decision)
}

// ==========================
// Threshold Loading Tests
// ==========================

func TestHandler_Execute_ThresholdsFromDatabaseAndCache(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mr := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	// Lowered min_income and raised max_debt_ratio let a borderline
	// applicant through
	ruleJSON := `{"annual_interest_rate":0.12,"min_income":8000,"unemployed_min_other_income":25000,"max_debt_ratio":0.95}`
	mock.ExpectQuery(`SELECT config FROM rule_config`).
		WillReturnRows(sqlmock.NewRows([]string{"config"}).AddRow([]byte(ruleJSON)))
	expectPersistence(mock)

	handler := NewHandler(createTestConfig(), db, cache, newTestLogger(t))

	// Debt ratio ~0.89 fails the default 0.40 but passes 0.95
	output, err := handler.Execute(context.Background(), &Input{
		ApplicantID:   "applicant-001",
		LoanID:        "loan-001",
		LoanAmount:    100000,
		TermMonths:    12,
		MonthlyIncome: 10000,
	})

	require.NoError(t, err)
	assert.Equal(t, models.DecisionPass, output.Decision)
	assert.Contains(t, output.Reasons, "Debt ratio below 95%")

	// Row was cached, so a second run skips the rule_config query
	assert.True(t, mr.Exists("rule-config"))

	expectPersistence(mock)
	_, err = handler.Execute(context.Background(), &Input{
		ApplicantID:   "applicant-001",
		LoanID:        "loan-002",
		LoanAmount:    100000,
		TermMonths:    12,
		MonthlyIncome: 10000,
	})
	require.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

// ==========================
// Error Path Tests
// ==========================

func TestHandler_Execute_MissingLoanID(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	handler := NewHandler(createTestConfig(), db, nil, newTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{ApplicantID: "a"})

	assert.Error(t, err)
	assert.Nil(t, output)
	assert.True(t, errors.Is(err, ErrMissingLoan))
}

func TestHandler_Execute_InvalidTerm(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	expectNoRuleConfig(mock)

	handler := NewHandler(createTestConfig(), db, nil, newTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{
		ApplicantID: "applicant-001",
		LoanID:      "loan-001",
		LoanAmount:  100000,
		TermMonths:  0,
	})

	assert.Error(t, err)
	assert.Nil(t, output)
	assert.True(t, errors.Is(err, ErrInvalidTerm))
}

func TestHandler_Execute_EvaluationInsertFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	expectNoRuleConfig(mock)
	mock.ExpectExec(`INSERT INTO evaluations`).
		WillReturnError(errors.New("disk full"))

	handler := NewHandler(createTestConfig(), db, nil, newTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{
		ApplicantID:   "applicant-001",
		LoanID:        "loan-001",
		LoanAmount:    100000,
		TermMonths:    12,
		MonthlyIncome: 100000,
	})

	assert.Error(t, err)
	assert.Nil(t, output)
	assert.True(t, errors.Is(err, ErrDatabaseInsertFailed))
}

// ==========================
// Audit PII Tests
// ==========================

func TestStripPII(t *testing.T) {
	details := stripPII(map[string]interface{}{
		"loanId": "loan-001",
		"email":  "a@example.com",
		"phone":  "+15550001111",
		"score":  70,
	})

	assert.NotContains(t, details, "email")
	assert.NotContains(t, details, "phone")
	assert.Equal(t, "loan-001", details["loanId"])
	assert.Equal(t, 70, details["score"])
}
