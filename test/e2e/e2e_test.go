// test/e2e/e2e_test.go
package e2e

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"loan-workers/internal/common/config"
	"loan-workers/internal/common/database"
	"loan-workers/internal/common/idempotency"
	"loan-workers/internal/common/logger"
	"loan-workers/internal/common/recommend"
	"loan-workers/internal/common/scoring"

	buildapplicantprofile "loan-workers/internal/workers/applicant/build-applicant-profile"
	persistprofilebundle "loan-workers/internal/workers/applicant/persist-profile-bundle"

	recommendloanoffers "loan-workers/internal/workers/scoring/recommend-loan-offers"
	scorefeaturevector "loan-workers/internal/workers/scoring/score-feature-vector"

	createloanrecord "loan-workers/internal/workers/loan/create-loan-record"
	evaluateloaneligibility "loan-workers/internal/workers/loan/evaluate-loan-eligibility"
	indexevaluation "loan-workers/internal/workers/loan/index-evaluation"
	notifydecision "loan-workers/internal/workers/loan/notify-decision"
)

var (
	zeebeClient zbc.Client
	zapLog      *zap.Logger
)

func TestMain(m *testing.M) {
	if os.Getenv("E2E_TESTS") == "" {
		fmt.Println("E2E_TESTS not set, skipping e2e suite")
		os.Exit(0)
	}

	var err error

	// Initialize Zeebe client with real connection
	zeebeClient, err = zbc.NewClient(&zbc.ClientConfig{
		GatewayAddress:         "localhost:26500",
		UsePlaintextConnection: true,
	})
	if err != nil {
		panic(fmt.Sprintf("failed to connect to Zeebe: %v", err))
	}

	zapLog, _ = zap.NewProduction()

	code := m.Run()

	zeebeClient.Close()
	os.Exit(code)
}

func TestFullE2E(t *testing.T) {
	_, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	cfg, err := config.Load()
	require.NoError(t, err)
	require.NotNil(t, cfg)

	t.Log("Starting full E2E test with real services...")

	// 1. Check all external services are available
	assertAllServicesConnectivity(t, cfg)

	// 2. Create DB tables if needed and insert test data
	createDatabaseTables(t, cfg)

	// 3. Deploy all BPMN files
	deployAllBPMN(t, cfg, zapLog)

	// 4. Run all 8 workers against the real backends
	testAllWorkers(t, cfg, zapLog)

	t.Log("Full E2E pipeline passed")
}

func assertAllServicesConnectivity(t *testing.T, cfg *config.Config) {
	t.Log("Checking service connectivity...")

	// Force localhost for e2e runs
	cfg.Database.Postgres.Host = "localhost"
	cfg.Database.Redis.Address = "localhost:6379"
	cfg.Database.Elasticsearch.URL = "http://localhost:9200"

	// --- PostgreSQL ---
	db, err := database.NewPostgres(cfg.Database.Postgres)
	require.NoError(t, err, "PostgreSQL connection failed")
	assert.NoError(t, db.Ping(context.Background()), "PostgreSQL ping failed")
	db.Close()
	t.Log("PostgreSQL connected")

	// --- Redis ---
	rdb, err := database.NewRedis(cfg.Database.Redis)
	require.NoError(t, err, "Redis client creation failed")
	assert.NoError(t, rdb.Ping(context.Background()), "Redis ping failed")
	t.Log("Redis connected")

	// --- Elasticsearch ---
	esURL := cfg.Database.Elasticsearch.GetURL()
	t.Logf("Elasticsearch URL: %s", esURL)

	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{esURL},
	})
	require.NoError(t, err, "Elasticsearch client creation failed")

	res, err := es.Info()
	require.NoError(t, err, "Elasticsearch info request failed")
	assert.False(t, res.IsError(), "Elasticsearch returned error")
	res.Body.Close()
	t.Log("Elasticsearch connected")

	// --- Zeebe ---
	_, err = zeebeClient.NewTopologyCommand().Send(context.Background())
	assert.NoError(t, err, "Zeebe topology request failed")
	t.Log("Zeebe connected")
}

// ==========================
// 2. Database Tables Setup + Test Data
// ==========================
func createDatabaseTables(t *testing.T, cfg *config.Config) {
	t.Log("Creating database tables and inserting test data...")

	dbClient, err := database.NewPostgres(cfg.Database.Postgres)
	require.NoError(t, err)
	defer dbClient.Close()

	db := dbClient.GetDB()

	queries := []string{
		`CREATE TABLE IF NOT EXISTS applicants (
			id VARCHAR(255) PRIMARY KEY,
			external_ref VARCHAR(255),
			full_name VARCHAR(255),
			email VARCHAR(255),
			phone VARCHAR(50),
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS loans (
			id VARCHAR(255) PRIMARY KEY,
			applicant_id VARCHAR(255) NOT NULL,
			loan_amount NUMERIC(14,2),
			term_months INTEGER,
			annual_income NUMERIC(14,2),
			purpose VARCHAR(255),
			status VARCHAR(50),
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS evaluations (
			id VARCHAR(255) PRIMARY KEY,
			loan_id VARCHAR(255) NOT NULL,
			applicant_id VARCHAR(255) NOT NULL,
			score INTEGER,
			outcome VARCHAR(50),
			reasons JSONB,
			est_monthly_payment NUMERIC(14,2),
			debt_ratio NUMERIC(6,4),
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS profile_bundles (
			id VARCHAR(255) PRIMARY KEY,
			applicant_id VARCHAR(255) NOT NULL,
			loan_id VARCHAR(255),
			bundle JSONB,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS rule_config (
			id SERIAL PRIMARY KEY,
			config JSONB NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS audit_log (
			id SERIAL PRIMARY KEY,
			event_type VARCHAR(100),
			resource_type VARCHAR(100),
			resource_id VARCHAR(255),
			details JSONB,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
	}

	for _, query := range queries {
		_, err := db.ExecContext(context.Background(), query)
		if err != nil {
			t.Logf("Warning: Failed to create table: %v", err)
		}
	}

	testData := []string{
		`INSERT INTO applicants (id, external_ref, full_name, email, phone)
		 VALUES ('e2e-applicant-001', 'ext-001', 'Test Applicant', 'applicant@example.com', '+15550001111')
		 ON CONFLICT (id) DO NOTHING`,
		`INSERT INTO loans (id, applicant_id, loan_amount, term_months, annual_income, purpose, status)
		 VALUES ('e2e-loan-001', 'e2e-applicant-001', 1500000, 48, 480000, 'home improvement', 'submitted')
		 ON CONFLICT (id) DO NOTHING`,
		`INSERT INTO rule_config (config)
		 SELECT '{"annual_interest_rate": 0.12, "min_income": 50000, "unemployed_min_other_income": 25000, "max_debt_ratio": 0.40}'::jsonb
		 WHERE NOT EXISTS (SELECT 1 FROM rule_config)`,
	}

	for _, query := range testData {
		_, err := db.ExecContext(context.Background(), query)
		if err != nil {
			t.Logf("Warning: Failed to insert test data: %v", err)
		}
	}

	t.Log("Database tables created/verified with test data")
}

// ==========================
// 3. Deploy All BPMN Files
// ==========================
func deployAllBPMN(t *testing.T, _ *config.Config, _ *zap.Logger) {
	t.Log("Deploying BPMN files...")

	client := zeebeClient

	possiblePaths := []string{
		"bpmn",
		"../bpmn",
		"../../bpmn",
		"./bpmn",
	}

	var bpmnDir string
	var files []os.DirEntry
	var err error

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			files, err = os.ReadDir(path)
			if err == nil {
				bpmnDir = path
				t.Logf("Found BPMN directory: %s", bpmnDir)
				break
			}
		}
	}

	if bpmnDir == "" {
		t.Log("BPMN directory not found in any expected location, skipping deployment")
		return
	}

	require.NoError(t, err, "Cannot read BPMN directory")

	bpmnCount := 0
	for _, f := range files {
		if f.IsDir() {
			continue
		}
		if !strings.HasSuffix(strings.ToLower(f.Name()), ".bpmn") {
			continue
		}

		path := fmt.Sprintf("%s/%s", bpmnDir, f.Name())
		t.Logf("Deploying BPMN: %s", path)

		_, err := client.NewDeployResourceCommand().AddResourceFile(path).Send(context.Background())
		if err != nil {
			t.Logf("Failed to deploy BPMN %s: %v", f.Name(), err)
		} else {
			bpmnCount++
		}
	}

	t.Logf("Deployed %d BPMN files", bpmnCount)
}

// ==========================
// 4. Test All 8 Workers
// ==========================
func testAllWorkers(t *testing.T, cfg *config.Config, log *zap.Logger) {
	t.Log("Testing all 8 workers with real execution...")

	dbClient, err := database.NewPostgres(cfg.Database.Postgres)
	require.NoError(t, err)
	defer dbClient.Close()

	db := dbClient.GetDB()

	esClient, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
	require.NoError(t, err)

	rdbClient, err := database.NewRedis(cfg.Database.Redis)
	require.NoError(t, err)
	defer rdbClient.Close()

	rdb := rdbClient.GetClient()

	testCases := []struct {
		name   string
		testFn func(*testing.T, *config.Config, *zap.Logger, *sql.DB, *database.ElasticsearchClient, *redis.Client)
	}{
		{"build-applicant-profile", testBuildApplicantProfile},
		{"persist-profile-bundle", testPersistProfileBundle},
		{"score-feature-vector", testScoreFeatureVector},
		{"recommend-loan-offers", testRecommendLoanOffers},
		{"create-loan-record", testCreateLoanRecord},
		{"evaluate-loan-eligibility", testEvaluateLoanEligibility},
		{"notify-decision", testNotifyDecision},
		{"index-evaluation", testIndexEvaluation},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tc.testFn(t, cfg, log, db, esClient, rdb)
		})
	}
}

// ==========================
// Worker Test Functions
// ==========================

func testBuildApplicantProfile(t *testing.T, cfg *config.Config, log *zap.Logger, db *sql.DB, es *database.ElasticsearchClient, rdb *redis.Client) {
	handler := buildapplicantprofile.NewHandler(&buildapplicantprofile.Config{
		Timeout: 30 * time.Second,
	}, logger.NewZapAdapter(log))

	input := &buildapplicantprofile.Input{
		ApplicantID: "e2e-applicant-001",
		LoanID:      "e2e-loan-001",
		Submitted: map[string]interface{}{
			"name":           "Test Applicant",
			"income":         480000.0,
			"loanAmount":     1500000.0,
			"loanTerm":       4.0,
			"employeeStatus": "employed",
		},
		Confidences: map[string]float64{"income": 0.9},
	}

	result, err := handler.Execute(context.Background(), input)
	assert.NoError(t, err)
	assert.Equal(t, "e2e-applicant-001", result.ApplicantProfile.ApplicantID)
	assert.NotEmpty(t, result.ApplicantProfile.Vector)
}

func testPersistProfileBundle(t *testing.T, cfg *config.Config, log *zap.Logger, db *sql.DB, es *database.ElasticsearchClient, rdb *redis.Client) {
	handler := persistprofilebundle.NewHandler(&persistprofilebundle.Config{
		Timeout: 30 * time.Second,
	}, db, logger.NewZapAdapter(log))

	input := &persistprofilebundle.Input{
		ApplicantID: "e2e-applicant-001",
		LoanID:      "e2e-loan-001",
		Inference:   map[string]interface{}{"prediction": 1.0},
	}

	result, err := handler.Execute(context.Background(), input)
	assert.NoError(t, err)
	assert.True(t, result.Persisted)
	assert.NotEmpty(t, result.BundleID)
}

func testScoreFeatureVector(t *testing.T, cfg *config.Config, log *zap.Logger, db *sql.DB, es *database.ElasticsearchClient, rdb *redis.Client) {
	scorer := scoring.NewClient("http://localhost:9999/mock", 2*time.Second, logger.NewZapAdapter(log))

	handler := scorefeaturevector.NewHandler(&scorefeaturevector.Config{
		Timeout: 15 * time.Second,
	}, scorer, logger.NewZapAdapter(log))

	input := &scorefeaturevector.Input{
		ApplicantID: "e2e-applicant-001",
		LoanID:      "e2e-loan-001",
	}

	// No scoring service running on :9999, so the worker degrades
	result, err := handler.Execute(context.Background(), input)
	assert.NoError(t, err)
	assert.True(t, result.Degraded)
}

func testRecommendLoanOffers(t *testing.T, cfg *config.Config, log *zap.Logger, db *sql.DB, es *database.ElasticsearchClient, rdb *redis.Client) {
	recommender := recommend.NewClient("http://localhost:9999/mock", 2*time.Second, logger.NewZapAdapter(log))

	handler := recommendloanoffers.NewHandler(&recommendloanoffers.Config{
		Timeout: 20 * time.Second,
	}, recommender, logger.NewZapAdapter(log))

	input := &recommendloanoffers.Input{
		ApplicantID:    "e2e-applicant-001",
		LoanID:         "e2e-loan-001",
		ApplicantInput: map[string]interface{}{"income": 480000.0},
	}

	result, err := handler.Execute(context.Background(), input)
	assert.NoError(t, err)
	assert.True(t, result.Degraded)
	assert.Equal(t, "Rejected", result.Prediction)
}

func testCreateLoanRecord(t *testing.T, cfg *config.Config, log *zap.Logger, db *sql.DB, es *database.ElasticsearchClient, rdb *redis.Client) {
	store := idempotency.NewRedisStore(rdb, "e2e-idem")

	handler := createloanrecord.NewHandler(&createloanrecord.Config{
		Timeout:        30 * time.Second,
		IdempotencyTTL: time.Hour,
	}, db, store, logger.NewZapAdapter(log))

	uniqueKey := fmt.Sprintf("e2e-%d", time.Now().UnixNano())
	input := &createloanrecord.Input{
		ApplicantID:    "e2e-applicant-001",
		LoanAmount:     250000,
		TermMonths:     36,
		AnnualIncome:   480000,
		Purpose:        "vehicle",
		IdempotencyKey: uniqueKey,
	}

	result, err := handler.Execute(context.Background(), input)
	require.NoError(t, err)
	assert.NotEmpty(t, result.LoanID)
	assert.Equal(t, "submitted", result.LoanStatus)
	assert.False(t, result.Replayed)

	// Same key and body replays the stored output
	replay, err := handler.Execute(context.Background(), input)
	require.NoError(t, err)
	assert.True(t, replay.Replayed)
	assert.Equal(t, result.LoanID, replay.LoanID)
}

func testEvaluateLoanEligibility(t *testing.T, cfg *config.Config, log *zap.Logger, db *sql.DB, es *database.ElasticsearchClient, rdb *redis.Client) {
	handler := evaluateloaneligibility.NewHandler(&evaluateloaneligibility.Config{
		Timeout:                  30 * time.Second,
		AnnualInterestRate:       0.12,
		MinIncome:                50000,
		UnemployedMinOtherIncome: 25000,
		MaxDebtRatio:             0.40,
		CacheKey:                 "rule-config",
		CacheTTL:                 time.Minute,
	}, db, rdb, logger.NewZapAdapter(log))

	input := &evaluateloaneligibility.Input{
		ApplicantID:   "e2e-applicant-001",
		LoanID:        "e2e-loan-001",
		LoanAmount:    1500000,
		TermMonths:    48,
		MonthlyIncome: 40000,
	}

	result, err := handler.Execute(context.Background(), input)
	require.NoError(t, err)
	assert.NotEmpty(t, result.EvaluationID)
	assert.NotEmpty(t, result.Decision)
	assert.NotEmpty(t, result.Reasons)
	assert.Greater(t, result.EstimatedPayment, 0.0)
}

func testNotifyDecision(t *testing.T, cfg *config.Config, log *zap.Logger, db *sql.DB, es *database.ElasticsearchClient, rdb *redis.Client) {
	handler, err := notifydecision.NewHandler(&notifydecision.Config{
		EmailEnabled: false,
		SMSEnabled:   false,
		AWSRegion:    "us-east-1",
		Timeout:      30 * time.Second,
	}, db, logger.NewZapAdapter(log))
	require.NoError(t, err)

	input := &notifydecision.Input{
		ApplicantID: "e2e-applicant-001",
		LoanID:      "e2e-loan-001",
		Decision:    "pass",
		Score:       70,
		Reasons:     []string{"Debt ratio below 40%"},
		LoanAmount:  1500000,
	}

	// Channels disabled, so the worker completes without sending
	result, err := handler.Execute(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, notifydecision.StatusDisabled, result.Status)
	assert.False(t, result.EmailSent)
}

func testIndexEvaluation(t *testing.T, cfg *config.Config, log *zap.Logger, db *sql.DB, es *database.ElasticsearchClient, rdb *redis.Client) {
	handler := indexevaluation.NewHandler(&indexevaluation.Config{
		Index:   "loan-evaluations-e2e",
		Timeout: 30 * time.Second,
	}, es, logger.NewZapAdapter(log))

	input := &indexevaluation.Input{
		EvaluationID: fmt.Sprintf("e2e-eval-%d", time.Now().UnixNano()),
		ApplicantID:  "e2e-applicant-001",
		LoanID:       "e2e-loan-001",
		Decision:     "pass",
		Score:        70,
		EvaluatedAt:  time.Now().UTC().Format(time.RFC3339),
	}

	result, err := handler.Execute(context.Background(), input)
	require.NoError(t, err)
	assert.True(t, result.Indexed)
	assert.Equal(t, "loan-evaluations-e2e", result.Index)
}

// ==========================
// Benchmark Tests
// ==========================
func BenchmarkHandler_BuildApplicantProfile(b *testing.B) {
	handler := buildapplicantprofile.NewHandler(&buildapplicantprofile.Config{
		Timeout: 30 * time.Second,
	}, logger.NewStructured("info", "json"))

	input := &buildapplicantprofile.Input{
		ApplicantID: "e2e-applicant-001",
		Submitted: map[string]interface{}{
			"name":       "Test Applicant",
			"income":     480000.0,
			"loanAmount": 1500000.0,
			"loanTerm":   4.0,
		},
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		handler.Execute(context.Background(), input)
	}
}

func BenchmarkHandler_EvaluateLoanEligibility(b *testing.B) {
	cfg, _ := config.Load()
	dbClient, _ := database.NewPostgres(cfg.Database.Postgres)
	defer dbClient.Close()
	db := dbClient.GetDB()

	rdbClient, _ := database.NewRedis(cfg.Database.Redis)
	defer rdbClient.Close()
	rdb := rdbClient.GetClient()

	handler := evaluateloaneligibility.NewHandler(&evaluateloaneligibility.Config{
		Timeout:                  30 * time.Second,
		AnnualInterestRate:       0.12,
		MinIncome:                50000,
		UnemployedMinOtherIncome: 25000,
		MaxDebtRatio:             0.40,
		CacheKey:                 "rule-config",
		CacheTTL:                 time.Minute,
	}, db, rdb, logger.NewStructured("info", "json"))

	input := &evaluateloaneligibility.Input{
		ApplicantID:   "e2e-applicant-001",
		LoanID:        "e2e-loan-001",
		LoanAmount:    1500000,
		TermMonths:    48,
		MonthlyIncome: 40000,
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		handler.Execute(context.Background(), input)
	}
}
