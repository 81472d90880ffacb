// internal/common/scoring/client_test.go
package scoring

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loan-workers/internal/common/logger"
)

func TestClient_Score(t *testing.T) {
	t.Run("forwards features, vector and order", func(t *testing.T) {
		var captured scoreRequest
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodPost, r.Method)
			require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]interface{}{
				"prediction":  "Approved",
				"probability": 0.91,
			})
		}))
		defer server.Close()

		client := NewClient(server.URL, time.Second, logger.NewNoOpLogger())
		result := client.Score(context.Background(),
			map[string]interface{}{"cibil_score": 720},
			[]float64{720},
			[]string{"cibil_score"},
		)

		assert.Equal(t, "Approved", result["prediction"])
		assert.Equal(t, 0.91, result["probability"])
		assert.Equal(t, []string{"cibil_score"}, captured.FeatureOrder)
		assert.Equal(t, []float64{720}, captured.Vector)
	})

	t.Run("server error degrades to error payload", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		client := NewClient(server.URL, time.Second, logger.NewNoOpLogger())
		result := client.Score(context.Background(), nil, nil, nil)

		assert.Contains(t, result, "error")
		assert.Contains(t, result["error"], "500")
	})

	t.Run("timeout degrades instead of failing", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
		}))
		defer server.Close()

		client := NewClient(server.URL, 20*time.Millisecond, logger.NewNoOpLogger())
		result := client.Score(context.Background(), nil, nil, nil)

		assert.Contains(t, result, "error")
	})

	t.Run("unreachable endpoint degrades", func(t *testing.T) {
		client := NewClient("http://127.0.0.1:1", time.Second, logger.NewNoOpLogger())
		result := client.Score(context.Background(), nil, nil, nil)

		assert.Contains(t, result, "error")
	})

	t.Run("malformed response body degrades", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("not json"))
		}))
		defer server.Close()

		client := NewClient(server.URL, time.Second, logger.NewNoOpLogger())
		result := client.Score(context.Background(), nil, nil, nil)

		assert.Contains(t, result, "error")
	})
}
