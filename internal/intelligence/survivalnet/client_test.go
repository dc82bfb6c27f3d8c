package survivalnet

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marketgap-io/marketgap/internal/testutil"
	apperrors "github.com/marketgap-io/marketgap/pkg/errors"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{BaseURL: srv.URL}, testutil.NewMockLogger())
}

func TestPredict(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/predict", r.URL.Path)

		var req struct {
			Features map[string]float64 `json:"features"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, 1.0, req.Features["cuisine_thai"])

		json.NewEncoder(w).Encode(map[string]interface{}{
			"probability": 0.64,
			"factors": []map[string]interface{}{
				{"feature": "stars_yelp", "contribution": 0.2},
			},
		})
	})

	est, err := c.Predict(context.Background(), map[string]float64{"cuisine_thai": 1})
	require.NoError(t, err)
	assert.Equal(t, 0.64, est.Probability)
	require.Len(t, est.Factors, 1)
	assert.Equal(t, "stars_yelp", est.Factors[0].Feature)
}

func TestPredictServerError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	_, err := c.Predict(context.Background(), nil)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeModelUnavailable))
}

func TestPredictRejectsOutOfRangeProbability(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"probability": 1.7})
	})

	_, err := c.Predict(context.Background(), nil)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeModelBadOutput))
}

func TestPredictRejectsGarbageBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("not json"))
	})

	_, err := c.Predict(context.Background(), nil)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeModelBadOutput))
}

func TestPredictUnreachableServer(t *testing.T) {
	c := NewClient(Config{BaseURL: "http://127.0.0.1:1"}, testutil.NewMockLogger())
	_, err := c.Predict(context.Background(), nil)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeModelUnavailable))
}
