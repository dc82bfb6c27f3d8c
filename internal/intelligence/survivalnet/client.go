// Package survivalnet talks to the external survival model server.  The
// server is a thin inference wrapper around the trained classifier; this
// client only ships feature vectors and validates what comes back.
package survivalnet

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/marketgap-io/marketgap/internal/application/survival"
	"github.com/marketgap-io/marketgap/internal/infrastructure/monitoring/logging"
	apperrors "github.com/marketgap-io/marketgap/pkg/errors"
)

// Config locates the model server.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client implements survival.Estimator over HTTP.  One request per predict,
// no retries: a slow or dead model server degrades predictions, it must not
// stall them further.
type Client struct {
	baseURL string
	http    *http.Client
	log     logging.Logger
}

// NewClient returns a Client for the model server at cfg.BaseURL.
func NewClient(cfg Config, log logging.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		baseURL: cfg.BaseURL,
		http:    &http.Client{Timeout: timeout},
		log:     log.Named("survivalnet"),
	}
}

type predictRequest struct {
	Features map[string]float64 `json:"features"`
}

type predictResponse struct {
	Probability float64 `json:"probability"`
	Factors     []struct {
		Feature      string  `json:"feature"`
		Contribution float64 `json:"contribution"`
	} `json:"factors"`
}

// Predict sends the feature vector and returns the model's estimate.
func (c *Client) Predict(ctx context.Context, features map[string]float64) (survival.Estimate, error) {
	body, err := json.Marshal(predictRequest{Features: features})
	if err != nil {
		return survival.Estimate{}, apperrors.Wrap(err, apperrors.ErrCodeSerialization, "encode predict request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/predict", bytes.NewReader(body))
	if err != nil {
		return survival.Estimate{}, apperrors.Wrap(err, apperrors.ErrCodeModelUnavailable, "build predict request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return survival.Estimate{}, apperrors.Wrap(err, apperrors.ErrCodeModelUnavailable, "call survival model")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 1024))
		return survival.Estimate{}, apperrors.New(apperrors.ErrCodeModelUnavailable,
			fmt.Sprintf("survival model returned status %d", resp.StatusCode))
	}

	var out predictResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return survival.Estimate{}, apperrors.Wrap(err, apperrors.ErrCodeModelBadOutput, "decode predict response")
	}
	if out.Probability < 0 || out.Probability > 1 {
		return survival.Estimate{}, apperrors.New(apperrors.ErrCodeModelBadOutput,
			fmt.Sprintf("probability %v outside [0,1]", out.Probability))
	}

	est := survival.Estimate{Probability: out.Probability}
	for _, f := range out.Factors {
		est.Factors = append(est.Factors, survival.Factor{
			Feature:      f.Feature,
			Contribution: f.Contribution,
		})
	}
	return est, nil
}
