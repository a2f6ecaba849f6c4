package scoring

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"github.com/kavya/transintelliflow/backend/internal/domain"
)

const defaultTimeout = 10 * time.Second

// predictRequest mirrors the scoring service's enhanced predict payload.
type predictRequest struct {
	TransactionID  string  `json:"transaction_id"`
	CustomerID     string  `json:"customer_id"`
	Amount         float64 `json:"amount"`
	AccountAgeDays int     `json:"account_age_days"`
	Channel        string  `json:"channel"`
	KYCVerified    string  `json:"kyc_verified"`
	Hour           int     `json:"hour"`
}

// predictResponse mirrors the scoring service's response body.
type predictResponse struct {
	TransactionID string   `json:"transaction_id"`
	Prediction    string   `json:"prediction"`
	RiskScore     float64  `json:"risk_score"`
	Confidence    float64  `json:"confidence"`
	RiskLevel     string   `json:"risk_level"`
	RuleFlags     []string `json:"rule_flags"`
}

// httpClient talks to the scoring service over its REST endpoint. Calls run
// through a circuit breaker so a down service fails fast instead of tying up
// dispatcher workers; an open circuit surfaces as an ordinary item error.
type httpClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
	logger  *slog.Logger
}

// NewHTTPClient builds a scoring client for the given endpoint.
func NewHTTPClient(logger *slog.Logger, opts Options) (Client, error) {
	if opts.BaseURL == "" {
		return nil, ErrMissingBaseURL
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	settings := gobreaker.Settings{
		Name: "scoring-service",
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("scoring circuit breaker state changed",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	}

	return &httpClient{
		baseURL: opts.BaseURL,
		apiKey:  opts.APIKey,
		client:  &http.Client{Timeout: timeout},
		breaker: gobreaker.NewCircuitBreaker(settings),
		logger:  logger,
	}, nil
}

func (c *httpClient) Score(ctx context.Context, req domain.TransactionRequest) (domain.ScoringResult, error) {
	payload := predictRequest{
		TransactionID:  req.ID,
		CustomerID:     req.CustomerID,
		Amount:         req.Amount,
		AccountAgeDays: req.AccountAgeDays,
		Channel:        string(req.Channel),
		KYCVerified:    req.KYCVerified,
		Hour:           req.Hour,
	}

	result, err := c.breaker.Execute(func() (any, error) {
		return c.post(ctx, payload)
	})
	if err != nil {
		return domain.ScoringResult{}, err
	}
	return result.(domain.ScoringResult), nil
}

func (c *httpClient) post(ctx context.Context, payload predictRequest) (domain.ScoringResult, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return domain.ScoringResult{}, fmt.Errorf("encode predict payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/predict/enhanced", bytes.NewReader(body))
	if err != nil {
		return domain.ScoringResult{}, fmt.Errorf("build predict request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return domain.ScoringResult{}, fmt.Errorf("call scoring service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.ScoringResult{}, fmt.Errorf("scoring service returned status %d", resp.StatusCode)
	}

	var decoded predictResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return domain.ScoringResult{}, fmt.Errorf("decode scoring response: %w", err)
	}

	label := domain.Label(decoded.Prediction)
	if label != domain.LabelFraud && label != domain.LabelLegitimate {
		return domain.ScoringResult{}, fmt.Errorf("scoring service returned unknown label %q", decoded.Prediction)
	}

	return domain.ScoringResult{
		TransactionID:  decoded.TransactionID,
		PredictedLabel: label,
		RiskScore:      decoded.RiskScore,
		Confidence:     decoded.Confidence,
		RiskLevel:      domain.RiskLevel(decoded.RiskLevel),
		RuleFlags:      decoded.RuleFlags,
	}, nil
}

func (c *httpClient) Healthy(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/health", nil)
	if err != nil {
		return fmt.Errorf("build health request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("call scoring health endpoint: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("scoring health endpoint returned status %d", resp.StatusCode)
	}
	return nil
}
