package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kavya/transintelliflow/backend/internal/config"
	"github.com/kavya/transintelliflow/backend/internal/dispatcher"
	"github.com/kavya/transintelliflow/backend/internal/domain"
	"github.com/kavya/transintelliflow/backend/internal/generator"
	"github.com/kavya/transintelliflow/backend/internal/service"
)

// APIHandlers exposes HTTP handlers for the REST API.
type APIHandlers struct {
	logger  *slog.Logger
	service *service.SimulationService
	simCfg  config.SimulationConfig
}

// NewAPIHandlers constructs an APIHandlers instance.
func NewAPIHandlers(logger *slog.Logger, svc *service.SimulationService, simCfg config.SimulationConfig) *APIHandlers {
	return &APIHandlers{
		logger:  logger,
		service: svc,
		simCfg:  simCfg,
	}
}

func (h *APIHandlers) handleStartRun(w http.ResponseWriter, r *http.Request) {
	var payload startRunRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if payload.BatchSize == 0 {
		payload.BatchSize = h.simCfg.DefaultBatchSize
	}
	if payload.Concurrency == 0 {
		payload.Concurrency = h.simCfg.DefaultConcurrency
	}

	if payload.BatchSize < 1 || payload.BatchSize > h.simCfg.MaxBatchSize {
		writeError(w, http.StatusBadRequest,
			fmt.Sprintf("batchSize must be between 1 and %d", h.simCfg.MaxBatchSize))
		return
	}
	if payload.Concurrency < 1 || payload.Concurrency > h.simCfg.MaxConcurrency {
		writeError(w, http.StatusBadRequest,
			fmt.Sprintf("concurrency must be between 1 and %d", h.simCfg.MaxConcurrency))
		return
	}

	summary, err := h.service.Run(r.Context(), service.RunParams{
		BatchSize:   payload.BatchSize,
		Concurrency: payload.Concurrency,
		TargetRate:  payload.TargetRate,
		Seed:        payload.Seed,
		Source:      domain.Source(payload.Source),
	})
	if err != nil {
		if errors.Is(err, generator.ErrInvalidBatchSize) ||
			errors.Is(err, generator.ErrInvalidTargetRate) ||
			errors.Is(err, dispatcher.ErrInvalidConcurrency) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("simulation run failed", "error", err)
		writeError(w, http.StatusInternalServerError, "simulation run failed")
		return
	}

	respondJSON(w, http.StatusCreated, runSummaryResponse{
		RunID:          summary.RunID,
		BatchSize:      summary.BatchSize,
		TargetRate:     summary.TargetRate,
		FraudGenerated: summary.FraudGenerated,
		Succeeded:      summary.Succeeded,
		Failed:         summary.Failed,
		StagedCount:    summary.StagedCount,
		StartedAt:      formatTime(summary.StartedAt),
		DurationMs:     summary.Duration.Milliseconds(),
	})
}

func (h *APIHandlers) handleListPending(w http.ResponseWriter, r *http.Request) {
	items := h.service.PendingTransactions()
	resp := listPendingResponse{Items: []pendingItemResponse{}}
	for _, item := range items {
		resp.Items = append(resp.Items, toPendingItemResponse(item))
	}
	resp.Total = len(resp.Items)
	respondJSON(w, http.StatusOK, resp)
}

func (h *APIHandlers) handleVerify(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "transaction id is required")
		return
	}

	var payload verifyRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if payload.IsCorrect == nil {
		writeError(w, http.StatusBadRequest, "isCorrect is required")
		return
	}

	actualLabel := domain.Label(payload.ActualLabel)
	if actualLabel != "" && actualLabel != domain.LabelFraud && actualLabel != domain.LabelLegitimate {
		writeError(w, http.StatusBadRequest, "actualLabel must be Fraud or Legitimate")
		return
	}

	moved := h.service.VerifyTransaction(id, *payload.IsCorrect, actualLabel, payload.Notes, payload.VerifiedBy)
	respondJSON(w, http.StatusOK, verifyResponse{
		ID:    id,
		Moved: moved,
	})
}

func (h *APIHandlers) handleListVerified(w http.ResponseWriter, r *http.Request) {
	items := h.service.VerifiedTransactions()
	resp := listVerifiedResponse{Items: []verifiedItemResponse{}}
	for _, item := range items {
		resp.Items = append(resp.Items, verifiedItemResponse{
			pendingItemResponse: toPendingItemResponse(item.PendingTransaction),
			Feedback: feedbackResponse{
				IsCorrect:   item.Feedback.IsCorrect,
				ActualLabel: string(item.Feedback.ActualLabel),
				Notes:       item.Feedback.Notes,
				VerifiedBy:  item.Feedback.VerifiedBy,
				VerifiedAt:  formatTime(item.Feedback.VerifiedAt),
			},
		})
	}
	resp.Total = len(resp.Items)
	respondJSON(w, http.StatusOK, resp)
}

func (h *APIHandlers) handleCommit(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.CommitVerified(r.Context())
	if err != nil {
		h.logger.Error("verified commit failed", "error", err)
		writeError(w, http.StatusBadGateway, fmt.Sprintf("commit failed, verified batch left intact: %v", err))
		return
	}

	_, verified := h.service.StagingCounts()
	respondJSON(w, http.StatusOK, commitResponse{
		StoredCount:       result.StoredCount,
		ClearedIDs:        result.IDs,
		VerifiedRemaining: verified,
	})
}

// --- Request & Response DTOs ---

type startRunRequest struct {
	BatchSize   int     `json:"batchSize"`
	Concurrency int     `json:"concurrency"`
	TargetRate  float64 `json:"targetRate"`
	Seed        int64   `json:"seed"`
	Source      string  `json:"source"`
}

type runSummaryResponse struct {
	RunID          string  `json:"runId"`
	BatchSize      int     `json:"batchSize"`
	TargetRate     float64 `json:"targetRate"`
	FraudGenerated int     `json:"fraudGenerated"`
	Succeeded      int     `json:"succeeded"`
	Failed         int     `json:"failed"`
	StagedCount    int     `json:"stagedCount"`
	StartedAt      string  `json:"startedAt"`
	DurationMs     int64   `json:"durationMs"`
}

type transactionResponse struct {
	TransactionID  string  `json:"transactionId"`
	CustomerID     string  `json:"customerId"`
	Amount         float64 `json:"amount"`
	AccountAgeDays int     `json:"accountAgeDays"`
	Channel        string  `json:"channel"`
	KYCVerified    string  `json:"kycVerified"`
	Hour           int     `json:"hour"`
	Timestamp      string  `json:"timestamp"`
}

type predictionResponse struct {
	PredictedLabel string   `json:"predictedLabel"`
	RiskScore      float64  `json:"riskScore"`
	Confidence     float64  `json:"confidence"`
	RiskLevel      string   `json:"riskLevel"`
	RuleFlags      []string `json:"ruleFlags,omitempty"`
}

type pendingItemResponse struct {
	ID         string              `json:"id"`
	Source     string              `json:"source"`
	Payload    transactionResponse `json:"payload"`
	Prediction predictionResponse  `json:"prediction"`
	CreatedAt  string              `json:"createdAt"`
}

type listPendingResponse struct {
	Total int                   `json:"total"`
	Items []pendingItemResponse `json:"items"`
}

type verifyRequest struct {
	IsCorrect   *bool  `json:"isCorrect"`
	ActualLabel string `json:"actualLabel"`
	Notes       string `json:"notes"`
	VerifiedBy  string `json:"verifiedBy"`
}

type verifyResponse struct {
	ID    string `json:"id"`
	Moved bool   `json:"moved"`
}

type feedbackResponse struct {
	IsCorrect   bool   `json:"isCorrect"`
	ActualLabel string `json:"actualLabel"`
	Notes       string `json:"notes,omitempty"`
	VerifiedBy  string `json:"verifiedBy,omitempty"`
	VerifiedAt  string `json:"verifiedAt"`
}

type verifiedItemResponse struct {
	pendingItemResponse
	Feedback feedbackResponse `json:"feedback"`
}

type listVerifiedResponse struct {
	Total int                    `json:"total"`
	Items []verifiedItemResponse `json:"items"`
}

type commitResponse struct {
	StoredCount       int      `json:"storedCount"`
	ClearedIDs        []string `json:"clearedIds"`
	VerifiedRemaining int      `json:"verifiedRemaining"`
}

func toPendingItemResponse(item domain.PendingTransaction) pendingItemResponse {
	return pendingItemResponse{
		ID:     item.ID,
		Source: string(item.Source),
		Payload: transactionResponse{
			TransactionID:  item.Payload.ID,
			CustomerID:     item.Payload.CustomerID,
			Amount:         item.Payload.Amount,
			AccountAgeDays: item.Payload.AccountAgeDays,
			Channel:        string(item.Payload.Channel),
			KYCVerified:    item.Payload.KYCVerified,
			Hour:           item.Payload.Hour,
			Timestamp:      formatTime(item.Payload.Timestamp),
		},
		Prediction: predictionResponse{
			PredictedLabel: string(item.Prediction.PredictedLabel),
			RiskScore:      item.Prediction.RiskScore,
			Confidence:     item.Prediction.Confidence,
			RiskLevel:      string(item.Prediction.RiskLevel),
			RuleFlags:      item.Prediction.RuleFlags,
		},
		CreatedAt: formatTime(item.CreatedAt),
	}
}

func decodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return errors.New("request body is required")
	}
	defer r.Body.Close()

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return err
	}
	return nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{
		"error": msg,
	})
}
