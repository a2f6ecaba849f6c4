package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kavya/transintelliflow/backend/internal/config"
	"github.com/kavya/transintelliflow/backend/internal/persistence"
	"github.com/kavya/transintelliflow/backend/internal/scoring"
	"github.com/kavya/transintelliflow/backend/internal/service"
	"github.com/kavya/transintelliflow/backend/internal/staging"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type apiFixture struct {
	router        http.Handler
	service       *service.SimulationService
	persistClient *persistence.MemoryClient
	scorer        *scoring.MemoryClient
}

func newAPIFixture() *apiFixture {
	logger := testLogger()
	store := staging.NewStore()
	persistClient := persistence.NewMemoryClient()
	scorer := scoring.NewMemoryClient()

	svc := service.NewSimulationService(logger, scorer, store,
		persistence.NewBridge(logger, persistClient), nil)

	handlers := NewAPIHandlers(logger, svc, config.SimulationConfig{
		DefaultBatchSize:   100,
		MaxBatchSize:       1000,
		DefaultConcurrency: 5,
		MaxConcurrency:     50,
	})

	router := NewRouter(logger, RouterDependencies{
		Health: ScoringHealthService{Client: scorer},
		API:    handlers,
	})

	return &apiFixture{
		router:        router,
		service:       svc,
		persistClient: persistClient,
		scorer:        scorer,
	}
}

func (f *apiFixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("encode request body: %v", err)
		}
		reader = bytes.NewReader(encoded)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(dst); err != nil {
		t.Fatalf("decode response body: %v", err)
	}
}

func TestHandleStartRun(t *testing.T) {
	f := newAPIFixture()

	rec := f.do(t, http.MethodPost, "/api/simulation/runs", map[string]any{
		"batchSize":   20,
		"concurrency": 4,
		"targetRate":  0.10,
		"seed":        42,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		RunID          string  `json:"runId"`
		BatchSize      int     `json:"batchSize"`
		TargetRate     float64 `json:"targetRate"`
		FraudGenerated int     `json:"fraudGenerated"`
		Succeeded      int     `json:"succeeded"`
		Failed         int     `json:"failed"`
		StagedCount    int     `json:"stagedCount"`
	}
	decodeBody(t, rec, &resp)

	if resp.RunID == "" {
		t.Fatal("expected a run id")
	}
	if resp.BatchSize != 20 || resp.FraudGenerated != 2 {
		t.Fatalf("expected batchSize 20 with 2 fraud requests, got %+v", resp)
	}
	if resp.Succeeded != 20 || resp.Failed != 0 || resp.StagedCount != 20 {
		t.Fatalf("expected all 20 staged, got %+v", resp)
	}
}

func TestHandleStartRun_Validation(t *testing.T) {
	f := newAPIFixture()

	cases := []struct {
		name string
		body map[string]any
	}{
		{"batch size above limit", map[string]any{"batchSize": 5000}},
		{"negative batch size", map[string]any{"batchSize": -1}},
		{"concurrency above limit", map[string]any{"concurrency": 200}},
		{"target rate out of bounds", map[string]any{"batchSize": 10, "targetRate": 0.5}},
		{"unknown field", map[string]any{"chunkSize": 10}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := f.do(t, http.MethodPost, "/api/simulation/runs", tc.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestHandleStartRun_Defaults(t *testing.T) {
	f := newAPIFixture()

	rec := f.do(t, http.MethodPost, "/api/simulation/runs", map[string]any{"seed": 7})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		BatchSize  int     `json:"batchSize"`
		TargetRate float64 `json:"targetRate"`
	}
	decodeBody(t, rec, &resp)
	if resp.BatchSize != 100 {
		t.Fatalf("expected default batch size 100, got %d", resp.BatchSize)
	}
	if resp.TargetRate < 0.09 || resp.TargetRate > 0.15 {
		t.Fatalf("expected drawn rate within bounds, got %v", resp.TargetRate)
	}
}

func TestStagingLifecycleOverHTTP(t *testing.T) {
	f := newAPIFixture()

	rec := f.do(t, http.MethodPost, "/api/simulation/runs", map[string]any{
		"batchSize":   10,
		"concurrency": 3,
		"targetRate":  0.10,
		"seed":        1,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("start run: expected 201, got %d", rec.Code)
	}

	rec = f.do(t, http.MethodGet, "/api/staging/pending", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list pending: expected 200, got %d", rec.Code)
	}
	var pending struct {
		Total int `json:"total"`
		Items []struct {
			ID         string `json:"id"`
			Prediction struct {
				PredictedLabel string `json:"predictedLabel"`
			} `json:"prediction"`
		} `json:"items"`
	}
	decodeBody(t, rec, &pending)
	if pending.Total != 10 {
		t.Fatalf("expected 10 pending items, got %d", pending.Total)
	}

	for _, item := range pending.Items {
		rec = f.do(t, http.MethodPost, "/api/staging/pending/"+item.ID+"/verify", map[string]any{
			"isCorrect":  true,
			"verifiedBy": "analyst-1",
		})
		if rec.Code != http.StatusOK {
			t.Fatalf("verify %s: expected 200, got %d: %s", item.ID, rec.Code, rec.Body.String())
		}
		var verified struct {
			Moved bool `json:"moved"`
		}
		decodeBody(t, rec, &verified)
		if !verified.Moved {
			t.Fatalf("verify %s: expected item to move", item.ID)
		}
	}

	rec = f.do(t, http.MethodGet, "/api/staging/verified", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list verified: expected 200, got %d", rec.Code)
	}
	var verifiedList struct {
		Total int `json:"total"`
		Items []struct {
			Feedback struct {
				IsCorrect   bool   `json:"isCorrect"`
				ActualLabel string `json:"actualLabel"`
			} `json:"feedback"`
		} `json:"items"`
	}
	decodeBody(t, rec, &verifiedList)
	if verifiedList.Total != 10 {
		t.Fatalf("expected 10 verified items, got %d", verifiedList.Total)
	}
	for _, item := range verifiedList.Items {
		if !item.Feedback.IsCorrect || item.Feedback.ActualLabel == "" {
			t.Fatalf("verified item missing feedback: %+v", item)
		}
	}

	rec = f.do(t, http.MethodPost, "/api/staging/commit", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("commit: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var commit struct {
		StoredCount       int      `json:"storedCount"`
		ClearedIDs        []string `json:"clearedIds"`
		VerifiedRemaining int      `json:"verifiedRemaining"`
	}
	decodeBody(t, rec, &commit)
	if commit.StoredCount != 10 || len(commit.ClearedIDs) != 10 || commit.VerifiedRemaining != 0 {
		t.Fatalf("unexpected commit response: %+v", commit)
	}
	if f.persistClient.Stored() != 10 {
		t.Fatalf("expected 10 records at the persistence client, got %d", f.persistClient.Stored())
	}
}

func TestHandleVerify_Validation(t *testing.T) {
	f := newAPIFixture()

	// isCorrect missing.
	rec := f.do(t, http.MethodPost, "/api/staging/pending/some-id/verify", map[string]any{
		"notes": "no verdict",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing isCorrect, got %d", rec.Code)
	}

	// Unknown label.
	rec = f.do(t, http.MethodPost, "/api/staging/pending/some-id/verify", map[string]any{
		"isCorrect":   true,
		"actualLabel": "Suspicious",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown label, got %d", rec.Code)
	}

	// Unknown id reports moved=false with a 200.
	rec = f.do(t, http.MethodPost, "/api/staging/pending/ghost/verify", map[string]any{
		"isCorrect": true,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for unknown id, got %d", rec.Code)
	}
	var resp struct {
		Moved bool `json:"moved"`
	}
	decodeBody(t, rec, &resp)
	if resp.Moved {
		t.Fatal("expected moved=false for an unknown id")
	}
}

func TestHandleCommit_PersistenceFailure(t *testing.T) {
	f := newAPIFixture()

	rec := f.do(t, http.MethodPost, "/api/simulation/runs", map[string]any{
		"batchSize":   4,
		"concurrency": 2,
		"targetRate":  0.12,
		"seed":        9,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("start run: expected 201, got %d", rec.Code)
	}
	for _, p := range f.service.PendingTransactions() {
		f.service.VerifyTransaction(p.ID, true, "", "", "analyst-1")
	}

	f.persistClient.WithError(errors.New("connection refused"))
	rec = f.do(t, http.MethodPost, "/api/staging/commit", nil)
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}

	// The verified batch is untouched and a retry succeeds.
	f.persistClient.WithError(nil)
	rec = f.do(t, http.MethodPost, "/api/staging/commit", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected retry to return 200, got %d", rec.Code)
	}
	var commit struct {
		StoredCount int `json:"storedCount"`
	}
	decodeBody(t, rec, &commit)
	if commit.StoredCount != 4 {
		t.Fatalf("expected 4 stored records on retry, got %d", commit.StoredCount)
	}
}

func TestHealthz(t *testing.T) {
	f := newAPIFixture()

	rec := f.do(t, http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	f.scorer.WithHealthError(context.DeadlineExceeded)
	rec = f.do(t, http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 when the scoring service is down, got %d", rec.Code)
	}
	var resp struct {
		Status string `json:"status"`
	}
	decodeBody(t, rec, &resp)
	if resp.Status != "degraded" {
		t.Fatalf("expected degraded status, got %q", resp.Status)
	}
}

func TestCORSHeaders(t *testing.T) {
	logger := testLogger()
	store := staging.NewStore()
	svc := service.NewSimulationService(logger, scoring.NewMemoryClient(), store,
		persistence.NewBridge(logger, persistence.NewMemoryClient()), nil)
	handlers := NewAPIHandlers(logger, svc, config.SimulationConfig{
		DefaultBatchSize: 10, MaxBatchSize: 100, DefaultConcurrency: 2, MaxConcurrency: 10,
	})
	router := NewRouter(logger, RouterDependencies{
		API:            handlers,
		AllowedOrigins: []string{"https://ops.example.com"},
	})

	req := httptest.NewRequest(http.MethodOptions, "/api/staging/pending", nil)
	req.Header.Set("Origin", "https://ops.example.com")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 pre-flight, got %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://ops.example.com" {
		t.Fatalf("unexpected allow-origin header %q", got)
	}

	req = httptest.NewRequest(http.MethodOptions, "/api/staging/pending", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for unlisted origin, got %d", rec.Code)
	}
}
