package persistence

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const defaultTimeout = 15 * time.Second

type batchInsertRequest struct {
	Transactions []StoredTransaction `json:"transactions"`
}

type batchInsertResponse struct {
	StoredCount int `json:"stored_count"`
}

// httpClient talks to the persistence service's batch insert endpoint.
type httpClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewHTTPClient builds a persistence client for the given endpoint.
func NewHTTPClient(opts Options) (Client, error) {
	if opts.BaseURL == "" {
		return nil, ErrMissingBaseURL
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &httpClient{
		baseURL: opts.BaseURL,
		apiKey:  opts.APIKey,
		client:  &http.Client{Timeout: timeout},
	}, nil
}

func (c *httpClient) InsertBatch(ctx context.Context, records []StoredTransaction) (int, error) {
	body, err := json.Marshal(batchInsertRequest{Transactions: records})
	if err != nil {
		return 0, fmt.Errorf("%w: encode batch: %v", ErrPersistence, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/transactions/batch", bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("%w: build request: %v", ErrPersistence, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return 0, fmt.Errorf("%w: status %d", ErrPersistence, resp.StatusCode)
	}

	var decoded batchInsertResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return 0, fmt.Errorf("%w: decode response: %v", ErrPersistence, err)
	}
	return decoded.StoredCount, nil
}
