package skills

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const httpTimeout = 15 * time.Second

// HTTPExtractor delegates extraction to the skills service.
//
//	POST {baseURL}/extract  {"text": "..."}  ->  {"skills": ["go", ...]}
type HTTPExtractor struct {
	baseURL string
	client  *http.Client
}

// NewHTTPExtractor returns an extractor for the service at baseURL.
func NewHTTPExtractor(baseURL string) *HTTPExtractor {
	return &HTTPExtractor{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: httpTimeout},
	}
}

type extractRequest struct {
	Text string `json:"text"`
}

type extractResponse struct {
	Skills []string `json:"skills"`
}

// Extract implements Extractor. Non-200 answers are errors; the indexing
// pipeline treats them as transient.
func (e *HTTPExtractor) Extract(ctx context.Context, text string) ([]string, error) {
	if strings.TrimSpace(text) == "" {
		return []string{}, nil
	}
	payload, err := json.Marshal(extractRequest{Text: text})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/extract", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http POST: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("skills service returned %d: %s", resp.StatusCode, string(body))
	}

	var out extractResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("json unmarshal: %w", err)
	}
	return normalize(out.Skills), nil
}
