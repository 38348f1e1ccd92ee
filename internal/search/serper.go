package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const serperEndpoint = "https://google.serper.dev/search"

// SerperSearcher queries the Serper.dev Google Search API.
type SerperSearcher struct {
	apiKey     string
	maxResults int
	endpoint   string
	client     *http.Client
}

// NewSerperSearcher creates a Serper adapter. maxResults <= 0 falls back to 10.
func NewSerperSearcher(apiKey string, maxResults int) *SerperSearcher {
	if maxResults <= 0 {
		maxResults = 10
	}
	return &SerperSearcher{
		apiKey:     apiKey,
		maxResults: maxResults,
		endpoint:   serperEndpoint,
		client:     &http.Client{Timeout: 15 * time.Second},
	}
}

func (s *SerperSearcher) Name() string { return "serper" }

type serperRequest struct {
	Q         string `json:"q"`
	Num       int    `json:"num"`
	TimeRange string `json:"timeRange,omitempty"`
}

type serperResponse struct {
	Organic []struct {
		Title   string `json:"title"`
		Link    string `json:"link"`
		Snippet string `json:"snippet"`
	} `json:"organic"`
}

func (s *SerperSearcher) Search(ctx context.Context, query, timeFilter string) ([]Result, error) {
	body, err := json.Marshal(serperRequest{Q: query, Num: s.maxResults, TimeRange: timeFilter})
	if err != nil {
		return nil, fmt.Errorf("encoding serper request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building serper request: %w", err)
	}
	req.Header.Set("X-API-KEY", s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling serper: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("serper returned %d: %s", resp.StatusCode, msg)
	}

	var parsed serperResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decoding serper response: %w", err)
	}

	results := make([]Result, 0, len(parsed.Organic))
	for _, item := range parsed.Organic {
		results = append(results, Result{Title: item.Title, Link: item.Link, Snippet: item.Snippet})
	}
	return results, nil
}
