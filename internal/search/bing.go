package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const bingEndpoint = "https://api.bing.microsoft.com/v7.0/search"

// BingSearcher queries the Azure Bing Web Search API.
type BingSearcher struct {
	apiKey     string
	maxResults int
	endpoint   string
	client     *http.Client
}

// NewBingSearcher creates a Bing adapter. maxResults <= 0 falls back to 10.
func NewBingSearcher(apiKey string, maxResults int) *BingSearcher {
	if maxResults <= 0 {
		maxResults = 10
	}
	return &BingSearcher{
		apiKey:     apiKey,
		maxResults: maxResults,
		endpoint:   bingEndpoint,
		client:     &http.Client{Timeout: 15 * time.Second},
	}
}

func (s *BingSearcher) Name() string { return "bing" }

type bingResponse struct {
	WebPages struct {
		Value []struct {
			Name    string `json:"name"`
			URL     string `json:"url"`
			Snippet string `json:"snippet"`
		} `json:"value"`
	} `json:"webPages"`
}

// freshness maps the common time filters onto Bing's freshness values.
// Unknown filters degrade to Month rather than failing the search.
func freshness(timeFilter string) string {
	switch strings.ToLower(timeFilter) {
	case "day":
		return "Day"
	case "week":
		return "Week"
	case "month":
		return "Month"
	case "year":
		return "Year"
	default:
		return "Month"
	}
}

func (s *BingSearcher) Search(ctx context.Context, query, timeFilter string) ([]Result, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("count", strconv.Itoa(s.maxResults))
	params.Set("responseFilter", "Webpages")
	if timeFilter != "" {
		params.Set("freshness", freshness(timeFilter))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("building bing request: %w", err)
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling bing: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("bing returned %d: %s", resp.StatusCode, msg)
	}

	var parsed bingResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decoding bing response: %w", err)
	}

	results := make([]Result, 0, len(parsed.WebPages.Value))
	for _, item := range parsed.WebPages.Value {
		results = append(results, Result{Title: item.Name, Link: item.URL, Snippet: item.Snippet})
	}
	return results, nil
}
