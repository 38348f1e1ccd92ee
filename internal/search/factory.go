package search

import (
	"fmt"
	"os"
)

// NewSearcher creates a search adapter based on the given provider type.
// Supported provider types: "serper", "bing".
func NewSearcher(providerType string, maxResults int) (Searcher, error) {
	switch providerType {
	case "serper":
		apiKey := os.Getenv("SERPER_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("SERPER_API_KEY environment variable is not set")
		}
		return NewSerperSearcher(apiKey, maxResults), nil

	case "bing":
		apiKey := os.Getenv("AZURE_SEARCH_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("AZURE_SEARCH_KEY environment variable is not set")
		}
		return NewBingSearcher(apiKey, maxResults), nil

	default:
		return nil, fmt.Errorf("unsupported search provider: %s", providerType)
	}
}
