package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const (
	tavilyAPIURL      = "https://api.tavily.com"
	tavilySearchPath  = "/search"
	defaultMaxResults = 20
)

// TavilyClient talks to the Tavily search API.
type TavilyClient struct {
	apiKey     string
	logger     *zap.Logger
	HTTPClient *http.Client
	APIURL     string
	MaxResults int
}

// NewTavilyClient creates a search provider backed by the Tavily API.
func NewTavilyClient(logger *zap.Logger, apiKey string) *TavilyClient {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &TavilyClient{
		apiKey: apiKey,
		logger: logger,
		APIURL: tavilyAPIURL,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		MaxResults: defaultMaxResults,
	}
}

func (c *TavilyClient) Name() string { return "tavily" }

type tavilyRequest struct {
	APIKey        string `json:"api_key"`
	Query         string `json:"query"`
	MaxResults    int    `json:"max_results"`
	IncludeAnswer bool   `json:"include_answer"`
}

type tavilyResponse struct {
	Results []map[string]any `json:"results"`
}

// Search posts the query to the Tavily search endpoint and returns the raw
// result records in the provider's relevance order. Any transport or
// protocol failure is reported as an UnavailableError.
func (c *TavilyClient) Search(ctx context.Context, query string) ([]Record, error) {
	payload, err := json.Marshal(tavilyRequest{
		APIKey:     c.apiKey,
		Query:      query,
		MaxResults: c.MaxResults,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal search request: %w", err)
	}

	url := c.APIURL + tavilySearchPath

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	c.logger.Debug("make request", zap.String("url", url), zap.String("query", query))

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, &UnavailableError{Provider: c.Name(), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &UnavailableError{Provider: c.Name(), Err: fmt.Errorf("bad status: %s", resp.Status)}
	}

	var response tavilyResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, &UnavailableError{Provider: c.Name(), Err: fmt.Errorf("decode response: %w", err)}
	}

	c.logger.Debug("got response from tavily", zap.Int("results", len(response.Results)))

	records := make([]Record, 0, len(response.Results))
	for _, result := range response.Results {
		records = append(records, Record(result))
	}

	return records, nil
}
