package websearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// HTTPProvider calls a search-as-a-service API (Exa-shaped: a single POST
// endpoint accepting a query and returning scored results).
type HTTPProvider struct {
	apiKey     string
	endpoint   string
	httpClient *http.Client
}

// NewHTTPProvider builds a provider against endpoint, authenticating
// with apiKey via the x-api-key header.
func NewHTTPProvider(apiKey, endpoint string) *HTTPProvider {
	return &HTTPProvider{
		apiKey:   apiKey,
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
	}
}

type searchRequest struct {
	Query              string `json:"query"`
	Category           string `json:"category,omitempty"`
	UseAutoprompt      bool   `json:"useAutoprompt"`
	NumResults         int    `json:"numResults"`
	StartPublishedDate string `json:"startPublishedDate,omitempty"`
}

type searchResponseBody struct {
	Results []struct {
		Title         string  `json:"title"`
		URL           string  `json:"url"`
		Text          string  `json:"text"`
		PublishedDate string  `json:"publishedDate"`
		Score         float64 `json:"score"`
	} `json:"results"`
}

func (p *HTTPProvider) Search(ctx context.Context, query string, opts SearchOptions) ([]Result, error) {
	body, err := json.Marshal(searchRequest{
		Query:              query,
		Category:           opts.Category,
		UseAutoprompt:      opts.UseAutoprompt,
		NumResults:         opts.NumResults,
		StartPublishedDate: opts.StartPublishedDate.Format(time.RFC3339),
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", p.apiKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("websearch provider rate limited (429)")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("websearch provider returned status %d", resp.StatusCode)
	}

	var parsed searchResponseBody
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	out := make([]Result, 0, len(parsed.Results))
	for _, r := range parsed.Results {
		domain := extractDomain(r.URL)
		out = append(out, Result{
			Title:         r.Title,
			URL:           r.URL,
			Snippet:       r.Text,
			PublishedDate: r.PublishedDate,
			Score:         r.Score,
			Domain:        domain,
		})
	}
	return out, nil
}

func extractDomain(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	return parsed.Hostname()
}
