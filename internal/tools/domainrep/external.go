package domainrep

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// avAggregatorClient reports how many of a multi-engine AV aggregator's
// engines flag a domain as malicious.
type avAggregatorClient interface {
	Check(ctx context.Context, domain string) (malicious, total int, err error)
}

// safeBrowsingClient reports whether a domain is flagged by a
// safe-browsing style threat-list lookup.
type safeBrowsingClient interface {
	Check(ctx context.Context, domain string) (flagged bool, err error)
}

type virusTotalClient struct {
	apiKey string
	client *http.Client
}

func newVirusTotalClient(apiKey string) *virusTotalClient {
	return &virusTotalClient{apiKey: apiKey, client: &http.Client{Timeout: virusTotalTimeout}}
}

type virusTotalResponse struct {
	Data struct {
		Attributes struct {
			LastAnalysisStats struct {
				Malicious int `json:"malicious"`
				Suspicious int `json:"suspicious"`
				Harmless  int `json:"harmless"`
				Undetected int `json:"undetected"`
			} `json:"last_analysis_stats"`
		} `json:"attributes"`
	} `json:"data"`
}

func (c *virusTotalClient) Check(ctx context.Context, domain string) (int, int, error) {
	if c.apiKey == "" {
		return 0, 0, fmt.Errorf("no virustotal api key configured")
	}

	url := fmt.Sprintf("https://www.virustotal.com/api/v3/domains/%s", domain)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, 0, err
	}
	req.Header.Set("x-apikey", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, 0, fmt.Errorf("virustotal returned status %d", resp.StatusCode)
	}

	var parsed virusTotalResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return 0, 0, err
	}

	stats := parsed.Data.Attributes.LastAnalysisStats
	total := stats.Malicious + stats.Suspicious + stats.Harmless + stats.Undetected
	return stats.Malicious, total, nil
}

type safeBrowsingAPIClient struct {
	apiKey string
	client *http.Client
}

func newSafeBrowsingClient(apiKey string) *safeBrowsingAPIClient {
	return &safeBrowsingAPIClient{apiKey: apiKey, client: &http.Client{Timeout: safeBrowsingTimeout}}
}

type safeBrowsingRequest struct {
	ThreatInfo struct {
		ThreatTypes      []string              `json:"threatTypes"`
		PlatformTypes    []string              `json:"platformTypes"`
		ThreatEntryTypes []string              `json:"threatEntryTypes"`
		ThreatEntries    []map[string]string   `json:"threatEntries"`
	} `json:"threatInfo"`
}

func (c *safeBrowsingAPIClient) Check(ctx context.Context, domain string) (bool, error) {
	if c.apiKey == "" {
		return false, fmt.Errorf("no safe-browsing api key configured")
	}

	var body safeBrowsingRequest
	body.ThreatInfo.ThreatTypes = []string{"MALWARE", "SOCIAL_ENGINEERING", "UNWANTED_SOFTWARE"}
	body.ThreatInfo.PlatformTypes = []string{"ANY_PLATFORM"}
	body.ThreatInfo.ThreatEntryTypes = []string{"URL"}
	body.ThreatInfo.ThreatEntries = []map[string]string{{"url": "https://" + domain}}

	payload, err := json.Marshal(body)
	if err != nil {
		return false, err
	}

	url := fmt.Sprintf("https://safebrowsing.googleapis.com/v4/threatMatches:find?key=%s", c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return false, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return false, fmt.Errorf("safe-browsing returned status %d", resp.StatusCode)
	}

	var parsed struct {
		Matches []map[string]interface{} `json:"matches"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return false, err
	}

	return len(parsed.Matches) > 0, nil
}
