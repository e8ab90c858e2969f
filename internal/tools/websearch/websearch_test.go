package websearch

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	results []Result
	err     error
	calls   int
}

func (f *fakeProvider) Search(ctx context.Context, query string, opts SearchOptions) ([]Result, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.results, nil
}

func TestBuildQuery_KnownType(t *testing.T) {
	q := buildQuery("phone", "+18005550199")
	assert.Contains(t, q, "+18005550199")
	assert.Contains(t, q, "scam complaints")
}

func TestBuildQuery_UnknownTypeFallsBackToPayment(t *testing.T) {
	q := buildQuery("mystery", "foo")
	assert.Contains(t, q, "foo")
	assert.Contains(t, q, "suspicious")
}

func TestProcessResults_DedupKeepsHighestScore(t *testing.T) {
	raw := []Result{
		{Domain: "example.com", Score: 0.2, Snippet: "low"},
		{Domain: "example.com", Score: 0.8, Snippet: "high"},
	}
	out := processResults(raw)
	require.Len(t, out, 1)
	assert.Equal(t, "high", out[0].Snippet)
}

func TestProcessResults_TrustedBoostCapped(t *testing.T) {
	raw := []Result{{Domain: "reddit.com", Score: 0.9}}
	out := processResults(raw)
	require.Len(t, out, 1)
	assert.Equal(t, 1.0, out[0].Score)
}

func TestProcessResults_SnippetTruncated(t *testing.T) {
	long := make([]byte, 300)
	for i := range long {
		long[i] = 'a'
	}
	raw := []Result{{Domain: "a.com", Snippet: string(long)}}
	out := processResults(raw)
	require.Len(t, out, 1)
	assert.LessOrEqual(t, len(out[0].Snippet), snippetMaxLen+1)
}

func TestProcessResults_SortedDescending(t *testing.T) {
	raw := []Result{
		{Domain: "a.com", Score: 0.1},
		{Domain: "b.com", Score: 0.9},
		{Domain: "c.com", Score: 0.5},
	}
	out := processResults(raw)
	require.Len(t, out, 3)
	assert.Equal(t, "b.com", out[0].Domain)
	assert.Equal(t, "c.com", out[1].Domain)
	assert.Equal(t, "a.com", out[2].Domain)
}

func TestSearch_NoCacheSkipsBudgetAndCaching(t *testing.T) {
	provider := &fakeProvider{results: []Result{{Domain: "reddit.com", Score: 0.5, Snippet: "s"}}}
	tool := New(provider, nil, Config{})

	resp := tool.Search(context.Background(), "+18005550199", "phone")
	assert.False(t, resp.Cached)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, 1, provider.calls)
}

func TestSearch_ProviderErrorReturnsEmptyNeverPanics(t *testing.T) {
	provider := &fakeProvider{err: assertError{}}
	tool := New(provider, nil, Config{})

	resp := tool.Search(context.Background(), "scam.example.com", "url")
	assert.Empty(t, resp.Results)
	assert.False(t, resp.Cached)
}

type assertError struct{}

func (assertError) Error() string { return "boom" }
