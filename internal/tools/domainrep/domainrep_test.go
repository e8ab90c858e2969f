package domainrep

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegistrableDomain(t *testing.T) {
	assert.Equal(t, "example.com", registrableDomain("https://www.example.com/path?q=1"))
	assert.Equal(t, "example.com", registrableDomain("example.com"))
	assert.Equal(t, "sub.example.com", registrableDomain("http://sub.example.com"))
}

func TestScoreResult_NoChecksCompleted(t *testing.T) {
	score, level := scoreResult(Result{ChecksCompleted: map[string]bool{}})
	assert.Equal(t, 0, score)
	assert.Equal(t, "unknown", level)
}

func TestScoreResult_YoungDomainHighRisk(t *testing.T) {
	age := 3
	sslValid := true
	flagged := true
	score, level := scoreResult(Result{
		AgeDays:             &age,
		SSLValid:            &sslValid,
		SafeBrowsingFlagged: &flagged,
		ChecksCompleted: map[string]bool{
			"age": true, "ssl": true, "safe_browsing": true,
		},
	})
	assert.Equal(t, "high", level)
	assert.GreaterOrEqual(t, score, 70)
}

func TestScoreResult_OldDomainValidSSLLow(t *testing.T) {
	age := 3000
	sslValid := true
	score, level := scoreResult(Result{
		AgeDays:  &age,
		SSLValid: &sslValid,
		ChecksCompleted: map[string]bool{
			"age": true, "ssl": true,
		},
	})
	assert.Equal(t, "low", level)
	assert.Less(t, score, 40)
}

func TestScoreResult_InvalidSSLAddsRisk(t *testing.T) {
	invalid := false
	withInvalid, _ := scoreResult(Result{
		SSLValid:        &invalid,
		ChecksCompleted: map[string]bool{"ssl": true},
	})
	valid := true
	withValid, _ := scoreResult(Result{
		SSLValid:        &valid,
		ChecksCompleted: map[string]bool{"ssl": true},
	})
	assert.Greater(t, withInvalid, withValid)
}

func TestCache_RoundTrip(t *testing.T) {
	c := newCache(0)
	c.ttl = 1000000000 * 60
	c.set("example.com", Result{Domain: "example.com", RiskScore: 42})

	got, ok := c.get("example.com")
	assert.True(t, ok)
	assert.Equal(t, 42, got.RiskScore)

	_, ok = c.get("other.com")
	assert.False(t, ok)
}
