package entity

import (
	"strings"
	"testing"

	"github.com/scamshield/agent/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestExtract_Empty(t *testing.T) {
	got := Extract("", Options{})
	assert.False(t, got.HasEntities())
	assert.Equal(t, 0, got.Count())
}

func TestExtract_Garbage(t *testing.T) {
	got := Extract("asdf qwer zxcv no entities here at all", Options{})
	assert.False(t, got.HasEntities())
}

func TestExtract_Phone(t *testing.T) {
	got := Extract("Call us now at +1-800-555-0199 to claim your prize", Options{DefaultRegion: "US"})
	if assert.Len(t, got.Phones, 1) {
		assert.Equal(t, "+18005550199", got.Phones[0].E164)
		assert.True(t, got.Phones[0].Valid || got.Phones[0].Suspicious)
	}
}

func TestExtract_DeobfuscatedURL(t *testing.T) {
	got := Extract("Visit hxxps://totally-legit-bank[.]com/login now", Options{})
	if assert.Len(t, got.URLs, 1) {
		assert.Equal(t, "https://totally-legit-bank.com/login", got.URLs[0].Normalized)
	}
}

func TestExtract_URLShortener(t *testing.T) {
	got := Extract("Click http://bit.ly/abc123 for your refund", Options{})
	if assert.Len(t, got.URLs, 1) {
		assert.True(t, got.URLs[0].IsShortener)
	}
}

func TestExtract_Email(t *testing.T) {
	got := Extract("Reply to Support@Totally-Fake-Bank.com with your SSN", Options{})
	if assert.Len(t, got.Emails, 1) {
		assert.Equal(t, "support@totally-fake-bank.com", got.Emails[0].Normalized)
		assert.Equal(t, "totally-fake-bank.com", got.Emails[0].Domain)
	}
}

func TestExtract_Bitcoin(t *testing.T) {
	got := Extract("Send payment to 1BoatSLRHtKNngkdXEeobR76b53LETtpyT immediately", Options{})
	if assert.Len(t, got.Payments, 1) {
		assert.Equal(t, models.PaymentKindBitcoin, got.Payments[0].Kind)
	}
}

func TestExtract_WireKeyword(t *testing.T) {
	got := Extract("Please arrange a wire transfer to the account below", Options{})
	found := false
	for _, p := range got.Payments {
		if p.Kind == models.PaymentKindWire {
			found = true
		}
	}
	assert.True(t, found)
}

func TestExtract_Amount(t *testing.T) {
	got := Extract("You owe $1,500.00 in back taxes, pay immediately", Options{})
	if assert.Len(t, got.Amounts, 1) {
		assert.Equal(t, 1500.00, got.Amounts[0].Numeric)
		assert.Equal(t, "USD", got.Amounts[0].Currency)
	}
}

func TestExtract_Company(t *testing.T) {
	got := Extract("This notice is sent by Acme Recovery Inc on behalf of the IRS", Options{})
	if assert.Len(t, got.Companies, 1) {
		assert.Contains(t, got.Companies[0].Normalized, "acme recovery inc")
	}
}

func TestExtract_CompanyDepartmentVariant(t *testing.T) {
	got := Extract("Contact the Acme Recovery Legal Department for settlement", Options{})
	found := false
	for _, c := range got.Companies {
		if c.IsDepartmentVariant {
			found = true
		}
	}
	assert.True(t, found)
}

func TestExtract_Dedup(t *testing.T) {
	text := "Call 555-0100 or call 555-0100 again"
	got := Extract(text, Options{DefaultRegion: "US"})
	assert.LessOrEqual(t, len(got.Phones), 1)
}

func TestExtract_Truncation(t *testing.T) {
	long := strings.Repeat("a", 6000) + " http://scam.example.com"
	got := Extract(long, Options{})
	assert.Empty(t, got.URLs)
}

func TestExtract_HighRiskIndicators(t *testing.T) {
	got := Extract("Send bitcoin to 1BoatSLRHtKNngkdXEeobR76b53LETtpyT now", Options{})
	assert.True(t, got.HasHighRiskIndicators(false))
}

func TestExtract_FilterCommonDomains(t *testing.T) {
	got := Extract("Visit https://google.com and https://evil-phish.example for details", Options{FilterCommonDomains: true})
	for _, u := range got.URLs {
		assert.NotEqual(t, "google.com", u.Domain)
	}
}

func TestExtract_Idempotent(t *testing.T) {
	text := "Call +1-800-555-0199 or email scam@fake-bank.com"
	first := Extract(text, Options{DefaultRegion: "US"})
	second := Extract(text, Options{DefaultRegion: "US"})
	assert.Equal(t, first, second)
}
