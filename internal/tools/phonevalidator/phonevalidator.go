// Package phonevalidator implements the offline phone validation tool
// (spec C5): parsing and suspicious-pattern detection with no network
// calls, targeting sub-10ms p95 latency.
package phonevalidator

import (
	"github.com/nyaruka/phonenumbers"
	"github.com/scamshield/agent/internal/entity"
	"github.com/scamshield/agent/internal/models"
)

// Result is the tool's output for a single phone number.
type Result struct {
	E164             string          `json:"e164"`
	Valid            bool            `json:"valid"`
	Possible         bool            `json:"possible"`
	Type             models.PhoneType `json:"type"`
	Country          string          `json:"country,omitempty"`
	Suspicious       bool            `json:"suspicious"`
	SuspiciousReason string          `json:"suspicious_reason,omitempty"`
}

// Tool is stateless; it holds no connections and performs no I/O.
type Tool struct {
	defaultRegion string
}

// New builds a Tool. defaultRegion is used when the number carries no
// explicit country code.
func New(defaultRegion string) *Tool {
	if defaultRegion == "" {
		defaultRegion = "US"
	}
	return &Tool{defaultRegion: defaultRegion}
}

// Validate parses raw (already extracted, not necessarily E.164) and
// runs the shared suspicious-pattern ladder against it.
func (t *Tool) Validate(raw string) Result {
	candidate := raw
	if entity.HasVanityLetters(candidate) {
		candidate = entity.VanityToDigits(candidate)
	}

	num, err := phonenumbers.Parse(candidate, t.defaultRegion)
	if err != nil {
		result := Result{}
		if !entity.HasVanityLetters(raw) {
			result.Suspicious = true
			result.SuspiciousReason = "Invalid phone number format"
		}
		return result
	}

	e164 := phonenumbers.Format(num, phonenumbers.E164)
	numType := mapType(phonenumbers.GetNumberType(num))

	result := Result{
		E164:     e164,
		Valid:    phonenumbers.IsValidNumber(num),
		Possible: phonenumbers.IsPossibleNumber(num),
		Type:     numType,
		Country:  phonenumbers.GetRegionCodeForNumber(num),
	}
	result.Suspicious, result.SuspiciousReason = entity.SuspiciousPhonePattern(e164, int(num.GetCountryCode()), numType)
	return result
}

func mapType(t phonenumbers.PhoneNumberType) models.PhoneType {
	switch t {
	case phonenumbers.MOBILE:
		return models.PhoneTypeMobile
	case phonenumbers.FIXED_LINE, phonenumbers.FIXED_LINE_OR_MOBILE:
		return models.PhoneTypeLandline
	case phonenumbers.TOLL_FREE:
		return models.PhoneTypeTollFree
	case phonenumbers.VOIP:
		return models.PhoneTypeVoIP
	case phonenumbers.PREMIUM_RATE:
		return models.PhoneTypePremiumRate
	default:
		return models.PhoneTypeUnknown
	}
}
