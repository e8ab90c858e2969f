// Package models holds the value objects shared across the scam-detection
// engine: extracted entities, tool evidence, agent verdicts and progress
// messages. Nothing in this package performs I/O.
package models

import "strconv"

// PhoneType enumerates the number types reported by the phone parser.
type PhoneType string

const (
	PhoneTypeMobile      PhoneType = "mobile"
	PhoneTypeLandline    PhoneType = "landline"
	PhoneTypeTollFree    PhoneType = "toll_free"
	PhoneTypeVoIP        PhoneType = "voip"
	PhoneTypePremiumRate PhoneType = "premium_rate"
	PhoneTypeUnknown     PhoneType = "unknown"
)

// Phone is a normalized phone-number entity.
//
// Invariant: E164 is set iff Valid or Suspicious (see spec §3).
type Phone struct {
	Raw               string    `json:"raw"`
	E164              string    `json:"e164,omitempty"`
	Country           string    `json:"country,omitempty"`
	Region            string    `json:"region,omitempty"`
	Type              PhoneType `json:"type"`
	Carrier           string    `json:"carrier,omitempty"`
	Valid             bool      `json:"valid"`
	Suspicious        bool      `json:"suspicious"`
	SuspiciousReason  string    `json:"suspicious_reason,omitempty"`
}

// NormalizedKey is the dedup key for this entity variant.
func (p Phone) NormalizedKey() string { return p.E164 }

// URL is a normalized URL entity.
type URL struct {
	Raw         string `json:"raw"`
	Normalized  string `json:"normalized"`
	Scheme      string `json:"scheme"`
	Domain      string `json:"domain"`
	IsShortener bool   `json:"is_shortener"`
}

func (u URL) NormalizedKey() string { return u.Normalized }

// Email is a normalized email entity.
type Email struct {
	Raw        string `json:"raw"`
	Normalized string `json:"normalized"`
	Local      string `json:"local"`
	Domain     string `json:"domain"`
}

func (e Email) NormalizedKey() string { return e.Normalized }

// PaymentKind enumerates the recognized payment-identifier kinds.
type PaymentKind string

const (
	PaymentKindAccount PaymentKind = "account"
	PaymentKindRouting PaymentKind = "routing"
	PaymentKindBitcoin PaymentKind = "bitcoin"
	PaymentKindVenmo   PaymentKind = "venmo"
	PaymentKindCashApp PaymentKind = "cashapp"
	PaymentKindWire    PaymentKind = "wire"
	PaymentKindGeneric PaymentKind = "generic"
)

// Payment is a payment-identifier entity with surrounding context.
type Payment struct {
	Kind          PaymentKind `json:"kind"`
	Value         string      `json:"value"`
	ContextWindow string      `json:"context_window,omitempty"`
}

func (p Payment) NormalizedKey() string { return string(p.Kind) + ":" + p.Value }

// Amount is a monetary-amount entity.
type Amount struct {
	Numeric  float64 `json:"numeric"`
	Currency string  `json:"currency,omitempty"`
	Raw      string  `json:"raw"`
}

func (a Amount) NormalizedKey() string { return a.Currency + ":" + a.Raw }

// Company is a company-name entity.
type Company struct {
	Raw               string `json:"raw"`
	Normalized        string `json:"normalized"`
	CountryHint       string `json:"country_hint,omitempty"`
	IsDepartmentVariant bool `json:"is_department_variant"`
}

func (c Company) NormalizedKey() string { return c.Normalized }

// ExtractedEntities is the immutable bundle returned by the entity
// extractor. Order within each slice reflects first-occurrence order.
type ExtractedEntities struct {
	Phones    []Phone   `json:"phones"`
	URLs      []URL     `json:"urls"`
	Emails    []Email   `json:"emails"`
	Payments  []Payment `json:"payments"`
	Amounts   []Amount  `json:"amounts"`
	Companies []Company `json:"companies"`
}

// HasEntities reports whether any entity was found.
func (e ExtractedEntities) HasEntities() bool {
	return len(e.Phones) > 0 || len(e.URLs) > 0 || len(e.Emails) > 0 ||
		len(e.Payments) > 0 || len(e.Amounts) > 0 || len(e.Companies) > 0
}

// Count returns the total number of entities across all variants.
func (e ExtractedEntities) Count() int {
	return len(e.Phones) + len(e.URLs) + len(e.Emails) +
		len(e.Payments) + len(e.Amounts) + len(e.Companies)
}

// HasHighRiskIndicators reports whether the bundle contains any bitcoin or
// wire-transfer payment identifier, or a large amount paired with an
// urgency phrase (callers pass the urgency flag computed against the
// source text; this method only encodes the payment/amount half).
func (e ExtractedEntities) HasHighRiskIndicators(urgencyPhrasePresent bool) bool {
	for _, p := range e.Payments {
		if p.Kind == PaymentKindBitcoin || p.Kind == PaymentKindWire {
			return true
		}
	}
	if urgencyPhrasePresent {
		for _, a := range e.Amounts {
			if a.Numeric >= 1000 {
				return true
			}
		}
	}
	return false
}

// Summary describes up to `limit` entities per variant, used by the
// reasoner to keep LLM prompts compact (spec §4.7.3).
func (e ExtractedEntities) Summary(limit int) map[string]string {
	out := make(map[string]string, 6)
	out["phones"] = summarizeStrings(phoneStrings(e.Phones), limit)
	out["urls"] = summarizeStrings(urlStrings(e.URLs), limit)
	out["emails"] = summarizeStrings(emailStrings(e.Emails), limit)
	out["payments"] = summarizeStrings(paymentStrings(e.Payments), limit)
	out["amounts"] = summarizeStrings(amountStrings(e.Amounts), limit)
	out["companies"] = summarizeStrings(companyStrings(e.Companies), limit)
	return out
}

func phoneStrings(ps []Phone) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		if p.E164 != "" {
			out[i] = p.E164
		} else {
			out[i] = p.Raw
		}
	}
	return out
}

func urlStrings(us []URL) []string {
	out := make([]string, len(us))
	for i, u := range us {
		out[i] = u.Normalized
	}
	return out
}

func emailStrings(es []Email) []string {
	out := make([]string, len(es))
	for i, e := range es {
		out[i] = e.Normalized
	}
	return out
}

func paymentStrings(ps []Payment) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = string(p.Kind) + ":" + p.Value
	}
	return out
}

func amountStrings(as []Amount) []string {
	out := make([]string, len(as))
	for i, a := range as {
		out[i] = a.Raw
	}
	return out
}

func companyStrings(cs []Company) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.Normalized
	}
	return out
}

func summarizeStrings(items []string, limit int) string {
	if len(items) == 0 {
		return "none"
	}
	if len(items) <= limit {
		return joinComma(items)
	}
	shown := joinComma(items[:limit])
	return shown + " …and " + strconv.Itoa(len(items)-limit) + " more"
}

func joinComma(items []string) string {
	out := ""
	for i, s := range items {
		if i > 0 {
			out += ", "
		}
		out += s
	}
	return out
}
