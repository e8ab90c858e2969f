package entity

import (
	"regexp"
	"strings"

	"github.com/nyaruka/phonenumbers"
	"github.com/scamshield/agent/internal/models"
)

// phoneCandidatePattern is deliberately loose: it finds runs that look
// like phone numbers (digits, separators, optional vanity letters) and
// leaves validation to the phonenumbers library.
var phoneCandidatePattern = regexp.MustCompile(`(?i)(\+?\d[\d\s().\-]{6,20}\d|\+?1?[\s.\-]?\(?\d{3}\)?[\s.\-]?[A-Z0-9]{3}[\s.\-]?[A-Z0-9]{4})`)

// vanityKeypad maps letters to the digit they sit on on a standard phone
// keypad, used to accept vanity numbers like "1-800-FLOWERS".
var vanityKeypad = map[rune]rune{
	'A': '2', 'B': '2', 'C': '2',
	'D': '3', 'E': '3', 'F': '3',
	'G': '4', 'H': '4', 'I': '4',
	'J': '5', 'K': '5', 'L': '5',
	'M': '6', 'N': '6', 'O': '6',
	'P': '7', 'Q': '7', 'R': '7', 'S': '7',
	'T': '8', 'U': '8', 'V': '8',
	'W': '9', 'X': '9', 'Y': '9', 'Z': '9',
}

// VanityToDigits translates keypad letters (e.g. "FLOWERS") to the
// digits they sit on, leaving any non-letter rune untouched.
func VanityToDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if d, ok := vanityKeypad[toUpper(r)]; ok {
			b.WriteRune(d)
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func toUpper(r rune) rune {
	if r >= 'a' && r <= 'z' {
		return r - ('a' - 'A')
	}
	return r
}

// HasVanityLetters reports whether s contains any keypad letter.
func HasVanityLetters(s string) bool {
	for _, r := range s {
		if _, ok := vanityKeypad[toUpper(r)]; ok {
			return true
		}
	}
	return false
}

func countDigits(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}

// extractPhones finds phone-number candidates in text and parses each
// against defaultRegion. Numbers below 7 digits are rejected outright.
func extractPhones(text, defaultRegion string) []models.Phone {
	if defaultRegion == "" {
		defaultRegion = "US"
	}

	seen := make(map[string]bool)
	var out []models.Phone

	for _, raw := range phoneCandidatePattern.FindAllString(text, -1) {
		candidate := raw
		if HasVanityLetters(candidate) {
			candidate = VanityToDigits(candidate)
		}
		if countDigits(candidate) < 7 {
			continue
		}

		num, err := phonenumbers.Parse(candidate, defaultRegion)
		if err != nil {
			continue
		}
		if !phonenumbers.IsPossibleNumber(num) {
			continue
		}

		e164 := phonenumbers.Format(num, phonenumbers.E164)
		if seen[e164] {
			continue
		}
		seen[e164] = true

		phone := models.Phone{
			Raw:     raw,
			E164:    e164,
			Country: phonenumbers.GetRegionCodeForNumber(num),
			Region:  defaultRegion,
			Type:    phoneType(phonenumbers.GetNumberType(num)),
			Valid:   phonenumbers.IsValidNumber(num),
		}
		phone.Suspicious, phone.SuspiciousReason = SuspiciousPhonePattern(e164, int(num.GetCountryCode()), phone.Type)
		if !phone.Valid && !phone.Suspicious {
			phone.E164 = ""
		}
		out = append(out, phone)
	}

	return out
}

func phoneType(t phonenumbers.PhoneNumberType) models.PhoneType {
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
