package entity

import (
	"strconv"
	"strings"

	"github.com/scamshield/agent/internal/models"
)

// SuspiciousPhonePattern runs a fixed, ordered ladder of checks against the
// dialing digits (the E.164 local part, with the country calling code
// stripped) and returns the first pattern that matches. Shared between the
// entity extractor and the standalone phone validator tool so both report
// the same reason for the same number.
func SuspiciousPhonePattern(e164 string, countryCallingCode int, t models.PhoneType) (bool, string) {
	digits := strings.TrimPrefix(e164, "+")
	if countryCallingCode > 0 {
		digits = strings.TrimPrefix(digits, strconv.Itoa(countryCallingCode))
	}
	if digits == "" {
		return false, ""
	}

	if allZeros(digits) {
		return true, "all digits zero"
	}
	if allSameDigit(digits) {
		return true, "all digits identical"
	}
	if isSequential(digits) {
		return true, "sequential digit run"
	}
	if hasRepeatingBlock(digits, 3) {
		return true, "repeating digit block"
	}
	if fractionSameDigit(digits) > 0.6 && len(digits) >= 7 {
		return true, "majority of digits identical"
	}
	if t == models.PhoneTypePremiumRate {
		return true, "premium-rate number"
	}

	return false, ""
}

func allZeros(digits string) bool {
	for i := 0; i < len(digits); i++ {
		if digits[i] != '0' {
			return false
		}
	}
	return len(digits) > 0
}

func allSameDigit(digits string) bool {
	if len(digits) == 0 {
		return false
	}
	first := digits[0]
	for i := 1; i < len(digits); i++ {
		if digits[i] != first {
			return false
		}
	}
	return true
}

func isSequential(digits string) bool {
	if len(digits) < 5 {
		return false
	}
	ascending, descending := true, true
	for i := 1; i < len(digits); i++ {
		if digits[i] != digits[i-1]+1 {
			ascending = false
		}
		if digits[i] != digits[i-1]-1 {
			descending = false
		}
	}
	return ascending || descending
}

// hasRepeatingBlock reports whether digits contains the same block of
// `size` characters repeated three or more times in a row.
func hasRepeatingBlock(digits string, size int) bool {
	if len(digits) < size*3 {
		return false
	}
	for i := 0; i+size*3 <= len(digits); i++ {
		block := digits[i : i+size]
		if digits[i+size:i+2*size] == block && digits[i+2*size:i+3*size] == block {
			return true
		}
	}
	return false
}

func fractionSameDigit(digits string) float64 {
	counts := make(map[rune]int)
	for _, d := range digits {
		counts[d]++
	}
	max := 0
	for _, c := range counts {
		if c > max {
			max = c
		}
	}
	return float64(max) / float64(len(digits))
}
