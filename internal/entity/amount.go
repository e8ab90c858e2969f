package entity

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/scamshield/agent/internal/models"
)

// amountPattern matches a currency symbol or ISO code followed by a
// locale-formatted number, or the reverse order ("500 USD").
var amountPattern = regexp.MustCompile(`(?i)(?:(USD|EUR|GBP|[$€£])\s?([\d,]+(?:\.\d{1,2})?)|([\d,]+(?:\.\d{1,2})?)\s?(USD|EUR|GBP))`)

var symbolCurrency = map[string]string{
	"$": "USD",
	"€": "EUR",
	"£": "GBP",
}

func extractAmounts(text string) []models.Amount {
	var out []models.Amount

	for _, m := range amountPattern.FindAllStringSubmatch(text, -1) {
		var currencyTok, numTok string
		if m[1] != "" {
			currencyTok, numTok = m[1], m[2]
		} else {
			numTok, currencyTok = m[3], m[4]
		}

		currency := strings.ToUpper(currencyTok)
		if iso, ok := symbolCurrency[currencyTok]; ok {
			currency = iso
		}

		cleaned := strings.ReplaceAll(numTok, ",", "")
		numeric, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			continue
		}

		out = append(out, models.Amount{
			Numeric:  numeric,
			Currency: currency,
			Raw:      m[0],
		})
	}

	return out
}
