package phonevalidator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate_ValidNumber(t *testing.T) {
	tool := New("US")
	result := tool.Validate("+1-415-555-2671")
	assert.Equal(t, "+14155552671", result.E164)
}

func TestValidate_AllZerosSuspicious(t *testing.T) {
	tool := New("US")
	result := tool.Validate("+10000000000")
	assert.True(t, result.Suspicious)
}

func TestValidate_Garbage(t *testing.T) {
	tool := New("US")
	result := tool.Validate("not a phone number at all")
	assert.Empty(t, result.E164)
}

func TestValidate_DefaultsToUSRegion(t *testing.T) {
	tool := New("")
	result := tool.Validate("4155552671")
	assert.Equal(t, "US", result.Country)
}
