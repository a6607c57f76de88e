package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateOTP(t *testing.T) {
	otp := GenerateOTP("user@example.com-20260101120000")

	assert.Len(t, otp, 4)
	for _, ch := range otp {
		assert.True(t, ch >= '0' && ch <= '9', "OTP must be digits only, got %q", otp)
	}

	// Deterministic for the same key
	assert.Equal(t, otp, GenerateOTP("user@example.com-20260101120000"))

	// Different keys give different codes (with overwhelming likelihood)
	other := GenerateOTP("user@example.com-20260101120001")
	assert.NotEqual(t, otp, other)
}
