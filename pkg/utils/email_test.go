package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVerificationEmailBody(t *testing.T) {
	body := verificationEmailBody("4827")

	assert.Contains(t, body, "4827")
	assert.Contains(t, body, "Verify Your Email")
	assert.NotContains(t, body, "%!")
	assert.Equal(t, 1, strings.Count(body, "4827"), "code should appear exactly once")
}

func TestPasswordResetEmailBody(t *testing.T) {
	body := passwordResetEmailBody("1234")

	assert.Contains(t, body, "1234")
	assert.Contains(t, body, "Password Reset")
	assert.NotContains(t, body, "%!")
}

func TestBookingCancelledEmailBody(t *testing.T) {
	body := bookingCancelledEmailBody("Ташкент", "Бухара")

	assert.Contains(t, body, "Ташкент → Бухара")
	assert.Contains(t, body, "/rides")
	assert.NotContains(t, body, "%!")
}
