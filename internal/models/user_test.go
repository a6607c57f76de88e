package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserPasswordHashing(t *testing.T) {
	user := User{Email: "user@example.com"}

	require.NoError(t, user.HashPassword("secret123"))
	assert.NotEqual(t, "secret123", user.PasswordHash)

	assert.NoError(t, user.CheckPassword("secret123"))
	assert.Error(t, user.CheckPassword("wrong"))
}

func TestUserPublicProfile(t *testing.T) {
	user := User{
		Username:    "aziz",
		Email:       "aziz@example.com",
		Rating:      4.7,
		RatingCount: 12,
		RidesCount:  30,
	}

	profile := user.PublicProfile()
	assert.Equal(t, "aziz", profile["username"])
	assert.Equal(t, 4.7, profile["rating"])

	// Contact details stay private
	assert.NotContains(t, profile, "email")
	assert.NotContains(t, profile, "phoneNumber")
	assert.NotContains(t, profile, "passwordHash")
}
