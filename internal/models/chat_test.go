package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeChatPair(t *testing.T) {
	a, b := NormalizeChatPair(7, 3)
	assert.Equal(t, uint(3), a)
	assert.Equal(t, uint(7), b)

	a, b = NormalizeChatPair(3, 7)
	assert.Equal(t, uint(3), a)
	assert.Equal(t, uint(7), b)
}

func TestChatParticipants(t *testing.T) {
	chat := Chat{UserAID: 3, UserBID: 7}

	assert.True(t, chat.HasParticipant(3))
	assert.True(t, chat.HasParticipant(7))
	assert.False(t, chat.HasParticipant(5))

	assert.Equal(t, uint(7), chat.OtherParticipant(3))
	assert.Equal(t, uint(3), chat.OtherParticipant(7))
}
