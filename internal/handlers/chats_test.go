package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestMessagePreview(t *testing.T) {
	short := "Привет, я уже на месте"
	assert.Equal(t, short, messagePreview(short))

	long := strings.Repeat("Ташкент ", 40)
	preview := messagePreview(long)
	assert.Equal(t, previewLength, utf8.RuneCountInString(preview))
	assert.True(t, utf8.ValidString(preview), "truncation must not split a character")
	assert.True(t, strings.HasPrefix(long, preview))
}

func TestSendMessageRejectsBlankContent(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) { c.Set("userId", uint(1)) })
	r.POST("/chats/:id/messages", SendMessage(nil, nil))

	for _, body := range []string{
		`{"content": ""}`,
		`{"content": "   "}`,
		`{"content": "\n\t "}`,
	} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/chats/1/messages", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code, "body %q should be rejected", body)
	}
}
