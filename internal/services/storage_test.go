package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLocalUploadDir(t *testing.T) {
	t.Setenv("UPLOAD_DIR", "")
	assert.Equal(t, defaultUploadDir, LocalUploadDir())

	t.Setenv("UPLOAD_DIR", "/srv/safar/uploads")
	assert.Equal(t, "/srv/safar/uploads", LocalUploadDir())
}
