package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseS3URL(t *testing.T) {
	bucket, key, ok := ParseS3URL("s3://templates/acme/2024/template.png")
	assert.True(t, ok)
	assert.Equal(t, "templates", bucket)
	assert.Equal(t, "acme/2024/template.png", key)

	for _, raw := range []string{"s3://templates", "s3:///key.png", "https://templates/key.png", "static/template.png"} {
		_, _, ok := ParseS3URL(raw)
		assert.False(t, ok, raw)
	}
}
