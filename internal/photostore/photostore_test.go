package photostore

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKey(t *testing.T) {
	k := Key("image/webp", []byte("abc"))
	assert.True(t, strings.HasSuffix(k, ".webp"))
	assert.True(t, ValidKey(k))
	assert.Equal(t, k, Key("image/webp", []byte("abc")))
	assert.NotEqual(t, k, Key("image/webp", []byte("abd")))
}

func TestValidKey(t *testing.T) {
	assert.False(t, ValidKey("../etc/passwd"))
	assert.False(t, ValidKey(strings.Repeat("a", 64)+".exe"))
	assert.False(t, ValidKey(strings.Repeat("z", 64)+".jpg"))
	assert.True(t, ValidKey(strings.Repeat("a", 64)+".jpg"))
}

func TestExtMapping(t *testing.T) {
	for _, mime := range []string{"image/jpeg", "image/png", "image/gif", "image/webp"} {
		assert.Equal(t, mime, ExtToMIME("x"+MIMEToExt(mime)))
	}
}
