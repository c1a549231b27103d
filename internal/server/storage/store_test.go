package storage

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewObjectPath(t *testing.T) {
	now := time.UnixMilli(1717000000123)

	tests := []struct {
		filename string
		wantExt  string
	}{
		{"tarta.JPG", "jpg"},
		{"foto.final.png", "png"},
		{"sin-extension", "bin"},
		{"", "bin"},
		{"weird.p g", "bin"},
	}
	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			p, err := NewObjectPath(now, tt.filename)
			require.NoError(t, err)
			assert.Regexp(t, regexp.MustCompile(`^1717000000123-[0-9a-f]{12}\.`+tt.wantExt+`$`), p)
		})
	}
}

func TestNewObjectPath_Unique(t *testing.T) {
	now := time.Now()
	a, err := NewObjectPath(now, "a.png")
	require.NoError(t, err)
	b, err := NewObjectPath(now, "a.png")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestURLRoundTrip(t *testing.T) {
	base := "http://127.0.0.1:9000/recipe-images/"

	u := publicURL(base, "1-ab.png")
	assert.Equal(t, "http://127.0.0.1:9000/recipe-images/1-ab.png", u)

	p, ok := pathFromURL(base, u)
	assert.True(t, ok)
	assert.Equal(t, "1-ab.png", p)

	_, ok = pathFromURL(base, "https://elsewhere/1-ab.png")
	assert.False(t, ok)
	_, ok = pathFromURL(base, "http://127.0.0.1:9000/recipe-images/")
	assert.False(t, ok)
}
