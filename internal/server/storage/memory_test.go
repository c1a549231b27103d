package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_UploadNeverOverwrites(t *testing.T) {
	m := NewMemoryStore("http://cdn")
	ctx := context.Background()

	require.NoError(t, m.Upload(ctx, "a.png", []byte("one"), "image/png"))
	err := m.Upload(ctx, "a.png", []byte("two"), "image/png")
	assert.ErrorIs(t, err, ErrObjectExists)

	o, ok := m.Get("a.png")
	require.True(t, ok)
	assert.Equal(t, []byte("one"), o.Data)
	assert.Equal(t, "image/png", o.ContentType)
	assert.Equal(t, []string{"a.png", "a.png"}, m.Uploads())
}

func TestMemoryStore_Remove(t *testing.T) {
	m := NewMemoryStore("http://cdn")
	ctx := context.Background()
	require.NoError(t, m.Upload(ctx, "a.png", []byte("x"), "image/png"))

	require.NoError(t, m.Remove(ctx, "a.png", "missing.png"))
	assert.Equal(t, 0, m.Len())
	assert.Equal(t, [][]string{{"a.png", "missing.png"}}, m.Removes())
}

func TestMemoryStore_InjectedErrors(t *testing.T) {
	m := NewMemoryStore("http://cdn")
	ctx := context.Background()

	m.UploadErr = errors.New("bucket not found")
	assert.EqualError(t, m.Upload(ctx, "a.png", nil, ""), "bucket not found")
	assert.Equal(t, 0, m.Len())

	m.UploadErr = nil
	require.NoError(t, m.Upload(ctx, "a.png", []byte("x"), "image/png"))
	m.RemoveErr = errors.New("access denied")
	assert.EqualError(t, m.Remove(ctx, "a.png"), "access denied")
	assert.Equal(t, 1, m.Len())
	assert.Len(t, m.Removes(), 1)
}

func TestMemoryStore_URLs(t *testing.T) {
	m := NewMemoryStore("http://cdn/bucket")
	u := m.PublicURL("x.png")
	assert.Equal(t, "http://cdn/bucket/x.png", u)
	p, ok := m.PathFromURL(u)
	assert.True(t, ok)
	assert.Equal(t, "x.png", p)
}
