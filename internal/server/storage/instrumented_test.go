package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/dmitrijs2005/recipeshare/internal/common"
	sc "github.com/dmitrijs2005/recipeshare/internal/server/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstrumented_CountsOperations(t *testing.T) {
	reg := prometheus.NewRegistry()
	mem := NewMemoryStore("http://cdn")
	st, err := NewInstrumented(mem, reg)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, st.Upload(ctx, "a.png", []byte("12345"), "image/png"))
	mem.UploadErr = errors.New("denied")
	require.Error(t, st.Upload(ctx, "b.png", []byte("1"), "image/png"))
	require.NoError(t, st.Remove(ctx, "a.png"))

	assert.Equal(t, 5.0, testutil.ToFloat64(st.bytes))
	assert.Equal(t, 1.0, testutil.ToFloat64(st.errors.WithLabelValues("upload")))
	assert.Equal(t, 0.0, testutil.ToFloat64(st.errors.WithLabelValues("remove")))
	assert.Equal(t, 2, testutil.CollectAndCount(st.duration))
	assert.Equal(t, "http://cdn/a.png", st.PublicURL("a.png"))
}

func TestNew_Backends(t *testing.T) {
	cfg := testConfig()
	cfg.StorageBackend = sc.StorageMemory

	st, err := New(context.Background(), cfg, prometheus.NewRegistry())
	require.NoError(t, err)
	inst, ok := st.(*Instrumented)
	require.True(t, ok)
	_, ok = inst.next.(*MemoryStore)
	assert.True(t, ok)

	cfg.StorageBackend = "ftp"
	_, err = New(context.Background(), cfg, prometheus.NewRegistry())
	assert.ErrorIs(t, err, common.ErrorConfiguration)
}

func TestNew_S3Backend(t *testing.T) {
	fake := &fakeS3{}
	_ = newTestS3Store(t, fake)

	cfg := testConfig()
	cfg.StorageBackend = sc.StorageS3
	st, err := New(context.Background(), cfg, prometheus.NewRegistry())
	require.NoError(t, err)

	require.NoError(t, st.Upload(context.Background(), "k.png", []byte("x"), "image/png"))
	assert.Equal(t, "k.png", aws.ToString(fake.putIn.Key))
}
