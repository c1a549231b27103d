package compensate

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/dmitrijs2005/recipeshare/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingObserver struct {
	steps []string
	errs  []error
}

func (o *recordingObserver) CompensationRan(step string, err error) {
	o.steps = append(o.steps, step)
	o.errs = append(o.errs, err)
}

func TestRun_SuccessDiscards(t *testing.T) {
	obs := &recordingObserver{}
	undone := false

	err := Run(context.Background(), logging.NewNopLogger(), obs, func(ctx context.Context, c *Compensator) error {
		c.Add("remove upload", func(context.Context) error { undone = true; return nil })
		return nil
	})

	require.NoError(t, err)
	assert.False(t, undone)
	assert.Empty(t, obs.steps)
}

func TestRun_FailureRollsBackInReverse(t *testing.T) {
	obs := &recordingObserver{}
	var order []string
	boom := errors.New("insert failed")

	err := Run(context.Background(), logging.NewNopLogger(), obs, func(ctx context.Context, c *Compensator) error {
		c.Add("first", func(context.Context) error { order = append(order, "first"); return nil })
		c.Add("second", func(context.Context) error { order = append(order, "second"); return nil })
		return boom
	})

	assert.Same(t, boom, err)
	assert.Equal(t, []string{"second", "first"}, order)
	assert.Equal(t, []string{"second", "first"}, obs.steps)
}

func TestRun_RollbackFailureIsLoggedNotReturned(t *testing.T) {
	var buf bytes.Buffer
	obs := &recordingObserver{}
	boom := errors.New("insert failed")
	denied := errors.New("access denied")

	err := Run(context.Background(), logging.NewJSONLogger(&buf, "info"), obs, func(ctx context.Context, c *Compensator) error {
		c.Add("remove upload", func(context.Context) error { return denied })
		return boom
	})

	assert.Same(t, boom, err)
	require.Len(t, obs.errs, 1)
	assert.Same(t, denied, obs.errs[0])
	assert.Contains(t, buf.String(), `"msg":"compensation failed"`)
	assert.Contains(t, buf.String(), `"step":"remove upload"`)
	assert.Contains(t, buf.String(), "access denied")
}

func TestRollback_IgnoresCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := New(logging.NewNopLogger(), nil)
	var sawErr error
	c.Add("remove upload", func(ctx context.Context) error {
		sawErr = ctx.Err()
		return nil
	})
	c.Rollback(ctx)

	assert.NoError(t, sawErr)
	assert.Equal(t, 0, c.Len())
}

func TestDiscard(t *testing.T) {
	c := New(logging.NewNopLogger(), nil)
	c.Add("x", func(context.Context) error { t.Fatal("must not run"); return nil })
	assert.Equal(t, 1, c.Len())
	c.Discard()
	c.Rollback(context.Background())
	assert.Equal(t, 0, c.Len())
}
