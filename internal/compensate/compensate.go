// Package compensate runs undo actions for side effects that live outside a
// database transaction, such as objects written to a bucket.
package compensate

import (
	"context"

	"github.com/dmitrijs2005/recipeshare/internal/logging"
)

// Observer is told about every compensating action that ran.
type Observer interface {
	CompensationRan(step string, err error)
}

type action struct {
	name string
	undo func(ctx context.Context) error
}

// Compensator collects undo actions while a multi-step operation makes
// progress. It is not safe for concurrent use.
type Compensator struct {
	logger   logging.Logger
	observer Observer
	actions  []action
}

// New returns an empty Compensator. observer may be nil.
func New(logger logging.Logger, observer Observer) *Compensator {
	return &Compensator{logger: logger, observer: observer}
}

// Add registers undo under name. Actions run in reverse registration order.
func (c *Compensator) Add(name string, undo func(ctx context.Context) error) {
	c.actions = append(c.actions, action{name: name, undo: undo})
}

// Len reports how many actions are pending.
func (c *Compensator) Len() int {
	return len(c.actions)
}

// Discard forgets every pending action. Call it once the operation succeeded.
func (c *Compensator) Discard() {
	c.actions = nil
}

// Rollback runs the pending actions, newest first, and clears them. Failures
// are logged and reported to the observer, never returned. Actions still run
// when ctx is already cancelled.
func (c *Compensator) Rollback(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)
	for i := len(c.actions) - 1; i >= 0; i-- {
		a := c.actions[i]
		err := a.undo(ctx)
		if err != nil {
			c.logger.Error(ctx, "compensation failed", "step", a.name, "error", err)
		} else {
			c.logger.Debug(ctx, "compensation done", "step", a.name)
		}
		if c.observer != nil {
			c.observer.CompensationRan(a.name, err)
		}
	}
	c.actions = nil
}

// Run calls fn with a fresh Compensator. When fn fails every action it
// registered is rolled back before Run returns fn's error unchanged; when it
// succeeds they are discarded.
func Run(ctx context.Context, logger logging.Logger, observer Observer, fn func(ctx context.Context, c *Compensator) error) error {
	c := New(logger, observer)
	if err := fn(ctx, c); err != nil {
		c.Rollback(ctx)
		return err
	}
	c.Discard()
	return nil
}
