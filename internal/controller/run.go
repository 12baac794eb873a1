package controller

import (
	"context"
	"errors"

	"github.com/mark3labs/regexr/internal/session"
)

// Drive runs task and every follow-up task inline until the operation
// settles. It is meant for callers without an event loop.
func (c *Controller) Drive(ctx context.Context, task Task) {
	for task != nil {
		task = c.Resolve(task(ctx))
	}
}

// Run takes one file through the whole wizard without a UI: upload and
// preview, then process with instruction. On failure the returned snapshot
// shows where the run stopped and the error is the one behind the session's
// error message.
func Run(ctx context.Context, t Transfer, path, instruction string) (session.Snapshot, error) {
	c := New(t)

	c.Drive(ctx, c.SelectFile(path))
	if c.Stage() != session.StageProcess {
		return c.Snapshot(), c.errOr("upload did not complete")
	}

	c.SetInstruction(instruction)
	c.Drive(ctx, c.Submit())
	if c.Stage() != session.StageResults {
		return c.Snapshot(), c.errOr("processing did not complete")
	}

	return c.Snapshot(), nil
}

func (c *Controller) errOr(fallback string) error {
	if err := c.Err(); err != nil {
		return err
	}
	return errors.New(fallback)
}
