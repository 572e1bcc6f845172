package app

import "context"

// LoadHistory returns up to limit persisted command lines, newest first.
// Without a state database the history starts empty.
func (c *Context) LoadHistory(ctx context.Context, limit int) []string {
	if c.History == nil {
		return nil
	}
	lines, err := c.History.Lines(ctx, limit)
	if err != nil {
		c.Log.Warn("load history", "err", err)
		return nil
	}
	return lines
}

// RecordHistory persists a submitted command line.
func (c *Context) RecordHistory(ctx context.Context, line string) {
	if c.History == nil {
		return
	}
	if err := c.History.Append(ctx, line); err != nil {
		c.Log.Warn("save history", "err", err)
	}
}

// TrimHistory keeps the newest keep lines.
func (c *Context) TrimHistory(ctx context.Context, keep int) {
	if c.History == nil {
		return
	}
	n, err := c.History.Trim(ctx, keep)
	if err != nil {
		c.Log.Warn("trim history", "err", err)
		return
	}
	if n > 0 {
		c.Log.Debug("trimmed history", "removed", n)
	}
}
