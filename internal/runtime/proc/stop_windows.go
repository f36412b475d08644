//go:build windows

package proc

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"
)

const stopGrace = 2 * time.Second

func (h *handle) Stop(ctx context.Context) error {
	if h.cmd.Process == nil {
		return nil
	}

	// Attempt a graceful shutdown first.
	_ = h.cmd.Process.Signal(os.Interrupt)

	select {
	case <-h.waitDone:
		return nil
	case <-time.After(stopGrace):
	case <-ctx.Done():
		return ctx.Err()
	}

	if err := h.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return fmt.Errorf("kill process %s: %w", h.name, err)
	}
	select {
	case <-h.waitDone:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
