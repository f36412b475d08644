//go:build !windows

package proc

import (
	"context"
	"errors"
	"fmt"
	"syscall"
	"time"
)

const stopGrace = 2 * time.Second

// Stop requests termination of the whole process group. A target that has
// already exited is treated as success. If the group has not exited within
// the grace period a hard kill follows.
func (h *handle) Stop(ctx context.Context) error {
	if h.cmd.Process == nil {
		return nil
	}

	if err := syscall.Kill(-h.cmd.Process.Pid, syscall.SIGTERM); err != nil {
		if errors.Is(err, syscall.ESRCH) {
			return nil
		}
		return fmt.Errorf("signal process group %s: %w", h.name, err)
	}

	select {
	case <-h.waitDone:
		return nil
	case <-time.After(stopGrace):
	case <-ctx.Done():
		return ctx.Err()
	}

	if err := syscall.Kill(-h.cmd.Process.Pid, syscall.SIGKILL); err != nil && !errors.Is(err, syscall.ESRCH) {
		return fmt.Errorf("kill process group %s: %w", h.name, err)
	}
	select {
	case <-h.waitDone:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
