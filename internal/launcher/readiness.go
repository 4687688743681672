package launcher

import (
	"context"

	"k8s.io/apimachinery/pkg/util/wait"

	"github.com/1broseidon/runeditor/internal/platform"
	"github.com/1broseidon/runeditor/internal/runtimepath"
)

// readyCondition returns the poll condition used after a cold start. In
// order of preference: the configured probe command exits 0, the server
// socket exists, the spawned editor process is alive.
func (c *Controller) readyCondition(pid int) (string, wait.ConditionWithContextFunc) {
	if probe := c.cfg.Editor.ReadyProbe; len(probe) > 0 {
		return "probe", func(ctx context.Context) (bool, error) {
			_, err := c.runner.Output(ctx, probe[0], probe[1:]...)
			return err == nil, nil
		}
	}
	if sock := c.serverSocketPath(); sock != "" {
		return "socket", func(context.Context) (bool, error) {
			_, err := c.stat(sock)
			return err == nil, nil
		}
	}
	return "process", func(ctx context.Context) (bool, error) {
		return pid > 0 && c.finder.Alive(ctx, int32(pid)), nil
	}
}

func (c *Controller) serverSocketPath() string {
	switch c.cfg.Editor.ServerSocket {
	case "":
		return ""
	case "auto":
		path, err := runtimepath.ServerSocketPath(c.cfg.Editor.Name)
		if err != nil {
			c.log.Warn("cannot resolve server socket", "error", err)
			return ""
		}
		return path
	default:
		return c.cfg.Editor.ServerSocket
	}
}

// waitReady polls until the editor's session server answers. A timeout is
// logged and swallowed; the attach client has its own fallback. Only
// cancellation of ctx is returned.
func (c *Controller) waitReady(ctx context.Context, pid int) error {
	how, cond := c.readyCondition(pid)
	rc := c.cfg.Readiness
	c.log.Debug("waiting for editor", "via", how, "timeout", rc.Timeout)

	err := wait.PollUntilContextTimeout(ctx, rc.Interval, rc.Timeout, true, cond)
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	c.log.Warn("editor did not become ready in time; attaching anyway", "via", how, "timeout", rc.Timeout)
	return nil
}

// waitForWindow polls until the editor owns at least one window and returns
// the picked one, or the empty handle on timeout.
func (c *Controller) waitForWindow(ctx context.Context) (platform.WindowID, error) {
	var found platform.WindowID
	rc := c.cfg.Readiness

	err := wait.PollUntilContextTimeout(ctx, rc.Interval, rc.Timeout, true, func(ctx context.Context) (bool, error) {
		h, ok, err := c.finder.FindByName(ctx, c.cfg.Editor.Name)
		if err != nil || !ok {
			return false, nil
		}
		wins, err := c.backend.WindowsForPID(ctx, h.PID)
		if err != nil || len(wins) == 0 {
			return false, nil
		}
		found = platform.Pick(wins, c.cfg.Window.Pick)
		return true, nil
	})
	if err != nil {
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		return 0, nil
	}
	return found, nil
}
