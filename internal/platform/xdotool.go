package platform

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// Runner executes a command and returns its standard output.
type Runner interface {
	Output(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

func (ExecRunner) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

const xdotoolBinary = "xdotool"

// XdotoolBackend drives the window system by shelling out to xdotool.
type XdotoolBackend struct {
	runner  Runner
	path    string
	monitor MonitorQuery
}

var _ Backend = (*XdotoolBackend)(nil)

// NewXdotoolBackend resolves xdotool on PATH. It returns an error wrapping
// ErrToolNotAvailable when xdotool is missing.
func NewXdotoolBackend(runner Runner, lookPath func(string) (string, error)) (*XdotoolBackend, error) {
	if runner == nil {
		runner = ExecRunner{}
	}
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	path, err := lookPath(xdotoolBinary)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrToolNotAvailable, xdotoolBinary)
	}
	return &XdotoolBackend{runner: runner, path: path}, nil
}

func (b *XdotoolBackend) Name() string { return xdotoolBinary }

// WithMonitor makes ScreenGeometry prefer m over the whole X root. The
// backend takes ownership of m.
func (b *XdotoolBackend) WithMonitor(m MonitorQuery) *XdotoolBackend {
	b.monitor = m
	return b
}

func (b *XdotoolBackend) Close() error {
	if b.monitor == nil {
		return nil
	}
	return b.monitor.Close()
}

// WindowsForPID runs "xdotool search --pid PID". xdotool exits non-zero
// when nothing matches; that is reported as no windows.
func (b *XdotoolBackend) WindowsForPID(ctx context.Context, pid int32) ([]WindowID, error) {
	out, err := b.runner.Output(ctx, b.path, "search", "--pid", strconv.Itoa(int(pid)))
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && strings.TrimSpace(string(out)) == "" {
			return nil, nil
		}
		return nil, fmt.Errorf("xdotool search failed: %w", err)
	}
	return ParseWindowList(string(out)), nil
}

func (b *XdotoolBackend) Activate(ctx context.Context, id WindowID) error {
	return b.run(ctx, "windowactivate", id.String())
}

func (b *XdotoolBackend) Move(ctx context.Context, id WindowID, x, y int) error {
	return b.run(ctx, "windowmove", id.String(), strconv.Itoa(x), strconv.Itoa(y))
}

func (b *XdotoolBackend) Resize(ctx context.Context, id WindowID, width, height int) error {
	return b.run(ctx, "windowsize", id.String(), strconv.Itoa(width), strconv.Itoa(height))
}

// ScreenGeometry reports the active monitor when a MonitorQuery is attached
// and answers. Otherwise it converts "xdotool getdisplaygeometry" output
// ("W H", the whole X root) to WIDTHxHEIGHT+0+0. Output in any other shape
// is returned trimmed so the caller's parser rejects it.
func (b *XdotoolBackend) ScreenGeometry(ctx context.Context) (string, error) {
	if b.monitor != nil {
		if g, err := b.monitor.ActiveMonitor(ctx); err == nil {
			return g.String(), nil
		}
	}
	out, err := b.runner.Output(ctx, b.path, "getdisplaygeometry")
	if err != nil {
		return "", fmt.Errorf("xdotool getdisplaygeometry failed: %w", err)
	}
	text := strings.TrimSpace(string(out))
	fields := strings.Fields(text)
	if len(fields) != 2 {
		return text, nil
	}
	if _, err := strconv.Atoi(fields[0]); err != nil {
		return text, nil
	}
	if _, err := strconv.Atoi(fields[1]); err != nil {
		return text, nil
	}
	return fields[0] + "x" + fields[1] + "+0+0", nil
}

func (b *XdotoolBackend) run(ctx context.Context, args ...string) error {
	if _, err := b.runner.Output(ctx, b.path, args...); err != nil {
		return fmt.Errorf("xdotool %s failed: %w", args[0], err)
	}
	return nil
}
