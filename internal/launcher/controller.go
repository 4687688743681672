package launcher

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/1broseidon/runeditor/internal/config"
	"github.com/1broseidon/runeditor/internal/logging"
	"github.com/1broseidon/runeditor/internal/platform"
	"github.com/1broseidon/runeditor/internal/proc"
)

var (
	ErrEditorNotRunning = errors.New("editor is not running")
	ErrNoWindow         = errors.New("editor window not found")
)

// ProcessFinder is the slice of the process table the controller needs.
type ProcessFinder interface {
	FindByName(ctx context.Context, name string) (proc.Handle, bool, error)
	AnyContaining(ctx context.Context, name string) (bool, error)
	Alive(ctx context.Context, pid int32) bool
}

// Deps are the controller's collaborators. Nil Spawner, Runner and Stat
// use the real system; Finder and Backend are required.
type Deps struct {
	Finder  ProcessFinder
	Backend platform.Backend
	Spawner Spawner
	Runner  platform.Runner
	Logger  *logging.Logger
	Stat    func(string) (os.FileInfo, error)
}

// Session is a snapshot of the editor's state.
type Session struct {
	// Running is true when any process name contains the editor name.
	Running bool
	// Process is the exact-name match used for window lookup. It may be
	// zero even when Running is true.
	Process proc.Handle
	Windows []platform.WindowID
	// Window is the handle picked from Windows; zero when there are none.
	Window platform.WindowID
}

// Result describes what Run did.
type Result struct {
	RunID     string
	Session   Session
	Plan      Plan
	Window    platform.WindowID
	Relocated bool
}

// Controller drives the editor session.
type Controller struct {
	cfg       *config.Config
	finder    ProcessFinder
	backend   platform.Backend
	spawner   Spawner
	runner    platform.Runner
	stat      func(string) (os.FileInfo, error)
	relocator *Relocator
	log       *logging.Logger
	runID     string
}

func New(cfg *config.Config, deps Deps) (*Controller, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if deps.Finder == nil {
		return nil, fmt.Errorf("process finder is required")
	}
	if deps.Backend == nil {
		return nil, fmt.Errorf("window backend is required")
	}

	c := &Controller{
		cfg:     cfg,
		finder:  deps.Finder,
		backend: deps.Backend,
		spawner: deps.Spawner,
		runner:  deps.Runner,
		stat:    deps.Stat,
		runID:   uuid.New().String(),
	}
	if c.spawner == nil {
		c.spawner = ExecSpawner{}
	}
	if c.runner == nil {
		c.runner = platform.ExecRunner{}
	}
	if c.stat == nil {
		c.stat = os.Stat
	}
	log := deps.Logger
	if log == nil {
		log = logging.Nop()
	}
	c.log = log.With("run", c.runID, "backend", c.backend.Name())
	c.relocator = NewRelocator(c.backend, cfg.Relocate.Region, c.log)
	return c, nil
}

// Inspect snapshots the process table and the editor's windows.
func (c *Controller) Inspect(ctx context.Context) (Session, error) {
	name := c.cfg.Editor.Name

	running, err := c.finder.AnyContaining(ctx, name)
	if err != nil {
		return Session{}, fmt.Errorf("failed to scan processes: %w", err)
	}
	s := Session{Running: running}
	if !running {
		return s, nil
	}

	h, ok, err := c.finder.FindByName(ctx, name)
	if err != nil {
		return Session{}, fmt.Errorf("failed to scan processes: %w", err)
	}
	if !ok {
		c.log.Debug("editor-like process running but no exact match", "name", name)
		return s, nil
	}
	s.Process = h

	wins, err := c.backend.WindowsForPID(ctx, h.PID)
	if err != nil {
		c.log.Warn("window lookup failed", "pid", h.PID, "error", err)
		return s, nil
	}
	s.Windows = wins
	s.Window = platform.Pick(wins, c.cfg.Window.Pick)
	return s, nil
}

// Run opens files in the editor: attach to a running session, activate
// it, or start a new one, then relocate the window when enabled.
func (c *Controller) Run(ctx context.Context, files []string) (Result, error) {
	sess, err := c.Inspect(ctx)
	if err != nil {
		return Result{}, err
	}

	plan := Decide(sess.Running, files)
	res := Result{RunID: c.runID, Session: sess, Plan: plan, Window: sess.Window}
	c.log.Info("editor session",
		"running", sess.Running,
		"pid", sess.Process.PID,
		"windows", len(sess.Windows),
		"action", plan.Action.String(),
		"files", len(files),
	)

	if err := c.Execute(ctx, plan, sess); err != nil {
		return res, err
	}

	if !c.cfg.Relocate.Enabled {
		return res, nil
	}

	win := sess.Window
	if !win.Valid() && sess.Running && sess.Process.PID == 0 {
		// Only a similarly named process is running; no window can be
		// resolved for it.
		c.log.Warn("editor process not matched exactly; not relocating", "editor", c.cfg.Editor.Name)
		return res, nil
	}
	if !win.Valid() {
		win, err = c.waitForWindow(ctx)
		if err != nil {
			return res, err
		}
	}
	res.Window = win

	ok, err := c.relocator.Relocate(ctx, win)
	if err != nil {
		c.log.Warn("relocation failed", "window", win.String(), "error", err)
		return res, nil
	}
	res.Relocated = ok
	return res, nil
}

// Execute performs plan's steps in order. Spawn failures caused by a
// missing tool abort the plan; other failures are logged and skipped.
func (c *Controller) Execute(ctx context.Context, plan Plan, sess Session) error {
	var editorPID int

	for _, step := range plan.Steps {
		if err := ctx.Err(); err != nil {
			return err
		}

		switch step.Kind {
		case StepSpawnEditor:
			argv := c.cfg.EditorArgv(step.File)
			pid, err := c.spawn(ctx, argv)
			if err != nil {
				return err
			}
			editorPID = pid

		case StepWaitReady:
			if err := c.waitReady(ctx, editorPID); err != nil {
				return err
			}

		case StepAttach:
			if _, err := c.spawn(ctx, c.cfg.ClientArgv(step.File)); err != nil {
				return err
			}

		case StepActivate:
			if !sess.Window.Valid() {
				c.log.Warn("editor is running but has no window to activate", "pid", sess.Process.PID)
				continue
			}
			if err := c.backend.Activate(ctx, sess.Window); err != nil {
				c.log.Warn("activate failed", "window", sess.Window.String(), "error", err)
			}
		}
	}
	return nil
}

// spawn starts argv detached. A missing binary is returned; any other
// failure is logged and reported as pid 0.
func (c *Controller) spawn(ctx context.Context, argv []string) (int, error) {
	pid, err := c.spawner.Spawn(ctx, argv)
	if err != nil {
		if errors.Is(err, platform.ErrToolNotAvailable) {
			return 0, err
		}
		c.log.Warn("spawn failed", "argv", argv, "error", err)
		return 0, nil
	}
	c.log.Debug("spawned", "argv", argv, "pid", pid)
	return pid, nil
}

// Activate raises the running editor's window.
func (c *Controller) Activate(ctx context.Context) (Session, error) {
	sess, err := c.Inspect(ctx)
	if err != nil {
		return sess, err
	}
	if !sess.Running {
		return sess, ErrEditorNotRunning
	}
	if !sess.Window.Valid() {
		return sess, ErrNoWindow
	}
	if err := c.backend.Activate(ctx, sess.Window); err != nil {
		return sess, fmt.Errorf("failed to activate window %s: %w", sess.Window, err)
	}
	return sess, nil
}

// Relocate moves the running editor's window into the configured region
// without launching anything.
func (c *Controller) Relocate(ctx context.Context) (Session, bool, error) {
	sess, err := c.Inspect(ctx)
	if err != nil {
		return sess, false, err
	}
	if !sess.Running {
		return sess, false, ErrEditorNotRunning
	}
	if !sess.Window.Valid() {
		return sess, false, ErrNoWindow
	}
	ok, err := c.relocator.Relocate(ctx, sess.Window)
	return sess, ok, err
}

// BackendName names the window backend in use.
func (c *Controller) BackendName() string {
	return c.backend.Name()
}

// RunID identifies this controller's log lines.
func (c *Controller) RunID() string {
	return c.runID
}
