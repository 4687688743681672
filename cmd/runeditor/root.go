package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/1broseidon/runeditor/internal/config"
	"github.com/1broseidon/runeditor/internal/launcher"
	"github.com/1broseidon/runeditor/internal/logging"
	"github.com/1broseidon/runeditor/internal/platform"
	"github.com/1broseidon/runeditor/internal/proc"
)

// options are the persistent flags shared by every command.
type options struct {
	configPath string
	debug      bool
	noRelocate bool
	backend    string

	stdout io.Writer
	stderr io.Writer
}

func newRootCmd(opts *options) *cobra.Command {
	root := &cobra.Command{
		Use:   "runeditor [flags] [FILE...]",
		Short: "Open files in a running editor session, or start one",
		Long: `runeditor attaches files to a running editor session, activates its window
when no files are given, or launches the editor when none is running. The
editor window is then moved to the configured region of the current
display (the left half by default).

A file named like a subcommand (relocate, status, config, mcp, help) must
be given with a path prefix, for example ./status.`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOpen(cmd.Context(), opts, args)
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.SetOut(opts.stdout)
	root.SetErr(opts.stderr)

	pf := root.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", "", "Config file path (default: ~/.config/runeditor/config.yaml)")
	pf.BoolVar(&opts.debug, "debug", false, "Enable debug logging")
	pf.BoolVar(&opts.noRelocate, "no-relocate", false, "Do not move the editor window")
	pf.StringVar(&opts.backend, "backend", "", "Window backend: auto, xdotool or x11")

	root.AddCommand(
		newRelocateCmd(opts),
		newStatusCmd(opts),
		newConfigCmd(opts),
		newMCPCmd(opts),
	)
	return root
}

// execute runs the CLI and maps errors to an exit code. A missing tool is
// reported but does not change the exit code.
func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts := &options{stdout: stdout, stderr: stderr}
	root := newRootCmd(opts)
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	switch {
	case err == nil:
		return 0
	case errors.Is(err, platform.ErrToolNotAvailable):
		fmt.Fprintf(opts.stderr, "runeditor: %v\n", err)
		return 0
	case errors.Is(err, context.Canceled):
		return 130
	default:
		fmt.Fprintf(opts.stderr, "runeditor: %v\n", err)
		return 1
	}
}

// load reads the config and applies the persistent flags on top.
func (o *options) load() (*config.LoadResult, error) {
	res, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	o.apply(res)
	if err := res.Config.Validate(); err != nil {
		return nil, err
	}
	return res, nil
}

func (o *options) apply(res *config.LoadResult) {
	if o.debug {
		res.Config.LogLevel = "debug"
		res.MarkFlag("log_level", "debug")
	}
	if o.noRelocate {
		res.Config.Relocate.Enabled = false
		res.MarkFlag("relocate.enabled", "no-relocate")
	}
	if o.backend != "" {
		res.Config.Backend = config.BackendKind(o.backend)
		res.MarkFlag("backend", "backend")
	}
}

func newLogger(cfg *config.Config) (*logging.Logger, error) {
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	opts := []logging.Option{logging.WithLevel(level)}
	if cfg.LogFile != "" {
		opts = append(opts, logging.WithFile(cfg.LogFile))
	}
	return logging.New(opts...)
}

// session is a loaded config, its logger and an open controller.
type session struct {
	res     *config.LoadResult
	log     *logging.Logger
	ctrl    *launcher.Controller
	backend string
	release func()
}

func (s *session) Close() {
	if s.release != nil {
		s.release()
	}
	_ = s.log.Close()
}

func (o *options) openSession(ctx context.Context) (*session, error) {
	res, err := o.load()
	if err != nil {
		return nil, err
	}
	log, err := newLogger(res.Config)
	if err != nil {
		return nil, err
	}
	ctrl, release, err := openController(ctx, res.Config, log)
	if err != nil {
		_ = log.Close()
		return nil, err
	}
	return &session{
		res:     res,
		log:     log,
		ctrl:    ctrl,
		backend: ctrl.BackendName(),
		release: release,
	}, nil
}

// openController resolves the display, opens the window backend and builds
// a controller over the live process table.
func openController(_ context.Context, cfg *config.Config, log *logging.Logger) (*launcher.Controller, func(), error) {
	if de, err := platform.EnsureDisplayEnv(cfg.Display, cfg.XAuthority); err != nil {
		log.Warn("no X display resolved", "error", err)
	} else {
		log.Debug("display", "DISPLAY", de.Display, "XAUTHORITY", de.XAuthority)
	}

	backend, err := platform.Selector{}.Open(cfg.Backend)
	if err != nil {
		return nil, nil, err
	}
	ctrl, err := launcher.New(cfg, launcher.Deps{
		Finder:  proc.NewFinder(nil),
		Backend: backend,
		Logger:  log,
	})
	if err != nil {
		_ = backend.Close()
		return nil, nil, err
	}
	return ctrl, func() { _ = backend.Close() }, nil
}

func runOpen(ctx context.Context, opts *options, files []string) error {
	s, err := opts.openSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	res, err := s.ctrl.Run(ctx, files)
	if err != nil {
		return err
	}
	s.log.Debug("done",
		"action", res.Plan.Action.String(),
		"window", res.Window.String(),
		"relocated", res.Relocated,
	)
	return nil
}
