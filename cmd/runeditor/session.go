package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/1broseidon/runeditor/internal/launcher"
	"github.com/1broseidon/runeditor/internal/tui"
)

func newRelocateCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "relocate",
		Short: "Move the running editor's window into the configured region",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRelocate(cmd.Context(), opts)
		},
	}
}

func runRelocate(ctx context.Context, opts *options) error {
	s, err := opts.openSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	sess, ok, err := s.ctrl.Relocate(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("could not relocate window %s: screen geometry unavailable", sess.Window)
	}
	fmt.Fprintf(opts.stdout, "moved window %s to %s\n", sess.Window, s.res.Config.Relocate.Region.Type)
	return nil
}

func newStatusCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether the editor is running and which window it owns",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := querySession(cmd.Context(), opts)
			if err != nil {
				return err
			}
			fmt.Fprintln(opts.stdout, tui.RenderStatus(st))
			return nil
		},
	}
}

func querySession(ctx context.Context, opts *options) (tui.SessionStatus, error) {
	s, err := opts.openSession(ctx)
	if err != nil {
		return tui.SessionStatus{}, err
	}
	defer s.Close()

	sess, err := s.ctrl.Inspect(ctx)
	if err != nil {
		return tui.SessionStatus{}, err
	}
	return sessionStatus(s, sess), nil
}

func sessionStatus(s *session, sess launcher.Session) tui.SessionStatus {
	st := tui.SessionStatus{
		Editor:  s.res.Config.Editor.Name,
		Backend: s.backend,
		Running: sess.Running,
		PID:     sess.Process.PID,
		Region:  s.res.Config.Relocate.Region.Type,
	}
	for _, w := range sess.Windows {
		st.Windows = append(st.Windows, w.String())
	}
	if sess.Window.Valid() {
		st.Window = sess.Window.String()
	}
	return st
}
