package mcp

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/runeditor/internal/launcher"
	"github.com/1broseidon/runeditor/internal/platform"
)

func (s *Server) handleOpenFiles(ctx context.Context, _ *mcpsdk.CallToolRequest, args OpenFilesInput) (*mcpsdk.CallToolResult, OpenFilesOutput, error) {
	files, err := resolveFiles(args.Files, args.Cwd)
	if err != nil {
		return nil, OpenFilesOutput{}, err
	}

	cfg := s.config
	if args.Relocate != nil && *args.Relocate != cfg.Relocate.Enabled {
		copied := *cfg
		copied.Relocate.Enabled = *args.Relocate
		cfg = &copied
	}

	ctrl, release, err := s.open(ctx, cfg)
	if err != nil {
		return nil, OpenFilesOutput{}, fmt.Errorf("failed to open editor controller: %w", err)
	}
	defer release()

	res, err := ctrl.Run(ctx, files)
	out := OpenFilesOutput{
		RunID:     ctrl.RunID(),
		Action:    res.Plan.Action.String(),
		Steps:     stepStrings(res.Plan),
		Files:     files,
		Running:   res.Session.Running,
		PID:       res.Session.Process.PID,
		Window:    windowString(res.Window),
		Relocated: res.Relocated,
	}
	if err != nil {
		s.log.Error("open_files failed", err, "run", out.RunID, "files", len(files))
		return nil, out, err
	}
	s.log.Info("open_files", "run", out.RunID, "action", out.Action, "files", len(files), "relocated", out.Relocated)
	return nil, out, nil
}

func (s *Server) handleActivateEditor(ctx context.Context, _ *mcpsdk.CallToolRequest, _ ActivateEditorInput) (*mcpsdk.CallToolResult, ActivateEditorOutput, error) {
	ctrl, release, err := s.open(ctx, s.config)
	if err != nil {
		return nil, ActivateEditorOutput{}, fmt.Errorf("failed to open editor controller: %w", err)
	}
	defer release()

	sess, err := ctrl.Activate(ctx)
	if err != nil {
		return nil, ActivateEditorOutput{}, s.describe(err)
	}
	return nil, ActivateEditorOutput{PID: sess.Process.PID, Window: windowString(sess.Window)}, nil
}

func (s *Server) handleRelocateEditor(ctx context.Context, _ *mcpsdk.CallToolRequest, _ RelocateEditorInput) (*mcpsdk.CallToolResult, RelocateEditorOutput, error) {
	ctrl, release, err := s.open(ctx, s.config)
	if err != nil {
		return nil, RelocateEditorOutput{}, fmt.Errorf("failed to open editor controller: %w", err)
	}
	defer release()

	sess, ok, err := ctrl.Relocate(ctx)
	if err != nil {
		return nil, RelocateEditorOutput{}, s.describe(err)
	}
	return nil, RelocateEditorOutput{
		PID:       sess.Process.PID,
		Window:    windowString(sess.Window),
		Relocated: ok,
		Region:    string(s.config.Relocate.Region.Type),
	}, nil
}

func (s *Server) handleEditorStatus(ctx context.Context, _ *mcpsdk.CallToolRequest, _ EditorStatusInput) (*mcpsdk.CallToolResult, EditorStatusOutput, error) {
	ctrl, release, err := s.open(ctx, s.config)
	if err != nil {
		return nil, EditorStatusOutput{}, fmt.Errorf("failed to open editor controller: %w", err)
	}
	defer release()

	sess, err := ctrl.Inspect(ctx)
	if err != nil {
		return nil, EditorStatusOutput{}, err
	}
	out := EditorStatusOutput{
		Editor:  s.config.Editor.Name,
		Backend: s.backend,
		Running: sess.Running,
		PID:     sess.Process.PID,
		Windows: make([]string, 0, len(sess.Windows)),
		Window:  windowString(sess.Window),
	}
	for _, w := range sess.Windows {
		out.Windows = append(out.Windows, w.String())
	}
	return nil, out, nil
}

// describe adds the editor name to the controller's sentinel errors.
func (s *Server) describe(err error) error {
	return fmt.Errorf("%s: %w", s.config.Editor.Name, err)
}

// resolveFiles makes relative paths absolute against cwd. The editor may
// run with a different working directory than the MCP client.
func resolveFiles(files []string, cwd string) ([]string, error) {
	if len(files) == 0 {
		return nil, nil
	}
	base := strings.TrimSpace(cwd)
	if base == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve working directory: %w", err)
		}
		base = wd
	} else if !filepath.IsAbs(base) {
		return nil, fmt.Errorf("cwd must be an absolute path, got %q", cwd)
	}

	out := make([]string, 0, len(files))
	for i, f := range files {
		f = strings.TrimSpace(f)
		if f == "" {
			return nil, fmt.Errorf("files[%d] is empty", i)
		}
		if !filepath.IsAbs(f) {
			f = filepath.Join(base, f)
		}
		out = append(out, filepath.Clean(f))
	}
	return out, nil
}

func stepStrings(p launcher.Plan) []string {
	out := make([]string, 0, len(p.Steps))
	for _, st := range p.Steps {
		out = append(out, st.String())
	}
	return out
}

func windowString(w platform.WindowID) string {
	if !w.Valid() {
		return ""
	}
	return w.String()
}
