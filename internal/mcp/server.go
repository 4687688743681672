package mcp

import (
	"context"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/runeditor/internal/config"
	"github.com/1broseidon/runeditor/internal/launcher"
	"github.com/1broseidon/runeditor/internal/logging"
)

const (
	ServerName    = "runeditor"
	ServerVersion = "0.1.0"
)

// Controller is the part of launcher.Controller the tools drive.
type Controller interface {
	Run(ctx context.Context, files []string) (launcher.Result, error)
	Activate(ctx context.Context) (launcher.Session, error)
	Relocate(ctx context.Context) (launcher.Session, bool, error)
	Inspect(ctx context.Context) (launcher.Session, error)
	RunID() string
}

var _ Controller = (*launcher.Controller)(nil)

// ControllerFactory opens a controller for one tool call. The returned
// release func closes whatever the controller holds open.
type ControllerFactory func(ctx context.Context, cfg *config.Config) (Controller, func(), error)

// Server exposes the editor session over MCP.
type Server struct {
	mcpServer *mcpsdk.Server
	config    *config.Config
	open      ControllerFactory
	log       *logging.Logger
	backend   string
}

// NewServer creates an MCP server. backend names the window backend for
// editor_status.
func NewServer(cfg *config.Config, open ControllerFactory, backend string, log *logging.Logger) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if open == nil {
		return nil, fmt.Errorf("controller factory is required")
	}
	if log == nil {
		log = logging.Nop()
	}

	s := &Server{
		config:  cfg,
		open:    open,
		log:     log.With("component", "mcp"),
		backend: backend,
	}
	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)

	s.registerTools()
	return s, nil
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	s.log.Info("mcp server starting", "editor", s.config.Editor.Name, "backend", s.backend)
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "open_files",
		Description: "Open files in the editor. Files are attached to the running session in order; when no session runs a new editor is started (waiting for it to accept clients when more than one file is given). With no files the running editor is activated, or a new one launched. The window is then moved to the configured screen region unless relocation is disabled.",
	}, s.handleOpenFiles)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "activate_editor",
		Description: "Raise and focus the running editor's window. Fails when the editor is not running or has no window.",
	}, s.handleActivateEditor)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "relocate_editor",
		Description: "Move the running editor's window into the configured screen region (default: left half of the active monitor). Nothing is launched.",
	}, s.handleRelocateEditor)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "editor_status",
		Description: "Report whether the editor is running, its process ID and the windows it owns.",
	}, s.handleEditorStatus)
}
