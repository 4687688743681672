package mcp

// OpenFilesInput is the input for the open_files tool.
type OpenFilesInput struct {
	Files []string `json:"files,omitempty" jsonschema:"Files to open. Relative paths resolve against cwd. Empty activates or launches the editor."`
	Cwd   string   `json:"cwd,omitempty" jsonschema:"Directory used to resolve relative file paths (default: the server's working directory)"`
	// Relocate overrides relocate.enabled for this call.
	Relocate *bool `json:"relocate,omitempty" jsonschema:"When set, overrides relocate.enabled from config for this call"`
}

// OpenFilesOutput is the output for the open_files tool.
type OpenFilesOutput struct {
	RunID     string   `json:"run_id"`
	Action    string   `json:"action"`
	Steps     []string `json:"steps"`
	Files     []string `json:"files,omitempty"`
	Running   bool     `json:"was_running"`
	PID       int32    `json:"pid,omitempty"`
	Window    string   `json:"window,omitempty"`
	Relocated bool     `json:"relocated"`
}

// ActivateEditorInput is the input for the activate_editor tool.
type ActivateEditorInput struct{}

// ActivateEditorOutput is the output for the activate_editor tool.
type ActivateEditorOutput struct {
	PID    int32  `json:"pid"`
	Window string `json:"window"`
}

// RelocateEditorInput is the input for the relocate_editor tool.
type RelocateEditorInput struct{}

// RelocateEditorOutput is the output for the relocate_editor tool.
type RelocateEditorOutput struct {
	PID       int32  `json:"pid"`
	Window    string `json:"window"`
	Relocated bool   `json:"relocated"`
	Region    string `json:"region"`
}

// EditorStatusInput is the input for the editor_status tool.
type EditorStatusInput struct{}

// EditorStatusOutput is the output for the editor_status tool.
type EditorStatusOutput struct {
	Editor  string   `json:"editor"`
	Backend string   `json:"backend"`
	Running bool     `json:"running"`
	PID     int32    `json:"pid,omitempty"`
	Windows []string `json:"windows"`
	Window  string   `json:"window,omitempty"`
}
