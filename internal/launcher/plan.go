// Package launcher decides how to bring the editor up for a set of files and
// carries that decision out: spawning the editor or its session client,
// waiting for the session server, activating and relocating the window.
package launcher

import "strings"

// Action is the branch taken for a (running, files) pair.
type Action int

const (
	ActionAttachFiles Action = iota
	ActionActivate
	ActionLaunchWithFile
	ActionLaunchThenAttach
	ActionLaunch
)

func (a Action) String() string {
	switch a {
	case ActionAttachFiles:
		return "attach-files"
	case ActionActivate:
		return "activate"
	case ActionLaunchWithFile:
		return "launch-with-file"
	case ActionLaunchThenAttach:
		return "launch-then-attach"
	case ActionLaunch:
		return "launch"
	default:
		return "unknown"
	}
}

// StepKind is one primitive operation of a Plan.
type StepKind int

const (
	// StepSpawnEditor starts a new editor instance, with Step.File appended
	// when set.
	StepSpawnEditor StepKind = iota
	// StepWaitReady blocks until the editor's session server answers.
	StepWaitReady
	// StepAttach hands Step.File to the running session via the client.
	StepAttach
	// StepActivate raises and focuses the editor window.
	StepActivate
)

func (k StepKind) String() string {
	switch k {
	case StepSpawnEditor:
		return "spawn-editor"
	case StepWaitReady:
		return "wait-ready"
	case StepAttach:
		return "attach"
	case StepActivate:
		return "activate"
	default:
		return "unknown"
	}
}

type Step struct {
	Kind StepKind
	File string
}

func (s Step) String() string {
	if s.File == "" {
		return s.Kind.String()
	}
	return s.Kind.String() + "(" + s.File + ")"
}

// Plan is the ordered list of steps for one invocation.
type Plan struct {
	Action Action
	Steps  []Step
}

func (p Plan) String() string {
	parts := make([]string, 0, len(p.Steps))
	for _, s := range p.Steps {
		parts = append(parts, s.String())
	}
	return p.Action.String() + ": " + strings.Join(parts, ", ")
}

// Decide maps the session state and file list to a plan. File order is
// preserved. It performs no I/O.
func Decide(running bool, files []string) Plan {
	switch {
	case running && len(files) > 0:
		steps := make([]Step, 0, len(files))
		for _, f := range files {
			steps = append(steps, Step{Kind: StepAttach, File: f})
		}
		return Plan{Action: ActionAttachFiles, Steps: steps}

	case running:
		return Plan{Action: ActionActivate, Steps: []Step{{Kind: StepActivate}}}

	case len(files) == 1:
		return Plan{Action: ActionLaunchWithFile, Steps: []Step{{Kind: StepSpawnEditor, File: files[0]}}}

	case len(files) > 1:
		steps := make([]Step, 0, len(files)+2)
		steps = append(steps, Step{Kind: StepSpawnEditor}, Step{Kind: StepWaitReady})
		for _, f := range files {
			steps = append(steps, Step{Kind: StepAttach, File: f})
		}
		return Plan{Action: ActionLaunchThenAttach, Steps: steps}

	default:
		return Plan{Action: ActionLaunch, Steps: []Step{{Kind: StepSpawnEditor}}}
	}
}
