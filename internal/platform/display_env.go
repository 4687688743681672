package platform

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/1broseidon/runeditor/internal/runtimepath"
)

// ErrNoDisplay is returned when no X display can be found for the session.
var ErrNoDisplay = errors.New("no X display found; export DISPLAY or set display in config")

var (
	runCommandOutputFn        = runCommandOutput
	readFileFn                = os.ReadFile
	readDirFn                 = os.ReadDir
	detectSessionX11EnvFn     = detectSessionX11Env
	detectDisplayFromSocketFn = detectDisplayFromSockets
)

// DisplayEnv is the GUI environment handed to the window tool and to
// spawned editors.
type DisplayEnv struct {
	Display    string
	XAuthority string
	RuntimeDir string
}

// ResolveDisplayEnv fills in DISPLAY and XAUTHORITY for env. Values already
// in env win, then the configured ones, then the user's graphical login
// session, then the highest-numbered socket in /tmp/.X11-unix.
func ResolveDisplayEnv(env []string, display, xauthority string) (DisplayEnv, error) {
	out := DisplayEnv{
		Display:    strings.TrimSpace(envLookup(env, "DISPLAY")),
		XAuthority: strings.TrimSpace(envLookup(env, "XAUTHORITY")),
		RuntimeDir: strings.TrimSpace(envLookup(env, "XDG_RUNTIME_DIR")),
	}
	if out.RuntimeDir == "" {
		if rd, err := runtimepath.Dir(); err == nil {
			out.RuntimeDir = rd
		}
	}

	if out.Display == "" {
		out.Display = strings.TrimSpace(display)
	}
	if out.XAuthority == "" {
		out.XAuthority = strings.TrimSpace(xauthority)
	}

	if out.Display == "" || out.XAuthority == "" {
		d, x := detectSessionX11EnvFn()
		if out.Display == "" {
			out.Display = strings.TrimSpace(d)
		}
		if out.XAuthority == "" {
			out.XAuthority = strings.TrimSpace(x)
		}
	}
	if out.Display == "" {
		out.Display = detectDisplayFromSocketFn("/tmp/.X11-unix")
	}
	if out.Display == "" {
		return DisplayEnv{}, ErrNoDisplay
	}

	if out.XAuthority == "" {
		home := strings.TrimSpace(envLookup(env, "HOME"))
		if home == "" {
			home, _ = os.UserHomeDir()
		}
		if home != "" {
			candidate := filepath.Join(home, ".Xauthority")
			if _, err := os.Stat(candidate); err == nil {
				out.XAuthority = candidate
			}
		}
	}
	return out, nil
}

// EnsureDisplayEnv resolves the display for the current process and exports
// it, so the X11 connection, xdotool and every spawned editor inherit it.
func EnsureDisplayEnv(display, xauthority string) (DisplayEnv, error) {
	de, err := ResolveDisplayEnv(os.Environ(), display, xauthority)
	if err != nil {
		return DisplayEnv{}, err
	}
	for key, value := range map[string]string{
		"DISPLAY":         de.Display,
		"XAUTHORITY":      de.XAuthority,
		"XDG_RUNTIME_DIR": de.RuntimeDir,
	} {
		if value == "" || os.Getenv(key) == value {
			continue
		}
		if err := os.Setenv(key, value); err != nil {
			return de, fmt.Errorf("failed to set %s: %w", key, err)
		}
	}
	return de, nil
}

func runCommandOutput(name string, args ...string) (string, error) {
	out, err := exec.Command(name, args...).Output()
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// detectSessionX11Env asks logind for the caller's sessions and returns the
// first one with a display. The session leader's environment supplies
// XAUTHORITY.
func detectSessionX11Env() (display string, xauthority string) {
	uid := strconv.Itoa(os.Getuid())
	out, err := runCommandOutputFn("loginctl", "list-sessions", "--no-legend")
	if err != nil {
		return "", ""
	}
	for _, id := range parseLoginctlSessions(out, uid) {
		d := loginctlSessionProp(id, "Display")
		if d == "" || strings.EqualFold(d, "n/a") {
			continue
		}
		xauth := ""
		if leader := loginctlSessionProp(id, "Leader"); leader != "" && leader != "0" {
			if env, err := readProcEnviron(leader); err == nil {
				if ed := strings.TrimSpace(env["DISPLAY"]); ed != "" {
					d = ed
				}
				xauth = strings.TrimSpace(env["XAUTHORITY"])
			}
		}
		return d, xauth
	}
	return "", ""
}

func parseLoginctlSessions(output string, uid string) []string {
	var sessions []string
	for _, line := range strings.Split(output, "\n") {
		fields := strings.Fields(line)
		if len(fields) >= 2 && fields[1] == uid {
			sessions = append(sessions, fields[0])
		}
	}
	return sessions
}

func loginctlSessionProp(id, prop string) string {
	out, err := runCommandOutputFn("loginctl", "show-session", id, "-p", prop, "--value")
	if err != nil {
		return ""
	}
	return strings.TrimSpace(out)
}

func readProcEnviron(pid string) (map[string]string, error) {
	data, err := readFileFn(filepath.Join("/proc", pid, "environ"))
	if err != nil {
		return nil, err
	}
	env := make(map[string]string)
	for _, part := range strings.Split(string(data), "\x00") {
		if k, v, ok := strings.Cut(part, "="); ok {
			env[k] = v
		}
	}
	return env, nil
}

func detectDisplayFromSockets(dir string) string {
	entries, err := readDirFn(dir)
	if err != nil {
		return ""
	}
	var displays []int
	for _, e := range entries {
		name := e.Name()
		if len(name) < 2 || name[0] != 'X' {
			continue
		}
		if n, err := strconv.Atoi(name[1:]); err == nil {
			displays = append(displays, n)
		}
	}
	if len(displays) == 0 {
		return ""
	}
	sort.Ints(displays)
	return fmt.Sprintf(":%d", displays[len(displays)-1])
}

func envLookup(env []string, key string) string {
	prefix := key + "="
	for _, e := range env {
		if strings.HasPrefix(e, prefix) {
			return strings.TrimPrefix(e, prefix)
		}
	}
	return ""
}
