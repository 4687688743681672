package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/1broseidon/runeditor/internal/config"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func run(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := execute(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestOptionsApply_MarksFlagSources(t *testing.T) {
	res := &config.LoadResult{Config: config.DefaultConfig()}
	opts := &options{debug: true, noRelocate: true, backend: "x11"}
	opts.apply(res)

	if res.Config.LogLevel != "debug" || res.Config.Relocate.Enabled || res.Config.Backend != config.BackendX11 {
		t.Fatalf("flags not applied: %+v", res.Config)
	}
	for path, flag := range map[string]string{
		"log_level":        "debug",
		"relocate.enabled": "no-relocate",
		"backend":          "backend",
	} {
		src := res.Sources[path]
		if src.Kind != config.SourceFlag || src.Name != flag {
			t.Errorf("source for %s = %+v, want flag %s", path, src, flag)
		}
	}
}

func TestOptionsApply_NoFlagsLeavesConfig(t *testing.T) {
	res := &config.LoadResult{Config: config.DefaultConfig()}
	(&options{}).apply(res)
	if len(res.Sources) != 0 {
		t.Fatalf("unexpected sources: %v", res.Sources)
	}
}

func TestConfigValidate(t *testing.T) {
	path := writeConfig(t, "window:\n  pick: first\n")
	code, out, errOut := run(t, "--config", path, "config", "validate")
	if code != 0 || !strings.Contains(out, "config: ok") {
		t.Fatalf("code=%d out=%q err=%q", code, out, errOut)
	}
}

func TestConfigValidate_Invalid(t *testing.T) {
	path := writeConfig(t, "window:\n  pick: middle\n")
	code, _, errOut := run(t, "--config", path, "config", "validate")
	if code != 1 || !strings.Contains(errOut, "window.pick") {
		t.Fatalf("code=%d err=%q", code, errOut)
	}
}

func TestConfigValidate_BadBackendFlag(t *testing.T) {
	path := writeConfig(t, "")
	code, _, errOut := run(t, "--config", path, "--backend", "wayland", "config", "validate")
	if code != 1 || !strings.Contains(errOut, "backend") {
		t.Fatalf("code=%d err=%q", code, errOut)
	}
}

func TestConfigValidate_MissingExplicitFile(t *testing.T) {
	code, _, errOut := run(t, "--config", filepath.Join(t.TempDir(), "nope.yaml"), "config", "validate")
	if code != 1 || !strings.Contains(errOut, "does not exist") {
		t.Fatalf("code=%d err=%q", code, errOut)
	}
}

func TestConfigPrint_Defaults(t *testing.T) {
	code, out, _ := run(t, "config", "print", "--defaults")
	if code != 0 {
		t.Fatalf("code=%d", code)
	}
	for _, want := range []string{"name: emacs", "backend: auto", "pick: last", "type: left-half"} {
		if !strings.Contains(out, want) {
			t.Errorf("defaults missing %q:\n%s", want, out)
		}
	}
}

func TestConfigPrint_ListsLoadedFiles(t *testing.T) {
	path := writeConfig(t, "log_level: warn\n")
	code, out, _ := run(t, "--config", path, "config", "print")
	if code != 0 || !strings.Contains(out, "# loaded: ") || !strings.Contains(out, "log_level: warn") {
		t.Fatalf("code=%d out:\n%s", code, out)
	}
}

func TestConfigExplain_FlagSource(t *testing.T) {
	path := writeConfig(t, "relocate:\n  enabled: true\n")
	code, out, errOut := run(t, "--config", path, "--no-relocate", "config", "explain", "relocate.enabled")
	if code != 0 {
		t.Fatalf("code=%d err=%q", code, errOut)
	}
	if !strings.Contains(out, "source: flag --no-relocate") || !strings.Contains(out, "false") {
		t.Fatalf("explain output:\n%s", out)
	}
}

func TestConfigExplain_FileSource(t *testing.T) {
	path := writeConfig(t, "window:\n  pick: first\n")
	code, out, _ := run(t, "--config", path, "config", "explain", "window.pick")
	if code != 0 || !strings.Contains(out, path+":2:") || !strings.Contains(out, "first") {
		t.Fatalf("code=%d out:\n%s", code, out)
	}
}

func TestUnknownCommandFails(t *testing.T) {
	code, _, _ := run(t, "config", "explain")
	if code != 1 {
		t.Fatalf("missing explain argument should fail, code=%d", code)
	}
}

// withoutTools hides every external tool and pins the display variables so
// the run cannot reach a real X server.
func withoutTools(t *testing.T) {
	t.Helper()
	t.Setenv("PATH", "")
	t.Setenv("DISPLAY", ":99")
	t.Setenv("XAUTHORITY", filepath.Join(t.TempDir(), "Xauthority"))
	t.Setenv("XDG_RUNTIME_DIR", t.TempDir())
}

func TestOpen_MissingWindowToolExitsZero(t *testing.T) {
	withoutTools(t)
	path := writeConfig(t, "log_level: error\n")

	code, _, errOut := run(t, "--config", path, "--backend", "xdotool", "notes.txt")
	if code != 0 {
		t.Fatalf("exit code = %d, want 0 (stderr %q)", code, errOut)
	}
	if !strings.Contains(errOut, "required tool not available: xdotool") {
		t.Fatalf("stderr = %q, want missing tool message", errOut)
	}
}

func TestOpen_CompletionIsAFileName(t *testing.T) {
	withoutTools(t)
	path := writeConfig(t, "log_level: error\n")

	code, out, errOut := run(t, "--config", path, "--backend", "xdotool", "completion")
	if code != 0 || !strings.Contains(errOut, "required tool not available") {
		t.Fatalf("completion was not opened as a file: code=%d stdout=%q stderr=%q", code, out, errOut)
	}
}
