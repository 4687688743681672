package tui

import (
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/1broseidon/runeditor/internal/config"
)

type diffKind int

const (
	diffContext diffKind = iota
	diffRemoved
	diffAdded
)

type diffLine struct {
	kind diffKind
	text string
}

// elision stands in for unchanged lines dropped from a hunk gap.
var elision = diffLine{kind: diffContext, text: "..."}

// configDiff renders both configs as YAML and diffs them line by line. It
// returns nil when nothing changed or either side cannot be rendered.
func configDiff(before, after *config.Config) []diffLine {
	if before == nil || after == nil {
		return nil
	}
	a, err := before.Marshal()
	if err != nil {
		return nil
	}
	b, err := after.Marshal()
	if err != nil {
		return nil
	}
	left := strings.TrimSpace(string(a))
	right := strings.TrimSpace(string(b))
	if left == right {
		return nil
	}
	return withContext(lineDiff(strings.Split(left, "\n"), strings.Split(right, "\n")), 2)
}

// lineDiff aligns a and b on their longest common subsequence. Within a
// changed run, removals come before additions.
func lineDiff(a, b []string) []diffLine {
	// common[i][j] is the LCS length of a[:i] and b[:j].
	common := make([][]int, len(a)+1)
	for i := range common {
		common[i] = make([]int, len(b)+1)
	}
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			switch {
			case a[i-1] == b[j-1]:
				common[i][j] = common[i-1][j-1] + 1
			case common[i-1][j] > common[i][j-1]:
				common[i][j] = common[i-1][j]
			default:
				common[i][j] = common[i][j-1]
			}
		}
	}

	// Walk back from the end, then reverse.
	out := make([]diffLine, 0, len(a)+len(b))
	i, j := len(a), len(b)
	for i > 0 || j > 0 {
		switch {
		case i > 0 && j > 0 && a[i-1] == b[j-1]:
			out = append(out, diffLine{kind: diffContext, text: a[i-1]})
			i--
			j--
		case j > 0 && (i == 0 || common[i][j-1] >= common[i-1][j]):
			out = append(out, diffLine{kind: diffAdded, text: b[j-1]})
			j--
		default:
			out = append(out, diffLine{kind: diffRemoved, text: a[i-1]})
			i--
		}
	}
	for l, r := 0, len(out)-1; l < r; l, r = l+1, r-1 {
		out[l], out[r] = out[r], out[l]
	}
	return out
}

// withContext keeps each change plus radius unchanged lines on either side.
// Every gap of dropped lines before a kept line becomes one elision; a
// trailing gap is dropped silently. A diff with no changes yields nil.
func withContext(lines []diffLine, radius int) []diffLine {
	var changed []int
	for i, l := range lines {
		if l.kind != diffContext {
			changed = append(changed, i)
		}
	}
	if len(changed) == 0 {
		return nil
	}

	var out []diffLine
	next := 0 // first index not yet emitted or skipped
	for _, c := range changed {
		lo := max(c-radius, next)
		hi := min(c+radius, len(lines)-1)
		if lo > next {
			out = append(out, elision)
		}
		for k := lo; k <= hi; k++ {
			out = append(out, lines[k])
		}
		next = max(next, hi+1)
	}
	return out
}

// cloneConfig deep-copies cfg through YAML.
func cloneConfig(cfg *config.Config) *config.Config {
	if cfg == nil {
		return nil
	}
	data, err := cfg.Marshal()
	if err != nil {
		return nil
	}
	out := new(config.Config)
	if err := yaml.Unmarshal(data, out); err != nil {
		return nil
	}
	return out
}
