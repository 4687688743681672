package platform

import (
	"strconv"
	"strings"

	"github.com/1broseidon/runeditor/internal/config"
)

// ParseWindowList reads the output of a window search: whitespace-separated
// decimal ids. Empty output yields an empty list; tokens that are not ids
// are skipped.
func ParseWindowList(output string) []WindowID {
	fields := strings.Fields(output)
	if len(fields) == 0 {
		return nil
	}
	ids := make([]WindowID, 0, len(fields))
	for _, f := range fields {
		n, err := strconv.ParseUint(f, 10, 32)
		if err != nil || n == 0 {
			continue
		}
		ids = append(ids, WindowID(n))
	}
	return ids
}

// Pick selects one window from a search result. It returns the empty handle
// when windows is empty.
func Pick(windows []WindowID, mode config.PickMode) WindowID {
	if len(windows) == 0 {
		return 0
	}
	if mode == config.PickFirst {
		return windows[0]
	}
	return windows[len(windows)-1]
}
