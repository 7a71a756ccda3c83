package platform

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// TrimBox is the rectangle an external trimming tool reports.
type TrimBox struct {
	Left, Top, Width, Height int
}

// RunTrimTool spawns an external trimming tool with the given
// arguments and parses its stdout as four whitespace-separated
// integers: left, top, width, height. A non-zero exit or unparsable
// output is a hard error carrying the tool's stderr.
func RunTrimTool(ctx context.Context, tool string, args ...string) (TrimBox, error) {
	cmd := exec.CommandContext(ctx, tool, args...) //nolint:gosec // tool path is caller-configured
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return TrimBox{}, fmt.Errorf("platform: trim tool %s: %w: %s", tool, err, msg)
		}
		return TrimBox{}, fmt.Errorf("platform: trim tool %s: %w", tool, err)
	}

	fields := strings.Fields(stdout.String())
	if len(fields) != 4 {
		return TrimBox{}, fmt.Errorf("platform: trim tool %s: expected 4 integers, got %q", tool, strings.TrimSpace(stdout.String()))
	}

	vals := make([]int, 4)
	for i, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil {
			return TrimBox{}, fmt.Errorf("platform: trim tool %s: field %d %q: %w", tool, i, f, err)
		}
		vals[i] = v
	}
	return TrimBox{Left: vals[0], Top: vals[1], Width: vals[2], Height: vals[3]}, nil
}
