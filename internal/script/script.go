// Package script parses JSONL replay scripts for the simulate command.
// Each line is one step: an optional clock advance plus an engine event
// or a script-level action.
package script

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/ambelin/attune/internal/engine"
)

// Script-level step kinds, on top of the engine's event kinds.
const (
	KindRecommend = "recommend"
	KindPulse     = "pulse"
)

// Step is one line of a replay script. AdvanceMS moves the simulated
// clock forward before the step runs.
type Step struct {
	AdvanceMS int64 `json:"advance_ms,omitempty"`
	engine.Event
}

// ParseFile reads a JSONL replay script. Blank lines, #-comments, and
// malformed lines are skipped.
func ParseFile(path string) ([]Step, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open script: %w", err)
	}
	defer f.Close()

	var steps []Step
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024) // 1MB line buffer

	for scanner.Scan() {
		if step := parseLine(scanner.Text()); step != nil {
			steps = append(steps, *step)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan script: %w", err)
	}
	return steps, nil
}

// ParseLines parses script content from a string.
func ParseLines(content string) []Step {
	var steps []Step
	for _, line := range strings.Split(content, "\n") {
		if step := parseLine(line); step != nil {
			steps = append(steps, *step)
		}
	}
	return steps
}

func parseLine(line string) *Step {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return nil
	}

	var step Step
	if err := json.Unmarshal([]byte(line), &step); err != nil {
		return nil
	}
	if step.Kind == "" {
		return nil
	}
	return &step
}
