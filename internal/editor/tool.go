package editor

import (
	"fmt"
	"strings"
)

// Tool is the selected interaction mode. It decides how pointer events are
// interpreted and is independent of the transient State.
type Tool string

const (
	ToolMarker Tool = "marker"
	ToolLine   Tool = "line"
	ToolMove   Tool = "move"
)

// Tools lists the selectable tools in selector order.
var Tools = []Tool{ToolMarker, ToolLine, ToolMove}

// Valid reports whether t is a known tool.
func (t Tool) Valid() bool {
	switch t {
	case ToolMarker, ToolLine, ToolMove:
		return true
	}
	return false
}

// ParseTool converts a tool name (case-insensitive) into a Tool.
func ParseTool(name string) (Tool, error) {
	t := Tool(strings.ToLower(strings.TrimSpace(name)))
	if !t.Valid() {
		return "", fmt.Errorf("unknown tool: %q", name)
	}
	return t, nil
}

// State is the transient operation in progress. Exactly one is active.
type State int

const (
	StateIdle State = iota
	StateDrawingLine
	StateRecordingPath
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDrawingLine:
		return "drawing"
	case StateRecordingPath:
		return "recording"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}
