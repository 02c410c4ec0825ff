// Package script runs board commands read line by line. Each line is
// COMMAND|arg|arg; each response is a JSON array, ["ok",result] or
// ["error","message"].
package script

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/tacticsboard/board/internal/dispatcher"
)

const maxLineSize = 1 << 20

// Dispatcher routes one command. *dispatcher.Dispatcher satisfies it.
type Dispatcher interface {
	Dispatch(e dispatcher.Event) (any, error)
}

// Runner executes command scripts against a dispatcher.
type Runner struct {
	d      Dispatcher
	out    io.Writer
	logger *slog.Logger
}

// NewRunner creates a runner writing responses to out.
func NewRunner(d Dispatcher, out io.Writer, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{d: d, out: out, logger: logger}
}

// Summary counts the executed commands.
type Summary struct {
	Commands int
	Failed   int
}

// Run executes every command in r until EOF or ctx is done. Command failures
// are reported in the output and do not stop the run; read and write errors
// do.
func (r *Runner) Run(ctx context.Context, in io.Reader) (Summary, error) {
	var sum Summary
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	lineNo := 0
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		lineNo++

		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		e := ParseLine(line)
		result, err := r.d.Dispatch(e)
		sum.Commands++
		if err != nil {
			sum.Failed++
			r.logger.Warn("Script command failed", "line", lineNo, "command", e.Command, "error", err)
		}
		if err := r.respond(result, err); err != nil {
			return sum, err
		}
	}
	if err := scanner.Err(); err != nil {
		return sum, fmt.Errorf("failed to read script: %w", err)
	}
	return sum, nil
}

// ParseLine splits COMMAND|arg|arg into an event.
func ParseLine(line string) dispatcher.Event {
	parts := strings.Split(line, "|")
	e := dispatcher.Event{Command: strings.TrimSpace(parts[0])}
	if len(parts) > 1 {
		e.Args = parts[1:]
	}
	return e
}

// FormatResponse encodes a dispatch outcome as a JSON array.
func FormatResponse(result any, err error) ([]byte, error) {
	if err != nil {
		return json.Marshal([]any{"error", err.Error()})
	}
	if result == nil {
		return json.Marshal([]any{"ok"})
	}
	return json.Marshal([]any{"ok", result})
}

func (r *Runner) respond(result any, err error) error {
	line, encErr := FormatResponse(result, err)
	if encErr != nil {
		line, _ = FormatResponse(nil, fmt.Errorf("failed to encode result: %w", encErr))
	}
	line = append(line, '\n')
	if _, err := r.out.Write(line); err != nil {
		return fmt.Errorf("failed to write response: %w", err)
	}
	return nil
}
