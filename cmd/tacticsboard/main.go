package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tacticsboard/board/internal/config"
	"github.com/tacticsboard/board/internal/render"
	"github.com/tacticsboard/board/internal/script"
	"github.com/tacticsboard/board/internal/tui"
)

// Version and BuildDate can be set at build time via ldflags.
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
)

// AppName names the log file and the metrics service.
const AppName = "tacticsboard"

// Run modes.
const (
	modeTUI    = "tui"
	modeScript = "script"
	modeExport = "export"
)

type options struct {
	mode      string
	configDir string
	script    string
	out       string
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet(AppName, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.mode, "mode", modeTUI, "run mode: tui, script or export")
	fs.StringVar(&opts.configDir, "config", ".", "directory containing "+config.FileName)
	fs.StringVar(&opts.script, "script", "-", "command file for script mode, - for stdin")
	fs.StringVar(&opts.out, "out", "", "PNG path for export mode (default: timestamped file in export.dir)")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}

	switch opts.mode {
	case modeTUI, modeScript, modeExport:
	default:
		return opts, fmt.Errorf("unknown mode %q", opts.mode)
	}
	return opts, nil
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string) error {
	opts, err := parseFlags(args, os.Stderr)
	if err != nil {
		return err
	}

	// The terminal belongs to the board in TUI mode.
	var console io.Writer = os.Stderr
	if opts.mode == modeTUI {
		console = nil
	}

	a, err := newApp(opts.configDir, console)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch opts.mode {
	case modeScript:
		return a.runScript(ctx, opts.script, os.Stdout)
	case modeExport:
		return a.runExport(ctx, opts.out)
	default:
		return tui.Run(tui.New(a.dispatcher, a.editor, a.frames))
	}
}

func (a *app) runScript(ctx context.Context, path string, out io.Writer) error {
	in := os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open script: %w", err)
		}
		defer f.Close()
		in = f
	}

	start := time.Now()
	sum, err := script.NewRunner(a.dispatcher, out, a.slogManager.Component("script")).Run(ctx, in)
	a.logger.Info("Script finished",
		"commands", sum.Commands,
		"failed", sum.Failed,
		"duration", time.Since(start),
	)
	return err
}

func (a *app) runExport(ctx context.Context, out string) error {
	loaded, err := a.editor.Load(ctx)
	if err != nil {
		return err
	}
	if !loaded {
		return fmt.Errorf("nothing saved under key %q", a.boardKey)
	}

	var args []string
	if out != "" {
		args = []string{out}
	}
	path := a.service.ExportPath(args)
	if err := render.ExportPNG(path, a.editor.Frame(), a.editor.View()); err != nil {
		return err
	}
	a.logger.Info("Board exported", "path", path)
	fmt.Println(path)
	return nil
}
