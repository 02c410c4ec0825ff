package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/tacticsboard/board/internal/channel"
	"github.com/tacticsboard/board/internal/config"
	"github.com/tacticsboard/board/internal/dispatcher"
	"github.com/tacticsboard/board/internal/editor"
	"github.com/tacticsboard/board/internal/handlers"
	"github.com/tacticsboard/board/internal/logging"
	intOtel "github.com/tacticsboard/board/internal/otel"
	"github.com/tacticsboard/board/internal/playback"
	"github.com/tacticsboard/board/internal/scene"
	"github.com/tacticsboard/board/internal/storage"
	"github.com/tacticsboard/board/pkg/core"

	"github.com/rs/zerolog"
)

// app holds everything a session wires together.
type app struct {
	sessionStart time.Time
	boardKey     string
	logFile      *os.File
	slogManager  *logging.SlogManager
	logger       *slog.Logger
	zlog         zerolog.Logger

	otel       *intOtel.Provider
	backend    storage.Backend
	frames     channel.Channel[struct{}]
	engine     *playback.Engine
	editor     *editor.Editor
	dispatcher *dispatcher.Dispatcher
	service    *handlers.Service
}

// newApp loads configuration and builds the session. console receives log
// output in addition to the log file and may be nil.
func newApp(configDir string, console io.Writer) (*app, error) {
	a := &app{sessionStart: time.Now()}

	configErr := config.Load(configDir)

	logsDir := config.GetString("logsDir")
	if err := os.MkdirAll(logsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create logs directory: %w", err)
	}
	logPath := logging.LogFilePath(logsDir, AppName, a.sessionStart)
	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	a.logFile = f

	storageCfg := config.GetStorageConfig()
	a.boardKey = storageCfg.Key
	level := config.GetString("logLevel")

	zlevel, err := zerolog.ParseLevel(level)
	if err != nil {
		zlevel = zerolog.InfoLevel
	}
	a.zlog = zerolog.New(f).Level(zlevel).With().Timestamp().Str("app", AppName).Logger()

	a.slogManager = logging.NewSlogManager()
	a.slogManager.Setup(console, f, level, func() []slog.Attr {
		return []slog.Attr{
			slog.String("board", storageCfg.Key),
			slog.String("storage", storageCfg.Type),
		}
	})
	a.logger = a.slogManager.Logger()
	a.logger.Info("Starting up", "version", Version, "build", BuildDate, "log", logPath)
	if configErr != nil {
		a.logger.Warn("Using default configuration", "error", configErr)
	}

	if err := a.init(storageCfg); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *app) init(storageCfg config.StorageConfig) error {
	otelCfg := config.GetOTelConfig()
	provider, err := intOtel.New(intOtel.Config{
		Enabled:        otelCfg.Enabled,
		ServiceName:    otelCfg.ServiceName,
		ExportInterval: otelCfg.ExportInterval,
		MetricWriter:   a.logFile,
	})
	if err != nil {
		return fmt.Errorf("failed to set up metrics: %w", err)
	}
	a.otel = provider

	backend, err := initStorage(storageCfg, config.GetDatabaseConfig(), a.zlog)
	if err != nil {
		a.logger.Error("Failed to initialize storage backend", "error", err)
		return err
	}
	a.backend = backend

	sc := scene.New()

	// Playback steps only nudge the UI; a pending frame already covers them.
	a.frames = channel.New[struct{}](1)
	a.engine, err = playback.New(sc,
		playback.WithTickInterval(config.GetPlaybackConfig().TickInterval),
		playback.WithLogger(a.slogManager.Component("playback")),
		playback.WithObserver(func(int64, int, core.Point) {
			a.frames.TrySend(struct{}{})
		}),
	)
	if err != nil {
		return err
	}

	a.editor = editor.New(sc,
		editor.WithStore(storage.NewAdapter(backend, storageCfg.Key, a.slogManager.Component("storage"))),
		editor.WithPlayer(a.engine),
		editor.WithLogger(a.slogManager.Component("editor")),
	)

	a.dispatcher, err = dispatcher.New(logging.NewDispatcherLogger(a.zlog))
	if err != nil {
		return fmt.Errorf("failed to create dispatcher: %w", err)
	}
	a.service = handlers.NewService(handlers.Dependencies{
		Editor:    a.editor,
		Logger:    a.slogManager.Component("handlers"),
		ExportDir: config.GetString("export.dir"),
	})
	a.service.RegisterHandlers(a.dispatcher)
	a.logger.Debug("Handlers registered", "commands", len(a.dispatcher.Commands()))

	return nil
}

// Close drains queued commands, stops playbacks and releases resources.
func (a *app) Close() {
	if a.dispatcher != nil {
		a.dispatcher.Close()
	}
	if a.engine != nil {
		a.engine.StopAll()
		a.engine.Wait()
	}
	if a.frames != nil {
		a.frames.Close()
	}
	if a.backend != nil {
		if err := a.backend.Close(); err != nil {
			a.logger.Error("Failed to close storage backend", "error", err)
		}
	}
	if a.otel != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := a.otel.Shutdown(ctx); err != nil {
			a.logger.Error("Failed to shut down metrics", "error", err)
		}
		cancel()
	}
	if a.logFile != nil {
		a.logger.Info("Shut down")
		_ = a.logFile.Close()
	}
}
