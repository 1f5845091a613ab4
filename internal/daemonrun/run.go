package daemonrun

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"strings"
	"syscall"

	"soundboard/internal/audio"
	"soundboard/internal/commands"
	"soundboard/internal/config"
	"soundboard/internal/daemon"
	"soundboard/internal/deps"
	"soundboard/internal/engine"
	"soundboard/internal/graph"
	"soundboard/internal/ipc"
	"soundboard/internal/logging"
	"soundboard/internal/virtualmic"
)

// Options configures daemon process runtime behavior.
type Options struct {
	// LogLevel overrides logging.level from the config when set.
	LogLevel string
	// OpenOutput replaces the PulseAudio playback stream. Tests use it to
	// run without a sound server.
	OpenOutput engine.OutputOpener
}

// Run starts the soundboard daemon and blocks until cmdCtx ends or the
// process receives SIGINT or SIGTERM.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if level := strings.TrimSpace(opts.LogLevel); level != "" {
		cfg.Logging.Level = level
	}
	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	if err := cfg.EnsureRuntimeDir(); err != nil {
		return err
	}
	lock := daemon.NewLock(cfg.LockPath())
	if err := lock.Acquire(); err != nil {
		return err
	}
	defer func() {
		if err := lock.Release(); err != nil {
			logger.Warn("failed to release daemon lock", logging.Error(err))
		}
	}()

	statuses := deps.CheckBinaries(deps.Requirements(cfg))
	logDependencySnapshot(logger, statuses)
	if missing := deps.MissingRequired(statuses); len(missing) > 0 {
		return fmt.Errorf("required dependency %s unavailable: %s", missing[0].Name, missing[0].Detail)
	}

	manager := graph.NewFromConfig(cfg, logger)
	mic, err := virtualmic.New(virtualmic.Options{
		Sessions:    graph.PWCli{Binary: cfg.Binaries.PWCli, Logger: logger},
		Finder:      manager,
		Name:        cfg.PipeWire.VirtualMicName,
		Description: cfg.PipeWire.VirtualMicDescription,
		Attempts:    cfg.PipeWire.LinkAttempts,
		RetryDelay:  cfg.LinkRetryDelay(),
		Logger:      logger,
	}).Create(signalCtx)
	if err != nil {
		return err
	}
	defer mic.Cancel()

	openOutput := opts.OpenOutput
	if openOutput == nil {
		openOutput = pulseOutput(cfg, logger)
	}
	eng, err := engine.New(signalCtx, engine.Options{
		Loader: audio.FFmpegLoader{
			FFmpeg:     cfg.Binaries.FFmpeg,
			FFprobe:    cfg.Binaries.FFprobe,
			SampleRate: cfg.Audio.SampleRate,
		},
		Linker:            manager,
		Volume:            graph.WpctlVolume{Binary: cfg.Binaries.Wpctl},
		OpenOutput:        openOutput,
		SampleRate:        cfg.Audio.SampleRate,
		DefaultVolume:     cfg.Audio.DefaultVolume,
		DefaultGain:       cfg.Audio.DefaultGain,
		DefaultMicGain:    cfg.Audio.DefaultMicGain,
		DefaultInputName:  cfg.Audio.DefaultInputName,
		DefaultOutputName: cfg.Audio.DefaultOutputName,
		Logger:            logger,
	})
	if err != nil {
		return fmt.Errorf("create engine: %w", err)
	}
	defer eng.Close()

	// The player link lives as long as the daemon; failures only mean
	// engine output stays off the virtual mic.
	var playerLink graph.LinkSlot
	if err := manager.LinkPlayerToVirtualMic(signalCtx, &playerLink, cfg.PipeWire.PlayerNodeName); err != nil {
		logging.WarnWithContext(logger, "player link failed", "player_link_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "soundboard audio will not reach the virtual mic"),
		)
	}
	defer playerLink.Cancel()

	shared := engine.NewShared(eng)
	ipcServer, err := ipc.NewServer(signalCtx, cfg.SocketPath(), commands.NewDispatcher(shared, logger), logger)
	if err != nil {
		return fmt.Errorf("start IPC server: %w", err)
	}
	defer ipcServer.Close()
	ipcServer.Serve()

	watcherDone := make(chan struct{})
	go func() {
		defer close(watcherDone)
		daemon.NewLoopWatcher(shared, daemon.DefaultLoopInterval, logger).Run(signalCtx)
	}()
	defer func() { <-watcherDone }()

	hotplug := daemon.NewHotplugMonitor(cfg, shared, logger)
	if err := hotplug.Start(signalCtx); err != nil {
		logger.Warn("hotplug monitor start failed", logging.Error(err))
	}
	defer hotplug.Stop()

	logger.Info("soundboard daemon started",
		logging.String(logging.FieldEventType, "daemon_started"),
		logging.String("socket", ipcServer.Path()),
		logging.String("lock", lock.Path()),
		logging.String("virtual_mic", manager.VirtualMicName()),
	)

	<-signalCtx.Done()
	logger.Info("soundboard daemon shutting down")
	return nil
}

func pulseOutput(cfg *config.Config, logger *slog.Logger) engine.OutputOpener {
	return func(mixer *audio.Mixer) (engine.Output, error) {
		out, err := audio.OpenPulse(mixer, audio.OutputOptions{
			AppName:    cfg.PipeWire.PlayerNodeName,
			StreamName: "soundboard playback",
			SinkName:   cfg.Audio.DefaultOutputName,
			SampleRate: cfg.Audio.SampleRate,
			Latency:    cfg.OutputLatency(),
			Logger:     logger,
		})
		if err != nil {
			return nil, err
		}
		return out, nil
	}
}

func logDependencySnapshot(logger *slog.Logger, statuses []deps.Status) {
	if logger == nil {
		return
	}
	attrs := []logging.Attr{logging.String(logging.FieldEventType, "dependency_snapshot")}
	missing := false
	for _, s := range statuses {
		key := strings.ReplaceAll(s.Name, "-", "_")
		attrs = append(attrs,
			logging.Bool(key+"_available", s.Available),
			logging.String(key+"_binary", s.Command),
		)
		if !s.Available {
			missing = true
		}
	}
	if missing {
		logging.WarnWithContext(logger, "dependency snapshot", "dependency_snapshot",
			append(attrs,
				logging.String(logging.FieldErrorHint, "install PipeWire tools and ffmpeg or fix [binaries] paths"),
				logging.String(logging.FieldImpact, "features backed by missing binaries will fail"),
			)...,
		)
		return
	}
	logger.Info("dependency snapshot", logging.Args(attrs...)...)
}
