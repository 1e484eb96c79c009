package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"espresso-log/config"
	"espresso-log/internal/application"
	"espresso-log/internal/infra/anthropic"
	"espresso-log/internal/infra/audio"
	"espresso-log/internal/infra/ollama"
	"espresso-log/internal/infra/openai"
	"espresso-log/internal/infra/pushover"
	"espresso-log/internal/infra/sqlite"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("loading config", "error", err)
		os.Exit(1)
	}

	logger := setupLogger(cfg.Log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutting down")
		cancel()
	}()

	store, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		logger.Error("opening store", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	var notifier application.ChangeNotifier = &application.NoopNotifier{}
	var sink application.OutcomeSink = &application.NoopSink{}
	if cfg.Pushover.Enabled {
		push := pushover.NewClient(cfg.Pushover.Token, cfg.Pushover.UserKey)
		notifier = push
		sink = push
	}

	registry := application.NewToolRegistry(&application.ToolDeps{
		Shots:     store.Shots,
		Beans:     store.Beans,
		Bags:      store.Bags,
		Equipment: store.Equipment,
		Profiles:  store.Profiles,
		Notifier:  notifier,
		Logger:    logger,
	})

	var local application.ModelClient
	if cfg.Ollama.Enabled {
		local = ollama.NewClient(cfg.Ollama.BaseURL, cfg.Ollama.Model)
	}

	clientState := application.NewClientState()
	selector := application.NewClientSelector(clientState, local, func() application.ModelClient {
		if cfg.Anthropic.APIKey == "" {
			return nil
		}
		return anthropic.NewClaudeClient(cfg.Anthropic.APIKey, cfg.Anthropic.Model)
	}, logger)

	dispatcher := application.NewDispatcher(registry, selector, clientState, logger)

	var stt application.SpeechToText = &application.NoopSTT{}
	if cfg.OpenAI.APIKey != "" {
		stt = openai.NewWhisperClient(cfg.OpenAI.APIKey, cfg.OpenAI.Language)
	}

	audioSource := createAudioSource(cfg.Audio, logger)

	assistant := application.NewAssistant(audioSource, stt, dispatcher, sink, logger)

	logger.Info("starting espresso voice assistant",
		"audio_source", cfg.Audio.Source,
	)

	if err := assistant.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("assistant error", "error", err)
		os.Exit(1)
	}
}

func createAudioSource(cfg config.AudioConfig, logger *slog.Logger) application.AudioSource {
	switch cfg.Source {
	case "http":
		return audio.NewHTTPSource(cfg.HTTPAddr, cfg.AuthToken, logger)
	case "file":
		return audio.NewFileSource(cfg.FileDir)
	case "microphone":
		return audio.NewMicrophoneSource(cfg.SampleRate, logger)
	default:
		logger.Warn("unknown audio source, using http", "source", cfg.Source)
		return audio.NewHTTPSource(cfg.HTTPAddr, cfg.AuthToken, logger)
	}
}

func setupLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
