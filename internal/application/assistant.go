package application

import (
	"context"
	"fmt"
	"log/slog"

	"espresso-log/internal/domain"
)

// OutcomeSink delivers the final outcome message to the user, best-effort.
type OutcomeSink interface {
	Deliver(ctx context.Context, outcome domain.Outcome) error
}

type NoopSink struct{}

func (n *NoopSink) Deliver(_ context.Context, _ domain.Outcome) error { return nil }

// Assistant wires an audio source and speech-to-text in front of the
// command dispatcher and pushes every outcome to the sink.
type Assistant struct {
	audio      AudioSource
	stt        SpeechToText
	dispatcher *Dispatcher
	sink       OutcomeSink
	logger     *slog.Logger
}

func NewAssistant(
	audio AudioSource,
	stt SpeechToText,
	dispatcher *Dispatcher,
	sink OutcomeSink,
	logger *slog.Logger,
) *Assistant {
	return &Assistant{
		audio:      audio,
		stt:        stt,
		dispatcher: dispatcher,
		sink:       sink,
		logger:     logger,
	}
}

func (a *Assistant) Run(ctx context.Context) error {
	a.logger.Info("starting audio source", "source", a.audio.Name())
	if err := a.audio.Start(ctx); err != nil {
		return fmt.Errorf("starting audio: %w", err)
	}
	defer a.audio.Stop()

	a.logger.Info("assistant ready, listening for commands")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			if err := a.processOneCommand(ctx); err != nil {
				a.logger.Error("processing command", "error", err)
			}
		}
	}
}

func (a *Assistant) processOneCommand(ctx context.Context) error {
	audioData, err := a.audio.NextCommand(ctx)
	if err != nil {
		return fmt.Errorf("getting audio: %w", err)
	}

	if len(audioData) == 0 {
		return nil
	}

	var text string

	if directText, isText := isTextCommand(audioData); isText {
		a.logger.Info("received text command directly", "text", directText)
		text = directText
	} else {
		a.logger.Info("received audio", "bytes", len(audioData))

		var err error
		text, err = a.stt.Transcribe(ctx, audioData)
		if err != nil {
			return fmt.Errorf("transcribing: %w", err)
		}

		a.logger.Info("transcribed", "text", text)
	}

	outcome := a.dispatcher.ProcessCommand(ctx, text)
	a.logger.Info("command processed",
		"success", outcome.Success,
		"message", outcome.Message,
	)

	if err := a.sink.Deliver(ctx, outcome); err != nil {
		a.logger.Error("delivering outcome", "error", err)
	}

	return nil
}

func isTextCommand(data []byte) (string, bool) {
	if len(data) > len(domain.TextCommandPrefix) && string(data[:len(domain.TextCommandPrefix)]) == domain.TextCommandPrefix {
		return string(data[len(domain.TextCommandPrefix):]), true
	}
	return "", false
}
