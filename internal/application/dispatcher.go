package application

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"espresso-log/internal/domain"
)

// Dispatch states, in request order. Every invocation ends in Completed,
// Failed or Cancelled; nothing escapes as a panic or raw error.
type DispatchState string

const (
	StateIdle          DispatchState = "idle"
	StateNormalizing   DispatchState = "normalizing"
	StateDispatching   DispatchState = "dispatching"
	StateToolExecuting DispatchState = "tool_executing"
	StateCompleted     DispatchState = "completed"
	StateFailed        DispatchState = "failed"
	StateCancelled     DispatchState = "cancelled"
)

// Per-path call budgets. Derived from the caller's context, so external
// cancellation always wins.
const (
	localCallTimeout = 15 * time.Second
	cloudCallTimeout = 30 * time.Second
)

const systemPrompt = `You are the voice assistant of a personal espresso log.
The user speaks short commands about logging shots, beans, bags, equipment,
people and about finding or counting past shots. Use the provided tools to
carry commands out; never invent data. A single utterance may need more than
one tool. After tools run, answer with one short sentence grounded in the
literal tool results. If no tool fits, say briefly that you didn't understand.`

// Dispatcher runs one voice command end to end: normalize, select a client,
// let the model pick tools, validate and execute them in model order, then
// have the model phrase the final answer.
type Dispatcher struct {
	registry *ToolRegistry
	selector *ClientSelector
	state    *ClientState
	logger   *slog.Logger
}

func NewDispatcher(registry *ToolRegistry, selector *ClientSelector, state *ClientState, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		selector: selector,
		state:    state,
		logger:   logger,
	}
}

// ProcessCommand interprets and executes a transcript in one call. This
// deployment has no confirmation step, so it is Interpret verbatim.
func (d *Dispatcher) ProcessCommand(ctx context.Context, transcript string) domain.Outcome {
	return d.Interpret(ctx, transcript)
}

// Interpret runs the full pipeline for one transcript and always returns a
// user-safe outcome.
func (d *Dispatcher) Interpret(ctx context.Context, transcript string) domain.Outcome {
	if strings.TrimSpace(transcript) == "" {
		return domain.Outcome{Success: true, Message: "I didn't catch anything."}
	}

	d.transition(StateIdle, StateNormalizing)
	normalized := Normalize(transcript)
	d.logger.Debug("normalized transcript", "text", normalized)

	client := d.selector.Select()
	if client == nil {
		d.transition(StateNormalizing, StateFailed)
		return domain.Outcome{Success: false, Message: msgConfiguration}
	}

	outcome, localIncompatible := d.dispatch(ctx, client, normalized)
	if localIncompatible {
		// Confirmed incompatibility: disable the local client for the rest
		// of the session and hand this one command to the cloud path.
		d.state.DisableLocal()
		d.logger.Warn("local client confirmed incompatible with tool calling, disabled for session",
			"client", client.Name())
		if fallback := d.selector.Select(); fallback != nil && !fallback.Local() {
			outcome, _ = d.dispatch(ctx, fallback, normalized)
		}
	}
	return outcome
}

func (d *Dispatcher) dispatch(ctx context.Context, client ModelClient, normalized string) (domain.Outcome, bool) {
	d.transition(StateNormalizing, StateDispatching)

	timeout := cloudCallTimeout
	if client.Local() {
		timeout = localCallTimeout
	}

	messages := []ModelMessage{{Role: "user", Text: normalized}}
	schemas := d.registry.Schemas()

	callCtx, cancel := context.WithTimeout(ctx, timeout)
	resp, err := client.GetResponse(callCtx, systemPrompt, messages, schemas)
	cancel()
	if err != nil {
		kind := domain.KindOf(err)
		if kind == domain.FaultToolsUnsupported && client.Local() {
			return domain.Outcome{}, true
		}
		d.logger.Error("model call failed", "client", client.Name(), "kind", kind, "error", err)
		d.transition(StateDispatching, stateForKind(kind))
		return domain.Outcome{Success: false, Message: UserMessage(err)}, false
	}

	if len(resp.ToolUses) == 0 {
		d.transition(StateDispatching, StateCompleted)
		if text := strings.TrimSpace(resp.Text); text != "" {
			return domain.Outcome{Success: true, Message: text}, false
		}
		return domain.Outcome{Success: false, Message: "I didn't understand that command."}, false
	}

	d.transition(StateDispatching, StateToolExecuting)
	returns := make([]domain.ToolReturn, 0, len(resp.ToolUses))
	allOK := true
	entityRef := ""

	for _, use := range resp.ToolUses {
		if ctx.Err() != nil {
			d.transition(StateToolExecuting, StateCancelled)
			return domain.Outcome{Success: false, Message: msgCancelled}, false
		}

		out := d.registry.Execute(ctx, use)
		d.logger.Info("tool executed",
			"tool", use.Name, "success", out.Success)

		returns = append(returns, domain.ToolReturn{
			ToolUseID: use.ID,
			Content:   out.Message,
			IsError:   !out.Success,
		})
		allOK = allOK && out.Success
		if out.EntityRef != "" {
			entityRef = out.EntityRef
		}
	}

	message := d.synthesize(ctx, client, timeout, messages, resp, returns, schemas)

	if allOK {
		d.transition(StateToolExecuting, StateCompleted)
	} else {
		d.transition(StateToolExecuting, StateFailed)
	}
	return domain.Outcome{Success: allOK, Message: message, EntityRef: entityRef}, false
}

// synthesize asks the model to phrase the final answer from the literal
// tool returns. When the follow-up call fails or comes back empty, the
// joined tool messages stand in; no retry either way.
func (d *Dispatcher) synthesize(ctx context.Context, client ModelClient, timeout time.Duration,
	messages []ModelMessage, resp *ModelResponse, returns []domain.ToolReturn, schemas []ToolSchema) string {

	fallback := joinReturns(returns)

	followUp := append(messages,
		ModelMessage{Role: "assistant", Text: resp.Text, ToolUses: resp.ToolUses},
		ModelMessage{Role: "user", ToolReturns: returns},
	)

	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	final, err := client.GetResponse(callCtx, systemPrompt, followUp, schemas)
	if err != nil {
		d.logger.Warn("synthesis call failed, using literal tool results",
			"client", client.Name(), "error", err)
		return fallback
	}
	if text := strings.TrimSpace(final.Text); text != "" {
		return text
	}
	return fallback
}

func joinReturns(returns []domain.ToolReturn) string {
	parts := make([]string, 0, len(returns))
	for _, r := range returns {
		parts = append(parts, r.Content)
	}
	return strings.Join(parts, "\n")
}

func stateForKind(kind domain.FaultKind) DispatchState {
	if kind == domain.FaultCancelled {
		return StateCancelled
	}
	return StateFailed
}

func (d *Dispatcher) transition(from, to DispatchState) {
	d.logger.Debug("dispatch state", "from", from, "to", to)
}
