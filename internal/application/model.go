package application

import (
	"context"

	"espresso-log/internal/domain"
)

// ModelMessage is one turn of a model conversation. User turns carry Text
// or ToolReturns; assistant turns carry Text and the ToolUses they chose.
type ModelMessage struct {
	Role        string
	Text        string
	ToolUses    []domain.ToolUse
	ToolReturns []domain.ToolReturn
}

// ParamSpec describes one tool parameter: its JSON type, whether the model
// must supply it, and the constraints validated before execution.
type ParamSpec struct {
	Name         string
	Type         string // "string", "number" or "integer"
	Required     bool
	Description  string
	Minimum      *float64
	ExclusiveMin bool
	Maximum      *float64
	Enum         []string
}

// ToolSchema is the wire-facing description of one registered tool.
type ToolSchema struct {
	Name        string
	Description string
	Params      []ParamSpec
}

type ModelResponse struct {
	Text     string
	ToolUses []domain.ToolUse
}

// ModelClient is the transport capability for one AI backend. GetResponse
// performs a single attempt; the pipeline never retries a failed call.
type ModelClient interface {
	Name() string
	Local() bool
	SupportsToolCalls() bool
	GetResponse(ctx context.Context, system string, messages []ModelMessage, tools []ToolSchema) (*ModelResponse, error)
}

func floatPtr(v float64) *float64 { return &v }
