package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"espresso-log/internal/application"
	"espresso-log/internal/domain"
)

// ClaudeClient is the cloud model client. It speaks the messages API with
// native tool use. Every call is a single attempt: the voice pipeline
// reports failures once and never retries on its own.
type ClaudeClient struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
	model      string
}

func NewClaudeClient(apiKey, model string) *ClaudeClient {
	return NewClaudeClientWithURL(apiKey, model, "https://api.anthropic.com/v1")
}

func NewClaudeClientWithURL(apiKey, model, baseURL string) *ClaudeClient {
	if model == "" {
		model = "claude-sonnet-4-20250514"
	}
	return &ClaudeClient{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		baseURL:    baseURL,
		model:      model,
	}
}

func (c *ClaudeClient) Name() string { return "claude" }

func (c *ClaudeClient) Local() bool { return false }

func (c *ClaudeClient) SupportsToolCalls() bool { return true }

type contentBlock struct {
	Type      string         `json:"type"`
	Text      string         `json:"text,omitempty"`
	ID        string         `json:"id,omitempty"`
	Name      string         `json:"name,omitempty"`
	Input     map[string]any `json:"input,omitempty"`
	ToolUseID string         `json:"tool_use_id,omitempty"`
	Content   string         `json:"content,omitempty"`
	IsError   bool           `json:"is_error,omitempty"`
}

type message struct {
	Role    string         `json:"role"`
	Content []contentBlock `json:"content"`
}

type toolDef struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"input_schema"`
}

type request struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	System    string    `json:"system"`
	Messages  []message `json:"messages"`
	Tools     []toolDef `json:"tools,omitempty"`
}

type response struct {
	Content    []contentBlock `json:"content"`
	StopReason string         `json:"stop_reason"`
	Error      *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (c *ClaudeClient) GetResponse(ctx context.Context, system string, messages []application.ModelMessage, tools []application.ToolSchema) (*application.ModelResponse, error) {
	reqBody := request{
		Model:     c.model,
		MaxTokens: 1024,
		System:    system,
		Messages:  encodeMessages(messages),
		Tools:     encodeTools(tools),
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/messages", bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, domain.NewFault(domain.FaultCancelled, err)
		}
		return nil, domain.NewFault(domain.FaultConnectivity, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.NewFault(domain.FaultConnectivity, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, classifyStatus(resp.StatusCode, respBody)
	}

	var result response
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	if result.Error != nil {
		return nil, domain.Faultf(domain.FaultUnknown, "claude error: %s", result.Error.Message)
	}

	out := &application.ModelResponse{}
	var texts []string
	for _, block := range result.Content {
		switch block.Type {
		case "text":
			texts = append(texts, block.Text)
		case "tool_use":
			out.ToolUses = append(out.ToolUses, domain.ToolUse{
				ID:        block.ID,
				Name:      block.Name,
				Arguments: block.Input,
			})
		}
	}
	out.Text = strings.TrimSpace(strings.Join(texts, "\n"))
	return out, nil
}

// classifyStatus tags API failures by status code and body keywords so the
// classifier can map them without inspecting transport details.
func classifyStatus(status int, body []byte) error {
	text := strings.ToLower(string(body))
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return domain.Faultf(domain.FaultConfiguration, "claude API error %d", status)
	case status == http.StatusTooManyRequests,
		strings.Contains(text, "rate limit"),
		strings.Contains(text, "overloaded"):
		return domain.Faultf(domain.FaultRateLimited, "claude API error %d", status)
	case status >= 500:
		return domain.Faultf(domain.FaultConnectivity, "claude API error %d", status)
	default:
		return domain.Faultf(domain.FaultUnknown, "claude API error %d: %s", status, string(body))
	}
}

func encodeMessages(messages []application.ModelMessage) []message {
	out := make([]message, 0, len(messages))
	for _, m := range messages {
		var blocks []contentBlock
		if m.Text != "" {
			blocks = append(blocks, contentBlock{Type: "text", Text: m.Text})
		}
		for _, use := range m.ToolUses {
			blocks = append(blocks, contentBlock{
				Type:  "tool_use",
				ID:    use.ID,
				Name:  use.Name,
				Input: use.Arguments,
			})
		}
		for _, ret := range m.ToolReturns {
			blocks = append(blocks, contentBlock{
				Type:      "tool_result",
				ToolUseID: ret.ToolUseID,
				Content:   ret.Content,
				IsError:   ret.IsError,
			})
		}
		out = append(out, message{Role: m.Role, Content: blocks})
	}
	return out
}

func encodeTools(tools []application.ToolSchema) []toolDef {
	out := make([]toolDef, 0, len(tools))
	for _, t := range tools {
		properties := make(map[string]any, len(t.Params))
		var required []string
		for _, p := range t.Params {
			prop := map[string]any{
				"type":        p.Type,
				"description": p.Description,
			}
			if p.Minimum != nil {
				if p.ExclusiveMin {
					prop["exclusiveMinimum"] = *p.Minimum
				} else {
					prop["minimum"] = *p.Minimum
				}
			}
			if p.Maximum != nil {
				prop["maximum"] = *p.Maximum
			}
			if len(p.Enum) > 0 {
				prop["enum"] = p.Enum
			}
			properties[p.Name] = prop
			if p.Required {
				required = append(required, p.Name)
			}
		}

		schema := map[string]any{
			"type":       "object",
			"properties": properties,
		}
		if len(required) > 0 {
			schema["required"] = required
		}

		out = append(out, toolDef{
			Name:        t.Name,
			Description: t.Description,
			InputSchema: schema,
		})
	}
	return out
}
