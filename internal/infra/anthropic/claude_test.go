package anthropic_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"espresso-log/internal/application"
	"espresso-log/internal/domain"
	"espresso-log/internal/infra/anthropic"
)

func TestGetResponse_ParsesToolUse(t *testing.T) {
	var captured map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-api-key") != "test-key" {
			t.Errorf("missing api key header")
		}
		if r.Header.Get("anthropic-version") == "" {
			t.Errorf("missing anthropic-version header")
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("decoding request: %v", err)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"content": [
				{"type": "text", "text": "Logging that shot."},
				{"type": "tool_use", "id": "tu_1", "name": "log_shot",
				 "input": {"dose_grams": 18, "output_grams": 36, "time_seconds": 28}}
			],
			"stop_reason": "tool_use"
		}`))
	}))
	defer server.Close()

	client := anthropic.NewClaudeClientWithURL("test-key", "claude-sonnet-4-20250514", server.URL)

	tools := []application.ToolSchema{{
		Name:        "log_shot",
		Description: "Log a shot",
		Params: []application.ParamSpec{
			{Name: "dose_grams", Type: "number", Required: true, Description: "dose in grams"},
		},
	}}
	resp, err := client.GetResponse(context.Background(), "system prompt",
		[]application.ModelMessage{{Role: "user", Text: "log shot 18 in 36 out 28 seconds"}}, tools)
	if err != nil {
		t.Fatalf("GetResponse: %v", err)
	}

	if resp.Text != "Logging that shot." {
		t.Errorf("unexpected text: %q", resp.Text)
	}
	if len(resp.ToolUses) != 1 {
		t.Fatalf("expected 1 tool use, got %d", len(resp.ToolUses))
	}
	use := resp.ToolUses[0]
	if use.ID != "tu_1" || use.Name != "log_shot" {
		t.Errorf("unexpected tool use: %+v", use)
	}
	if use.Arguments["dose_grams"] != float64(18) {
		t.Errorf("unexpected arguments: %v", use.Arguments)
	}

	// The wire request must carry the tool schemas.
	sentTools, ok := captured["tools"].([]any)
	if !ok || len(sentTools) != 1 {
		t.Fatalf("expected 1 tool in request, got %v", captured["tools"])
	}
	tool := sentTools[0].(map[string]any)
	if tool["name"] != "log_shot" {
		t.Errorf("unexpected tool name: %v", tool["name"])
	}
	schema := tool["input_schema"].(map[string]any)
	if schema["type"] != "object" {
		t.Errorf("unexpected schema type: %v", schema["type"])
	}
	required, _ := schema["required"].([]any)
	if len(required) != 1 || required[0] != "dose_grams" {
		t.Errorf("unexpected required list: %v", schema["required"])
	}
}

func TestGetResponse_ToolResultRoundTrip(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		json.NewDecoder(r.Body).Decode(&req)

		messages := req["messages"].([]any)
		last := messages[len(messages)-1].(map[string]any)
		blocks := last["content"].([]any)
		block := blocks[0].(map[string]any)
		if block["type"] != "tool_result" || block["tool_use_id"] != "tu_1" {
			t.Errorf("tool result not encoded: %v", block)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"content": [{"type": "text", "text": "Done."}], "stop_reason": "end_turn"}`))
	}))
	defer server.Close()

	client := anthropic.NewClaudeClientWithURL("test-key", "", server.URL)

	messages := []application.ModelMessage{
		{Role: "user", Text: "log a shot"},
		{Role: "assistant", ToolUses: []domain.ToolUse{{ID: "tu_1", Name: "log_shot"}}},
		{Role: "user", ToolReturns: []domain.ToolReturn{{ToolUseID: "tu_1", Content: "Logged 18g → 36g in 28s, rated 3/4."}}},
	}
	resp, err := client.GetResponse(context.Background(), "system", messages, nil)
	if err != nil {
		t.Fatalf("GetResponse: %v", err)
	}
	if resp.Text != "Done." {
		t.Errorf("unexpected text: %q", resp.Text)
	}
}

func TestGetResponse_StatusClassification(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   domain.FaultKind
	}{
		{"unauthorized", http.StatusUnauthorized, `{}`, domain.FaultConfiguration},
		{"rate limited", http.StatusTooManyRequests, `{}`, domain.FaultRateLimited},
		{"overloaded", http.StatusServiceUnavailable, `{"error": {"type": "overloaded_error"}}`, domain.FaultRateLimited},
		{"server error", http.StatusInternalServerError, `{}`, domain.FaultConnectivity},
		{"bad request", http.StatusBadRequest, `{}`, domain.FaultUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := anthropic.NewClaudeClientWithURL("test-key", "", server.URL)
			_, err := client.GetResponse(context.Background(), "system",
				[]application.ModelMessage{{Role: "user", Text: "hi"}}, nil)
			if err == nil {
				t.Fatal("expected error")
			}
			if got := domain.KindOf(err); got != tt.want {
				t.Errorf("KindOf = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGetResponse_CancelledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"content": []}`))
	}))
	defer server.Close()

	client := anthropic.NewClaudeClientWithURL("test-key", "", server.URL)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.GetResponse(ctx, "system",
		[]application.ModelMessage{{Role: "user", Text: "hi"}}, nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if got := domain.KindOf(err); got != domain.FaultCancelled {
		t.Errorf("KindOf = %q, want %q", got, domain.FaultCancelled)
	}
}
