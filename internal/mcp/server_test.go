package mcp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/fastkit/fastkit/internal/config"
	"github.com/fastkit/fastkit/internal/service"
)

func newTestServer(t *testing.T, profile string) *Server {
	t.Helper()
	cfg := &config.Config{
		LibraryDir:  t.TempDir(),
		ListLimit:   50,
		SearchLimit: 10,
	}
	svc, err := service.New(cfg)
	if err != nil {
		t.Fatalf("service.New failed: %v", err)
	}
	t.Cleanup(func() { svc.Close() })

	var registry *Registry
	switch profile {
	case "spec-kit":
		registry = NewSpecKitRegistry(svc)
	default:
		registry = NewPromptKitRegistry(svc)
	}
	return NewServer("fast-kit test", "0.0.0", registry)
}

func runStream(t *testing.T, srv *Server, requests ...string) []Response {
	t.Helper()
	var out bytes.Buffer
	input := strings.Join(requests, "\n") + "\n"
	if err := srv.ProcessStream(context.Background(), strings.NewReader(input), &out); err != nil {
		t.Fatalf("ProcessStream failed: %v", err)
	}

	var responses []Response
	scanner := bufio.NewScanner(&out)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		var resp Response
		if err := json.Unmarshal(scanner.Bytes(), &resp); err != nil {
			t.Fatalf("malformed response line %q: %v", scanner.Text(), err)
		}
		responses = append(responses, resp)
	}
	return responses
}

// toolText unwraps the MCP content envelope back into the tool result
func toolText(t *testing.T, resp Response) map[string]interface{} {
	t.Helper()
	if resp.Error != nil {
		t.Fatalf("unexpected RPC error: %+v", resp.Error)
	}
	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatalf("result is not an object: %T", resp.Result)
	}
	content, ok := result["content"].([]interface{})
	if !ok || len(content) == 0 {
		t.Fatalf("missing content array: %v", result)
	}
	block := content[0].(map[string]interface{})
	if block["type"] != "text" {
		t.Fatalf("expected text block, got %v", block["type"])
	}
	var payload map[string]interface{}
	if err := json.Unmarshal([]byte(block["text"].(string)), &payload); err != nil {
		t.Fatalf("tool payload is not JSON: %v", err)
	}
	return payload
}

func TestInitializeHandshake(t *testing.T) {
	srv := newTestServer(t, "prompt-kit")

	responses := runStream(t, srv,
		`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2024-11-05","clientInfo":{"name":"test-client","version":"1.0"}}}`)

	if len(responses) != 1 {
		t.Fatalf("expected 1 response, got %d", len(responses))
	}
	result := responses[0].Result.(map[string]interface{})
	if result["protocolVersion"] != protocolVersion {
		t.Errorf("unexpected protocol version %v", result["protocolVersion"])
	}
	serverInfo := result["serverInfo"].(map[string]interface{})
	if serverInfo["name"] != "fast-kit test" {
		t.Errorf("unexpected server name %v", serverInfo["name"])
	}
}

func TestToolsListPromptKit(t *testing.T) {
	srv := newTestServer(t, "prompt-kit")

	responses := runStream(t, srv, `{"jsonrpc":"2.0","id":1,"method":"tools/list"}`)
	result := responses[0].Result.(map[string]interface{})
	tools := result["tools"].([]interface{})
	if len(tools) != 6 {
		t.Fatalf("expected 6 prompt tools, got %d", len(tools))
	}

	names := make(map[string]bool)
	for _, raw := range tools {
		tool := raw.(map[string]interface{})
		names[tool["name"].(string)] = true
		if tool["inputSchema"] == nil {
			t.Errorf("tool %v missing input schema", tool["name"])
		}
	}
	for _, want := range []string{"list_prompts", "get_prompt", "compose_prompt", "search_prompts", "create_custom_prompt", "track_prompt_usage"} {
		if !names[want] {
			t.Errorf("missing tool %s", want)
		}
	}
}

func TestToolsListSpecKit(t *testing.T) {
	srv := newTestServer(t, "spec-kit")

	responses := runStream(t, srv, `{"jsonrpc":"2.0","id":1,"method":"tools/list"}`)
	tools := responses[0].Result.(map[string]interface{})["tools"].([]interface{})
	if len(tools) != 7 {
		t.Fatalf("expected 7 spec tools, got %d", len(tools))
	}
}

func TestComposePromptOverStream(t *testing.T) {
	srv := newTestServer(t, "prompt-kit")

	responses := runStream(t, srv,
		`{"jsonrpc":"2.0","id":7,"method":"tools/call","params":{"name":"compose_prompt","arguments":{"prompt_id":"code_gen_function","variables":{"language":"Go","description":"parse a YAML file"}}}}`)

	payload := toolText(t, responses[0])
	text := payload["composed_prompt"].(string)
	if !strings.Contains(text, "Write a Go function") {
		t.Errorf("composition missing interpolation: %q", text)
	}
	if payload["estimated_tokens"].(float64) <= 0 {
		t.Error("expected positive token estimate")
	}
}

func TestComposeValidationFailureIsReportedPayload(t *testing.T) {
	srv := newTestServer(t, "prompt-kit")

	responses := runStream(t, srv,
		`{"jsonrpc":"2.0","id":8,"method":"tools/call","params":{"name":"compose_prompt","arguments":{"prompt_id":"code_gen_function","variables":{}}}}`)

	// A variable-validation failure is part of the tool contract: the
	// client gets a result payload with the per-field messages, never a
	// JSON-RPC protocol error.
	if responses[0].Error != nil {
		t.Fatalf("validation failure must not be an RPC error, got %+v", responses[0].Error)
	}
	result := responses[0].Result.(map[string]interface{})
	if result["isError"] != true {
		t.Errorf("expected isError marker on result, got %v", result["isError"])
	}

	payload := toolText(t, responses[0])
	raw, ok := payload["validation_errors"].([]interface{})
	if !ok || len(raw) == 0 {
		t.Fatalf("missing validation_errors list in %v", payload)
	}
	msgs := make([]string, len(raw))
	for i, m := range raw {
		msgs[i] = m.(string)
	}
	joined := strings.Join(msgs, "\n")
	for _, want := range []string{"Missing required variable: language", "Missing required variable: description"} {
		if !strings.Contains(joined, want) {
			t.Errorf("validation_errors missing %q, got %v", want, msgs)
		}
	}
}

func TestSpecLifecycleOverStream(t *testing.T) {
	srv := newTestServer(t, "spec-kit")

	createReq := `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"create_spec","arguments":{"template":"adr","title":"Pick a queue","content":{"metadata":{"title":"Pick a queue","status":"proposed","deciders":["team"]},"context":"We need async processing.","decision":"Use the existing broker."}}}}`
	responses := runStream(t, srv, createReq)
	created := toolText(t, responses[0])

	specID, ok := created["spec_id"].(string)
	if !ok || specID == "" {
		t.Fatalf("missing spec_id in %v", created)
	}
	validation := created["validation"].(map[string]interface{})
	if validation["valid"] != true {
		t.Errorf("expected valid spec, got %v", validation)
	}

	exportReq := fmt.Sprintf(`{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"export_to_prompt","arguments":{"spec_id":"%s"}}}`, specID)
	responses = runStream(t, srv, exportReq)
	exported := toolText(t, responses[0])
	if !strings.Contains(exported["prompt"].(string), "# Task: Pick a queue") {
		t.Errorf("prompt export missing heading: %v", exported["prompt"])
	}
}

func TestUnknownMethod(t *testing.T) {
	srv := newTestServer(t, "prompt-kit")

	responses := runStream(t, srv, `{"jsonrpc":"2.0","id":1,"method":"frobnicate"}`)
	if responses[0].Error == nil || responses[0].Error.Code != codeMethodNotFound {
		t.Fatalf("expected method-not-found, got %+v", responses[0])
	}
}

func TestParseErrorDoesNotKillStream(t *testing.T) {
	srv := newTestServer(t, "prompt-kit")

	responses := runStream(t, srv,
		`this is not json`,
		`{"jsonrpc":"2.0","id":2,"method":"ping"}`)

	if len(responses) != 2 {
		t.Fatalf("expected 2 responses, got %d", len(responses))
	}
	if responses[0].Error == nil || responses[0].Error.Code != codeParseError {
		t.Errorf("expected parse error first, got %+v", responses[0])
	}
	if responses[1].Error != nil {
		t.Errorf("ping after parse error must succeed, got %+v", responses[1])
	}
}

func TestInitializedNotificationProducesNoResponse(t *testing.T) {
	srv := newTestServer(t, "prompt-kit")

	responses := runStream(t, srv,
		`{"jsonrpc":"2.0","method":"notifications/initialized"}`,
		`{"jsonrpc":"2.0","id":1,"method":"ping"}`)

	if len(responses) != 1 {
		t.Fatalf("notification must not produce a response, got %d responses", len(responses))
	}
}
