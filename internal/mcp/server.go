// Package mcp implements a Model Context Protocol server over stdio.
// Messages are newline-delimited JSON-RPC 2.0; logs go to stderr so stdout
// stays a clean protocol channel. The server ships two tool profiles, one
// for the prompt library and one for the spec workshop, selected at
// startup.
package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"strings"

	"go.uber.org/zap"

	"github.com/fastkit/fastkit/internal/errors"
	"github.com/fastkit/fastkit/internal/logger"
)

// Server drives the request loop over a reader/writer pair
type Server struct {
	name        string
	version     string
	registry    *Registry
	initialized bool
	log         *zap.SugaredLogger
}

func NewServer(name, version string, registry *Registry) *Server {
	return &Server{
		name:     name,
		version:  version,
		registry: registry,
		log:      logger.ForComponent("mcp"),
	}
}

// Run serves stdin/stdout until EOF or context cancellation
func (s *Server) Run(ctx context.Context) error {
	s.log.Infow("mcp server starting", "profile", s.name, "tools", s.registry.Names())
	return s.ProcessStream(ctx, os.Stdin, os.Stdout)
}

// ProcessStream reads newline-delimited requests and writes one response
// per request. A malformed line yields a parse error response instead of
// terminating the stream.
func (s *Server) ProcessStream(ctx context.Context, reader io.Reader, writer io.Writer) error {
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	encoder := json.NewEncoder(writer)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req Request
		if err := json.Unmarshal(line, &req); err != nil {
			if err := encoder.Encode(&Response{
				JSONRPC: jsonrpcVersion,
				Error:   &RPCError{Code: codeParseError, Message: "Parse error"},
			}); err != nil {
				return err
			}
			continue
		}

		resp := s.Handle(ctx, &req)
		if resp == nil {
			continue // notification, nothing to write
		}
		if err := encoder.Encode(resp); err != nil {
			return err
		}
	}
	return scanner.Err()
}

// Handle dispatches a single request. Notifications return nil.
func (s *Server) Handle(ctx context.Context, req *Request) *Response {
	if req.ID == nil && req.Method == "notifications/initialized" {
		s.initialized = true
		return nil
	}

	resp := &Response{JSONRPC: jsonrpcVersion, ID: req.ID}

	switch req.Method {
	case "initialize":
		resp.Result = s.handleInitialize(req)
	case "ping":
		resp.Result = map[string]interface{}{}
	case "tools/list":
		resp.Result = s.handleListTools()
	case "tools/call":
		result, err := s.handleCallTool(ctx, req)
		if err != nil {
			resp.Error = &RPCError{Code: codeInternalError, Message: err.Error()}
		} else {
			resp.Result = result
		}
	case "notifications/initialized":
		s.initialized = true
		resp.Result = map[string]interface{}{}
	default:
		resp.Error = &RPCError{
			Code:    codeMethodNotFound,
			Message: fmt.Sprintf("Method not found: %s", req.Method),
		}
	}
	return resp
}

func (s *Server) handleInitialize(req *Request) interface{} {
	if clientInfo, ok := req.Params["clientInfo"].(map[string]interface{}); ok {
		s.log.Infow("client connected",
			"client", clientInfo["name"],
			"client_version", clientInfo["version"])
	}

	return map[string]interface{}{
		"protocolVersion": protocolVersion,
		"capabilities": map[string]interface{}{
			"tools": map[string]interface{}{},
		},
		"serverInfo": map[string]interface{}{
			"name":    s.name,
			"version": s.version,
		},
	}
}

func (s *Server) handleListTools() interface{} {
	toolsList := s.registry.List()
	toolsData := make([]map[string]interface{}, len(toolsList))

	for i, t := range toolsList {
		var schema interface{}
		if err := json.Unmarshal(t.Schema(), &schema); err != nil {
			schema = json.RawMessage(t.Schema())
		}
		toolsData[i] = map[string]interface{}{
			"name":        t.Name(),
			"description": t.Description(),
			"inputSchema": schema,
		}
	}

	return map[string]interface{}{"tools": toolsData}
}

func (s *Server) handleCallTool(ctx context.Context, req *Request) (result interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("tool execution panicked: %v", r)
			s.log.Errorw("tool panic recovered", "panic", r, "stack", string(debug.Stack()))
		}
	}()

	callReq := struct {
		Name      string          `json:"name"`
		Arguments json.RawMessage `json:"arguments"`
	}{}

	paramsData, err := json.Marshal(req.Params)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal params: %w", err)
	}
	if err := json.Unmarshal(paramsData, &callReq); err != nil {
		return nil, fmt.Errorf("failed to parse tool call request: %w", err)
	}
	if callReq.Name == "" {
		return nil, fmt.Errorf("tool name is required")
	}

	toolResult, err := s.registry.Execute(ctx, callReq.Name, callReq.Arguments)
	if err != nil {
		// Validation failures are part of the tool contract, not protocol
		// faults: the client gets a normal result carrying the per-field
		// messages and an isError marker.
		if appErr := errors.GetAppError(err); errors.IsAppError(err) && appErr.Code == errors.ErrCodeValidation {
			return validationResult(appErr)
		}
		return nil, err
	}
	return textContent(toolResult)
}

// validationResult renders a validation failure as tool result content
func validationResult(appErr *errors.AppError) (map[string]interface{}, error) {
	result, err := textContent(map[string]interface{}{
		"error":             appErr.Message,
		"validation_errors": validationMessages(appErr),
	})
	if err != nil {
		return nil, err
	}
	result["isError"] = true
	return result, nil
}

// validationMessages recovers the per-field message list attached by the
// service layer, falling back to the joined details string
func validationMessages(appErr *errors.AppError) []string {
	switch v := appErr.Context["errors"].(type) {
	case []string:
		return v
	case []interface{}:
		msgs := make([]string, 0, len(v))
		for _, item := range v {
			msgs = append(msgs, fmt.Sprint(item))
		}
		return msgs
	}
	if appErr.Details != "" {
		return strings.Split(appErr.Details, "; ")
	}
	return []string{appErr.Message}
}
