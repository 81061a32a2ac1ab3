package mcp

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"

	"github.com/richardwhiteii/ccrecall/internal/mcp/wire"
)

// handleMessage processes an incoming message and returns a response, or
// nil for notifications and ignorable messages.
func (s *Server) handleMessage(msg *wire.Message) *wire.Message {
	if msg.IsRequest() {
		return s.handleRequest(msg)
	}
	if msg.IsNotification() {
		s.handleNotification(msg)
		return nil
	}
	if msg.IsResponse() {
		// This server issues no client-bound requests.
		log.Debug().Interface("id", msg.ID).Msg("Ignoring unexpected response")
		return nil
	}
	return wire.NewError(msg.ID, wire.InvalidRequest, "Invalid message: not a request or notification", nil)
}

func (s *Server) handleRequest(msg *wire.Message) *wire.Message {
	log.Debug().Str("method", msg.Method).Interface("id", msg.ID).Msg("Handling request")

	switch msg.Method {
	case "initialize":
		return s.handleInitialize(msg)
	case "tools/list":
		return wire.NewResult(msg.ID, map[string]interface{}{
			"tools": toolDefinitions(),
		})
	case "tools/call":
		return s.handleToolCall(msg)
	case "ping":
		return wire.NewResult(msg.ID, map[string]interface{}{})
	default:
		return wire.NewError(msg.ID, wire.MethodNotFound, fmt.Sprintf("Method not found: %s", msg.Method), nil)
	}
}

func (s *Server) handleNotification(msg *wire.Message) {
	switch msg.Method {
	case "notifications/initialized":
		log.Info().Msg("Client initialized")
	default:
		log.Debug().Str("method", msg.Method).Msg("Unknown notification")
	}
}

func (s *Server) handleInitialize(msg *wire.Message) *wire.Message {
	return wire.NewResult(msg.ID, map[string]interface{}{
		"protocolVersion": wire.ProtocolVersion,
		"capabilities": map[string]interface{}{
			"tools": map[string]interface{}{},
		},
		"serverInfo": map[string]interface{}{
			"name":    serverName,
			"version": s.version,
		},
	})
}

// callParams are the parameters of a tools/call request.
type callParams struct {
	Name      string                 `json:"name"`
	Arguments map[string]interface{} `json:"arguments"`
}

func (s *Server) handleToolCall(msg *wire.Message) *wire.Message {
	raw, err := json.Marshal(msg.Params)
	if err != nil {
		return wire.NewError(msg.ID, wire.InvalidParams, "Invalid tool call parameters", nil)
	}
	var params callParams
	if err := json.Unmarshal(raw, &params); err != nil {
		return wire.NewError(msg.ID, wire.InvalidParams, "Invalid tool call parameters", nil)
	}

	handler, ok := s.tools[params.Name]
	if !ok {
		return wire.NewError(msg.ID, wire.MethodNotFound, fmt.Sprintf("Unknown tool: %s", params.Name), nil)
	}

	payload, err := handler(context.Background(), params.Arguments)
	if err != nil {
		log.Error().Err(err).Str("tool", params.Name).Msg("Tool call failed")
		return wire.NewError(msg.ID, wire.InternalError, err.Error(), nil)
	}
	return jsonResult(msg.ID, payload)
}

// jsonResult wraps a payload as a single pretty-printed text content item,
// the shape MCP clients expect from tool calls.
func jsonResult(id interface{}, payload interface{}) *wire.Message {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return wire.NewError(id, wire.InternalError, fmt.Sprintf("Failed to encode result: %v", err), nil)
	}
	return wire.NewResult(id, map[string]interface{}{
		"content": []map[string]interface{}{
			{"type": "text", "text": string(data)},
		},
	})
}
