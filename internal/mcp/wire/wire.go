// Package wire defines the JSON-RPC 2.0 message shapes used by both the
// query-facing MCP server and the RLM backend client. Messages are framed
// as one JSON object per line over stdio.
package wire

// Message represents a JSON-RPC 2.0 message for MCP.
type Message struct {
	Jsonrpc string      `json:"jsonrpc"`
	ID      interface{} `json:"id,omitempty"`
	Method  string      `json:"method,omitempty"`
	Params  interface{} `json:"params,omitempty"`
	Result  interface{} `json:"result,omitempty"`
	Error   *Error      `json:"error,omitempty"`
}

// Error represents a JSON-RPC 2.0 error.
type Error struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// Standard JSON-RPC error codes.
const (
	ParseError     = -32700
	InvalidRequest = -32600
	MethodNotFound = -32601
	InvalidParams  = -32602
	InternalError  = -32603
)

// ProtocolVersion is the MCP protocol revision spoken on both sides.
const ProtocolVersion = "2024-11-05"

// NewRequest creates a request message.
func NewRequest(id interface{}, method string, params interface{}) *Message {
	return &Message{Jsonrpc: "2.0", ID: id, Method: method, Params: params}
}

// NewResult creates a successful response message.
func NewResult(id interface{}, result interface{}) *Message {
	return &Message{Jsonrpc: "2.0", ID: id, Result: result}
}

// NewError creates an error response message.
func NewError(id interface{}, code int, message string, data interface{}) *Message {
	return &Message{
		Jsonrpc: "2.0",
		ID:      id,
		Error:   &Error{Code: code, Message: message, Data: data},
	}
}

// NewNotification creates a notification message (no id).
func NewNotification(method string, params interface{}) *Message {
	return &Message{Jsonrpc: "2.0", Method: method, Params: params}
}

// IsRequest checks if the message is a request.
func (m *Message) IsRequest() bool {
	return m.Method != "" && m.ID != nil
}

// IsNotification checks if the message is a notification.
func (m *Message) IsNotification() bool {
	return m.Method != "" && m.ID == nil
}

// IsResponse checks if the message is a response.
func (m *Message) IsResponse() bool {
	return m.Method == "" && m.ID != nil
}
