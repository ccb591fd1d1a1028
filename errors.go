package inspectornet

import "errors"

// Sentinel errors callers may branch on.
var (
	ErrServerAlreadyRunning = errors.New("server already running")
	ErrServerDisabled       = errors.New("server disabled by configuration")
	ErrInvalidConfig        = errors.New("invalid server configuration")
)

// Standard log/error messages shared across packages.
const (
	// Protocol errors
	MsgMissingWebSocketKey = "missing Sec-WebSocket-Key in upgrade request"
	MsgInvalidFrame        = "invalid websocket frame"
	MsgParseError          = "Parse error"
	MsgInvalidRequest      = "Invalid Request"
	MsgMethodNotFound      = "Method not found"
	MsgInternalError       = "Internal error"

	// Connection errors
	MsgClientNotFound     = "client not found"
	MsgConnectionClosed   = "connection closed"
	MsgQueueFull          = "inbound queue full, dropping message"
	MsgSessionUnavailable = "inspector session unavailable, dropping message"
)

// JSON-RPC 2.0 error codes.
const (
	JSONRPCParseError     = -32700
	JSONRPCInvalidRequest = -32600
	JSONRPCMethodNotFound = -32601
	JSONRPCInvalidParams  = -32602
	JSONRPCInternalError  = -32603
)

// JSONRPCVersion is the only protocol version the jsonrpc adapter accepts.
const JSONRPCVersion = "2.0"
