// Package jsonrpc implements a minimal JSON-RPC 2.0 protocol adapter over the
// shared transport. It exists as the second concrete protocol next to the
// DevTools inspector channel and as a convenient endpoint for integration
// tests and simple tooling.
//
// Requests are queued on arrival and dispatched from the consumer tick, so
// registered method handlers run on the consumer thread like any other
// protocol resource.
package jsonrpc

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/daemon-engine/inspectornet"
)

// Handler processes the params of one JSON-RPC method call and returns the
// result. Handlers run on the consumer thread.
type Handler func(params map[string]interface{}) (interface{}, error)

// Request is a JSON-RPC 2.0 request.
type Request struct {
	JSONRPC string                 `json:"jsonrpc"`
	Method  string                 `json:"method"`
	Params  map[string]interface{} `json:"params,omitempty"`
	ID      interface{}            `json:"id"`
}

// Response is a JSON-RPC 2.0 response.
type Response struct {
	JSONRPC string      `json:"jsonrpc"`
	Result  interface{} `json:"result,omitempty"`
	Error   *Error      `json:"error,omitempty"`
	ID      interface{} `json:"id"`
}

// Error is a JSON-RPC 2.0 error object.
type Error struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Adapter is the JSON-RPC protocol adapter.
type Adapter struct {
	log       *slog.Logger
	transport inspectornet.Transport

	mu       sync.RWMutex
	handlers map[string]Handler
}

var _ inspectornet.Adapter = (*Adapter)(nil)

// New creates an adapter with an empty method registry.
func New() *Adapter {
	return &Adapter{
		log:      slog.Default().With("component", "jsonrpc"),
		handlers: make(map[string]Handler),
	}
}

// Bind hands the adapter its transport. Called by the server constructor.
func (a *Adapter) Bind(t inspectornet.Transport) { a.transport = t }

// RegisterMethod registers a handler for a JSON-RPC method name, replacing
// any previous handler.
func (a *Adapter) RegisterMethod(method string, h Handler) {
	a.mu.Lock()
	a.handlers[method] = h
	a.mu.Unlock()
}

// OnClientConnected logs the connection.
func (a *Adapter) OnClientConnected(id inspectornet.ConnID) {
	a.log.Info("jsonrpc client connected", "conn", string(id))
}

// OnClientDisconnected logs the disconnect.
func (a *Adapter) OnClientDisconnected(id inspectornet.ConnID) {
	a.log.Info("jsonrpc client disconnected", "conn", string(id))
}

// OnClientMessage queues the request for consumer-thread dispatch.
func (a *Adapter) OnClientMessage(id inspectornet.ConnID, text string) {
	a.transport.QueueMessage(id, text)
}

// HandleDiscoveryRequest describes the endpoint for /json probes.
func (a *Adapter) HandleDiscoveryRequest() string {
	return `[{"type":"jsonrpc","version":"` + inspectornet.JSONRPCVersion + `"}]`
}

// ProcessQueuedMessages drains the queue and answers each request on the
// consumer thread.
func (a *Adapter) ProcessQueuedMessages() {
	for _, m := range a.transport.DrainMessages() {
		if reply := a.dispatch(m.Payload); reply != "" {
			a.transport.SendToClient(m.Source, reply)
		}
	}
}

// dispatch parses and executes one request, returning the serialized
// response ("" when even the error response cannot be built).
func (a *Adapter) dispatch(payload string) string {
	var req Request
	if err := json.Unmarshal([]byte(payload), &req); err != nil {
		return errorResponse(nil, inspectornet.JSONRPCParseError, inspectornet.MsgParseError)
	}
	if req.JSONRPC != inspectornet.JSONRPCVersion {
		return errorResponse(req.ID, inspectornet.JSONRPCInvalidRequest, inspectornet.MsgInvalidRequest)
	}

	a.mu.RLock()
	handler, ok := a.handlers[req.Method]
	a.mu.RUnlock()
	if !ok {
		return errorResponse(req.ID, inspectornet.JSONRPCMethodNotFound, inspectornet.MsgMethodNotFound)
	}

	result, err := handler(req.Params)
	if err != nil {
		return errorResponse(req.ID, inspectornet.JSONRPCInternalError, err.Error())
	}

	data, err := json.Marshal(Response{
		JSONRPC: inspectornet.JSONRPCVersion,
		Result:  result,
		ID:      req.ID,
	})
	if err != nil {
		return errorResponse(req.ID, inspectornet.JSONRPCInternalError, inspectornet.MsgInternalError)
	}
	return string(data)
}

func errorResponse(id interface{}, code int, message string) string {
	data, err := json.Marshal(Response{
		JSONRPC: inspectornet.JSONRPCVersion,
		Error:   &Error{Code: code, Message: message},
		ID:      id,
	})
	if err != nil {
		return ""
	}
	return string(data)
}
