// Package devtools implements the Chrome DevTools Protocol inspector channel
// on top of the shared transport. It serves the /json/list discovery document,
// queues every client message for the consumer thread, and dispatches the
// drained messages into a v8-inspector-style session that must only ever be
// touched from that thread.
package devtools

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/daemon-engine/inspectornet"
)

// Session is the consumer-thread-only inspector session the adapter drives.
// Implementations wrap v8_inspector::V8InspectorSession or an equivalent
// debug endpoint of the embedded script engine.
type Session interface {
	// DispatchProtocolMessage delivers one Chrome DevTools Protocol message.
	// Called exclusively from the consumer thread.
	DispatchProtocolMessage(message string)
}

// Config holds the inspector channel settings. Host and Port must match the
// transport configuration so the discovery document advertises the right
// WebSocket URL.
type Config struct {
	Host        string
	Port        int
	ContextName string

	// EngineReady optionally reports whether the script engine behind the
	// session is still initialized. Drained messages are dropped while it
	// returns false, which closes the shutdown race between the consumer
	// drain and engine teardown. Nil means always ready.
	EngineReady func() bool
}

// target is one entry of the /json/list discovery document, shaped the way
// DevTools frontends expect a V8 target to look.
type target struct {
	ID                   string `json:"id"`
	Type                 string `json:"type"`
	Title                string `json:"title"`
	Description          string `json:"description"`
	WebSocketDebuggerURL string `json:"webSocketDebuggerUrl"`
	DevtoolsFrontendURL  string `json:"devtoolsFrontendUrl"`
	URL                  string `json:"url"`
	FaviconURL           string `json:"faviconUrl"`
}

// Adapter is the Chrome DevTools protocol adapter.
type Adapter struct {
	cfg       Config
	sessionID string
	log       *slog.Logger

	transport inspectornet.Transport

	mu      sync.Mutex
	session Session
}

var _ inspectornet.Adapter = (*Adapter)(nil)
var _ inspectornet.UpgradeNotifier = (*Adapter)(nil)

// New creates the adapter with a fresh target/session UUID.
func New(cfg Config) *Adapter {
	if cfg.ContextName == "" {
		cfg.ContextName = "JavaScript Context"
	}
	return &Adapter{
		cfg:       cfg,
		sessionID: uuid.NewString(),
		log:       slog.Default().With("component", "devtools"),
	}
}

// Bind hands the adapter its transport. Called by the server constructor.
func (a *Adapter) Bind(t inspectornet.Transport) { a.transport = t }

// SetSession attaches (or, with nil, detaches) the inspector session. Safe to
// call from any thread; dispatch itself only happens on the consumer thread.
func (a *Adapter) SetSession(s Session) {
	a.mu.Lock()
	a.session = s
	a.mu.Unlock()
	if s != nil {
		a.log.Info("inspector session attached")
	}
}

// SendToDevTools broadcasts a protocol message to every attached frontend.
// Used by the inspector session for notifications and command responses.
func (a *Adapter) SendToDevTools(message string) {
	a.transport.Broadcast(message)
}

// OnClientConnected logs the new frontend; the interesting transition is the
// upgrade.
func (a *Adapter) OnClientConnected(id inspectornet.ConnID) {
	a.log.Info("devtools client connected", "conn", string(id))
}

// OnClientDisconnected logs the departure. Session state is per-engine, not
// per-frontend, so nothing is torn down here.
func (a *Adapter) OnClientDisconnected(id inspectornet.ConnID) {
	a.log.Info("devtools client disconnected", "conn", string(id))
}

// OnClientMessage queues the protocol message for the consumer thread. The
// inspector session must never be touched from a handler goroutine.
func (a *Adapter) OnClientMessage(id inspectornet.ConnID, text string) {
	a.transport.QueueMessage(id, text)
}

// OnUpgraded nudges the frontend to enable the core domains so the Console,
// Sources and Profiler panels populate without manual interaction.
func (a *Adapter) OnUpgraded(id inspectornet.ConnID) {
	a.transport.SendToClient(id, `{"id":1,"method":"Runtime.enable"}`)
	a.transport.SendToClient(id, `{"id":2,"method":"Debugger.enable"}`)
	a.transport.SendToClient(id, `{"id":3,"method":"Profiler.enable"}`)
	a.log.Info("devtools domains enabled", "conn", string(id))
}

// HandleDiscoveryRequest renders the /json/list target document.
func (a *Adapter) HandleDiscoveryRequest() string {
	wsURL := fmt.Sprintf("ws://%s:%d/", a.cfg.Host, a.cfg.Port)
	targets := []target{{
		ID:                   a.sessionID,
		Type:                 "node",
		Title:                a.cfg.ContextName,
		Description:          a.cfg.ContextName,
		WebSocketDebuggerURL: wsURL,
		DevtoolsFrontendURL: fmt.Sprintf(
			"devtools://devtools/bundled/js_app.html?experiments=true&v8only=true&ws=%s:%d/",
			a.cfg.Host, a.cfg.Port),
		URL:        "file://",
		FaviconURL: "https://v8.dev/_img/v8.svg",
	}}

	body, err := json.Marshal(targets)
	if err != nil {
		a.log.Error("discovery document marshal failed", "error", err)
		return "[]"
	}
	return string(body)
}

// ProcessQueuedMessages drains the transport queue and dispatches each
// message into the inspector session. Messages drained while the session is
// detached or the engine is shutting down are logged and discarded.
func (a *Adapter) ProcessQueuedMessages() {
	messages := a.transport.DrainMessages()
	if len(messages) == 0 {
		return
	}

	a.mu.Lock()
	session := a.session
	a.mu.Unlock()

	ready := session != nil && (a.cfg.EngineReady == nil || a.cfg.EngineReady())
	for _, m := range messages {
		if !ready {
			a.log.Warn(inspectornet.MsgSessionUnavailable, "conn", string(m.Source))
			continue
		}
		session.DispatchProtocolMessage(m.Payload)
	}
}
