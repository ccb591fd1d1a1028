package inspectornet

// ConnID identifies one accepted connection for the lifetime of its handler
// goroutine. IDs are opaque UUID strings; there is no "invalid" sentinel value,
// an unknown ID simply fails the IsConnected/SendToClient checks.
type ConnID string

// Message is one inbound text payload waiting for the consumer thread.
// Ownership transfers to the adapter when the queue is drained.
type Message struct {
	// Source is the connection the payload arrived on.
	Source ConnID
	// Payload is the decoded (unmasked) text frame content.
	Payload string
}

// Server is the embeddable WebSocket/HTTP protocol server.
//
// Start, Stop and Update are safe to call from the engine's main thread and
// never block on socket I/O. Update (and therefore the adapter's
// ProcessQueuedMessages) must always be called from the same goroutine, the
// consumer thread, once per tick.
type Server interface {
	// Start binds the listening socket and launches the accept loop.
	//
	// Returns ErrServerDisabled when the configuration disables the feature,
	// ErrServerAlreadyRunning on a double start, or the bind/listen error.
	// A Start failure disables the server but must not be treated as fatal to
	// the host process.
	Start() error

	// Stop closes the listening socket and every client socket, then joins the
	// accept goroutine and all handler goroutines before returning. Safe to
	// call more than once.
	Stop()

	// Update pumps server housekeeping and drives the adapter's
	// ProcessQueuedMessages. Call once per tick from the consumer thread.
	Update()

	// Broadcast frame-encodes text and writes it to every upgraded connection.
	// A failed write to one connection does not abort delivery to the others.
	Broadcast(text string)

	// IsRunning reports whether the accept loop is live.
	IsRunning() bool

	// HasActiveConnections reports whether at least one connection has
	// completed the WebSocket upgrade.
	HasActiveConnections() bool

	// Port returns the configured listening port.
	Port() int
}

// Transport is the set of helper operations the server exposes to a protocol
// adapter. All methods are safe for concurrent use from handler goroutines and
// the consumer thread.
type Transport interface {
	// SendToClient frame-encodes text and writes it synchronously on the
	// calling goroutine. Returns false (logged, not fatal) if the connection is
	// unknown or the write fails; the connection is reaped on its next read.
	SendToClient(id ConnID, text string) bool

	// Broadcast sends text to every upgraded connection.
	Broadcast(text string)

	// IsConnected reports whether id is registered and upgraded.
	IsConnected(id ConnID) bool

	// ActiveConnections returns a snapshot of the upgraded connection IDs.
	ActiveConnections() []ConnID

	// QueueMessage hands an inbound payload to the consumer thread. When the
	// queue is full the newest message is dropped and a warning is logged; the
	// producer never blocks.
	QueueMessage(id ConnID, text string)

	// DrainMessages atomically takes every queued message, preserving global
	// FIFO order. Only the consumer thread may call this.
	DrainMessages() []Message
}

// Adapter is one concrete protocol speaking over the shared transport.
//
// OnClientConnected, OnClientDisconnected and OnClientMessage run on handler
// goroutines; ProcessQueuedMessages runs on the consumer thread. An adapter
// that drives a single-threaded resource must route messages through
// Transport.QueueMessage and only touch the resource from
// ProcessQueuedMessages.
type Adapter interface {
	// Bind hands the adapter its transport. Called once, before Start.
	Bind(t Transport)

	// OnClientConnected fires after accept, before any protocol traffic.
	OnClientConnected(id ConnID)

	// OnClientDisconnected fires when the connection is torn down, whichever
	// side initiated it.
	OnClientDisconnected(id ConnID)

	// OnClientMessage receives each decoded text payload on the connection's
	// handler goroutine.
	OnClientMessage(id ConnID, text string)

	// HandleDiscoveryRequest returns the JSON body served on the HTTP
	// discovery endpoint (GET /json or /json/list).
	HandleDiscoveryRequest() string

	// ProcessQueuedMessages drains and dispatches queued messages. Called once
	// per consumer tick by Server.Update.
	ProcessQueuedMessages()
}

// UpgradeNotifier is an optional hook an Adapter may implement to run
// protocol-specific setup right after a successful WebSocket handshake, still
// on the connection's handler goroutine.
type UpgradeNotifier interface {
	OnUpgraded(id ConnID)
}
