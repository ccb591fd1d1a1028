package websocket

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/daemon-engine/inspectornet"
	"github.com/daemon-engine/inspectornet/internal/protocol"
)

// Server is the transport core: accept loop, connection registry, inbound
// queue. It implements both inspectornet.Server (engine-facing lifecycle) and
// inspectornet.Transport (adapter-facing helpers).
type Server struct {
	cfg     *Config
	adapter inspectornet.Adapter
	log     *slog.Logger

	registry *registry
	queue    *inboundQueue

	mu sync.Mutex // guards ln across Start/Stop
	ln net.Listener

	running    atomic.Bool
	shouldStop atomic.Bool
	wg         sync.WaitGroup
}

// New wires a server to its protocol adapter. The adapter's Bind is called
// here, before any traffic can arrive.
func New(cfg *Config, adapter inspectornet.Adapter) *Server {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	log := slog.Default().With("component", "inspectornet")
	if !cfg.EnableLogging {
		log = slog.New(slog.DiscardHandler)
	}

	s := &Server{
		cfg:      cfg,
		adapter:  adapter,
		log:      log,
		registry: newRegistry(),
		queue:    newInboundQueue(defaultQueueCapacity, log),
	}
	adapter.Bind(s)
	return s
}

// Start binds the listening socket and launches the accept loop. It never
// blocks on socket I/O.
func (s *Server) Start() error {
	if !s.cfg.Enabled {
		return inspectornet.ErrServerDisabled
	}
	if err := s.cfg.Validate(); err != nil {
		return err
	}
	if !s.running.CompareAndSwap(false, true) {
		return inspectornet.ErrServerAlreadyRunning
	}

	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		s.running.Store(false)
		return fmt.Errorf("listen on %s: %w", addr, err)
	}

	s.mu.Lock()
	s.ln = ln
	s.mu.Unlock()
	s.shouldStop.Store(false)

	s.wg.Add(1)
	go s.acceptLoop(ln)

	s.log.Info("server started", "addr", addr)
	return nil
}

// Stop closes the listener and every client socket, then joins the accept
// goroutine and all handler goroutines. Idempotent.
func (s *Server) Stop() {
	if !s.running.CompareAndSwap(true, false) {
		return
	}

	s.log.Info("stopping server")
	s.shouldStop.Store(true)

	s.mu.Lock()
	if s.ln != nil {
		s.ln.Close()
		s.ln = nil
	}
	s.mu.Unlock()

	// Closing the peer sockets unblocks every pending read, which lets the
	// handler goroutines run to completion before Wait returns.
	s.registry.closeAll()
	s.wg.Wait()

	s.log.Info("server stopped")
}

// Update pumps one consumer tick: housekeeping plus the adapter's queued
// message processing. Must always be called from the same goroutine.
func (s *Server) Update() {
	if !s.running.Load() {
		return
	}
	s.adapter.ProcessQueuedMessages()
}

// IsRunning reports whether the accept loop is live.
func (s *Server) IsRunning() bool { return s.running.Load() }

// HasActiveConnections reports whether any connection finished the upgrade.
func (s *Server) HasActiveConnections() bool { return s.registry.hasActive() }

// Port returns the configured listening port.
func (s *Server) Port() int { return s.cfg.Port }

func (s *Server) acceptLoop(ln net.Listener) {
	defer s.wg.Done()
	s.log.Info("accept loop started")

	for !s.shouldStop.Load() {
		netConn, err := ln.Accept()
		if err != nil {
			if s.shouldStop.Load() || errors.Is(err, net.ErrClosed) {
				break
			}
			s.log.Error("accept failed", "error", err)
			continue
		}

		if s.registry.size() >= s.cfg.MaxConnections {
			s.log.Warn("connection limit reached, rejecting",
				"remote_addr", netConn.RemoteAddr().String(),
				"max_connections", s.cfg.MaxConnections)
			netConn.Close()
			continue
		}

		c := newConn(inspectornet.ConnID(uuid.NewString()), netConn, s)
		s.registry.register(c)
		c.log.Info("client connected")

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			c.run()
		}()
	}

	s.log.Info("accept loop stopped")
}

// notifyUpgraded invokes the optional post-handshake hook.
func (s *Server) notifyUpgraded(id inspectornet.ConnID) {
	if n, ok := s.adapter.(inspectornet.UpgradeNotifier); ok {
		n.OnUpgraded(id)
	}
}

//----------------------------------------------------------------------------
// inspectornet.Transport
//----------------------------------------------------------------------------

// SendToClient frame-encodes text and writes it synchronously on the calling
// goroutine. A failed write is logged and reported, never fatal: the
// connection is reaped on its next failed read.
func (s *Server) SendToClient(id inspectornet.ConnID, text string) bool {
	c := s.registry.get(id)
	if c == nil {
		s.log.Warn(inspectornet.MsgClientNotFound, "conn", string(id))
		return false
	}
	return c.sendText(text)
}

// Broadcast encodes once and writes the frame to every upgraded connection.
// One failing connection does not abort delivery to the others.
func (s *Server) Broadcast(text string) {
	if !s.running.Load() {
		return
	}
	frame := protocol.EncodeFrame([]byte(text), protocol.OpText)
	for _, c := range s.registry.activeConns() {
		c.writeRaw(frame)
	}
}

// IsConnected reports whether id names an upgraded, registered connection.
func (s *Server) IsConnected(id inspectornet.ConnID) bool {
	return s.registry.isActive(id)
}

// ActiveConnections snapshots the upgraded connection IDs.
func (s *Server) ActiveConnections() []inspectornet.ConnID {
	return s.registry.activeIDs()
}

// QueueMessage hands an inbound payload to the consumer thread without ever
// blocking the producer.
func (s *Server) QueueMessage(id inspectornet.ConnID, text string) {
	s.queue.push(inspectornet.Message{Source: id, Payload: text})
}

// DrainMessages takes the whole queue in one lock acquisition. Consumer
// thread only.
func (s *Server) DrainMessages() []inspectornet.Message {
	return s.queue.drain()
}
