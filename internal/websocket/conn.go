package websocket

import (
	"bytes"
	"log/slog"
	"net"
	"sync"

	"golang.org/x/time/rate"

	"github.com/daemon-engine/inspectornet"
	"github.com/daemon-engine/inspectornet/internal/protocol"
)

// maxHeaderBytes bounds the pre-upgrade HTTP header block. Anything bigger is
// not a handshake a DevTools frontend would send.
const maxHeaderBytes = 8 * 1024

// conn is one accepted socket. The handler goroutine created in the accept
// loop owns all reads; writes are serialized by writeMu because the consumer
// thread and other handler goroutines may send concurrently.
type conn struct {
	id      inspectornet.ConnID
	netConn net.Conn
	srv     *Server
	log     *slog.Logger
	limiter *rate.Limiter

	// upgraded is owned by the registry mutex, not by the handler goroutine.
	upgraded bool

	writeMu sync.Mutex
}

func newConn(id inspectornet.ConnID, netConn net.Conn, srv *Server) *conn {
	c := &conn{
		id:      id,
		netConn: netConn,
		srv:     srv,
		log:     srv.log.With("conn", string(id), "remote_addr", netConn.RemoteAddr().String()),
	}
	if rl := srv.cfg.RateLimit; rl != nil && rl.Enabled {
		c.limiter = rate.NewLimiter(rl.MessagesPerSecond, rl.Burst)
	}
	return c
}

// run is the handler loop: HTTP first, then either discovery-and-close or the
// WebSocket frame loop. Runs until the peer disconnects, a protocol error
// occurs, or the server stops.
func (c *conn) run() {
	defer c.teardown()

	c.srv.adapter.OnClientConnected(c.id)

	var (
		buf      []byte
		upgraded bool
	)
	readBuf := make([]byte, 4096)

	for !c.srv.shouldStop.Load() {
		n, err := c.netConn.Read(readBuf)
		if err != nil {
			// Peer closed, connection reset, or our own socket closed during
			// shutdown. All of them end this connection only.
			return
		}
		buf = append(buf, readBuf[:n]...)

		if !upgraded {
			headerEnd := bytes.Index(buf, []byte("\r\n\r\n"))
			if headerEnd < 0 {
				if len(buf) > maxHeaderBytes {
					c.log.Warn("oversized http header block, closing")
					return
				}
				continue
			}

			header := string(buf[:headerEnd+4])
			buf = buf[headerEnd+4:]

			if !protocol.IsUpgradeRequest(header) {
				c.serveHTTP(header)
				return
			}
			if !c.upgrade(header) {
				return
			}
			upgraded = true
			// The handshake bytes may have arrived glued to the first frame;
			// fall through and decode whatever is already buffered.
		}

		rest, ok := c.processFrames(buf)
		if !ok {
			return
		}
		buf = rest
	}
}

// upgrade validates the handshake, answers 101 and transitions the connection
// to the active list. A missing Sec-WebSocket-Key closes the socket without a
// response.
func (c *conn) upgrade(header string) bool {
	key := protocol.ExtractWebSocketKey(header)
	if key == "" {
		c.log.Error(inspectornet.MsgMissingWebSocketKey)
		return false
	}

	if !c.writeRaw([]byte(protocol.UpgradeResponse(protocol.AcceptKey(key)))) {
		return false
	}
	if !c.srv.registry.markUpgraded(c.id) {
		return false
	}

	c.log.Info("websocket connection established")
	c.srv.notifyUpgraded(c.id)
	return true
}

// serveHTTP answers a plain HTTP request (discovery endpoint or 404) and lets
// the caller close the connection.
func (c *conn) serveHTTP(header string) {
	line, ok := protocol.ParseRequestLine(header)
	if ok && line.Method == "GET" && protocol.IsDiscoveryPath(line.Path) {
		body := c.srv.adapter.HandleDiscoveryRequest()
		c.writeRaw([]byte(protocol.OKResponse(body, "application/json")))
		c.log.Info("discovery request served", "path", line.Path)
		return
	}

	c.writeRaw([]byte(protocol.NotFoundResponse()))
	if ok {
		c.log.Info("http request rejected", "method", line.Method, "path", line.Path)
	} else {
		c.log.Warn("malformed http request rejected")
	}
}

// processFrames decodes every complete frame in buf and returns the remainder.
// ok is false when the connection must close.
func (c *conn) processFrames(buf []byte) (rest []byte, ok bool) {
	for {
		frame, consumed, err := protocol.DecodeFrame(buf)
		if err == protocol.ErrIncompleteFrame {
			return buf, true
		}
		if err != nil {
			c.log.Warn(inspectornet.MsgInvalidFrame, "error", err)
			return nil, false
		}
		buf = buf[consumed:]

		switch frame.Opcode {
		case protocol.OpClose:
			c.writeControl(protocol.OpClose, nil)
			return nil, false
		case protocol.OpPing:
			c.writeControl(protocol.OpPong, frame.Payload)
		case protocol.OpPong:
			// Keepalive answer, nothing to do.
		default:
			if !c.handleMessage(frame) {
				return nil, false
			}
		}
	}
}

// handleMessage applies rate limiting and hands the payload to the adapter.
func (c *conn) handleMessage(frame protocol.Frame) bool {
	if len(frame.Payload) == 0 {
		return true
	}
	if c.limiter != nil && !c.limiter.Allow() {
		c.log.Warn("rate limit exceeded, closing connection")
		c.writeControl(protocol.OpClose, closePayload(1008, "rate limit exceeded"))
		return false
	}
	c.srv.adapter.OnClientMessage(c.id, string(frame.Payload))
	return true
}

func (c *conn) teardown() {
	// During shutdown the registry is already being cleared and the adapter's
	// downstream resources may be gone; skip the callback, Stop handles the
	// rest.
	if !c.srv.shouldStop.Load() {
		c.srv.adapter.OnClientDisconnected(c.id)
	}
	c.netConn.Close()
	c.srv.registry.unregister(c.id)
	c.log.Info("connection closed")
}

// sendText frame-encodes and writes a text message on the calling goroutine.
func (c *conn) sendText(text string) bool {
	return c.writeRaw(protocol.EncodeFrame([]byte(text), protocol.OpText))
}

func (c *conn) writeControl(op protocol.Opcode, payload []byte) bool {
	return c.writeRaw(protocol.EncodeFrame(payload, op))
}

func (c *conn) writeRaw(data []byte) bool {
	c.writeMu.Lock()
	_, err := c.netConn.Write(data)
	c.writeMu.Unlock()
	if err != nil {
		c.log.Warn("write failed", "error", err)
		return false
	}
	return true
}

// closePayload builds a CLOSE frame body: 2-byte big-endian status code plus
// an optional UTF-8 reason.
func closePayload(code uint16, reason string) []byte {
	p := make([]byte, 2+len(reason))
	p[0] = byte(code >> 8)
	p[1] = byte(code)
	copy(p[2:], reason)
	return p
}
