// Package inspectornet provides an embeddable WebSocket/HTTP debug-protocol server
// for engines that host a single-threaded script runtime.
//
// The server speaks raw TCP: it discriminates plain HTTP requests (used for the
// Chrome DevTools discovery endpoint) from RFC 6455 WebSocket upgrades on the same
// listening port, implements the handshake and frame codec from scratch, and
// bridges concurrently running connection goroutines to one serialized consumer.
//
// # Architecture
//
// Each accepted socket is owned by exactly one handler goroutine. The handler
// first accumulates an HTTP header block; a request without an Upgrade header is
// answered (discovery JSON or 404) and closed, while an upgrade request switches
// the connection into the binary frame loop. Decoded text payloads are handed to
// the protocol adapter, which may push them onto a mutex-protected FIFO queue.
// The queue is drained exactly once per consumer tick, so the downstream resource
// (for example a V8 inspector session) is only ever touched from one logical
// thread. That single invariant is the reason this package exists.
//
// # Quick Start
//
//	import (
//	    "github.com/daemon-engine/inspectornet/devtools"
//	    "github.com/daemon-engine/inspectornet/ws"
//	)
//
//	adapter := devtools.New(devtools.Config{ContextName: "Game JavaScript Context"})
//	server := ws.New(ws.NewConfig("127.0.0.1", 9229), adapter)
//
//	if err := server.Start(); err != nil {
//	    log.Fatal(err)
//	}
//	defer server.Stop()
//
//	// From the engine's main loop, once per frame:
//	server.Update()
//
// Point Chrome at http://127.0.0.1:9229/json/list to discover the target, then
// attach DevTools to the advertised webSocketDebuggerUrl.
//
// # Protocols
//
// The transport is protocol-agnostic. Concrete protocols implement the Adapter
// interface; this module ships two:
//
//   - devtools: the Chrome DevTools Protocol inspector channel, forwarding
//     messages to a v8-inspector-style session on the consumer thread.
//   - jsonrpc: a minimal JSON-RPC 2.0 endpoint with a method registry, mainly
//     used for integration testing and simple tooling.
//
// # Concurrency model
//
//   - one accept goroutine per server, one handler goroutine per connection
//   - all socket reads and writes are blocking and happen on the owning goroutine
//   - Start, Stop and Update never block on socket I/O
//   - messages from one connection are processed in receive order; the queue is
//     globally FIFO across connections
//   - Stop closes every socket to unblock pending reads and joins all goroutines
//     before returning
//
// # Limits
//
//   - No continuation-frame reassembly: every received frame is treated as a
//     self-contained message. Fragmented messages from exotic clients are not
//     supported.
//   - No TLS, no WebSocket extensions, no subprotocol negotiation. The server is
//     meant for loopback debugging channels, not the open internet.
//   - Goroutine-per-connection scheduling; fine for a handful of inspector
//     clients, wrong for thousands of sockets.
package inspectornet
