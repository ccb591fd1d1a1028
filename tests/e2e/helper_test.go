package e2e_test

import (
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/daemon-engine/inspectornet"
)

// Helper function to create a WebSocket dialer
func newDialer() *websocket.Dialer {
	return &websocket.Dialer{
		HandshakeTimeout: 5 * time.Second,
	}
}

// freePort grabs an ephemeral port from the kernel so parallel tests never
// collide.
func freePort(t *testing.T) int {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to reserve port: %v", err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	ln.Close()
	return port
}

// startPump drives the consumer tick the way an embedding engine's main loop
// would, until the test finishes.
func startPump(t *testing.T, server inspectornet.Server) {
	t.Helper()

	done := make(chan struct{})
	t.Cleanup(func() { close(done) })

	go func() {
		ticker := time.NewTicker(5 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				server.Update()
			}
		}
	}()
}

func wsURL(port int) string {
	return fmt.Sprintf("ws://127.0.0.1:%d/", port)
}
