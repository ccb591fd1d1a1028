package devtools

import (
	"encoding/json"
	"testing"

	"github.com/daemon-engine/inspectornet"
)

// fakeTransport implements inspectornet.Transport in memory so adapter logic
// can be exercised without sockets.
type fakeTransport struct {
	queued []inspectornet.Message
	sent   map[inspectornet.ConnID][]string
	bcast  []string
	active []inspectornet.ConnID
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{sent: make(map[inspectornet.ConnID][]string)}
}

func (f *fakeTransport) SendToClient(id inspectornet.ConnID, text string) bool {
	f.sent[id] = append(f.sent[id], text)
	return true
}

func (f *fakeTransport) Broadcast(text string) { f.bcast = append(f.bcast, text) }

func (f *fakeTransport) IsConnected(id inspectornet.ConnID) bool {
	for _, a := range f.active {
		if a == id {
			return true
		}
	}
	return false
}

func (f *fakeTransport) ActiveConnections() []inspectornet.ConnID { return f.active }

func (f *fakeTransport) QueueMessage(id inspectornet.ConnID, text string) {
	f.queued = append(f.queued, inspectornet.Message{Source: id, Payload: text})
}

func (f *fakeTransport) DrainMessages() []inspectornet.Message {
	out := f.queued
	f.queued = nil
	return out
}

// recordingSession captures dispatched protocol messages.
type recordingSession struct {
	dispatched []string
}

func (s *recordingSession) DispatchProtocolMessage(message string) {
	s.dispatched = append(s.dispatched, message)
}

func newAdapter(host string, port int) (*Adapter, *fakeTransport) {
	a := New(Config{Host: host, Port: port, ContextName: "Test Context"})
	ft := newFakeTransport()
	a.Bind(ft)
	return a, ft
}

func TestHandleDiscoveryRequest(t *testing.T) {
	t.Parallel()

	a, _ := newAdapter("127.0.0.1", 9229)

	var targets []map[string]string
	if err := json.Unmarshal([]byte(a.HandleDiscoveryRequest()), &targets); err != nil {
		t.Fatalf("discovery body is not JSON: %v", err)
	}
	if len(targets) != 1 {
		t.Fatalf("got %d targets, want 1", len(targets))
	}

	tgt := targets[0]
	if tgt["id"] == "" {
		t.Error("target id must not be empty")
	}
	if tgt["type"] != "node" {
		t.Errorf("type = %q, want node", tgt["type"])
	}
	if tgt["title"] != "Test Context" || tgt["description"] != "Test Context" {
		t.Error("context name not reflected in title/description")
	}
	if want := "ws://127.0.0.1:9229/"; tgt["webSocketDebuggerUrl"] != want {
		t.Errorf("webSocketDebuggerUrl = %q, want %q", tgt["webSocketDebuggerUrl"], want)
	}
	if tgt["devtoolsFrontendUrl"] == "" {
		t.Error("devtoolsFrontendUrl must not be empty")
	}
}

func TestDiscoveryIDIsStable(t *testing.T) {
	t.Parallel()

	a, _ := newAdapter("127.0.0.1", 9229)

	parse := func() string {
		var targets []map[string]string
		if err := json.Unmarshal([]byte(a.HandleDiscoveryRequest()), &targets); err != nil {
			t.Fatalf("bad discovery body: %v", err)
		}
		return targets[0]["id"]
	}
	if parse() != parse() {
		t.Error("target id changed between requests")
	}
}

func TestMessagesAreQueuedNotDispatched(t *testing.T) {
	t.Parallel()

	a, ft := newAdapter("127.0.0.1", 9229)
	session := &recordingSession{}
	a.SetSession(session)

	// Handler-goroutine path: must only queue.
	a.OnClientMessage("conn-1", `{"id":1,"method":"Runtime.evaluate"}`)
	if len(session.dispatched) != 0 {
		t.Fatal("message dispatched before the consumer tick")
	}
	if len(ft.queued) != 1 {
		t.Fatalf("queued %d messages, want 1", len(ft.queued))
	}

	// Consumer-tick path: drains and dispatches in order.
	a.OnClientMessage("conn-1", `{"id":2,"method":"Debugger.pause"}`)
	a.ProcessQueuedMessages()

	want := []string{
		`{"id":1,"method":"Runtime.evaluate"}`,
		`{"id":2,"method":"Debugger.pause"}`,
	}
	if len(session.dispatched) != len(want) {
		t.Fatalf("dispatched %d messages, want %d", len(session.dispatched), len(want))
	}
	for i, msg := range want {
		if session.dispatched[i] != msg {
			t.Errorf("dispatch %d = %q, want %q", i, session.dispatched[i], msg)
		}
	}
}

func TestDrainDropsWithoutSession(t *testing.T) {
	t.Parallel()

	a, ft := newAdapter("127.0.0.1", 9229)

	a.OnClientMessage("conn-1", `{"id":1,"method":"Runtime.enable"}`)
	a.ProcessQueuedMessages() // no session attached: drop, don't panic

	if len(ft.queued) != 0 {
		t.Error("queue should be drained even when messages are dropped")
	}
}

func TestDrainDropsWhenEngineNotReady(t *testing.T) {
	t.Parallel()

	ready := false
	a := New(Config{
		Host: "127.0.0.1", Port: 9229,
		ContextName: "Test",
		EngineReady: func() bool { return ready },
	})
	ft := newFakeTransport()
	a.Bind(ft)

	session := &recordingSession{}
	a.SetSession(session)

	a.OnClientMessage("conn-1", "msg-during-shutdown")
	a.ProcessQueuedMessages()
	if len(session.dispatched) != 0 {
		t.Error("message dispatched while engine not ready")
	}

	ready = true
	a.OnClientMessage("conn-1", "msg-after-init")
	a.ProcessQueuedMessages()
	if len(session.dispatched) != 1 || session.dispatched[0] != "msg-after-init" {
		t.Errorf("dispatched = %v, want just msg-after-init", session.dispatched)
	}
}

func TestOnUpgradedEnablesDomains(t *testing.T) {
	t.Parallel()

	a, ft := newAdapter("127.0.0.1", 9229)
	a.OnUpgraded("conn-7")

	sent := ft.sent["conn-7"]
	if len(sent) != 3 {
		t.Fatalf("sent %d messages, want 3", len(sent))
	}
	for i, method := range []string{"Runtime.enable", "Debugger.enable", "Profiler.enable"} {
		var msg struct {
			ID     int    `json:"id"`
			Method string `json:"method"`
		}
		if err := json.Unmarshal([]byte(sent[i]), &msg); err != nil {
			t.Fatalf("message %d is not JSON: %v", i, err)
		}
		if msg.Method != method {
			t.Errorf("message %d method = %q, want %q", i, msg.Method, method)
		}
		if msg.ID != i+1 {
			t.Errorf("message %d id = %d, want %d", i, msg.ID, i+1)
		}
	}
}

func TestSendToDevToolsBroadcasts(t *testing.T) {
	t.Parallel()

	a, ft := newAdapter("127.0.0.1", 9229)
	notification := `{"method":"Runtime.consoleAPICalled","params":{"type":"log"}}`
	a.SendToDevTools(notification)

	if len(ft.bcast) != 1 || ft.bcast[0] != notification {
		t.Errorf("broadcasts = %v, want the notification", ft.bcast)
	}
}
