package websocket

import (
	"sync"

	"github.com/daemon-engine/inspectornet"
)

// registry tracks every live connection plus the ordered list of upgraded
// handles used for broadcast. One mutex serializes all mutation; readers take
// snapshot copies so no caller ever performs socket I/O under the lock.
type registry struct {
	mu     sync.Mutex
	conns  map[inspectornet.ConnID]*conn
	active []inspectornet.ConnID
}

func newRegistry() *registry {
	return &registry{conns: make(map[inspectornet.ConnID]*conn)}
}

func (r *registry) register(c *conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[c.id] = c
}

// unregister removes the connection from both the map and the active list.
// Unknown IDs are a no-op: shutdown and a concurrent disconnect can race here.
func (r *registry) unregister(id inspectornet.ConnID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.conns, id)
	for i, a := range r.active {
		if a == id {
			r.active = append(r.active[:i], r.active[i+1:]...)
			break
		}
	}
}

// markUpgraded flips the connection to the post-handshake state and adds it to
// the broadcast list. Returns false for an unknown ID.
func (r *registry) markUpgraded(id inspectornet.ConnID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.conns[id]
	if !ok {
		return false
	}
	c.upgraded = true
	r.active = append(r.active, id)
	return true
}

func (r *registry) isActive(id inspectornet.ConnID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.conns[id]
	return ok && c.upgraded
}

// get returns the connection only when it has completed the upgrade.
func (r *registry) get(id inspectornet.ConnID) *conn {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.conns[id]
	if !ok || !c.upgraded {
		return nil
	}
	return c
}

// activeConns snapshots the upgraded connections in registration order.
func (r *registry) activeConns() []*conn {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*conn, 0, len(r.active))
	for _, id := range r.active {
		if c, ok := r.conns[id]; ok {
			out = append(out, c)
		}
	}
	return out
}

// activeIDs snapshots the upgraded connection IDs.
func (r *registry) activeIDs() []inspectornet.ConnID {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]inspectornet.ConnID, len(r.active))
	copy(out, r.active)
	return out
}

func (r *registry) size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.conns)
}

func (r *registry) hasActive() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.active) > 0
}

// closeAll closes every socket to unblock pending reads, then clears both
// collections. Sockets are closed outside the lock.
func (r *registry) closeAll() {
	r.mu.Lock()
	conns := make([]*conn, 0, len(r.conns))
	for _, c := range r.conns {
		conns = append(conns, c)
	}
	r.conns = make(map[inspectornet.ConnID]*conn)
	r.active = nil
	r.mu.Unlock()

	for _, c := range conns {
		c.netConn.Close()
	}
}
