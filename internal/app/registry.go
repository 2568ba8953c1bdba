package app

import "sync"

// Conn is the transport handle the core needs: a best-effort, non-blocking
// send. Implementations must not block the caller on slow sockets.
type Conn interface {
	Send(e Event) error
}

// ConnEntry pairs a live connection with the participant it belongs to.
type ConnEntry struct {
	ParticipantID string
	Conn          Conn
}

// Registry tracks live connections per room, keyed by participant identity.
// Pure bookkeeping; it knows nothing about game state. A participant has at
// most one connection at a time: registering again replaces the previous
// entry, which is how reconnection works.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]map[string]Conn
}

func NewRegistry() *Registry {
	return &Registry{rooms: make(map[string]map[string]Conn)}
}

// Register adds or replaces the connection for (room, participant) and
// returns the replaced connection, if any.
func (r *Registry) Register(roomCode, participantID string, conn Conn) Conn {
	r.mu.Lock()
	defer r.mu.Unlock()
	conns, ok := r.rooms[roomCode]
	if !ok {
		conns = make(map[string]Conn)
		r.rooms[roomCode] = conns
	}
	prev := conns[participantID]
	conns[participantID] = conn
	return prev
}

// Unregister removes the connection for (room, participant), but only if the
// registered connection is the one being removed; a teardown racing a
// reconnect must not evict the fresh connection. Returns true when the room
// has no connections left.
func (r *Registry) Unregister(roomCode, participantID string, conn Conn) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	conns, ok := r.rooms[roomCode]
	if !ok {
		return false
	}
	if current, ok := conns[participantID]; ok && current == conn {
		delete(conns, participantID)
	}
	if len(conns) == 0 {
		delete(r.rooms, roomCode)
		return true
	}
	return false
}

// Connections returns a snapshot of the room's live connections.
func (r *Registry) Connections(roomCode string) []ConnEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	conns := r.rooms[roomCode]
	entries := make([]ConnEntry, 0, len(conns))
	for id, conn := range conns {
		entries = append(entries, ConnEntry{ParticipantID: id, Conn: conn})
	}
	return entries
}

// Get returns the live connection for one participant.
func (r *Registry) Get(roomCode, participantID string) (Conn, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	conn, ok := r.rooms[roomCode][participantID]
	return conn, ok
}

// Count reports the number of live connections in a room.
func (r *Registry) Count(roomCode string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms[roomCode])
}
