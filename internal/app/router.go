package app

import "log"

// Router fans events out to the connections registered for a room. It only
// ever consumes event lists produced by the state machine and performs I/O;
// it never decides game logic. Delivery is best-effort: a failing send to
// one connection is logged and never aborts delivery to the rest, and the
// state change that produced the event stands regardless.
type Router struct {
	registry *Registry
}

func NewRouter(registry *Registry) *Router {
	return &Router{registry: registry}
}

// Dispatch delivers each event in order: addressed events go to that
// participant's connection only, the rest are broadcast to the whole room.
func (rt *Router) Dispatch(roomCode string, events []Event) {
	for _, event := range events {
		if event.To != "" {
			conn, ok := rt.registry.Get(roomCode, event.To)
			if !ok {
				continue
			}
			if err := conn.Send(event); err != nil {
				log.Printf("room %s: send %s to %s failed: %v", roomCode, event.Type, event.To, err)
			}
			continue
		}
		for _, entry := range rt.registry.Connections(roomCode) {
			if err := entry.Conn.Send(event); err != nil {
				log.Printf("room %s: broadcast %s to %s failed: %v", roomCode, event.Type, entry.ParticipantID, err)
			}
		}
	}
}
