package memory

import (
	"sync"

	"quizpulse/internal/app"
)

// RoomStore is the in-memory implementation of app.RoomRepository. Room
// codes stay claimed for as long as the room lives; Delete frees the code.
type RoomStore struct {
	mu    sync.RWMutex
	rooms map[string]*app.Room
}

func NewRoomStore() *RoomStore {
	return &RoomStore{rooms: make(map[string]*app.Room)}
}

func (s *RoomStore) Create(code string, room *app.Room) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.rooms[code]; taken {
		return false
	}
	s.rooms[code] = room
	return true
}

func (s *RoomStore) Get(code string) (*app.Room, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	room, ok := s.rooms[code]
	return room, ok
}

func (s *RoomStore) Delete(code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rooms, code)
}

func (s *RoomStore) Range(fn func(code string, room *app.Room) bool) {
	s.mu.RLock()
	snapshot := make(map[string]*app.Room, len(s.rooms))
	for code, room := range s.rooms {
		snapshot[code] = room
	}
	s.mu.RUnlock()

	for code, room := range snapshot {
		if !fn(code, room) {
			return
		}
	}
}
