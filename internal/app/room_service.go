package app

import (
	"context"
	"crypto/rand"
	"fmt"
	"time"

	"quizpulse/internal/domain"
)

// roomCodeLength is the number of digits in a join code.
const roomCodeLength = 6

// RoomRepository abstracts how live rooms are stored (in-memory, Redis-backed).
type RoomRepository interface {
	// Create stores the room under code unless the code is already taken.
	Create(code string, room *Room) bool
	Get(code string) (*Room, bool)
	Delete(code string)
	// Range iterates rooms until fn returns false.
	Range(fn func(code string, room *Room) bool)
}

// QuizRepository loads quiz content (from cache/backing store).
type QuizRepository interface {
	GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
}

// RoomService owns the session lifecycle: minting rooms, admitting
// connections, routing commands through the state machine, and fanning the
// resulting events out. It is the only writer of room state.
type RoomService struct {
	rooms    RoomRepository
	quizzes  QuizRepository
	registry *Registry
	router   *Router
}

func NewRoomService(rooms RoomRepository, quizzes QuizRepository) *RoomService {
	registry := NewRegistry()
	return &RoomService{
		rooms:    rooms,
		quizzes:  quizzes,
		registry: registry,
		router:   NewRouter(registry),
	}
}

// CreateRoom resolves the quiz and mints a unique room code bound to it.
// The room starts in the lobby state with no participants.
func (s *RoomService) CreateRoom(ctx context.Context, quizID string) (string, error) {
	quiz, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return "", fmt.Errorf("create room: %w", err)
	}
	for {
		code, err := newRoomCode()
		if err != nil {
			return "", fmt.Errorf("create room: %w", err)
		}
		// Collision means the code is in use by a live room; try another.
		if s.rooms.Create(code, NewRoom(code, quiz)) {
			return code, nil
		}
	}
}

// Connect admits a connection into a room. The room must already exist; this
// check happens before any state mutation so a bad code never produces a
// roster broadcast. On success the participant record is created or
// refreshed, the connection receives its personalized state_sync, and the
// updated roster is broadcast.
func (s *RoomService) Connect(code, participantID, nickname string, conn Conn) error {
	room, ok := s.rooms.Get(code)
	if !ok {
		return domain.ErrRoomNotFound
	}
	s.registry.Register(code, participantID, conn)
	s.router.Dispatch(code, room.Join(participantID, nickname))
	return nil
}

// Disconnect handles connection teardown. The participant's score and
// answers are retained; only the live connection is dropped, and observers
// see a roster refresh. Empty rooms are kept until the reaper (if
// configured) evicts them.
func (s *RoomService) Disconnect(code, participantID string, conn Conn) {
	s.registry.Unregister(code, participantID, conn)
	room, ok := s.rooms.Get(code)
	if !ok {
		return
	}
	s.router.Dispatch(code, []Event{room.RosterEvent()})
}

// HandleCommand runs one client command through the room's state machine and
// dispatches whatever events it produced. The returned error, if any, is for
// the issuing connection only.
func (s *RoomService) HandleCommand(code, participantID string, cmd Command) error {
	room, ok := s.rooms.Get(code)
	if !ok {
		return domain.ErrRoomNotFound
	}
	events, err := room.Apply(participantID, cmd)
	s.router.Dispatch(code, events)
	return err
}

// ConnectionCount reports the live connections for a room.
func (s *RoomService) ConnectionCount(code string) int {
	return s.registry.Count(code)
}

// ReapIdle deletes rooms with no live connections that have been idle longer
// than ttl, and returns how many were dropped. A ttl of zero disables
// reaping.
func (s *RoomService) ReapIdle(ttl time.Duration) int {
	if ttl <= 0 {
		return 0
	}
	cutoff := time.Now().Add(-ttl)
	var stale []string
	s.rooms.Range(func(code string, room *Room) bool {
		if s.registry.Count(code) == 0 && room.LastActive().Before(cutoff) {
			stale = append(stale, code)
		}
		return true
	})
	for _, code := range stale {
		s.rooms.Delete(code)
	}
	return len(stale)
}

// newRoomCode mints a 6-digit join code. Uniqueness is enforced by the
// repository's Create, not here.
func newRoomCode() (string, error) {
	buf := make([]byte, roomCodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	code := make([]byte, roomCodeLength)
	for i, b := range buf {
		code[i] = '0' + b%10
	}
	return string(code), nil
}
