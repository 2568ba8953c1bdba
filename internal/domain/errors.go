package domain

import "errors"

var (
	// ErrRoomNotFound is returned when a room code does not resolve to live state.
	ErrRoomNotFound = errors.New("room not found")
	// ErrRoomClosed is returned for any command issued after the room finished.
	ErrRoomClosed = errors.New("room closed")
	// ErrQuizNotFound indicates the quiz content could not be loaded.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrInvalidCommand is returned when a command is issued in the wrong lifecycle state.
	ErrInvalidCommand = errors.New("command not valid in current state")
	// ErrParticipantNotFound is returned when a user tries to act before joining.
	ErrParticipantNotFound = errors.New("participant not found in room")
)
