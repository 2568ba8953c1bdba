package domain

import "time"

// RoomStatus is the lifecycle state of a live session. Transitions only ever
// move forward: lobby -> active -> graded -> finished.
type RoomStatus string

const (
	StatusLobby    RoomStatus = "lobby"
	StatusActive   RoomStatus = "active"
	StatusGraded   RoomStatus = "graded"
	StatusFinished RoomStatus = "finished"
)

// Option is a possible answer for a question. Correct is server-private and
// must never reach a participant-facing payload before grading.
type Option struct {
	Text    string `json:"text"`
	Correct bool   `json:"correct"`
}

// Question is one multiple-choice question. Questions are identified by their
// 0-based position in the quiz, so they carry no ID of their own.
type Question struct {
	Text       string   `json:"text"`
	Options    []Option `json:"options"`
	Points     int      `json:"points"`    // defaults to 100 if zero
	TimeLimit  int      `json:"timeLimit"` // seconds, informational only
	Difficulty string   `json:"difficulty,omitempty"`
	Category   string   `json:"category,omitempty"`
}

// Quiz is an ordered sequence of questions with the answer key embedded.
type Quiz struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Topic     string     `json:"topic,omitempty"`
	Questions []Question `json:"questions"`
}

// SanitizedOption is the participant-safe view of an option.
type SanitizedOption struct {
	Text string `json:"text"`
}

// SanitizedQuestion is the participant-safe view of a question. ID is the
// question's 0-based position rendered as a string.
type SanitizedQuestion struct {
	ID        string            `json:"id"`
	Text      string            `json:"text"`
	Options   []SanitizedOption `json:"options"`
	TimeLimit int               `json:"timeLimit"`
}

// Participant is one identity within a room. The record survives disconnects;
// only the live connection comes and goes.
type Participant struct {
	ID        string
	Nickname  string
	Score     int
	Answers   map[string]int // question position (as string) -> chosen option index
	Completed bool
	JoinedAt  time.Time
}

// RosterEntry is the broadcast-friendly view of a participant.
type RosterEntry struct {
	ID        string `json:"id"`
	Nickname  string `json:"nickname"`
	Score     int    `json:"score"`
	Completed bool   `json:"completed"`
}

// LeaderboardEntry is one row of the graded leaderboard.
type LeaderboardEntry struct {
	ID       string `json:"id"`
	Nickname string `json:"nickname"`
	Score    int    `json:"score"`
}
