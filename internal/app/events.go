package app

import "quizpulse/internal/domain"

// Inbound command types.
const (
	CmdStartGame      = "start_game"
	CmdSubmitAnswer   = "submit_answer"
	CmdSubmitComplete = "submit_complete"
	CmdForceSubmit    = "force_submit"
	CmdEndGame        = "end_game"
)

// Outbound event types.
const (
	EventStateSync         = "state_sync"
	EventParticipantUpdate = "participant_update"
	EventGameStart         = "game_start"
	EventGameOver          = "game_over"
	EventError             = "error"
)

// Command is a decoded client instruction. QuestionID and OptionIdx are only
// meaningful for submit_answer.
type Command struct {
	Type       string
	QuestionID string
	OptionIdx  int
}

// Event is one outbound frame produced by the state machine. An empty To
// means broadcast to every connection in the room; otherwise delivery is
// narrowed to that participant's connection.
type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
	To      string `json:"-"`
}

// StateSyncPayload is the personalized snapshot sent to a (re)connecting
// participant. Questions and MyAnswers are present from active onward,
// Leaderboard from graded onward. MyAnswers only ever holds the recipient's
// own submissions.
type StateSyncPayload struct {
	Status       domain.RoomStatus          `json:"status"`
	Participants []domain.RosterEntry       `json:"participants"`
	Questions    []domain.SanitizedQuestion `json:"questions,omitempty"`
	MyAnswers    map[string]int             `json:"my_answers,omitempty"`
	Leaderboard  []domain.LeaderboardEntry  `json:"leaderboard,omitempty"`
}

// GameStartPayload carries the sanitized question set distributed on start.
type GameStartPayload struct {
	Questions []domain.SanitizedQuestion `json:"questions"`
}

// GameOverPayload carries the final leaderboard. Leaderboard is empty when a
// host ends the game without grading.
type GameOverPayload struct {
	Leaderboard []domain.LeaderboardEntry `json:"leaderboard"`
}

// ErrorPayload is surfaced only to the connection whose command failed.
type ErrorPayload struct {
	Message string `json:"message"`
}
