package app

import (
	"strconv"
	"sync"
	"time"

	"quizpulse/internal/domain"
)

// Room is the authoritative in-memory state of one live session. All mutation
// happens under mu in short critical sections that never perform I/O; each
// mutating call returns the ordered list of outbound events it produced, and
// the caller performs all sends after the lock is released.
type Room struct {
	code string
	quiz domain.Quiz
	now  func() time.Time

	mu           sync.Mutex
	status       domain.RoomStatus
	participants map[string]*domain.Participant
	order        []string // participant IDs in join order
	leaderboard  []domain.LeaderboardEntry
	createdAt    time.Time
	lastActive   time.Time
}

// NewRoom initializes a lobby-state room bound to the given quiz.
func NewRoom(code string, quiz domain.Quiz) *Room {
	return NewRoomWithClock(code, quiz, time.Now)
}

// NewRoomWithClock allows deterministic timestamps in tests.
func NewRoomWithClock(code string, quiz domain.Quiz, now func() time.Time) *Room {
	t := now()
	return &Room{
		code:         code,
		quiz:         quiz,
		now:          now,
		status:       domain.StatusLobby,
		participants: make(map[string]*domain.Participant),
		createdAt:    t,
		lastActive:   t,
	}
}

// Code returns the room's join code.
func (r *Room) Code() string {
	return r.code
}

// Status returns the current lifecycle state.
func (r *Room) Status() domain.RoomStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

// LastActive reports when the room last saw a join, command, or disconnect.
func (r *Room) LastActive() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastActive
}

// Touch records activity without mutating game state.
func (r *Room) Touch() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastActive = r.now()
}

// Join creates the participant on first connection or refreshes it on
// reconnect; the same identity string always maps to the same record, so a
// reconnecting participant keeps its score and answers. The returned events
// are a personalized state_sync addressed to the joining participant followed
// by a roster broadcast.
func (r *Room) Join(participantID, nickname string) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastActive = r.now()

	if p, ok := r.participants[participantID]; ok {
		if nickname != "" {
			p.Nickname = nickname
		}
	} else {
		if nickname == "" {
			nickname = participantID
		}
		r.participants[participantID] = &domain.Participant{
			ID:       participantID,
			Nickname: nickname,
			Answers:  make(map[string]int),
			JoinedAt: r.now(),
		}
		r.order = append(r.order, participantID)
	}

	return []Event{
		r.stateSyncLocked(participantID),
		{Type: EventParticipantUpdate, Payload: r.rosterLocked()},
	}
}

// RosterEvent snapshots the roster for broadcast, used when a connection
// drops. The participant record itself is retained.
func (r *Room) RosterEvent() Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastActive = r.now()
	return Event{Type: EventParticipantUpdate, Payload: r.rosterLocked()}
}

// Apply validates a command against the current state and applies it,
// returning the outbound events. Validation failures on participant-level
// commands (bad question ID, bad option index, wrong state) are silent
// no-ops; host-level commands in the wrong state return an error for the
// caller to surface to the offending connection only.
func (r *Room) Apply(participantID string, cmd Command) ([]Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.status == domain.StatusFinished {
		return nil, domain.ErrRoomClosed
	}
	r.lastActive = r.now()

	switch cmd.Type {
	case CmdStartGame:
		return r.startGameLocked()
	case CmdSubmitAnswer:
		return r.submitAnswerLocked(participantID, cmd.QuestionID, cmd.OptionIdx)
	case CmdSubmitComplete:
		return r.submitCompleteLocked(participantID)
	case CmdForceSubmit:
		return r.forceSubmitLocked()
	case CmdEndGame:
		return r.endGameLocked()
	default:
		return nil, domain.ErrInvalidCommand
	}
}

func (r *Room) startGameLocked() ([]Event, error) {
	if r.status != domain.StatusLobby {
		return nil, domain.ErrInvalidCommand
	}
	r.status = domain.StatusActive
	return []Event{{
		Type:    EventGameStart,
		Payload: GameStartPayload{Questions: SanitizeQuestions(r.quiz.Questions)},
	}}, nil
}

func (r *Room) submitAnswerLocked(participantID, questionID string, optionIdx int) ([]Event, error) {
	if r.status != domain.StatusActive {
		return nil, nil
	}
	p, ok := r.participants[participantID]
	if !ok {
		return nil, domain.ErrParticipantNotFound
	}
	idx, err := strconv.Atoi(questionID)
	if err != nil || idx < 0 || idx >= len(r.quiz.Questions) {
		return nil, nil
	}
	if optionIdx < 0 || optionIdx >= len(r.quiz.Questions[idx].Options) {
		return nil, nil
	}
	// Resubmission before grading overwrites the prior answer.
	p.Answers[questionID] = optionIdx
	return []Event{{Type: EventParticipantUpdate, Payload: r.rosterLocked()}}, nil
}

func (r *Room) submitCompleteLocked(participantID string) ([]Event, error) {
	if r.status != domain.StatusActive {
		return nil, nil
	}
	p, ok := r.participants[participantID]
	if !ok {
		return nil, domain.ErrParticipantNotFound
	}
	p.Completed = true
	return []Event{{Type: EventParticipantUpdate, Payload: r.rosterLocked()}}, nil
}

func (r *Room) forceSubmitLocked() ([]Event, error) {
	if r.status != domain.StatusActive {
		return nil, domain.ErrInvalidCommand
	}
	for _, id := range r.order {
		p := r.participants[id]
		p.Score = scoreAnswers(r.quiz.Questions, p.Answers)
		p.Completed = true
	}
	r.leaderboard = buildLeaderboard(r.participantsInOrderLocked())
	r.status = domain.StatusGraded
	return []Event{{
		Type:    EventGameOver,
		Payload: GameOverPayload{Leaderboard: r.leaderboard},
	}}, nil
}

func (r *Room) endGameLocked() ([]Event, error) {
	if r.status != domain.StatusActive && r.status != domain.StatusGraded {
		return nil, domain.ErrInvalidCommand
	}
	r.status = domain.StatusFinished
	return []Event{{
		Type:    EventGameOver,
		Payload: GameOverPayload{Leaderboard: r.leaderboard},
	}}, nil
}

// stateSyncLocked builds the personalized recovery snapshot for one
// participant. Only that participant's own answers are included.
func (r *Room) stateSyncLocked(participantID string) Event {
	payload := StateSyncPayload{
		Status:       r.status,
		Participants: r.rosterLocked(),
	}
	if r.status == domain.StatusActive || r.status == domain.StatusGraded || r.status == domain.StatusFinished {
		payload.Questions = SanitizeQuestions(r.quiz.Questions)
		if p, ok := r.participants[participantID]; ok {
			answers := make(map[string]int, len(p.Answers))
			for k, v := range p.Answers {
				answers[k] = v
			}
			payload.MyAnswers = answers
		}
	}
	if r.status == domain.StatusGraded || r.status == domain.StatusFinished {
		payload.Leaderboard = r.leaderboard
	}
	return Event{Type: EventStateSync, Payload: payload, To: participantID}
}

func (r *Room) rosterLocked() []domain.RosterEntry {
	roster := make([]domain.RosterEntry, 0, len(r.order))
	for _, id := range r.order {
		p := r.participants[id]
		roster = append(roster, domain.RosterEntry{
			ID:        p.ID,
			Nickname:  p.Nickname,
			Score:     p.Score,
			Completed: p.Completed,
		})
	}
	return roster
}

func (r *Room) participantsInOrderLocked() []*domain.Participant {
	out := make([]*domain.Participant, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.participants[id])
	}
	return out
}
