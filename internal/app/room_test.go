package app_test

import (
	"errors"
	"testing"

	"quizpulse/internal/app"
	"quizpulse/internal/domain"
)

func sampleQuiz() domain.Quiz {
	return domain.Quiz{
		ID:    "quiz-1",
		Title: "Sample",
		Questions: []domain.Question{
			{
				Text: "Pick the first option",
				Options: []domain.Option{
					{Text: "Right", Correct: true},
					{Text: "Wrong"},
				},
				Points:    100,
				TimeLimit: 30,
			},
			{
				Text: "Pick the second option",
				Options: []domain.Option{
					{Text: "Wrong"},
					{Text: "Right", Correct: true},
					{Text: "Also wrong"},
				},
				TimeLimit: 20,
			},
		},
	}
}

func TestLifecycleProgressesForwardOnly(t *testing.T) {
	room := app.NewRoom("123456", sampleQuiz())
	room.Join("host", "Host")

	if room.Status() != domain.StatusLobby {
		t.Fatalf("expected lobby, got %s", room.Status())
	}

	if _, err := room.Apply("host", app.Command{Type: app.CmdStartGame}); err != nil {
		t.Fatalf("start: %v", err)
	}
	if room.Status() != domain.StatusActive {
		t.Fatalf("expected active, got %s", room.Status())
	}

	// Starting again is rejected, state unchanged.
	if _, err := room.Apply("host", app.Command{Type: app.CmdStartGame}); !errors.Is(err, domain.ErrInvalidCommand) {
		t.Fatalf("expected invalid command, got %v", err)
	}
	if room.Status() != domain.StatusActive {
		t.Fatalf("status moved backward: %s", room.Status())
	}

	if _, err := room.Apply("host", app.Command{Type: app.CmdForceSubmit}); err != nil {
		t.Fatalf("force submit: %v", err)
	}
	if room.Status() != domain.StatusGraded {
		t.Fatalf("expected graded, got %s", room.Status())
	}

	if _, err := room.Apply("host", app.Command{Type: app.CmdEndGame}); err != nil {
		t.Fatalf("end: %v", err)
	}
	if room.Status() != domain.StatusFinished {
		t.Fatalf("expected finished, got %s", room.Status())
	}

	// Nothing is accepted after finished.
	if _, err := room.Apply("host", app.Command{Type: app.CmdStartGame}); !errors.Is(err, domain.ErrRoomClosed) {
		t.Fatalf("expected room closed, got %v", err)
	}
}

func TestSubmitAnswerOutsideActiveIsNoOp(t *testing.T) {
	room := app.NewRoom("123456", sampleQuiz())
	room.Join("u1", "Alice")

	events, err := room.Apply("u1", app.Command{Type: app.CmdSubmitAnswer, QuestionID: "0", OptionIdx: 0})
	if err != nil {
		t.Fatalf("expected silent no-op, got %v", err)
	}
	if len(events) != 0 {
		t.Fatalf("expected no events in lobby, got %d", len(events))
	}

	sync := syncFor(t, room, "u1")
	if len(sync.MyAnswers) != 0 {
		t.Fatalf("answer map mutated outside active: %v", sync.MyAnswers)
	}
}

func TestSubmitAnswerValidation(t *testing.T) {
	room := app.NewRoom("123456", sampleQuiz())
	room.Join("u1", "Alice")
	mustApply(t, room, "u1", app.Command{Type: app.CmdStartGame})

	cases := []app.Command{
		{Type: app.CmdSubmitAnswer, QuestionID: "nope", OptionIdx: 0},
		{Type: app.CmdSubmitAnswer, QuestionID: "-1", OptionIdx: 0},
		{Type: app.CmdSubmitAnswer, QuestionID: "7", OptionIdx: 0},
		{Type: app.CmdSubmitAnswer, QuestionID: "0", OptionIdx: -1},
		{Type: app.CmdSubmitAnswer, QuestionID: "0", OptionIdx: 5},
	}
	for _, cmd := range cases {
		events, err := room.Apply("u1", cmd)
		if err != nil {
			t.Fatalf("cmd %+v: expected silent no-op, got %v", cmd, err)
		}
		if len(events) != 0 {
			t.Fatalf("cmd %+v: expected no events", cmd)
		}
	}

	if answers := syncFor(t, room, "u1").MyAnswers; len(answers) != 0 {
		t.Fatalf("invalid submissions mutated answers: %v", answers)
	}
}

func TestResubmissionOverwrites(t *testing.T) {
	room := app.NewRoom("123456", sampleQuiz())
	room.Join("u1", "Alice")
	mustApply(t, room, "u1", app.Command{Type: app.CmdStartGame})

	mustApply(t, room, "u1", app.Command{Type: app.CmdSubmitAnswer, QuestionID: "0", OptionIdx: 1})
	mustApply(t, room, "u1", app.Command{Type: app.CmdSubmitAnswer, QuestionID: "0", OptionIdx: 0})

	answers := syncFor(t, room, "u1").MyAnswers
	if len(answers) != 1 {
		t.Fatalf("expected a single stored answer, got %v", answers)
	}
	if answers["0"] != 0 {
		t.Fatalf("expected overwrite to option 0, got %d", answers["0"])
	}
}

func TestForceSubmitGradesAndOrdersLeaderboard(t *testing.T) {
	// One question worth 100, option 0 correct. A answers correctly, B
	// wrongly, C not at all: leaderboard must be A:100, B:0, C:0 with the
	// tie between B and C kept in join order.
	quiz := domain.Quiz{
		ID: "quiz-1",
		Questions: []domain.Question{
			{
				Text:    "Q",
				Options: []domain.Option{{Text: "yes", Correct: true}, {Text: "no"}},
				Points:  100,
			},
		},
	}
	room := app.NewRoom("123456", quiz)
	room.Join("a", "A")
	room.Join("b", "B")
	room.Join("c", "C")
	mustApply(t, room, "a", app.Command{Type: app.CmdStartGame})
	mustApply(t, room, "a", app.Command{Type: app.CmdSubmitAnswer, QuestionID: "0", OptionIdx: 0})
	mustApply(t, room, "b", app.Command{Type: app.CmdSubmitAnswer, QuestionID: "0", OptionIdx: 1})

	events := mustApply(t, room, "a", app.Command{Type: app.CmdForceSubmit})
	if len(events) != 1 || events[0].Type != app.EventGameOver {
		t.Fatalf("expected single game_over event, got %+v", events)
	}
	payload, ok := events[0].Payload.(app.GameOverPayload)
	if !ok {
		t.Fatalf("unexpected payload %T", events[0].Payload)
	}

	want := []struct {
		id    string
		score int
	}{{"a", 100}, {"b", 0}, {"c", 0}}
	if len(payload.Leaderboard) != len(want) {
		t.Fatalf("expected %d entries, got %+v", len(want), payload.Leaderboard)
	}
	for i, w := range want {
		got := payload.Leaderboard[i]
		if got.ID != w.id || got.Score != w.score {
			t.Fatalf("entry %d: expected %s:%d, got %s:%d", i, w.id, w.score, got.ID, got.Score)
		}
	}

	// Everyone is marked completed regardless of prior flag.
	for _, entry := range syncFor(t, room, "a").Participants {
		if !entry.Completed {
			t.Fatalf("participant %s not completed after grading", entry.ID)
		}
	}
}

func TestSubmitCompleteMarksParticipant(t *testing.T) {
	room := app.NewRoom("123456", sampleQuiz())
	room.Join("u1", "Alice")
	room.Join("u2", "Bob")
	mustApply(t, room, "u1", app.Command{Type: app.CmdStartGame})

	events := mustApply(t, room, "u1", app.Command{Type: app.CmdSubmitComplete})
	if len(events) != 1 || events[0].Type != app.EventParticipantUpdate {
		t.Fatalf("expected roster refresh, got %+v", events)
	}
	roster := events[0].Payload.([]domain.RosterEntry)
	if !roster[0].Completed || roster[1].Completed {
		t.Fatalf("expected only u1 completed, got %+v", roster)
	}
	if room.Status() != domain.StatusActive {
		t.Fatalf("submit_complete must not change room status")
	}
}

func TestEndGameFromActiveWithoutGrading(t *testing.T) {
	room := app.NewRoom("123456", sampleQuiz())
	room.Join("u1", "Alice")
	mustApply(t, room, "u1", app.Command{Type: app.CmdStartGame})

	events := mustApply(t, room, "u1", app.Command{Type: app.CmdEndGame})
	if len(events) != 1 || events[0].Type != app.EventGameOver {
		t.Fatalf("expected terminal notification, got %+v", events)
	}
	if room.Status() != domain.StatusFinished {
		t.Fatalf("expected finished, got %s", room.Status())
	}
	// end_game from lobby is rejected.
	fresh := app.NewRoom("654321", sampleQuiz())
	fresh.Join("u1", "Alice")
	if _, err := fresh.Apply("u1", app.Command{Type: app.CmdEndGame}); !errors.Is(err, domain.ErrInvalidCommand) {
		t.Fatalf("expected invalid command from lobby, got %v", err)
	}
}

func TestGradingIsIdempotentlyPure(t *testing.T) {
	build := func() *app.Room {
		room := app.NewRoom("123456", sampleQuiz())
		room.Join("u1", "Alice")
		room.Join("u2", "Bob")
		mustApply(t, room, "u1", app.Command{Type: app.CmdStartGame})
		mustApply(t, room, "u1", app.Command{Type: app.CmdSubmitAnswer, QuestionID: "0", OptionIdx: 0})
		mustApply(t, room, "u1", app.Command{Type: app.CmdSubmitAnswer, QuestionID: "1", OptionIdx: 1})
		mustApply(t, room, "u2", app.Command{Type: app.CmdSubmitAnswer, QuestionID: "1", OptionIdx: 0})
		return room
	}

	first := gradeAndLeaderboard(t, build())
	second := gradeAndLeaderboard(t, build())
	if len(first) != len(second) {
		t.Fatalf("leaderboard lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("entry %d differs: %+v vs %+v", i, first[i], second[i])
		}
	}
	// The second question has no point value, so it is worth the 100 default.
	if first[0].ID != "u1" || first[0].Score != 200 {
		t.Fatalf("expected u1 with 200, got %+v", first[0])
	}
}

func TestStateSyncIsPersonalized(t *testing.T) {
	room := app.NewRoom("123456", sampleQuiz())
	room.Join("u1", "Alice")
	room.Join("u2", "Bob")
	mustApply(t, room, "u1", app.Command{Type: app.CmdStartGame})
	mustApply(t, room, "u1", app.Command{Type: app.CmdSubmitAnswer, QuestionID: "0", OptionIdx: 0})
	mustApply(t, room, "u2", app.Command{Type: app.CmdSubmitAnswer, QuestionID: "1", OptionIdx: 2})

	sync1 := syncFor(t, room, "u1")
	if len(sync1.MyAnswers) != 1 || sync1.MyAnswers["0"] != 0 {
		t.Fatalf("u1 got wrong answers: %v", sync1.MyAnswers)
	}
	sync2 := syncFor(t, room, "u2")
	if len(sync2.MyAnswers) != 1 || sync2.MyAnswers["1"] != 2 {
		t.Fatalf("u2 got wrong answers: %v", sync2.MyAnswers)
	}
	if sync1.Status != domain.StatusActive || len(sync1.Questions) != 2 {
		t.Fatalf("expected active snapshot with questions, got %+v", sync1)
	}
	if sync1.Leaderboard != nil {
		t.Fatalf("leaderboard leaked before grading")
	}
}

func TestReconnectKeepsAnswersAndRosterEntry(t *testing.T) {
	room := app.NewRoom("123456", sampleQuiz())
	room.Join("u1", "Alice")
	mustApply(t, room, "u1", app.Command{Type: app.CmdStartGame})
	mustApply(t, room, "u1", app.Command{Type: app.CmdSubmitAnswer, QuestionID: "0", OptionIdx: 0})

	// Same identity joining again is a reconnect, not a new participant.
	events := room.Join("u1", "Alice")
	var sync app.StateSyncPayload
	for _, e := range events {
		if e.Type == app.EventStateSync {
			sync = e.Payload.(app.StateSyncPayload)
		}
	}
	if len(sync.Participants) != 1 {
		t.Fatalf("duplicate roster entry after reconnect: %+v", sync.Participants)
	}
	if sync.MyAnswers["0"] != 0 {
		t.Fatalf("answers lost on reconnect: %v", sync.MyAnswers)
	}
}

func mustApply(t *testing.T, room *app.Room, participantID string, cmd app.Command) []app.Event {
	t.Helper()
	events, err := room.Apply(participantID, cmd)
	if err != nil {
		t.Fatalf("apply %s: %v", cmd.Type, err)
	}
	return events
}

func gradeAndLeaderboard(t *testing.T, room *app.Room) []domain.LeaderboardEntry {
	t.Helper()
	events := mustApply(t, room, "u1", app.Command{Type: app.CmdForceSubmit})
	return events[0].Payload.(app.GameOverPayload).Leaderboard
}

// syncFor re-joins the participant to obtain a fresh personalized snapshot.
func syncFor(t *testing.T, room *app.Room, participantID string) app.StateSyncPayload {
	t.Helper()
	for _, e := range room.Join(participantID, "") {
		if e.Type == app.EventStateSync {
			if e.To != participantID {
				t.Fatalf("state_sync addressed to %q, want %q", e.To, participantID)
			}
			return e.Payload.(app.StateSyncPayload)
		}
	}
	t.Fatalf("no state_sync event produced")
	return app.StateSyncPayload{}
}
