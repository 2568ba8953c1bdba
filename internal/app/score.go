package app

import (
	"sort"
	"strconv"

	"quizpulse/internal/domain"
)

// defaultPoints is awarded for a correct answer when the question does not
// specify a point value.
const defaultPoints = 100

// scoreAnswers grades one participant's answer map against the quiz answer
// key. Out-of-range or missing answers contribute zero; there is no partial
// credit and no time bonus.
func scoreAnswers(questions []domain.Question, answers map[string]int) int {
	total := 0
	for questionID, optionIdx := range answers {
		idx, err := strconv.Atoi(questionID)
		if err != nil || idx < 0 || idx >= len(questions) {
			continue
		}
		question := questions[idx]
		if optionIdx < 0 || optionIdx >= len(question.Options) {
			continue
		}
		if !question.Options[optionIdx].Correct {
			continue
		}
		points := question.Points
		if points == 0 {
			points = defaultPoints
		}
		total += points
	}
	return total
}

// buildLeaderboard sorts participants descending by score. The input slice is
// in roster join order and the sort is stable, so ties keep that order.
func buildLeaderboard(participants []*domain.Participant) []domain.LeaderboardEntry {
	entries := make([]domain.LeaderboardEntry, 0, len(participants))
	for _, p := range participants {
		entries = append(entries, domain.LeaderboardEntry{
			ID:       p.ID,
			Nickname: p.Nickname,
			Score:    p.Score,
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Score > entries[j].Score
	})
	return entries
}
