package app

import (
	"strconv"

	"quizpulse/internal/domain"
)

// SanitizeQuestions derives the client-safe view of a quiz's questions.
// The correctness flag is stripped from every option; the question ID is the
// 0-based position rendered as a string, which is also the key participants
// use when submitting answers.
func SanitizeQuestions(questions []domain.Question) []domain.SanitizedQuestion {
	sanitized := make([]domain.SanitizedQuestion, 0, len(questions))
	for i, q := range questions {
		options := make([]domain.SanitizedOption, 0, len(q.Options))
		for _, opt := range q.Options {
			options = append(options, domain.SanitizedOption{Text: opt.Text})
		}
		sanitized = append(sanitized, domain.SanitizedQuestion{
			ID:        strconv.Itoa(i),
			Text:      q.Text,
			Options:   options,
			TimeLimit: q.TimeLimit,
		})
	}
	return sanitized
}
