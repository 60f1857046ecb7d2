package game

import (
	"math/rand"

	"trivia-game-service/internal/domain"
)

// ShuffleQuestions returns a Fisher–Yates permutation of the questions.
// The input slice is left untouched; the rand source is injected so tests
// can fix the seed.
func ShuffleQuestions(questions []domain.Question, rng *rand.Rand) []domain.Question {
	shuffled := make([]domain.Question, len(questions))
	copy(shuffled, questions)
	for i := len(shuffled) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}
	return shuffled
}
