// Package bank holds the static SAT question bank and the draw policy used
// when a session requests a new question.
package bank

import (
	"fmt"
	"math/rand/v2"

	"github.com/google/uuid"

	"github.com/shivvyas2/NYUHacks/internal/domain"
	"github.com/shivvyas2/NYUHacks/internal/errors"
)

// Bank is a read-only partition of questions by category and difficulty.
type Bank struct {
	questions map[domain.Category]map[domain.Difficulty][]domain.Question
}

// New builds a bank from the given questions. Entries without a source get a
// stable one derived from their position, so draw exclusion works.
func New(questions []domain.Question) *Bank {
	b := &Bank{questions: make(map[domain.Category]map[domain.Difficulty][]domain.Question)}

	for i, q := range questions {
		if q.Source == "" {
			q.Source = fmt.Sprintf("%s-%s-%d", q.Category, q.Difficulty, i)
		}
		byDifficulty, ok := b.questions[q.Category]
		if !ok {
			byDifficulty = make(map[domain.Difficulty][]domain.Question)
			b.questions[q.Category] = byDifficulty
		}
		byDifficulty[q.Difficulty] = append(byDifficulty[q.Difficulty], q)
	}

	return b
}

// Default returns a bank preloaded with the built-in SAT question set.
func Default() *Bank {
	return New(defaultQuestions())
}

// Draw picks a question of the given difficulty uniformly at random across all
// categories, skipping sources in exclude. When every candidate is excluded the
// exclusion is dropped for this draw and a repeat may be issued. The returned
// question carries a fresh QuestionID.
func (b *Bank) Draw(difficulty domain.Difficulty, exclude map[string]struct{}) (domain.Question, error) {
	var all []domain.Question
	for _, category := range domain.Categories() {
		all = append(all, b.questions[category][difficulty]...)
	}

	if len(all) == 0 {
		return domain.Question{}, errors.New(errors.CodeNotFound,
			errors.WithMessagef("no questions for difficulty %q", difficulty))
	}

	available := make([]domain.Question, 0, len(all))
	for _, q := range all {
		if _, issued := exclude[q.Source]; !issued {
			available = append(available, q)
		}
	}
	if len(available) == 0 {
		available = all
	}

	q := available[rand.IntN(len(available))]
	q.QuestionID = uuid.NewString()
	q.Options = append([]string(nil), q.Options...)
	return q, nil
}

// Questions returns the bank entries for one category and difficulty, each
// with a fresh QuestionID. Used by the static question endpoint and as the
// fallback when agent generation fails.
func (b *Bank) Questions(category domain.Category, difficulty domain.Difficulty) []domain.Question {
	entries := b.questions[category][difficulty]
	out := make([]domain.Question, 0, len(entries))
	for _, q := range entries {
		q.QuestionID = uuid.NewString()
		q.Options = append([]string(nil), q.Options...)
		out = append(out, q)
	}
	return out
}

// Size reports the total number of bank entries.
func (b *Bank) Size() int {
	n := 0
	for _, byDifficulty := range b.questions {
		for _, qs := range byDifficulty {
			n += len(qs)
		}
	}
	return n
}
