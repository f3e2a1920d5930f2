package bank_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shivvyas2/NYUHacks/internal/bank"
	"github.com/shivvyas2/NYUHacks/internal/domain"
	"github.com/shivvyas2/NYUHacks/internal/errors"
)

func TestBank_Draw(t *testing.T) {
	t.Run("draws only from the requested difficulty", func(t *testing.T) {
		b := bank.Default()

		for i := 0; i < 50; i++ {
			q, err := b.Draw(domain.DifficultyMedium, nil)
			require.NoError(t, err)
			assert.Equal(t, domain.DifficultyMedium, q.Difficulty)
		}
	})

	t.Run("every issuance carries a fresh identifier", func(t *testing.T) {
		b := bank.Default()

		seen := make(map[string]struct{})
		for i := 0; i < 20; i++ {
			q, err := b.Draw(domain.DifficultyEasy, nil)
			require.NoError(t, err)
			_, dup := seen[q.QuestionID]
			assert.False(t, dup, "question id reused: %s", q.QuestionID)
			seen[q.QuestionID] = struct{}{}
		}
	})

	t.Run("excluded sources are skipped until the pool is exhausted", func(t *testing.T) {
		b := bank.New([]domain.Question{
			mediumQuestion("q-a"),
			mediumQuestion("q-b"),
			mediumQuestion("q-c"),
		})

		exclude := make(map[string]struct{})
		sources := make(map[string]struct{})
		for i := 0; i < 3; i++ {
			q, err := b.Draw(domain.DifficultyMedium, exclude)
			require.NoError(t, err)
			_, dup := sources[q.Source]
			require.False(t, dup, "source %s drawn twice before exhaustion", q.Source)
			sources[q.Source] = struct{}{}
			exclude[q.Source] = struct{}{}
		}

		// All three sources excluded: the exclusion is dropped and a repeat
		// is allowed rather than failing.
		q, err := b.Draw(domain.DifficultyMedium, exclude)
		require.NoError(t, err)
		assert.Contains(t, sources, q.Source)
	})

	t.Run("empty difficulty pool is not found", func(t *testing.T) {
		b := bank.New([]domain.Question{mediumQuestion("q-a")})

		_, err := b.Draw(domain.DifficultyHard, nil)
		require.Error(t, err)
		assert.Equal(t, errors.CodeNotFound, errors.Convert(err).Code)
	})
}

func TestBank_Questions(t *testing.T) {
	b := bank.Default()

	qs := b.Questions(domain.CategoryMath, domain.DifficultyEasy)
	require.NotEmpty(t, qs)
	for _, q := range qs {
		assert.Equal(t, domain.CategoryMath, q.Category)
		assert.Equal(t, domain.DifficultyEasy, q.Difficulty)
		assert.NotEmpty(t, q.QuestionID)
		assert.Len(t, q.Options, 4)
	}
}

func TestDefault_Coverage(t *testing.T) {
	b := bank.Default()

	assert.Greater(t, b.Size(), 0)
	for _, c := range domain.Categories() {
		for _, d := range []domain.Difficulty{domain.DifficultyEasy, domain.DifficultyMedium, domain.DifficultyHard} {
			assert.NotEmpty(t, b.Questions(c, d), "no questions for %s/%s", c, d)
		}
	}
}

func mediumQuestion(source string) domain.Question {
	return domain.Question{
		Source:      source,
		Category:    domain.CategoryMath,
		Difficulty:  domain.DifficultyMedium,
		Question:    "placeholder",
		Options:     []string{"a", "b", "c", "d"},
		Correct:     0,
		Explanation: "placeholder",
		Points:      15,
		TimeLimit:   30,
	}
}
