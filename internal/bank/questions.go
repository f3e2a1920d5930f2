package bank

import (
	"github.com/shivvyas2/NYUHacks/internal/domain"
)

const defaultTimeLimit = 30

func question(c domain.Category, d domain.Difficulty, points int, text string, options []string, correct int, explanation string) domain.Question {
	return domain.Question{
		Category:    c,
		Difficulty:  d,
		Question:    text,
		Options:     options,
		Correct:     correct,
		Explanation: explanation,
		Points:      points,
		TimeLimit:   defaultTimeLimit,
	}
}

func defaultQuestions() []domain.Question {
	return []domain.Question{
		// Math
		question(domain.CategoryMath, domain.DifficultyEasy, 10,
			"If 2x + 5 = 13, what is x?",
			[]string{"2", "4", "6", "8"}, 1,
			"Subtract 5 from both sides: 2x = 8, then divide by 2: x = 4"),
		question(domain.CategoryMath, domain.DifficultyEasy, 10,
			"What is 15% of 200?",
			[]string{"25", "30", "35", "40"}, 1,
			"15% = 0.15, so 0.15 × 200 = 30"),
		question(domain.CategoryMath, domain.DifficultyEasy, 10,
			"If x + 5 = 12, what is the value of x?",
			[]string{"5", "7", "12", "17"}, 1,
			"Subtract 5 from both sides: x = 12 - 5 = 7"),
		question(domain.CategoryMath, domain.DifficultyEasy, 10,
			"What is 25% of 80?",
			[]string{"15", "20", "25", "30"}, 1,
			"25% = 0.25, so 0.25 × 80 = 20"),
		question(domain.CategoryMath, domain.DifficultyEasy, 10,
			"If a rectangle has length 8 and width 3, what is its area?",
			[]string{"11", "22", "24", "27"}, 2,
			"Area = length × width = 8 × 3 = 24"),
		question(domain.CategoryMath, domain.DifficultyMedium, 15,
			"If 3x - 7 = 2x + 5, what is x?",
			[]string{"2", "12", "8", "5"}, 1,
			"3x - 2x = 5 + 7, so x = 12"),
		question(domain.CategoryMath, domain.DifficultyMedium, 15,
			"If a = 3b and b = 4, what is a?",
			[]string{"7", "12", "16", "20"}, 1,
			"Substitute b = 4 into a = 3b: a = 3(4) = 12"),
		question(domain.CategoryMath, domain.DifficultyMedium, 15,
			"A circle has a radius of 7. What is its circumference? (Use π ≈ 3.14)",
			[]string{"14", "21.98", "43.96", "153.86"}, 2,
			"Circumference = 2πr = 2 × 3.14 × 7 ≈ 43.96"),
		question(domain.CategoryMath, domain.DifficultyMedium, 15,
			"Solve: (x + 2)² = 16. What are the values of x?",
			[]string{"2, -6", "4, -8", "2, -2", "4, 0"}, 0,
			"Take square root: x + 2 = ±4, so x = 2 or x = -6"),
		question(domain.CategoryMath, domain.DifficultyHard, 20,
			"If f(x) = 2x² - 3x + 1, what is f(3)?",
			[]string{"4", "10", "16", "28"}, 1,
			"f(3) = 2(3²) - 3(3) + 1 = 2(9) - 9 + 1 = 18 - 9 + 1 = 10"),
		question(domain.CategoryMath, domain.DifficultyHard, 20,
			"If f(x) = 2x - 3, what is f(5)?",
			[]string{"7", "8", "10", "13"}, 0,
			"f(5) = 2(5) - 3 = 10 - 3 = 7"),

		// Reading
		question(domain.CategoryReading, domain.DifficultyEasy, 10,
			"Which word is a synonym for 'happy'?",
			[]string{"Sad", "Joyful", "Angry", "Tired"}, 1,
			"'Joyful' means the same as happy."),
		question(domain.CategoryReading, domain.DifficultyEasy, 10,
			"What is the main idea of a paragraph called?",
			[]string{"Detail", "Topic sentence", "Conclusion", "Introduction"}, 1,
			"The topic sentence contains the main idea of a paragraph."),
		question(domain.CategoryReading, domain.DifficultyMedium, 15,
			"Which word is most similar to 'ephemeral'?",
			[]string{"eternal", "temporary", "solid", "beautiful"}, 1,
			"'Ephemeral' means lasting for a very short time, so 'temporary' is the closest synonym."),
		question(domain.CategoryReading, domain.DifficultyMedium, 15,
			"'The author's tone in the passage is primarily...' What does 'tone' refer to?",
			[]string{"The volume of the text", "The author's attitude", "The length of sentences", "The number of paragraphs"}, 1,
			"Tone refers to the author's attitude or feeling toward the subject."),
		question(domain.CategoryReading, domain.DifficultyMedium, 15,
			"'Ameliorate' most nearly means:",
			[]string{"worsen", "improve", "maintain", "destroy"}, 1,
			"'Ameliorate' means to make something better or improve it."),
		question(domain.CategoryReading, domain.DifficultyHard, 20,
			"An author uses irony when they...",
			[]string{"Write very seriously", "Say the opposite of what they mean", "Use many adjectives", "Tell a story"}, 1,
			"Irony is when the intended meaning is opposite to the literal meaning."),

		// Writing
		question(domain.CategoryWriting, domain.DifficultyEasy, 10,
			"Which sentence is grammatically correct?",
			[]string{
				"Me and him went to the store",
				"He and I went to the store",
				"Him and me went to the store",
				"Me and he went to the store",
			}, 1,
			"'He and I' is the correct subject pronoun form."),
		question(domain.CategoryWriting, domain.DifficultyMedium, 15,
			"Which sentence is grammatically correct?",
			[]string{"Me and him went", "Him and I went", "He and I went", "I and he went"}, 2,
			"'He and I' is the grammatically correct form for compound subjects."),
		question(domain.CategoryWriting, domain.DifficultyMedium, 15,
			"Choose the sentence with correct punctuation:",
			[]string{
				"The dog ran fast it was excited.",
				"The dog ran fast; it was excited.",
				"The dog ran fast, it was excited.",
				"The dog ran fast it was, excited.",
			}, 1,
			"A semicolon correctly joins two independent clauses."),
		question(domain.CategoryWriting, domain.DifficultyHard, 20,
			"Which sentence uses 'affect' correctly?",
			[]string{
				"The medication had no affect on the patient.",
				"The weather can affect your mood.",
				"She showed no affect during the speech.",
				"The affect was immediate and noticeable.",
			}, 1,
			"'Affect' as a verb means to influence. 'Effect' is usually a noun."),
	}
}
