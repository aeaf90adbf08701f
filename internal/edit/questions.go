package edit

import "article-admin/internal/article"

// DefaultOptionCount is how many blank options a new question starts with.
const DefaultOptionCount = 4

func AddQuestion(questions []article.QuizQuestion) []article.QuizQuestion {
	return Append(questions, article.QuizQuestion{Options: make([]string, DefaultOptionCount)})
}

func DeleteQuestion(questions []article.QuizQuestion, i int) ([]article.QuizQuestion, error) {
	return RemoveAt(questions, i)
}

func SetQuestionText(questions []article.QuizQuestion, i int, text string) ([]article.QuizQuestion, error) {
	return update(questions, i, func(q article.QuizQuestion) article.QuizQuestion {
		q.QuestionText = text
		return q
	})
}

// SetOption rewrites option j of question i. A correct answer that pointed at
// the old option text follows the edit.
func SetOption(questions []article.QuizQuestion, i, j int, text string) ([]article.QuizQuestion, error) {
	if err := checkIndex(i, len(questions)); err != nil {
		return questions, err
	}
	q := questions[i]
	opts, err := ReplaceAt(q.Options, j, text)
	if err != nil {
		return questions, err
	}
	if q.CorrectAnswer != "" && q.CorrectAnswer == q.Options[j] {
		q.CorrectAnswer = text
	}
	q.Options = opts
	return ReplaceAt(questions, i, q)
}

// SetCorrectAnswer marks option j as the answer of question i.
func SetCorrectAnswer(questions []article.QuizQuestion, i, j int) ([]article.QuizQuestion, error) {
	if err := checkIndex(i, len(questions)); err != nil {
		return questions, err
	}
	if err := checkIndex(j, len(questions[i].Options)); err != nil {
		return questions, err
	}
	return update(questions, i, func(q article.QuizQuestion) article.QuizQuestion {
		q.CorrectAnswer = q.Options[j]
		return q
	})
}
