package edit

import (
	"testing"

	"article-admin/internal/article"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendThenRemoveRestores(t *testing.T) {
	orig := []string{"a", "b"}
	added := Append(orig, "c")
	assert.Equal(t, []string{"a", "b", "c"}, added)

	back, err := RemoveAt(added, 2)
	require.NoError(t, err)
	assert.Equal(t, orig, back)
}

func TestRemoveAtShiftsLaterElements(t *testing.T) {
	orig := []int{1, 2, 3, 4}
	out, err := RemoveAt(orig, 1)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 3, 4}, out)
	assert.Equal(t, []int{1, 2, 3, 4}, orig)
}

func TestIndexOutOfRange(t *testing.T) {
	s := []string{"a"}
	for _, i := range []int{-1, 1, 5} {
		out, err := RemoveAt(s, i)
		assert.ErrorIs(t, err, ErrIndexOutOfRange)
		assert.Equal(t, s, out)

		out, err = ReplaceAt(s, i, "x")
		assert.ErrorIs(t, err, ErrIndexOutOfRange)
		assert.Equal(t, s, out)
	}
}

func TestReplaceAtDoesNotAlias(t *testing.T) {
	orig := []string{"a", "b"}
	out, err := ReplaceAt(orig, 0, "z")
	require.NoError(t, err)
	assert.Equal(t, []string{"z", "b"}, out)
	assert.Equal(t, "a", orig[0])
}

func TestTags(t *testing.T) {
	labels := []string{"news"}

	assert.Equal(t, labels, AddTag(labels, "   "))
	assert.Equal(t, labels, AddTag(labels, "news"))
	assert.Equal(t, []string{"news", "News"}, AddTag(labels, "News"))

	added := AddTag(labels, " sport ")
	assert.Equal(t, []string{"news", "sport"}, added)
	assert.Equal(t, []string{"news"}, labels)

	out, err := RemoveTag(added, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"sport"}, out)

	assert.Equal(t, []string{"news"}, RemoveLastTag(added))
	assert.Empty(t, RemoveLastTag(nil))
}

func TestGrammarAddThenDeleteRestores(t *testing.T) {
	orig := []article.GrammarPoint{
		{Title: "t", Examples: []article.GrammarExample{{SourceText: "s", TargetText: "d"}}},
	}

	added := AddPoint(orig)
	require.Len(t, added, 2)
	back, err := DeletePoint(added, 1)
	require.NoError(t, err)
	assert.Equal(t, orig, back)

	withEx, err := AddExample(orig, 0)
	require.NoError(t, err)
	require.Len(t, withEx[0].Examples, 2)
	require.Len(t, orig[0].Examples, 1)
	back, err = DeleteExample(withEx, 0, 1)
	require.NoError(t, err)
	assert.Equal(t, orig, back)
}

func TestGrammarFieldEdits(t *testing.T) {
	orig := []article.GrammarPoint{
		{Title: "a", Examples: []article.GrammarExample{{}}},
		{Title: "b", Examples: []article.GrammarExample{}},
	}

	out, err := SetPointTitle(orig, 1, "B")
	require.NoError(t, err)
	out, err = SetPointExplanation(out, 0, "why")
	require.NoError(t, err)
	out, err = SetExampleSource(out, 0, 0, "J'ai mangé")
	require.NoError(t, err)
	out, err = SetExampleTarget(out, 0, 0, "食べた")
	require.NoError(t, err)

	assert.Equal(t, "B", out[1].Title)
	assert.Equal(t, "why", out[0].Explanation)
	assert.Equal(t, article.GrammarExample{SourceText: "J'ai mangé", TargetText: "食べた"}, out[0].Examples[0])

	assert.Equal(t, "b", orig[1].Title)
	assert.Equal(t, article.GrammarExample{}, orig[0].Examples[0])

	_, err = SetExampleSource(orig, 1, 0, "x")
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
	_, err = DeleteExample(orig, 2, 0)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestQuestions(t *testing.T) {
	qs := AddQuestion(nil)
	require.Len(t, qs, 1)
	assert.Equal(t, []string{"", "", "", ""}, qs[0].Options)

	qs, err := SetQuestionText(qs, 0, "Capital of France?")
	require.NoError(t, err)
	qs, err = SetOption(qs, 0, 0, "Lyon")
	require.NoError(t, err)
	qs, err = SetOption(qs, 0, 1, "Pari")
	require.NoError(t, err)
	qs, err = SetCorrectAnswer(qs, 0, 1)
	require.NoError(t, err)
	assert.Equal(t, "Pari", qs[0].CorrectAnswer)

	// fixing the text of the chosen option keeps it chosen
	fixed, err := SetOption(qs, 0, 1, "Paris")
	require.NoError(t, err)
	assert.Equal(t, "Paris", fixed[0].CorrectAnswer)
	assert.Equal(t, "Pari", qs[0].CorrectAnswer)

	_, err = SetCorrectAnswer(qs, 0, 4)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)

	back, err := DeleteQuestion(AddQuestion(fixed), 1)
	require.NoError(t, err)
	assert.Equal(t, fixed, back)
}
