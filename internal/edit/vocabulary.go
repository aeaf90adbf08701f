package edit

import (
	"errors"
	"strings"

	"article-admin/internal/article"
)

var ErrLanguageExists = errors.New("language already exists")

// AddRow appends one empty slot to words, category and every translation
// column.
func AddRow(v article.Vocabulary) article.Vocabulary {
	out := v.Aligned()
	out.Words = append(out.Words, "")
	out.Category = append(out.Category, "")
	for lang, col := range out.Translations {
		out.Translations[lang] = append(col, "")
	}
	return out
}

// DeleteRow removes row i from every column.
func DeleteRow(v article.Vocabulary, i int) (article.Vocabulary, error) {
	out := v.Aligned()
	if err := checkIndex(i, out.Len()); err != nil {
		return v, err
	}
	out.Words, _ = RemoveAt(out.Words, i)
	out.Category, _ = RemoveAt(out.Category, i)
	for lang, col := range out.Translations {
		out.Translations[lang], _ = RemoveAt(col, i)
	}
	return out, nil
}

func SetWord(v article.Vocabulary, i int, word string) (article.Vocabulary, error) {
	out := v.Aligned()
	if err := checkIndex(i, out.Len()); err != nil {
		return v, err
	}
	out.Words[i] = word
	return out, nil
}

func SetCategory(v article.Vocabulary, i int, category string) (article.Vocabulary, error) {
	out := v.Aligned()
	if err := checkIndex(i, out.Len()); err != nil {
		return v, err
	}
	out.Category[i] = category
	return out, nil
}

// SetTranslation writes the translation of row i in lang. The language must
// already exist.
func SetTranslation(v article.Vocabulary, lang string, i int, text string) (article.Vocabulary, error) {
	out := v.Aligned()
	if err := checkIndex(i, out.Len()); err != nil {
		return v, err
	}
	col, ok := out.Translations[lang]
	if !ok {
		return v, &article.ValidationError{Field: "translations", Reason: "has no language " + lang}
	}
	col[i] = text
	return out, nil
}

// AddLanguage adds a translation column with one empty slot per row. An
// empty name is ignored.
func AddLanguage(v article.Vocabulary, lang string) (article.Vocabulary, error) {
	lang = strings.TrimSpace(lang)
	if lang == "" {
		return v, nil
	}
	if _, ok := v.Translations[lang]; ok {
		return v, ErrLanguageExists
	}
	out := v.Aligned()
	out.Translations[lang] = make([]string, out.Len())
	return out, nil
}
