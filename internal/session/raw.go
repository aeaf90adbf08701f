package session

import (
	"context"
	"fmt"

	"article-admin/internal/article"
	"article-admin/internal/edit"
)

// Section names a collection that can be edited as raw JSON.
type Section string

const (
	SectionLabels     Section = "labels"
	SectionVocabulary Section = "vocabulary"
	SectionGrammar    Section = "grammarPoints"
	SectionQuestions  Section = "questions"
)

// RawState is the text last typed for a section and whether it parsed.
type RawState struct {
	Text  string
	Valid bool
}

type rawKey struct {
	level   article.Level
	section Section
}

func keyFor(l article.Level, sec Section) rawKey {
	if sec == SectionLabels {
		// labels are not per version
		l = ""
	}
	return rawKey{level: l, section: sec}
}

// Raw returns the text shown in raw mode: pending invalid text if there is
// some, the committed value otherwise.
func (s *Session) Raw(l article.Level, sec Section) (RawState, error) {
	if err := checkLevel(l, sec); err != nil {
		return RawState{}, err
	}
	if st, ok := s.raw[keyFor(l, sec)]; ok && !st.Valid {
		return st, nil
	}

	v := s.state.Version(l)
	var (
		text string
		err  error
	)
	switch sec {
	case SectionLabels:
		text, err = edit.FormatRaw(s.state.Labels)
	case SectionVocabulary:
		text, err = edit.FormatRaw(v.Vocabulary)
	case SectionGrammar:
		text, err = edit.FormatRaw(v.GrammarPoints)
	case SectionQuestions:
		text, err = edit.FormatRaw(v.Questions)
	default:
		return RawState{}, unknownSection(sec)
	}
	if err != nil {
		return RawState{}, err
	}
	return RawState{Text: text, Valid: true}, nil
}

// ApplyRaw replaces a section with the parsed text. Text that does not parse
// is remembered as invalid and the state is not touched.
func (s *Session) ApplyRaw(ctx context.Context, l article.Level, sec Section, text string) error {
	if err := checkLevel(l, sec); err != nil {
		return err
	}
	key := keyFor(l, sec)

	switch sec {
	case SectionLabels:
		return applyRaw(ctx, s, key, text, func(f article.Fields, labels []string) article.Fields {
			f.Labels = article.NormalizeLabels(labels)
			return f
		})
	case SectionVocabulary:
		return applyRaw(ctx, s, key, text, func(f article.Fields, voc article.Vocabulary) article.Fields {
			v := f.Version(l)
			v.Vocabulary = voc.Aligned()
			return f.WithVersion(l, v)
		})
	case SectionGrammar:
		return applyRaw(ctx, s, key, text, func(f article.Fields, points []article.GrammarPoint) article.Fields {
			v := f.Version(l)
			v.GrammarPoints = points
			return f.WithVersion(l, article.NormalizeVersion(v))
		})
	case SectionQuestions:
		return applyRaw(ctx, s, key, text, func(f article.Fields, qs []article.QuizQuestion) article.Fields {
			v := f.Version(l)
			v.Questions = qs
			return f.WithVersion(l, article.NormalizeVersion(v))
		})
	default:
		return unknownSection(sec)
	}
}

func applyRaw[T any](ctx context.Context, s *Session, key rawKey, text string, set func(article.Fields, T) article.Fields) error {
	var r edit.RawText[T]
	v, err := r.Change(text)
	s.raw[key] = RawState{Text: r.Text, Valid: r.Valid}
	if err != nil {
		return err
	}
	return s.Apply(ctx, func(f article.Fields) (article.Fields, error) {
		return set(f, v), nil
	})
}

func checkLevel(l article.Level, sec Section) error {
	if sec != SectionLabels && !l.Valid() {
		return &article.ValidationError{Field: "version", Reason: fmt.Sprintf("has unknown level %q", l)}
	}
	return nil
}

func unknownSection(sec Section) error {
	return &article.ValidationError{Field: "section", Reason: fmt.Sprintf("has unknown value %q", sec)}
}
