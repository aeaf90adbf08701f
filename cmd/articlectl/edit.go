package main

import (
	"fmt"
	"slices"

	"article-admin/internal/article"
	"article-admin/internal/edit"
	"article-admin/internal/session"

	"github.com/spf13/cobra"
)

// editRun resumes the draft named by --draft, applies one mutation and lets
// the session autosave it.
type editRun func(cmd *cobra.Command, sess *session.Session, args []string) error

func newEditCmd(a *app) *cobra.Command {
	var draftID string
	cmd := &cobra.Command{
		Use:   "edit",
		Short: "Apply one edit to a local draft",
	}
	cmd.PersistentFlags().StringVarP(&draftID, "draft", "d", "", "draft to edit")
	_ = cmd.MarkPersistentFlagRequired("draft")

	wrap := func(run editRun) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			sess, err := a.resume(cmd, draftID)
			if err != nil {
				return err
			}
			return run(cmd, sess, args)
		}
	}

	var sanitize bool
	htmlCmd := &cobra.Command{
		Use:   "html VERSION FILE|-",
		Short: "Replace a version's HTML content",
		Args:  cobra.ExactArgs(2),
		RunE: wrap(func(cmd *cobra.Command, sess *session.Session, args []string) error {
			l, err := parseLevel(args[0])
			if err != nil {
				return err
			}
			content, err := readInput(cmd, args[1])
			if err != nil {
				return err
			}
			if sanitize {
				content = edit.NewSanitizer().Sanitize(content)
			}
			return sess.SetContent(cmd.Context(), l, content)
		}),
	}
	htmlCmd.Flags().BoolVar(&sanitize, "sanitize", false, "strip unsafe markup before storing")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "set FIELD VALUE",
			Short: "Set title, sourceUrl, imageUrl or publishDate (empty clears the date)",
			Args:  cobra.ExactArgs(2),
			RunE:  wrap(setField),
		},
		&cobra.Command{
			Use:   "audio VERSION URL",
			Short: "Set a version's audio URL",
			Args:  cobra.ExactArgs(2),
			RunE: wrap(func(cmd *cobra.Command, sess *session.Session, args []string) error {
				l, err := parseLevel(args[0])
				if err != nil {
					return err
				}
				return sess.SetAudioURL(cmd.Context(), l, args[1])
			}),
		},
		&cobra.Command{
			Use:   "tag add VALUE | tag rm INDEX",
			Short: "Add or remove a label",
			Args:  cobra.ExactArgs(2),
			RunE:  wrap(tagAction),
		},
		&cobra.Command{
			Use:   "vocab VERSION ACTION [ARGS...]",
			Short: "Edit vocabulary: add | rm I | word I TEXT | category I CAT | translation LANG I TEXT | language LANG",
			Args:  cobra.MinimumNArgs(2),
			RunE:  wrap(versionAction(vocabAction)),
		},
		&cobra.Command{
			Use:   "grammar VERSION ACTION [ARGS...]",
			Short: "Edit grammar points: add | rm I | title I TEXT | explanation I TEXT | example-add I | example-rm I J | example I J SOURCE TARGET",
			Args:  cobra.MinimumNArgs(2),
			RunE:  wrap(versionAction(grammarAction)),
		},
		&cobra.Command{
			Use:   "question VERSION ACTION [ARGS...]",
			Short: "Edit quiz questions: add | rm I | text I TEXT | option I J TEXT | answer I J",
			Args:  cobra.MinimumNArgs(2),
			RunE:  wrap(versionAction(questionAction)),
		},
		&cobra.Command{
			Use:   "raw VERSION SECTION FILE|-",
			Short: "Replace labels, vocabulary, grammarPoints or questions with JSON",
			Args:  cobra.ExactArgs(3),
			RunE: wrap(func(cmd *cobra.Command, sess *session.Session, args []string) error {
				sec := session.Section(args[1])
				var l article.Level
				if sec != session.SectionLabels {
					var err error
					if l, err = parseLevel(args[0]); err != nil {
						return err
					}
				}
				text, err := readInput(cmd, args[2])
				if err != nil {
					return err
				}
				return sess.ApplyRaw(cmd.Context(), l, sec, text)
			}),
		},
		htmlCmd,
	)
	return cmd
}

func setField(cmd *cobra.Command, sess *session.Session, args []string) error {
	ctx := cmd.Context()
	switch field, value := args[0], args[1]; field {
	case "title":
		sess.SetTitle(ctx, value)
	case "sourceUrl":
		sess.SetSourceURL(ctx, value)
	case "imageUrl":
		sess.SetImageURL(ctx, value)
	case "publishDate":
		t, err := parseDate(value)
		if err != nil {
			return err
		}
		sess.SetPublishDate(ctx, t)
	default:
		return fmt.Errorf("unknown field %q", field)
	}
	return nil
}

func tagAction(cmd *cobra.Command, sess *session.Session, args []string) error {
	switch args[0] {
	case "add":
		sess.AddTag(cmd.Context(), args[1])
		return nil
	case "rm":
		i, err := parseIndex(args[1])
		if err != nil {
			return err
		}
		return sess.RemoveTag(cmd.Context(), i)
	default:
		return fmt.Errorf("unknown tag action %q", args[0])
	}
}

// versionEdit turns the action arguments into a pure edit of one version.
type versionEdit func(action string, args []string) (func(article.Version) (article.Version, error), error)

func versionAction(parse versionEdit) editRun {
	return func(cmd *cobra.Command, sess *session.Session, args []string) error {
		l, err := parseLevel(args[0])
		if err != nil {
			return err
		}
		fn, err := parse(args[1], args[2:])
		if err != nil {
			return err
		}
		return sess.UpdateVersion(cmd.Context(), l, fn)
	}
}

func wantArgs(action string, args []string, n int) error {
	if len(args) != n {
		return fmt.Errorf("%s takes %d argument(s), got %d", action, n, len(args))
	}
	return nil
}

func indexes(args []string) ([]int, error) {
	out := make([]int, 0, len(args))
	for _, a := range args {
		i, err := parseIndex(a)
		if err != nil {
			return nil, err
		}
		out = append(out, i)
	}
	return out, nil
}

func vocabAction(action string, args []string) (func(article.Version) (article.Version, error), error) {
	type vocabFn func(article.Vocabulary) (article.Vocabulary, error)
	var (
		fn  vocabFn
		ix  []int
		err error
	)

	switch action {
	case "add":
		err = wantArgs(action, args, 0)
		fn = func(v article.Vocabulary) (article.Vocabulary, error) { return edit.AddRow(v), nil }
	case "rm":
		if err = wantArgs(action, args, 1); err == nil {
			ix, err = indexes(args)
		}
		fn = func(v article.Vocabulary) (article.Vocabulary, error) { return edit.DeleteRow(v, ix[0]) }
	case "word":
		if err = wantArgs(action, args, 2); err == nil {
			ix, err = indexes(args[:1])
		}
		fn = func(v article.Vocabulary) (article.Vocabulary, error) { return edit.SetWord(v, ix[0], args[1]) }
	case "category":
		if err = wantArgs(action, args, 2); err == nil {
			ix, err = indexes(args[:1])
		}
		if err == nil && !slices.Contains(article.Categories, article.Category(args[1])) {
			err = &article.ValidationError{Field: "category", Reason: fmt.Sprintf("has unknown value %q", args[1])}
		}
		fn = func(v article.Vocabulary) (article.Vocabulary, error) { return edit.SetCategory(v, ix[0], args[1]) }
	case "translation":
		if err = wantArgs(action, args, 3); err == nil {
			ix, err = indexes(args[1:2])
		}
		fn = func(v article.Vocabulary) (article.Vocabulary, error) {
			return edit.SetTranslation(v, args[0], ix[0], args[2])
		}
	case "language":
		err = wantArgs(action, args, 1)
		fn = func(v article.Vocabulary) (article.Vocabulary, error) { return edit.AddLanguage(v, args[0]) }
	default:
		return nil, fmt.Errorf("unknown vocab action %q", action)
	}
	if err != nil {
		return nil, err
	}

	return func(v article.Version) (article.Version, error) {
		voc, err := fn(v.Vocabulary)
		if err != nil {
			return v, err
		}
		v.Vocabulary = voc
		return v, nil
	}, nil
}

func grammarAction(action string, args []string) (func(article.Version) (article.Version, error), error) {
	type grammarFn func([]article.GrammarPoint) ([]article.GrammarPoint, error)
	var (
		fn  grammarFn
		ix  []int
		err error
	)

	switch action {
	case "add":
		err = wantArgs(action, args, 0)
		fn = func(p []article.GrammarPoint) ([]article.GrammarPoint, error) { return edit.AddPoint(p), nil }
	case "rm":
		if err = wantArgs(action, args, 1); err == nil {
			ix, err = indexes(args)
		}
		fn = func(p []article.GrammarPoint) ([]article.GrammarPoint, error) { return edit.DeletePoint(p, ix[0]) }
	case "title":
		if err = wantArgs(action, args, 2); err == nil {
			ix, err = indexes(args[:1])
		}
		fn = func(p []article.GrammarPoint) ([]article.GrammarPoint, error) { return edit.SetPointTitle(p, ix[0], args[1]) }
	case "explanation":
		if err = wantArgs(action, args, 2); err == nil {
			ix, err = indexes(args[:1])
		}
		fn = func(p []article.GrammarPoint) ([]article.GrammarPoint, error) {
			return edit.SetPointExplanation(p, ix[0], args[1])
		}
	case "example-add":
		if err = wantArgs(action, args, 1); err == nil {
			ix, err = indexes(args)
		}
		fn = func(p []article.GrammarPoint) ([]article.GrammarPoint, error) { return edit.AddExample(p, ix[0]) }
	case "example-rm":
		if err = wantArgs(action, args, 2); err == nil {
			ix, err = indexes(args)
		}
		fn = func(p []article.GrammarPoint) ([]article.GrammarPoint, error) { return edit.DeleteExample(p, ix[0], ix[1]) }
	case "example":
		if err = wantArgs(action, args, 4); err == nil {
			ix, err = indexes(args[:2])
		}
		fn = func(p []article.GrammarPoint) ([]article.GrammarPoint, error) {
			out, err := edit.SetExampleSource(p, ix[0], ix[1], args[2])
			if err != nil {
				return p, err
			}
			return edit.SetExampleTarget(out, ix[0], ix[1], args[3])
		}
	default:
		return nil, fmt.Errorf("unknown grammar action %q", action)
	}
	if err != nil {
		return nil, err
	}

	return func(v article.Version) (article.Version, error) {
		points, err := fn(v.GrammarPoints)
		if err != nil {
			return v, err
		}
		v.GrammarPoints = points
		return v, nil
	}, nil
}

func questionAction(action string, args []string) (func(article.Version) (article.Version, error), error) {
	type questionFn func([]article.QuizQuestion) ([]article.QuizQuestion, error)
	var (
		fn  questionFn
		ix  []int
		err error
	)

	switch action {
	case "add":
		err = wantArgs(action, args, 0)
		fn = func(q []article.QuizQuestion) ([]article.QuizQuestion, error) { return edit.AddQuestion(q), nil }
	case "rm":
		if err = wantArgs(action, args, 1); err == nil {
			ix, err = indexes(args)
		}
		fn = func(q []article.QuizQuestion) ([]article.QuizQuestion, error) { return edit.DeleteQuestion(q, ix[0]) }
	case "text":
		if err = wantArgs(action, args, 2); err == nil {
			ix, err = indexes(args[:1])
		}
		fn = func(q []article.QuizQuestion) ([]article.QuizQuestion, error) {
			return edit.SetQuestionText(q, ix[0], args[1])
		}
	case "option":
		if err = wantArgs(action, args, 3); err == nil {
			ix, err = indexes(args[:2])
		}
		fn = func(q []article.QuizQuestion) ([]article.QuizQuestion, error) {
			return edit.SetOption(q, ix[0], ix[1], args[2])
		}
	case "answer":
		if err = wantArgs(action, args, 2); err == nil {
			ix, err = indexes(args)
		}
		fn = func(q []article.QuizQuestion) ([]article.QuizQuestion, error) {
			return edit.SetCorrectAnswer(q, ix[0], ix[1])
		}
	default:
		return nil, fmt.Errorf("unknown question action %q", action)
	}
	if err != nil {
		return nil, err
	}

	return func(v article.Version) (article.Version, error) {
		qs, err := fn(v.Questions)
		if err != nil {
			return v, err
		}
		v.Questions = qs
		return v, nil
	}, nil
}
