package article

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// LegacyLanguage is the translation column that flat vocabulary rows migrate into.
const LegacyLanguage = "japanese"

// FromRows converts flat vocabulary rows into the columnar shape, putting
// every translation under lang.
func FromRows(rows []VocabularyEntry, lang string) Vocabulary {
	v := Vocabulary{
		Words:        make([]string, 0, len(rows)),
		Category:     make([]string, 0, len(rows)),
		Translations: map[string][]string{},
	}
	col := make([]string, 0, len(rows))
	for _, r := range rows {
		v.Words = append(v.Words, r.Word)
		v.Category = append(v.Category, r.Category)
		col = append(col, r.Translation)
	}
	if len(rows) > 0 {
		v.Translations[lang] = col
	}
	return v
}

// Rows renders the vocabulary as flat rows with translations from lang.
func (v Vocabulary) Rows(lang string) []VocabularyEntry {
	v = v.Aligned()
	rows := make([]VocabularyEntry, len(v.Words))
	for i := range v.Words {
		rows[i] = VocabularyEntry{
			Word:     v.Words[i],
			Category: v.Category[i],
		}
		if col, ok := v.Translations[lang]; ok {
			rows[i].Translation = col[i]
		}
	}
	return rows
}

func (v Vocabulary) Len() int {
	return len(v.Words)
}

// Languages returns the translation languages in a stable order.
func (v Vocabulary) Languages() []string {
	langs := make([]string, 0, len(v.Translations))
	for lang := range v.Translations {
		langs = append(langs, lang)
	}
	slices.Sort(langs)
	return langs
}

// Aligned returns a copy where every column has the length of the longest one.
func (v Vocabulary) Aligned() Vocabulary {
	n := len(v.Words)
	if len(v.Category) > n {
		n = len(v.Category)
	}
	for _, col := range v.Translations {
		if len(col) > n {
			n = len(col)
		}
	}

	out := Vocabulary{
		Words:        pad(v.Words, n),
		Category:     pad(v.Category, n),
		Translations: make(map[string][]string, len(v.Translations)),
	}
	for lang, col := range v.Translations {
		out.Translations[lang] = pad(col, n)
	}
	return out
}

func pad(col []string, n int) []string {
	out := make([]string, n)
	copy(out, col)
	return out
}

type vocabularyDoc Vocabulary

// decodeStrict decodes one JSON value into v and rejects keys v does not declare.
func decodeStrict(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func (v *Vocabulary) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*v = Vocabulary{}
	case len(data) > 0 && data[0] == '[':
		var rows []VocabularyEntry
		if err := decodeStrict(data, &rows); err != nil {
			return err
		}
		*v = FromRows(rows, LegacyLanguage)
	default:
		var doc vocabularyDoc
		if err := decodeStrict(data, &doc); err != nil {
			return err
		}
		*v = Vocabulary(doc)
	}
	*v = v.Aligned()
	return nil
}

func (v *Vocabulary) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	switch t {
	case bsontype.Null, bsontype.Undefined:
		*v = Vocabulary{}
	case bsontype.Array:
		var rows []VocabularyEntry
		if err := (bson.RawValue{Type: t, Value: data}).Unmarshal(&rows); err != nil {
			return err
		}
		*v = FromRows(rows, LegacyLanguage)
	case bsontype.EmbeddedDocument:
		var doc vocabularyDoc
		if err := bson.Unmarshal(data, &doc); err != nil {
			return err
		}
		*v = Vocabulary(doc)
	default:
		return fmt.Errorf("cannot decode vocabulary from BSON %v", t)
	}
	*v = v.Aligned()
	return nil
}

type grammarExampleDoc struct {
	SourceText string `json:"sourceText" bson:"sourceText"`
	TargetText string `json:"targetText" bson:"targetText"`
	French     string `json:"french" bson:"french"`
	Japanese   string `json:"japanese" bson:"japanese"`
	// subdocument id written by older exports; ignored
	LegacyID json.RawMessage `json:"_id,omitempty" bson:"-"`
}

func (d grammarExampleDoc) example() GrammarExample {
	ex := GrammarExample{SourceText: d.SourceText, TargetText: d.TargetText}
	if ex.SourceText == "" {
		ex.SourceText = d.French
	}
	if ex.TargetText == "" {
		ex.TargetText = d.Japanese
	}
	return ex
}

func (e *GrammarExample) UnmarshalJSON(data []byte) error {
	var doc grammarExampleDoc
	if err := decodeStrict(data, &doc); err != nil {
		return err
	}
	*e = doc.example()
	return nil
}

func (e *GrammarExample) UnmarshalBSON(data []byte) error {
	var doc grammarExampleDoc
	if err := bson.Unmarshal(data, &doc); err != nil {
		return err
	}
	*e = doc.example()
	return nil
}

func (q *QuizQuestion) UnmarshalJSON(data []byte) error {
	var doc struct {
		ID            int      `json:"id"`
		QuestionText  string   `json:"questionText"`
		Options       []string `json:"options"`
		CorrectAnswer any      `json:"correctAnswer"`
		LegacyID      any      `json:"_id"`
	}
	if err := decodeStrict(data, &doc); err != nil {
		return err
	}
	answer, err := resolveAnswer(doc.Options, doc.CorrectAnswer)
	if err != nil {
		return err
	}
	*q = QuizQuestion{
		ID:            doc.ID,
		QuestionText:  doc.QuestionText,
		Options:       doc.Options,
		CorrectAnswer: answer,
	}
	return nil
}

func (q *QuizQuestion) UnmarshalBSON(data []byte) error {
	var doc struct {
		ID            int           `bson:"id"`
		QuestionText  string        `bson:"questionText"`
		Options       []string      `bson:"options"`
		CorrectAnswer bson.RawValue `bson:"correctAnswer"`
	}
	if err := bson.Unmarshal(data, &doc); err != nil {
		return err
	}

	var raw any
	switch doc.CorrectAnswer.Type {
	case bsontype.String:
		raw = doc.CorrectAnswer.StringValue()
	case bsontype.Int32:
		raw = float64(doc.CorrectAnswer.Int32())
	case bsontype.Int64:
		raw = float64(doc.CorrectAnswer.Int64())
	case bsontype.Double:
		raw = doc.CorrectAnswer.Double()
	}

	answer, err := resolveAnswer(doc.Options, raw)
	if err != nil {
		return err
	}
	*q = QuizQuestion{
		ID:            doc.ID,
		QuestionText:  doc.QuestionText,
		Options:       doc.Options,
		CorrectAnswer: answer,
	}
	return nil
}

// resolveAnswer turns a legacy option index into the literal option text.
func resolveAnswer(options []string, raw any) (string, error) {
	switch v := raw.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case float64:
		if v != math.Trunc(v) || v < 0 || v >= float64(len(options)) {
			return "", &ValidationError{
				Field:  "correctAnswer",
				Reason: fmt.Sprintf("index %v out of range for %d options", v, len(options)),
			}
		}
		return options[int(v)], nil
	default:
		return "", &ValidationError{Field: "correctAnswer", Reason: fmt.Sprintf("has unsupported type %T", raw)}
	}
}

// Normalize enforces the structural invariants of an article: both versions
// present with non-nil collections, aligned vocabulary, unique trimmed labels
// and a UTC publish date. The input is not modified.
func Normalize(f Fields) Fields {
	f = f.Clone()
	f.Labels = NormalizeLabels(f.Labels)
	if f.PublishDate != nil {
		t := f.PublishDate.UTC()
		f.PublishDate = &t
	}
	f.EasyVersion = NormalizeVersion(f.EasyVersion)
	f.MediumVersion = NormalizeVersion(f.MediumVersion)
	return f
}

func NormalizeVersion(v Version) Version {
	v = v.Clone()
	v.Vocabulary = v.Vocabulary.Aligned()
	if v.GrammarPoints == nil {
		v.GrammarPoints = []GrammarPoint{}
	}
	for i := range v.GrammarPoints {
		if v.GrammarPoints[i].Examples == nil {
			v.GrammarPoints[i].Examples = []GrammarExample{}
		}
	}
	if v.Questions == nil {
		v.Questions = []QuizQuestion{}
	}
	for i := range v.Questions {
		if v.Questions[i].Options == nil {
			v.Questions[i].Options = []string{}
		}
	}
	return v
}

// NormalizeLabels trims labels, drops empty ones and keeps the first
// occurrence of each value.
func NormalizeLabels(labels []string) []string {
	out := make([]string, 0, len(labels))
	seen := make(map[string]struct{}, len(labels))
	for _, l := range labels {
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}
	return out
}

func Validate(f Fields) error {
	if strings.TrimSpace(f.Title) == "" {
		return &ValidationError{Field: "title", Reason: "is required"}
	}
	return nil
}

func validatePatch(p Patch) error {
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return &ValidationError{Field: "title", Reason: "must not be empty"}
	}
	return nil
}

// Empty returns the skeleton a brand-new article starts from.
func Empty() Fields {
	return Normalize(Fields{})
}
