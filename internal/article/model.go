package article

import (
	"time"
)

type Level string

const (
	Easy   Level = "easy"
	Medium Level = "medium"
)

func (l Level) Valid() bool {
	return l == Easy || l == Medium
}

// Article is the persisted record. ID and the timestamps are owned by the store.
type Article struct {
	ID        string `json:"id" bson:"-"`
	Fields    `bson:",inline"`
	Published bool      `json:"published" bson:"published"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// Fields is the client-editable part of an article. A local draft stores
// exactly this shape.
type Fields struct {
	Title         string     `json:"title" bson:"title"`
	SourceURL     string     `json:"sourceUrl,omitempty" bson:"sourceUrl,omitempty"`
	ImageURL      string     `json:"imageUrl,omitempty" bson:"imageUrl,omitempty"`
	PublishDate   *time.Time `json:"publishDate,omitempty" bson:"publishDate,omitempty"`
	Labels        []string   `json:"labels" bson:"labels"`
	EasyVersion   Version    `json:"easyVersion" bson:"easyVersion"`
	MediumVersion Version    `json:"mediumVersion" bson:"mediumVersion"`
}

type Version struct {
	Content       string         `json:"content" bson:"content"`
	AudioURL      string         `json:"audioUrl" bson:"audioUrl"`
	Vocabulary    Vocabulary     `json:"vocabulary" bson:"vocabulary"`
	GrammarPoints []GrammarPoint `json:"grammarPoints" bson:"grammarPoints"`
	Questions     []QuizQuestion `json:"questions" bson:"questions"`
}

type Category string

const (
	Noun        Category = "noun"
	Verb1       Category = "verb1"
	Verb2       Category = "verb2"
	Verb3       Category = "verb3"
	Adjective   Category = "adjective"
	Adverb      Category = "adverb"
	Expression  Category = "expression"
	Preposition Category = "preposition"
	Other       Category = "other"
)

var Categories = []Category{Noun, Verb1, Verb2, Verb3, Adjective, Adverb, Expression, Preposition, Other}

// Vocabulary is stored column-wise: Words, Category and every translation
// column are aligned by row index.
type Vocabulary struct {
	Words        []string            `json:"words" bson:"words"`
	Category     []string            `json:"category" bson:"category"`
	Translations map[string][]string `json:"translations" bson:"translations"`
}

// VocabularyEntry is the flat per-row shape written by older revisions.
type VocabularyEntry struct {
	Word        string `json:"word" bson:"word"`
	Translation string `json:"translation" bson:"translation"`
	Category    string `json:"category" bson:"category"`
}

type GrammarPoint struct {
	Title       string           `json:"title" bson:"title"`
	Explanation string           `json:"explanation" bson:"explanation"`
	Examples    []GrammarExample `json:"examples" bson:"examples"`
}

type GrammarExample struct {
	SourceText string `json:"sourceText" bson:"sourceText"`
	TargetText string `json:"targetText" bson:"targetText"`
}

type QuizQuestion struct {
	ID            int      `json:"id,omitempty" bson:"id,omitempty"`
	QuestionText  string   `json:"questionText" bson:"questionText"`
	Options       []string `json:"options" bson:"options"`
	CorrectAnswer string   `json:"correctAnswer" bson:"correctAnswer"`
}

// Summary is the list projection.
type Summary struct {
	ID          string     `json:"id" bson:"-"`
	Title       string     `json:"title" bson:"title"`
	PublishDate *time.Time `json:"publishDate,omitempty" bson:"publishDate,omitempty"`
	Published   bool       `json:"published" bson:"published"`
}

// Patch carries the attributes supplied to an update; nil means untouched.
type Patch struct {
	Title         *string    `json:"title,omitempty"`
	SourceURL     *string    `json:"sourceUrl,omitempty"`
	ImageURL      *string    `json:"imageUrl,omitempty"`
	PublishDate   *time.Time `json:"publishDate,omitempty"`
	Published     *bool      `json:"published,omitempty"`
	Labels        *[]string  `json:"labels,omitempty"`
	EasyVersion   *Version   `json:"easyVersion,omitempty"`
	MediumVersion *Version   `json:"mediumVersion,omitempty"`
}

// PatchFrom builds a patch replacing every editable attribute. Published is
// left alone: publishing is its own operation.
func PatchFrom(f Fields) Patch {
	f = f.Clone()
	return Patch{
		Title:         &f.Title,
		SourceURL:     &f.SourceURL,
		ImageURL:      &f.ImageURL,
		PublishDate:   f.PublishDate,
		Labels:        &f.Labels,
		EasyVersion:   &f.EasyVersion,
		MediumVersion: &f.MediumVersion,
	}
}

func (f Fields) Version(l Level) Version {
	if l == Medium {
		return f.MediumVersion
	}
	return f.EasyVersion
}

// WithVersion returns a copy of f with the version at l replaced.
func (f Fields) WithVersion(l Level, v Version) Fields {
	if l == Medium {
		f.MediumVersion = v
	} else {
		f.EasyVersion = v
	}
	return f
}

// Clone returns a deep copy sharing no slices or maps with f.
func (f Fields) Clone() Fields {
	out := f
	if f.PublishDate != nil {
		t := *f.PublishDate
		out.PublishDate = &t
	}
	out.Labels = cloneSlice(f.Labels)
	out.EasyVersion = f.EasyVersion.Clone()
	out.MediumVersion = f.MediumVersion.Clone()
	return out
}

func (v Version) Clone() Version {
	out := v
	out.Vocabulary = v.Vocabulary.Clone()
	if v.GrammarPoints != nil {
		out.GrammarPoints = make([]GrammarPoint, len(v.GrammarPoints))
		for i, g := range v.GrammarPoints {
			g.Examples = cloneSlice(g.Examples)
			out.GrammarPoints[i] = g
		}
	}
	if v.Questions != nil {
		out.Questions = make([]QuizQuestion, len(v.Questions))
		for i, q := range v.Questions {
			q.Options = cloneSlice(q.Options)
			out.Questions[i] = q
		}
	}
	return out
}

func (v Vocabulary) Clone() Vocabulary {
	out := Vocabulary{
		Words:    cloneSlice(v.Words),
		Category: cloneSlice(v.Category),
	}
	if v.Translations != nil {
		out.Translations = make(map[string][]string, len(v.Translations))
		for lang, col := range v.Translations {
			out.Translations[lang] = cloneSlice(col)
		}
	}
	return out
}

func cloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	return append(make([]T, 0, len(s)), s...)
}
