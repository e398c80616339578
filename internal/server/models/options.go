package models

import (
	"fmt"
	"strings"
)

// OutputFormat is a client-selected artifact to generate. FormatAll
// requests every artifact.
type OutputFormat string

const (
	FormatSummary    OutputFormat = "summary"
	FormatFlashcards OutputFormat = "flashcards"
	FormatQuiz       OutputFormat = "quiz"
	FormatAll        OutputFormat = "all"
)

// ExpandFormats resolves "all", drops duplicates and returns the artifacts
// in canonical order (summary, flashcards, quiz).
func ExpandFormats(formats []OutputFormat) ([]OutputFormat, error) {
	if len(formats) == 0 {
		return nil, fmt.Errorf("at least one output format is required")
	}

	want := map[OutputFormat]bool{}
	for _, f := range formats {
		switch OutputFormat(strings.ToLower(strings.TrimSpace(string(f)))) {
		case FormatAll:
			want[FormatSummary], want[FormatFlashcards], want[FormatQuiz] = true, true, true
		case FormatSummary:
			want[FormatSummary] = true
		case FormatFlashcards:
			want[FormatFlashcards] = true
		case FormatQuiz:
			want[FormatQuiz] = true
		default:
			return nil, fmt.Errorf("unknown output format %q", f)
		}
	}

	out := make([]OutputFormat, 0, 3)
	for _, f := range []OutputFormat{FormatSummary, FormatFlashcards, FormatQuiz} {
		if want[f] {
			out = append(out, f)
		}
	}
	return out, nil
}

type LengthPreference string

const (
	LengthShort  LengthPreference = "short"
	LengthMedium LengthPreference = "medium"
	LengthLong   LengthPreference = "long"
)

type StylePreference string

const (
	StyleParagraph StylePreference = "paragraph"
	StyleBullets   StylePreference = "bullets"
)

// SummaryOptions shape the summary prompt.
type SummaryOptions struct {
	LengthPreference LengthPreference `json:"lengthPreference"`
	StylePreference  StylePreference  `json:"stylePreference"`
	Keywords         []string         `json:"keywords"`
	AudiencePurpose  string           `json:"audiencePurpose"`
	NegativeKeywords []string         `json:"negativeKeywords"`
}

// WithDefaults fills unset preferences.
func (o SummaryOptions) WithDefaults() SummaryOptions {
	if o.LengthPreference == "" {
		o.LengthPreference = LengthMedium
	}
	if o.StylePreference == "" {
		o.StylePreference = StyleParagraph
	}
	return o
}

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

const (
	DefaultQuizQuestions = 5
	MaxQuizQuestions     = 20
)

// QuizOptions shape the quiz prompt.
type QuizOptions struct {
	QuestionTypes []QuestionType `json:"questionTypes"`
	NumQuestions  int            `json:"numQuestions"`
	Difficulty    Difficulty     `json:"difficulty"`
}

// WithDefaults fills unset fields and clamps the question count.
func (o QuizOptions) WithDefaults() QuizOptions {
	if len(o.QuestionTypes) == 0 {
		o.QuestionTypes = []QuestionType{QuestionMultipleChoice}
	}
	if o.NumQuestions <= 0 {
		o.NumQuestions = DefaultQuizQuestions
	}
	if o.NumQuestions > MaxQuizQuestions {
		o.NumQuestions = MaxQuizQuestions
	}
	if o.Difficulty == "" {
		o.Difficulty = DifficultyMedium
	}
	return o
}

// FlashcardAction selects the follow-up performed on a flashcard.
type FlashcardAction string

const (
	FlashcardExplain  FlashcardAction = "explain"
	FlashcardExample  FlashcardAction = "example"
	FlashcardMnemonic FlashcardAction = "mnemonic"
	FlashcardAsk      FlashcardAction = "ask"
)

// ChatMessage is one turn of a quiz chat.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
