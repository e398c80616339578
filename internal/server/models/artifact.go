package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
)

// Flashcard is a term/definition pair.
type Flashcard struct {
	Term       string `json:"term"`
	Definition string `json:"definition"`
}

type QuestionType string

const (
	QuestionMultipleChoice QuestionType = "multiple_choice"
	QuestionSelectAll      QuestionType = "select_all"
	QuestionShortAnswer    QuestionType = "short_answer"
)

// Valid reports whether t is one of the supported question types.
func (t QuestionType) Valid() bool {
	switch t {
	case QuestionMultipleChoice, QuestionSelectAll, QuestionShortAnswer:
		return true
	}
	return false
}

// QuizQuestion is a single quiz item. CorrectAnswer holds one value for
// multiple_choice and short_answer and a set for select_all.
type QuizQuestion struct {
	ID            int          `json:"id"`
	Question      string       `json:"question"`
	QuestionType  QuestionType `json:"questionType"`
	Options       []string     `json:"options"`
	CorrectAnswer Answer       `json:"correctAnswer"`
	Explanation   string       `json:"explanation"`
}

// Answer is either a single string or a list of strings on the wire.
type Answer struct {
	Values   []string
	Multiple bool
}

// SingleAnswer builds a one-value answer.
func SingleAnswer(v string) Answer {
	return Answer{Values: []string{v}}
}

// MultiAnswer builds a set answer (select_all).
func MultiAnswer(v ...string) Answer {
	return Answer{Values: v, Multiple: true}
}

// IsZero reports whether no non-blank value is present.
func (a Answer) IsZero() bool {
	for _, v := range a.Values {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// String joins the values with ", ".
func (a Answer) String() string {
	return strings.Join(a.Values, ", ")
}

// Matches compares two answers as case-insensitive sets of trimmed values.
func (a Answer) Matches(other Answer) bool {
	left, right := normalizedSet(a.Values), normalizedSet(other.Values)
	if len(left) == 0 || len(left) != len(right) {
		return false
	}
	for v := range left {
		if _, ok := right[v]; !ok {
			return false
		}
	}
	return true
}

func normalizedSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		if n := strings.ToLower(strings.TrimSpace(v)); n != "" {
			set[n] = struct{}{}
		}
	}
	return set
}

func (a Answer) MarshalJSON() ([]byte, error) {
	if a.Multiple {
		if a.Values == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(a.Values)
	}
	if len(a.Values) == 0 {
		return json.Marshal("")
	}
	return json.Marshal(a.Values[0])
}

func (a *Answer) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*a = Answer{}
		return nil
	case len(b) > 0 && b[0] == '[':
		var values []string
		if err := json.Unmarshal(b, &values); err != nil {
			return err
		}
		*a = Answer{Values: values, Multiple: true}
		return nil
	case len(b) > 0 && b[0] == '"':
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*a = SingleAnswer(v)
		return nil
	default:
		return errors.New("answer must be a string or a list of strings")
	}
}
