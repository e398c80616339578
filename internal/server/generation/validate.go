package generation

import (
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/smartstudy/internal/server/models"
)

type rawFlashcard struct {
	Term       string `json:"term"`
	Definition string `json:"definition"`
}

// rawQuestion is what models actually send: ids may be strings or missing
// and the type key is sometimes "type".
type rawQuestion struct {
	ID            json.RawMessage `json:"id"`
	Question      string          `json:"question"`
	QuestionType  string          `json:"questionType"`
	Type          string          `json:"type"`
	Options       []string        `json:"options"`
	CorrectAnswer models.Answer   `json:"correctAnswer"`
	Explanation   string          `json:"explanation"`
}

func parseFlashcards(output string) ([]models.Flashcard, error) {
	raw, err := ExtractJSON(output)
	if err != nil {
		return nil, malformed(ArtifactFlashcards, "%v", err)
	}
	items, err := decodeList[rawFlashcard](raw, "flashcards", "cards")
	if err != nil {
		return nil, malformed(ArtifactFlashcards, "%v", err)
	}
	return validateFlashcards(items)
}

func validateFlashcards(items []rawFlashcard) ([]models.Flashcard, error) {
	if len(items) == 0 {
		return nil, malformed(ArtifactFlashcards, "no flashcards")
	}

	cards := make([]models.Flashcard, 0, len(items))
	for i, it := range items {
		term, def := strings.TrimSpace(it.Term), strings.TrimSpace(it.Definition)
		if term == "" || def == "" {
			return nil, malformed(ArtifactFlashcards, "flashcard %d: term and definition are required", i+1)
		}
		cards = append(cards, models.Flashcard{Term: term, Definition: def})
	}
	return cards, nil
}

func parseQuiz(output string, limit int, allowed []models.QuestionType) ([]models.QuizQuestion, error) {
	raw, err := ExtractJSON(output)
	if err != nil {
		return nil, malformed(ArtifactQuiz, "%v", err)
	}
	items, err := decodeList[rawQuestion](raw, "quiz", "questions")
	if err != nil {
		return nil, malformed(ArtifactQuiz, "%v", err)
	}
	return validateQuiz(items, limit, allowed)
}

// validateQuiz checks every question, truncates to limit (when positive) and
// renumbers 1..n if the ids are missing or repeated. When allowed is not
// empty, every question must use one of those types.
func validateQuiz(items []rawQuestion, limit int, allowed []models.QuestionType) ([]models.QuizQuestion, error) {
	if len(items) == 0 {
		return nil, malformed(ArtifactQuiz, "no questions")
	}
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}

	quiz := make([]models.QuizQuestion, 0, len(items))
	for i, it := range items {
		q, err := normalizeQuestion(it)
		if err != nil {
			return nil, malformed(ArtifactQuiz, "question %d: %v", i+1, err)
		}
		if len(allowed) > 0 && !slices.Contains(allowed, q.QuestionType) {
			return nil, malformed(ArtifactQuiz, "question %d: type %q was not requested", i+1, q.QuestionType)
		}
		quiz = append(quiz, q)
	}

	renumber(quiz)
	return quiz, nil
}

func parseQuestion(output string) (models.QuizQuestion, error) {
	raw, err := ExtractJSON(output)
	if err != nil {
		return models.QuizQuestion{}, malformed(ArtifactQuestion, "%v", err)
	}

	var it rawQuestion
	if raw[0] == '[' {
		items, err := decodeList[rawQuestion](raw)
		if err != nil || len(items) == 0 {
			return models.QuizQuestion{}, malformed(ArtifactQuestion, "expected a question object")
		}
		it = items[0]
	} else {
		var wrapper struct {
			Question *rawQuestion `json:"question"`
		}
		// {"question": {...}} wraps; {"question": "text", ...} is the question itself
		if json.Unmarshal(raw, &wrapper) == nil && wrapper.Question != nil {
			it = *wrapper.Question
		} else if err := json.Unmarshal(raw, &it); err != nil {
			return models.QuizQuestion{}, malformed(ArtifactQuestion, "%v", err)
		}
	}

	q, err := normalizeQuestion(it)
	if err != nil {
		return models.QuizQuestion{}, malformed(ArtifactQuestion, "%v", err)
	}
	return q, nil
}

func normalizeQuestion(it rawQuestion) (models.QuizQuestion, error) {
	q := models.QuizQuestion{
		ID:          parseID(it.ID),
		Question:    strings.TrimSpace(it.Question),
		Explanation: strings.TrimSpace(it.Explanation),
	}
	if q.Question == "" {
		return q, fmt.Errorf("question text is required")
	}

	typ := it.QuestionType
	if typ == "" {
		typ = it.Type
	}
	q.QuestionType = normalizeType(typ)
	if !q.QuestionType.Valid() {
		return q, fmt.Errorf("unknown question type %q", typ)
	}
	if it.CorrectAnswer.IsZero() {
		return q, fmt.Errorf("correct answer is required")
	}

	options := trimAll(it.Options)

	switch q.QuestionType {
	case models.QuestionMultipleChoice:
		if len(options) < 2 {
			return q, fmt.Errorf("multiple_choice needs at least two options")
		}
		if len(it.CorrectAnswer.Values) != 1 {
			return q, fmt.Errorf("multiple_choice needs exactly one correct answer")
		}
		answer, ok := findOption(options, it.CorrectAnswer.Values[0])
		if !ok {
			return q, fmt.Errorf("correct answer %q is not one of the options", it.CorrectAnswer.Values[0])
		}
		q.Options = options
		q.CorrectAnswer = models.SingleAnswer(answer)

	case models.QuestionSelectAll:
		if len(options) < 2 {
			return q, fmt.Errorf("select_all needs at least two options")
		}
		answers := make([]string, 0, len(it.CorrectAnswer.Values))
		for _, v := range trimAll(it.CorrectAnswer.Values) {
			answer, ok := findOption(options, v)
			if !ok {
				return q, fmt.Errorf("correct answer %q is not one of the options", v)
			}
			if !slices.Contains(answers, answer) {
				answers = append(answers, answer)
			}
		}
		q.Options = options
		q.CorrectAnswer = models.MultiAnswer(answers...)

	case models.QuestionShortAnswer:
		q.Options = []string{}
		q.CorrectAnswer = models.SingleAnswer(strings.TrimSpace(it.CorrectAnswer.String()))
	}

	return q, nil
}

func normalizeType(s string) models.QuestionType {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer("-", "_", " ", "_").Replace(s)
	switch s {
	case "mcq", "multiple":
		return models.QuestionMultipleChoice
	case "select_all_that_apply", "multi_select":
		return models.QuestionSelectAll
	case "short", "open_ended":
		return models.QuestionShortAnswer
	}
	return models.QuestionType(s)
}

func findOption(options []string, answer string) (string, bool) {
	answer = strings.TrimSpace(answer)
	for _, o := range options {
		if strings.EqualFold(o, answer) {
			return o, true
		}
	}
	return "", false
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func parseID(raw json.RawMessage) int {
	s := strings.Trim(strings.TrimSpace(string(raw)), `"`)
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0
	}
	return n
}

func renumber(quiz []models.QuizQuestion) {
	seen := make(map[int]bool, len(quiz))
	ok := true
	for _, q := range quiz {
		if q.ID <= 0 || seen[q.ID] {
			ok = false
			break
		}
		seen[q.ID] = true
	}
	if ok {
		return
	}
	for i := range quiz {
		quiz[i].ID = i + 1
	}
}

// parseText accepts any non-blank model text.
func parseText(artifact Artifact, output string) (string, error) {
	text := strings.TrimSpace(output)
	if text == "" {
		return "", malformed(artifact, "empty response")
	}
	return text, nil
}
