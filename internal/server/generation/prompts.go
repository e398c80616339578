package generation

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/smartstudy/internal/server/models"
)

const (
	tokensFlashcards  = 1500
	tokensQuiz        = 3500
	tokensExplain     = 300
	tokensInteraction = 300
	tokensFeedback    = 250
	tokensExplanation = 300
	tokensChat        = 500
	tokensRegenerate  = 500
)

var (
	temperatureChat       float32 = 0.7
	temperatureFeedback   float32 = 0.5
	temperatureRegenerate float32 = 0.7
)

const systemPrompt = "You are a patient study assistant. You help students understand their course material. " +
	"Stay faithful to the source text and never invent facts that are not supported by it."

type summaryLength struct {
	words  string
	tokens int
}

var summaryLengths = map[models.LengthPreference]summaryLength{
	models.LengthShort:  {words: "60-120", tokens: 200},
	models.LengthMedium: {words: "150-250", tokens: 500},
	models.LengthLong:   {words: "300-500", tokens: 800},
}

func userMessage(content string) []models.ChatMessage {
	return []models.ChatMessage{{Role: "user", Content: content}}
}

func quoted(text string) string {
	return "\"\"\"\n" + strings.TrimSpace(text) + "\n\"\"\""
}

func summaryRequest(text string, opts models.SummaryOptions) Request {
	opts = opts.WithDefaults()
	length, ok := summaryLengths[opts.LengthPreference]
	if !ok {
		length = summaryLengths[models.LengthMedium]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Summarize the following study material in %s words.\n", length.words)

	switch {
	case opts.StylePreference == models.StyleBullets && opts.LengthPreference == models.LengthLong:
		b.WriteString("Format the summary as a bulleted list. Start every line with \"- \". ")
		b.WriteString("Put exactly one idea in each bullet. Do not nest bullets. ")
		b.WriteString("Do not add an introduction or a closing sentence outside the list.\n")
	case opts.StylePreference == models.StyleBullets:
		b.WriteString("Format the summary as a bulleted list. Start every line with \"- \".\n")
	default:
		b.WriteString("Write the summary as prose paragraphs. Do not use markdown headings or bullet points.\n")
	}

	if kw := trimAll(opts.Keywords); len(kw) > 0 {
		fmt.Fprintf(&b, "Make sure the summary covers these keywords: %s.\n", strings.Join(kw, ", "))
	}
	if neg := trimAll(opts.NegativeKeywords); len(neg) > 0 {
		fmt.Fprintf(&b, "Do not mention or focus on: %s.\n", strings.Join(neg, ", "))
	}
	if ap := strings.TrimSpace(opts.AudiencePurpose); ap != "" {
		fmt.Fprintf(&b, "Tailor the summary to this audience and purpose: %s.\n", ap)
	}

	b.WriteString("Respond with the summary only.\n\nText:\n")
	b.WriteString(quoted(text))

	return Request{
		Artifact:  ArtifactSummary,
		System:    systemPrompt,
		Messages:  userMessage(b.String()),
		MaxTokens: length.tokens,
	}
}

func flashcardsRequest(text string) Request {
	prompt := "Create flashcards for the key concepts in the following study material.\n" +
		"Respond with only a JSON array. Each element must be an object with the keys " +
		"\"term\" and \"definition\". Keep each definition to one or two sentences, based on the text.\n" +
		"Example: [{\"term\": \"Photosynthesis\", \"definition\": \"The process plants use to turn light into chemical energy.\"}]\n\n" +
		"Text:\n" + quoted(text)

	return Request{
		Artifact:  ArtifactFlashcards,
		System:    systemPrompt,
		Messages:  userMessage(prompt),
		MaxTokens: tokensFlashcards,
	}
}

var questionTypeRules = map[models.QuestionType]string{
	models.QuestionMultipleChoice: "multiple_choice: 4 options, \"correctAnswer\" is the exact text of the one correct option",
	models.QuestionSelectAll:      "select_all: 4 to 6 options, \"correctAnswer\" is an array with the exact text of every correct option",
	models.QuestionShortAnswer:    "short_answer: \"options\" is an empty array, \"correctAnswer\" is a short model answer",
}

func quizRequest(text string, opts models.QuizOptions) Request {
	opts = opts.WithDefaults()

	types := make([]string, 0, len(opts.QuestionTypes))
	rules := make([]string, 0, len(opts.QuestionTypes))
	for _, t := range opts.QuestionTypes {
		types = append(types, string(t))
		if r, ok := questionTypeRules[t]; ok {
			rules = append(rules, "- "+r)
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Write a quiz of exactly %d %s questions about the following study material.\n",
		opts.NumQuestions, opts.Difficulty)
	fmt.Fprintf(&b, "Use only these question types: %s.\n", strings.Join(types, ", "))
	b.WriteString(strings.Join(rules, "\n"))
	b.WriteString("\nRespond with only a JSON array. Each element must be an object with the keys " +
		"\"id\" (1-based number), \"question\", \"questionType\", \"options\", \"correctAnswer\" and \"explanation\".\n\n")
	b.WriteString("Text:\n")
	b.WriteString(quoted(text))

	return Request{
		Artifact:  ArtifactQuiz,
		System:    systemPrompt,
		Messages:  userMessage(b.String()),
		MaxTokens: tokensQuiz,
	}
}

func explainSnippetRequest(snippet, surrounding string) Request {
	var b strings.Builder
	b.WriteString("Explain the following passage in plain language for a student. Keep it under 150 words.\n\n")
	b.WriteString("Passage:\n")
	b.WriteString(quoted(snippet))
	if s := strings.TrimSpace(surrounding); s != "" {
		b.WriteString("\n\nSurrounding context:\n")
		b.WriteString(quoted(s))
	}

	return Request{
		Artifact:  ArtifactExplanation,
		System:    systemPrompt,
		Messages:  userMessage(b.String()),
		MaxTokens: tokensExplain,
	}
}

var flashcardActionPrompts = map[models.FlashcardAction]string{
	models.FlashcardExplain:  "Explain this concept in more depth, in simple terms.",
	models.FlashcardExample:  "Give one concrete, real-world example of this concept.",
	models.FlashcardMnemonic: "Create a short, memorable mnemonic to help remember this concept.",
}

func flashcardRequest(card models.Flashcard, action models.FlashcardAction, question string) Request {
	var b strings.Builder
	fmt.Fprintf(&b, "Flashcard\nTerm: %s\nDefinition: %s\n\n", card.Term, card.Definition)
	if action == models.FlashcardAsk {
		fmt.Fprintf(&b, "Answer the student's question about this flashcard: %s\n", strings.TrimSpace(question))
	} else {
		b.WriteString(flashcardActionPrompts[action])
		b.WriteString("\n")
	}
	b.WriteString("Keep the answer under 120 words.")

	return Request{
		Artifact:  ArtifactInteraction,
		System:    systemPrompt,
		Messages:  userMessage(b.String()),
		MaxTokens: tokensInteraction,
	}
}

func describeQuestion(q models.QuizQuestion) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Question (%s): %s\n", q.QuestionType, q.Question)
	for i, o := range q.Options {
		fmt.Fprintf(&b, "  %c. %s\n", 'A'+rune(i%26), o)
	}
	fmt.Fprintf(&b, "Correct answer: %s\n", q.CorrectAnswer)
	if q.Explanation != "" {
		fmt.Fprintf(&b, "Explanation: %s\n", q.Explanation)
	}
	return b.String()
}

func feedbackRequest(q models.QuizQuestion, userAnswer models.Answer, correct *bool) Request {
	var b strings.Builder
	b.WriteString(describeQuestion(q))
	fmt.Fprintf(&b, "Student's answer: %s\n\n", userAnswer)

	switch {
	case correct == nil:
		b.WriteString("Decide whether the student's answer is essentially correct, then give brief, encouraging feedback.")
	case *correct:
		b.WriteString("The student's answer is correct. Confirm it and reinforce why in two or three sentences.")
	default:
		b.WriteString("The student's answer is incorrect. Explain the mistake gently and point them to the right answer in two or three sentences.")
	}

	return Request{
		Artifact:    ArtifactFeedback,
		System:      systemPrompt,
		Messages:    userMessage(b.String()),
		MaxTokens:   tokensFeedback,
		Temperature: &temperatureFeedback,
	}
}

func explanationRequest(q models.QuizQuestion) Request {
	prompt := describeQuestion(q) + "\nExplain step by step why the correct answer is right" +
		" and, where there are options, why the others are wrong."

	return Request{
		Artifact:  ArtifactExplanation,
		System:    systemPrompt,
		Messages:  userMessage(prompt),
		MaxTokens: tokensExplanation,
	}
}

func chatRequest(q models.QuizQuestion, history []models.ChatMessage, message string) Request {
	system := systemPrompt + "\nYou are discussing this quiz question with the student:\n" + describeQuestion(q) +
		"Answer follow-up questions concisely."

	messages := make([]models.ChatMessage, 0, len(history)+1)
	for _, m := range history {
		messages = append(messages, models.ChatMessage{Role: m.Role, Content: m.Content})
	}
	messages = append(messages, models.ChatMessage{Role: "user", Content: message})

	return Request{
		Artifact:    ArtifactChat,
		System:      system,
		Messages:    messages,
		MaxTokens:   tokensChat,
		Temperature: &temperatureChat,
	}
}

func regenerateRequest(text string, q models.QuizQuestion, difficulty models.Difficulty) Request {
	if difficulty == "" {
		difficulty = models.DifficultyMedium
	}
	original, _ := json.Marshal(q)

	var b strings.Builder
	fmt.Fprintf(&b, "Write one new %s quiz question of type %s to replace this one:\n%s\n", difficulty, q.QuestionType, original)
	if rule, ok := questionTypeRules[q.QuestionType]; ok {
		fmt.Fprintf(&b, "Rule for this type: %s.\n", rule)
	}
	b.WriteString("Test a different aspect of the material. Respond with only a JSON object with the keys " +
		"\"question\", \"questionType\", \"options\", \"correctAnswer\" and \"explanation\".")
	if t := strings.TrimSpace(text); t != "" {
		b.WriteString("\n\nText:\n")
		b.WriteString(quoted(t))
	}

	return Request{
		Artifact:    ArtifactQuestion,
		System:      systemPrompt,
		Messages:    userMessage(b.String()),
		MaxTokens:   tokensRegenerate,
		Temperature: &temperatureRegenerate,
	}
}
