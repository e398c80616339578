package rest

import (
	"github.com/dmitrijs2005/smartstudy/internal/server/models"
	"github.com/gofiber/fiber/v2"
)

func (s *Server) explainSnippet(c *fiber.Ctx) error {
	var req explainSnippetRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	out, err := s.interactions.ExplainSnippet(c.UserContext(), req.Snippet, req.Context)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"explanation": out})
}

func (s *Server) flashcardInteract(c *fiber.Ctx) error {
	var req flashcardInteractRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	card := models.Flashcard{Term: req.Term, Definition: req.Definition}
	out, err := s.interactions.FlashcardInteract(c.UserContext(), card, req.Action, req.Question)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"response": out})
}

func (s *Server) quizGenerate(c *fiber.Ctx) error {
	var req quizGenerateRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	quiz, err := s.interactions.GenerateQuiz(c.UserContext(), req.Text, req.QuizOptions)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"quiz": quiz})
}

func (s *Server) quizAnswerFeedback(c *fiber.Ctx) error {
	var req answerFeedbackRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	fb, err := s.interactions.AnswerFeedback(c.UserContext(), *req.Question, req.UserAnswer)
	if err != nil {
		return err
	}
	return c.JSON(feedbackResponse{Correct: fb.Correct, Feedback: fb.Feedback})
}

func (s *Server) quizQuestionExplanation(c *fiber.Ctx) error {
	var req questionRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	out, err := s.interactions.QuestionExplanation(c.UserContext(), *req.Question)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"explanation": out})
}

func (s *Server) quizChat(c *fiber.Ctx) error {
	var req quizChatRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	out, err := s.interactions.Chat(c.UserContext(), *req.Question, req.History, req.Message)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"reply": out})
}

func (s *Server) quizRegenerateQuestion(c *fiber.Ctx) error {
	var req regenerateQuestionRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	q, err := s.interactions.RegenerateQuestion(c.UserContext(), req.Text, *req.Question, req.Difficulty)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"question": q})
}
