package rest

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/smartstudy/internal/common"
	"github.com/dmitrijs2005/smartstudy/internal/server/services"
	"github.com/gofiber/fiber/v2"
)

func sessionID(c *fiber.Ctx) (int64, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid session id %q", common.ErrValidation, c.Params("id"))
	}
	return int64(id), nil
}

func (s *Server) process(c *fiber.Ctx) error {
	var req processRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	res, err := s.study.Process(c.UserContext(), services.ProcessInput{
		Text:          req.Text,
		OutputFormats: req.OutputFormats,
		Filename:      req.Filename,
		ContentType:   req.ContentType,
		UserID:        callerID(c),
		Summary:       req.SummaryOptions,
		Quiz:          req.QuizOptions,
	})
	if err != nil {
		return err
	}

	return c.JSON(processResponse{
		SessionID:  res.SessionID,
		Summary:    res.Summary,
		Flashcards: res.Flashcards,
		Quiz:       res.Quiz,
		ClaimToken: res.ClaimToken,
	})
}

func (s *Server) listSessions(c *fiber.Ctx) error {
	list, err := s.study.List(c.UserContext(), principal(c).UserID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"sessions": list})
}

func (s *Server) getSession(c *fiber.Ctx) error {
	id, err := sessionID(c)
	if err != nil {
		return err
	}

	session, err := s.study.Get(c.UserContext(), id, principal(c).UserID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"session": session})
}

func (s *Server) deleteSession(c *fiber.Ctx) error {
	id, err := sessionID(c)
	if err != nil {
		return err
	}

	if err := s.study.Delete(c.UserContext(), id, principal(c).UserID); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Session deleted"})
}

func (s *Server) regenerateSession(c *fiber.Ctx) error {
	id, err := sessionID(c)
	if err != nil {
		return err
	}

	var req regenerateRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	session, err := s.study.Regenerate(c.UserContext(), id, principal(c).UserID, req.OutputFormats, services.RegenerateOptions{
		Summary: req.Options.SummaryOptions,
		Quiz:    req.Options.QuizOptions,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"session": session})
}

func (s *Server) claimSession(c *fiber.Ctx) error {
	var req claimRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	session, err := s.study.Claim(c.UserContext(), req.ClaimToken, principal(c).UserID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"session": session})
}

func (s *Server) downloadSession(c *fiber.Ctx) error {
	id, err := sessionID(c)
	if err != nil {
		return err
	}

	filename, body, err := s.exporter.Download(c.UserContext(), id, principal(c).UserID)
	if err != nil {
		return err
	}

	c.Attachment(filename)
	c.Set(fiber.HeaderContentType, "text/markdown; charset=utf-8")
	return c.Send(body)
}

func (s *Server) exportSession(c *fiber.Ctx) error {
	id, err := sessionID(c)
	if err != nil {
		return err
	}

	res, err := s.exporter.Export(c.UserContext(), id, principal(c).UserID)
	if err != nil {
		return err
	}

	s.logger.Info(c.UserContext(), "session exported", "session_id", id, "key", res.Key)
	return c.JSON(exportResponse{
		URL:       res.URL,
		Key:       res.Key,
		ExpiresAt: res.ExpiresAt.UTC().Format(time.RFC3339),
	})
}
