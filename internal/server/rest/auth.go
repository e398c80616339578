package rest

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/smartstudy/internal/common"
	"github.com/gofiber/fiber/v2"
)

func (s *Server) register(c *fiber.Ctx) error {
	var req registerRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	res, err := s.users.Register(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}

	s.logger.Info(c.UserContext(), "Registered", "user_id", res.User.ID)
	return c.Status(fiber.StatusCreated).JSON(authResponse{User: res.User, Token: res.Token})
}

func (s *Server) login(c *fiber.Ctx) error {
	var req loginRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	res, err := s.users.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			return &apiError{Status: http.StatusUnauthorized, Message: "Invalid email or password", Err: err}
		}
		return err
	}

	return c.JSON(authResponse{User: res.User, Token: res.Token})
}

func (s *Server) me(c *fiber.Ctx) error {
	u, err := s.users.Me(c.UserContext(), principal(c).UserID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"user": u})
}
