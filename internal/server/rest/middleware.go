package rest

import (
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"github.com/dmitrijs2005/smartstudy/internal/common"
	"github.com/dmitrijs2005/smartstudy/internal/server/services"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

const (
	principalKey = "principal"
	stackKey     = "stack"
)

func captureStack(c *fiber.Ctx, _ any) {
	c.Locals(stackKey, string(debug.Stack()))
}

func requestID(c *fiber.Ctx) string {
	id, _ := c.Locals("requestid").(string)
	return id
}

// observe logs every request and records it in the HTTP metrics. Errors are
// rendered here so the logged status matches what the client receives. It
// runs outside recover, so panics are counted as 500s.
func (s *Server) observe(c *fiber.Ctx) error {
	start := time.Now()

	if err := c.Next(); err != nil {
		if herr := c.App().ErrorHandler(c, err); herr != nil {
			_ = c.SendStatus(fiber.StatusInternalServerError)
		}
	}

	elapsed := time.Since(start)
	status := c.Response().StatusCode()
	route := c.Route().Path

	s.metrics.ObserveRequest(c.Method(), route, status, elapsed)

	args := []any{
		"request_id", requestID(c),
		"method", c.Method(),
		"route", route,
		"path", c.Path(),
		"status", status,
		"duration_ms", elapsed.Milliseconds(),
		"ip", c.IP(),
	}
	if status >= fiber.StatusInternalServerError {
		s.logger.Warn(c.UserContext(), "request failed", args...)
	} else {
		s.logger.Info(c.UserContext(), "request", args...)
	}

	return nil
}

func (s *Server) rateLimiter() fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        s.config.RateLimitMax,
		Expiration: s.config.RateLimitWindow,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(errorResponse{Error: errorBody{
				Message: "Too many requests, please try again later",
				Path:    c.Path(),
			}})
		},
	})
}

// authenticate verifies the bearer token. With required=false a missing
// header means an anonymous caller, but a header that is present and invalid
// is still rejected.
func (s *Server) authenticate(required bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := strings.TrimSpace(c.Get(common.AuthorizationHeader))
		if header == "" {
			if required {
				return fmt.Errorf("%w: missing bearer token", common.ErrorUnauthorized)
			}
			return c.Next()
		}

		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme+" ", common.BearerPrefix) {
			return fmt.Errorf("%w: expected a bearer token", common.ErrInvalidToken)
		}

		p, err := s.users.Verify(c.UserContext(), strings.TrimSpace(token))
		if err != nil {
			return err
		}

		c.Locals(principalKey, p)
		return c.Next()
	}
}

// principal returns the authenticated caller, or nil for anonymous requests.
func principal(c *fiber.Ctx) *services.Principal {
	p, _ := c.Locals(principalKey).(*services.Principal)
	return p
}

// callerID returns the authenticated user id or nil.
func callerID(c *fiber.Ctx) *int64 {
	if p := principal(c); p != nil {
		id := p.UserID
		return &id
	}
	return nil
}
