package rest

import (
	"errors"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/smartstudy/internal/common"
	"github.com/dmitrijs2005/smartstudy/internal/server/generation"
	"github.com/dmitrijs2005/smartstudy/internal/server/models"
	"github.com/dmitrijs2005/smartstudy/internal/server/services"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type errorBody struct {
	Message string            `json:"message"`
	Path    string            `json:"path"`
	Fields  map[string]string `json:"fields,omitempty"`
	Detail  string            `json:"detail,omitempty"`
	Stack   string            `json:"stack,omitempty"`
}

type generatedArtifacts struct {
	Summary    *string               `json:"summary,omitempty"`
	Flashcards []models.Flashcard    `json:"flashcards,omitempty"`
	Quiz       []models.QuizQuestion `json:"quiz,omitempty"`
}

type errorResponse struct {
	Error     errorBody           `json:"error"`
	Generated *generatedArtifacts `json:"generated,omitempty"`
}

// apiError overrides the public message for a wrapped error.
type apiError struct {
	Status  int
	Message string
	Err     error
}

func (e *apiError) Error() string { return e.Err.Error() }
func (e *apiError) Unwrap() error { return e.Err }

// statusFor maps an error to the HTTP status and the message shown to the
// client.
func statusFor(err error) (int, string) {
	var (
		ae  *apiError
		nse *services.NotSavedError
		moe *generation.MalformedOutputError
		ue  *generation.UpstreamError
		fe  *fiber.Error
		ve  validator.ValidationErrors
	)

	switch {
	case errors.As(err, &ae):
		return ae.Status, ae.Message
	case errors.As(err, &nse):
		return http.StatusInternalServerError, "Content was generated but could not be saved"
	case errors.As(err, &ve):
		return http.StatusBadRequest, "Validation failed"
	case errors.Is(err, common.ErrValidation):
		return http.StatusBadRequest, validationMessage(err)
	case errors.Is(err, common.ErrTokenExpired):
		return http.StatusUnauthorized, "Token expired"
	case errors.Is(err, common.ErrorUnauthorized):
		return http.StatusUnauthorized, "Authentication required"
	case errors.Is(err, common.ErrInvalidToken):
		return http.StatusForbidden, "Invalid token"
	case errors.Is(err, common.ErrorForbidden):
		return http.StatusForbidden, "Access denied"
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound, "Not found"
	case errors.Is(err, common.ErrorAlreadyExists):
		return http.StatusConflict, "Email already registered"
	case errors.Is(err, common.ErrSafetyBlocked):
		return http.StatusUnprocessableEntity, "The request was blocked by the AI safety filter"
	case errors.As(err, &moe):
		return http.StatusBadGateway, moe.Message()
	case errors.As(err, &ue):
		if ue.StatusCode == http.StatusGatewayTimeout {
			return ue.HTTPStatus(), "AI service timed out"
		}
		return ue.HTTPStatus(), "AI service request failed"
	case errors.Is(err, common.ErrMissingAPIKey):
		return http.StatusInternalServerError, "AI service is not configured"
	case errors.Is(err, common.ErrExportDisabled):
		return http.StatusServiceUnavailable, "export is not configured"
	case errors.As(err, &fe):
		return fe.Code, fe.Message
	}
	return http.StatusInternalServerError, "Internal server error"
}

// validationMessage drops the sentinel prefix from a wrapped ErrValidation.
func validationMessage(err error) string {
	msg := strings.TrimPrefix(err.Error(), common.ErrValidation.Error()+": ")
	if msg == "" || msg == common.ErrValidation.Error() {
		return "Invalid request"
	}
	return msg
}

func validationFields(err error) map[string]string {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return nil
	}
	fields := make(map[string]string, len(ve))
	for _, fe := range ve {
		name := fe.Namespace()
		if _, rest, ok := strings.Cut(name, "."); ok {
			name = rest
		}
		rule := fe.Tag()
		if fe.Param() != "" {
			rule += "=" + fe.Param()
		}
		fields[name] = rule
	}
	return fields
}

// handleError is the Fiber error handler. It writes the JSON error envelope.
// Detail and stack are only exposed outside production.
func (s *Server) handleError(c *fiber.Ctx, err error) error {
	status, message := statusFor(err)

	resp := errorResponse{Error: errorBody{
		Message: message,
		Path:    c.Path(),
		Fields:  validationFields(err),
	}}

	var nse *services.NotSavedError
	if errors.As(err, &nse) {
		resp.Generated = &generatedArtifacts{
			Summary:    nse.Generated.Summary,
			Flashcards: nse.Generated.Flashcards,
			Quiz:       nse.Generated.Quiz,
		}
	}

	if !s.config.IsProduction() {
		resp.Error.Detail = err.Error()
		if stack, ok := c.Locals(stackKey).(string); ok {
			resp.Error.Stack = stack
		}
	}

	if status >= fiber.StatusInternalServerError {
		s.logger.Error(c.UserContext(), "request error",
			"request_id", requestID(c),
			"path", c.Path(),
			"status", status,
			"error", err,
		)
	}

	return c.Status(status).JSON(resp)
}
