package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/rubnab73/School/internal/services"
	"github.com/rubnab73/School/internal/utils"
)

// ErrorResponse is the JSON error body for non-HTML endpoints
type ErrorResponse struct {
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// BaseHandler carries the logger and page rendering shared by all handlers
type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

func (h *BaseHandler) LogRequest(c *gin.Context, msg string, args ...any) {
	utils.FromContext(c, h.logger).Info(msg, args...)
}

func (h *BaseHandler) LogError(c *gin.Context, msg string, err error, args ...any) {
	utils.FromContext(c, h.logger).Error(msg, append(args, "error", err)...)
}

// render executes a page template with the current principal added to data.
func (h *BaseHandler) render(c *gin.Context, status int, page string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["Principal"] = PrincipalFromContext(c)
	c.HTML(status, page, data)
}

func (h *BaseHandler) renderError(c *gin.Context, status int, message string) {
	h.render(c, status, "error.html", gin.H{
		"Title":   http.StatusText(status),
		"Status":  status,
		"Message": message,
	})
}

// handleServiceError renders the error page for errors the calling handler did not handle itself.
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	var validationErrors services.ValidationErrors
	if errors.As(err, &validationErrors) {
		h.render(c, http.StatusBadRequest, "error.html", gin.H{
			"Title":   "Validation failed",
			"Status":  http.StatusBadRequest,
			"Message": "Validation failed",
			"Errors":  validationErrors.Messages(),
		})
		return
	}

	var businessRuleError *services.BusinessRuleError
	if errors.As(err, &businessRuleError) {
		h.renderError(c, http.StatusConflict, businessRuleError.Message)
		return
	}

	switch {
	case errors.Is(err, services.ErrUsernameTaken):
		h.renderError(c, http.StatusConflict, "Username already exists")
	case errors.Is(err, services.ErrInvalidRole):
		h.renderError(c, http.StatusBadRequest, "Invalid role")
	case errors.Is(err, services.ErrNotFound):
		h.renderError(c, http.StatusNotFound, "Not found")
	case errors.Is(err, services.ErrUnauthorized), errors.Is(err, services.ErrInvalidCredentials):
		c.Redirect(http.StatusFound, "/login")
	case errors.Is(err, services.ErrForbidden):
		h.renderError(c, http.StatusForbidden, "Access denied")
	default:
		h.LogError(c, "Request failed", err)
		h.renderError(c, http.StatusInternalServerError, "Internal server error")
	}
}

// parseID reads the :id path parameter.
func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// invalidFormMessage is shown when a submitted form cannot be bound, e.g. a non-numeric id.
const invalidFormMessage = "Invalid form submission"

// formErrors flattens an error into messages for re-rendering a form.
func formErrors(err error) []string {
	var validationErrors services.ValidationErrors
	if errors.As(err, &validationErrors) {
		return validationErrors.Messages()
	}
	return []string{err.Error()}
}
