package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rubnab73/School/internal/models"
	"github.com/rubnab73/School/internal/services"
	"github.com/rubnab73/School/internal/utils"
	"github.com/rubnab73/School/internal/validator"
)

type AuthHandler struct {
	BaseHandler
	auth        services.AuthService
	departments services.DepartmentService
	session     *SessionAuth
	ssoEnabled  bool
}

func NewAuthHandler(auth services.AuthService, departments services.DepartmentService, session *SessionAuth, ssoEnabled bool, logger utils.Logger) *AuthHandler {
	return &AuthHandler{
		BaseHandler: NewBaseHandler(logger),
		auth:        auth,
		departments: departments,
		session:     session,
		ssoEnabled:  ssoEnabled,
	}
}

// Index renders the landing page
// @Router / [get]
func (h *AuthHandler) Index(c *gin.Context) {
	h.render(c, http.StatusOK, "index.html", gin.H{"Title": "Home"})
}

// SignupForm renders the registration form
// @Router /signup [get]
func (h *AuthHandler) SignupForm(c *gin.Context) {
	h.renderSignup(c, http.StatusOK, &validator.RegisterRequest{}, nil)
}

// Register creates a user and the profile its role requires
// @Param username formData string true "Username"
// @Param password formData string true "Password"
// @Param role formData string true "STUDENT, TEACHER or ADMIN"
// @Param departmentId formData int false "Department for student accounts"
// @Success 302 "Redirect to /login"
// @Failure 400 "Form re-rendered with validation errors"
// @Failure 409 "Form re-rendered, username taken"
// @Router /register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req validator.RegisterRequest
	if err := c.ShouldBind(&req); err != nil {
		h.renderSignup(c, http.StatusBadRequest, &req, []string{invalidFormMessage})
		return
	}

	h.LogRequest(c, "Registering user", "username", req.Username, "role", req.Role)

	_, err := h.auth.Register(c.Request.Context(), &req)
	switch {
	case err == nil:
		c.Redirect(http.StatusFound, "/login")
	case errors.Is(err, services.ErrUsernameTaken):
		h.renderSignup(c, http.StatusConflict, &req, []string{"Username already exists"})
	case errors.Is(err, services.ErrValidationFailed), errors.Is(err, services.ErrInvalidRole):
		h.renderSignup(c, http.StatusBadRequest, &req, formErrors(err))
	default:
		h.handleServiceError(c, err)
	}
}

func (h *AuthHandler) renderSignup(c *gin.Context, status int, form *validator.RegisterRequest, errs []string) {
	departments, err := h.departments.List(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.render(c, status, "signup.html", gin.H{
		"Title":       "Sign up",
		"Form":        form,
		"Roles":       models.Roles(),
		"Departments": departments,
		"Errors":      errs,
	})
}

// LoginForm renders the login form
// @Router /login [get]
func (h *AuthHandler) LoginForm(c *gin.Context) {
	h.render(c, http.StatusOK, "login.html", gin.H{
		"Title":      "Login",
		"SSOEnabled": h.ssoEnabled,
	})
}

// Login verifies credentials and starts a session
// @Success 302 "Redirect to /students"
// @Failure 401 "Form re-rendered"
// @Router /login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req validator.LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		h.render(c, http.StatusBadRequest, "login.html", gin.H{
			"Title":      "Login",
			"SSOEnabled": h.ssoEnabled,
			"Error":      invalidFormMessage,
		})
		return
	}

	principal, err := h.auth.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			h.LogRequest(c, "Login failed", "username", req.Username)
			h.render(c, http.StatusUnauthorized, "login.html", gin.H{
				"Title":      "Login",
				"Username":   req.Username,
				"SSOEnabled": h.ssoEnabled,
				"Error":      "Invalid username or password",
			})
			return
		}
		h.handleServiceError(c, err)
		return
	}

	if err := h.session.SignIn(c, principal); err != nil {
		h.LogError(c, "Failed to save session", err)
		h.renderError(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	h.LogRequest(c, "User logged in", "user_id", principal.UserID)
	c.Redirect(http.StatusFound, "/students")
}

// Logout ends the session
// @Router /logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.session.SignOut(c); err != nil {
		h.LogError(c, "Failed to clear session", err)
	}
	c.Redirect(http.StatusFound, "/")
}
