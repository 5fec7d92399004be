package handlers

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/rubnab73/School/internal/config"
	"github.com/rubnab73/School/internal/services"
	"github.com/rubnab73/School/internal/utils"
)

// CasdoorAuth signs local users in through Casdoor's OAuth flow.
// The Casdoor account name must match an existing local username.
type CasdoorAuth struct {
	BaseHandler
	client  *casdoorsdk.Client
	config  config.CasdoorConfig
	auth    services.AuthService
	session *SessionAuth
}

// NewCasdoorAuth returns nil when SSO is not configured.
func NewCasdoorAuth(cfg config.CasdoorConfig, auth services.AuthService, session *SessionAuth, logger utils.Logger) *CasdoorAuth {
	if !cfg.Enabled() {
		return nil
	}

	client := casdoorsdk.NewClient(
		cfg.Endpoint,
		cfg.ClientID,
		cfg.ClientSecret,
		cfg.Cert,
		cfg.Organization,
		cfg.Application,
	)

	return &CasdoorAuth{
		BaseHandler: NewBaseHandler(logger),
		client:      client,
		config:      cfg,
		auth:        auth,
		session:     session,
	}
}

// Login issues a one-time state bound to the session and redirects to the Casdoor sign-in page
// @Router /login/sso [get]
func (h *CasdoorAuth) Login(c *gin.Context) {
	state := uuid.NewString()
	signinURL, err := h.signinURL(state)
	if err != nil {
		h.LogError(c, "Failed to build Casdoor sign-in URL", err)
		h.renderError(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	if err := h.session.StoreSSOState(c, state); err != nil {
		h.LogError(c, "Failed to save session", err)
		h.renderError(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	c.Redirect(http.StatusFound, signinURL)
}

// signinURL is the SDK's authorize URL with its fixed state replaced by state.
func (h *CasdoorAuth) signinURL(state string) (string, error) {
	u, err := url.Parse(h.client.GetSigninUrl(h.config.RedirectURL))
	if err != nil {
		return "", fmt.Errorf("parse sign-in url: %w", err)
	}
	q := u.Query()
	q.Set("state", state)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Callback exchanges the authorization code and starts a local session
// @Router /login/sso/callback [get]
func (h *CasdoorAuth) Callback(c *gin.Context) {
	expected, err := h.session.TakeSSOState(c)
	if err != nil {
		h.LogError(c, "Failed to read session", err)
	}
	state := c.Query("state")
	if expected == "" || subtle.ConstantTimeCompare([]byte(expected), []byte(state)) != 1 {
		h.LogRequest(c, "SSO callback rejected, state mismatch")
		h.renderError(c, http.StatusForbidden, "Single sign-on failed")
		return
	}

	code := c.Query("code")
	if code == "" {
		h.renderError(c, http.StatusBadRequest, "Missing authorization code")
		return
	}

	token, err := h.client.GetOAuthToken(code, state)
	if err != nil {
		h.LogError(c, "Casdoor token exchange failed", err)
		h.renderError(c, http.StatusUnauthorized, "Single sign-on failed")
		return
	}

	claims, err := h.client.ParseJwtToken(token.AccessToken)
	if err != nil {
		h.LogError(c, "Casdoor token rejected", err)
		h.renderError(c, http.StatusUnauthorized, "Single sign-on failed")
		return
	}

	principal, err := h.auth.ExternalLogin(c.Request.Context(), claims.User.Name)
	if err != nil {
		if errors.Is(err, services.ErrUnauthorized) {
			h.renderError(c, http.StatusForbidden, "No local account for "+claims.User.Name+". Sign up first.")
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

	h.LogRequest(c, "SSO login", "user_id", principal.UserID)
	c.Redirect(http.StatusFound, "/students")
}
