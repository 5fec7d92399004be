package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"

	"github.com/rubnab73/School/internal/config"
	"github.com/rubnab73/School/internal/models"
	"github.com/rubnab73/School/internal/services"
	"github.com/rubnab73/School/internal/utils"
)

const (
	sessionName     = "school-session"
	sessionUserKey  = "user_id"
	sessionStateKey = "sso_state"

	contextUserIDKey    = "user_id"
	contextPrincipalKey = "user"
	contextRoleKey      = "user_role"
)

// NewCookieStore builds the signed cookie store backing login sessions.
func NewCookieStore(cfg *config.Config) *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(cfg.SessionSecret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   cfg.SessionMaxAge,
		HttpOnly: true,
		Secure:   cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

// SessionAuth resolves the principal from the session cookie and enforces role gates
type SessionAuth struct {
	BaseHandler
	store sessions.Store
	auth  services.AuthService
}

func NewSessionAuth(store sessions.Store, auth services.AuthService, logger utils.Logger) *SessionAuth {
	return &SessionAuth{
		BaseHandler: NewBaseHandler(logger),
		store:       store,
		auth:        auth,
	}
}

// LoadPrincipal sets the principal on the context when the session names a known user.
// It never rejects; RequireAuth does.
func (a *SessionAuth) LoadPrincipal() gin.HandlerFunc {
	return func(c *gin.Context) {
		session, err := a.store.Get(c.Request, sessionName)
		if err != nil {
			// Tampered or stale cookie: continue anonymously.
			c.Next()
			return
		}

		userID, ok := session.Values[sessionUserKey].(uint)
		if !ok {
			c.Next()
			return
		}

		principal, err := a.auth.Principal(c.Request.Context(), userID)
		if err != nil {
			if !errors.Is(err, services.ErrUnauthorized) {
				a.LogError(c, "Failed to resolve principal", err, "user_id", userID)
			}
			c.Next()
			return
		}

		c.Set(contextUserIDKey, principal.UserID)
		c.Set(contextPrincipalKey, principal)
		c.Set(contextRoleKey, principal.Role)
		c.Next()
	}
}

// RequireAuth redirects anonymous requests to the login page
func (a *SessionAuth) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if PrincipalFromContext(c) == nil {
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireRole allows only principals holding exactly role. ADMIN does not pass other gates.
func (a *SessionAuth) RequireRole(role models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal := PrincipalFromContext(c)
		if principal == nil {
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}

		if !principal.HasRole(role) {
			a.LogRequest(c, "Role check failed", "user_id", principal.UserID, "role", principal.Role, "required", role)
			a.renderError(c, http.StatusForbidden, "Access denied: this page requires the "+role.Name()+" role")
			c.Abort()
			return
		}

		c.Next()
	}
}

// SignIn stores the principal's user id in the session cookie.
func (a *SessionAuth) SignIn(c *gin.Context, principal *services.Principal) error {
	session, _ := a.store.Get(c.Request, sessionName)
	session.Values[sessionUserKey] = principal.UserID
	return session.Save(c.Request, c.Writer)
}

// SignOut expires the session cookie.
func (a *SessionAuth) SignOut(c *gin.Context) error {
	session, _ := a.store.Get(c.Request, sessionName)
	delete(session.Values, sessionUserKey)
	session.Options.MaxAge = -1
	return session.Save(c.Request, c.Writer)
}

// StoreSSOState remembers the OAuth state issued to this browser.
func (a *SessionAuth) StoreSSOState(c *gin.Context, state string) error {
	session, _ := a.store.Get(c.Request, sessionName)
	session.Values[sessionStateKey] = state
	return session.Save(c.Request, c.Writer)
}

// TakeSSOState returns the stored OAuth state and removes it, so each state is accepted once.
func (a *SessionAuth) TakeSSOState(c *gin.Context) (string, error) {
	session, err := a.store.Get(c.Request, sessionName)
	if err != nil {
		return "", err
	}
	state, _ := session.Values[sessionStateKey].(string)
	if state == "" {
		return "", nil
	}
	delete(session.Values, sessionStateKey)
	return state, session.Save(c.Request, c.Writer)
}

// PrincipalFromContext returns the authenticated principal or nil.
func PrincipalFromContext(c *gin.Context) *services.Principal {
	v, ok := c.Get(contextPrincipalKey)
	if !ok {
		return nil
	}
	principal, _ := v.(*services.Principal)
	return principal
}
