package handler

import (
	"net/http"
	"time"

	"github.com/eaglebank/ledger-service/internal/auth"
	"github.com/eaglebank/ledger-service/internal/cqrs"
	"github.com/eaglebank/ledger-service/internal/middleware"
	"github.com/gin-gonic/gin"
)

// LoginQuerier checks credentials and returns a signed session token.
type LoginQuerier interface {
	Login(cqrs.LoginCommand) (string, error)
}

type AuthHandler struct {
	queries      LoginQuerier
	sessionTTL   time.Duration
	secureCookie bool
}

type AuthResponse struct {
	Token string `json:"token"`
}

type LoginRequest struct {
	Username string `form:"username" json:"username" validate:"required"`
	Password string `form:"password" json:"password" validate:"required"`
}

func NewAuthHandler(queries LoginQuerier, sessionTTL time.Duration, secureCookie bool) *AuthHandler {
	return &AuthHandler{queries: queries, sessionTTL: sessionTTL, secureCookie: secureCookie}
}

// LoginForm also serves anonymous requests for the list page.
func (h *AuthHandler) LoginForm(c *gin.Context) {
	renderLogin(c, http.StatusOK, "", "")
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		if wantsJSON(c) {
			middleware.RespondWithValidationError(c, validationErrors)
			return
		}
		renderLogin(c, http.StatusBadRequest, req.Username, "Username and password are required")
		return
	}

	token, err := h.queries.Login(cqrs.LoginCommand{Username: req.Username, Password: req.Password})
	if err != nil {
		if wantsJSON(c) {
			middleware.RespondWithError(c, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		renderLogin(c, http.StatusUnauthorized, req.Username, "Invalid username or password")
		return
	}

	h.setSession(c, token, int(h.sessionTTL.Seconds()))
	// API clients keep the token and send it as a Bearer header.
	if wantsJSON(c) {
		c.JSON(http.StatusOK, AuthResponse{Token: token})
		return
	}
	c.Redirect(http.StatusFound, ListPath)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	h.setSession(c, "", -1)
	c.Redirect(http.StatusFound, ListPath)
}

func (h *AuthHandler) setSession(c *gin.Context, token string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(auth.SessionCookie, token, maxAge, "/", "", h.secureCookie, true)
}

func renderLogin(c *gin.Context, status int, username, message string) {
	render(c, status, "login.tmpl", gin.H{
		"title":         "Log in",
		"loginUsername": username,
		"error":         message,
	})
}
