package server

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/openhaus-labs/openhaus/backend/internal/auth"
	"github.com/openhaus-labs/openhaus/backend/internal/users"
	"go.uber.org/zap"
)

type userPayload struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

func presentUser(user users.User) userPayload {
	return userPayload{ID: user.ID, Email: user.Email, Name: user.Name}
}

func failure(message string) gin.H {
	return gin.H{"success": false, "message": message}
}

type signupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

func (h *httpHandler) handleSignup(c *gin.Context) {
	var request signupRequest
	if err := c.ShouldBindJSON(&request); err != nil ||
		request.Email == "" || request.Password == "" || request.Name == "" {
		c.JSON(http.StatusBadRequest, failure("Email, password, and name are required"))
		return
	}

	user, err := h.identity.SignUp(c.Request.Context(), request.Email, request.Password, request.Name)
	if err != nil {
		switch {
		case errors.Is(err, users.ErrEmailTaken):
			c.JSON(http.StatusBadRequest, failure("User already exists with this email"))
		case errors.Is(err, users.ErrInvalidInput), errors.Is(err, auth.ErrPasswordTooLong):
			c.JSON(http.StatusBadRequest, failure("Email, password, and name are required"))
		default:
			h.logger.Error("signup failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, failure("Internal server error"))
		}
		return
	}

	token, err := h.tokens.Issue(user.ID, user.Email)
	if err != nil {
		h.logger.Error("failed to issue token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, failure("Internal server error"))
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "User created successfully",
		"user":    presentUser(user),
		"token":   token,
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *httpHandler) handleLogin(c *gin.Context) {
	var request loginRequest
	if err := c.ShouldBindJSON(&request); err != nil ||
		request.Email == "" || request.Password == "" {
		c.JSON(http.StatusBadRequest, failure("Email and password are required"))
		return
	}

	user, err := h.identity.LogIn(c.Request.Context(), request.Email, request.Password)
	if err != nil {
		if errors.Is(err, users.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, failure("Invalid email or password"))
			return
		}
		h.logger.Error("login failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, failure("Internal server error"))
		return
	}

	token, err := h.tokens.Issue(user.ID, user.Email)
	if err != nil {
		h.logger.Error("failed to issue token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, failure("Internal server error"))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Login successful",
		"user":    presentUser(user),
		"token":   token,
	})
}

func (h *httpHandler) handleGoogleRedirect(c *gin.Context) {
	state, err := auth.NewStateToken()
	if err != nil {
		h.logger.Error("failed to generate oauth state", zap.Error(err))
		c.Redirect(http.StatusFound, h.oauthErrorURL())
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(oauthStateCookie, state, int(oauthStateMaxAge.Seconds()), "/", "", false, true)
	c.Redirect(http.StatusFound, h.google.AuthCodeURL(state))
}

// handleGoogleCallback finishes the OAuth dance. Every failure degrades to a
// redirect carrying an opaque error marker; the provider's error details
// never reach the client.
func (h *httpHandler) handleGoogleCallback(c *gin.Context) {
	expectedState, err := c.Cookie(oauthStateCookie)
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(oauthStateCookie, "", -1, "/", "", false, true)

	state := c.Query("state")
	code := c.Query("code")
	if err != nil || state == "" || code == "" || state != expectedState {
		h.logger.Warn("oauth callback state mismatch")
		c.Redirect(http.StatusFound, h.oauthErrorURL())
		return
	}

	profile, err := h.google.Exchange(c.Request.Context(), code)
	if err != nil {
		h.logger.Warn("oauth code exchange failed", zap.Error(err))
		c.Redirect(http.StatusFound, h.oauthErrorURL())
		return
	}

	user, err := h.identity.ResolveGoogle(c.Request.Context(), profile)
	if err != nil {
		h.logger.Error("federated identity resolution failed", zap.Error(err))
		c.Redirect(http.StatusFound, h.oauthErrorURL())
		return
	}

	token, err := h.tokens.Issue(user.ID, user.Email)
	if err != nil {
		h.logger.Error("failed to issue token", zap.Error(err))
		c.Redirect(http.StatusFound, h.oauthErrorURL())
		return
	}

	params := url.Values{}
	params.Set("token", token)
	params.Set("id", user.ID)
	params.Set("email", user.Email)
	params.Set("name", user.Name)
	c.Redirect(http.StatusFound, h.clientURL+"?"+params.Encode())
}

func (h *httpHandler) oauthErrorURL() string {
	return h.clientURL + "?error=oauth_failed"
}

func (h *httpHandler) handleProfile(c *gin.Context) {
	userID := c.GetString(userIDContextKey)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, failure("Access token required"))
		return
	}

	user, err := h.identity.Profile(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			c.JSON(http.StatusNotFound, failure("User not found"))
			return
		}
		h.logger.Error("profile lookup failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, failure("Internal server error"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "user": presentUser(user)})
}

// handleLogout acknowledges the logout. Tokens are stateless and there is no
// revocation list; the client is expected to discard its copy.
func (h *httpHandler) handleLogout(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Logged out successfully"})
}

type refreshRequest struct {
	Token string `json:"token"`
}

// handleRefresh re-issues a token from the claims of a presented one. The
// subject is taken from the verified claims as-is and is not re-checked
// against the store.
func (h *httpHandler) handleRefresh(c *gin.Context) {
	var request refreshRequest
	if err := c.ShouldBindJSON(&request); err != nil || request.Token == "" {
		c.JSON(http.StatusBadRequest, failure("Token is required"))
		return
	}

	claims, err := h.tokens.Verify(request.Token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, failure("Invalid or expired token"))
		return
	}

	token, err := h.tokens.Issue(claims.UserID, claims.Email)
	if err != nil {
		h.logger.Error("failed to issue token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, failure("Internal server error"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "token": token})
}
