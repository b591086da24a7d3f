package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/openhaus-labs/openhaus/backend/internal/auth"
	"github.com/openhaus-labs/openhaus/backend/internal/catalog"
	"github.com/openhaus-labs/openhaus/backend/internal/users"
	"go.uber.org/zap"
)

const (
	userIDContextKey    = "openhaus_user_id"
	userEmailContextKey = "openhaus_user_email"

	oauthStateCookie = "oauth_state"
	oauthStateMaxAge = 10 * time.Minute
)

var (
	errMissingIdentityService = errors.New("identity service dependency required")
	errMissingTokenService    = errors.New("token service dependency required")
	errMissingGoogleProvider  = errors.New("google provider dependency required")
	errMissingCatalogService  = errors.New("catalog service dependency required")
	errMissingClientURL       = errors.New("client url required")
)

// IdentityService resolves signup, login, and federated callbacks into user records.
type IdentityService interface {
	SignUp(ctx context.Context, email, password, name string) (users.User, error)
	LogIn(ctx context.Context, email, password string) (users.User, error)
	ResolveGoogle(ctx context.Context, profile auth.GoogleProfile) (users.User, error)
	Profile(ctx context.Context, id string) (users.User, error)
}

// TokenService issues and verifies bearer tokens.
type TokenService interface {
	Issue(userID, email string) (string, error)
	Verify(token string) (auth.Claims, error)
}

// GoogleExchanger drives the OAuth redirect dance.
type GoogleExchanger interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (auth.GoogleProfile, error)
}

// Dependencies wires the HTTP surface to its collaborators.
type Dependencies struct {
	Identity  IdentityService
	Tokens    TokenService
	Google    GoogleExchanger
	Catalog   *catalog.Service
	Logger    *zap.Logger
	ClientURL string
}

// NewHTTPHandler builds the gin router for the public and admin APIs.
func NewHTTPHandler(deps Dependencies) (http.Handler, error) {
	if deps.Identity == nil {
		return nil, errMissingIdentityService
	}
	if deps.Tokens == nil {
		return nil, errMissingTokenService
	}
	if deps.Google == nil {
		return nil, errMissingGoogleProvider
	}
	if deps.Catalog == nil {
		return nil, errMissingCatalogService
	}
	if strings.TrimSpace(deps.ClientURL) == "" {
		return nil, errMissingClientURL
	}

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())

	handler := &httpHandler{
		identity:  deps.Identity,
		tokens:    deps.Tokens,
		google:    deps.Google,
		catalog:   deps.Catalog,
		logger:    logger,
		clientURL: strings.TrimRight(deps.ClientURL, "/"),
	}

	router.POST("/auth/signup", handler.handleSignup)
	router.POST("/auth/login", handler.handleLogin)
	router.GET("/auth/google", handler.handleGoogleRedirect)
	router.GET("/auth/google/callback", handler.handleGoogleCallback)
	router.POST("/auth/refresh", handler.handleRefresh)

	authed := router.Group("/auth")
	authed.Use(handler.authorizeRequest)
	authed.GET("/me", handler.handleProfile)
	authed.POST("/logout", handler.handleLogout)

	api := router.Group("/api")
	api.GET("/properties", handler.handleListProperties)
	api.GET("/properties/:id", handler.handleGetProperty)
	api.GET("/testimonials", handler.handleListTestimonials)
	api.GET("/faqs", handler.handleListFAQs)

	admin := router.Group("/api")
	admin.Use(handler.authorizeRequest)
	admin.POST("/properties", handler.handleCreateProperty)
	admin.PUT("/properties/:id", handler.handleUpdateProperty)
	admin.DELETE("/properties/:id", handler.handleDeleteProperty)
	admin.POST("/testimonials", handler.handleCreateTestimonial)
	admin.DELETE("/testimonials/:id", handler.handleDeleteTestimonial)
	admin.POST("/faqs", handler.handleCreateFAQ)
	admin.DELETE("/faqs/:id", handler.handleDeleteFAQ)

	return router, nil
}

func corsMiddleware() gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowAllOrigins:  false,
		AllowOriginFunc:  func(string) bool { return true },
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}

type httpHandler struct {
	identity  IdentityService
	tokens    TokenService
	google    GoogleExchanger
	catalog   *catalog.Service
	logger    *zap.Logger
	clientURL string
}

// authorizeRequest gates protected routes on a valid bearer token. A missing
// header is a 401; a token that fails verification is a 403, matching the
// public API contract.
func (h *httpHandler) authorizeRequest(c *gin.Context) {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		c.AbortWithStatusJSON(http.StatusUnauthorized, failure("Access token required"))
		return
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	if token == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, failure("Access token required"))
		return
	}

	claims, err := h.tokens.Verify(token)
	if err != nil {
		if errors.Is(err, auth.ErrTokenExpired) {
			h.logger.Info("token validation failed", zap.Error(err))
		} else {
			h.logger.Warn("token validation failed", zap.Error(err))
		}
		c.AbortWithStatusJSON(http.StatusForbidden, failure("Invalid or expired token"))
		return
	}

	c.Set(userIDContextKey, claims.UserID)
	c.Set(userEmailContextKey, claims.Email)
	c.Next()
}
