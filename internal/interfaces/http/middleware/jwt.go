package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/inventra/backend/internal/application/identity"
	"github.com/inventra/backend/internal/domain/shared"
	"github.com/inventra/backend/internal/infrastructure/auth"
	"github.com/inventra/backend/internal/infrastructure/logger"
	"github.com/inventra/backend/internal/interfaces/http/dto"
)

const (
	// AuthHeaderKey is the header carrying the bearer token
	AuthHeaderKey = "Authorization"
	// BearerPrefix is the expected token scheme prefix
	BearerPrefix = "Bearer "

	// ClaimsContextKey is the gin context key holding the validated claims
	ClaimsContextKey = "jwt_claims"
	// ActorContextKey is the gin context key holding the resolved actor
	ActorContextKey = "actor"
)

// JWTMiddlewareConfig configures the authentication middleware
type JWTMiddlewareConfig struct {
	JWTService       *auth.JWTService
	SkipPaths        []string
	SkipPathPrefixes []string
	Logger           *zap.Logger
}

// JWTAuthMiddleware validates bearer tokens with default configuration
func JWTAuthMiddleware(jwtService *auth.JWTService) gin.HandlerFunc {
	return JWTAuthMiddlewareWithConfig(JWTMiddlewareConfig{
		JWTService: jwtService,
		Logger:     zap.NewNop(),
	})
}

// JWTAuthMiddlewareWithConfig validates the bearer token on each request,
// resolves the acting identity, and stores both on the gin context. Requests
// to configured skip paths pass through unauthenticated.
func JWTAuthMiddlewareWithConfig(cfg JWTMiddlewareConfig) gin.HandlerFunc {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return func(c *gin.Context) {
		path := c.Request.URL.Path
		for _, skip := range cfg.SkipPaths {
			if path == skip {
				c.Next()
				return
			}
		}
		for _, prefix := range cfg.SkipPathPrefixes {
			if strings.HasPrefix(path, prefix) {
				c.Next()
				return
			}
		}

		header := c.GetHeader(AuthHeaderKey)
		if header == "" {
			abortUnauthorized(c, "Missing authorization header")
			return
		}
		if !strings.HasPrefix(header, BearerPrefix) {
			abortUnauthorized(c, "Authorization header must use the Bearer scheme")
			return
		}
		token := strings.TrimPrefix(header, BearerPrefix)
		if token == "" {
			abortUnauthorized(c, "Missing bearer token")
			return
		}

		claims, err := cfg.JWTService.ValidateToken(token)
		if err != nil {
			log.Debug("token validation failed",
				zap.String("path", path),
				zap.Error(err),
			)
			switch err {
			case auth.ErrExpiredToken:
				abortUnauthorized(c, "Token has expired")
			case auth.ErrTokenNotYetValid:
				abortUnauthorized(c, "Token is not valid yet")
			default:
				abortUnauthorized(c, "Invalid token")
			}
			return
		}

		actor, err := claims.Actor()
		if err != nil {
			log.Warn("token carried malformed identity claims",
				zap.String("path", path),
				zap.Error(err),
			)
			abortUnauthorized(c, "Invalid token claims")
			return
		}

		c.Set(ClaimsContextKey, claims)
		c.Set(ActorContextKey, actor)

		// Propagate identity into the request context for log enrichment
		ctx := logger.WithTenantID(c.Request.Context(), actor.TenantID.String())
		ctx = logger.WithUserID(ctx, actor.UserID.String())
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// GetActor returns the authenticated actor stored by the JWT middleware
func GetActor(c *gin.Context) (identity.Actor, bool) {
	value, exists := c.Get(ActorContextKey)
	if !exists {
		return identity.Actor{}, false
	}
	actor, ok := value.(identity.Actor)
	return actor, ok
}

// GetClaims returns the validated token claims, if present
func GetClaims(c *gin.Context) (*auth.Claims, bool) {
	value, exists := c.Get(ClaimsContextKey)
	if !exists {
		return nil, false
	}
	claims, ok := value.(*auth.Claims)
	return claims, ok
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(shared.CodeUnauthorized, message))
}
