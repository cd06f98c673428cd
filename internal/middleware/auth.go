package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/ebookinghq/booking-api/internal/handler"
	"github.com/ebookinghq/booking-api/internal/model"
	"github.com/ebookinghq/booking-api/pkg/auth"
)

const ContextCaller = "caller"

type AuthMiddleware struct {
	jwtService *auth.JWTService
	// Validated claims are cached briefly so hot clients skip signature
	// verification. Identity data only, never scheduling state.
	claims *gocache.Cache
}

func NewAuthMiddleware(jwtService *auth.JWTService) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtService,
		claims:     gocache.New(5*time.Minute, 10*time.Minute),
	}
}

// Authenticate verifies the bearer token and attaches the caller identity.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("missing authorization header"))
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("invalid authorization format"))
			c.Abort()
			return
		}

		claims, err := m.validate(parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("invalid token"))
			c.Abort()
			return
		}

		userID, err := uuid.Parse(claims.UserID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("invalid token subject"))
			c.Abort()
			return
		}

		c.Set(ContextCaller, model.Caller{UserID: userID, Roles: claims.Roles})
		c.Next()
	}
}

func (m *AuthMiddleware) validate(token string) (*auth.Claims, error) {
	if cached, ok := m.claims.Get(token); ok {
		return cached.(*auth.Claims), nil
	}
	claims, err := m.jwtService.ValidateToken(token)
	if err != nil {
		return nil, err
	}
	m.claims.Set(token, claims, gocache.DefaultExpiration)
	return claims, nil
}

// CallerFromContext returns the authenticated caller set by Authenticate.
func CallerFromContext(c *gin.Context) (model.Caller, bool) {
	v, exists := c.Get(ContextCaller)
	if !exists {
		return model.Caller{}, false
	}
	caller, ok := v.(model.Caller)
	return caller, ok
}
