package middleware

import (
	"log"
	"net/http"
	"strings"

	"github.com/ezcal-dev/ezcal/internal/auth"
	"github.com/ezcal-dev/ezcal/internal/config"
	"github.com/ezcal-dev/ezcal/internal/models"
	"github.com/ezcal-dev/ezcal/internal/services"
	"github.com/ezcal-dev/ezcal/internal/types"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AuthenticatedUser struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

// AuthMiddleware resolves the caller's identity from the bearer token. When
// the server runs in debug mode and no credential is presented, it falls back
// to a lazily provisioned development user; this path is unreachable in
// strict mode.
func AuthMiddleware(cfg *config.Config, tokens *auth.TokenService, users *services.UserService) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		authHeader := ctx.GetHeader("Authorization")

		if authHeader == "" {
			if cfg.Debug {
				user, err := users.GetOrCreateDevUser()

				if err != nil {
					log.Printf("Failed to provision dev user: %v", err)
					ctx.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
					return
				}

				setCurrentUser(ctx, user)
				ctx.Next()
				return
			}

			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization token is required"})
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)

		if len(parts) != 2 || parts[0] != "Bearer" {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header format must be Bearer {token}"})
			return
		}

		claims, err := tokens.Decode(parts[1])

		if err != nil || claims.Type != auth.TokenTypeAccess {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		user, err := users.GetByID(claims.Subject)

		if err != nil {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
			return
		}

		if !user.IsActive {
			ctx.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Account is inactive"})
			return
		}

		setCurrentUser(ctx, user)
		ctx.Next()
	}
}

func setCurrentUser(ctx *gin.Context, user *models.User) {
	ctx.Set(types.ContextUserKey, AuthenticatedUser{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
	})
}
