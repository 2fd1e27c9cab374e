package middleware

import (
	"crypto/subtle"
	"errors"
	"strings"

	"caterconnect_backend/internal/auth"
	"caterconnect_backend/internal/logger"
	"caterconnect_backend/internal/repositories"
	"caterconnect_backend/pkg/apperrors"
	"caterconnect_backend/pkg/contextkeys"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const CronSecretHeader = "X-Cron-Secret"

// AuthMiddleware проверяет Supabase access token. Токен берется из
// Authorization: Bearer, для websocket также из ?token=.
func AuthMiddleware(verifier *auth.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			apperrors.HandleError(c, apperrors.NewUnauthorizedError("Authorization header missing or invalid"))
			return
		}

		identity, err := verifier.Verify(c.Request.Context(), token)
		if err != nil {
			logger.CtxWarn(c.Request.Context(), "token rejected", "error", err.Error(), "path", c.Request.URL.Path)
			apperrors.HandleError(c, apperrors.ErrInvalidToken)
			return
		}

		c.Set(contextkeys.UserIDKey, identity.ID)
		c.Set(contextkeys.EmailKey, identity.Email)
		c.Set(contextkeys.IdentityKey, identity)
		c.Request = c.Request.WithContext(logger.WithUserID(c.Request.Context(), identity.ID))
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			return ""
		}
		return strings.TrimSpace(parts[1])
	}
	return strings.TrimSpace(c.Query("token"))
}

// RequirePermission проверяет роль из профиля в БД (роль выбирается при sync,
// в токене ее нет).
func RequirePermission(userRepo repositories.UserRepository, permission string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := GetUserID(c)
		if userID == "" {
			apperrors.HandleError(c, apperrors.NewUnauthorizedError("User not authenticated"))
			return
		}

		val, _ := c.Get(string(contextkeys.DBContextKey))
		db, ok := val.(*gorm.DB)
		if !ok {
			apperrors.HandleError(c, apperrors.InternalError(errors.New("db missing in context")))
			return
		}

		user, err := userRepo.FindByID(db.WithContext(c.Request.Context()), userID)
		if err != nil {
			if errors.Is(err, repositories.ErrUserNotFound) {
				apperrors.HandleError(c, apperrors.ErrProfileRequired)
				return
			}
			apperrors.HandleError(c, apperrors.DatabaseError(err))
			return
		}

		if !auth.HasPermission(user.Role, permission) {
			logger.CtxWarn(c.Request.Context(), "permission denied", "role", user.Role, "permission", permission)
			apperrors.HandleError(c, apperrors.ErrInsufficientPermissions)
			return
		}

		c.Set(contextkeys.RoleKey, user.Role)
		c.Next()
	}
}

// CronSecretMiddleware - для внешнего планировщика, пустой секрет закрывает маршрут
func CronSecretMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		provided := c.GetHeader(CronSecretHeader)
		if secret == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(secret)) != 1 {
			apperrors.HandleError(c, apperrors.NewUnauthorizedError("Invalid cron secret"))
			return
		}
		c.Next()
	}
}

// GetUserID извлекает ID пользователя из контекста
func GetUserID(c *gin.Context) string {
	id, _ := c.Get(contextkeys.UserIDKey)
	userID, _ := id.(string)
	return userID
}
