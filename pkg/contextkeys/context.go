package contextkeys

type contextKey string

// DBContextKey - ключ, под которым DBMiddleware кладет *gorm.DB в gin.Context
const DBContextKey = contextKey("db")

// Ключи идентичности, которые выставляет AuthMiddleware
const (
	UserIDKey   = "userID"
	EmailKey    = "email"
	IdentityKey = "identity"
	RoleKey     = "role"
)
