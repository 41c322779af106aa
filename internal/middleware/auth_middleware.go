package middleware

import (
	"net/http"
	"strings"

	"taskboard/internal/auth"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// UserIDKey is the gin context key holding the authenticated uuid.UUID.
const UserIDKey = "userID"

// accessTokenParam carries the token on websocket upgrades, where browsers
// cannot set headers.
const accessTokenParam = "access_token"

// JWTAuthMiddleware проверяет Bearer токен и кладет ID пользователя в контекст
func JWTAuthMiddleware(jwtSecret string) gin.HandlerFunc {
	tokens := auth.NewTokenManager(jwtSecret, 0)

	return func(c *gin.Context) {
		tokenStr, errMsg := bearerToken(c)
		if errMsg != "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errMsg})
			return
		}

		userIDStr, err := tokens.ParseToken(tokenStr)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		userID, err := uuid.Parse(userIDStr)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid user ID in token"})
			return
		}

		c.Set(UserIDKey, userID)
		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, string) {
	header := c.GetHeader("Authorization")
	if header == "" {
		if websocket.IsWebSocketUpgrade(c.Request) {
			if token := c.Query(accessTokenParam); token != "" {
				return token, ""
			}
		}
		return "", "Authorization header is required"
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || strings.TrimSpace(parts[1]) == "" {
		return "", "Authorization header format must be Bearer {token}"
	}
	return strings.TrimSpace(parts[1]), ""
}

// CurrentUserID returns the authenticated user, or uuid.Nil when the request
// carries none.
func CurrentUserID(c *gin.Context) uuid.UUID {
	v, exists := c.Get(UserIDKey)
	if !exists {
		return uuid.Nil
	}
	id, ok := v.(uuid.UUID)
	if !ok {
		return uuid.Nil
	}
	return id
}
