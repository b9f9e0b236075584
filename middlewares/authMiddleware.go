package middlewares

import (
	"net/http"
	"strings"

	authUtils "civicreport-be/utils"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// AuthCookie is the cookie login sets for browser clients.
const AuthCookie = "auth_token"

// AuthMiddleware accepts a token from "Authorization: Bearer <token>" or the auth_token
// cookie and stores the user ID under "user_id".
func AuthMiddleware(secret string, log *logrus.Entry) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c.GetHeader("Authorization"))
		if tokenString == "" {
			if cookie, err := c.Cookie(AuthCookie); err == nil {
				tokenString = cookie
			}
		}
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "No authorization token provided"})
			return
		}

		userID, err := authUtils.ParseToken(tokenString, secret)
		if err != nil {
			log.WithField("path", c.FullPath()).Debug("token validation failed")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization token"})
			return
		}

		c.Set("user_id", userID)
		c.Next()
	}
}

func bearerToken(header string) string {
	header = strings.TrimSpace(header)
	if header == "" {
		return ""
	}
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return header
}
