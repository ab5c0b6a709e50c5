package auth

import (
	"time"

	"github.com/gin-gonic/gin"
)

const (
	subjectKey   = "authSubject"
	emailKey     = "authEmail"
	expiresAtKey = "authExpiresAt"
)

// GetUserID returns the authenticated token subject or empty string.
func GetUserID(c *gin.Context) string {
	return c.GetString(subjectKey)
}

// GetUserEmail returns the email claim of the token or empty string.
func GetUserEmail(c *gin.Context) string {
	return c.GetString(emailKey)
}

// GetExpiresAt returns when the caller's token expires.
func GetExpiresAt(c *gin.Context) (time.Time, bool) {
	v, ok := c.Get(expiresAtKey)
	if !ok {
		return time.Time{}, false
	}
	t, ok := v.(time.Time)
	return t, ok
}
