package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/link-catalog-backend/internal/auth"
)

func registerAuthRoutes(v1 *gin.RouterGroup, authMiddleware gin.HandlerFunc) {
	group := v1.Group("/auth")
	group.Use(authMiddleware)
	{
		group.GET("/token", TokenInfo) // Inspect the caller's token
	}
}

//
// GET /v1/auth/token
//

// TokenInfo lets the admin UI check whether its token is still accepted and
// when it expires.
func TokenInfo(c *gin.Context) {
	resp := TokenInfoResponse{
		Subject: auth.GetUserID(c),
		Email:   auth.GetUserEmail(c),
	}
	if exp, ok := auth.GetExpiresAt(c); ok {
		resp.ExpiresAt = &exp
	}
	c.JSON(http.StatusOK, resp)
}
