package api

import "github.com/gin-gonic/gin"

// Module is a feature that mounts its routes under /v1. authMiddleware must
// guard every route it registers.
type Module interface {
	RegisterRoutes(v1 *gin.RouterGroup, authMiddleware gin.HandlerFunc)
}
