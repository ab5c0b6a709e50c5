package http

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers resource-related routes.
func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware gin.HandlerFunc) {
	group := g.Group("/resources")

	// === Authenticated Routes ===
	group.Use(authMiddleware)
	{
		group.GET("", h.List)          // List resources
		group.GET("/export", h.Export) // Export filtered resources as xlsx
		group.GET("/:id", h.Get)       // Get resource details
		group.POST("", h.Create)       // Bulk create resources
		group.PATCH("/:id", h.Update)  // Update resource
		group.PUT("/:id", h.Update)    // Update resource
		group.DELETE("/:id", h.Delete) // Delete resource (?force=true removes rows)
	}

	categories := g.Group("/categories")
	categories.Use(authMiddleware)
	{
		categories.GET("", h.Categories) // List category labels
	}
}

// Module plugs the resource routes into the API router.
type Module struct {
	Handler *Handler
}

func (m Module) RegisterRoutes(g *gin.RouterGroup, authMiddleware gin.HandlerFunc) {
	RegisterRoutes(g, m.Handler, authMiddleware)
}
