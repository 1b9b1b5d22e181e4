package routes

import (
	"github.com/gin-gonic/gin"

	"schemabrowser/internal/handlers"
)

type SchemaRoutes struct {
	handler *handlers.SchemaHandler
}

func NewSchemaRoutes(handler *handlers.SchemaHandler) *SchemaRoutes {
	return &SchemaRoutes{handler: handler}
}

func (r *SchemaRoutes) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/health", r.handler.Health)
	router.GET("/schema/diagram", r.handler.VisualizeSchema)
}
