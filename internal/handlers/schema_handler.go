package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"schemabrowser/internal/responses"
	"schemabrowser/internal/services"
)

type SchemaHandler struct {
	diagramService *services.DiagramService
	pinger         Pinger
}

// Pinger checks that the database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
	Driver() string
}

func NewSchemaHandler(diagramService *services.DiagramService, pinger Pinger) *SchemaHandler {
	return &SchemaHandler{
		diagramService: diagramService,
		pinger:         pinger,
	}
}

// VisualizeSchema handles GET /api/v1/schema/diagram
func (h *SchemaHandler) VisualizeSchema(c *gin.Context) {
	diagram, err := h.diagramService.Render(c.Request.Context())
	if err != nil {
		fail(c, err, "Failed to visualize schema")
		return
	}
	responses.Success(c, http.StatusOK, gin.H{"mermaid": diagram}, "Schema visualization generated successfully")
}

// Health handles GET /api/v1/health
func (h *SchemaHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.pinger.Ping(ctx); err != nil {
		responses.Fail(c, http.StatusServiceUnavailable, err, "Database unreachable")
		return
	}
	responses.Success(c, http.StatusOK, gin.H{"driver": h.pinger.Driver()}, "ok")
}
