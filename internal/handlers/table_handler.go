package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"schemabrowser/internal/models"
	"schemabrowser/internal/responses"
	"schemabrowser/internal/services"
)

type TableHandler struct {
	tableService *services.TableService
}

func NewTableHandler(tableService *services.TableService) *TableHandler {
	return &TableHandler{
		tableService: tableService,
	}
}

// ListTables handles GET /api/v1/tables
func (h *TableHandler) ListTables(c *gin.Context) {
	summaries, err := h.tableService.Overview(c.Request.Context())
	if err != nil {
		fail(c, err, "Failed to list tables")
		return
	}

	responses.Success(c, http.StatusOK, gin.H{
		"tables": summaries,
		"groups": models.GroupByCategory(summaries),
	}, "Tables fetched successfully")
}

// GetTable handles GET /api/v1/tables/:table
func (h *TableHandler) GetTable(c *gin.Context) {
	view, err := h.tableService.ListRows(c.Request.Context(), c.Param("table"))
	if err != nil {
		fail(c, err, "Failed to fetch table")
		return
	}
	if view.Rows == nil {
		view.Rows = []models.Row{}
	}
	responses.Success(c, http.StatusOK, view, "Table fetched successfully")
}

// GetResolved handles GET /api/v1/tables/:table/resolved
func (h *TableHandler) GetResolved(c *gin.Context) {
	view, err := h.tableService.ResolvedRows(c.Request.Context(), c.Param("table"))
	if err != nil {
		fail(c, err, "Failed to fetch resolved rows")
		return
	}
	if view.Rows == nil {
		view.Rows = []models.Row{}
	}
	responses.Success(c, http.StatusOK, view, "Resolved rows fetched successfully")
}

// GetDependencies handles GET /api/v1/tables/:table/dependencies
func (h *TableHandler) GetDependencies(c *gin.Context) {
	info, err := h.tableService.AnalyzeDependencies(c.Request.Context(), c.Param("table"))
	if err != nil {
		fail(c, err, "Failed to analyze dependencies")
		return
	}
	responses.Success(c, http.StatusOK, gin.H{
		"dependencies": info,
		"blocking":     info.Blocking(),
	}, "Dependencies analyzed successfully")
}

// GetOptions handles GET /api/v1/tables/:table/options
func (h *TableHandler) GetOptions(c *gin.Context) {
	options, err := h.tableService.ForeignKeyOptions(c.Request.Context(), c.Param("table"))
	if err != nil {
		fail(c, err, "Failed to fetch foreign key options")
		return
	}
	responses.Success(c, http.StatusOK, options, "Options fetched successfully")
}

// GetRow handles GET /api/v1/tables/:table/rows/:pk
func (h *TableHandler) GetRow(c *gin.Context) {
	row, err := h.tableService.GetRow(c.Request.Context(), c.Param("table"), c.Param("pk"))
	if err != nil {
		fail(c, err, "Failed to fetch row")
		return
	}
	responses.Success(c, http.StatusOK, row, "Row fetched successfully")
}

// CreateRow handles POST /api/v1/tables/:table/rows
func (h *TableHandler) CreateRow(c *gin.Context) {
	values, err := decodeFieldValues(c.Request.Body)
	if err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	result, err := h.tableService.AddRow(c.Request.Context(), c.Param("table"), values)
	if err != nil {
		fail(c, err, "Failed to add row")
		return
	}
	responses.Success(c, http.StatusCreated, gin.H{"affected": result.Affected}, "Row added successfully")
}

// UpdateRow handles PUT /api/v1/tables/:table/rows/:pk
func (h *TableHandler) UpdateRow(c *gin.Context) {
	values, err := decodeFieldValues(c.Request.Body)
	if err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	result, err := h.tableService.UpdateRow(c.Request.Context(), c.Param("table"), c.Param("pk"), values)
	if err != nil {
		fail(c, err, "Failed to update row")
		return
	}
	responses.Success(c, http.StatusOK, gin.H{"affected": result.Affected}, "Row updated successfully")
}

// DeleteRow handles DELETE /api/v1/tables/:table/rows/:pk
func (h *TableHandler) DeleteRow(c *gin.Context) {
	result, err := h.tableService.DeleteRow(c.Request.Context(), c.Param("table"), c.Param("pk"))
	if err != nil {
		fail(c, err, "Failed to delete row")
		return
	}
	responses.Success(c, http.StatusOK, gin.H{"affected": result.Affected}, "Row deleted successfully")
}
