package routes

import (
	"github.com/gin-gonic/gin"

	"schemabrowser/internal/handlers"
)

type TableRoutes struct {
	tableHandler *handlers.TableHandler
}

func NewTableRoutes(tableHandler *handlers.TableHandler) *TableRoutes {
	return &TableRoutes{
		tableHandler: tableHandler,
	}
}

func (r *TableRoutes) RegisterRoutes(router *gin.RouterGroup) {
	tables := router.Group("/tables")
	{
		tables.GET("", r.tableHandler.ListTables)
		tables.GET("/:table", r.tableHandler.GetTable)
		tables.GET("/:table/dependencies", r.tableHandler.GetDependencies)
		tables.GET("/:table/options", r.tableHandler.GetOptions)
		tables.GET("/:table/resolved", r.tableHandler.GetResolved)

		tables.POST("/:table/rows", r.tableHandler.CreateRow)
		tables.GET("/:table/rows/:pk", r.tableHandler.GetRow)
		tables.PUT("/:table/rows/:pk", r.tableHandler.UpdateRow)
		tables.DELETE("/:table/rows/:pk", r.tableHandler.DeleteRow)
	}
}
