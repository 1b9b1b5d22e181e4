package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"schemabrowser/internal/classification"
	"schemabrowser/internal/config"
	"schemabrowser/internal/database"
	"schemabrowser/internal/handlers"
	"schemabrowser/internal/middlewares"
	"schemabrowser/internal/repositories"
	"schemabrowser/internal/routes"
	"schemabrowser/internal/services"
)

// Core is the wired browser: catalog, executor and the services built on them.
type Core struct {
	DB       database.Querier
	Catalog  *repositories.SchemaRepository
	Executor *repositories.QueryRepository
	Builder  *services.StatementBuilder
	Analyzer *services.DependencyAnalyzer
	Tables   *services.TableService
	Diagram  *services.DiagramService
}

// NewCore wires the services around an open connection source.
func NewCore(db database.Querier, cfg *config.Config, policy *classification.Policy) (*Core, error) {
	dialect, err := repositories.DialectFor(db.Driver(), cfg.Schema)
	if err != nil {
		return nil, err
	}

	catalog := repositories.NewSchemaRepository(db, dialect, cfg.QueryTimeout)
	executor := repositories.NewQueryRepository(db, cfg.QueryTimeout)
	builder := services.NewStatementBuilder(catalog, dialect)
	analyzer := services.NewDependencyAnalyzer(catalog, cfg.CountConcurrency)

	return &Core{
		DB:       db,
		Catalog:  catalog,
		Executor: executor,
		Builder:  builder,
		Analyzer: analyzer,
		Tables:   services.NewTableService(catalog, builder, analyzer, executor, policy, cfg.CountConcurrency),
		Diagram:  services.NewDiagramService(catalog),
	}, nil
}

// Open connects to the configured database, seeds the demo schema when
// asked to, and wires the core.
func Open(ctx context.Context, cfg *config.Config) (*Core, error) {
	policy, err := cfg.Policy()
	if err != nil {
		return nil, fmt.Errorf("failed to load classification policy: %w", err)
	}

	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if cfg.SeedDemo {
		if err := database.SeedDemoSchema(ctx, db); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to seed demo schema: %w", err)
		}
	}

	core, err := NewCore(db, cfg, policy)
	if err != nil {
		db.Close()
		return nil, err
	}
	return core, nil
}

// NewRouter builds the gin engine serving the core.
func NewRouter(core *Core, cfg *config.Config) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery(), middlewares.RequestID)

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", middlewares.RequestIDHeader}
	corsConfig.ExposeHeaders = []string{middlewares.RequestIDHeader}
	if len(cfg.CORSOrigins) == 0 || (len(cfg.CORSOrigins) == 1 && cfg.CORSOrigins[0] == "*") {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = cfg.CORSOrigins
	}
	router.Use(cors.New(corsConfig))

	tableHandler := handlers.NewTableHandler(core.Tables)
	schemaHandler := handlers.NewSchemaHandler(core.Diagram, core.DB)
	routes.RegisterRoutes(router, tableHandler, schemaHandler)

	return router
}

// NewServer creates and configures the HTTP server. The returned core must
// be closed by the caller after shutdown.
func NewServer(ctx context.Context, cfg *config.Config) (*http.Server, *Core, error) {
	core, err := Open(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	log.Printf("Browsing %s database (schema %q)", core.DB.Driver(), cfg.Schema)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      NewRouter(core, cfg),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	return server, core, nil
}

// Close releases the connection pool.
func (c *Core) Close() {
	c.DB.Close()
}
