// Package api provides the HTTP surface for the memoflow service: memo
// CRUD through the lifecycle manager and read operations through the
// query façade.
package api

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/memoflow/memoflow/pkg/lifecycle"
	"github.com/memoflow/memoflow/pkg/query"
)

// Server is the HTTP API server for the memoflow system.
type Server struct {
	config  Config
	manager *lifecycle.Manager
	queries *query.Facade
	logger  *zap.Logger
	app     *fiber.App
}

// ErrorResponse is the JSON error body returned by all handlers.
type ErrorResponse struct {
	Error string `json:"error"`
}

// NewServer creates a new API server. The lifecycle manager and query
// façade are injected so they can be shared with other entry points.
func NewServer(config Config, manager *lifecycle.Manager, queries *query.Facade, logger *zap.Logger) *Server {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	s := &Server{
		config:  config,
		manager: manager,
		queries: queries,
		logger:  logger,
		app:     app,
	}

	app.Get("/", s.handleRoot)
	app.Get("/health", s.handleHealth)

	app.Post("/memos", s.handleCreateMemo)
	app.Get("/memos", s.handleListMemos)
	// Registered before /memos/:id so "search" is not taken as an id.
	app.Get("/memos/search/:query", s.handleSearchMemos)
	app.Get("/memos/:id", s.handleGetMemo)
	app.Put("/memos/:id", s.handleUpdateMemo)
	app.Delete("/memos/:id", s.handleDeleteMemo)

	app.Get("/tags", s.handleAllTags)
	app.Get("/tags/:name/memos", s.handleMemosByTag)
	app.Get("/stats", s.handleStats)

	return s
}

// Run starts the API server on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting API server",
		zap.String("listen", s.config.ListenAddr),
	)
	return s.app.Listen(s.config.ListenAddr)
}

// Shutdown gracefully shuts down the API server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
