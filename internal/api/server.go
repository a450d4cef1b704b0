package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/roomsense/roomsense-core/internal/infrastructure/config"
	"github.com/roomsense/roomsense-core/internal/infrastructure/logging"
	"github.com/roomsense/roomsense-core/internal/occupancy"
	"github.com/roomsense/roomsense-core/internal/scenario"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// SnapshotSource is the subset of the lookup client the snapshot passthrough
// needs: resolve the camera's network, then request a raw snapshot.
type SnapshotSource interface {
	CameraNetwork(ctx context.Context, serial string) (string, error)
	RawSnapshot(ctx context.Context, networkID, serial string) (int, []byte, error)
}

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config    config.APIConfig
	Logger    *logging.Logger
	Engine    *scenario.Engine
	State     *scenario.State
	Topology  *occupancy.Topology
	ExecRepo  scenario.Repository // may be nil; /executions then returns empty
	Snapshots SnapshotSource      // may be nil; /snapshot then always serves the fallback
	Version   string
}

// Server is the HTTP command server for RoomSense Core.
//
// It manages the HTTP listener, routes, and middleware. The server is
// created with New() and started with Start().
//
// Thread Safety: All methods are safe for concurrent use from multiple
// goroutines.
type Server struct {
	cfg       config.APIConfig
	logger    *logging.Logger
	engine    *scenario.Engine
	state     *scenario.State
	topology  *occupancy.Topology
	execRepo  scenario.Repository
	snapshots SnapshotSource
	version   string
	server    *http.Server
}

// New creates a new API server with the given dependencies.
//
// The server is not started until Start() is called.
//
// Parameters:
//   - deps: Required dependencies (config, logger, engine, state, topology)
//
// Returns:
//   - *Server: Configured server ready to start
//   - error: If required dependencies are missing
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Engine == nil {
		return nil, fmt.Errorf("scenario engine is required")
	}
	if deps.State == nil {
		return nil, fmt.Errorf("scenario state is required")
	}
	if deps.Topology == nil {
		return nil, fmt.Errorf("camera topology is required")
	}

	return &Server{
		cfg:       deps.Config,
		logger:    deps.Logger,
		engine:    deps.Engine,
		state:     deps.State,
		topology:  deps.Topology,
		execRepo:  deps.ExecRepo,
		snapshots: deps.Snapshots,
		version:   deps.Version,
	}, nil
}

// Start begins listening for HTTP connections.
//
// It builds the router and launches the HTTP listener in a background
// goroutine. The server can be stopped with Close().
//
// Parameters:
//   - ctx: Context for cancellation (not used for listener lifetime)
//
// Returns:
//   - error: If the server fails to start (port in use, etc.)
func (s *Server) Start(ctx context.Context) error {
	router := s.buildRouter()

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           router,
		ReadTimeout:       s.cfg.GetReadTimeout(),
		ReadHeaderTimeout: s.cfg.GetReadTimeout(),
		WriteTimeout:      s.cfg.GetWriteTimeout(),
		IdleTimeout:       s.cfg.GetIdleTimeout(),
	}

	go func() {
		s.logger.Info("API server starting", "address", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	return nil
}

// Close gracefully shuts down the API server.
//
// It waits up to 10 seconds for in-flight requests to complete,
// then forcefully closes remaining connections.
//
// Returns:
//   - error: If shutdown encounters an error
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}

// HealthCheck verifies the API server is running and responsive.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//
// Returns:
//   - error: nil if healthy, error describing the issue otherwise
func (s *Server) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("api health check: %w", ctx.Err())
	default:
	}

	if s.server == nil {
		return fmt.Errorf("api server not started")
	}

	return nil
}
