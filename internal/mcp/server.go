package mcp

import (
	"context"
	"math/rand"
	"sync/atomic"
	"time"

	"newsvendor-mcp/internal/config"
	"newsvendor-mcp/internal/runstore"
	"newsvendor-mcp/internal/simulation"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog/log"
)

// Server holds the state for the MCP server.
type Server struct {
	cfg     *config.AppConfig
	store   *runstore.Store
	version string

	// newSource builds the uniform source for the i-th policy of a request.
	newSource func(i int) simulation.Source
}

// NewServer creates a new MCP server. Runs are kept in store.
func NewServer(cfg *config.AppConfig, store *runstore.Store, version string) *Server {
	var counter atomic.Int64
	base := time.Now().UnixNano()
	return &Server{
		cfg:     cfg,
		store:   store,
		version: version,
		newSource: func(i int) simulation.Source {
			return rand.New(rand.NewSource(base + counter.Add(1)*1000 + int64(i)))
		},
	}
}

// Build returns the protocol server with every tool registered.
func (s *Server) Build() *mcpsdk.Server {
	server := mcpsdk.NewServer(&mcpsdk.Implementation{
		Name:    "newsvendor-mcp",
		Version: s.version,
	}, nil)
	s.registerTools(server)
	return server
}

// Start serves MCP over stdio until the client disconnects or ctx is done.
func (s *Server) Start(ctx context.Context) error {
	if s.cfg.PersistRuns {
		if err := s.store.Load(s.cfg.CacheDir); err != nil {
			log.Warn().Err(err).Msg("Failed to load cached simulation runs")
		}
	}

	log.Info().Msg("MCP Server starting Stdio loop")
	err := s.Build().Run(ctx, &mcpsdk.StdioTransport{})
	if ctx.Err() != nil {
		return nil
	}
	return err
}

func (s *Server) persist() {
	if !s.cfg.PersistRuns {
		return
	}
	if err := s.store.Save(s.cfg.CacheDir); err != nil {
		log.Warn().Err(err).Msg("Failed to persist simulation runs")
	}
}
