package api

import (
	"time"

	"snowbrawl/internal/sim"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// EngineInterface defines the simulation methods used by the API.
// This interface enables mocking for tests without spinning up the full
// tick loop. Keep this minimal - only methods the API layer actually calls.
type EngineInterface interface {
	// GetSnapshot returns the latest lock-free immutable snapshot
	GetSnapshot() *sim.Snapshot
	// AddAgent registers a combatant (nil when the cap is reached)
	AddAgent(name string, opts sim.AgentOptions) *sim.Agent
	// GetAgent returns an agent by id (may be nil)
	GetAgent(id string) *sim.Agent
	// MoveIntent sets an agent's movement direction
	MoveIntent(id string, dir sim.Vec3)
	// JumpIntent makes a grounded agent jump
	JumpIntent(id string)
	// ThrowIntent throws along the agent's facing; false when declined
	ThrowIntent(id string) bool
	// ApplyUpgrade buys one stat level; false when declined
	ApplyUpgrade(id string, stat sim.Stat) bool
	// StartRound arms a new round with the given duration
	StartRound(duration time.Duration) error
	// RestartMatch wipes scores, upgrades and round history
	RestartMatch()
	// SpawnPickup drops a snowflake (nil at the cap)
	SpawnPickup(pos sim.Vec3) *sim.Pickup
	// GetEventLogStats returns event log counters
	GetEventLogStats() map[string]interface{}
}

// RouterConfig contains all dependencies needed to construct the HTTP
// router. Designed for dependency injection and testability.
//
// Example usage in tests:
//
//	cfg := api.RouterConfig{
//	    Engine: engine,
//	    RateLimitConfig: &api.RateLimitConfig{
//	        RequestsPerSecond: 1000, // High limit for tests
//	        Burst:             1000,
//	    },
//	}
//	router := api.NewRouter(cfg)
//	ts := httptest.NewServer(router)
type RouterConfig struct {
	// Engine is the simulation engine (required)
	Engine EngineInterface

	// RateLimiter is an optional pre-configured rate limiter.
	// If nil, a new one is created from RateLimitConfig.
	RateLimiter *IPRateLimiter

	// RateLimitConfig is only used when RateLimiter is nil. If both are
	// nil, DefaultRateLimitConfig applies.
	RateLimitConfig *RateLimitConfig

	// CORSOrigins is an optional list of allowed CORS origins.
	// If nil, the default local-development origins apply.
	CORSOrigins []string

	// DisableLogging disables the request logger middleware (benchmarks).
	DisableLogging bool
}

// routerHandlers holds the handler dependencies for the route tree.
type routerHandlers struct {
	engine EngineInterface
}

// NewRouter constructs the HTTP router with all middleware and routes.
//
// IMPORTANT: This function is PURE - it has no side effects:
//   - No goroutines are started
//   - No network listeners are opened
//   - No background workers are launched
//
// This makes it safe to use in tests with httptest.NewServer.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	if !cfg.DisableLogging {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)

	// Rate limiting before CORS to reject early and save CPU
	rateLimiter := cfg.RateLimiter
	if rateLimiter == nil {
		rateLimitCfg := DefaultRateLimitConfig
		if cfg.RateLimitConfig != nil {
			rateLimitCfg = *cfg.RateLimitConfig
		}
		rateLimiter = NewIPRateLimiter(rateLimitCfg)
	}
	r.Use(rateLimiter.Middleware)

	corsOrigins := cfg.CORSOrigins
	if corsOrigins == nil {
		corsOrigins = []string{
			"http://localhost:*",
			"http://127.0.0.1:*",
		}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}))

	h := &routerHandlers{engine: cfg.Engine}

	r.Route("/api", func(r chi.Router) {
		// Read side
		r.Get("/state", h.handleGetState)
		r.Get("/stats", h.handleGetStats)
		r.Get("/leaderboard", h.handleGetLeaderboard)
		r.Get("/upgrades", h.handleGetUpgrades)

		// Agent commands
		r.Post("/agent/join", h.handleAgentJoin)
		r.Post("/agent/batch", h.handleAgentBatchJoin)
		r.Post("/agent/move", h.handleAgentMove)
		r.Post("/agent/jump", h.handleAgentJump)
		r.Post("/agent/throw", h.handleAgentThrow)
		r.Post("/agent/upgrade", h.handleAgentUpgrade)

		// Match control
		r.Post("/round/start", h.handleRoundStart)
		r.Post("/match/restart", h.handleMatchRestart)
		r.Post("/pickup/spawn", h.handlePickupSpawn)
	})

	return r
}
