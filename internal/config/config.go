// Package config provides centralized configuration management.
// This is the SINGLE SOURCE OF TRUTH for all simulation and server settings.
//
// IMPORTANT: When changing values, only modify this file.
// All other parts of the codebase should reference these values.
package config

import (
	"os"
	"strconv"

	"snowbrawl/internal/sim"
)

// =============================================================================
// SIMULATION CONFIGURATION
// =============================================================================

// SimConfig holds the physics and arena tunables handed to the engine.
type SimConfig struct {
	Gravity    float64
	ArenaHalfX float64
	ArenaHalfZ float64
	WallHeight float64
	TickRate   int
	Seed       int64

	MaxAgents      int
	MaxProjectiles int
	MaxPickups     int

	SanctuaryRadius float64
	ReplenishRate   float64
	HealthRegenRate float64
}

// DefaultSim returns the default simulation configuration.
func DefaultSim() SimConfig {
	return SimConfig{
		Gravity:         9.81,
		ArenaHalfX:      30,
		ArenaHalfZ:      30,
		WallHeight:      3,
		TickRate:        30,
		MaxAgents:       16,
		MaxProjectiles:  64,
		MaxPickups:      32,
		SanctuaryRadius: 5,
		ReplenishRate:   1.0, // one snowball per second
		HealthRegenRate: 5.0, // health per second while sheltered
	}
}

// SimFromEnv returns simulation configuration with environment overrides.
func SimFromEnv() SimConfig {
	cfg := DefaultSim()

	if v := getEnvFloat("ARENA_HALF_X", 0); v > 0 {
		cfg.ArenaHalfX = v
	}
	if v := getEnvFloat("ARENA_HALF_Z", 0); v > 0 {
		cfg.ArenaHalfZ = v
	}
	if v := getEnvInt("TICK_RATE", 0); v > 0 {
		cfg.TickRate = v
	}
	if v := getEnvInt("RNG_SEED", 0); v != 0 {
		cfg.Seed = int64(v)
	}
	if v := getEnvInt("MAX_AGENTS", 0); v > 0 {
		cfg.MaxAgents = v
	}
	if v := getEnvInt("MAX_PROJECTILES", 0); v > 0 {
		cfg.MaxProjectiles = v
	}
	if v := getEnvInt("MAX_PICKUPS", 0); v > 0 {
		cfg.MaxPickups = v
	}
	if v := getEnvFloat("SANCTUARY_RADIUS", 0); v > 0 {
		cfg.SanctuaryRadius = v
	}

	return cfg
}

// =============================================================================
// BOT CONFIGURATION
// =============================================================================

// BotConfig holds autonomous-agent controller settings.
type BotConfig struct {
	Count            int     // bots auto-joined at startup
	Difficulty       float64 // default difficulty 0..1
	SightRange       float64
	DecisionInterval float64 // seconds
	RetreatFrac      float64 // retreat below this health fraction
	RecoverFrac      float64 // resume fighting at or above this fraction
}

// DefaultBots returns the default bot configuration.
func DefaultBots() BotConfig {
	return BotConfig{
		Count:            6,
		Difficulty:       0.5,
		SightRange:       18,
		DecisionInterval: 0.4,
		RetreatFrac:      0.3,
		RecoverFrac:      0.8,
	}
}

// BotsFromEnv returns bot configuration with environment overrides.
func BotsFromEnv() BotConfig {
	cfg := DefaultBots()

	if v := getEnvInt("BOT_COUNT", -1); v >= 0 {
		cfg.Count = v
	}
	if v := getEnvFloat("BOT_DIFFICULTY", -1); v >= 0 && v <= 1 {
		cfg.Difficulty = v
	}
	if v := getEnvFloat("BOT_SIGHT_RANGE", 0); v > 0 {
		cfg.SightRange = v
	}

	return cfg
}

// =============================================================================
// MATCH CONFIGURATION
// =============================================================================

// MatchConfig holds round orchestration settings.
type MatchConfig struct {
	RoundSeconds    float64 // round time budget
	AutoStart       bool    // start a round immediately after boot
	AutoRestart     bool    // start the next round after one ends
	RestartDelayS   float64 // pause between rounds
	PickupIntervalS float64 // seconds between snowflake drops, 0 disables
}

// DefaultMatch returns the default match configuration.
func DefaultMatch() MatchConfig {
	return MatchConfig{
		RoundSeconds:    120,
		AutoStart:       true,
		AutoRestart:     true,
		RestartDelayS:   5,
		PickupIntervalS: 4,
	}
}

// MatchFromEnv returns match configuration with environment overrides.
func MatchFromEnv() MatchConfig {
	cfg := DefaultMatch()

	if v := getEnvFloat("ROUND_SECONDS", 0); v > 0 {
		cfg.RoundSeconds = v
	}
	if os.Getenv("AUTO_START") == "false" {
		cfg.AutoStart = false
	}
	if os.Getenv("AUTO_RESTART") == "false" {
		cfg.AutoRestart = false
	}
	if v := getEnvFloat("PICKUP_INTERVAL", -1); v >= 0 {
		cfg.PickupIntervalS = v
	}

	return cfg
}

// =============================================================================
// SERVER CONFIGURATION
// =============================================================================

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int
}

// DefaultServer returns the default server configuration.
func DefaultServer() ServerConfig {
	return ServerConfig{Port: 3000}
}

// ServerFromEnv returns server configuration with environment overrides.
func ServerFromEnv() ServerConfig {
	cfg := DefaultServer()
	if p := getEnvInt("PORT", 0); p > 0 {
		cfg.Port = p
	}
	return cfg
}

// =============================================================================
// COMPLETE APP CONFIGURATION
// =============================================================================

// AppConfig holds the complete application configuration.
type AppConfig struct {
	Sim    SimConfig
	Bots   BotConfig
	Match  MatchConfig
	Server ServerConfig
}

// Load returns the complete configuration with environment overrides.
func Load() AppConfig {
	return AppConfig{
		Sim:    SimFromEnv(),
		Bots:   BotsFromEnv(),
		Match:  MatchFromEnv(),
		Server: ServerFromEnv(),
	}
}

// EngineConfig assembles the engine's mandatory configuration from the
// sim and bot sections.
func (c AppConfig) EngineConfig() sim.Config {
	return sim.Config{
		Gravity:             c.Sim.Gravity,
		ArenaHalfX:          c.Sim.ArenaHalfX,
		ArenaHalfZ:          c.Sim.ArenaHalfZ,
		WallHeight:          c.Sim.WallHeight,
		TickRate:            c.Sim.TickRate,
		Seed:                c.Sim.Seed,
		MaxAgents:           c.Sim.MaxAgents,
		MaxProjectiles:      c.Sim.MaxProjectiles,
		MaxPickups:          c.Sim.MaxPickups,
		SanctuaryRadius:     c.Sim.SanctuaryRadius,
		ReplenishRate:       c.Sim.ReplenishRate,
		HealthRegenRate:     c.Sim.HealthRegenRate,
		BotSightRange:       c.Bots.SightRange,
		BotDecisionInterval: c.Bots.DecisionInterval,
		RetreatHealthFrac:   c.Bots.RetreatFrac,
		RecoverHealthFrac:   c.Bots.RecoverFrac,
	}
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}
