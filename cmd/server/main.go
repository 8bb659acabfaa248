package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"snowbrawl/internal/api"
	"snowbrawl/internal/config"
	"snowbrawl/internal/sim"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("no .env file found, using environment variables only")
	}

	log.Println("================================")
	log.Println(" SNOWBRAWL - ARENA ENGINE")
	log.Println("================================")

	appConfig := config.Load()

	engine, err := sim.NewEngine(appConfig.EngineConfig())
	if err != nil {
		log.Fatalf("engine config rejected: %v", err)
	}

	// Start event log
	eventLogPath := getEnvWithDefault("EVENT_LOG_PATH", "events.jsonl")
	if err := engine.StartEventLog(eventLogPath); err != nil {
		log.Printf("event log disabled: %v", err)
	} else {
		log.Printf("event log: %s", eventLogPath)
	}

	// Start debug server (pprof + prometheus) on localhost
	if os.Getenv("DISABLE_DEBUG_SERVER") != "true" {
		if err := api.StartDebugServer(api.DefaultObservabilityConfig()); err != nil {
			log.Printf("debug server disabled: %v", err)
		}
	}

	// Tick timing feeds the prometheus histogram
	engine.SetTickObserver(api.RecordTick)
	engine.OnEliminate = func(attackerID, victimID string) {
		api.RecordElimination()
	}

	// Auto-join the configured bot lineup
	for i := 0; i < appConfig.Bots.Count; i++ {
		name := fmt.Sprintf("bot-%02d", i+1)
		engine.AddAgent(name, sim.AgentOptions{Difficulty: appConfig.Bots.Difficulty})
	}

	server := api.NewServer(engine)
	hub := server.Hub()

	// Round orchestration: announce results and optionally chain rounds
	roundDuration := time.Duration(appConfig.Match.RoundSeconds * float64(time.Second))
	engine.OnRoundEnd = func(round int, winnerID, reason string) {
		api.RecordRoundEnd()
		hub.Broadcast("round:end", map[string]interface{}{
			"round":    round,
			"winnerId": winnerID,
			"reason":   reason,
		})
		if appConfig.Match.AutoRestart {
			go func() {
				time.Sleep(time.Duration(appConfig.Match.RestartDelayS * float64(time.Second)))
				if err := engine.StartRound(roundDuration); err != nil {
					log.Printf("round restart failed: %v", err)
				}
			}()
		}
	}

	// Nudge connected UIs when an agent banks a snowflake, so upgrade
	// menus can refresh without polling.
	engine.OnPickup = func(agentID string) {
		hub.Broadcast("agent:pickup", map[string]string{"agentId": agentID})
	}

	engine.Start()
	log.Println("simulation engine started")

	if appConfig.Match.AutoStart {
		if err := engine.StartRound(roundDuration); err != nil {
			log.Printf("round start failed: %v", err)
		}
	}

	// Periodic snowflake drops at random arena points
	if appConfig.Match.PickupIntervalS > 0 {
		interval := time.Duration(appConfig.Match.PickupIntervalS * float64(time.Second))
		go func() {
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for range ticker.C {
				if _, active := engine.Round(); active {
					engine.SpawnPickup(engine.RandomArenaPoint())
				}
			}
		}()
	}

	go func() {
		addr := ":" + strconv.Itoa(appConfig.Server.Port)
		log.Printf("api server on http://localhost%s", addr)
		if err := server.Start(addr); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	log.Println("server ready, press Ctrl+C to stop")
	<-quit

	log.Println("shutting down...")
	server.Stop()
	engine.StopEventLog()
	engine.Stop()
	log.Println("goodbye")
}

func getEnvWithDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
