package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"time"

	"snowbrawl/internal/sim"
)

// Handler methods for routerHandlers. Used by both the standalone router
// (for testing) and the full Server.

func (h *routerHandlers) handleGetState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.engine.GetSnapshot())
}

func (h *routerHandlers) handleGetStats(w http.ResponseWriter, r *http.Request) {
	snapshot := h.engine.GetSnapshot()
	writeJSON(w, map[string]interface{}{
		"tick":        snapshot.Tick,
		"round":       snapshot.Round,
		"roundActive": snapshot.RoundActive,
		"agentCount":  len(snapshot.Agents),
		"aliveCount":  snapshot.AliveCount,
		"projectiles": len(snapshot.Projectiles),
		"pickups":     len(snapshot.Pickups),
		"eventLog":    h.engine.GetEventLogStats(),
	})
}

func (h *routerHandlers) handleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	snapshot := h.engine.GetSnapshot()

	agents := make([]sim.AgentSnapshot, len(snapshot.Agents))
	copy(agents, snapshot.Agents)
	sort.Slice(agents, func(i, j int) bool {
		if agents[i].Score != agents[j].Score {
			return agents[i].Score > agents[j].Score
		}
		return agents[i].Name < agents[j].Name
	})

	limit := 10
	if len(agents) < limit {
		limit = len(agents)
	}
	writeJSON(w, agents[:limit])
}

func (h *routerHandlers) handleGetUpgrades(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, sim.StatSpecs())
}

func (h *routerHandlers) handleAgentJoin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name       string  `json:"name"`
		Controlled bool    `json:"controlled"`
		Difficulty float64 `json:"difficulty"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		writeError(w, "Name is required", http.StatusBadRequest)
		return
	}

	agent := h.engine.AddAgent(req.Name, sim.AgentOptions{
		Controlled: req.Controlled,
		Difficulty: req.Difficulty,
	})
	if agent == nil {
		writeError(w, "Agent limit reached", http.StatusServiceUnavailable)
		return
	}

	writeJSON(w, map[string]interface{}{
		"id":         agent.ID,
		"name":       agent.Name,
		"controlled": agent.Controlled,
	})
}

func (h *routerHandlers) handleAgentBatchJoin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Count      int     `json:"count"`
		Difficulty float64 `json:"difficulty"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if req.Count <= 0 {
		req.Count = 4
	}
	if req.Count > 64 {
		req.Count = 64
	}

	count := 0
	base := h.engine.GetSnapshot().Tick
	for i := 0; i < req.Count; i++ {
		name := fmt.Sprintf("bot-%d-%d", base, i)
		if h.engine.AddAgent(name, sim.AgentOptions{Difficulty: req.Difficulty}) != nil {
			count++
		}
	}

	writeJSON(w, map[string]interface{}{
		"success": true,
		"count":   count,
	})
}

func (h *routerHandlers) handleAgentMove(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID  string   `json:"id"`
		Dir sim.Vec3 `json:"dir"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request", http.StatusBadRequest)
		return
	}

	// Unknown ids are a silent no-op in the engine; the command itself
	// still acknowledges.
	h.engine.MoveIntent(req.ID, req.Dir)
	writeJSON(w, map[string]bool{"success": true})
}

func (h *routerHandlers) handleAgentJump(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request", http.StatusBadRequest)
		return
	}
	h.engine.JumpIntent(req.ID)
	writeJSON(w, map[string]bool{"success": true})
}

func (h *routerHandlers) handleAgentThrow(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request", http.StatusBadRequest)
		return
	}
	writeJSON(w, map[string]bool{"success": h.engine.ThrowIntent(req.ID)})
}

func (h *routerHandlers) handleAgentUpgrade(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID   string `json:"id"`
		Stat string `json:"stat"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request", http.StatusBadRequest)
		return
	}

	stat, ok := sim.StatFromName(req.Stat)
	if !ok {
		writeError(w, "Unknown stat", http.StatusBadRequest)
		return
	}
	writeJSON(w, map[string]bool{"success": h.engine.ApplyUpgrade(req.ID, stat)})
}

func (h *routerHandlers) handleRoundStart(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DurationS float64 `json:"durationS"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if req.DurationS <= 0 {
		req.DurationS = 120
	}

	if err := h.engine.StartRound(time.Duration(req.DurationS * float64(time.Second))); err != nil {
		writeError(w, err.Error(), http.StatusConflict)
		return
	}
	writeJSON(w, map[string]bool{"success": true})
}

func (h *routerHandlers) handleMatchRestart(w http.ResponseWriter, r *http.Request) {
	h.engine.RestartMatch()
	writeJSON(w, map[string]bool{"success": true})
}

func (h *routerHandlers) handlePickupSpawn(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Pos sim.Vec3 `json:"pos"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request", http.StatusBadRequest)
		return
	}

	pk := h.engine.SpawnPickup(req.Pos)
	if pk == nil {
		writeError(w, "Pickup limit reached", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, map[string]interface{}{"success": true, "id": pk.ID})
}

// Helper functions (package-level for reuse)

func writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
