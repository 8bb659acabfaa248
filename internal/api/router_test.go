package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"snowbrawl/internal/sim"
)

func testEngine(t *testing.T) *sim.Engine {
	t.Helper()
	engine, err := sim.NewEngine(sim.Config{
		Gravity:             9.81,
		ArenaHalfX:          30,
		ArenaHalfZ:          30,
		WallHeight:          3,
		TickRate:            30,
		Seed:                7,
		MaxAgents:           16,
		MaxProjectiles:      64,
		MaxPickups:          32,
		SanctuaryRadius:     5,
		ReplenishRate:       1,
		HealthRegenRate:     5,
		BotSightRange:       18,
		BotDecisionInterval: 0.4,
		RetreatHealthFrac:   0.3,
		RecoverHealthFrac:   0.8,
	})
	if err != nil {
		t.Fatal(err)
	}
	return engine
}

func testServer(t *testing.T) (*httptest.Server, *sim.Engine) {
	t.Helper()
	engine := testEngine(t)
	router := NewRouter(RouterConfig{
		Engine:         engine,
		DisableLogging: true,
		RateLimitConfig: &RateLimitConfig{
			RequestsPerSecond: 1000,
			Burst:             1000,
			CleanupInterval:   time.Minute,
		},
	})
	ts := httptest.NewServer(router)
	t.Cleanup(ts.Close)
	return ts, engine
}

func postJSON(t *testing.T, url string, body interface{}) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func TestGetState(t *testing.T) {
	ts, engine := testServer(t)
	engine.AddAgent("probe", sim.AgentOptions{Controlled: true})
	engine.Step(1.0 / 30)

	resp, err := http.Get(ts.URL + "/api/state")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var snap sim.Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		t.Fatal(err)
	}
	if len(snap.Agents) != 1 {
		t.Errorf("expected 1 agent in state, got %d", len(snap.Agents))
	}
}

func TestAgentJoin(t *testing.T) {
	ts, engine := testServer(t)

	resp := postJSON(t, ts.URL+"/api/agent/join", map[string]interface{}{
		"name":       "newcomer",
		"controlled": true,
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var out struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if engine.GetAgent(out.ID) == nil {
		t.Error("joined agent not found in engine")
	}
}

func TestAgentJoinRequiresName(t *testing.T) {
	ts, _ := testServer(t)

	resp := postJSON(t, ts.URL+"/api/agent/join", map[string]interface{}{})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", resp.StatusCode)
	}
}

func TestAgentThrow(t *testing.T) {
	ts, engine := testServer(t)
	a := engine.AddAgent("pitcher", sim.AgentOptions{Controlled: true})

	resp := postJSON(t, ts.URL+"/api/agent/throw", map[string]string{"id": a.ID})
	defer resp.Body.Close()

	var out struct {
		Success bool `json:"success"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if !out.Success {
		t.Error("throw should succeed with full stock")
	}
	if a.Stock != sim.BaseMaxStock-1 {
		t.Errorf("stock should decrement, got %d", a.Stock)
	}
}

func TestAgentUpgradeUnknownStat(t *testing.T) {
	ts, engine := testServer(t)
	a := engine.AddAgent("shopper", sim.AgentOptions{Controlled: true})

	resp := postJSON(t, ts.URL+"/api/agent/upgrade", map[string]string{
		"id":   a.ID,
		"stat": "turbo",
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown stat, got %d", resp.StatusCode)
	}
}

func TestRoundStartConflict(t *testing.T) {
	ts, _ := testServer(t)

	// No agents registered yet.
	resp := postJSON(t, ts.URL+"/api/round/start", map[string]float64{"durationS": 60})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusConflict {
		t.Errorf("expected 409, got %d", resp.StatusCode)
	}
}

func TestLeaderboardOrdering(t *testing.T) {
	ts, engine := testServer(t)
	low := engine.AddAgent("low", sim.AgentOptions{Controlled: true})
	high := engine.AddAgent("high", sim.AgentOptions{Controlled: true})
	low.Score = 10
	high.Score = 500
	engine.Step(1.0 / 30)

	resp, err := http.Get(ts.URL + "/api/leaderboard")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var board []sim.AgentSnapshot
	if err := json.NewDecoder(resp.Body).Decode(&board); err != nil {
		t.Fatal(err)
	}
	if len(board) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(board))
	}
	if board[0].Name != "high" {
		t.Errorf("expected 'high' first, got %q", board[0].Name)
	}
}

func TestGetUpgradesTable(t *testing.T) {
	ts, _ := testServer(t)

	resp, err := http.Get(ts.URL + "/api/upgrades")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var specs []sim.StatSpec
	if err := json.NewDecoder(resp.Body).Decode(&specs); err != nil {
		t.Fatal(err)
	}
	if len(specs) != int(sim.StatCount) {
		t.Errorf("expected %d stats, got %d", sim.StatCount, len(specs))
	}
}

func TestPickupSpawnEndpoint(t *testing.T) {
	ts, engine := testServer(t)

	resp := postJSON(t, ts.URL+"/api/pickup/spawn", map[string]interface{}{
		"pos": sim.Vec3{X: 3},
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	engine.Step(1.0 / 30)
	if len(engine.GetSnapshot().Pickups) != 1 {
		t.Error("spawned pickup missing from snapshot")
	}
}
