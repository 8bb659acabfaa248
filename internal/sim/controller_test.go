package sim

import (
	"math"
	"math/rand"
	"testing"
)

func TestWeightedPick(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	tests := []struct {
		name    string
		weights []float64
		want    int // -1 means "any valid index"
	}{
		{"all zero", []float64{0, 0, 0}, -1},
		{"empty", nil, -1},
		{"single", []float64{1}, 0},
		{"only middle", []float64{0, 5, 0}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := weightedPick(rng, tt.weights); got != tt.want {
				t.Errorf("weightedPick = %d, want %d", got, tt.want)
			}
		})
	}

	// Uniform weights should reach every index eventually.
	seen := map[int]bool{}
	for i := 0; i < 200; i++ {
		seen[weightedPick(rng, []float64{1, 1, 1})] = true
	}
	for i := 0; i < 3; i++ {
		if !seen[i] {
			t.Errorf("index %d never sampled from uniform weights", i)
		}
	}
}

func TestBotRetreatsWhenHurt(t *testing.T) {
	engine, _ := NewEngine(testConfig())
	a := engine.AddAgent("wounded", AgentOptions{Difficulty: 0.5})

	a.HP = 20 // below the retreat fraction
	engine.Step(testDt)

	if a.Bot.State != StateRetreating {
		t.Errorf("expected retreating, got %v", a.Bot.State)
	}
}

func TestBotRecoversFromRetreat(t *testing.T) {
	engine, _ := NewEngine(testConfig())
	a := engine.AddAgent("healed", AgentOptions{Difficulty: 0.5})

	s := newShelter(a.ID, Vec3{X: 12}, 5)
	engine.shelters = append(engine.shelters, s)
	a.Shelter = s
	a.Body.Pos = s.Entrance
	a.Sheltered = true
	a.Bot.State = StateRetreating
	a.HP = 90
	a.Stock = BaseMaxStock
	engine.Step(testDt)

	if a.Bot.State == StateRetreating {
		t.Error("sheltered bot back at strength should leave retreat")
	}
}

func TestBotStaysRetreatingUntilSheltered(t *testing.T) {
	engine, _ := NewEngine(testConfig())
	a := engine.AddAgent("exposed", AgentOptions{Difficulty: 0.5})

	a.Bot.State = StateRetreating
	a.HP = 90
	a.Stock = BaseMaxStock
	engine.Step(testDt)

	if a.Bot.State != StateRetreating {
		t.Error("bot recovered in the open; recovery requires shelter")
	}
}

func TestBotStaysRetreatingWithoutStock(t *testing.T) {
	engine, _ := NewEngine(testConfig())
	a := engine.AddAgent("empty", AgentOptions{Difficulty: 0.5})

	a.Bot.State = StateRetreating
	a.HP = 90
	a.Stock = 0
	engine.Step(testDt)

	if a.Bot.State != StateRetreating {
		t.Error("bot without snowballs should keep retreating")
	}
}

func TestBotSeeksVisibleEnemy(t *testing.T) {
	engine, _ := NewEngine(testConfig())
	hunter := engine.AddAgent("hunter", AgentOptions{Difficulty: 0.5})
	prey := engine.AddAgent("prey", AgentOptions{Controlled: true})

	hunter.Body.Pos = Vec3{}
	prey.Body.Pos = Vec3{X: 5}

	engine.Step(testDt)

	if hunter.Bot.State != StateSeeking {
		t.Fatalf("expected seeking, got %v", hunter.Bot.State)
	}
	if hunter.Bot.Target != prey {
		t.Error("bot should target the visible enemy")
	}
}

func TestBotIgnoresEnemyOutOfSight(t *testing.T) {
	cfg := testConfig()
	cfg.ArenaHalfX = 100
	cfg.ArenaHalfZ = 100
	engine, _ := NewEngine(cfg)

	loner := engine.AddAgent("loner", AgentOptions{Difficulty: 0.5})
	far := engine.AddAgent("far", AgentOptions{Controlled: true})

	loner.Body.Pos = Vec3{}
	far.Body.Pos = Vec3{X: 50} // beyond the 18m sight range

	engine.Step(testDt)

	if loner.Bot.State == StateSeeking {
		t.Error("bot should not see an enemy beyond sight range")
	}
}

func TestBotPrefersNearerPickup(t *testing.T) {
	engine, _ := NewEngine(testConfig())
	bot := engine.AddAgent("errand", AgentOptions{Difficulty: 0.5})
	foe := engine.AddAgent("foe", AgentOptions{Controlled: true})

	bot.Body.Pos = Vec3{}
	foe.Body.Pos = Vec3{X: 10} // visible, but the snowflake is closer
	engine.SpawnPickup(Vec3{Z: 2})

	engine.Step(testDt)

	if bot.Bot.State != StateCollecting {
		t.Fatalf("expected collecting, got %v", bot.Bot.State)
	}
	if bot.Bot.TargetPickup == nil {
		t.Error("bot should target the nearer snowflake")
	}
}

func TestBotCollectsPickupWhenAlone(t *testing.T) {
	engine, _ := NewEngine(testConfig())
	a := engine.AddAgent("gatherer", AgentOptions{Difficulty: 0.5})
	a.Body.Pos = Vec3{}

	engine.SpawnPickup(Vec3{X: 4})
	engine.Step(testDt)

	if a.Bot.State != StateCollecting {
		t.Errorf("expected collecting, got %v", a.Bot.State)
	}
}

func TestBotClosesAndThrows(t *testing.T) {
	engine, _ := NewEngine(testConfig())
	shooter := engine.AddAgent("shooter", AgentOptions{Difficulty: 1})
	target := engine.AddAgent("target", AgentOptions{Controlled: true})

	shooter.Body.Pos = Vec3{}
	target.Body.Pos = Vec3{X: 6} // inside engagement range

	threw := false
	for i := 0; i < 150 && !threw; i++ {
		engine.Step(testDt)
		threw = shooter.Stock < BaseMaxStock
	}
	if !threw {
		t.Error("bot in range should throw at its target")
	}
}

func TestBotThrowsWithoutTarget(t *testing.T) {
	engine, _ := NewEngine(testConfig())
	a := engine.AddAgent("lobber", AgentOptions{Difficulty: 1})

	threw := false
	for i := 0; i < 150 && !threw; i++ {
		engine.Step(testDt)
		threw = a.Stock < BaseMaxStock
	}
	if !threw {
		t.Error("bot with nobody in sight should still lob the occasional snowball")
	}
}

func TestBotWandersBelowFullSpeed(t *testing.T) {
	engine, _ := NewEngine(testConfig())
	a := engine.AddAgent("ambler", AgentOptions{Difficulty: 0})

	maxSpeed := 0.0
	for i := 0; i < 150; i++ {
		engine.Step(testDt)
		if v := math.Sqrt(a.Body.Vel.X*a.Body.Vel.X + a.Body.Vel.Z*a.Body.Vel.Z); v > maxSpeed {
			maxSpeed = v
		}
	}

	if maxSpeed < 0.5 {
		t.Fatalf("bot never wandered, max speed %v", maxSpeed)
	}
	if limit := a.MoveSpeed * wanderSpeedFrac; maxSpeed > limit+0.05 {
		t.Errorf("wander speed %v exceeds the stroll limit %v", maxSpeed, limit)
	}
}

func TestBotBuysUpgradesWithSnowflakes(t *testing.T) {
	engine, _ := NewEngine(testConfig())
	a := engine.AddAgent("rich", AgentOptions{Difficulty: 0.5})
	a.Snowflakes = 100

	// Enough decision windows that the purchase probability fires.
	for i := 0; i < 300; i++ {
		engine.Step(testDt)
	}

	total := 0
	for s := Stat(0); s < StatCount; s++ {
		total += a.Levels[s]
	}
	if total == 0 {
		t.Error("bot with ample snowflakes should buy at least one upgrade")
	}
}

func TestBotHeadsHomeWhenRetreating(t *testing.T) {
	engine, _ := NewEngine(testConfig())
	a := engine.AddAgent("runner", AgentOptions{Difficulty: 0.5})

	s := newShelter(a.ID, Vec3{X: 20}, 5)
	engine.shelters = append(engine.shelters, s)
	a.Shelter = s
	a.Body.Pos = Vec3{}
	a.HP = 10

	start := a.Body.Pos.Dist(s.Entrance)
	for i := 0; i < 90; i++ {
		engine.Step(testDt)
	}

	if a.Bot.State != StateRetreating && !a.Sheltered {
		t.Fatalf("expected retreat, got %v", a.Bot.State)
	}
	if a.Body.Pos.Dist(s.Entrance) >= start {
		t.Error("retreating bot should close on its shelter entrance")
	}
}
