package sim

import (
	"fmt"
	"time"
)

// BehaviorState is the bot controller state machine.
type BehaviorState int

const (
	StateIdle       BehaviorState = iota // random-walk wander
	StateSeeking                         // closing on a hostile target
	StateRetreating                      // low health, heading home
	StateCollecting                      // moving to a snowflake pickup
)

// String returns a human-readable state name for snapshots and logs.
func (s BehaviorState) String() string {
	switch s {
	case StateSeeking:
		return "seeking"
	case StateRetreating:
		return "retreating"
	case StateCollecting:
		return "collecting"
	default:
		return "idle"
	}
}

// Base agent attributes before upgrades and difficulty scaling.
const (
	AgentRadius   = 0.5
	AgentHeight   = 1.8
	BaseMaxHealth = 100
	BaseMoveSpeed = 5.0
	BaseThrowSpeed = 15.0
	BaseThrowRange = 20.0
	BaseBallRadius = 0.15
	BaseDamage     = 10
	BaseMaxStock   = 5
	BaseCooldown   = 0.8 // seconds between throws
	JumpSpeed      = 5.0

	// How quickly horizontal velocity converges on the movement intent.
	// Low enough that knockback stays visible for several ticks.
	controlRate = 10.0
)

// Difficulty scaling caps (applied once at bot creation).
const (
	maxSpeedScale    = 1.5
	maxThrowScale    = 1.8
	maxRangeScale    = 1.5
	maxCooldownScale = 1.5
)

// BotState holds controller state for autonomous agents only.
// Controlled agents have a nil BotState; behavior fields never leak into
// the shared Agent struct.
type BotState struct {
	State      BehaviorState
	Difficulty float64 // 0..1, fixed at creation
	SightRange float64

	Target       *Agent
	TargetPickup *Pickup

	Waypoint    Vec3
	HasWaypoint bool
	DwellTicks  int

	DecisionTicks int // ticks until the next sampled decision
}

// Agent is a combat participant, human- or bot-controlled.
type Agent struct {
	ID         string
	Name       string
	Controlled bool

	Body DynamicBody

	HP    int
	MaxHP int
	Alive bool

	Stock      int // snowballs in hand
	MaxStock   int
	Snowflakes int // pickup resource balance, spent on upgrades
	Collected  int // lifetime pickups this match

	Score        int
	Eliminations int

	Levels [StatCount]int

	// Derived attributes: base values scaled by difficulty at creation,
	// then bumped by fixed per-level increments on upgrade.
	MoveSpeed   float64
	ThrowSpeed  float64
	ThrowRange  float64
	BallRadius  float64
	Damage      int
	CooldownSec float64

	// Sanctuary state
	Shelter   *Shelter // weak reference, owned by the engine
	Sheltered bool

	Facing     Vec3 // unit horizontal aim direction
	moveIntent Vec3
	throwTimer float64
	replenish  float64 // fractional stock accumulated while sheltered
	regen      float64 // fractional health accumulated while sheltered

	Bot *BotState
}

// AgentOptions configures agent creation.
type AgentOptions struct {
	Controlled bool
	Difficulty float64 // bots only; clamped to [0, 1]
	SightRange float64 // bots only; 0 uses the engine default
}

// newAgent builds an agent with difficulty-scaled attributes.
// Spawn position is assigned by the engine.
func newAgent(name string, opts AgentOptions) *Agent {
	a := &Agent{
		ID:         fmt.Sprintf("agent_%d_%s", time.Now().UnixNano(), name),
		Name:       name,
		Controlled: opts.Controlled,
		Body: DynamicBody{
			Shape:    SphereShape(AgentRadius),
			Height:   AgentHeight,
			Grounded: true,
		},
		HP:          BaseMaxHealth,
		MaxHP:       BaseMaxHealth,
		Alive:       true,
		Stock:       BaseMaxStock,
		MaxStock:    BaseMaxStock,
		MoveSpeed:   BaseMoveSpeed,
		ThrowSpeed:  BaseThrowSpeed,
		ThrowRange:  BaseThrowRange,
		BallRadius:  BaseBallRadius,
		Damage:      BaseDamage,
		CooldownSec: BaseCooldown,
		Facing:      Vec3{X: 1},
	}

	if !opts.Controlled {
		d := opts.Difficulty
		if d < 0 {
			d = 0
		} else if d > 1 {
			d = 1
		}
		a.MoveSpeed *= 1 + (maxSpeedScale-1)*d
		a.ThrowSpeed *= 1 + (maxThrowScale-1)*d
		a.ThrowRange *= 1 + (maxRangeScale-1)*d
		a.CooldownSec /= 1 + (maxCooldownScale-1)*d
		a.Bot = &BotState{
			State:      StateIdle,
			Difficulty: d,
			SightRange: opts.SightRange,
		}
	}

	return a
}

// resetForRound clears transient per-round state while preserving score,
// eliminations and upgrade levels.
func (a *Agent) resetForRound() {
	a.HP = a.MaxHP
	a.Alive = true
	a.Stock = a.MaxStock
	a.Sheltered = false
	a.Shelter = nil
	a.Body.Vel = Vec3{}
	a.Body.Grounded = true
	a.moveIntent = Vec3{}
	a.throwTimer = 0
	a.replenish = 0
	a.regen = 0
	if a.Bot != nil {
		a.Bot.State = StateIdle
		a.Bot.Target = nil
		a.Bot.TargetPickup = nil
		a.Bot.HasWaypoint = false
		a.Bot.DwellTicks = 0
		a.Bot.DecisionTicks = 0
	}
}

// resetForMatch returns the agent to creation-time attributes: upgrade
// levels, score and resources all wipe, difficulty scaling reapplies.
func (a *Agent) resetForMatch() {
	a.Score = 0
	a.Eliminations = 0
	a.Snowflakes = 0
	a.Collected = 0
	a.Levels = [StatCount]int{}

	a.MaxHP = BaseMaxHealth
	a.MaxStock = BaseMaxStock
	a.MoveSpeed = BaseMoveSpeed
	a.ThrowSpeed = BaseThrowSpeed
	a.ThrowRange = BaseThrowRange
	a.BallRadius = BaseBallRadius
	a.Damage = BaseDamage
	a.CooldownSec = BaseCooldown
	if a.Bot != nil {
		d := a.Bot.Difficulty
		a.MoveSpeed *= 1 + (maxSpeedScale-1)*d
		a.ThrowSpeed *= 1 + (maxThrowScale-1)*d
		a.ThrowRange *= 1 + (maxRangeScale-1)*d
		a.CooldownSec /= 1 + (maxCooldownScale-1)*d
	}

	a.resetForRound()
}

// healthFrac returns current health as a fraction of max.
func (a *Agent) healthFrac() float64 {
	if a.MaxHP <= 0 {
		return 0
	}
	return float64(a.HP) / float64(a.MaxHP)
}
