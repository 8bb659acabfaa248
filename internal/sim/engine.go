package sim

import (
	"errors"
	"log"
	"math"
	"math/rand"
	"sync"
	"time"

	"snowbrawl/internal/sim/spatial"
)

// MaxTickDelta caps the per-tick timestep at 100 ms so slow frames cannot
// tunnel fast snowballs through thin targets.
const MaxTickDelta = 0.1

// Config carries the simulation tunables. Gravity, arena bounds and tick
// rate are mandatory; NewEngine refuses a zero value rather than guessing.
type Config struct {
	Gravity    float64 // m/s², positive
	ArenaHalfX float64 // arena half-extent on X
	ArenaHalfZ float64 // arena half-extent on Z
	WallHeight float64
	TickRate   int
	Seed       int64

	MaxAgents      int
	MaxProjectiles int
	MaxPickups     int

	SanctuaryRadius float64
	ReplenishRate   float64 // snowball stock per second while sheltered
	HealthRegenRate float64 // health per second while sheltered

	BotSightRange       float64
	BotDecisionInterval float64 // seconds between sampled bot decisions
	RetreatHealthFrac   float64 // retreat below this fraction of max health
	RecoverHealthFrac   float64 // leave retreat at or above this fraction
}

func (c Config) validate() error {
	switch {
	case c.Gravity <= 0:
		return errors.New("sim: gravity must be positive")
	case c.ArenaHalfX <= 0 || c.ArenaHalfZ <= 0:
		return errors.New("sim: arena bounds must be positive")
	case c.TickRate <= 0:
		return errors.New("sim: tick rate must be positive")
	case c.WallHeight <= 0:
		return errors.New("sim: wall height must be positive")
	case c.MaxAgents <= 0 || c.MaxProjectiles <= 0 || c.MaxPickups <= 0:
		return errors.New("sim: entity limits must be positive")
	case c.SanctuaryRadius <= 0:
		return errors.New("sim: sanctuary radius must be positive")
	case c.ReplenishRate <= 0 || c.HealthRegenRate < 0:
		return errors.New("sim: replenish rate must be positive")
	case c.BotSightRange <= 0 || c.BotDecisionInterval <= 0:
		return errors.New("sim: bot tunables must be positive")
	case c.RetreatHealthFrac <= 0 || c.RecoverHealthFrac <= c.RetreatHealthFrac || c.RecoverHealthFrac > 1:
		return errors.New("sim: health fractions must satisfy 0 < retreat < recover <= 1")
	}
	return nil
}

// Engine is the simulation context for one running match. All entity
// mutation happens synchronously inside one tick under the mutex; there is
// exactly one writer by construction.
type Engine struct {
	mu  sync.RWMutex
	cfg Config

	// Registration order of agents fixes projectile hit iteration order.
	agents     []*Agent
	agentsByID map[string]*Agent

	projectiles []*Projectile
	walls       []StaticBody
	shelters    []*Shelter
	pickups     []*Pickup

	grid *spatial.Grid

	running  bool
	ticker   *time.Ticker
	stopChan chan struct{}

	tickCount int64
	entitySeq uint64

	// Round state. The deadline is a tick counter, not a timer callback.
	roundNum       int
	roundActive    bool
	roundTicksLeft int64
	lastWinnerID   string
	lastEndReason  string

	// Deterministic RNG, reseeded every tick and logged for replay.
	rng     *rand.Rand
	rngSeed int64

	eventLog     *EventLog
	snapshotPool *SnapshotPool

	// Event callbacks for external collaborators (UI, pickup spawner).
	OnEliminate func(attackerID, victimID string)
	OnRoundEnd  func(round int, winnerID, reason string)
	OnPickup    func(agentID string) // upgrade-choice opportunity signal

	tickObserver func(time.Duration)
}

// NewEngine creates a simulation context. The configuration is validated
// up front: missing physics tunables are an error, never a default.
func NewEngine(cfg Config) (*Engine, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	e := &Engine{
		cfg:          cfg,
		agents:       make([]*Agent, 0, cfg.MaxAgents),
		agentsByID:   make(map[string]*Agent, cfg.MaxAgents),
		projectiles:  make([]*Projectile, 0, cfg.MaxProjectiles),
		pickups:      make([]*Pickup, 0, cfg.MaxPickups),
		stopChan:     make(chan struct{}),
		rng:          rand.New(rand.NewSource(seed)),
		rngSeed:      seed,
		eventLog:     NewEventLog(),
		snapshotPool: NewSnapshotPool(cfg.MaxAgents, cfg.MaxProjectiles, cfg.MaxPickups),
		grid:         spatial.NewGrid(cfg.ArenaHalfX, cfg.ArenaHalfZ, cfg.BotSightRange, cfg.MaxAgents+cfg.MaxPickups),
	}
	e.buildWalls()
	e.produceSnapshot()
	return e, nil
}

// buildWalls rings the arena with four box colliders just outside the
// playable bounds.
func (e *Engine) buildWalls() {
	const thick = 0.5
	hx, hz, h := e.cfg.ArenaHalfX, e.cfg.ArenaHalfZ, e.cfg.WallHeight

	e.walls = []StaticBody{
		{Pos: Vec3{X: hx + thick, Y: h / 2}, Shape: BoxShape(Vec3{thick, h / 2, hz + 2*thick})},
		{Pos: Vec3{X: -hx - thick, Y: h / 2}, Shape: BoxShape(Vec3{thick, h / 2, hz + 2*thick})},
		{Pos: Vec3{Z: hz + thick, Y: h / 2}, Shape: BoxShape(Vec3{hx + 2*thick, h / 2, thick})},
		{Pos: Vec3{Z: -hz - thick, Y: h / 2}, Shape: BoxShape(Vec3{hx + 2*thick, h / 2, thick})},
	}
}

// Start drives the tick loop from a wall-clock ticker.
func (e *Engine) Start() {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return
	}
	e.running = true
	e.mu.Unlock()

	e.ticker = time.NewTicker(time.Second / time.Duration(e.cfg.TickRate))
	dt := 1.0 / float64(e.cfg.TickRate)

	go func() {
		for {
			select {
			case <-e.ticker.C:
				e.Step(dt)
			case <-e.stopChan:
				return
			}
		}
	}()

	log.Printf("engine started at %d TPS, arena %.0fx%.0f", e.cfg.TickRate, 2*e.cfg.ArenaHalfX, 2*e.cfg.ArenaHalfZ)
}

// Stop halts the tick loop.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.running {
		return
	}
	e.running = false
	if e.ticker != nil {
		e.ticker.Stop()
	}
	close(e.stopChan)
	log.Println("engine stopped")
}

// SetTickObserver installs a per-tick duration callback (metrics).
func (e *Engine) SetTickObserver(fn func(time.Duration)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tickObserver = fn
}

// Step advances the simulation by dt seconds (clamped to MaxTickDelta).
// Safe to call directly in tests and headless drivers; Start uses it too.
func (e *Engine) Step(dt float64) {
	start := time.Now()

	e.mu.Lock()
	e.step(dt)
	observer := e.tickObserver
	e.mu.Unlock()

	if observer != nil {
		observer(time.Since(start))
	}
}

// step is the fixed-order tick body. Caller holds the lock.
func (e *Engine) step(dt float64) {
	if dt <= 0 {
		return
	}
	if dt > MaxTickDelta {
		dt = MaxTickDelta
	}

	e.tickCount++

	e.eventLog.EmitSimple(EventTypeTick, uint64(e.tickCount), "", TickPayload{
		RNGSeed:    e.rngSeed,
		AgentCount: len(e.agents),
		DeltaNs:    int64(dt * 1e9),
	})

	// Advance the RNG seed deterministically for replay.
	e.rngSeed = e.rng.Int63()
	e.rng.Seed(e.rngSeed)

	// 1. Integrate: movement control, gravity, velocity.
	for _, a := range e.agents {
		if !a.Alive {
			continue
		}
		if a.throwTimer > 0 {
			a.throwTimer -= dt
		}
		e.applyControl(a, dt)
		Integrate(&a.Body, dt, e.cfg.Gravity)
	}
	for _, p := range e.projectiles {
		if !p.advance(dt, e.cfg.Gravity) {
			p.expired = true
		}
	}

	// 2. Rebuild the broad-phase grid, then run bot controllers.
	e.grid.Clear()
	for i, a := range e.agents {
		if a.Alive {
			e.grid.Insert(uint32(i), a.Body.Pos.X, a.Body.Pos.Z)
		}
	}
	for _, a := range e.agents {
		if a.Alive && a.Bot != nil {
			e.updateBot(a, dt)
		}
	}

	// 3. Collision passes, in fixed order.
	e.resolveProjectileAgentDiscrete()
	e.resolveProjectileAgentSwept()
	e.resolveProjectileStatic()
	e.resolveAgentStatic()
	e.resolveAgentPickups()

	// 4. Commit removals only after every pass has run, so iteration and
	// hit-detection order stay well defined.
	e.commitRemovals()

	// 5. Sheltered agents replenish stock (and recover slowly).
	e.replenishSheltered(dt)

	// 6. Round bookkeeping.
	if e.roundActive {
		e.roundTicksLeft--
		e.checkRoundEnd()
	}

	e.produceSnapshot()
}

// applyControl steers horizontal velocity toward the movement intent.
// The blend is gradual so knockback impulses stay visible for a few ticks.
func (e *Engine) applyControl(a *Agent, dt float64) {
	blend := controlRate * dt
	if blend > 1 {
		blend = 1
	}
	targetX := a.moveIntent.X * a.MoveSpeed
	targetZ := a.moveIntent.Z * a.MoveSpeed
	a.Body.Vel.X += (targetX - a.Body.Vel.X) * blend
	a.Body.Vel.Z += (targetZ - a.Body.Vel.Z) * blend
}

// AddAgent registers a new combatant. Returns nil when the agent cap is
// reached or the name is already taken.
func (e *Engine) AddAgent(name string, opts AgentOptions) *Agent {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(e.agents) >= e.cfg.MaxAgents {
		log.Printf("agent limit reached (%d), rejecting: %s", e.cfg.MaxAgents, name)
		return nil
	}
	for _, a := range e.agents {
		if a.Name == name {
			return a
		}
	}

	if opts.SightRange == 0 {
		opts.SightRange = e.cfg.BotSightRange
	}
	a := newAgent(name, opts)
	a.Body.Pos = e.spawnPosition(len(e.agents))
	a.Facing, _ = Vec3{X: -a.Body.Pos.X, Z: -a.Body.Pos.Z}.Normalized()
	if a.Facing == (Vec3{}) {
		a.Facing = Vec3{X: 1}
	}

	e.agents = append(e.agents, a)
	e.agentsByID[a.ID] = a

	if e.roundActive {
		e.assignShelter(a, len(e.agents)-1)
	}

	e.eventLog.EmitSimple(EventTypeAgentJoin, uint64(e.tickCount), a.ID, AgentJoinPayload{
		AgentID:    a.ID,
		AgentName:  a.Name,
		Controlled: a.Controlled,
		Spawn:      a.Body.Pos,
	})
	log.Printf("agent joined: %s (controlled=%v)", name, a.Controlled)
	return a
}

// spawnPosition places agents evenly on a ring around the arena center.
func (e *Engine) spawnPosition(index int) Vec3 {
	ring := 0.5 * math.Min(e.cfg.ArenaHalfX, e.cfg.ArenaHalfZ)
	angle := float64(index) * (2 * math.Pi / float64(e.cfg.MaxAgents))
	return Vec3{X: ring * math.Cos(angle), Z: ring * math.Sin(angle)}
}

// assignShelter builds this agent's igloo on the outer ring and links it.
func (e *Engine) assignShelter(a *Agent, index int) {
	ring := 0.78 * math.Min(e.cfg.ArenaHalfX, e.cfg.ArenaHalfZ)
	angle := float64(index) * (2 * math.Pi / float64(e.cfg.MaxAgents))
	pos := Vec3{X: ring * math.Cos(angle), Z: ring * math.Sin(angle)}
	s := newShelter(a.ID, pos, e.cfg.SanctuaryRadius)
	e.shelters = append(e.shelters, s)
	a.Shelter = s
}

// GetAgent returns an agent by id, or nil.
func (e *Engine) GetAgent(id string) *Agent {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.agentsByID[id]
}

// GetAgentByName returns an agent by display name, or nil.
func (e *Engine) GetAgentByName(name string) *Agent {
	e.mu.RLock()
	defer e.mu.RUnlock()
	for _, a := range e.agents {
		if a.Name == name {
			return a
		}
	}
	return nil
}

// MoveIntent sets the agent's horizontal movement direction. The vertical
// component is ignored; a zero direction clears the intent. Unknown ids
// are a silent no-op.
func (e *Engine) MoveIntent(id string, dir Vec3) {
	e.mu.Lock()
	defer e.mu.Unlock()

	a := e.agentsByID[id]
	if a == nil || !a.Alive {
		return
	}
	dir.Y = 0
	unit, ok := dir.Normalized()
	if !ok {
		a.moveIntent = Vec3{}
		return
	}
	a.moveIntent = unit
	a.Facing = unit
}

// JumpIntent launches a grounded agent upward.
func (e *Engine) JumpIntent(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	a := e.agentsByID[id]
	if a == nil || !a.Alive || !a.Body.Grounded {
		return
	}
	a.Body.Vel.Y = JumpSpeed
	a.Body.Grounded = false
}

// throwUpTilt is the vertical lean added to every throw direction.
const throwUpTilt = 0.12

// ThrowIntent throws a snowball along the agent's facing direction.
// Declined (false) on empty stock, active cooldown, projectile cap, or an
// unknown/dead agent.
func (e *Engine) ThrowIntent(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	a := e.agentsByID[id]
	if a == nil {
		return false
	}
	dir := Vec3{X: a.Facing.X, Y: throwUpTilt, Z: a.Facing.Z}
	return e.throwFrom(a, dir)
}

// throwFrom spawns a projectile for the agent toward dir. Degenerate
// directions fall back to a random horizontal heading instead of NaN.
func (e *Engine) throwFrom(a *Agent, dir Vec3) bool {
	if !a.Alive || a.Stock <= 0 || a.throwTimer > 0 {
		return false
	}
	if len(e.projectiles) >= e.cfg.MaxProjectiles {
		return false
	}

	unit, ok := dir.Normalized()
	if !ok {
		unit = e.randomHorizontalDir()
	}

	a.Stock--
	a.throwTimer = a.CooldownSec
	e.entitySeq++
	p := newProjectile(a, unit, e.entitySeq)
	e.projectiles = append(e.projectiles, p)

	e.eventLog.EmitSimple(EventTypeThrow, uint64(e.tickCount), a.ID, ThrowPayload{
		AgentID:      a.ID,
		ProjectileID: p.ID,
		Stock:        a.Stock,
	})
	return true
}

// randomHorizontalDir returns a unit vector in the X/Z plane.
func (e *Engine) randomHorizontalDir() Vec3 {
	angle := e.rng.Float64() * 2 * math.Pi
	return Vec3{X: math.Cos(angle), Z: math.Sin(angle)}
}

// ApplyUpgrade spends the agent's snowflakes on one stat level.
// Atomic: either the exact cost is deducted and the level increments, or
// nothing changes.
func (e *Engine) ApplyUpgrade(id string, stat Stat) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	a := e.agentsByID[id]
	if a == nil || !a.Alive {
		return false
	}
	if !applyUpgrade(a, stat) {
		return false
	}
	e.eventLog.EmitSimple(EventTypeUpgrade, uint64(e.tickCount), a.ID, UpgradePayload{
		AgentID: a.ID,
		Stat:    stat.String(),
		Level:   a.Levels[stat],
	})
	return true
}

// SpawnPickup drops a snowflake at pos. The spawn policy itself lives
// outside the core; this is its entry point. Returns nil at the cap.
func (e *Engine) SpawnPickup(pos Vec3) *Pickup {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(e.pickups) >= e.cfg.MaxPickups {
		return nil
	}
	e.entitySeq++
	pk := newPickup(pos, e.entitySeq)
	e.pickups = append(e.pickups, pk)
	return pk
}

// RandomArenaPoint returns a uniform point inside the arena bounds at
// ground level, using the engine's deterministic RNG.
func (e *Engine) RandomArenaPoint() Vec3 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.randomArenaPoint()
}

func (e *Engine) randomArenaPoint() Vec3 {
	return Vec3{
		X: (e.rng.Float64()*2 - 1) * (e.cfg.ArenaHalfX - 1),
		Z: (e.rng.Float64()*2 - 1) * (e.cfg.ArenaHalfZ - 1),
	}
}

// StartRound resets transient agent state, rebuilds shelters and arms the
// tick-counted round deadline.
func (e *Engine) StartRound(duration time.Duration) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if duration <= 0 {
		return errors.New("sim: round duration must be positive")
	}
	if len(e.agents) == 0 {
		return errors.New("sim: no agents registered")
	}

	e.roundNum++
	e.projectiles = e.projectiles[:0]
	e.pickups = e.pickups[:0]
	e.shelters = e.shelters[:0]
	e.lastWinnerID = ""
	e.lastEndReason = ""

	for i, a := range e.agents {
		a.resetForRound()
		a.Body.Pos = e.spawnPosition(i)
		e.assignShelter(a, i)
	}

	e.roundTicksLeft = int64(duration.Seconds() * float64(e.cfg.TickRate))
	e.roundActive = true

	e.eventLog.EmitSimple(EventTypeRoundStart, uint64(e.tickCount), "", RoundStartPayload{
		Round:      e.roundNum,
		DurationS:  duration.Seconds(),
		AgentCount: len(e.agents),
	})
	log.Printf("round %d started: %d agents, %.0fs budget", e.roundNum, len(e.agents), duration.Seconds())
	return nil
}

// RestartMatch wipes scores, upgrades and round history, returning every
// registered agent to its creation-time attributes.
func (e *Engine) RestartMatch() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.roundNum = 0
	e.roundActive = false
	e.roundTicksLeft = 0
	e.lastWinnerID = ""
	e.lastEndReason = ""
	e.projectiles = e.projectiles[:0]
	e.pickups = e.pickups[:0]
	e.shelters = e.shelters[:0]

	for i, a := range e.agents {
		a.resetForMatch()
		a.Body.Pos = e.spawnPosition(i)
	}
	log.Println("match restarted")
}

// Round reports the current round number and whether it is live.
func (e *Engine) Round() (int, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.roundNum, e.roundActive
}

// LastResult reports the most recent round outcome.
func (e *Engine) LastResult() (winnerID, reason string) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.lastWinnerID, e.lastEndReason
}

// shielded reports whether a point is inside any standing sanctuary.
// Per the current damage rule, any igloo's sanctuary shields its occupant
// regardless of ownership.
func (e *Engine) shielded(p Vec3) bool {
	for _, s := range e.shelters {
		if s.InSanctuary(p) {
			return true
		}
	}
	return false
}

// resolveProjectileAgentDiscrete is pass 1: sphere-sphere overlap between
// live snowballs and eligible agents, in registration order; first match
// wins and terminates the projectile.
func (e *Engine) resolveProjectileAgentDiscrete() {
	for _, p := range e.projectiles {
		if p.Hit || p.expired {
			continue
		}
		for _, a := range e.agents {
			if !a.Alive || a.ID == p.OwnerID {
				continue
			}
			if e.shielded(a.Body.Pos) {
				continue
			}
			if p.hits(a) {
				e.applyDamage(a, p.Damage, p.OwnerID, p.Body.Pos)
				p.Hit = true
				break
			}
		}
	}
}

// resolveProjectileAgentSwept is pass 2: segment-vs-sphere tests from each
// snowball's previous position, catching targets skipped within one tick.
func (e *Engine) resolveProjectileAgentSwept() {
	for _, p := range e.projectiles {
		if p.Hit || p.expired {
			continue
		}
		for _, a := range e.agents {
			if !a.Alive || a.ID == p.OwnerID {
				continue
			}
			if e.shielded(a.Body.Pos) {
				continue
			}
			if p.sweptHits(a) {
				e.applyDamage(a, p.Damage, p.OwnerID, p.prevPos)
				p.Hit = true
				break
			}
		}
	}
}

// resolveProjectileStatic is pass 3: snowballs splat on walls and igloos.
// Terminal, no bounce.
func (e *Engine) resolveProjectileStatic() {
	for _, p := range e.projectiles {
		if p.Hit || p.expired {
			continue
		}
		pb := p.Body.Bounds()
		for i := range e.walls {
			if pb.Overlaps(e.walls[i].Bounds()) {
				p.Hit = true
				break
			}
		}
		if p.Hit {
			continue
		}
		for _, s := range e.shelters {
			if pb.Overlaps(s.Bounds()) {
				p.Hit = true
				break
			}
		}
	}
}

// resolveAgentStatic is pass 4: minimum-translation push-out against walls
// and igloos, except that an agent entering its own igloo through the
// entrance becomes sheltered instead of being pushed out.
func (e *Engine) resolveAgentStatic() {
	for _, a := range e.agents {
		if !a.Alive {
			continue
		}

		// Sheltered status lapses once the agent leaves its sanctuary.
		if a.Sheltered && (a.Shelter == nil || !a.Shelter.InSanctuary(a.Body.Pos)) {
			a.Sheltered = false
		}

		for i := range e.walls {
			wb := e.walls[i].Bounds()
			if ab := a.Body.Bounds(); ab.Overlaps(wb) {
				ResolveAABB(&a.Body, ab, wb)
			}
		}

		for _, s := range e.shelters {
			sb := s.Bounds()
			if s.OwnerID == a.ID {
				if s.AtEntrance(a.Body.Pos) {
					a.Sheltered = true
					continue
				}
				if a.Sheltered {
					// Free to move inside the own igloo footprint.
					continue
				}
			}
			if ab := a.Body.Bounds(); ab.Overlaps(sb) {
				ResolveAABB(&a.Body, ab, sb)
			}
		}
	}
}

// resolveAgentPickups is pass 5: proximity collection of snowflakes.
func (e *Engine) resolveAgentPickups() {
	for _, a := range e.agents {
		if !a.Alive {
			continue
		}
		reach := PickupRadius + a.Body.Shape.Radius
		for _, pk := range e.pickups {
			if pk.Collected {
				continue
			}
			if a.Body.Pos.DistSq(pk.Pos) >= reach*reach {
				continue
			}
			pk.Collected = true
			a.Snowflakes++
			a.Collected++
			a.Score += PickupScore

			e.eventLog.EmitSimple(EventTypePickup, uint64(e.tickCount), a.ID, PickupPayload{
				AgentID:    a.ID,
				PickupID:   pk.ID,
				Snowflakes: a.Snowflakes,
			})
			if e.OnPickup != nil {
				go e.OnPickup(a.ID)
			}
		}
	}
}

// commitRemovals drops spent projectiles and collected pickups using the
// zero-allocation in-place filter. Eliminated agents stay registered (not
// alive) so scores and upgrade levels survive the round.
func (e *Engine) commitRemovals() {
	n := 0
	for _, p := range e.projectiles {
		if p.Hit || p.expired {
			continue
		}
		e.projectiles[n] = p
		n++
	}
	e.projectiles = e.projectiles[:n]

	n = 0
	for _, pk := range e.pickups {
		if pk.Collected {
			continue
		}
		e.pickups[n] = pk
		n++
	}
	e.pickups = e.pickups[:n]
}

// replenishSheltered restocks snowballs (and slowly restores health) for
// agents inside their own igloo: one unit per 1/rate seconds up to max.
func (e *Engine) replenishSheltered(dt float64) {
	for _, a := range e.agents {
		if !a.Alive || !a.Sheltered {
			continue
		}
		a.replenish += dt * e.cfg.ReplenishRate
		for a.replenish >= 1 && a.Stock < a.MaxStock {
			a.replenish--
			a.Stock++
		}
		if a.replenish > 1 {
			a.replenish = 1
		}

		if e.cfg.HealthRegenRate > 0 && a.HP < a.MaxHP {
			a.regen += dt * e.cfg.HealthRegenRate
			for a.regen >= 1 && a.HP < a.MaxHP {
				a.regen--
				a.HP++
			}
		}
	}
}

// checkRoundEnd ends the round when at most one agent stands or the tick
// budget is exhausted.
func (e *Engine) checkRoundEnd() {
	var lastAlive *Agent
	alive := 0
	for _, a := range e.agents {
		if a.Alive {
			alive++
			lastAlive = a
		}
	}

	switch {
	case alive <= 1:
		winner := ""
		if lastAlive != nil {
			winner = lastAlive.ID
		}
		e.endRound(winner, "last_standing")
	case e.roundTicksLeft <= 0:
		e.endRound(e.timeUpWinner().ID, "time_up")
	}
}

// timeUpWinner picks the surviving agent with the most health, breaking
// ties by score then registration order.
func (e *Engine) timeUpWinner() *Agent {
	var best *Agent
	for _, a := range e.agents {
		if !a.Alive {
			continue
		}
		if best == nil || a.HP > best.HP || (a.HP == best.HP && a.Score > best.Score) {
			best = a
		}
	}
	return best
}

func (e *Engine) endRound(winnerID, reason string) {
	e.roundActive = false
	e.roundTicksLeft = 0
	e.lastWinnerID = winnerID
	e.lastEndReason = reason

	// Tear down round-scoped entities; transient agent state resets while
	// score and upgrade levels carry across rounds.
	e.projectiles = e.projectiles[:0]
	e.pickups = e.pickups[:0]
	e.shelters = e.shelters[:0]
	for i, a := range e.agents {
		a.resetForRound()
		a.Body.Pos = e.spawnPosition(i)
	}

	e.eventLog.EmitSimple(EventTypeRoundEnd, uint64(e.tickCount), winnerID, RoundEndPayload{
		Round:    e.roundNum,
		Reason:   reason,
		WinnerID: winnerID,
	})
	log.Printf("round %d over (%s), winner: %s", e.roundNum, reason, winnerID)

	if e.OnRoundEnd != nil {
		go e.OnRoundEnd(e.roundNum, winnerID, reason)
	}
}

// StartEventLog begins persisting events to the given NDJSON file.
func (e *Engine) StartEventLog(filePath string) error {
	return e.eventLog.Start(filePath)
}

// StopEventLog flushes and stops the event log.
func (e *Engine) StopEventLog() {
	e.eventLog.Stop()
}

// GetEventLogStats returns event log counters for monitoring.
func (e *Engine) GetEventLogStats() map[string]interface{} {
	return e.eventLog.GetStats()
}

// Config returns the engine configuration.
func (e *Engine) Config() Config {
	return e.cfg
}
