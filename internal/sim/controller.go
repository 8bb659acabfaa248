package sim

import "math"

// Bot controller tuning. Decisions are sampled on a fixed interval rather
// than every tick, so bots commit to an action for a human-visible moment.
const (
	wanderDwellMin = 15 // ticks spent resting at a reached waypoint
	wanderDwellMax = 60

	// Fraction of throw range the bot closes to before it starts lobbing.
	engageRangeFrac = 0.8

	// Max aim jitter in radians at difficulty 0; scales down linearly.
	maxAimJitter = 0.25

	// Per-decision probability of spending snowflakes when an upgrade is
	// affordable.
	upgradeBuyChance = 0.5

	// Per-decision probability of letting a snowball fly, rising with
	// difficulty.
	throwChanceBase  = 0.35
	throwChanceScale = 0.55

	// Wandering moves at a fraction of full speed.
	wanderSpeedFrac = 0.6
)

// weightedPick samples an index proportionally to weights using the
// cumulative-threshold method: draw u in [0, total), return the first index
// whose running sum exceeds it. Returns -1 when every weight is zero.
func weightedPick(rng interface{ Float64() float64 }, weights []float64) int {
	total := 0.0
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}
	if total <= 0 {
		return -1
	}

	u := rng.Float64() * total
	acc := 0.0
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		acc += w
		if u < acc {
			return i
		}
	}
	return len(weights) - 1
}

// updateBot advances one autonomous agent for this tick. Caller holds the
// engine lock; the bot mutates only its own agent and issues throws through
// the same entry points a controlled agent would.
func (e *Engine) updateBot(a *Agent, dt float64) {
	bot := a.Bot

	// Health transitions preempt everything else.
	if bot.State != StateRetreating && a.healthFrac() < e.cfg.RetreatHealthFrac {
		bot.State = StateRetreating
		bot.Target = nil
		bot.TargetPickup = nil
		bot.HasWaypoint = false
	}
	if bot.State == StateRetreating && a.Sheltered && a.healthFrac() >= e.cfg.RecoverHealthFrac && a.Stock > 0 {
		bot.State = StateIdle
		bot.HasWaypoint = false
	}

	bot.DecisionTicks--
	if bot.DecisionTicks <= 0 {
		bot.DecisionTicks = int(e.cfg.BotDecisionInterval * float64(e.cfg.TickRate))
		if bot.DecisionTicks < 1 {
			bot.DecisionTicks = 1
		}
		e.botDecide(a)
	}

	switch bot.State {
	case StateRetreating:
		e.botRetreat(a)
	case StateSeeking:
		e.botSeek(a)
	case StateCollecting:
		e.botCollect(a)
	default:
		e.botWander(a)
	}
}

// botDecide runs the sampled decision: maybe buy an upgrade, pick the
// nearest activity in sight, then maybe throw.
func (e *Engine) botDecide(a *Agent) {
	bot := a.Bot

	e.botMaybeUpgrade(a)

	if bot.State == StateRetreating {
		return
	}

	target := e.nearestVisibleEnemy(a)
	pickup := e.nearestVisiblePickup(a)

	// A snowflake closer than the nearest hostile wins the errand.
	if target != nil && pickup != nil {
		if a.Body.Pos.HorizontalDistSq(pickup.Pos) < a.Body.Pos.HorizontalDistSq(target.Body.Pos) {
			target = nil
		} else {
			pickup = nil
		}
	}

	switch {
	case target != nil:
		bot.State = StateSeeking
		bot.Target = target
		bot.TargetPickup = nil
	case pickup != nil:
		bot.State = StateCollecting
		bot.TargetPickup = pickup
		bot.Target = nil
	case bot.State != StateIdle:
		bot.State = StateIdle
		bot.Target = nil
		bot.TargetPickup = nil
		bot.HasWaypoint = false
	}

	// Sampled attack. An aimed lob needs the target inside engagement
	// range; with no target in sight the throw goes out in a random
	// horizontal direction.
	if e.rng.Float64() < throwChanceBase+throwChanceScale*bot.Difficulty {
		if bot.Target != nil {
			engage := a.ThrowRange * engageRangeFrac
			if a.Body.Pos.HorizontalDistSq(bot.Target.Body.Pos) <= engage*engage {
				e.botThrowAt(a, bot.Target)
			}
		} else {
			dir := e.randomHorizontalDir()
			dir.Y = throwUpTilt
			e.throwFrom(a, dir)
		}
	}
}

// botMaybeUpgrade spends snowflakes on a weighted-sampled affordable stat.
// Weights favor stats with headroom left, so maxed stats drop out of the
// draw naturally.
func (e *Engine) botMaybeUpgrade(a *Agent) {
	if e.rng.Float64() >= upgradeBuyChance {
		return
	}

	var weights [StatCount]float64
	affordable := false
	for s := Stat(0); s < StatCount; s++ {
		spec := statSpecs[s]
		if a.Levels[s] >= spec.MaxLevel || a.Snowflakes < spec.Cost {
			continue
		}
		weights[s] = float64(spec.MaxLevel - a.Levels[s])
		affordable = true
	}
	if !affordable {
		return
	}

	pick := weightedPick(e.rng, weights[:])
	if pick < 0 {
		return
	}
	stat := Stat(pick)
	if applyUpgrade(a, stat) {
		e.eventLog.EmitSimple(EventTypeUpgrade, uint64(e.tickCount), a.ID, UpgradePayload{
			AgentID: a.ID,
			Stat:    stat.String(),
			Level:   a.Levels[stat],
		})
	}
}

// nearestVisibleEnemy uses the broad-phase grid for candidates, then exact
// distance filtering. Shielded agents are not worth chasing.
func (e *Engine) nearestVisibleEnemy(a *Agent) *Agent {
	sight := a.Bot.SightRange
	bestSq := sight * sight
	var best *Agent

	for _, idx := range e.grid.QueryRadius(a.Body.Pos.X, a.Body.Pos.Z, sight) {
		cand := e.agents[idx]
		if cand == a || !cand.Alive || e.shielded(cand.Body.Pos) {
			continue
		}
		dSq := a.Body.Pos.HorizontalDistSq(cand.Body.Pos)
		if dSq < bestSq {
			bestSq = dSq
			best = cand
		}
	}
	return best
}

func (e *Engine) nearestVisiblePickup(a *Agent) *Pickup {
	sight := a.Bot.SightRange
	bestSq := sight * sight
	var best *Pickup

	for _, pk := range e.pickups {
		if pk.Collected {
			continue
		}
		dSq := a.Body.Pos.HorizontalDistSq(pk.Pos)
		if dSq < bestSq {
			bestSq = dSq
			best = pk
		}
	}
	return best
}

// botSeek closes to engagement range and holds there; the throw itself is
// sampled in botDecide.
func (e *Engine) botSeek(a *Agent) {
	bot := a.Bot
	target := bot.Target
	if target == nil || !target.Alive || e.shielded(target.Body.Pos) {
		bot.State = StateIdle
		bot.Target = nil
		bot.HasWaypoint = false
		return
	}

	to := target.Body.Pos.Sub(a.Body.Pos)
	to.Y = 0
	dir, ok := to.Normalized()
	if !ok {
		// Standing inside the target; sidestep in a random direction.
		dir = e.randomHorizontalDir()
	}
	a.Facing = dir

	dist := math.Sqrt(a.Body.Pos.HorizontalDistSq(target.Body.Pos))
	engage := a.ThrowRange * engageRangeFrac

	if dist > engage {
		a.moveIntent = dir
	} else {
		a.moveIntent = Vec3{}
	}
}

// botThrowAt aims at the target's center with difficulty-scaled jitter.
// throwFrom handles stock, cooldown and the projectile cap.
func (e *Engine) botThrowAt(a *Agent, target *Agent) {
	aim := target.Body.Center().Sub(a.Body.Center())
	dir, ok := aim.Normalized()
	if !ok {
		dir = e.randomHorizontalDir()
	}

	jitter := (1 - a.Bot.Difficulty) * maxAimJitter
	if jitter > 0 {
		angle := (e.rng.Float64()*2 - 1) * jitter
		sin, cos := math.Sin(angle), math.Cos(angle)
		dir = Vec3{
			X: dir.X*cos - dir.Z*sin,
			Y: dir.Y,
			Z: dir.X*sin + dir.Z*cos,
		}
	}

	e.throwFrom(a, dir)
}

// botCollect walks to the chosen snowflake.
func (e *Engine) botCollect(a *Agent) {
	bot := a.Bot
	pk := bot.TargetPickup
	if pk == nil || pk.Collected {
		bot.State = StateIdle
		bot.TargetPickup = nil
		bot.HasWaypoint = false
		return
	}

	to := pk.Pos.Sub(a.Body.Pos)
	to.Y = 0
	if dir, ok := to.Normalized(); ok {
		a.moveIntent = dir
		a.Facing = dir
	} else {
		a.moveIntent = Vec3{}
	}
}

// botRetreat heads for the home igloo entrance and waits out the recovery
// inside the sanctuary.
func (e *Engine) botRetreat(a *Agent) {
	if a.Shelter == nil {
		// No home this round; hold still and hope.
		a.moveIntent = Vec3{}
		return
	}
	if a.Sheltered {
		a.moveIntent = Vec3{}
		return
	}

	to := a.Shelter.Entrance.Sub(a.Body.Pos)
	to.Y = 0
	if dir, ok := to.Normalized(); ok {
		a.moveIntent = dir
		a.Facing = dir
	} else {
		a.moveIntent = Vec3{}
	}
}

// botWander ambles between random waypoints at reduced speed, with a rest
// at each one.
func (e *Engine) botWander(a *Agent) {
	bot := a.Bot

	if bot.DwellTicks > 0 {
		bot.DwellTicks--
		a.moveIntent = Vec3{}
		return
	}

	if !bot.HasWaypoint {
		bot.Waypoint = e.randomArenaPoint()
		bot.HasWaypoint = true
	}

	to := bot.Waypoint.Sub(a.Body.Pos)
	to.Y = 0
	if to.LenSq() < 1.0 {
		bot.HasWaypoint = false
		bot.DwellTicks = wanderDwellMin + e.rng.Intn(wanderDwellMax-wanderDwellMin)
		a.moveIntent = Vec3{}
		return
	}

	if dir, ok := to.Normalized(); ok {
		a.moveIntent = dir.Scale(wanderSpeedFrac)
		a.Facing = dir
	}
}
