package sim

import (
	"sync/atomic"
	"time"
)

// AgentSnapshot is an immutable copy of agent state for external
// collaborators. Value types only, so a published snapshot never aliases
// live simulation state.
type AgentSnapshot struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Controlled bool   `json:"controlled"`

	Pos Vec3 `json:"pos"`
	Vel Vec3 `json:"vel"`

	HP        int  `json:"hp"`
	MaxHP     int  `json:"maxHp"`
	Alive     bool `json:"alive"`
	Sheltered bool `json:"sheltered"`

	Stock      int `json:"stock"`
	MaxStock   int `json:"maxStock"`
	Snowflakes int `json:"snowflakes"`

	Score        int    `json:"score"`
	Eliminations int    `json:"eliminations"`
	State        string `json:"state"` // bot behavior, "controlled" for humans

	Levels [StatCount]int `json:"levels"`
}

// ProjectileSnapshot is an immutable in-flight snowball.
type ProjectileSnapshot struct {
	ID      string  `json:"id"`
	OwnerID string  `json:"ownerId"`
	Pos     Vec3    `json:"pos"`
	Vel     Vec3    `json:"vel"`
	Radius  float64 `json:"radius"`
}

// PickupSnapshot is an immutable ground snowflake.
type PickupSnapshot struct {
	ID  string `json:"id"`
	Pos Vec3   `json:"pos"`
}

// ShelterSnapshot is an immutable igloo description.
type ShelterSnapshot struct {
	OwnerID         string  `json:"ownerId"`
	Pos             Vec3    `json:"pos"`
	Half            Vec3    `json:"half"`
	Entrance        Vec3    `json:"entrance"`
	SanctuaryRadius float64 `json:"sanctuaryRadius"`
}

// Snapshot is a complete immutable view of one simulation tick.
// Slices are pre-allocated and capped; the pool reuses them.
type Snapshot struct {
	Sequence  uint64    `json:"sequence"`
	Timestamp time.Time `json:"timestamp"`
	Tick      uint64    `json:"tick"`
	RNGSeed   int64     `json:"rngSeed"`

	Round          int    `json:"round"`
	RoundActive    bool   `json:"roundActive"`
	RoundTicksLeft int64  `json:"roundTicksLeft"`
	WinnerID       string `json:"winnerId,omitempty"`
	EndReason      string `json:"endReason,omitempty"`

	Agents      []AgentSnapshot      `json:"agents"`
	Projectiles []ProjectileSnapshot `json:"projectiles"`
	Pickups     []PickupSnapshot     `json:"pickups"`
	Shelters    []ShelterSnapshot    `json:"shelters"`

	AliveCount int `json:"aliveCount"`
}

// SnapshotPool pre-allocates snapshots to avoid GC pressure.
// Triple buffering gives a lock-free single-producer/many-reader handoff:
// the tick loop writes one slot while readers see the last published one.
type SnapshotPool struct {
	snapshots [3]Snapshot
	writeIdx  uint32 // atomic - producer index
	readIdx   uint32 // atomic - consumer index
	sequence  uint64 // atomic - monotonic sequence
}

// NewSnapshotPool creates a pool with slices sized to the entity caps.
func NewSnapshotPool(maxAgents, maxProjectiles, maxPickups int) *SnapshotPool {
	pool := &SnapshotPool{}
	for i := 0; i < 3; i++ {
		pool.snapshots[i] = Snapshot{
			Agents:      make([]AgentSnapshot, 0, maxAgents),
			Projectiles: make([]ProjectileSnapshot, 0, maxProjectiles),
			Pickups:     make([]PickupSnapshot, 0, maxPickups),
			Shelters:    make([]ShelterSnapshot, 0, maxAgents),
		}
	}
	return pool
}

// AcquireWrite gets the next write slot (producer only, tick loop).
// Slices reset to length zero with capacity preserved.
func (p *SnapshotPool) AcquireWrite() *Snapshot {
	idx := atomic.AddUint32(&p.writeIdx, 1) % 3
	snap := &p.snapshots[idx]

	snap.Agents = snap.Agents[:0]
	snap.Projectiles = snap.Projectiles[:0]
	snap.Pickups = snap.Pickups[:0]
	snap.Shelters = snap.Shelters[:0]
	snap.AliveCount = 0
	snap.WinnerID = ""
	snap.EndReason = ""

	snap.Sequence = atomic.AddUint64(&p.sequence, 1)
	snap.Timestamp = time.Now()
	return snap
}

// PublishWrite makes the just-written slot visible to readers.
func (p *SnapshotPool) PublishWrite() {
	atomic.StoreUint32(&p.readIdx, atomic.LoadUint32(&p.writeIdx))
}

// AcquireRead returns the latest published snapshot (any reader).
func (p *SnapshotPool) AcquireRead() *Snapshot {
	idx := atomic.LoadUint32(&p.readIdx) % 3
	return &p.snapshots[idx]
}

// produceSnapshot copies the current tick's state into the pool.
// Caller holds the engine lock.
func (e *Engine) produceSnapshot() {
	snap := e.snapshotPool.AcquireWrite()

	snap.Tick = uint64(e.tickCount)
	snap.RNGSeed = e.rngSeed
	snap.Round = e.roundNum
	snap.RoundActive = e.roundActive
	snap.RoundTicksLeft = e.roundTicksLeft
	snap.WinnerID = e.lastWinnerID
	snap.EndReason = e.lastEndReason

	for _, a := range e.agents {
		state := "controlled"
		if a.Bot != nil {
			state = a.Bot.State.String()
		}
		snap.Agents = append(snap.Agents, AgentSnapshot{
			ID:           a.ID,
			Name:         a.Name,
			Controlled:   a.Controlled,
			Pos:          a.Body.Pos,
			Vel:          a.Body.Vel,
			HP:           a.HP,
			MaxHP:        a.MaxHP,
			Alive:        a.Alive,
			Sheltered:    a.Sheltered,
			Stock:        a.Stock,
			MaxStock:     a.MaxStock,
			Snowflakes:   a.Snowflakes,
			Score:        a.Score,
			Eliminations: a.Eliminations,
			State:        state,
			Levels:       a.Levels,
		})
		if a.Alive {
			snap.AliveCount++
		}
	}

	for _, p := range e.projectiles {
		snap.Projectiles = append(snap.Projectiles, ProjectileSnapshot{
			ID:      p.ID,
			OwnerID: p.OwnerID,
			Pos:     p.Body.Pos,
			Vel:     p.Body.Vel,
			Radius:  p.Body.Shape.Radius,
		})
	}

	for _, pk := range e.pickups {
		if pk.Collected {
			continue
		}
		snap.Pickups = append(snap.Pickups, PickupSnapshot{ID: pk.ID, Pos: pk.Pos})
	}

	for _, s := range e.shelters {
		snap.Shelters = append(snap.Shelters, ShelterSnapshot{
			OwnerID:         s.OwnerID,
			Pos:             s.Pos,
			Half:            s.Half,
			Entrance:        s.Entrance,
			SanctuaryRadius: s.SanctuaryRadius,
		})
	}

	e.snapshotPool.PublishWrite()
}

// GetSnapshot returns the latest published snapshot. Lock-free; safe from
// any goroutine while the engine ticks.
func (e *Engine) GetSnapshot() *Snapshot {
	return e.snapshotPool.AcquireRead()
}
