package sim

import (
	"encoding/json"
	"time"
)

// EventType enum for event classification
type EventType uint8

const (
	EventTypeUnknown EventType = iota
	EventTypeTick              // Tick boundary with RNG seed
	EventTypeAgentJoin
	EventTypeThrow
	EventTypeDamage
	EventTypeElimination
	EventTypePickup
	EventTypeUpgrade
	EventTypeRoundStart
	EventTypeRoundEnd
)

// EventVersion for backwards compatibility in replay
const EventVersion uint8 = 1

// Event is the core event structure for the event log
type Event struct {
	Version   uint8     `json:"version"`   // Schema version
	Type      EventType `json:"type"`      // Event type
	Timestamp int64     `json:"timestamp"` // Unix nano
	Sequence  uint64    `json:"sequence"`  // Monotonic sequence
	TickNum   uint64    `json:"tickNum"`   // Simulation tick this occurred in
	AgentID   string    `json:"agentId"`   // Source agent (for rate limiting)
	Payload   []byte    `json:"payload"`   // JSON-encoded payload
}

// String returns human-readable event type
func (t EventType) String() string {
	switch t {
	case EventTypeTick:
		return "tick"
	case EventTypeAgentJoin:
		return "agent_join"
	case EventTypeThrow:
		return "throw"
	case EventTypeDamage:
		return "damage"
	case EventTypeElimination:
		return "elimination"
	case EventTypePickup:
		return "pickup"
	case EventTypeUpgrade:
		return "upgrade"
	case EventTypeRoundStart:
		return "round_start"
	case EventTypeRoundEnd:
		return "round_end"
	default:
		return "unknown"
	}
}

// Typed payloads for different event types

// TickPayload contains tick boundary information for replay
type TickPayload struct {
	RNGSeed    int64 `json:"rngSeed"`
	AgentCount int   `json:"agentCount"`
	DeltaNs    int64 `json:"deltaNs"`
}

// ThrowPayload contains throw event details
type ThrowPayload struct {
	AgentID      string `json:"agentId"`
	ProjectileID string `json:"projectileId"`
	Stock        int    `json:"stock"`
}

// DamagePayload contains damage event details
type DamagePayload struct {
	AttackerID string `json:"attackerId"`
	VictimID   string `json:"victimId"`
	Damage     int    `json:"damage"`
	VictimHP   int    `json:"victimHp"`
}

// EliminationPayload contains elimination event details
type EliminationPayload struct {
	AttackerID string `json:"attackerId"`
	VictimID   string `json:"victimId"`
	Score      int    `json:"score"` // attacker's score after the bonus
}

// AgentJoinPayload contains agent join details
type AgentJoinPayload struct {
	AgentID    string `json:"agentId"`
	AgentName  string `json:"agentName"`
	Controlled bool   `json:"controlled"`
	Spawn      Vec3   `json:"spawn"`
}

// PickupPayload contains pickup collection details
type PickupPayload struct {
	AgentID    string `json:"agentId"`
	PickupID   string `json:"pickupId"`
	Snowflakes int    `json:"snowflakes"`
}

// UpgradePayload contains upgrade purchase details
type UpgradePayload struct {
	AgentID string `json:"agentId"`
	Stat    string `json:"stat"`
	Level   int    `json:"level"`
}

// RoundStartPayload contains round start details
type RoundStartPayload struct {
	Round      int     `json:"round"`
	DurationS  float64 `json:"durationS"`
	AgentCount int     `json:"agentCount"`
}

// RoundEndPayload contains round end details
type RoundEndPayload struct {
	Round    int    `json:"round"`
	Reason   string `json:"reason"` // "last_standing" or "time_up"
	WinnerID string `json:"winnerId"`
}

// EncodePayload marshals a payload to JSON bytes
func EncodePayload(payload interface{}) []byte {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil
	}
	return data
}

// NewEvent creates a new event with the current timestamp
func NewEvent(eventType EventType, tickNum uint64, agentID string, payload interface{}) Event {
	return Event{
		Version:   EventVersion,
		Type:      eventType,
		Timestamp: time.Now().UnixNano(),
		TickNum:   tickNum,
		AgentID:   agentID,
		Payload:   EncodePayload(payload),
	}
}
