package sim

import "fmt"

// PickupRadius is the collection proximity threshold added to the agent's
// collision radius.
const PickupRadius = 0.4

// Pickup is a snowflake resource node. Spawned by an external policy,
// collected on proximity to a living agent, then removed after the
// collision pass commits.
type Pickup struct {
	ID        string
	Pos       Vec3
	Collected bool
}

func newPickup(pos Vec3, seq uint64) *Pickup {
	return &Pickup{
		ID:  fmt.Sprintf("flake_%d", seq),
		Pos: pos,
	}
}
