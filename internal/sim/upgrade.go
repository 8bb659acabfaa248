package sim

// Stat identifies an upgradeable agent attribute.
type Stat int

const (
	StatSpeed Stat = iota
	StatDamage
	StatRange
	StatBallSize
	StatMaxStock

	StatCount
)

// String returns the stat's wire name.
func (s Stat) String() string {
	switch s {
	case StatSpeed:
		return "speed"
	case StatDamage:
		return "damage"
	case StatRange:
		return "range"
	case StatBallSize:
		return "ball_size"
	case StatMaxStock:
		return "max_stock"
	default:
		return "unknown"
	}
}

// StatFromName parses a wire name into a Stat.
func StatFromName(name string) (Stat, bool) {
	for s := Stat(0); s < StatCount; s++ {
		if s.String() == name {
			return s, true
		}
	}
	return 0, false
}

// StatSpec fixes the cost, level cap and per-level increment of a stat.
type StatSpec struct {
	Name      string  `json:"name"`
	Cost      int     `json:"cost"` // snowflakes per level
	MaxLevel  int     `json:"maxLevel"`
	Increment float64 `json:"increment"`
}

var statSpecs = [StatCount]StatSpec{
	StatSpeed:    {Name: "speed", Cost: 3, MaxLevel: 5, Increment: 0.6},
	StatDamage:   {Name: "damage", Cost: 4, MaxLevel: 5, Increment: 3},
	StatRange:    {Name: "range", Cost: 3, MaxLevel: 5, Increment: 3.0},
	StatBallSize: {Name: "ball_size", Cost: 2, MaxLevel: 4, Increment: 0.05},
	StatMaxStock: {Name: "max_stock", Cost: 2, MaxLevel: 5, Increment: 1},
}

// StatSpecs returns the upgrade table for API exposure.
func StatSpecs() []StatSpec {
	return statSpecs[:]
}

// applyUpgrade attempts to buy one level of the stat for the agent.
// Either the exact cost is deducted and the level rises by one, or nothing
// changes: insufficient snowflakes or a capped level both decline cleanly.
func applyUpgrade(a *Agent, stat Stat) bool {
	if stat < 0 || stat >= StatCount {
		return false
	}
	spec := statSpecs[stat]
	if a.Levels[stat] >= spec.MaxLevel {
		return false
	}
	if a.Snowflakes < spec.Cost {
		return false
	}

	a.Snowflakes -= spec.Cost
	a.Levels[stat]++

	switch stat {
	case StatSpeed:
		a.MoveSpeed += spec.Increment
	case StatDamage:
		a.Damage += int(spec.Increment)
	case StatRange:
		a.ThrowRange += spec.Increment
	case StatBallSize:
		a.BallRadius += spec.Increment
	case StatMaxStock:
		a.MaxStock += int(spec.Increment)
	}
	return true
}
