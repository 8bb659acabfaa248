package sim

const (
	// KnockbackScale converts damage points into impulse speed (m/s per HP).
	KnockbackScale = 0.25

	// EliminationBonus is the score awarded for removing an opponent.
	EliminationBonus = 100

	// PickupScore is the score awarded per collected snowflake.
	PickupScore = 10
)

// applyDamage deducts health from the victim and applies the side effects:
// knockback away from the impact point, or elimination when health reaches
// zero. from is the impact position used for the knockback direction.
// Caller holds the lock and has already cleared sanctuary gating.
func (e *Engine) applyDamage(victim *Agent, amount int, attackerID string, from Vec3) {
	if !victim.Alive || amount <= 0 {
		return
	}

	victim.HP -= amount
	if victim.HP < 0 {
		victim.HP = 0
	}

	e.eventLog.EmitSimple(EventTypeDamage, uint64(e.tickCount), victim.ID, DamagePayload{
		AttackerID: attackerID,
		VictimID:   victim.ID,
		Damage:     amount,
		VictimHP:   victim.HP,
	})

	if victim.HP == 0 {
		e.eliminate(victim, attackerID)
		return
	}

	// Knockback: push the victim away from the impact point. A degenerate
	// offset (ball center on the collider axis) falls back to a random
	// horizontal direction instead of producing NaN.
	offset := victim.Body.Center().Sub(from)
	offset.Y = 0
	dir, ok := offset.Normalized()
	if !ok {
		dir = e.randomHorizontalDir()
	}
	impulse := dir.Scale(KnockbackScale * float64(amount))
	victim.Body.Vel = victim.Body.Vel.Add(impulse)
}

// eliminate marks the victim dead and credits the attacker if it is still
// in the match. The victim's score and upgrades survive for the next round.
func (e *Engine) eliminate(victim *Agent, attackerID string) {
	victim.Alive = false
	victim.moveIntent = Vec3{}
	victim.Body.Vel = Vec3{}

	attackerScore := 0
	if attacker := e.agentsByID[attackerID]; attacker != nil && attacker.Alive {
		attacker.Score += EliminationBonus
		attacker.Eliminations++
		attackerScore = attacker.Score
	}

	e.eventLog.EmitSimple(EventTypeElimination, uint64(e.tickCount), victim.ID, EliminationPayload{
		AttackerID: attackerID,
		VictimID:   victim.ID,
		Score:      attackerScore,
	})

	if e.OnEliminate != nil {
		go e.OnEliminate(attackerID, victim.ID)
	}
}
