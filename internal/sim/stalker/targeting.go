package stalker

import (
	"stalkercraft.ai/internal/sim/stalker/kernel/model"
	"stalkercraft.ai/internal/telemetry"
)

const (
	coneDot          = 0.7
	coneRange        = 5.0
	collisionRadius  = 2.0
	distractOneInN   = 5
	transientTicks   = 20
	maxDistraction   = 20
	pathRecalcTicks  = 10
	meleeRange       = 2.0
	meleeIntervalTks = 20
)

// InPath reports whether candidate lies in the forward cone from the agent
// toward its primary target.
func InPath(a *model.Agent, candidate model.EntityRef) bool {
	if !a.HasPrimary() {
		return false
	}
	toTarget := a.Primary.Pos().Sub(a.Pos).Normalize()
	toCand := candidate.Pos().Sub(a.Pos).Normalize()
	return toTarget.Dot(toCand) > coneDot && a.DistanceTo(candidate) < coneRange
}

// SelectPlayer is the priority 1 selector: the nearest live player within
// range. It always wins over incidental selection.
func SelectPlayer(a *model.Agent, world model.WorldQuery) (model.EntityRef, bool) {
	ref, ok := world.NearestSubject(a.Pos, searchRadius, model.CategoryPlayer)
	if !ok || !model.IsLive(ref) {
		return nil, false
	}
	return ref, true
}

// SelectIncidental is the priority 8 selector: the closest living non-player
// in the forward cone and within collision radius.
func SelectIncidental(a *model.Agent, world model.WorldQuery) (model.EntityRef, bool) {
	if !a.HasPrimary() {
		return nil, false
	}
	cands := world.EntitiesInRegion(model.BoxAround(a.Pos, collisionRadius+1), func(e model.EntityRef) bool {
		return e.ID() != a.ID &&
			!model.SameEntity(e, a.Primary) &&
			e.Living() && e.Alive() &&
			e.Category() != model.CategoryPlayer &&
			e.Category() != model.CategoryStalker
	})
	var (
		best   model.EntityRef
		bestSq float64
	)
	for _, c := range cands {
		if !InPath(a, c) {
			continue
		}
		d := a.Pos.DistSq(c.Pos())
		if best == nil || d < bestSq {
			best, bestSq = c, d
		}
	}
	if best == nil || a.DistanceTo(best) >= collisionRadius {
		return nil, false
	}
	return best, true
}

// selectTargets runs both selectors. The player selector only fills an empty
// or dead active target; the incidental one strikes without retargeting and
// occasionally opens a transient window.
func (s *Stalker) selectTargets(now uint64) {
	a := s.agent
	if !model.IsLive(a.Active) {
		if p, ok := SelectPlayer(a, s.world); ok {
			a.SetActive(p)
		}
	}

	mob, ok := SelectIncidental(a, s.world)
	if !ok {
		return
	}
	s.DealDamage(mob)
	if s.rng.Intn(distractOneInN) == 0 {
		a.SetTransient(mob, now+transientTicks)
		s.logf("distracted by %d", mob.ID())
		s.emit(telemetry.KindDistracted, map[string]any{"entity": int(mob.ID())})
	}
}
