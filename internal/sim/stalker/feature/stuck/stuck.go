// Package stuck turns navigation, terrain, and position-history signals into a
// debounced "cannot make progress" verdict.
package stuck

import (
	"stalkercraft.ai/internal/sim/stalker/kernel/model"
	"stalkercraft.ai/internal/sim/stalker/logic/cooldown"
)

const (
	CheckInterval   = 60
	StationaryLimit = 40
	Verdicts        = 3
	RespawnCooldown = 100
	DayCycle        = 24000
)

// Reason names the first signal that made a position count as stuck.
type Reason string

const (
	ReasonNone       Reason = ""
	ReasonInSolid    Reason = "in_solid"
	ReasonNavigation Reason = "nav_stuck"
	ReasonStationary Reason = "stationary"
)

type Verdict struct {
	Stuck  bool
	Reason Reason
	// Consecutive stuck verdicts including this one.
	Count int
	// Respawn is set when the debounce threshold and respawn cooldown both passed.
	Respawn bool
	// Report is true only for the first verdict of a stuck episode.
	Report bool
}

// Observe records the agent's cell for this tick.
func Observe(st *model.StuckState, cell model.Vec3i) {
	if st.HasLastCell && st.LastCell == cell {
		st.Stationary++
		return
	}
	st.LastCell = cell
	st.HasLastCell = true
	st.Stationary = 0
}

// Due reports whether a verdict should be evaluated this tick.
func Due(now uint64) bool { return now%CheckInterval == 0 }

// Classify applies the stuck signals to the current state without mutating it.
func Classify(a *model.Agent, world model.WorldQuery, nav model.Navigator) Reason {
	switch {
	case world.BlockState(a.Cell()).Solid:
		return ReasonInSolid
	case nav.Stuck():
		return ReasonNavigation
	case a.Stuck.Stationary > StationaryLimit:
		return ReasonStationary
	}
	return ReasonNone
}

// Evaluate runs one cadence evaluation. A respawn request also stamps the
// respawn cooldown and clears the counter.
func Evaluate(a *model.Agent, world model.WorldQuery, nav model.Navigator, now uint64) Verdict {
	st := &a.Stuck
	reason := Classify(a, world, nav)
	if reason == ReasonNone {
		st.Reset()
		return Verdict{}
	}

	st.Consecutive++
	v := Verdict{Stuck: true, Reason: reason, Count: st.Consecutive}
	if !st.Reported {
		v.Report = true
		st.Reported = true
	}
	if st.Consecutive >= Verdicts && cooldown.Elapsed(now, a.Cooldowns.Respawn, RespawnCooldown) {
		v.Respawn = true
		st.Consecutive = 0
		a.Cooldowns.Respawn = now
	}
	return v
}

// DayCycleDue reports whether a full day has passed since the last respawn.
func DayCycleDue(now, lastRespawn uint64) bool {
	return now >= lastRespawn && now-lastRespawn >= DayCycle
}
