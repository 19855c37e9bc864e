package worldtest

import (
	"math"
	"testing"

	"stalkercraft.ai/internal/sim/gridworld"
	"stalkercraft.ai/internal/sim/stalker/feature/stuck"
	"stalkercraft.ai/internal/sim/stalker/kernel/model"
	"stalkercraft.ai/internal/telemetry"
)

func standable(w *gridworld.World, c model.Vec3i) bool {
	return !w.BlockState(c).Solid && !w.BlockState(c.Above()).Solid && w.BlockState(c.Below()).Solid
}

func horizontal(a, b model.Vec3) float64 {
	return math.Hypot(a.X-b.X, a.Z-b.Z)
}

func TestStuck_BoxedAgentRespawnsNearTarget(t *testing.T) {
	h := NewHarness(t, Config{Seed: 21})
	p := h.AddPlayer(40, 0)
	h.BoxIn()
	start := h.Body.Pos()

	ok := h.StepUntil(400, func() bool { return h.Events.Count(telemetry.KindRespawned) > 0 })
	if !ok {
		t.Fatalf("boxed agent never respawned; stuck events=%d", h.Events.Count(telemetry.KindStuck))
	}
	// Three verdicts on the 60-tick cadence, the first stuck one once the
	// walker has been blocked long enough.
	if h.Now() != 1200 {
		t.Fatalf("respawned at %d, want 1200", h.Now())
	}
	if h.Events.Count(telemetry.KindStuck) != 1 {
		t.Fatalf("stuck episode reported %d times", h.Events.Count(telemetry.KindStuck))
	}

	a := h.Agent()
	if a.Pos == start || h.Body.Pos() != a.Pos {
		t.Fatalf("agent not relocated: start=%v pos=%v body=%v", start, a.Pos, h.Body.Pos())
	}
	if !standable(h.W, a.Cell()) {
		t.Fatalf("respawned into an invalid cell %v", a.Cell())
	}
	if d := horizontal(a.Pos, p.Pos()); d > 120 {
		t.Fatalf("respawned %.1f from the target", d)
	}
	if a.Stuck.Consecutive != 0 || a.Cooldowns.Respawn != 1200 {
		t.Fatalf("stuck state not reset: %+v respawn=%d", a.Stuck, a.Cooldowns.Respawn)
	}
}

func TestStuck_RespawnsAreRateLimited(t *testing.T) {
	h := NewHarness(t, Config{Seed: 4})
	h.AddPlayer(120, 0)
	h.BoxIn()

	seen := 0
	for i := 0; i < 1500; i++ {
		h.Step()
		if n := h.Events.Count(telemetry.KindRespawned); n != seen {
			seen = n
			h.BoxIn()
		}
	}
	ticks := h.EventTicks(telemetry.KindRespawned)
	if len(ticks) < 2 {
		t.Fatalf("respawns=%v", ticks)
	}
	for i := 1; i < len(ticks); i++ {
		if gap := ticks[i] - ticks[i-1]; gap < stuck.RespawnCooldown {
			t.Fatalf("respawns %d ticks apart: %v", gap, ticks)
		}
	}
}

func TestStuck_MovingAgentNeverRespawns(t *testing.T) {
	h := NewHarness(t, Config{Seed: 9})
	h.AddPlayer(60, 0)

	h.StepFor(600)
	if n := h.Events.Count(telemetry.KindRespawned); n != 0 {
		t.Fatalf("respawns=%d", n)
	}
	if h.Agent().Stuck.Consecutive != 0 {
		t.Fatalf("consecutive=%d", h.Agent().Stuck.Consecutive)
	}
}

func TestDayCycle_RespawnsOncePerDay(t *testing.T) {
	h := NewHarness(t, Config{Seed: 13})
	h.AddPlayer(20, 0)

	h.StepFor(stuck.DayCycle)
	var day []uint64
	for _, e := range h.Events.Events() {
		if e.Kind == telemetry.KindRespawned && e.Detail["reason"] == "day_cycle" {
			day = append(day, e.Tick)
		}
	}
	if len(day) != 1 || day[0] != 1000+stuck.DayCycle {
		t.Fatalf("day cycle respawns=%v", day)
	}
	if !standable(h.W, h.Agent().Cell()) {
		t.Fatalf("day cycle respawn landed in %v", h.Agent().Cell())
	}
}

func TestDistanceCheck_RespawnsWhenTooFar(t *testing.T) {
	h := NewHarness(t, Config{Seed: 17})
	p := h.AddPlayer(400, 0)

	h.Step()
	ticks := h.EventTicks(telemetry.KindRespawned)
	if len(ticks) != 1 || ticks[0] != 1001 {
		t.Fatalf("respawns=%v", ticks)
	}
	if d := h.Agent().DistanceTo(p); d > 240*math.Sqrt2 {
		t.Fatalf("still %.1f from the target", d)
	}

	// The check is rate limited even while the agent stays far away.
	h.W.Move(p, h.W.Ground(5000, 0))
	h.StepFor(98)
	if n := len(h.EventTicks(telemetry.KindRespawned)); n != 1 {
		t.Fatalf("distance check ran inside its interval: %d respawns", n)
	}
}

func TestRespawn_FailsWithoutAnyPlayer(t *testing.T) {
	h := NewHarness(t, Config{Seed: 1})
	h.StepFor(stuck.DayCycle)
	if n := h.Events.Count(telemetry.KindRespawnFailed); n != 1 {
		t.Fatalf("respawn_failed=%d", n)
	}
	if len(h.Body.Teleports) != 0 {
		t.Fatalf("agent moved without a target: %v", h.Body.Teleports)
	}
}
