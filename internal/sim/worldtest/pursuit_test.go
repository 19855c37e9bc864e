package worldtest

import (
	"testing"

	"stalkercraft.ai/internal/sim/gridworld"
	"stalkercraft.ai/internal/sim/stalker"
	"stalkercraft.ai/internal/sim/stalker/kernel/model"
	"stalkercraft.ai/internal/telemetry"
)

func TestFollow_StrikesPrimaryInRangeWithoutRetargeting(t *testing.T) {
	h := NewHarness(t, Config{Seed: 7})
	p := h.W.Spawn(model.CategoryPlayer, model.Vec3{X: 2.0, Y: 64, Z: 0.5}, gridworld.SpawnOptions{Health: 1e6})

	h.Step()
	a := h.Agent()
	if !model.SameEntity(a.Primary, p) || !model.SameEntity(a.Active, p) {
		t.Fatalf("primary=%v active=%v", a.Primary, a.Active)
	}
	if !h.S.Arbiter().Running(stalker.KindFollow) {
		t.Fatalf("follow not running: %v", h.S.Arbiter().Active())
	}
	if len(h.Body.Hits) != 1 || h.Body.Hits[0] != p.ID() {
		t.Fatalf("hits=%v", h.Body.Hits)
	}

	h.StepFor(30)
	if len(h.Body.Hits) < 3 {
		t.Fatalf("expected repeated strikes, hits=%v", h.Body.Hits)
	}
	for _, id := range h.Body.Hits {
		if id != p.ID() {
			t.Fatalf("struck %d, want only %d", id, p.ID())
		}
	}
	if !model.SameEntity(a.Active, p) || a.TransientUntil != 0 || a.Distracted() {
		t.Fatalf("target state changed: active=%v until=%d", a.Active, a.TransientUntil)
	}
	if got := h.Events.Count(telemetry.KindAttack); got != len(h.Body.Hits) {
		t.Fatalf("attack events=%d hits=%d", got, len(h.Body.Hits))
	}
	if h.Body.Count(model.EffectElectricRoar) != len(h.Body.Hits) {
		t.Fatalf("attack sounds=%d", h.Body.Count(model.EffectElectricRoar))
	}
}

func TestFollow_ClosesDistanceToPrimary(t *testing.T) {
	h := NewHarness(t, Config{Seed: 3})
	p := h.AddPlayer(40, 0)

	h.Step()
	start := h.Agent().DistanceTo(p)
	if !h.StepUntil(400, func() bool { return h.Agent().DistanceTo(p) <= 2 }) {
		t.Fatalf("agent never reached the player: start=%.1f now=%.1f", start, h.Agent().DistanceTo(p))
	}
	if len(h.Body.Looks) == 0 {
		t.Fatalf("expected the agent to look at its target")
	}
}

func TestTransientTarget_RevertsWithinWindow(t *testing.T) {
	h := NewHarness(t, Config{Seed: 11})
	p := h.AddPlayer(30, 0)
	mob := h.AddMob(-3, 0)

	h.Step()
	a := h.Agent()
	if !model.SameEntity(a.Active, p) {
		t.Fatalf("active=%v", a.Active)
	}

	if hurt := h.S.TakeDamage(model.DamageSource{Attacker: mob, Kind: "mob"}, 40); hurt {
		t.Fatalf("invincible agent reported damage")
	}
	if a.Health != a.Attrs.MaxHealth {
		t.Fatalf("health=%.1f", a.Health)
	}
	if !model.SameEntity(a.Active, mob) || a.TransientUntil != h.Now()+20 {
		t.Fatalf("active=%v until=%d now=%d", a.Active, a.TransientUntil, h.Now())
	}

	h.StepFor(19)
	if !model.SameEntity(a.Active, mob) {
		t.Fatalf("reverted early at %d", h.Now())
	}
	h.Step()
	if !model.SameEntity(a.Active, p) || a.Distracted() {
		t.Fatalf("still distracted at %d: active=%v", h.Now(), a.Active)
	}
	if !model.SameEntity(a.Primary, p) {
		t.Fatalf("primary changed: %v", a.Primary)
	}
}

func TestTransientTarget_RevertsWhenPrimaryIsClose(t *testing.T) {
	h := NewHarness(t, Config{Seed: 11})
	p := h.W.Spawn(model.CategoryPlayer, model.Vec3{X: 4.5, Y: 64, Z: 0.5}, gridworld.SpawnOptions{Health: 1e6})
	mob := h.AddMob(-3, 0)

	h.Step()
	h.S.TakeDamage(model.DamageSource{Attacker: mob}, 1)
	if !h.Agent().Distracted() {
		t.Fatalf("expected a transient target")
	}
	h.Step()
	if h.Agent().Distracted() || !model.SameEntity(h.Agent().Active, p) {
		t.Fatalf("close primary should win back the active target")
	}
}

func TestTargetTracker_SwitchesToNewNearestPlayerOnRefresh(t *testing.T) {
	h := NewHarness(t, Config{Seed: 5})
	far := h.AddPlayer(100, 0)

	h.Step()
	if !model.SameEntity(h.Agent().Primary, far) {
		t.Fatalf("primary=%v", h.Agent().Primary)
	}
	near := h.AddPlayer(0, 20)
	// The tracker only re-resolves a live primary on its refresh cadence.
	ok := h.StepUntil(45, func() bool { return model.SameEntity(h.Agent().Primary, near) })
	if !ok {
		t.Fatalf("primary never switched to the nearer player")
	}
	if h.Now()%40 != 0 {
		t.Fatalf("switched off cadence at %d", h.Now())
	}
	if !model.SameEntity(h.Agent().Active, near) {
		t.Fatalf("active should follow a changed primary")
	}
	if h.Events.Count(telemetry.KindTargetAcquired) != 2 {
		t.Fatalf("target_acquired=%d", h.Events.Count(telemetry.KindTargetAcquired))
	}
}

func TestTargetTracker_DeadPrimaryIsReplaced(t *testing.T) {
	h := NewHarness(t, Config{Seed: 5})
	first := h.AddPlayer(10, 0)
	second := h.AddPlayer(-30, 0)

	h.Step()
	if !model.SameEntity(h.Agent().Primary, first) {
		t.Fatalf("primary=%v", h.Agent().Primary)
	}
	h.W.Kill(first)
	h.Step()
	if !model.SameEntity(h.Agent().Primary, second) {
		t.Fatalf("dead primary not replaced: %v", h.Agent().Primary)
	}

	h.W.Kill(second)
	h.Step()
	if h.Agent().Primary != nil {
		t.Fatalf("dead primary kept with nobody to replace it")
	}
	if h.Events.Count(telemetry.KindTargetMissing) != 1 {
		t.Fatalf("target_missing=%d", h.Events.Count(telemetry.KindTargetMissing))
	}
	h.StepFor(5)
	if h.S.Arbiter().Running(stalker.KindFollow) {
		t.Fatalf("follow should stop without a primary")
	}
}

func TestFloat_JumpsInWater(t *testing.T) {
	h := NewHarness(t, Config{Seed: 2})
	c := h.Body.Pos().Cell()
	h.W.SetBlock(c, gridworld.Water)

	h.Step()
	if !h.Agent().InLiquid || !h.S.Arbiter().Running(stalker.KindFloat) {
		t.Fatalf("float not running: liquid=%v active=%v", h.Agent().InLiquid, h.S.Arbiter().Active())
	}
	if h.Body.Jumps == 0 {
		t.Fatalf("expected a jump")
	}
	want := model.DefaultConfig().MovementSpeed * 2.0
	if got := h.Body.Attrs[model.AttrMovementSpeed]; got != want {
		t.Fatalf("liquid speed=%v want %v", got, want)
	}
}
