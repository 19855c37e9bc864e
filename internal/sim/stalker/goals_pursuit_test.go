package stalker

import (
	"testing"

	"stalkercraft.ai/internal/sim/stalker/kernel/model"
)

func TestMeleeAttack_StrikesActiveOnInterval(t *testing.T) {
	r := newRig(t, model.DefaultConfig())
	mob := r.mob(at(1, 0))
	r.s.Agent().SetActive(mob)

	r.step()
	if !r.s.Arbiter().Running(KindMeleeAttack) {
		t.Fatalf("melee not running: %v", r.s.Arbiter().Active())
	}
	if len(r.body.Hits) != 1 {
		t.Fatalf("hits=%v", r.body.Hits)
	}
	for r.now < 1020 {
		r.step()
	}
	if len(r.body.Hits) != 1 {
		t.Fatalf("struck inside the attack interval: %v", r.body.Hits)
	}
	for r.now < 1041 {
		r.step()
	}
	if len(r.body.Hits) != 3 {
		t.Fatalf("hits=%d want 3", len(r.body.Hits))
	}
	if r.s.Agent().Cooldowns.Melee != 1041 {
		t.Fatalf("melee cooldown=%d", r.s.Agent().Cooldowns.Melee)
	}
}

func TestMeleeAttack_IdleWithoutLiveTarget(t *testing.T) {
	r := newRig(t, model.DefaultConfig())
	mob := r.mob(at(1, 0))
	r.s.Agent().SetActive(mob)
	r.w.Kill(mob)

	r.step()
	if r.s.Arbiter().Running(KindMeleeAttack) || len(r.body.Hits) != 0 {
		t.Fatalf("attacked a dead target: hits=%v", r.body.Hits)
	}
}
