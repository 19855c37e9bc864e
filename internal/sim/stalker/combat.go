package stalker

import (
	"stalkercraft.ai/internal/sim/stalker/kernel/model"
	"stalkercraft.ai/internal/telemetry"
)

func retargetable(src model.DamageSource) bool {
	e := src.Attacker
	return model.IsLive(e) && e.Living() && e.Category() != model.CategoryPlayer
}

// TakeDamage applies incoming damage. An invincible agent is never hurt but
// still reacts: the damage cue plays and a non-player attacker becomes the
// active target for the transient window.
func (s *Stalker) TakeDamage(src model.DamageSource, amount float64) bool {
	a := s.agent
	if a.Removed {
		return false
	}
	hurt := !s.cfg.Invincible && amount > 0
	if s.cfg.Invincible || hurt {
		if s.cfg.DamageSounds {
			s.fx.PlayEffect(model.EffectViolins, 1.0, 1.0)
		}
		if retargetable(src) {
			a.SetTransient(src.Attacker, s.now+transientTicks)
		}
	}
	if !hurt {
		return false
	}

	a.Health -= amount
	s.emit(telemetry.KindDamaged, map[string]any{"amount": amount, "health": a.Health, "kind": src.Kind})
	if a.Health <= 0 {
		s.OnLethalDamage()
	}
	return true
}

// DealDamage strikes target with the configured attack damage. Hitting
// anything but the primary opens a transient window without switching the
// active target.
func (s *Stalker) DealDamage(target model.EntityRef) bool {
	a := s.agent
	if !model.IsLive(target) || !target.Living() {
		return false
	}
	if !s.fx.Hurt(target, a.Attrs.AttackDamage) {
		return false
	}
	if s.cfg.AttackSounds {
		s.fx.PlayEffect(model.EffectElectricRoar, 0.7, 1.0)
	}
	if !model.SameEntity(target, a.Primary) {
		a.TransientUntil = s.now + transientTicks
	}
	s.logf("attacked %d for %.1f", target.ID(), a.Attrs.AttackDamage)
	s.emit(telemetry.KindAttack, map[string]any{"entity": int(target.ID()), "damage": a.Attrs.AttackDamage})
	return true
}

// OnLethalDamage removes a mortal agent. It does nothing while invincible.
func (s *Stalker) OnLethalDamage() {
	a := s.agent
	if s.cfg.Invincible || a.Removed {
		return
	}
	a.Removed = true
	s.arbiter.StopAll()
	s.nav.Stop()
	s.fx.Discard(a.ID)
	s.logf("removed after lethal damage")
	s.emit(telemetry.KindRemoved, nil)
}
