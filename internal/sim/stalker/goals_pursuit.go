package stalker

import (
	"stalkercraft.ai/internal/sim/stalker/kernel/model"
	"stalkercraft.ai/internal/sim/stalker/logic/cooldown"
)

func (s *Stalker) behaviors() []*behavior {
	return []*behavior{
		s.followBehavior(),
		s.breakDoorBehavior(),
		s.breakGateBehavior(),
		s.openDoorBehavior(),
		s.openGateBehavior(),
		s.meleeBehavior(),
		s.floatBehavior(),
	}
}

// pathTo re-issues a path at most every pathRecalcTicks.
func (s *Stalker) pathTo(target model.Vec3) {
	if s.pathArmed && !cooldown.Elapsed(s.now, s.lastPath, pathRecalcTicks) {
		return
	}
	s.nav.MoveTo(target, s.agent.Attrs.MovementSpeed)
	s.lastPath = s.now
	s.pathArmed = true
}

func (s *Stalker) followBehavior() *behavior {
	a := s.agent
	return &behavior{
		kind:        KindFollow,
		priority:    1,
		flags:       FlagMove | FlagLook,
		canActivate: a.HasPrimary,
		onActivate: func() {
			a.SetActive(a.Primary)
			a.Distraction = 0
			s.pathArmed = false
		},
		onTick: func() {
			if !a.HasPrimary() {
				return
			}
			target := a.Primary
			s.fx.LookAt(target.Pos())

			if a.Active != nil && !model.SameEntity(a.Active, target) {
				a.Distraction++
				if a.Distraction >= maxDistraction || a.DistanceTo(target) < revertDistance {
					s.revertToPrimary()
				}
			} else {
				a.Distraction = 0
			}

			s.pathTo(target.Pos())

			if a.DistanceTo(target) <= meleeRange {
				s.DealDamage(target)
			}
		},
		onStop: func() {
			a.Distraction = 0
			s.nav.Stop()
		},
	}
}

func (s *Stalker) meleeBehavior() *behavior {
	a := s.agent
	usable := func() bool { return model.IsLive(a.Active) && a.Active.Living() }
	return &behavior{
		kind:        KindMeleeAttack,
		priority:    6,
		flags:       FlagMove | FlagLook,
		canActivate: usable,
		onActivate:  func() { s.pathArmed = false },
		onTick: func() {
			target := a.Active
			s.fx.LookAt(target.Pos())
			s.pathTo(target.Pos())
			if a.DistanceTo(target) <= meleeRange && cooldown.Elapsed(s.now, a.Cooldowns.Melee, meleeIntervalTks) {
				if s.DealDamage(target) {
					a.Cooldowns.Melee = s.now
				}
			}
		},
		onStop: func() { s.nav.Stop() },
	}
}

func (s *Stalker) floatBehavior() *behavior {
	a := s.agent
	return &behavior{
		kind:        KindFloat,
		priority:    7,
		flags:       FlagJump,
		canActivate: func() bool { return a.InLiquid },
		onTick:      func() { s.fx.Jump() },
	}
}
