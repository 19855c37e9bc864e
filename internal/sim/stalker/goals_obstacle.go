package stalker

import (
	"stalkercraft.ai/internal/sim/stalker/feature/obstacle"
	"stalkercraft.ai/internal/sim/stalker/kernel/model"
	"stalkercraft.ai/internal/sim/stalker/logic/cooldown"
	"stalkercraft.ai/internal/telemetry"
)

func never() bool { return false }

// breakBehavior destroys the first closed block of cat around the agent.
// It is a single-shot action: it claims no flags and stops on the next tick.
func (s *Stalker) breakBehavior(kind Kind, prio int, cat model.BlockCategory, ready func() bool, mark func(), ev telemetry.Kind) *behavior {
	a := s.agent
	var cell model.Vec3i
	return &behavior{
		kind:     kind,
		priority: prio,
		canActivate: func() bool {
			if !ready() {
				return false
			}
			c, ok := obstacle.FindClosed(s.world, a.Cell(), cat)
			cell = c
			return ok
		},
		canContinue: never,
		onActivate: func() {
			s.fx.DestroyBlock(cell)
			s.fx.PlayEffect(model.EffectWoodBreak, 1.0, 1.0)
			mark()
			s.logf("broke %s at %v", cat, cell)
			s.emit(ev, map[string]any{"cell": cell.ToArray()})
		},
	}
}

func (s *Stalker) breakDoorBehavior() *behavior {
	a := s.agent
	return s.breakBehavior(KindBreakDoor, 2, model.BlockDoor,
		func() bool { return cooldown.Exceeded(s.now, a.Cooldowns.DoorBreak, obstacle.DoorBreakCooldown) },
		func() { a.Cooldowns.DoorBreak = s.now },
		telemetry.KindDoorBroken)
}

func (s *Stalker) breakGateBehavior() *behavior {
	a := s.agent
	return s.breakBehavior(KindBreakGate, 3, model.BlockGate,
		func() bool {
			return cooldown.Elapsed(s.now, a.Cooldowns.GateBreak, uint64(s.cfg.GateBreakCooldown))
		},
		func() { a.Cooldowns.GateBreak = s.now },
		telemetry.KindGateBroken)
}

// openBehavior opens closed blocks of cat while a path is being followed.
func (s *Stalker) openBehavior(kind Kind, prio int, cat model.BlockCategory) *behavior {
	a := s.agent
	var cell model.Vec3i
	return &behavior{
		kind:     kind,
		priority: prio,
		canActivate: func() bool {
			if !s.nav.InProgress() {
				return false
			}
			c, ok := obstacle.FindClosed(s.world, a.Cell(), cat)
			cell = c
			return ok
		},
		canContinue: never,
		onActivate: func() {
			s.fx.SetBlockOpen(cell, true)
			s.fx.PlayEffect(model.EffectGateOpen, 1.0, 1.0)
			s.emit(telemetry.KindOpened, map[string]any{"cell": cell.ToArray(), "category": string(cat)})
		},
	}
}

func (s *Stalker) openDoorBehavior() *behavior {
	return s.openBehavior(KindOpenDoor, 4, model.BlockDoor)
}

func (s *Stalker) openGateBehavior() *behavior {
	return s.openBehavior(KindOpenGate, 5, model.BlockGate)
}
