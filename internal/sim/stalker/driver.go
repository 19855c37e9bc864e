// Package stalker is the decision layer of the pursuit agent. A Stalker owns
// the agent record and is driven one tick at a time from the host's
// simulation thread; it never blocks and never spawns goroutines.
package stalker

import (
	"errors"
	"log"
	"math/rand"

	"stalkercraft.ai/internal/sim/stalker/feature/obstacle"
	"stalkercraft.ai/internal/sim/stalker/feature/respawn"
	"stalkercraft.ai/internal/sim/stalker/feature/stuck"
	"stalkercraft.ai/internal/sim/stalker/kernel/model"
	"stalkercraft.ai/internal/sim/stalker/logic/cooldown"
	"stalkercraft.ai/internal/telemetry"
)

const (
	soundCooldown   = 100
	soundJitter     = 200
	soundTrigger    = 15.0
	liquidSpeedMul  = 2.0
	nearSpeedMul    = 1.3
	nearSpeedRange  = 15.0
	closeSpeedMul   = 1.2
	closeSpeedRange = 30.0

	wakeMessage = "You can't sleep, something approaches..."
)

// Sense is what the host reports about the agent body at the start of a tick.
type Sense struct {
	Pos      model.Vec3
	Facing   model.Direction
	InLiquid bool
}

type Options struct {
	// Rand drives every randomized decision; a fixed seed gives a reproducible run.
	Rand   *rand.Rand
	Logger *log.Logger
	Sink   telemetry.Sink
}

type Stalker struct {
	agent *model.Agent
	world model.WorldQuery
	nav   model.Navigator
	fx    model.Effects

	cfg     model.Config
	pending model.Config

	rng     *rand.Rand
	planner *respawn.Planner
	arbiter *Arbiter
	log     *log.Logger
	sink    telemetry.Sink

	now       uint64
	soundGap  uint64
	lastPath  uint64
	pathArmed bool
}

func New(agent *model.Agent, world model.WorldQuery, nav model.Navigator, fx model.Effects, cfg model.Config, opts Options) *Stalker {
	cfg = cfg.Normalized()
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(int64(agent.ID)))
	}
	sink := opts.Sink
	if sink == nil {
		sink = telemetry.Discard{}
	}
	s := &Stalker{
		agent:   agent,
		world:   world,
		nav:     nav,
		fx:      fx,
		cfg:     cfg,
		pending: cfg,
		rng:     rng,
		planner: respawn.New(world, rng, cfg.MinSpawnDistance, cfg.MaxSpawnDistance),
		log:     opts.Logger,
		sink:    sink,
	}
	s.arbiter = newArbiter(s.behaviors()...)
	return s
}

func (s *Stalker) Agent() *model.Agent { return s.agent }
func (s *Stalker) Arbiter() *Arbiter   { return s.arbiter }

// Planner exposes the respawn planner, e.g. for initial placement by the host.
func (s *Stalker) Planner() *respawn.Planner { return s.planner }

// SetConfig stages a new config snapshot; it takes effect at the next tick.
func (s *Stalker) SetConfig(cfg model.Config) { s.pending = cfg.Normalized() }

func (s *Stalker) Config() model.Config { return s.cfg }

func (s *Stalker) logf(format string, args ...any) {
	if s.cfg.Logging && s.log != nil {
		s.log.Printf(format, args...)
	}
}

func (s *Stalker) emit(kind telemetry.Kind, detail map[string]any) {
	a := s.agent
	e := telemetry.NewEvent(s.now, kind, int(a.ID), [3]float64{a.Pos.X, a.Pos.Y, a.Pos.Z}, detail)
	if err := s.sink.Emit(e); err != nil {
		s.logf("telemetry %s: %v", kind, err)
	}
}

// OnAddedToWorld deduplicates, pushes configured attributes to the host and
// restarts navigation in place. It reports whether this agent survived.
func (s *Stalker) OnAddedToWorld(now uint64) bool {
	s.now = now
	a := s.agent
	kept, removed := Dedupe(s.world, s.fx, a)
	for _, id := range removed {
		s.logf("removed duplicate stalker %d", id)
		s.emit(telemetry.KindDeduplicated, map[string]any{"removed": int(id)})
	}
	if !kept {
		a.Removed = true
		return false
	}

	s.fx.SetAttributeBase(model.AttrMaxHealth, s.cfg.MaxHealth)
	s.fx.SetAttributeBase(model.AttrAttackDamage, s.cfg.AttackDamage)
	s.fx.SetAttributeBase(model.AttrMovementSpeed, s.cfg.MovementSpeed)
	a.Attrs = model.Attributes{
		MovementSpeed: s.cfg.MovementSpeed,
		AttackDamage:  s.cfg.AttackDamage,
		MaxHealth:     s.cfg.MaxHealth,
	}
	if a.Health <= 0 || a.Health > s.cfg.MaxHealth {
		a.Health = s.cfg.MaxHealth
	}

	s.nav.Stop()
	s.nav.MoveTo(a.Pos, 1.0)
	a.Cooldowns.Respawn = now
	s.emit(telemetry.KindSpawned, nil)
	return true
}

// Tick advances the agent by one simulation step.
func (s *Stalker) Tick(now uint64, sense Sense) {
	a := s.agent
	if a.Removed {
		return
	}
	s.now = now
	s.cfg = s.pending
	s.planner.SetBand(s.cfg.MinSpawnDistance, s.cfg.MaxSpawnDistance)
	s.syncAttributes()
	a.Pos = sense.Pos
	a.Facing = sense.Facing
	a.InLiquid = sense.InLiquid

	s.refreshTarget(now)
	s.adjustSpeed()
	s.checkStuck(now)
	if stuck.DayCycleDue(now, a.Cooldowns.Respawn) {
		s.logf("day cycle respawn")
		_ = s.respawnNearby(now, "day_cycle")
	}
	s.breakInPath(now)
	if s.cfg.PreventSleep {
		s.wakeSleepers()
	}
	if s.cfg.ProximitySounds {
		s.proximitySound(now)
	}
	s.checkDistance(now)
	s.selectTargets(now)
	s.revertTransient(now)
	s.arbiter.Tick()
}

// syncAttributes pushes damage and max health from the current config when
// they drifted, so SetConfig takes effect on the next tick.
func (s *Stalker) syncAttributes() {
	a := s.agent
	if a.Attrs.AttackDamage != s.cfg.AttackDamage {
		a.Attrs.AttackDamage = s.cfg.AttackDamage
		s.fx.SetAttributeBase(model.AttrAttackDamage, s.cfg.AttackDamage)
	}
	if a.Attrs.MaxHealth != s.cfg.MaxHealth {
		a.Attrs.MaxHealth = s.cfg.MaxHealth
		s.fx.SetAttributeBase(model.AttrMaxHealth, s.cfg.MaxHealth)
		a.Health = min(a.Health, s.cfg.MaxHealth)
	}
}

func (s *Stalker) adjustSpeed() {
	a := s.agent
	speed := s.cfg.MovementSpeed
	switch {
	case a.InLiquid:
		speed *= liquidSpeedMul
	case a.HasPrimary():
		d := a.DistanceTo(a.Primary)
		if d <= nearSpeedRange {
			speed *= nearSpeedMul
		} else if d <= closeSpeedRange {
			speed *= closeSpeedMul
		}
	}
	if speed != a.Attrs.MovementSpeed {
		a.Attrs.MovementSpeed = speed
		s.fx.SetAttributeBase(model.AttrMovementSpeed, speed)
	}
}

func (s *Stalker) checkStuck(now uint64) {
	a := s.agent
	stuck.Observe(&a.Stuck, a.Cell())
	if !stuck.Due(now) {
		return
	}
	// An idle navigator is a non-stuck evaluation.
	if !s.nav.InProgress() {
		a.Stuck.Reset()
		return
	}
	v := stuck.Evaluate(a, s.world, s.nav, now)
	if v.Report {
		s.logf("stuck: %s", v.Reason)
		s.emit(telemetry.KindStuck, map[string]any{"reason": string(v.Reason)})
	}
	if v.Respawn {
		s.logf("stuck for %d checks, respawning", stuck.Verdicts)
		_ = s.respawnNearby(now, string(v.Reason))
	}
}

// respawnNearby relocates near the primary target, or the nearest player when
// none is tracked. Failure leaves the agent where it is.
func (s *Stalker) respawnNearby(now uint64, reason string) error {
	a := s.agent
	a.Cooldowns.Respawn = now

	target := a.Primary
	if !model.IsLive(target) {
		ref, ok := s.world.NearestSubject(a.Pos, searchRadius*2, model.CategoryPlayer)
		if !ok {
			s.emit(telemetry.KindRespawnFailed, map[string]any{"reason": reason, "error": model.ErrNoTargetFound.Error()})
			return model.ErrNoTargetFound
		}
		target = ref
	}

	cell, strat, err := s.planner.Find(a.Pos, target.Pos())
	if err != nil {
		s.logf("respawn (%s): %v", reason, err)
		s.emit(telemetry.KindRespawnFailed, map[string]any{"reason": reason, "error": err.Error()})
		return err
	}
	from := a.Pos
	pos := s.planner.Relocate(a, s.fx, cell)
	s.nav.Stop()
	s.pathArmed = false
	a.Stuck.Reset()
	a.Stuck.HasLastCell = false
	s.logf("respawned via %s at %.1f,%.1f,%.1f (%s)", strat, pos.X, pos.Y, pos.Z, reason)
	s.emit(telemetry.KindRespawned, map[string]any{
		"reason":   reason,
		"strategy": string(strat),
		"from":     []float64{from.X, from.Y, from.Z},
	})
	return nil
}

func (s *Stalker) checkDistance(now uint64) {
	a := s.agent
	if !cooldown.Elapsed(now, a.Cooldowns.DistanceCheck, respawn.DistanceCheckInterval) {
		return
	}
	a.Cooldowns.DistanceCheck = now

	target := a.Primary
	if !model.IsLive(target) {
		ref, ok := s.world.NearestSubject(a.Pos, searchRadius*2, model.CategoryPlayer)
		if !ok {
			return
		}
		target = ref
	}
	if s.planner.TooFar(a.Pos, target.Pos()) {
		s.logf("too far from target (%.1f), respawning", a.DistanceTo(target))
		_ = s.respawnNearby(now, "distance")
	}
}

func (s *Stalker) breakInPath(now uint64) {
	cell, broke, err := obstacle.BreakInFront(s.agent, s.world, s.fx, s.cfg.BreakableHardness, now)
	if err != nil && !errors.Is(err, model.ErrInvalidObstacle) {
		s.logf("break in path: %v", err)
		return
	}
	if broke {
		s.emit(telemetry.KindBlockBroken, map[string]any{"cell": cell.ToArray()})
	}
}

func (s *Stalker) wakeSleepers() {
	a := s.agent
	sleepers := s.world.EntitiesInRegion(model.BoxAround(a.Pos, s.cfg.WakeDistance), func(e model.EntityRef) bool {
		return e.Category() == model.CategoryPlayer && model.IsLive(e) && e.Sleeping() && a.DistanceTo(e) < s.cfg.WakeDistance
	})
	for _, p := range sleepers {
		s.logf("waking player %d", p.ID())
		s.fx.Wake(p, wakeMessage)
		s.emit(telemetry.KindWake, map[string]any{"player": int(p.ID())})
		s.teleportNearSleeper()
	}
}

// teleportNearSleeper jumps next to the nearest player when farther than the
// minimum spawn distance.
func (s *Stalker) teleportNearSleeper() {
	a := s.agent
	p, ok := s.world.NearestSubject(a.Pos, searchRadius, model.CategoryPlayer)
	if !ok || a.DistanceTo(p) <= float64(s.cfg.MinSpawnDistance) {
		return
	}
	cell, ok := s.planner.Adjacent(p.Pos())
	if !ok {
		s.logf("no adjacent cell near sleeping player %d", p.ID())
		return
	}
	s.planner.Relocate(a, s.fx, cell)
	s.nav.Stop()
	s.pathArmed = false
	s.emit(telemetry.KindRespawned, map[string]any{"reason": "wake", "strategy": string(respawn.StrategyAdjacent)})
}

func (s *Stalker) proximitySound(now uint64) {
	a := s.agent
	if s.soundGap == 0 {
		s.soundGap = soundCooldown + uint64(s.rng.Intn(soundJitter))
	}
	if !cooldown.Elapsed(now, a.Cooldowns.Sound, s.soundGap) {
		return
	}
	a.Cooldowns.Sound = now
	s.soundGap = soundCooldown + uint64(s.rng.Intn(soundJitter))

	if p, ok := s.world.NearestSubject(a.Pos, soundTrigger, model.CategoryPlayer); ok && a.DistanceTo(p) < soundTrigger {
		s.fx.PlayEffect(model.EffectViolins, 0.5, 1.0)
		s.fx.PlayEffect(model.EffectWhispers, 1.0, 1.0)
		s.logf("proximity sound for player %d", p.ID())
	}
}

// revertTransient returns a diverged active target to the primary once the
// transient window has expired or the primary is close.
func (s *Stalker) revertTransient(now uint64) {
	a := s.agent
	if !a.HasPrimary() || !a.Distracted() {
		return
	}
	if now >= a.TransientUntil || a.DistanceTo(a.Primary) < revertDistance {
		s.revertToPrimary()
	}
}

func (s *Stalker) revertToPrimary() {
	a := s.agent
	a.SetActive(a.Primary)
	a.TransientUntil = 0
	a.Distraction = 0
}
