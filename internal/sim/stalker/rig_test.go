package stalker

import (
	"math/rand"
	"testing"

	"stalkercraft.ai/internal/sim/gridworld"
	"stalkercraft.ai/internal/sim/stalker/kernel/model"
	"stalkercraft.ai/internal/telemetry"
)

type rig struct {
	w    *gridworld.World
	body *gridworld.Body
	s    *Stalker
	rec  *telemetry.Recorder
	now  uint64
}

func newRig(t *testing.T, cfg model.Config) *rig {
	t.Helper()
	w := gridworld.New(gridworld.Options{})
	w.Tick(1000)
	body := w.SpawnBody(model.CategoryStalker, w.Ground(0, 0))
	rec := &telemetry.Recorder{}
	a := model.NewAgent(body.ID(), body.Pos(), cfg)
	s := New(a, w, body.Navigator(), body, cfg, Options{Rand: rand.New(rand.NewSource(1)), Sink: rec})
	s.now = 1000
	return &rig{w: w, body: body, s: s, rec: rec, now: 1000}
}

// tick runs the agent only; the world clock and walkers are left alone.
func (r *rig) tick() {
	r.now++
	r.s.Tick(r.now, Sense{Pos: r.body.Pos(), Facing: r.body.Facing(), InLiquid: r.body.InLiquid()})
}

// step advances the world and its walkers before ticking the agent.
func (r *rig) step() {
	r.w.Tick(r.now + 1)
	r.tick()
}

func (r *rig) player(pos model.Vec3) *gridworld.Entity {
	return r.w.Spawn(model.CategoryPlayer, pos, gridworld.SpawnOptions{Health: 1e6})
}

func (r *rig) mob(pos model.Vec3) *gridworld.Entity {
	return r.w.Spawn(model.CategoryMob, pos, gridworld.SpawnOptions{Health: 100})
}

// at returns the position offset from the agent's spawn point.
func at(dx, dz float64) model.Vec3 {
	return model.Vec3{X: 0.5 + dx, Y: 64, Z: 0.5 + dz}
}
