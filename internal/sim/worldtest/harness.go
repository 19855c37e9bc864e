package worldtest

import (
	"math/rand"
	"testing"

	"stalkercraft.ai/internal/sim/gridworld"
	"stalkercraft.ai/internal/sim/stalker"
	"stalkercraft.ai/internal/sim/stalker/kernel/model"
	"stalkercraft.ai/internal/telemetry"
)

// Harness is a small black-box test helper that drives one stalker against a
// gridworld host:
// - Step()/StepFor() advance the world clock, the walkers, then the agent
// - Events records everything the agent emits
// - AddPlayer/Block helpers set up deterministic preconditions
//
// It only uses exported APIs so tests can live outside the stalker package.
type Harness struct {
	T      *testing.T
	W      *gridworld.World
	Body   *gridworld.Body
	S      *stalker.Stalker
	Events *telemetry.Recorder

	now uint64
}

type Config struct {
	World   gridworld.Options
	Stalker model.Config
	// Seed feeds the agent's random source.
	Seed int64
	// Start is the tick the agent is added to the world.
	Start uint64
	// Spawn is the agent's column; its height is taken from the terrain.
	SpawnX, SpawnZ int
}

func NewHarness(t *testing.T, cfg Config) *Harness {
	t.Helper()
	if cfg.Stalker == (model.Config{}) {
		cfg.Stalker = model.DefaultConfig()
	}
	if cfg.Start == 0 {
		cfg.Start = 1000
	}

	w := gridworld.New(cfg.World)
	w.Tick(cfg.Start)
	body := w.SpawnBody(model.CategoryStalker, w.Ground(cfg.SpawnX, cfg.SpawnZ))
	rec := &telemetry.Recorder{}
	agent := model.NewAgent(body.ID(), body.Pos(), cfg.Stalker)
	s := stalker.New(agent, w, body.Navigator(), body, cfg.Stalker, stalker.Options{
		Rand: rand.New(rand.NewSource(cfg.Seed)),
		Sink: rec,
	})

	h := &Harness{T: t, W: w, Body: body, S: s, Events: rec, now: cfg.Start}
	if !s.OnAddedToWorld(cfg.Start) {
		t.Fatalf("agent %d was deduplicated on add", agent.ID)
	}
	return h
}

func (h *Harness) Now() uint64         { return h.now }
func (h *Harness) Agent() *model.Agent { return h.S.Agent() }

// Step advances one tick.
func (h *Harness) Step() {
	h.now++
	h.W.Tick(h.now)
	h.S.Tick(h.now, h.Sense())
}

// StepFor advances n ticks.
func (h *Harness) StepFor(n int) {
	for i := 0; i < n; i++ {
		h.Step()
	}
}

// StepUntil advances until cond holds or max ticks pass, reporting whether it held.
func (h *Harness) StepUntil(max int, cond func() bool) bool {
	for i := 0; i < max; i++ {
		h.Step()
		if cond() {
			return true
		}
	}
	return false
}

// Sense reads the agent body the way a host does before each tick.
func (h *Harness) Sense() stalker.Sense {
	return stalker.Sense{Pos: h.Body.Pos(), Facing: h.Body.Facing(), InLiquid: h.Body.InLiquid()}
}

// AddPlayer spawns a player standing on column (x, z). Players are given
// enough health to survive long runs next to the agent.
func (h *Harness) AddPlayer(x, z int) *gridworld.Entity {
	return h.W.Spawn(model.CategoryPlayer, h.W.Ground(x, z), gridworld.SpawnOptions{Health: 1e6})
}

func (h *Harness) AddMob(x, z int) *gridworld.Entity {
	return h.W.Spawn(model.CategoryMob, h.W.Ground(x, z), gridworld.SpawnOptions{Health: 1000})
}

// BoxIn surrounds the agent's cell with unbreakable blocks.
func (h *Harness) BoxIn() {
	h.T.Helper()
	c := h.Body.Pos().Cell()
	h.W.Fill(c.Add(-1, 0, -1), c.Add(1, 2, 1), gridworld.Obsidian)
	h.W.SetBlock(c, gridworld.Air)
	h.W.SetBlock(c.Above(), gridworld.Air)
}

// EventTicks lists the ticks at which kind was emitted.
func (h *Harness) EventTicks(kind telemetry.Kind) []uint64 {
	var out []uint64
	for _, e := range h.Events.Events() {
		if e.Kind == kind {
			out = append(out, e.Tick)
		}
	}
	return out
}
