package stalker

import (
	"testing"

	"stalkercraft.ai/internal/sim/gridworld"
	"stalkercraft.ai/internal/sim/stalker/kernel/model"
)

func TestInPath(t *testing.T) {
	w := gridworld.New(gridworld.Options{})
	a := model.NewAgent(99, at(0, 0), model.DefaultConfig())
	ahead := w.Spawn(model.CategoryMob, at(1, 0), gridworld.SpawnOptions{})
	if InPath(a, ahead) {
		t.Fatalf("no primary, nothing is in path")
	}
	a.Primary = w.Spawn(model.CategoryPlayer, at(10, 0), gridworld.SpawnOptions{})

	cases := []struct {
		name string
		pos  model.Vec3
		want bool
	}{
		{"ahead", at(1, 0), true},
		{"ahead_slightly_off", at(3, 1), true},
		{"beside", at(0, 1.5), false},
		{"behind", at(-1, 0), false},
		{"too_far", at(6, 0), false},
	}
	for _, tc := range cases {
		e := w.Spawn(model.CategoryMob, tc.pos, gridworld.SpawnOptions{})
		if got := InPath(a, e); got != tc.want {
			t.Fatalf("%s: InPath=%v want %v", tc.name, got, tc.want)
		}
	}
}

func TestSelectIncidental(t *testing.T) {
	w := gridworld.New(gridworld.Options{})
	a := model.NewAgent(99, at(0, 0), model.DefaultConfig())
	if _, ok := SelectIncidental(a, w); ok {
		t.Fatalf("selected without a primary")
	}
	a.Primary = w.Spawn(model.CategoryPlayer, at(10, 0), gridworld.SpawnOptions{})

	far := w.Spawn(model.CategoryMob, at(3, 0), gridworld.SpawnOptions{})
	if _, ok := SelectIncidental(a, w); ok {
		t.Fatalf("selected %d outside collision radius", far.ID())
	}

	w.Spawn(model.CategoryPlayer, at(1, 0.1), gridworld.SpawnOptions{})
	w.Spawn(model.CategoryStalker, at(1, -0.1), gridworld.SpawnOptions{})
	w.Spawn(model.CategoryMob, at(1.2, 0), gridworld.SpawnOptions{Inert: true})
	if _, ok := SelectIncidental(a, w); ok {
		t.Fatalf("players, stalkers and inert entities are not incidental targets")
	}

	mid := w.Spawn(model.CategoryMob, at(1.5, 0), gridworld.SpawnOptions{})
	near := w.Spawn(model.CategoryMob, at(0.8, 0.2), gridworld.SpawnOptions{})
	got, ok := SelectIncidental(a, w)
	if !ok || got.ID() != near.ID() {
		t.Fatalf("got=%v want %d (mid %d)", got, near.ID(), mid.ID())
	}

	w.Kill(near)
	if got, ok := SelectIncidental(a, w); !ok || got.ID() != mid.ID() {
		t.Fatalf("got=%v want %d", got, mid.ID())
	}
}

func TestSelectPlayer(t *testing.T) {
	w := gridworld.New(gridworld.Options{})
	a := model.NewAgent(99, at(0, 0), model.DefaultConfig())
	if _, ok := SelectPlayer(a, w); ok {
		t.Fatalf("selected from an empty world")
	}
	near := w.Spawn(model.CategoryPlayer, at(5, 0), gridworld.SpawnOptions{})
	w.Spawn(model.CategoryPlayer, at(50, 0), gridworld.SpawnOptions{})
	w.Spawn(model.CategoryMob, at(1, 0), gridworld.SpawnOptions{})

	got, ok := SelectPlayer(a, w)
	if !ok || got.ID() != near.ID() {
		t.Fatalf("got=%v", got)
	}
}

func TestSelectTargets_FillsEmptyActiveAndStrikesInPath(t *testing.T) {
	r := newRig(t, model.DefaultConfig())
	a := r.s.Agent()
	p := r.player(at(10, 0))
	mob := r.mob(at(1, 0))
	a.Primary = p

	r.s.selectTargets(1000)
	if len(r.body.Hits) != 1 || r.body.Hits[0] != mob.ID() {
		t.Fatalf("hits=%v", r.body.Hits)
	}
	if a.TransientUntil != 1020 {
		t.Fatalf("until=%d", a.TransientUntil)
	}
	if !model.SameEntity(a.Active, p) && !model.SameEntity(a.Active, mob) {
		t.Fatalf("active=%v", a.Active)
	}
	if !model.SameEntity(a.Primary, p) {
		t.Fatalf("incidental strike touched the primary target")
	}
}

func TestSelectTargets_TransientChanceIsOneInFive(t *testing.T) {
	hits := 0
	const runs = 500
	for i := 0; i < runs; i++ {
		r := newRig(t, model.DefaultConfig())
		r.s.rng.Seed(int64(i))
		a := r.s.Agent()
		p := r.player(at(10, 0))
		mob := r.mob(at(1, 0))
		a.Primary, a.Active = p, p

		r.s.selectTargets(1000)
		if model.SameEntity(a.Active, mob) {
			hits++
		}
	}
	if hits < runs/10 || hits > runs*3/10 {
		t.Fatalf("transient taken %d/%d times", hits, runs)
	}
}
