// Package gridworld is an in-memory block world that plays host to the
// stalker: terrain, light, a day clock, entities, and simple walkers.
package gridworld

import (
	"sort"

	"stalkercraft.ai/internal/sim/stalker/kernel/model"
	"stalkercraft.ai/internal/sim/stalker/logic/mathx"
)

const DayLength = 24000

type Options struct {
	Seed int64
	MinY int
	MaxY int
	// Ground is the terrain height of flat worlds, and the base height of hills.
	Ground int
	// HillAmplitude > 0 adds seeded per-column height noise.
	HillAmplitude int
}

func (o *Options) applyDefaults() {
	if o.MaxY == 0 && o.MinY == 0 {
		o.MinY, o.MaxY = -64, 320
	}
	if o.Ground == 0 {
		o.Ground = 63
	}
}

type column struct{ x, z int }

// World is not safe for concurrent use; it is driven from the simulation thread.
type World struct {
	opts Options

	cells  map[model.Vec3i]model.BlockState
	colTop map[column]int
	lights map[model.Vec3i]int

	entities map[model.EntityID]*Entity
	nextID   model.EntityID

	bodies []*Body

	now uint64
	tod int64
}

func New(opts Options) *World {
	opts.applyDefaults()
	return &World{
		opts:     opts,
		cells:    map[model.Vec3i]model.BlockState{},
		colTop:   map[column]int{},
		lights:   map[model.Vec3i]int{},
		entities: map[model.EntityID]*Entity{},
		nextID:   1,
	}
}

// Height is the natural terrain height of column (x, z).
func (w *World) Height(x, z int) int {
	if w.opts.HillAmplitude <= 0 {
		return w.opts.Ground
	}
	h := mathx.Hash2(w.opts.Seed, mathx.FloorDiv(x, 8), mathx.FloorDiv(z, 8))
	return w.opts.Ground + int(h%uint64(w.opts.HillAmplitude+1))
}

func (w *World) natural(p model.Vec3i) model.BlockState {
	switch h := w.Height(p.X, p.Z); {
	case p.Y <= w.opts.MinY:
		return Bedrock
	case p.Y < h-3:
		return Stone
	case p.Y < h:
		return Dirt
	case p.Y == h:
		return Grass
	default:
		return Air
	}
}

func (w *World) BlockState(p model.Vec3i) model.BlockState {
	if p.Y < w.opts.MinY || p.Y >= w.opts.MaxY {
		return Air
	}
	if bs, ok := w.cells[p]; ok {
		return bs
	}
	return w.natural(p)
}

// SetBlock overrides a cell.
func (w *World) SetBlock(p model.Vec3i, bs model.BlockState) {
	w.cells[p] = bs
	c := column{p.X, p.Z}
	if top, ok := w.colTop[c]; !ok || p.Y > top {
		w.colTop[c] = p.Y
	}
	if l := emits(bs); l > 0 {
		w.lights[p] = l
	} else {
		delete(w.lights, p)
	}
}

// Fill sets every cell in the inclusive box [a, b].
func (w *World) Fill(a, b model.Vec3i, bs model.BlockState) {
	for x := min(a.X, b.X); x <= max(a.X, b.X); x++ {
		for y := min(a.Y, b.Y); y <= max(a.Y, b.Y); y++ {
			for z := min(a.Z, b.Z); z <= max(a.Z, b.Z); z++ {
				w.SetBlock(model.Vec3i{X: x, Y: y, Z: z}, bs)
			}
		}
	}
}

func (w *World) top(x, z int) int {
	t := w.Height(x, z)
	if ct, ok := w.colTop[column{x, z}]; ok && ct > t {
		t = ct
	}
	return t
}

// HighestSurface returns the free cell above the highest non-foliage
// movement-blocking cell of the column.
func (w *World) HighestSurface(x, z int) model.Vec3i {
	for y := w.top(x, z); y > w.opts.MinY; y-- {
		bs := w.BlockState(model.Vec3i{X: x, Y: y, Z: z})
		if (bs.Solid || bs.Liquid) && bs.Category != model.BlockFoliage {
			return model.Vec3i{X: x, Y: y + 1, Z: z}
		}
	}
	return model.Vec3i{X: x, Y: w.opts.MinY + 1, Z: z}
}

func (w *World) CanSeeSky(p model.Vec3i) bool {
	for y := p.Y + 1; y <= w.top(p.X, p.Z); y++ {
		bs := w.BlockState(model.Vec3i{X: p.X, Y: y, Z: p.Z})
		if bs.Solid || bs.Liquid {
			return false
		}
	}
	return true
}

func (w *World) LightLevels(p model.Vec3i) model.Light {
	l := model.Light{}
	if w.CanSeeSky(p) {
		l.Sky = 15
	}
	for src, level := range w.lights {
		d := mathx.AbsInt(src.X-p.X) + mathx.AbsInt(src.Y-p.Y) + mathx.AbsInt(src.Z-p.Z)
		if v := level - d; v > l.Block {
			l.Block = v
		}
	}
	return l
}

func (w *World) Bounds() (int, int) { return w.opts.MinY, w.opts.MaxY }

func (w *World) TimeOfDay() int64 { return w.tod }

func (w *World) SetTimeOfDay(t int64) { w.tod = mathx.Mod64(t, DayLength) }

// Now is the game tick of the last Tick call.
func (w *World) Now() uint64 { return w.now }

// Tick advances the clock and every walker by one step.
func (w *World) Tick(now uint64) {
	if now > w.now {
		w.tod = mathx.Mod64(w.tod+int64(now-w.now), DayLength)
	}
	w.now = now
	for _, b := range w.bodies {
		if b.ent.alive {
			b.nav.step()
		}
	}
}

func (w *World) NearestSubject(origin model.Vec3, radius float64, category model.Category) (model.EntityRef, bool) {
	var (
		best   *Entity
		bestSq = radius * radius
	)
	for _, e := range w.sortedEntities() {
		if !e.alive || e.category != category {
			continue
		}
		if d := e.pos.DistSq(origin); d <= bestSq {
			best, bestSq = e, d
		}
	}
	if best == nil {
		return nil, false
	}
	return best, true
}

func (w *World) EntitiesInRegion(bounds model.AABB, pred func(model.EntityRef) bool) []model.EntityRef {
	var out []model.EntityRef
	for _, e := range w.sortedEntities() {
		if !bounds.Contains(e.pos) {
			continue
		}
		if pred == nil || pred(e) {
			out = append(out, e)
		}
	}
	return out
}

// sortedEntities gives queries a deterministic order.
func (w *World) sortedEntities() []*Entity {
	out := make([]*Entity, 0, len(w.entities))
	for _, e := range w.entities {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

// walkable reports whether an entity can stand with its feet in p.
func (w *World) walkable(p model.Vec3i) bool {
	cell := w.BlockState(p)
	if cell.Solid || w.BlockState(p.Above()).Solid {
		return false
	}
	return cell.Liquid || w.BlockState(p.Below()).Solid
}

// Ground returns the standing position on top of column (x, z).
func (w *World) Ground(x, z int) model.Vec3 {
	return w.HighestSurface(x, z).Center()
}
