package gridworld

import "stalkercraft.ai/internal/sim/stalker/kernel/model"

// invulnerableTicks mirrors the usual hurt cooldown: a struck entity ignores
// further damage for this many ticks.
const invulnerableTicks = 10

// Entity is a host-owned entity. The stalker core only sees it through
// model.EntityRef.
type Entity struct {
	id       model.EntityID
	category model.Category
	pos      model.Vec3
	alive    bool
	living   bool
	sleeping bool
	skin     string

	health    float64
	hurtUntil uint64
}

func (e *Entity) ID() model.EntityID       { return e.id }
func (e *Entity) Category() model.Category { return e.category }
func (e *Entity) Pos() model.Vec3          { return e.pos }
func (e *Entity) Alive() bool              { return e.alive }
func (e *Entity) Living() bool             { return e.living }
func (e *Entity) Sleeping() bool           { return e.sleeping }
func (e *Entity) Skin() string             { return e.skin }
func (e *Entity) Health() float64          { return e.health }

type SpawnOptions struct {
	Health float64
	Skin   string
	// Inert entities (items, projectiles) are not living.
	Inert bool
}

func (w *World) Spawn(cat model.Category, pos model.Vec3, opts SpawnOptions) *Entity {
	if opts.Health <= 0 {
		opts.Health = 20
	}
	e := &Entity{
		id:       w.nextID,
		category: cat,
		pos:      pos,
		alive:    true,
		living:   !opts.Inert,
		skin:     opts.Skin,
		health:   opts.Health,
	}
	w.nextID++
	w.entities[e.id] = e
	return e
}

func (w *World) Entity(id model.EntityID) (*Entity, bool) {
	e, ok := w.entities[id]
	return e, ok
}

// Move places an entity without pathing.
func (w *World) Move(e *Entity, pos model.Vec3) { e.pos = pos }

func (w *World) SetSleeping(e *Entity, sleeping bool) { e.sleeping = sleeping }

// Kill marks e dead but keeps its handle resolvable.
func (w *World) Kill(e *Entity) {
	e.alive = false
	e.health = 0
}

// Remove kills e and drops it from the world.
func (w *World) Remove(id model.EntityID) {
	if e, ok := w.entities[id]; ok {
		w.Kill(e)
		delete(w.entities, id)
	}
}

// Count returns the live entities of category.
func (w *World) Count(cat model.Category) int {
	n := 0
	for _, e := range w.entities {
		if e.alive && e.category == cat {
			n++
		}
	}
	return n
}

func (w *World) hurt(e *Entity, amount float64) bool {
	if !e.alive || !e.living || amount <= 0 || w.now < e.hurtUntil {
		return false
	}
	e.health -= amount
	e.hurtUntil = w.now + invulnerableTicks
	if e.health <= 0 {
		w.Kill(e)
	}
	return true
}
