package gridworld

import "stalkercraft.ai/internal/sim/stalker/kernel/model"

// EffectRecord is one played audio cue.
type EffectRecord struct {
	Tick   uint64
	Kind   model.EffectKind
	Volume float64
	Pitch  float64
}

// Body is the host side of an agent: its entity, its walker, and the
// model.Effects the agent drives. Every effect is recorded for inspection.
type Body struct {
	w      *World
	ent    *Entity
	nav    *Navigator
	facing model.Direction

	Attrs     map[model.Attribute]float64
	Effects   []EffectRecord
	Destroyed []model.Vec3i
	Opened    []model.Vec3i
	Teleports []model.Vec3
	Jumps     int
	Looks     []model.Vec3
	Hits      []model.EntityID
	Woken     []model.EntityID
	Messages  []string
}

// SpawnBody adds an entity of cat with its own walker.
func (w *World) SpawnBody(cat model.Category, pos model.Vec3) *Body {
	b := &Body{
		w:     w,
		ent:   w.Spawn(cat, pos, SpawnOptions{}),
		Attrs: map[model.Attribute]float64{},
	}
	b.nav = &Navigator{w: w, body: b}
	w.bodies = append(w.bodies, b)
	return b
}

func (b *Body) Entity() *Entity         { return b.ent }
func (b *Body) Navigator() *Navigator   { return b.nav }
func (b *Body) ID() model.EntityID      { return b.ent.id }
func (b *Body) Pos() model.Vec3         { return b.ent.pos }
func (b *Body) Facing() model.Direction { return b.facing }

// InLiquid reports whether the body's feet are in liquid.
func (b *Body) InLiquid() bool { return b.w.BlockState(b.ent.pos.Cell()).Liquid }

// Count returns how many times kind was played.
func (b *Body) Count(kind model.EffectKind) int {
	n := 0
	for _, e := range b.Effects {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

func (b *Body) TeleportTo(pos model.Vec3) {
	b.ent.pos = pos
	b.Teleports = append(b.Teleports, pos)
}

func (b *Body) DestroyBlock(pos model.Vec3i) {
	b.w.SetBlock(pos, Air)
	b.Destroyed = append(b.Destroyed, pos)
}

func (b *Body) SetBlockOpen(pos model.Vec3i, open bool) {
	b.w.SetBlock(pos, withOpen(b.w.BlockState(pos), open))
	if open {
		b.Opened = append(b.Opened, pos)
	}
}

func (b *Body) PlayEffect(kind model.EffectKind, volume, pitch float64) {
	b.Effects = append(b.Effects, EffectRecord{Tick: b.w.now, Kind: kind, Volume: volume, Pitch: pitch})
}

func (b *Body) SetAttributeBase(attr model.Attribute, value float64) { b.Attrs[attr] = value }

func (b *Body) LookAt(pos model.Vec3) {
	b.facing = model.FacingToward(b.ent.pos, pos)
	b.Looks = append(b.Looks, pos)
}

func (b *Body) Jump() { b.Jumps++ }

func (b *Body) Hurt(target model.EntityRef, amount float64) bool {
	e, ok := b.w.entities[target.ID()]
	if !ok {
		return false
	}
	if !b.w.hurt(e, amount) {
		return false
	}
	b.Hits = append(b.Hits, e.id)
	return true
}

func (b *Body) Wake(target model.EntityRef, message string) {
	if e, ok := b.w.entities[target.ID()]; ok {
		e.sleeping = false
	}
	b.Woken = append(b.Woken, target.ID())
	b.Messages = append(b.Messages, message)
}

func (b *Body) Discard(id model.EntityID) { b.w.Remove(id) }
