package model

// EntityID is the stable identifier the host assigns to every entity.
type EntityID int

// Category classifies entities for target queries.
type Category string

const (
	CategoryPlayer  Category = "player"
	CategoryStalker Category = "stalker"
	CategoryMob     Category = "mob"
)

// EntityRef is a non-owning handle to a host entity. The host owns the
// entity's lifetime, so every read must go through Alive first.
type EntityRef interface {
	ID() EntityID
	Category() Category
	Pos() Vec3
	Alive() bool
	// Living distinguishes creatures from inert entities (items, projectiles).
	Living() bool
	Sleeping() bool
	// Skin names the entity's appearance; empty if it has none.
	Skin() string
}

// IsLive reports whether ref points at an entity that is still alive.
func IsLive(ref EntityRef) bool {
	return ref != nil && ref.Alive()
}

// SameEntity compares two handles by identity.
func SameEntity(a, b EntityRef) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.ID() == b.ID()
}

// DamageSource describes who dealt damage to the agent.
type DamageSource struct {
	// Attacker is nil for environmental damage.
	Attacker EntityRef
	Kind     string
}
