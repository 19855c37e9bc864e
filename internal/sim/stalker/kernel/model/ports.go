package model

// BlockCategory groups block types the agent treats specially.
type BlockCategory string

const (
	BlockOther    BlockCategory = ""
	BlockDoor     BlockCategory = "door"
	BlockGate     BlockCategory = "gate"
	BlockTrapdoor BlockCategory = "trapdoor"
	BlockWall     BlockCategory = "wall"
	BlockFoliage  BlockCategory = "foliage"
)

// BlockState is the host's view of one cell.
type BlockState struct {
	// ID is a namespaced identifier such as "minecraft:oak_door".
	ID       string
	Category BlockCategory
	// Hardness is the destruction difficulty; negative means unbreakable.
	Hardness float64
	Solid    bool
	Liquid   bool
	Openable bool
	Open     bool
}

// Light holds the two light channels of a cell (0..15).
type Light struct {
	Block int
	Sky   int
}

// WorldQuery is the read side of the host world.
type WorldQuery interface {
	// NearestSubject returns the closest live entity of category within radius of origin.
	NearestSubject(origin Vec3, radius float64, category Category) (EntityRef, bool)
	EntitiesInRegion(bounds AABB, pred func(EntityRef) bool) []EntityRef
	BlockState(pos Vec3i) BlockState
	LightLevels(pos Vec3i) Light
	// TimeOfDay is the day-cycle clock; callers reduce it modulo the day length.
	TimeOfDay() int64
	// HighestSurface returns the first free cell above the highest non-foliage motion blocking cell of column (x, z).
	HighestSurface(x, z int) Vec3i
	CanSeeSky(pos Vec3i) bool
	// Bounds returns the build limits: minY inclusive, maxY exclusive.
	Bounds() (minY, maxY int)
}

// Navigator moves the agent along paths it plans itself.
type Navigator interface {
	MoveTo(target Vec3, speed float64) bool
	Stop()
	InProgress() bool
	Done() bool
	Stuck() bool
}

// EffectKind names an audio cue.
type EffectKind string

const (
	EffectViolins      EffectKind = "violins"
	EffectWhispers     EffectKind = "whispers_001"
	EffectElectricRoar EffectKind = "electric_roar"
	EffectWoodBreak    EffectKind = "wood_break"
	EffectGateOpen     EffectKind = "fence_gate_open"
)

// Attribute names a host attribute whose base value the agent drives.
type Attribute string

const (
	AttrMaxHealth     Attribute = "max_health"
	AttrMovementSpeed Attribute = "movement_speed"
	AttrAttackDamage  Attribute = "attack_damage"
)

// Effects are the mutations the agent requests from the host.
type Effects interface {
	TeleportTo(pos Vec3)
	DestroyBlock(pos Vec3i)
	SetBlockOpen(pos Vec3i, open bool)
	PlayEffect(kind EffectKind, volume, pitch float64)
	SetAttributeBase(attr Attribute, value float64)
	LookAt(pos Vec3)
	Jump()
	// Hurt applies damage to target and reports whether it landed.
	Hurt(target EntityRef, amount float64) bool
	Wake(target EntityRef, message string)
	// Discard removes an entity from the world.
	Discard(id EntityID)
}
