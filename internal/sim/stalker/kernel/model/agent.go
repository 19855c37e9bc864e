package model

// Attributes are the agent's live stat values as last pushed to the host.
type Attributes struct {
	MovementSpeed float64
	AttackDamage  float64
	MaxHealth     float64
}

// StuckState is the position history and debounce counters of the stuck detector.
type StuckState struct {
	// Consecutive stuck verdicts across cadence evaluations.
	Consecutive int
	LastCell    Vec3i
	HasLastCell bool
	// Ticks spent in LastCell without leaving it.
	Stationary int
	// Reported is set once a stuck episode has been logged, cleared when it ends.
	Reported bool
}

// Reset clears the episode; called whenever movement resumes.
func (s *StuckState) Reset() {
	s.Consecutive = 0
	s.Stationary = 0
	s.Reported = false
}

// Cooldowns hold the last tick each repeatable action fired.
type Cooldowns struct {
	Respawn       uint64
	BlockBreak    uint64
	Sound         uint64
	DistanceCheck uint64
	DoorBreak     uint64
	GateBreak     uint64
	Melee         uint64
}

// Agent is the single owned state record of the stalker. Behaviors receive a
// pointer to it; nothing copies it.
type Agent struct {
	ID EntityID

	Pos      Vec3
	Facing   Direction
	InLiquid bool

	Attrs  Attributes
	Health float64

	// Primary is the pursued subject. At most one, replaced wholesale.
	Primary EntityRef
	// Active is the current combat target; it may briefly diverge from Primary.
	Active EntityRef
	// TransientUntil is the tick at which a divergent Active reverts to Primary.
	TransientUntil uint64
	Distraction    int

	Stuck     StuckState
	Cooldowns Cooldowns

	Removed bool
}

// NewAgent returns an agent at pos with attributes taken from cfg.
func NewAgent(id EntityID, pos Vec3, cfg Config) *Agent {
	cfg = cfg.Normalized()
	return &Agent{
		ID:  id,
		Pos: pos,
		Attrs: Attributes{
			MovementSpeed: cfg.MovementSpeed,
			AttackDamage:  cfg.AttackDamage,
			MaxHealth:     cfg.MaxHealth,
		},
		Health: cfg.MaxHealth,
	}
}

func (a *Agent) Cell() Vec3i { return a.Pos.Cell() }

// HasPrimary reports whether the primary target is set and alive.
func (a *Agent) HasPrimary() bool { return IsLive(a.Primary) }

// Distracted reports whether the active target differs from the primary target.
func (a *Agent) Distracted() bool {
	return a.Active != nil && !SameEntity(a.Active, a.Primary)
}

// SetActive switches the combat target without touching the primary target.
func (a *Agent) SetActive(ref EntityRef) { a.Active = ref }

// SetTransient makes ref the active target until the given tick.
func (a *Agent) SetTransient(ref EntityRef, until uint64) {
	a.Active = ref
	a.TransientUntil = until
}

// DistanceTo returns the distance to a handle's last known position.
func (a *Agent) DistanceTo(ref EntityRef) float64 {
	return a.Pos.Dist(ref.Pos())
}
