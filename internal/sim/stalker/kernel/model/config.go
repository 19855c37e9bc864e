package model

// Config is the read-only tuning snapshot the agent consumes each tick.
type Config struct {
	MovementSpeed     float64
	AttackDamage      float64
	Invincible        bool
	MaxHealth         float64
	WakeDistance      float64
	BreakableHardness float64
	PreventSleep      bool
	MinSpawnDistance  int
	MaxSpawnDistance  int
	// GateBreakCooldown is in ticks; zero lets gates break every tick.
	GateBreakCooldown int

	ProximitySounds bool
	AttackSounds    bool
	DamageSounds    bool

	Logging bool
}

// DefaultConfig mirrors the shipped tuning.yaml.
func DefaultConfig() Config {
	return Config{
		MovementSpeed:     0.35,
		AttackDamage:      15,
		Invincible:        true,
		MaxHealth:         800,
		WakeDistance:      15,
		BreakableHardness: 1.0,
		PreventSleep:      true,
		MinSpawnDistance:  160,
		MaxSpawnDistance:  240,
		ProximitySounds:   true,
		AttackSounds:      true,
		DamageSounds:      false,
	}
}

// Normalized fills zero numeric fields with defaults and orders the spawn band.
func (c Config) Normalized() Config {
	d := DefaultConfig()
	if c.MovementSpeed <= 0 {
		c.MovementSpeed = d.MovementSpeed
	}
	if c.AttackDamage <= 0 {
		c.AttackDamage = d.AttackDamage
	}
	if c.MaxHealth <= 0 {
		c.MaxHealth = d.MaxHealth
	}
	if c.WakeDistance <= 0 {
		c.WakeDistance = d.WakeDistance
	}
	if c.BreakableHardness < 0 {
		c.BreakableHardness = d.BreakableHardness
	}
	if c.MinSpawnDistance <= 0 {
		c.MinSpawnDistance = d.MinSpawnDistance
	}
	if c.MaxSpawnDistance <= 0 {
		c.MaxSpawnDistance = d.MaxSpawnDistance
	}
	if c.GateBreakCooldown < 0 {
		c.GateBreakCooldown = 0
	}
	if c.MaxSpawnDistance < c.MinSpawnDistance {
		c.MinSpawnDistance, c.MaxSpawnDistance = c.MaxSpawnDistance, c.MinSpawnDistance
	}
	return c
}
