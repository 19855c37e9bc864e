package tuning

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"stalkercraft.ai/internal/sim/stalker/kernel/model"
)

//go:embed tuning.schema.json
var schemaJSON string

var schema = jsonschema.MustCompileString("tuning.schema.json", schemaJSON)

type Tuning struct {
	Stalker Stalker `yaml:"stalker"`
	Sounds  Sounds  `yaml:"sounds"`
	Logging bool    `yaml:"logging"`
}

type Stalker struct {
	MovementSpeed     float64 `yaml:"movement_speed"`
	AttackDamage      float64 `yaml:"attack_damage"`
	Invincible        bool    `yaml:"invincible"`
	MaxHealth         float64 `yaml:"max_health"`
	WakeDistance      float64 `yaml:"wake_distance"`
	BreakableHardness float64 `yaml:"breakable_hardness"`
	PreventSleep      bool    `yaml:"prevent_sleep"`
	MinSpawnDistance  int     `yaml:"min_spawn_distance"`
	MaxSpawnDistance  int     `yaml:"max_spawn_distance"`

	GateBreakCooldownTicks int `yaml:"gate_break_cooldown_ticks"`
}

type Sounds struct {
	Proximity bool `yaml:"proximity"`
	Attack    bool `yaml:"attack"`
	Damage    bool `yaml:"damage"`
}

// Defaults returns the shipped tuning. Booleans are seeded here since an
// explicit false in the file has to survive decoding.
func Defaults() Tuning {
	d := model.DefaultConfig()
	return Tuning{
		Stalker: Stalker{
			MovementSpeed:     d.MovementSpeed,
			AttackDamage:      d.AttackDamage,
			Invincible:        d.Invincible,
			MaxHealth:         d.MaxHealth,
			WakeDistance:      d.WakeDistance,
			BreakableHardness: d.BreakableHardness,
			PreventSleep:      d.PreventSleep,
			MinSpawnDistance:  d.MinSpawnDistance,
			MaxSpawnDistance:  d.MaxSpawnDistance,
		},
		Sounds: Sounds{
			Proximity: d.ProximitySounds,
			Attack:    d.AttackSounds,
			Damage:    d.DamageSounds,
		},
	}
}

func (t *Tuning) applyDefaults() {
	d := Defaults().Stalker
	s := &t.Stalker
	if s.MovementSpeed == 0 {
		s.MovementSpeed = d.MovementSpeed
	}
	if s.AttackDamage == 0 {
		s.AttackDamage = d.AttackDamage
	}
	if s.MaxHealth == 0 {
		s.MaxHealth = d.MaxHealth
	}
	if s.WakeDistance == 0 {
		s.WakeDistance = d.WakeDistance
	}
	if s.MinSpawnDistance == 0 {
		s.MinSpawnDistance = d.MinSpawnDistance
	}
	if s.MaxSpawnDistance == 0 {
		s.MaxSpawnDistance = d.MaxSpawnDistance
	}
}

// StalkerConfig converts the tuning into the agent's read-only config snapshot.
func (t Tuning) StalkerConfig() model.Config {
	return model.Config{
		MovementSpeed:     t.Stalker.MovementSpeed,
		AttackDamage:      t.Stalker.AttackDamage,
		Invincible:        t.Stalker.Invincible,
		MaxHealth:         t.Stalker.MaxHealth,
		WakeDistance:      t.Stalker.WakeDistance,
		BreakableHardness: t.Stalker.BreakableHardness,
		PreventSleep:      t.Stalker.PreventSleep,
		MinSpawnDistance:  t.Stalker.MinSpawnDistance,
		MaxSpawnDistance:  t.Stalker.MaxSpawnDistance,
		GateBreakCooldown: t.Stalker.GateBreakCooldownTicks,
		ProximitySounds:   t.Sounds.Proximity,
		AttackSounds:      t.Sounds.Attack,
		DamageSounds:      t.Sounds.Damage,
		Logging:           t.Logging,
	}
}

// validate checks raw YAML against the embedded range schema.
func validate(raw []byte) error {
	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return err
	}
	if doc == nil {
		return nil
	}
	// The validator expects values shaped like decoded JSON.
	b, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return err
	}
	return schema.Validate(v)
}

// Parse decodes and validates a tuning document, filling unset fields.
func Parse(raw []byte) (Tuning, error) {
	t := Defaults()
	if err := validate(raw); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	t.applyDefaults()
	return t, nil
}

func Load(path string) (Tuning, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Defaults(), err
	}
	return Parse(raw)
}
