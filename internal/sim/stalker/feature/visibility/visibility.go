// Package visibility decides, per render frame, whether the agent is drawn
// and which appearance it wears. Nothing here writes simulation state.
package visibility

import (
	"stalkercraft.ai/internal/sim/stalker/kernel/model"
	"stalkercraft.ai/internal/sim/stalker/logic/mathx"
)

const (
	DayLength  = 24000
	NightStart = 13000
	NightEnd   = 23000
	MinLight   = 7

	SkinPeriod   = 3600
	MirrorRadius = 64
)

const (
	SkinSteve    = "steve"
	SkinAlex     = "alex"
	SkinVillager = "villager"
)

var fixedSkins = [...]string{SkinSteve, SkinAlex, SkinVillager}

// IsNight reports whether tod falls strictly inside the night window.
func IsNight(tod int64) bool {
	t := mathx.Mod64(tod, DayLength)
	return t > NightStart && t < NightEnd
}

// EffectiveLight is block light, widened by sky light outside the night window.
func EffectiveLight(l model.Light, night bool) int {
	if night || l.Sky <= l.Block {
		return l.Block
	}
	return l.Sky
}

func Visible(l model.Light, tod int64) bool {
	return EffectiveLight(l, IsNight(tod)) >= MinLight
}

// SkinIndex cycles 0..3 every SkinPeriod ticks of game time.
func SkinIndex(gameTime int64) int {
	return int(mathx.Mod64(gameTime/SkinPeriod, int64(len(fixedSkins)+1)))
}

// Appearance resolves the skin for gameTime. The last slot mirrors the
// nearest live player within MirrorRadius of pos.
func Appearance(world model.WorldQuery, pos model.Vec3, gameTime int64) string {
	idx := SkinIndex(gameTime)
	if idx < len(fixedSkins) {
		return fixedSkins[idx]
	}
	if ref, ok := world.NearestSubject(pos, MirrorRadius, model.CategoryPlayer); ok && model.IsLive(ref) && ref.Skin() != "" {
		return ref.Skin()
	}
	return SkinSteve
}

type Frame struct {
	Visible bool
	Skin    string
	Light   int
}

// Evaluate computes the presentation state of an agent standing at pos.
func Evaluate(world model.WorldQuery, pos model.Vec3, gameTime int64) Frame {
	l := world.LightLevels(pos.Cell())
	night := IsNight(world.TimeOfDay())
	eff := EffectiveLight(l, night)
	return Frame{
		Visible: eff >= MinLight,
		Skin:    Appearance(world, pos, gameTime),
		Light:   eff,
	}
}
