package visibility

import (
	"testing"

	"stalkercraft.ai/internal/sim/stalker/kernel/model"
)

func TestVisible(t *testing.T) {
	const day, night = 6000, 18000
	cases := []struct {
		name string
		l    model.Light
		tod  int64
		want bool
	}{
		{"sky lit by day", model.Light{Block: 0, Sky: 10}, day, true},
		{"sky ignored at night", model.Light{Block: 0, Sky: 10}, night, false},
		{"torch at night", model.Light{Block: 8, Sky: 0}, night, true},
		{"dim torch", model.Light{Block: 6, Sky: 6}, day, false},
		{"night start is still day", model.Light{Sky: 15}, NightStart, true},
		{"night end is day", model.Light{Sky: 15}, NightEnd, true},
		{"next day night", model.Light{Sky: 15}, DayLength + night, false},
	}
	for _, tc := range cases {
		if got := Visible(tc.l, tc.tod); got != tc.want {
			t.Fatalf("%s: Visible=%v want %v", tc.name, got, tc.want)
		}
	}
}

func TestSkinIndexCycles(t *testing.T) {
	want := []int{0, 0, 1, 2, 3, 0}
	for i, gt := range []int64{0, 3599, 3600, 7200, 10800, 14400} {
		if got := SkinIndex(gt); got != want[i] {
			t.Fatalf("SkinIndex(%d)=%d want %d", gt, got, want[i])
		}
	}
}

type player struct{ skin string }

func (p player) ID() model.EntityID       { return 7 }
func (p player) Category() model.Category { return model.CategoryPlayer }
func (p player) Pos() model.Vec3          { return model.Vec3{} }
func (p player) Alive() bool              { return true }
func (p player) Living() bool             { return true }
func (p player) Sleeping() bool           { return false }
func (p player) Skin() string             { return p.skin }

type world struct {
	model.WorldQuery
	near  model.EntityRef
	light model.Light
	tod   int64
}

func (w world) NearestSubject(model.Vec3, float64, model.Category) (model.EntityRef, bool) {
	return w.near, w.near != nil
}
func (w world) LightLevels(model.Vec3i) model.Light { return w.light }
func (w world) TimeOfDay() int64                    { return w.tod }

func TestAppearanceMirrorsNearestPlayer(t *testing.T) {
	w := world{near: player{skin: "alice"}}
	if got := Appearance(w, model.Vec3{}, 3*SkinPeriod); got != "alice" {
		t.Fatalf("mirror skin=%q", got)
	}
	if got := Appearance(world{}, model.Vec3{}, 3*SkinPeriod); got != SkinSteve {
		t.Fatalf("default skin=%q", got)
	}
	if got := Appearance(w, model.Vec3{}, SkinPeriod); got != SkinAlex {
		t.Fatalf("fixed skin=%q", got)
	}
}

func TestEvaluateFrame(t *testing.T) {
	w := world{light: model.Light{Block: 2, Sky: 12}, tod: 14000}
	f := Evaluate(w, model.Vec3{X: 1, Y: 64, Z: 1}, 0)
	if f.Visible || f.Light != 2 || f.Skin != SkinSteve {
		t.Fatalf("frame=%+v", f)
	}
	w.tod = 1000
	if f = Evaluate(w, model.Vec3{}, 0); !f.Visible || f.Light != 12 {
		t.Fatalf("frame=%+v", f)
	}
}
