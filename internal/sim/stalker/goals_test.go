package stalker

import (
	"reflect"
	"testing"
)

type probe struct {
	usable bool
	log    *[]string
	name   string
}

func (p *probe) behavior(kind Kind, prio int, flags Flag) *behavior {
	return &behavior{
		kind:        kind,
		priority:    prio,
		flags:       flags,
		canActivate: func() bool { return p.usable },
		onActivate:  func() { *p.log = append(*p.log, "start "+p.name) },
		onStop:      func() { *p.log = append(*p.log, "stop "+p.name) },
	}
}

func TestArbiterPreemptsLowerPriorityOnSharedFlags(t *testing.T) {
	var log []string
	hi := &probe{name: "hi", log: &log}
	lo := &probe{name: "lo", log: &log, usable: true}
	jump := &probe{name: "jump", log: &log, usable: true}
	ar := newArbiter(
		hi.behavior(KindFollow, 1, FlagMove|FlagLook),
		lo.behavior(KindMeleeAttack, 6, FlagMove|FlagLook),
		jump.behavior(KindFloat, 7, FlagJump),
	)

	ar.Tick()
	if !reflect.DeepEqual(ar.Active(), []Kind{KindMeleeAttack, KindFloat}) {
		t.Fatalf("active=%v", ar.Active())
	}

	hi.usable = true
	ar.Tick()
	if !reflect.DeepEqual(ar.Active(), []Kind{KindFollow, KindFloat}) {
		t.Fatalf("active=%v", ar.Active())
	}
	want := []string{"start lo", "start jump", "stop lo", "start hi"}
	if !reflect.DeepEqual(log, want) {
		t.Fatalf("log=%v want %v", log, want)
	}

	// Lower priority cannot take the flags back while the higher one runs.
	ar.Tick()
	if ar.Running(KindMeleeAttack) {
		t.Fatalf("lower priority behavior stole flags")
	}

	hi.usable = false
	ar.Tick()
	if ar.Running(KindFollow) || !ar.Running(KindMeleeAttack) {
		t.Fatalf("active=%v", ar.Active())
	}
}

func TestFlaglessBehaviorsRunAlongside(t *testing.T) {
	var log []string
	follow := &probe{name: "follow", log: &log, usable: true}
	door := &probe{name: "door", log: &log, usable: true}
	ar := newArbiter(
		follow.behavior(KindFollow, 1, FlagMove|FlagLook),
		door.behavior(KindBreakDoor, 2, 0),
	)
	ar.Tick()
	if !ar.Running(KindFollow) || !ar.Running(KindBreakDoor) {
		t.Fatalf("active=%v", ar.Active())
	}
	ar.StopAll()
	if len(ar.Active()) != 0 {
		t.Fatalf("active after StopAll=%v", ar.Active())
	}
}

func TestKindString(t *testing.T) {
	if KindOpenGate.String() != "open_gate" || Kind(99).String() != "unknown" {
		t.Fatalf("names")
	}
}
