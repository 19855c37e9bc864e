package stalker

// Flag is a control channel a behavior claims while it runs. Behaviors with
// overlapping flags never run at the same time.
type Flag uint8

const (
	FlagMove Flag = 1 << iota
	FlagLook
	FlagJump
)

// Kind tags a behavior variant.
type Kind int

const (
	KindFollow Kind = iota + 1
	KindBreakDoor
	KindBreakGate
	KindOpenDoor
	KindOpenGate
	KindMeleeAttack
	KindFloat
)

func (k Kind) String() string {
	switch k {
	case KindFollow:
		return "follow"
	case KindBreakDoor:
		return "break_door"
	case KindBreakGate:
		return "break_gate"
	case KindOpenDoor:
		return "open_door"
	case KindOpenGate:
		return "open_gate"
	case KindMeleeAttack:
		return "melee_attack"
	case KindFloat:
		return "float"
	default:
		return "unknown"
	}
}

// behavior is one dispatch-table entry. Priority 1 is the highest.
type behavior struct {
	kind     Kind
	priority int
	flags    Flag

	canActivate func() bool
	// canContinue defaults to canActivate when nil.
	canContinue func() bool
	onActivate  func()
	onTick      func()
	onStop      func()

	running bool
}

func (b *behavior) keepRunning() bool {
	if b.canContinue != nil {
		return b.canContinue()
	}
	return b.canActivate()
}

// Arbiter runs the priority-ordered behavior table once per tick.
type Arbiter struct {
	behaviors []*behavior
}

// newArbiter expects behaviors sorted by ascending priority number.
func newArbiter(bs ...*behavior) *Arbiter {
	return &Arbiter{behaviors: bs}
}

// Running reports whether a behavior of kind is active.
func (ar *Arbiter) Running(kind Kind) bool {
	for _, b := range ar.behaviors {
		if b.kind == kind {
			return b.running
		}
	}
	return false
}

// Active lists running behaviors in priority order.
func (ar *Arbiter) Active() []Kind {
	var out []Kind
	for _, b := range ar.behaviors {
		if b.running {
			out = append(out, b.kind)
		}
	}
	return out
}

func (ar *Arbiter) stop(b *behavior) {
	b.running = false
	if b.onStop != nil {
		b.onStop()
	}
}

// StopAll stops every running behavior.
func (ar *Arbiter) StopAll() {
	for _, b := range ar.behaviors {
		if b.running {
			ar.stop(b)
		}
	}
}

// Tick stops behaviors that can no longer continue, starts usable ones whose
// flags are free or held only by lower priorities, then ticks everything running.
func (ar *Arbiter) Tick() {
	for _, b := range ar.behaviors {
		if b.running && !b.keepRunning() {
			ar.stop(b)
		}
	}

	for _, b := range ar.behaviors {
		if b.running || !b.canActivate() {
			continue
		}
		if !ar.claimable(b) {
			continue
		}
		for _, other := range ar.behaviors {
			if other != b && other.running && other.flags&b.flags != 0 {
				ar.stop(other)
			}
		}
		b.running = true
		if b.onActivate != nil {
			b.onActivate()
		}
	}

	for _, b := range ar.behaviors {
		if b.running && b.onTick != nil {
			b.onTick()
		}
	}
}

func (ar *Arbiter) claimable(b *behavior) bool {
	if b.flags == 0 {
		return true
	}
	for _, other := range ar.behaviors {
		if other == b || !other.running || other.flags&b.flags == 0 {
			continue
		}
		if other.priority <= b.priority {
			return false
		}
	}
	return true
}
