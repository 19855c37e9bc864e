// Package telemetry carries structured agent events to pluggable sinks.
package telemetry

import (
	"errors"
	"sync"

	"github.com/google/uuid"
)

type Kind string

const (
	KindSpawned        Kind = "spawned"
	KindDeduplicated   Kind = "deduplicated"
	KindTargetAcquired Kind = "target_acquired"
	KindTargetMissing  Kind = "target_missing"
	KindStuck          Kind = "stuck"
	KindRespawned      Kind = "respawned"
	KindRespawnFailed  Kind = "respawn_failed"
	KindBlockBroken    Kind = "block_broken"
	KindDoorBroken     Kind = "door_broken"
	KindGateBroken     Kind = "gate_broken"
	KindOpened         Kind = "opened"
	KindAttack         Kind = "attack"
	KindDamaged        Kind = "damaged"
	KindDistracted     Kind = "distracted"
	KindWake           Kind = "wake"
	KindRemoved        Kind = "removed"
)

// Event is one structured record. Pos is the agent position when it was emitted.
type Event struct {
	ID     string         `json:"id"`
	Tick   uint64         `json:"tick"`
	Kind   Kind           `json:"kind"`
	Agent  int            `json:"agent"`
	Pos    [3]float64     `json:"pos"`
	Detail map[string]any `json:"detail,omitempty"`
}

func NewEvent(tick uint64, kind Kind, agent int, pos [3]float64, detail map[string]any) Event {
	return Event{
		ID:     uuid.NewString(),
		Tick:   tick,
		Kind:   kind,
		Agent:  agent,
		Pos:    pos,
		Detail: detail,
	}
}

// Sink receives events on the simulation thread. Implementations must not block.
type Sink interface {
	Emit(e Event) error
}

// Multi fans an event out to every sink and joins their errors.
type Multi []Sink

func (m Multi) Emit(e Event) error {
	var errs []error
	for _, s := range m {
		if s == nil {
			continue
		}
		if err := s.Emit(e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Discard drops every event.
type Discard struct{}

func (Discard) Emit(Event) error { return nil }

// Recorder keeps events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Emit(e Event) error {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
	return nil
}

func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Count returns how many events of kind were recorded.
func (r *Recorder) Count(kind Kind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.Kind == kind {
			n++
		}
	}
	return n
}
