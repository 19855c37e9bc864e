package snapshot

import (
	"bufio"
	"encoding/gob"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"

	"stalkercraft.ai/internal/sim/stalker/kernel/model"
)

const Version = 1

type Header struct {
	Version int    `json:"version"`
	RunID   string `json:"run_id,omitempty"`
	Tick    uint64 `json:"tick"`
}

type SnapshotV1 struct {
	Header Header `json:"header"`

	Seed      int64 `json:"seed"`
	TimeOfDay int64 `json:"time_of_day"`

	Agent AgentV1 `json:"agent"`
}

// AgentV1 is the persisted subset of model.Agent. Entity handles are stored
// by ID and re-resolved against the live world on restore.
type AgentV1 struct {
	ID       model.EntityID   `json:"id"`
	Pos      model.Vec3       `json:"pos"`
	Facing   model.Direction  `json:"facing"`
	Health   float64          `json:"health"`
	Attrs    model.Attributes `json:"attrs"`
	Primary  model.EntityID   `json:"primary,omitempty"`
	Active   model.EntityID   `json:"active,omitempty"`
	Until    uint64           `json:"transient_until,omitempty"`
	Distract int              `json:"distraction,omitempty"`

	Stuck     model.StuckState `json:"stuck"`
	Cooldowns model.Cooldowns  `json:"cooldowns"`
}

var ErrVersion = errors.New("snapshot: unsupported version")

// Capture copies the persistable parts of a into a snapshot taken at tick.
func Capture(a *model.Agent, tick uint64, seed, timeOfDay int64) SnapshotV1 {
	snap := SnapshotV1{
		Header:    Header{Version: Version, Tick: tick},
		Seed:      seed,
		TimeOfDay: timeOfDay,
		Agent: AgentV1{
			ID:        a.ID,
			Pos:       a.Pos,
			Facing:    a.Facing,
			Health:    a.Health,
			Attrs:     a.Attrs,
			Until:     a.TransientUntil,
			Distract:  a.Distraction,
			Stuck:     a.Stuck,
			Cooldowns: a.Cooldowns,
		},
	}
	if a.Primary != nil {
		snap.Agent.Primary = a.Primary.ID()
	}
	if a.Active != nil {
		snap.Agent.Active = a.Active.ID()
	}
	return snap
}

// Lookup resolves a persisted entity ID against the live world.
type Lookup func(id model.EntityID) (model.EntityRef, bool)

// Restore writes snap back into a. Targets that are gone or dead are dropped;
// an active target that cannot be resolved falls back to the primary.
func Restore(a *model.Agent, snap SnapshotV1, lookup Lookup) error {
	if snap.Header.Version != Version {
		return fmt.Errorf("%w: %d", ErrVersion, snap.Header.Version)
	}
	s := snap.Agent
	a.Pos = s.Pos
	a.Facing = s.Facing
	a.Health = s.Health
	a.Attrs = s.Attrs
	a.Distraction = s.Distract
	a.Stuck = s.Stuck
	a.Cooldowns = s.Cooldowns

	a.Primary, a.Active, a.TransientUntil = nil, nil, 0
	if ref, ok := resolve(lookup, s.Primary); ok {
		a.Primary = ref
	}
	if ref, ok := resolve(lookup, s.Active); ok && !model.SameEntity(ref, a.Primary) {
		a.SetTransient(ref, s.Until)
	} else {
		a.Active = a.Primary
	}
	return nil
}

func resolve(lookup Lookup, id model.EntityID) (model.EntityRef, bool) {
	if id == 0 || lookup == nil {
		return nil, false
	}
	ref, ok := lookup(id)
	if !ok || !model.IsLive(ref) {
		return nil, false
	}
	return ref, true
}

func WriteSnapshot(path string, snap SnapshotV1) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	bw := bufio.NewWriterSize(enc, 64*1024)

	hb, _ := json.Marshal(snap.Header)
	if _, err := bw.Write(hb); err != nil {
		_ = enc.Close()
		return err
	}
	if err := bw.WriteByte('\n'); err != nil {
		_ = enc.Close()
		return err
	}
	if err := gob.NewEncoder(bw).Encode(&snap); err != nil {
		_ = enc.Close()
		return fmt.Errorf("gob encode: %w", err)
	}
	if err := bw.Flush(); err != nil {
		_ = enc.Close()
		return err
	}
	if err := enc.Close(); err != nil {
		return err
	}
	return f.Close()
}

// ReadHeader decodes only the JSON header line.
func ReadHeader(path string) (Header, error) {
	var h Header
	f, err := os.Open(path)
	if err != nil {
		return h, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return h, err
	}
	defer dec.Close()

	line, err := bufio.NewReader(dec).ReadBytes('\n')
	if err != nil {
		return h, fmt.Errorf("read header: %w", err)
	}
	if err := json.Unmarshal(line, &h); err != nil {
		return h, fmt.Errorf("parse header: %w", err)
	}
	return h, nil
}

func ReadSnapshot(path string) (SnapshotV1, error) {
	var snap SnapshotV1
	f, err := os.Open(path)
	if err != nil {
		return snap, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return snap, err
	}
	defer dec.Close()

	br := bufio.NewReaderSize(dec, 64*1024)

	// The header line is repeated inside the gob body.
	if _, err := br.ReadBytes('\n'); err != nil {
		return snap, fmt.Errorf("read header: %w", err)
	}
	if err := gob.NewDecoder(br).Decode(&snap); err != nil {
		return snap, fmt.Errorf("gob decode: %w", err)
	}
	return snap, nil
}
