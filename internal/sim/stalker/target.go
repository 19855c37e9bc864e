package stalker

import (
	"fmt"

	"stalkercraft.ai/internal/sim/stalker/kernel/model"
	"stalkercraft.ai/internal/telemetry"
)

const (
	refreshInterval = 40
	searchRadius    = 512.0
	revertDistance  = 5.0
)

// RefreshTarget re-resolves the primary target when it is missing, dead, or
// the periodic refresh is due. A changed primary also becomes the active
// target. With no subject in range the previous target is kept and
// ErrNoTargetFound is returned.
func RefreshTarget(a *model.Agent, world model.WorldQuery, now uint64) (changed bool, err error) {
	if model.IsLive(a.Primary) && now%refreshInterval != 0 {
		return false, nil
	}
	ref, ok := world.NearestSubject(a.Pos, searchRadius, model.CategoryPlayer)
	if !ok || !model.IsLive(ref) {
		return false, fmt.Errorf("no player within %.0f: %w", searchRadius, model.ErrNoTargetFound)
	}
	if model.SameEntity(ref, a.Primary) {
		a.Primary = ref
		return false, nil
	}
	a.Primary = ref
	a.SetActive(ref)
	a.TransientUntil = 0
	a.Distraction = 0
	return true, nil
}

func (s *Stalker) refreshTarget(now uint64) {
	a := s.agent
	changed, err := RefreshTarget(a, s.world, now)
	if err != nil {
		// A dead handle is dropped so the primary is either nil or live.
		if a.Primary != nil && !a.Primary.Alive() {
			a.Primary = nil
			s.logf("%v", err)
			s.emit(telemetry.KindTargetMissing, nil)
		}
		return
	}
	if changed {
		s.logf("tracking player %d", a.Primary.ID())
		s.emit(telemetry.KindTargetAcquired, map[string]any{"player": int(a.Primary.ID())})
	}
}
