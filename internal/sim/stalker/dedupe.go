package stalker

import (
	"math"
	"sort"

	"stalkercraft.ai/internal/sim/stalker/kernel/model"
)

var everywhere = model.AABB{
	Min: model.Vec3{X: math.Inf(-1), Y: math.Inf(-1), Z: math.Inf(-1)},
	Max: model.Vec3{X: math.Inf(1), Y: math.Inf(1), Z: math.Inf(1)},
}

// Dedupe enforces a single stalker per world: the one with the smallest ID
// is kept and every other live stalker, self included, is discarded. It is
// safe to run from every instance; once one pass completes, later passes
// find nothing to remove.
func Dedupe(world model.WorldQuery, fx model.Effects, self *model.Agent) (kept bool, removed []model.EntityID) {
	ids := map[model.EntityID]bool{self.ID: true}
	for _, e := range world.EntitiesInRegion(everywhere, func(e model.EntityRef) bool {
		return e.Category() == model.CategoryStalker && e.Alive()
	}) {
		ids[e.ID()] = true
	}
	if len(ids) == 1 {
		return true, nil
	}

	sorted := make([]model.EntityID, 0, len(ids))
	for id := range ids {
		sorted = append(sorted, id)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	keep := sorted[0]
	for _, id := range sorted[1:] {
		fx.Discard(id)
		removed = append(removed, id)
	}
	return self.ID == keep, removed
}
