package gridworld

import (
	"stalkercraft.ai/internal/sim/stalker/kernel/model"
	"stalkercraft.ai/internal/sim/stalker/logic/mathx"
)

func distXZ(a, b model.Vec3i) int {
	return mathx.AbsInt(a.X-b.X) + mathx.AbsInt(a.Z-b.Z)
}

// Fixed neighbour order keeps walks deterministic.
var detourDirs = [...]model.Direction{model.East, model.West, model.South, model.North}

// stepFunc resolves the standing cell reached by moving one column in dir
// from p, climbing or dropping at most one cell.
type stepFunc func(p model.Vec3i, dir model.Direction) (model.Vec3i, bool)

// DetourStep searches breadth-first, up to maxDepth steps, for a walk from
// start that ends strictly closer (Manhattan, XZ) to target. It returns the
// first step of the best such walk: shortest distance, then fewest steps,
// then neighbour order.
func DetourStep(start, target model.Vec3i, maxDepth int, step stepFunc) (model.Vec3i, bool) {
	if maxDepth <= 0 {
		return model.Vec3i{}, false
	}
	type item struct {
		p     model.Vec3i
		depth int
		first model.Vec3i
	}
	key := func(p model.Vec3i) [2]int { return [2]int{p.X, p.Z} }

	startDist := distXZ(start, target)
	visited := map[[2]int]bool{key(start): true}
	var queue []item
	for _, d := range detourDirs {
		np, ok := step(start, d)
		if !ok || visited[key(np)] {
			continue
		}
		visited[key(np)] = true
		queue = append(queue, item{p: np, depth: 1, first: np})
	}

	var (
		best     item
		bestDist = startDist
		found    bool
	)
	for head := 0; head < len(queue); head++ {
		it := queue[head]
		if d := distXZ(it.p, target); d < startDist && (!found || d < bestDist || (d == bestDist && it.depth < best.depth)) {
			best, bestDist, found = it, d, true
		}
		if it.depth >= maxDepth {
			continue
		}
		for _, d := range detourDirs {
			np, ok := step(it.p, d)
			if !ok || visited[key(np)] {
				continue
			}
			visited[key(np)] = true
			queue = append(queue, item{p: np, depth: it.depth + 1, first: it.first})
		}
	}
	if !found {
		return model.Vec3i{}, false
	}
	return best.first, true
}

// stepFrom is the world's stepFunc.
func (w *World) stepFrom(p model.Vec3i, dir model.Direction) (model.Vec3i, bool) {
	n := p.Relative(dir)
	for _, dy := range [...]int{0, 1, -1} {
		c := n.Add(0, dy, 0)
		if dy == 1 && w.BlockState(p.Add(0, 2, 0)).Solid {
			continue
		}
		if w.walkable(c) {
			return c, true
		}
	}
	return model.Vec3i{}, false
}
