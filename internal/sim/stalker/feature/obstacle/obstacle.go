package obstacle

import (
	"fmt"
	"strings"

	"stalkercraft.ai/internal/sim/stalker/kernel/model"
	"stalkercraft.ai/internal/sim/stalker/logic/cooldown"
)

const (
	BreakCooldown     = 20
	DoorBreakCooldown = 60
)

var markers = []string{"barrier", "torch", "candle"}

func path(id string) string {
	if i := strings.IndexByte(id, ':'); i >= 0 {
		return id[i+1:]
	}
	return id
}

// Check returns nil when bs may be destroyed under the given hardness ceiling.
func Check(bs model.BlockState, ceiling float64) error {
	if bs.Hardness > 0 && bs.Hardness < ceiling {
		return nil
	}
	switch bs.Category {
	case model.BlockGate, model.BlockDoor, model.BlockTrapdoor, model.BlockWall:
		return nil
	}
	p := path(bs.ID)
	for _, m := range markers {
		if strings.Contains(p, m) {
			return nil
		}
	}
	return fmt.Errorf("obstacle %q (hardness %.2f): %w", bs.ID, bs.Hardness, model.ErrInvalidObstacle)
}

func empty(bs model.BlockState) bool {
	return bs.ID == "" || strings.HasSuffix(path(bs.ID), "air")
}

// BreakInFront destroys the cell directly ahead of the agent when it is a
// breakable obstacle and the global break cooldown has elapsed. An empty cell
// yields no error; an unbreakable one yields ErrInvalidObstacle.
func BreakInFront(a *model.Agent, world model.WorldQuery, fx model.Effects, ceiling float64, now uint64) (model.Vec3i, bool, error) {
	if !cooldown.Elapsed(now, a.Cooldowns.BlockBreak, BreakCooldown) {
		return model.Vec3i{}, false, nil
	}
	cell := a.Cell().Relative(a.Facing)
	bs := world.BlockState(cell)
	if empty(bs) {
		return cell, false, nil
	}
	if err := Check(bs, ceiling); err != nil {
		return cell, false, err
	}
	fx.DestroyBlock(cell)
	a.Cooldowns.BlockBreak = now
	return cell, true, nil
}

// FindClosed scans the agent's footprint and its 3x3x2 neighbourhood for a
// closed block of category cat.
func FindClosed(world model.WorldQuery, origin model.Vec3i, cat model.BlockCategory) (model.Vec3i, bool) {
	for dy := 0; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			for dz := -1; dz <= 1; dz++ {
				c := origin.Add(dx, dy, dz)
				bs := world.BlockState(c)
				if bs.Category == cat && !bs.Open {
					return c, true
				}
			}
		}
	}
	return model.Vec3i{}, false
}
