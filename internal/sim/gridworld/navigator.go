package gridworld

import "stalkercraft.ai/internal/sim/stalker/kernel/model"

const (
	detourDepth = 12
	// stuckAfter is how many blocked steps in a row make the walker report stuck.
	stuckAfter = 20
	arriveDist = 1
)

// Navigator walks its body one column at a time toward a target, at a rate
// of speed cells per tick. It implements model.Navigator.
type Navigator struct {
	w    *World
	body *Body

	target   model.Vec3
	speed    float64
	active   bool
	progress float64
	blocked  int
}

func (n *Navigator) MoveTo(target model.Vec3, speed float64) bool {
	n.target = target
	n.speed = speed
	n.active = true
	return true
}

func (n *Navigator) Stop() {
	n.active = false
	n.progress = 0
}

func (n *Navigator) InProgress() bool { return n.active }
func (n *Navigator) Done() bool       { return !n.active }
func (n *Navigator) Stuck() bool      { return n.active && n.blocked >= stuckAfter }

// Target returns the last requested destination.
func (n *Navigator) Target() model.Vec3 { return n.target }

func (n *Navigator) step() {
	if !n.active {
		return
	}
	e := n.body.ent
	goal := n.target.Cell()
	cur := e.pos.Cell()
	if distXZ(cur, goal) <= arriveDist {
		n.active = false
		n.blocked = 0
		return
	}

	n.progress += n.speed
	for n.progress >= 1 {
		n.progress--
		next, ok := DetourStep(cur, goal, detourDepth, n.w.stepFrom)
		if !ok {
			n.blocked++
			n.progress = 0
			return
		}
		n.blocked = 0
		n.body.facing = model.FacingToward(cur.Center(), next.Center())
		e.pos = next.Center()
		cur = next
		if distXZ(cur, goal) <= arriveDist {
			n.active = false
			return
		}
	}
}
