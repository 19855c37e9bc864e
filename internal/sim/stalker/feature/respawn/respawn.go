// Package respawn picks and validates relocation points near the pursued
// subject.
package respawn

import (
	"fmt"
	"math"
	"math/rand"

	"stalkercraft.ai/internal/sim/stalker/kernel/model"
	"stalkercraft.ai/internal/sim/stalker/logic/mathx"
)

const (
	AdjacentChance  = 0.05
	AdjacentRadius  = 2
	ChunkRadius     = 5
	MaxChunks       = 10
	SamplesPerChunk = 10
	FallbackTries   = 50

	// DistanceCheckInterval gates CheckDistance.
	DistanceCheckInterval = 100

	caveSurfaceDepth = 5
	caveFloorMargin  = 5
	ceilingMargin    = 2

	initialMinDist  = 48
	initialDistSpan = 32
)

// Strategy names the search that produced a destination.
type Strategy string

const (
	StrategyAdjacent Strategy = "adjacent"
	StrategyArea     Strategy = "area"
	StrategyFallback Strategy = "fallback"
)

// Planner is not safe for concurrent use; it shares the tick thread's random source.
type Planner struct {
	world   model.WorldQuery
	rng     *rand.Rand
	minDist int
	maxDist int
}

func New(world model.WorldQuery, rng *rand.Rand, minDist, maxDist int) *Planner {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	p := &Planner{world: world, rng: rng}
	p.SetBand(minDist, maxDist)
	return p
}

// SetBand updates the spawn distance band from a fresh config snapshot.
func (p *Planner) SetBand(minDist, maxDist int) {
	if maxDist < minDist {
		minDist, maxDist = maxDist, minDist
	}
	if maxDist < 1 {
		maxDist = 1
	}
	p.minDist, p.maxDist = minDist, maxDist
}

// Spawnable returns the cell of column (x, z) the agent could stand in.
// The surface is preferred; otherwise a covered cave pocket is searched from
// just below the surface down to just above the world floor.
func (p *Planner) Spawnable(x, z int) (model.Vec3i, bool) {
	surface := p.world.HighestSurface(x, z)
	if p.clearStanding(surface) {
		return surface, true
	}

	minY, _ := p.world.Bounds()
	for y := surface.Y - caveSurfaceDepth; y > minY+caveFloorMargin; y-- {
		c := model.Vec3i{X: x, Y: y, Z: z}
		if p.world.CanSeeSky(c) {
			continue
		}
		if p.clearStanding(c) {
			return c, true
		}
	}
	return model.Vec3i{}, false
}

func (p *Planner) clearStanding(c model.Vec3i) bool {
	below := p.world.BlockState(c.Below())
	if !below.Solid || below.Liquid {
		return false
	}
	cell := p.world.BlockState(c)
	if cell.Solid || cell.Liquid {
		return false
	}
	return !p.world.BlockState(c.Above()).Solid
}

// Adjacent collects every spawnable column in the 5x5 square around target,
// excluding the target's own column, and picks one.
func (p *Planner) Adjacent(target model.Vec3) (model.Vec3i, bool) {
	tc := target.Cell()
	var valid []model.Vec3i
	for dx := -AdjacentRadius; dx <= AdjacentRadius; dx++ {
		for dz := -AdjacentRadius; dz <= AdjacentRadius; dz++ {
			if dx == 0 && dz == 0 {
				continue
			}
			if c, ok := p.Spawnable(tc.X+dx, tc.Z+dz); ok {
				valid = append(valid, c)
			}
		}
	}
	if len(valid) == 0 {
		return model.Vec3i{}, false
	}
	return valid[p.rng.Intn(len(valid))], true
}

type chunkPos struct{ cx, cz int }

// Area samples random columns from shuffled chunks within ChunkRadius of the target chunk.
func (p *Planner) Area(target model.Vec3) (model.Vec3i, bool) {
	tc := target.Cell()
	tcx, tcz := mathx.ChunkCoord(tc.X), mathx.ChunkCoord(tc.Z)

	var chunks []chunkPos
	for dx := -ChunkRadius; dx <= ChunkRadius; dx++ {
		for dz := -ChunkRadius; dz <= ChunkRadius; dz++ {
			if dx*dx+dz*dz <= ChunkRadius*ChunkRadius {
				chunks = append(chunks, chunkPos{tcx + dx, tcz + dz})
			}
		}
	}
	p.rng.Shuffle(len(chunks), func(i, j int) { chunks[i], chunks[j] = chunks[j], chunks[i] })
	if len(chunks) > MaxChunks {
		chunks = chunks[:MaxChunks]
	}

	for _, ch := range chunks {
		for i := 0; i < SamplesPerChunk; i++ {
			x := mathx.ChunkOrigin(ch.cx) + p.rng.Intn(mathx.ChunkSize)
			z := mathx.ChunkOrigin(ch.cz) + p.rng.Intn(mathx.ChunkSize)
			if c, ok := p.Spawnable(x, z); ok {
				return c, true
			}
		}
	}
	return model.Vec3i{}, false
}

// Fallback tries uniform columns within the max spawn distance, rejecting
// anything closer than half of it.
func (p *Planner) Fallback(target model.Vec3) (model.Vec3i, bool) {
	tc := target.Cell()
	r := p.maxDist
	minSq := float64(r) * float64(r) / 4
	for i := 0; i < FallbackTries; i++ {
		x := tc.X + p.rng.Intn(2*r) - r
		z := tc.Z + p.rng.Intn(2*r) - r
		dx := float64(x) + 0.5 - target.X
		dz := float64(z) + 0.5 - target.Z
		if dx*dx+dz*dz < minSq {
			continue
		}
		if c, ok := p.Spawnable(x, z); ok {
			return c, true
		}
	}
	return model.Vec3i{}, false
}

// Find runs the strategies in order. The adjacent strategy is only rolled
// when the agent is farther from the target than the minimum spawn distance.
func (p *Planner) Find(agentPos, target model.Vec3) (model.Vec3i, Strategy, error) {
	if agentPos.Dist(target) > float64(p.minDist) && p.rng.Float64() < AdjacentChance {
		if c, ok := p.Adjacent(target); ok {
			return c, StrategyAdjacent, nil
		}
	}
	if c, ok := p.Area(target); ok {
		return c, StrategyArea, nil
	}
	if c, ok := p.Fallback(target); ok {
		return c, StrategyFallback, nil
	}
	return model.Vec3i{}, "", fmt.Errorf("respawn near %v: %w", target.Cell(), model.ErrNoSpawnLocation)
}

// Elevate walks upward from cell until it no longer overlaps solid terrain.
func (p *Planner) Elevate(cell model.Vec3i) model.Vec3i {
	_, maxY := p.world.Bounds()
	for p.world.BlockState(cell).Solid && cell.Y < maxY-ceilingMargin {
		cell = cell.Above()
	}
	return cell
}

// Relocate teleports the agent onto cell and, if it landed inside terrain,
// lifts it clear and teleports again. It returns the final position.
func (p *Planner) Relocate(a *model.Agent, fx model.Effects, cell model.Vec3i) model.Vec3 {
	pos := cell.Center()
	fx.TeleportTo(pos)
	a.Pos = pos
	if lifted := p.Elevate(cell); lifted != cell {
		pos = lifted.Center()
		fx.TeleportTo(pos)
		a.Pos = pos
	}
	return pos
}

// Threshold draws a respawn distance uniformly from [min, max].
func (p *Planner) Threshold() float64 {
	return float64(p.minDist + p.rng.Intn(p.maxDist-p.minDist+1))
}

// TooFar reports whether the agent has drifted past a freshly drawn threshold.
func (p *Planner) TooFar(agentPos, target model.Vec3) bool {
	th := p.Threshold()
	return agentPos.DistSq(target) > th*th
}

// InitialPlacement picks a surface cell 48 to 80 units from the subject in a
// random direction.
func (p *Planner) InitialPlacement(subject model.Vec3) model.Vec3 {
	angle := p.rng.Float64() * 2 * math.Pi
	dist := initialMinDist + p.rng.Float64()*initialDistSpan
	x := int(math.Floor(subject.X + math.Cos(angle)*dist))
	z := int(math.Floor(subject.Z + math.Sin(angle)*dist))
	return p.world.HighestSurface(x, z).Center()
}
