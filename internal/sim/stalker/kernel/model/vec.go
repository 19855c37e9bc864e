package model

import "math"

// Vec3i is a discrete cell position.
type Vec3i struct {
	X int
	Y int
	Z int
}

func (v Vec3i) ToArray() [3]int { return [3]int{v.X, v.Y, v.Z} }

func (v Vec3i) Add(dx, dy, dz int) Vec3i { return Vec3i{X: v.X + dx, Y: v.Y + dy, Z: v.Z + dz} }
func (v Vec3i) Above() Vec3i             { return v.Add(0, 1, 0) }
func (v Vec3i) Below() Vec3i             { return v.Add(0, -1, 0) }

// Center returns the continuous position of the cell centre with feet at floor level.
func (v Vec3i) Center() Vec3 {
	return Vec3{X: float64(v.X) + 0.5, Y: float64(v.Y), Z: float64(v.Z) + 0.5}
}

// DistSqXZ is the squared horizontal distance between two cells.
func (v Vec3i) DistSqXZ(o Vec3i) int {
	dx := v.X - o.X
	dz := v.Z - o.Z
	return dx*dx + dz*dz
}

// Vec3 is a continuous world position or direction.
type Vec3 struct {
	X float64
	Y float64
	Z float64
}

func (v Vec3) Sub(o Vec3) Vec3       { return Vec3{X: v.X - o.X, Y: v.Y - o.Y, Z: v.Z - o.Z} }
func (v Vec3) Dot(o Vec3) float64    { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }
func (v Vec3) LenSq() float64        { return v.Dot(v) }
func (v Vec3) Len() float64          { return math.Sqrt(v.LenSq()) }
func (v Vec3) DistSq(o Vec3) float64 { return v.Sub(o).LenSq() }
func (v Vec3) Dist(o Vec3) float64   { return v.Sub(o).Len() }

// Normalize returns the unit vector, or the zero vector for (near) zero input.
func (v Vec3) Normalize() Vec3 {
	l := v.Len()
	if l < 1e-4 {
		return Vec3{}
	}
	return Vec3{X: v.X / l, Y: v.Y / l, Z: v.Z / l}
}

// Cell returns the cell containing v.
func (v Vec3) Cell() Vec3i {
	return Vec3i{X: int(math.Floor(v.X)), Y: int(math.Floor(v.Y)), Z: int(math.Floor(v.Z))}
}

// Direction is a horizontal facing.
type Direction int

const (
	South Direction = iota // +Z
	West                   // -X
	North                  // -Z
	East                   // +X
)

func (d Direction) Offset() (dx, dz int) {
	switch d {
	case South:
		return 0, 1
	case West:
		return -1, 0
	case North:
		return 0, -1
	case East:
		return 1, 0
	default:
		return 0, 0
	}
}

// Relative returns the neighbouring cell in direction d.
func (v Vec3i) Relative(d Direction) Vec3i {
	dx, dz := d.Offset()
	return v.Add(dx, 0, dz)
}

// FacingToward picks the horizontal direction that best points from one position to another.
func FacingToward(from, to Vec3) Direction {
	dx := to.X - from.X
	dz := to.Z - from.Z
	if math.Abs(dx) > math.Abs(dz) {
		if dx > 0 {
			return East
		}
		return West
	}
	if dz < 0 {
		return North
	}
	return South
}

// AABB is an axis-aligned box in continuous coordinates.
type AABB struct {
	Min Vec3
	Max Vec3
}

// BoxAround returns the box of half-extent r centred on p.
func BoxAround(p Vec3, r float64) AABB {
	return AABB{
		Min: Vec3{X: p.X - r, Y: p.Y - r, Z: p.Z - r},
		Max: Vec3{X: p.X + r, Y: p.Y + r, Z: p.Z + r},
	}
}

func (b AABB) Contains(p Vec3) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}
