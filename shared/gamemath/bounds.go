package gamemath

import "github.com/yohamta/donburi/features/math"

// Bounds is an axis-aligned box that starts empty and grows to include the
// points folded into it.
type Bounds struct {
	Min, Max math.Vec2
	Valid    bool // false while no point has been added
}

// Extend grows b to include p.
func (b Bounds) Extend(p math.Vec2) Bounds {
	if !b.Valid {
		return Bounds{Min: p, Max: p, Valid: true}
	}
	b.Min.X = min(b.Min.X, p.X)
	b.Min.Y = min(b.Min.Y, p.Y)
	b.Max.X = max(b.Max.X, p.X)
	b.Max.Y = max(b.Max.Y, p.Y)
	return b
}

// Pad moves Min down and Max up by margin on each axis. Empty bounds stay
// empty.
func (b Bounds) Pad(margin math.Vec2) Bounds {
	if !b.Valid {
		return b
	}
	b.Min.X -= margin.X
	b.Min.Y -= margin.Y
	b.Max.X += margin.X
	b.Max.Y += margin.Y
	return b
}

// Contains reports whether p lies inside b, edges included. Empty bounds
// contain nothing.
func (b Bounds) Contains(p math.Vec2) bool {
	return b.Valid &&
		p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y
}

// Center returns the middle of b.
func (b Bounds) Center() math.Vec2 {
	return math.Vec2{X: (b.Min.X + b.Max.X) / 2, Y: (b.Min.Y + b.Max.Y) / 2}
}
