// seehuhn.de/go/vectorscene - a vector scene extraction and compaction pipeline
// Copyright (C) 2026  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package vectorscene

import "seehuhn.de/go/geom/vec"

// defaultFlatness is the maximum perpendicular deviation, in world
// units, between a curve and its flattened polyline approximation.
const defaultFlatness = 0.35

// maxCurveSplitDepth is the hard recursion depth limit for adaptive
// curve subdivision.
const maxCurveSplitDepth = 9

// flattener converts cubic and quadratic Bezier curves into polylines
// using adaptive de Casteljau subdivision, bounded by a perpendicular
// deviation tolerance and a maximum split depth. Besides its tunables a
// flattener holds only a scratch stack that is reset on every call, so
// one instance serves every path of a page's interpreter — following
// the teacher's "create once, reuse" Rasterizer discipline.
type flattener struct {
	flatness float64 // world-space tolerance
	maxDepth int      // recursion depth cap

	// stack is reused across calls (never shrinks) to avoid per-curve
	// allocation; curveFrame is small enough that growth is rare.
	stack []curveFrame
}

// curveFrame is one pending cubic segment awaiting a flatness decision.
type curveFrame struct {
	p0, p1, p2, p3 vec.Vec2
	depth          int
}

func newFlattener() *flattener {
	return newFlattenerWithConfig(defaultFlatness, maxCurveSplitDepth)
}

// newFlattenerWithConfig returns a flattener tuned to the given
// tolerance and depth cap, for callers driven by Config's
// curve_flatness / max_curve_split_depth fields.
func newFlattenerWithConfig(flatness float64, maxDepth int) *flattener {
	return &flattener{
		flatness: flatness,
		maxDepth: maxDepth,
	}
}

// flattenCubic emits, via emit, the chord endpoints of a polyline
// approximating the cubic Bezier p0-p1-p2-p3 to within f.flatness
// perpendicular world-space units. emit is called once per chord, in
// left-to-right (parameter-increasing) order, with (from, to) pairs
// that exactly chain: the "to" of one call equals the "from" of the
// next.
func (f *flattener) flattenCubic(p0, p1, p2, p3 vec.Vec2, emit func(from, to vec.Vec2)) {
	f.stack = f.stack[:0]
	f.stack = append(f.stack, curveFrame{p0, p1, p2, p3, 0})

	tol2 := f.flatness * f.flatness

	for len(f.stack) > 0 {
		top := f.stack[len(f.stack)-1]
		f.stack = f.stack[:len(f.stack)-1]

		if top.depth >= f.maxDepth || cubicFlat(top.p0, top.p1, top.p2, top.p3, tol2) {
			emit(top.p0, top.p3)
			continue
		}

		left, right := splitCubic(top.p0, top.p1, top.p2, top.p3)
		// Push right first so left is popped (and thus processed) next,
		// preserving left-to-right emission order.
		f.stack = append(f.stack, curveFrame{right.p0, right.p1, right.p2, right.p3, top.depth + 1})
		f.stack = append(f.stack, curveFrame{left.p0, left.p1, left.p2, left.p3, top.depth + 1})
	}
}

// flattenQuadratic elevates the quadratic Bezier p0-p1-p2 to a cubic
// and flattens that, per §4.2's degree-elevation rule:
// P1' = P0 + 2/3(P1-P0), P2' = P2 + 2/3(P1-P2) (with the curve's
// endpoint relabelled p3 to match the cubic's four-point form).
func (f *flattener) flattenQuadratic(p0, p1, p2 vec.Vec2, emit func(from, to vec.Vec2)) {
	c1 := p0.Add(p1.Sub(p0).Mul(2.0 / 3.0))
	c2 := p2.Add(p1.Sub(p2).Mul(2.0 / 3.0))
	f.flattenCubic(p0, c1, c2, p2, emit)
}

// cubicSplit holds the two cubic halves produced by bisecting a curve
// at its midpoint parameter, t=0.5.
type cubicSplit struct {
	p0, p1, p2, p3 vec.Vec2
}

// splitCubic bisects the cubic p0-p1-p2-p3 at t=0.5 using de Casteljau
// midpoint subdivision.
func splitCubic(p0, p1, p2, p3 vec.Vec2) (left, right cubicSplit) {
	p01 := mid(p0, p1)
	p12 := mid(p1, p2)
	p23 := mid(p2, p3)
	p012 := mid(p01, p12)
	p123 := mid(p12, p23)
	p0123 := mid(p012, p123)

	left = cubicSplit{p0, p01, p012, p0123}
	right = cubicSplit{p0123, p123, p23, p3}
	return left, right
}

func mid(a, b vec.Vec2) vec.Vec2 {
	return vec.Vec2{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2}
}

// cubicFlat reports whether the cubic p0-p1-p2-p3 is within tol2
// (flatness squared) of its chord, using the perpendicular-deviation
// formula of §4.2: d_i² = ((Pi-P0) × (P3-P0))² / L², taking the chord
// to have zero length as a degenerate case that falls back to raw
// control-point offsets.
func cubicFlat(p0, p1, p2, p3 vec.Vec2, tol2 float64) bool {
	chord := p3.Sub(p0)
	l2 := chord.Dot(chord)

	if l2 < 1e-12 {
		// Degenerate chord: P0 == P3. Deviation is just how far the
		// control points have wandered from that shared point.
		d1 := p1.Sub(p0)
		d2 := p2.Sub(p0)
		return d1.Dot(d1) <= tol2 && d2.Dot(d2) <= tol2
	}

	d1 := cross(p1.Sub(p0), chord)
	d2 := cross(p2.Sub(p0), chord)
	d1sq := d1 * d1 / l2
	d2sq := d2 * d2 / l2

	return d1sq <= tol2 && d2sq <= tol2
}

// cross returns the z-component of the 2D cross product a × b.
func cross(a, b vec.Vec2) float64 {
	return a.X*b.Y - a.Y*b.X
}
