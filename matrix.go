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

// Package vectorscene turns a PDF-like vector drawing operator stream
// into a compact, GPU-ready VectorScene, and provides the spatial
// index a renderer uses to build a per-frame visible set.
package vectorscene

import (
	"math"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"
)

// strokeMargin is the extra half-width added to a stroke's endpoint
// bound, shared by the packer, the grid, and the per-frame cull so all
// three agree on what "intersects" means for a stroke primitive.
const strokeMargin = 0.35

// minHalfWidth is the floor applied to every stroke's half-width.
const minHalfWidth = 0.2

// mulAffine composes two affine matrices as CTM ← ctm * m, matching the
// PDF convention that newly concatenated matrices act first. Matrix is
// the packed (a,b,c,d,e,f) form from seehuhn.de/go/geom/matrix, where a
// point (x,y) maps to (a·x+c·y+e, b·x+d·y+f).
func mulAffine(ctm, m matrix.Matrix) matrix.Matrix {
	return matrix.Matrix{
		m[0]*ctm[0] + m[1]*ctm[2],
		m[0]*ctm[1] + m[1]*ctm[3],
		m[2]*ctm[0] + m[3]*ctm[2],
		m[2]*ctm[1] + m[3]*ctm[3],
		m[4]*ctm[0] + m[5]*ctm[2] + ctm[4],
		m[4]*ctm[1] + m[5]*ctm[3] + ctm[5],
	}
}

// apply transforms a point from user space to the space defined by m.
func apply(m matrix.Matrix, p vec.Vec2) vec.Vec2 {
	return vec.Vec2{
		X: m[0]*p.X + m[2]*p.Y + m[4],
		Y: m[1]*p.X + m[3]*p.Y + m[5],
	}
}

// scale returns the average axis scale factor of the linear part of m,
// used to convert a user-space line width into a device-space one:
// scale(M) = (|col0| + |col1|) / 2.
func scale(m matrix.Matrix) float64 {
	col0 := math.Hypot(m[0], m[1])
	col1 := math.Hypot(m[2], m[3])
	return (col0 + col1) / 2
}

// finiteMatrix reports whether every component of m is a finite float.
func finiteMatrix(m matrix.Matrix) bool {
	for _, c := range m {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// endpointBounds returns the axis-aligned bound of the segment (x0,y0)-(x1,y1)
// expanded by margin on every side, matching the primitive_bounds
// invariant shared by the packer, the grid, and the visible-set builder.
func endpointBounds(x0, y0, x1, y1, margin float64) rect.Rect {
	minX, maxX := x0, x1
	if minX > maxX {
		minX, maxX = maxX, minX
	}
	minY, maxY := y0, y1
	if minY > maxY {
		minY, maxY = maxY, minY
	}
	return rect.Rect{
		LLx: minX - margin,
		LLy: minY - margin,
		URx: maxX + margin,
		URy: maxY + margin,
	}
}

// unionRect returns the smallest rectangle containing both a and b.
// A zero-value rect.Rect (LLx==URx==LLy==URy==0) is treated as empty
// and does not contribute to the union unless it is the only input.
func unionRect(a, b rect.Rect) rect.Rect {
	if a == (rect.Rect{}) {
		return b
	}
	if b == (rect.Rect{}) {
		return a
	}
	return rect.Rect{
		LLx: math.Min(a.LLx, b.LLx),
		LLy: math.Min(a.LLy, b.LLy),
		URx: math.Max(a.URx, b.URx),
		URy: math.Max(a.URy, b.URy),
	}
}

// intersects reports whether two rectangles overlap (touching at an
// edge does not count as overlap).
func intersects(a, b rect.Rect) bool {
	return a.LLx < b.URx && b.LLx < a.URx && a.LLy < b.URy && b.LLy < a.URy
}

// quantize rounds v to the nearest multiple of 1/step.
func quantize(v float64, step float64) float64 {
	return math.Round(v*step) / step
}

// clampInt restricts v to [lo, hi].
func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// clampFloat restricts v to [lo, hi].
func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
