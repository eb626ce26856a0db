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

import "math"

// gridTargetCellMin and gridTargetCellMax bound the target cell
// count T before it is split into gw/gh.
const (
	gridTargetCellMin = 30000
	gridTargetCellMax = 220000
	gridSideMin        = 64
	gridSideMax        = 1024
)

// Grid is the uniform-cell spatial index of §4.6, derived once from a
// built VectorScene and read-only for that scene's lifetime.
type Grid struct {
	GW, GH       int
	MinX, MinY   float64
	CellW, CellH float64

	// Offsets has length GW*GH+1; cell c's members are
	// Indices[Offsets[c]:Offsets[c+1]].
	Offsets []int32
	Indices []int32

	MaxCellPopulation int
}

// BuildGrid constructs the spatial grid over scene's stroke
// primitive_bounds. It never mutates scene.
func BuildGrid(scene *VectorScene) *Grid {
	n := scene.StrokeCount

	width := scene.Bounds.URx - scene.Bounds.LLx
	height := scene.Bounds.URy - scene.Bounds.LLy
	if width <= 0 {
		width = 1
	}
	if height <= 0 {
		height = 1
	}
	aspect := width / height

	target := clampInt(int(math.Round(float64(n)/8)), gridTargetCellMin, gridTargetCellMax)
	gw := clampInt(int(math.Round(math.Sqrt(float64(target)*aspect))), gridSideMin, gridSideMax)
	gh := clampInt(int(math.Round(float64(target)/float64(gw))), gridSideMin, gridSideMax)

	g := &Grid{
		GW:    gw,
		GH:    gh,
		MinX:  scene.Bounds.LLx,
		MinY:  scene.Bounds.LLy,
		CellW: width / float64(gw),
		CellH: height / float64(gh),
	}

	cellCount := gw * gh
	counts := make([]int32, cellCount)

	cellRange := func(i int) (c0, c1, r0, r1 int) {
		b := boundsAt(scene, i)
		c0 = clampInt(int(math.Floor((b.LLx-g.MinX)/g.CellW)), 0, gw-1)
		c1 = clampInt(int(math.Floor((b.URx-g.MinX)/g.CellW)), 0, gw-1)
		r0 = clampInt(int(math.Floor((b.LLy-g.MinY)/g.CellH)), 0, gh-1)
		r1 = clampInt(int(math.Floor((b.URy-g.MinY)/g.CellH)), 0, gh-1)
		return
	}

	for i := 0; i < n; i++ {
		c0, c1, r0, r1 := cellRange(i)
		for row := r0; row <= r1; row++ {
			base := row * gw
			for col := c0; col <= c1; col++ {
				counts[base+col]++
			}
		}
	}

	offsets := make([]int32, cellCount+1)
	var maxPop int32
	for c := 0; c < cellCount; c++ {
		offsets[c+1] = offsets[c] + counts[c]
		if counts[c] > maxPop {
			maxPop = counts[c]
		}
	}
	g.MaxCellPopulation = int(maxPop)

	indices := make([]int32, offsets[cellCount])
	cursor := make([]int32, cellCount)
	for i := 0; i < n; i++ {
		c0, c1, r0, r1 := cellRange(i)
		for row := r0; row <= r1; row++ {
			base := row * gw
			for col := c0; col <= c1; col++ {
				cell := base + col
				pos := offsets[cell] + cursor[cell]
				indices[pos] = int32(i)
				cursor[cell]++
			}
		}
	}

	g.Offsets = offsets
	g.Indices = indices
	return g
}

// boundsAt reads stroke i's packed primitive_bounds texel back into a
// boundsRect.
func boundsAt(scene *VectorScene, i int) boundsRect {
	d := scene.StrokePrimitiveBounds.Data[i*4 : i*4+4]
	return boundsRect{LLx: float64(d[0]), LLy: float64(d[1]), URx: float64(d[2]), URy: float64(d[3])}
}

// boundsRect avoids importing rect.Rect just for this float32-sourced
// readback; the fields match rect.Rect's layout.
type boundsRect struct {
	LLx, LLy, URx, URy float64
}
