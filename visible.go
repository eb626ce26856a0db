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

// allCellsCoverageThreshold is the fraction of the grid's cells a
// view rect must cover, with no interaction active, before the
// visible-set builder skips per-cell work and returns everything.
const allCellsCoverageThreshold = 0.92

// VisibleSetBuilder computes, once per frame, the set of stroke
// indices whose primitive_bounds intersects the current view. It owns
// a mark array and an output buffer sized once at construction and
// never reallocated afterwards, following the teacher's Rasterizer
// discipline of reusing grown-not-rebuilt buffers across calls
// (raster.go's cover/area/edges slices).
type VisibleSetBuilder struct {
	scene *VectorScene
	grid  *Grid

	marks   []uint32
	epoch   uint32
	scratch []int32
}

// NewVisibleSetBuilder returns a builder bound to scene and its grid.
// The mark array and output buffer are sized to scene.StrokeCount and
// never grow afterwards — a VectorScene's arrays are immutable once
// built, so StrokeCount cannot change underneath the builder.
func NewVisibleSetBuilder(scene *VectorScene, grid *Grid) *VisibleSetBuilder {
	return &VisibleSetBuilder{
		scene:   scene,
		grid:    grid,
		marks:   make([]uint32, scene.StrokeCount),
		scratch: make([]int32, scene.StrokeCount),
	}
}

// Build returns the visible stroke indices for a camera centred at
// (cx,cy) with the given zoom and viewport size (in pixels).
// interacting disables the "return everything" escape hatch of §4.7
// step 2, matching §5's requirement that panning/zooming always walk
// the grid rather than over-report visibility.
//
// The returned slice aliases the builder's internal scratch buffer
// and is only valid until the next call to Build.
func (vb *VisibleSetBuilder) Build(cx, cy, zoom, vw, vh float64, interacting bool) []int32 {
	scene, grid := vb.scene, vb.grid

	if scene.StrokeCount == 0 {
		return vb.scratch[:0]
	}

	margin := math.Max(16/zoom, scene.MaxHalfWidth*2)
	minX := cx - vw/(2*zoom) - margin
	maxX := cx + vw/(2*zoom) + margin
	minY := cy - vh/(2*zoom) - margin
	maxY := cy + vh/(2*zoom) + margin

	c0 := clampInt(int(math.Floor((minX-grid.MinX)/grid.CellW)), 0, grid.GW-1)
	c1 := clampInt(int(math.Floor((maxX-grid.MinX)/grid.CellW)), 0, grid.GW-1)
	r0 := clampInt(int(math.Floor((minY-grid.MinY)/grid.CellH)), 0, grid.GH-1)
	r1 := clampInt(int(math.Floor((maxY-grid.MinY)/grid.CellH)), 0, grid.GH-1)

	cellsCovered := (c1 - c0 + 1) * (r1 - r0 + 1)
	if !interacting && float64(cellsCovered) >= allCellsCoverageThreshold*float64(grid.GW*grid.GH) {
		out := vb.scratch[:scene.StrokeCount]
		for i := range out {
			out[i] = int32(i)
		}
		return out
	}

	vb.epoch++
	if vb.epoch == 0 {
		clear(vb.marks)
		vb.epoch = 1
	}

	out := vb.scratch[:0]
	for row := r0; row <= r1; row++ {
		base := row * grid.GW
		for col := c0; col <= c1; col++ {
			cell := base + col
			for _, idx := range grid.Indices[grid.Offsets[cell]:grid.Offsets[cell+1]] {
				if vb.marks[idx] == vb.epoch {
					continue
				}
				vb.marks[idx] = vb.epoch
				if !boundsIntersectsRect(boundsAt(scene, int(idx)), minX, minY, maxX, maxY) {
					continue
				}
				out = append(out, idx)
			}
		}
	}
	return out
}

func boundsIntersectsRect(b boundsRect, minX, minY, maxX, maxY float64) bool {
	return b.LLx < maxX && minX < b.URx && b.LLy < maxY && minY < b.URy
}
