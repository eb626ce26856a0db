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

import (
	"math"

	"seehuhn.de/go/geom/rect"
)

// styleFlagBit marks a stroke as style-flagged in primitive_meta's
// packed w component; no style flags are produced by this module's
// operator set today, so the bit is always clear, but the packing
// matches §4.5's layout so a future interpreter extension (dash
// patterns, joins) can set it without changing the texture format.
const styleFlagBit = 2.0

// packScene builds the fixed-channel float textures of §4.5 from the
// culled stroke and fill lists, and composes per-page geometry using
// the layouts computed by computePageLayouts.
func packScene(cfg *Config, strokes []rawStroke, fills []rawFillPath, layouts []pageLayout, pagesPerRow int) (*VectorScene, error) {
	scene := &VectorScene{
		PageCount:   len(layouts),
		PagesPerRow: pagesPerRow,
	}

	bounds := make([]rect.Rect, len(strokes))
	var sceneBounds rect.Rect
	var maxHalfWidth float64
	for i, s := range strokes {
		b := endpointBounds(s.x0, s.y0, s.x1, s.y1, s.halfWidth+strokeMargin)
		bounds[i] = b
		sceneBounds = unionRect(sceneBounds, b)
		maxHalfWidth = math.Max(maxHalfWidth, s.halfWidth)
	}
	for _, f := range fills {
		sceneBounds = unionRect(sceneBounds, rect.Rect{LLx: f.minX, LLy: f.minY, URx: f.maxX, URy: f.maxY})
	}
	scene.Bounds = sceneBounds
	scene.MaxHalfWidth = maxHalfWidth

	n := len(strokes)
	scene.StrokeCount = n
	scene.StrokeEndpoints = packFloatTexture(n, func(i int, t *[4]float32) {
		s := strokes[i]
		*t = [4]float32{float32(s.x0), float32(s.y0), float32(s.x1), float32(s.y1)}
	})
	scene.StrokePrimitiveMeta = packFloatTexture(n, func(i int, t *[4]float32) {
		s := strokes[i]
		w := float32(s.alpha)
		// style_flags is always 0 today; see styleFlagBit.
		*t = [4]float32{0, 0, 0, w}
	})
	scene.StrokeStyles = packFloatTexture(n, func(i int, t *[4]float32) {
		s := strokes[i]
		*t = [4]float32{float32(s.halfWidth), float32(s.luma), float32(s.luma), float32(s.luma)}
	})
	scene.StrokePrimitiveBounds = packFloatTexture(n, func(i int, t *[4]float32) {
		b := bounds[i]
		*t = [4]float32{float32(b.LLx), float32(b.LLy), float32(b.URx), float32(b.URy)}
	})

	if err := checkTextureBound(cfg, scene.StrokeEndpoints, "stroke-endpoints"); err != nil {
		return nil, err
	}

	packFills(scene, fills)
	if err := checkTextureBound(cfg, scene.FillPathMetaA, "fill-path-meta-a"); err != nil {
		return nil, err
	}
	if err := checkTextureBound(cfg, scene.FillSegmentsA, "fill-segments-a"); err != nil {
		return nil, err
	}

	scene.PageRects = make([]rect.Rect, len(layouts))
	var pageBounds rect.Rect
	for i, l := range layouts {
		scene.PageRects[i] = l.dest
		pageBounds = unionRect(pageBounds, l.dest)
	}
	scene.PageBounds = pageBounds

	return scene, nil
}

// packFills lays out the fill path and fill segment arrays. Segment
// ranges are assigned in input (path emission) order, so each path's
// segments start directly after those of the path before it: its
// offset is the total segment count of all preceding paths.
func packFills(scene *VectorScene, fills []rawFillPath) {
	type segRec struct{ x0, y0, x1, y1 float64 }

	var segs []segRec
	offsets := make([]int, len(fills))
	counts := make([]int, len(fills))
	for i, f := range fills {
		offsets[i] = len(segs)
		cnt := len(f.segs) / 4
		counts[i] = cnt
		for s := 0; s < cnt; s++ {
			segs = append(segs, segRec{f.segs[s*4], f.segs[s*4+1], f.segs[s*4+2], f.segs[s*4+3]})
		}
	}

	scene.FillPathCount = len(fills)
	scene.FillSegmentCount = len(segs)

	scene.FillPathMetaA = packFloatTexture(len(fills), func(i int, t *[4]float32) {
		f := fills[i]
		*t = [4]float32{float32(f.minX), float32(f.minY), float32(f.maxX), float32(f.maxY)}
	})
	scene.FillPathMetaB = packFloatTexture(len(fills), func(i int, t *[4]float32) {
		windingFlag := float32(0)
		if fills[i].evenOdd {
			windingFlag = 1
		}
		*t = [4]float32{float32(offsets[i]), float32(counts[i]), windingFlag, 0}
	})
	scene.FillPathMetaC = packFloatTexture(len(fills), func(i int, t *[4]float32) {
		f := fills[i]
		*t = [4]float32{float32(f.r), float32(f.g), float32(f.b), float32(f.alpha)}
	})

	scene.FillSegmentsA = packFloatTexture(len(segs), func(i int, t *[4]float32) {
		s := segs[i]
		*t = [4]float32{float32(s.x0), float32(s.y0), float32(s.x1), float32(s.y1)}
	})
	// FillSegmentsB is derived from A (per-segment AABB), following the
	// same "missing texture can be rebuilt from A" design as the stroke
	// bounds tile; keeping it present here avoids a load-time branch.
	scene.FillSegmentsB = packFloatTexture(len(segs), func(i int, t *[4]float32) {
		s := segs[i]
		minX, maxX := math.Min(s.x0, s.x1), math.Max(s.x0, s.x1)
		minY, maxY := math.Min(s.y0, s.y1), math.Max(s.y0, s.y1)
		*t = [4]float32{float32(minX), float32(minY), float32(maxX), float32(maxY)}
	})
}

// packFloatTexture lays n logical records into a square-ish
// RGBA32F texture of side ceil(sqrt(n)) x ceil(n/side), per §4.5.
// Unused tail texels are left zero.
func packFloatTexture(n int, fill func(i int, texel *[4]float32)) FloatTexture {
	if n == 0 {
		return FloatTexture{}
	}
	w := int(math.Ceil(math.Sqrt(float64(n))))
	if w < 1 {
		w = 1
	}
	h := int(math.Ceil(float64(n) / float64(w)))

	data := make([]float32, w*h*4)
	for i := 0; i < n; i++ {
		var t [4]float32
		fill(i, &t)
		copy(data[i*4:i*4+4], t[:])
	}
	return FloatTexture{Width: w, Height: h, LogicalCount: n, Data: data}
}

func checkTextureBound(cfg *Config, tex FloatTexture, name string) error {
	if cfg.MaxTextureSide <= 0 {
		return nil
	}
	if tex.Width > cfg.MaxTextureSide || tex.Height > cfg.MaxTextureSide {
		return newBuildError(KindResourceBound, "packer", "", name+" exceeds configured maximum texture side", nil)
	}
	return nil
}
