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
	"sort"
)

// transparentAlphaMax is the alpha at or below which a stroke is
// culled as invisible.
const transparentAlphaMax = 1e-3

// degenerateLen2Max is the squared length below which a stroke is
// culled as a zero-length point.
const degenerateLen2Max = 1e-10

// opaqueAlphaMin is the alpha at or above which a stroke may serve as
// a containment cover for other, thinner or shorter, collinear
// strokes.
const opaqueAlphaMin = 0.999

// containmentSlack is the interval-containment and half-width
// tolerance used by the containment filter.
const containmentSlack = 0.05
const containmentHalfWidthSlack = 1e-4

// cullCounts tallies the per-stage rejections of the stroke
// visibility culler, mirroring VectorScene's discarded_* fields.
type cullCounts struct {
	transparent int
	degenerate  int
	duplicate   int
	contained   int
}

// cullStrokes runs the four sequential filters of §4.4 over strokes,
// in input order, and returns the survivors (preserving that input
// order, not the internal sort order used by the containment stage)
// plus the per-stage rejection counts. When enabled is false, every
// stroke passes through unchanged and all counts are zero.
func cullStrokes(strokes []rawStroke, enabled bool) ([]rawStroke, cullCounts) {
	if !enabled {
		return strokes, cullCounts{}
	}

	var counts cullCounts

	stage1 := make([]rawStroke, 0, len(strokes))
	for _, s := range strokes {
		if s.alpha <= transparentAlphaMax {
			counts.transparent++
			continue
		}
		stage1 = append(stage1, s)
	}

	stage2 := make([]rawStroke, 0, len(stage1))
	for _, s := range stage1 {
		dx, dy := s.x1-s.x0, s.y1-s.y0
		if dx*dx+dy*dy < degenerateLen2Max {
			counts.degenerate++
			continue
		}
		stage2 = append(stage2, s)
	}

	stage3 := make([]rawStroke, 0, len(stage2))
	seen := make(map[dupKey]bool, len(stage2))
	for _, s := range stage2 {
		k := dupKeyOf(s)
		if seen[k] {
			counts.duplicate++
			continue
		}
		seen[k] = true
		stage3 = append(stage3, s)
	}

	rejected := containmentReject(stage3)
	counts.contained = len(rejected)

	survivors := make([]rawStroke, 0, len(stage3)-len(rejected))
	for i, s := range stage3 {
		if rejected[i] {
			continue
		}
		survivors = append(survivors, s)
	}

	return survivors, counts
}

// dupKey is the quantised, endpoint-order-independent identity used
// by the duplicate filter.
type dupKey struct {
	x0, y0, x1, y1 int64
	halfWidth      int64
	luma           int64
	alpha          int64
}

func dupKeyOf(s rawStroke) dupKey {
	x0, y0, x1, y1 := s.x0, s.y0, s.x1, s.y1
	if x0 > x1 || (x0 == x1 && y0 > y1) {
		x0, y0, x1, y1 = x1, y1, x0, y0
	}
	return dupKey{
		x0:        quantizeInt(x0, 1000),
		y0:        quantizeInt(y0, 1000),
		x1:        quantizeInt(x1, 1000),
		y1:        quantizeInt(y1, 1000),
		halfWidth: quantizeInt(s.halfWidth, 10000),
		luma:      quantizeInt(s.luma, 10000),
		alpha:     quantizeInt(s.alpha, 10000),
	}
}

func quantizeInt(v, step float64) int64 {
	return int64(math.Round(v * step))
}

// containmentReject runs stage 4 of §4.4 and returns, parallel to
// strokes, whether each stroke is covered by an opaque collinear
// stroke of greater-or-equal half-width.
func containmentReject(strokes []rawStroke) []bool {
	rejected := make([]bool, len(strokes))

	type candidate struct {
		idx              int
		start, end       float64
		halfWidth        float64
		alpha            float64
	}

	groups := make(map[containGroupKey][]candidate)
	for i, s := range strokes {
		ux, uy, ok := canonicalDirection(s.x1-s.x0, s.y1-s.y0)
		if !ok {
			continue // zero-length, already removed by the degenerate stage
		}
		nx, ny := -uy, ux
		offset := s.x0*nx + s.y0*ny
		t0 := s.x0*ux + s.y0*uy
		t1 := s.x1*ux + s.y1*uy
		start, end := t0, t1
		if start > end {
			start, end = end, start
		}

		key := containGroupKey{
			dx:     quantizeInt(ux, 10000),
			dy:     quantizeInt(uy, 10000),
			offset: quantizeInt(offset, 200),
			luma:   quantizeInt(s.luma, 10000),
		}
		groups[key] = append(groups[key], candidate{
			idx:       i,
			start:     start,
			end:       end,
			halfWidth: s.halfWidth,
			alpha:     s.alpha,
		})
	}

	for _, cands := range groups {
		sort.Slice(cands, func(a, b int) bool {
			ca, cb := cands[a], cands[b]
			if ca.halfWidth != cb.halfWidth {
				return ca.halfWidth > cb.halfWidth
			}
			la, lb := ca.end-ca.start, cb.end-cb.start
			if la != lb {
				return la > lb
			}
			return ca.start < cb.start
		})

		type cover struct {
			start, end float64
			halfWidth  float64
		}
		var covers []cover

		for _, c := range cands {
			covered := false
			for _, cov := range covers {
				if cov.halfWidth < c.halfWidth-containmentHalfWidthSlack {
					continue
				}
				if cov.start-containmentSlack <= c.start && c.end <= cov.end+containmentSlack {
					covered = true
					break
				}
			}
			if covered {
				rejected[c.idx] = true
				continue
			}
			if c.alpha >= opaqueAlphaMin {
				covers = append(covers, cover{start: c.start, end: c.end, halfWidth: c.halfWidth})
			}
		}
	}

	return rejected
}

type containGroupKey struct {
	dx, dy int64
	offset int64
	luma   int64
}

// canonicalDirection returns the unit direction vector of (dx,dy)
// with a canonical sign, so that a segment and its endpoint-reversed
// twin land in the same containment group. ok is false for a
// zero-length input.
func canonicalDirection(dx, dy float64) (ux, uy float64, ok bool) {
	l := math.Hypot(dx, dy)
	if l < 1e-12 {
		return 0, 0, false
	}
	ux, uy = dx/l, dy/l
	if ux < 0 || (ux == 0 && uy < 0) {
		ux, uy = -ux, -uy
	}
	return ux, uy, true
}

// cullFills filters fill paths for transparency and degeneracy only;
// fills never run containment (§4.4).
func cullFills(fills []rawFillPath) []rawFillPath {
	out := make([]rawFillPath, 0, len(fills))
	for _, f := range fills {
		if f.alpha <= transparentAlphaMax {
			continue
		}
		if len(f.segs) == 0 || (f.minX == f.maxX && f.minY == f.maxY) {
			continue
		}
		out = append(out, f)
	}
	return out
}
