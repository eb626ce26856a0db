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

// endpointMergeTol2 is the squared distance within which two
// consecutive segments' shared endpoint is considered coincident.
const endpointMergeTol2 = 1e-6

// collinearCosMin is the minimum cosine of the angle between two
// segments' direction vectors for them to be considered collinear,
// matching the teacher's collinearityThreshold idiom in stroke.go.
const collinearCosMin = 0.999995

// collinearChordDev is the maximum perpendicular deviation allowed
// between the shared joint point and the chord of the combined run.
const collinearChordDev = 0.05

// mergedSeg is one straight segment, either still pending extension or
// finalised into a stroke primitive.
type mergedSeg struct {
	x0, y0, x1, y1 float64
}

// merger implements §4.3: a single pending segment per active path,
// extended in place while consecutive straight segments stay
// collinear, and flushed whenever that run ends. Curve-derived
// segments (allowMerge=false) never participate; they flush whatever
// is pending and are themselves emitted standalone, preserving curve
// fidelity.
type merger struct {
	enabled bool
	has     bool
	pend    mergedSeg
}

func newMerger() *merger {
	return &merger{}
}

// reset starts a new active path; enabled mirrors the
// enable_segment_merge configuration flag.
func (m *merger) reset(enabled bool) {
	m.enabled = enabled
	m.has = false
}

// add feeds one flattened segment (a,b) into the merge state. emit is
// invoked once for every stroke primitive that becomes final as a
// result: zero times if the segment extended the pending run or became
// the pending run with nothing pending before it, once if it flushed a
// pending run and became the new pending run, or once or twice if it
// is not mergeable (it stands on its own, after any pending run is
// flushed).
func (m *merger) add(a, b vec.Vec2, allowMerge bool, emit func(mergedSeg)) {
	if !allowMerge || !m.enabled {
		m.flushTo(emit)
		emit(mergedSeg{a.X, a.Y, b.X, b.Y})
		return
	}

	if !m.has {
		m.pend = mergedSeg{a.X, a.Y, b.X, b.Y}
		m.has = true
		return
	}

	if m.canExtend(a, b) {
		m.pend.x1, m.pend.y1 = b.X, b.Y
		return
	}

	m.flushTo(emit)
	m.pend = mergedSeg{a.X, a.Y, b.X, b.Y}
	m.has = true
}

// flush ends the active path, emitting the pending run if any.
func (m *merger) flush(emit func(mergedSeg)) {
	m.flushTo(emit)
}

func (m *merger) flushTo(emit func(mergedSeg)) {
	if m.has {
		emit(m.pend)
		m.has = false
	}
}

// canExtend reports whether segment (a,b) is a collinear continuation
// of the pending run: its start must coincide with the pending run's
// end, its direction must be nearly parallel, and the joint must not
// bow off the combined run's chord by more than collinearChordDev.
func (m *merger) canExtend(a, b vec.Vec2) bool {
	dx := a.X - m.pend.x1
	dy := a.Y - m.pend.y1
	if dx*dx+dy*dy > endpointMergeTol2 {
		return false
	}

	d1 := vec.Vec2{X: m.pend.x1 - m.pend.x0, Y: m.pend.y1 - m.pend.y0}
	d2 := vec.Vec2{X: b.X - a.X, Y: b.Y - a.Y}
	l1, l2 := d1.Length(), d2.Length()
	if l1 == 0 || l2 == 0 {
		return false
	}
	cosTheta := d1.Dot(d2) / (l1 * l2)
	if cosTheta < collinearCosMin {
		return false
	}

	chordStart := vec.Vec2{X: m.pend.x0, Y: m.pend.y0}
	joint := vec.Vec2{X: m.pend.x1, Y: m.pend.y1}
	if perpDist(joint, chordStart, b) > collinearChordDev {
		return false
	}

	return true
}

// perpDist returns the perpendicular distance from p to the line
// through a and b, or the distance from p to a if a and b coincide.
func perpDist(p, a, b vec.Vec2) float64 {
	ab := b.Sub(a)
	l := ab.Length()
	if l < 1e-12 {
		return p.Sub(a).Length()
	}
	return absF(cross(p.Sub(a), ab)) / l
}

func absF(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
