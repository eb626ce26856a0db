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
	"testing"

	"seehuhn.de/go/geom/vec"
)

func TestMergerExtendsCollinearRun(t *testing.T) {
	m := newMerger()
	m.reset(true)

	var emitted []mergedSeg
	emit := func(s mergedSeg) { emitted = append(emitted, s) }

	m.add(vec.Vec2{X: 0, Y: 0}, vec.Vec2{X: 10, Y: 0}, true, emit)
	m.add(vec.Vec2{X: 10, Y: 0}, vec.Vec2{X: 20, Y: 0}, true, emit)
	if len(emitted) != 0 {
		t.Fatalf("got %d emissions mid-run, want 0", len(emitted))
	}

	m.flush(emit)
	if len(emitted) != 1 {
		t.Fatalf("got %d emissions after flush, want 1", len(emitted))
	}
	want := mergedSeg{0, 0, 20, 0}
	if emitted[0] != want {
		t.Fatalf("merged segment = %+v, want %+v", emitted[0], want)
	}
}

func TestMergerBreaksOnAngleChange(t *testing.T) {
	m := newMerger()
	m.reset(true)

	var emitted []mergedSeg
	emit := func(s mergedSeg) { emitted = append(emitted, s) }

	m.add(vec.Vec2{X: 0, Y: 0}, vec.Vec2{X: 10, Y: 0}, true, emit)
	m.add(vec.Vec2{X: 10, Y: 0}, vec.Vec2{X: 10, Y: 10}, true, emit)
	if len(emitted) != 1 {
		t.Fatalf("got %d emissions at a right-angle turn, want 1 (the flushed first leg)", len(emitted))
	}

	m.flush(emit)
	if len(emitted) != 2 {
		t.Fatalf("got %d emissions after flush, want 2", len(emitted))
	}
}

func TestMergerNeverMergesCurveSegments(t *testing.T) {
	m := newMerger()
	m.reset(true)

	var emitted []mergedSeg
	emit := func(s mergedSeg) { emitted = append(emitted, s) }

	m.add(vec.Vec2{X: 0, Y: 0}, vec.Vec2{X: 10, Y: 0}, false, emit)
	m.add(vec.Vec2{X: 10, Y: 0}, vec.Vec2{X: 20, Y: 0}, false, emit)

	if len(emitted) != 2 {
		t.Fatalf("got %d emissions for two non-mergeable segments, want 2", len(emitted))
	}
}

func TestMergerDisabledEmitsEverySegment(t *testing.T) {
	m := newMerger()
	m.reset(false)

	var emitted []mergedSeg
	emit := func(s mergedSeg) { emitted = append(emitted, s) }

	m.add(vec.Vec2{X: 0, Y: 0}, vec.Vec2{X: 10, Y: 0}, true, emit)
	m.add(vec.Vec2{X: 10, Y: 0}, vec.Vec2{X: 20, Y: 0}, true, emit)

	if len(emitted) != 2 {
		t.Fatalf("got %d emissions with merging disabled, want 2", len(emitted))
	}
}

func TestMergerRejectsGapBetweenEndpoints(t *testing.T) {
	m := newMerger()
	m.reset(true)

	var emitted []mergedSeg
	emit := func(s mergedSeg) { emitted = append(emitted, s) }

	m.add(vec.Vec2{X: 0, Y: 0}, vec.Vec2{X: 10, Y: 0}, true, emit)
	// Not contiguous: starts at (10.1, 0), not (10, 0).
	m.add(vec.Vec2{X: 10.1, Y: 0}, vec.Vec2{X: 20.1, Y: 0}, true, emit)
	if len(emitted) != 1 {
		t.Fatalf("got %d emissions across a gapped endpoint, want 1", len(emitted))
	}

	m.flush(emit)
	if len(emitted) != 2 {
		t.Fatalf("got %d emissions after flush, want 2", len(emitted))
	}
}

func TestPerpDist(t *testing.T) {
	a := vec.Vec2{X: 0, Y: 0}
	b := vec.Vec2{X: 10, Y: 0}
	p := vec.Vec2{X: 5, Y: 3}
	if got := perpDist(p, a, b); got != 3 {
		t.Fatalf("perpDist = %v, want 3", got)
	}

	// Degenerate a==b: distance falls back to |p-a|.
	if got := perpDist(p, a, a); got != p.Sub(a).Length() {
		t.Fatalf("perpDist (degenerate) = %v, want %v", got, p.Sub(a).Length())
	}
}
