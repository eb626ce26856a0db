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
	"testing"

	"seehuhn.de/go/geom/vec"
)

func TestFlattenStraightCubicIsOneSegment(t *testing.T) {
	f := newFlattener()
	p0 := vec.Vec2{X: 0, Y: 0}
	p1 := vec.Vec2{X: 10, Y: 0}
	p2 := vec.Vec2{X: 20, Y: 0}
	p3 := vec.Vec2{X: 30, Y: 0}

	var chords [][2]vec.Vec2
	f.flattenCubic(p0, p1, p2, p3, func(a, b vec.Vec2) {
		chords = append(chords, [2]vec.Vec2{a, b})
	})

	if len(chords) != 1 {
		t.Fatalf("got %d chords for a collinear cubic, want 1", len(chords))
	}
	if chords[0][0] != p0 || chords[0][1] != p3 {
		t.Fatalf("chord = %v, want (%v,%v)", chords[0], p0, p3)
	}
}

func TestFlattenChainsContiguously(t *testing.T) {
	f := newFlattener()
	p0 := vec.Vec2{X: 0, Y: 0}
	p1 := vec.Vec2{X: 0, Y: 40}
	p2 := vec.Vec2{X: 40, Y: 40}
	p3 := vec.Vec2{X: 40, Y: 0}

	var chords [][2]vec.Vec2
	f.flattenCubic(p0, p1, p2, p3, func(a, b vec.Vec2) {
		chords = append(chords, [2]vec.Vec2{a, b})
	})

	if len(chords) < 2 {
		t.Fatalf("got %d chords for a curved cubic, want >= 2", len(chords))
	}
	if chords[0][0] != p0 {
		t.Fatalf("first chord starts at %v, want %v", chords[0][0], p0)
	}
	if chords[len(chords)-1][1] != p3 {
		t.Fatalf("last chord ends at %v, want %v", chords[len(chords)-1][1], p3)
	}
	for i := 1; i < len(chords); i++ {
		if chords[i-1][1] != chords[i][0] {
			t.Fatalf("chord %d ends at %v but chord %d starts at %v", i-1, chords[i-1][1], i, chords[i][0])
		}
	}
}

func TestFlattenRespectsMaxDepth(t *testing.T) {
	f := newFlattenerWithConfig(1e-9, 3)
	p0 := vec.Vec2{X: 0, Y: 0}
	p1 := vec.Vec2{X: 0, Y: 1000}
	p2 := vec.Vec2{X: 1000, Y: 1000}
	p3 := vec.Vec2{X: 1000, Y: 0}

	n := 0
	f.flattenCubic(p0, p1, p2, p3, func(a, b vec.Vec2) { n++ })

	if n > 1<<3 {
		t.Fatalf("got %d chords with maxDepth=3, want <= 8", n)
	}
}

func TestFlattenQuadraticElevatesToCubic(t *testing.T) {
	f := newFlattener()
	p0 := vec.Vec2{X: 0, Y: 0}
	p1 := vec.Vec2{X: 10, Y: 10}
	p2 := vec.Vec2{X: 20, Y: 0}

	var chords [][2]vec.Vec2
	f.flattenQuadratic(p0, p1, p2, func(a, b vec.Vec2) {
		chords = append(chords, [2]vec.Vec2{a, b})
	})

	if len(chords) == 0 {
		t.Fatal("flattenQuadratic emitted no chords")
	}
	if chords[0][0] != p0 {
		t.Fatalf("first chord starts at %v, want %v", chords[0][0], p0)
	}
	if chords[len(chords)-1][1] != p2 {
		t.Fatalf("last chord ends at %v, want %v", chords[len(chords)-1][1], p2)
	}
}

func TestCubicFlatDegenerateChord(t *testing.T) {
	p0 := vec.Vec2{X: 5, Y: 5}
	p3 := p0
	near := vec.Vec2{X: 5.01, Y: 5}
	far := vec.Vec2{X: 50, Y: 50}

	if !cubicFlat(p0, near, p0, p3, 1) {
		t.Fatal("expected a nearly-collapsed degenerate curve to be flat")
	}
	if cubicFlat(p0, far, p0, p3, 1) {
		t.Fatal("expected a degenerate curve with a far control point to be non-flat")
	}
}

func TestCrossAndMid(t *testing.T) {
	a := vec.Vec2{X: 1, Y: 0}
	b := vec.Vec2{X: 0, Y: 1}
	if got := cross(a, b); math.Abs(got-1) > 1e-12 {
		t.Fatalf("cross = %v, want 1", got)
	}

	m := mid(vec.Vec2{X: 0, Y: 0}, vec.Vec2{X: 4, Y: 2})
	if m != (vec.Vec2{X: 2, Y: 1}) {
		t.Fatalf("mid = %v, want (2,1)", m)
	}
}
