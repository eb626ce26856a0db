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

package fixtures_test

import (
	"testing"

	"seehuhn.de/go/vectorscene/fixtures"
	"seehuhn.de/go/vectorscene/opstream"
)

func TestPolylineBuildsChainedLineTo(t *testing.T) {
	op := fixtures.Polyline([][2]float64{{0, 0}, {1, 1}, {2, 0}})
	if op.Op != opstream.OpConstructPath {
		t.Fatalf("Op = %v, want OpConstructPath", op.Op)
	}
	if len(op.Path) != 3 {
		t.Fatalf("len(Path) = %d, want 3", len(op.Path))
	}
	if op.Path[0].Cmd != opstream.PathMoveTo {
		t.Fatalf("Path[0].Cmd = %v, want PathMoveTo", op.Path[0].Cmd)
	}
	for _, rec := range op.Path[1:] {
		if rec.Cmd != opstream.PathLineTo {
			t.Fatalf("Path cmd = %v, want PathLineTo", rec.Cmd)
		}
	}
	if !op.Paint.IsStroke() {
		t.Fatal("Polyline must paint a stroke")
	}
}

func TestRectangleClosesAndFillsAndStrokes(t *testing.T) {
	op := fixtures.Rectangle(0, 0, 10, 10)
	if !op.Paint.IsClosed() {
		t.Fatal("Rectangle must be a closed path")
	}
	if !op.Paint.IsStroke() {
		t.Fatal("Rectangle must paint a stroke")
	}
	fill, _ := op.Paint.IsFill()
	if !fill {
		t.Fatal("Rectangle must paint a fill")
	}
	last := op.Path[len(op.Path)-1]
	if last.Cmd != opstream.PathClose {
		t.Fatalf("last path command = %v, want PathClose", last.Cmd)
	}
}

func TestCircleFourQuadrants(t *testing.T) {
	op := fixtures.Circle(0, 0, 10)
	curves := 0
	for _, rec := range op.Path {
		if rec.Cmd == opstream.PathCurveTo {
			curves++
		}
	}
	if curves != 4 {
		t.Fatalf("got %d CurveTo records, want 4", curves)
	}
}

func TestZigzagAlternatesHeight(t *testing.T) {
	op := fixtures.Zigzag(0, 0, 40, 5, 4)
	if len(op.Path) != 5 {
		t.Fatalf("len(Path) = %d, want 5", len(op.Path))
	}
	for i, rec := range op.Path {
		wantY := 0.0
		if i%2 == 1 {
			wantY = 5
		}
		if rec.Points[0][1] != wantY {
			t.Fatalf("point %d y = %v, want %v", i, rec.Points[0][1], wantY)
		}
	}
}

func TestSmallOperatorBuilders(t *testing.T) {
	if op := fixtures.SetLineWidth(3); op.Op != opstream.OpSetLineWidth || op.LineWidth != 3 {
		t.Fatalf("SetLineWidth = %+v", op)
	}
	if op := fixtures.SetGray(0.5); op.Op != opstream.OpSetStrokeColour || op.Colour.Space != opstream.ColourGray {
		t.Fatalf("SetGray = %+v", op)
	}
	if op := fixtures.SetAlpha(0.25); op.Op != opstream.OpSetGState || op.GState[0].Key != "CA" || op.GState[0].Value != 0.25 {
		t.Fatalf("SetAlpha = %+v", op)
	}
	if op := fixtures.Translate(5, -5); op.Op != opstream.OpTransform || op.Transform != [6]float64{1, 0, 0, 1, 5, -5} {
		t.Fatalf("Translate = %+v", op)
	}
}
