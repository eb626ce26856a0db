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

// Package fixtures builds small, hand-constructed opstream.Operator
// sequences for use in tests and examples, in the same spirit as the
// teacher's testcases package of hand-built path.Data geometry — but
// built from operators rather than a geometry type, since this
// module's interpreter consumes an operator stream, not a path value.
package fixtures

import "seehuhn.de/go/vectorscene/opstream"

// bezierCircleK is the standard cubic-Bezier control-point factor for
// approximating a quarter circle.
const bezierCircleK = 0.5522847498

// pt is a compact constructor for a PathRecord's coordinate pair.
func pt(x, y float64) [2]float64 {
	return [2]float64{x, y}
}

// Polyline returns a construct_path operator stroking the given
// points as a single open subpath of straight segments.
func Polyline(points [][2]float64) opstream.Operator {
	recs := make([]opstream.PathRecord, 0, len(points))
	for i, p := range points {
		if i == 0 {
			recs = append(recs, opstream.PathRecord{Cmd: opstream.PathMoveTo, Points: [3][2]float64{p}})
			continue
		}
		recs = append(recs, opstream.PathRecord{Cmd: opstream.PathLineTo, Points: [3][2]float64{p}})
	}
	return opstream.Operator{Op: opstream.OpConstructPath, Paint: opstream.PaintStroke, Path: recs}
}

// Rectangle returns a construct_path operator that strokes and fills
// a closed axis-aligned rectangle.
func Rectangle(x0, y0, x1, y1 float64) opstream.Operator {
	recs := []opstream.PathRecord{
		{Cmd: opstream.PathMoveTo, Points: [3][2]float64{pt(x0, y0)}},
		{Cmd: opstream.PathLineTo, Points: [3][2]float64{pt(x1, y0)}},
		{Cmd: opstream.PathLineTo, Points: [3][2]float64{pt(x1, y1)}},
		{Cmd: opstream.PathLineTo, Points: [3][2]float64{pt(x0, y1)}},
		{Cmd: opstream.PathClose},
	}
	return opstream.Operator{Op: opstream.OpConstructPath, Paint: opstream.PaintCloseFillStroke, Path: recs}
}

// Circle returns a construct_path operator approximating a circle of
// the given radius about (cx,cy) with four cubic Bezier quadrants,
// using the same control-point factor the teacher's benchmark fixture
// (addCircleToData in benchmark_test.go) uses for its "O" shape.
func Circle(cx, cy, r float64) opstream.Operator {
	kr := bezierCircleK * r
	recs := []opstream.PathRecord{
		{Cmd: opstream.PathMoveTo, Points: [3][2]float64{pt(cx, cy-r)}},
		{Cmd: opstream.PathCurveTo, Points: [3][2]float64{pt(cx+kr, cy-r), pt(cx+r, cy-kr), pt(cx+r, cy)}},
		{Cmd: opstream.PathCurveTo, Points: [3][2]float64{pt(cx+r, cy+kr), pt(cx+kr, cy+r), pt(cx, cy+r)}},
		{Cmd: opstream.PathCurveTo, Points: [3][2]float64{pt(cx-kr, cy+r), pt(cx-r, cy+kr), pt(cx-r, cy)}},
		{Cmd: opstream.PathCurveTo, Points: [3][2]float64{pt(cx-r, cy-kr), pt(cx-kr, cy-r), pt(cx, cy-r)}},
		{Cmd: opstream.PathClose},
	}
	return opstream.Operator{Op: opstream.OpConstructPath, Paint: opstream.PaintCloseStroke, Path: recs}
}

// Zigzag returns a construct_path operator for a back-and-forth
// polyline of n teeth, width wide and amplitude amp tall, starting at
// (x0,y0) — useful for exercising the segment merger's collinearity
// threshold with near-miss angles.
func Zigzag(x0, y0, width, amp float64, n int) opstream.Operator {
	points := make([][2]float64, 0, n+1)
	step := width / float64(n)
	for i := 0; i <= n; i++ {
		y := y0
		if i%2 == 1 {
			y += amp
		}
		points = append(points, pt(x0+float64(i)*step, y))
	}
	return Polyline(points)
}

// SetLineWidth returns a set_line_width operator.
func SetLineWidth(w float64) opstream.Operator {
	return opstream.Operator{Op: opstream.OpSetLineWidth, LineWidth: w}
}

// SetGray returns a set_stroke_colour operator with a gray operand.
func SetGray(g float64) opstream.Operator {
	return opstream.Operator{Op: opstream.OpSetStrokeColour, Colour: opstream.ColourOperand{Space: opstream.ColourGray, Components: [4]float64{g}}}
}

// SetAlpha returns a set_gstate operator setting CA (stroke alpha).
func SetAlpha(a float64) opstream.Operator {
	return opstream.Operator{Op: opstream.OpSetGState, GState: []opstream.GStateEntry{{Key: "CA", Value: a}}}
}

// Translate returns a transform operator translating by (dx,dy).
func Translate(dx, dy float64) opstream.Operator {
	return opstream.Operator{Op: opstream.OpTransform, Transform: [6]float64{1, 0, 0, 1, dx, dy}}
}
