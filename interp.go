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
	"context"
	"log/slog"
	"strconv"
	"strings"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/vec"

	"seehuhn.de/go/vectorscene/opstream"
)

// gState is the interpreter's graphics state, one entry per nesting
// level of the save/restore stack. The fill colour has no dedicated
// setter opcode in this operator set, so it tracks the same luma and
// alpha as the stroke colour; see DESIGN.md for the rationale.
type gState struct {
	ctm        matrix.Matrix
	lineWidth  float64
	strokeLuma float64
	strokeA    float64
}

func initialGState() gState {
	return gState{
		ctm:        matrix.Identity,
		lineWidth:  1,
		strokeLuma: 0,
		strokeA:    1,
	}
}

// rawStroke is one stroke primitive as emitted by the interpreter,
// before culling and packing.
type rawStroke struct {
	x0, y0, x1, y1 float64
	halfWidth      float64
	luma           float64
	alpha          float64
}

// rawFillPath is one fill primitive as emitted by the interpreter,
// before transparency/degeneracy filtering and packing.
type rawFillPath struct {
	minX, minY, maxX, maxY float64
	r, g, b, alpha         float64
	evenOdd                bool
	segs                   []float64 // flat (x0,y0,x1,y1) quads
}

// interpreter consumes one page's operator sequence and produces the
// raw (pre-cull, pre-pack) stroke and fill lists, following the
// teacher's state-machine idiom of a save/restore stack cloned by
// value on save (raster.go has no such stack, since it never
// processes a stateful operator stream; the clone-on-push design here
// follows seehuhn.de/go/pdf's content.State instead, generalised to
// this module's smaller state).
type interpreter struct {
	cfg *Config

	stack []gState
	cur   gState

	flat *flattener
	merg *merger

	strokes []rawStroke
	fills   []rawFillPath

	sourceSegmentCount int
	malformedPaths     int

	logger *slog.Logger
}

func newInterpreter(cfg *Config, logger *slog.Logger) *interpreter {
	return &interpreter{
		cfg:    cfg,
		cur:    initialGState(),
		flat:   newFlattener(),
		merg:   newMerger(),
		logger: logger,
	}
}

// run consumes every operator yielded by ops, updating graphics state
// and appending emitted primitives. It returns early, without error,
// if ctx is cancelled; the caller checks ctx.Err() itself between
// operator chunks per §5's cancellation model.
func (ip *interpreter) run(ctx context.Context, ops func(yield func(opstream.Operator) bool)) {
	const chunkSize = 256
	n := 0
	ops(func(op opstream.Operator) bool {
		n++
		if n%chunkSize == 0 && ctx.Err() != nil {
			return false
		}
		ip.processOperator(op)
		return true
	})
}

func (ip *interpreter) processOperator(op opstream.Operator) {
	switch op.Op {
	case opstream.OpSave:
		ip.stack = append(ip.stack, ip.cur)
	case opstream.OpRestore:
		if n := len(ip.stack); n > 0 {
			ip.cur = ip.stack[n-1]
			ip.stack = ip.stack[:n-1]
		}
	case opstream.OpTransform:
		m := matrix.Matrix(op.Transform)
		if finiteMatrix(m) {
			ip.cur.ctm = mulAffine(ip.cur.ctm, m)
		}
	case opstream.OpSetLineWidth:
		w := op.LineWidth
		if w < 0 {
			w = 0
		}
		ip.cur.lineWidth = w
	case opstream.OpSetStrokeColour:
		if luma, ok := parseColour(op.Colour); ok {
			ip.cur.strokeLuma = luma
		}
	case opstream.OpSetGState:
		for _, e := range op.GState {
			switch e.Key {
			case "CA":
				ip.cur.strokeA = clampFloat(e.Value, 0, 1)
			case "LW":
				if e.Value >= 0 {
					ip.cur.lineWidth = e.Value
				}
			}
		}
	case opstream.OpConstructPath:
		ip.processConstructPath(op)
	}
}

// processConstructPath flattens every subpath of op.Path and, per the
// paint operator, emits the result to the stroke subpipeline (merged
// segment-by-segment), the fill subpipeline (raw segment list plus
// bbox), or both.
func (ip *interpreter) processConstructPath(op opstream.Operator) {
	doStroke := op.Paint.IsStroke()
	doFill, evenOdd := op.Paint.IsFill()
	if !doStroke && !doFill {
		return
	}

	halfWidth := strokeHalfWidth(ip.cur.lineWidth, ip.cur.ctm)
	luma := ip.cur.strokeLuma
	alpha := ip.cur.strokeA

	var fp *rawFillPath
	if doFill {
		ip.fills = append(ip.fills, rawFillPath{r: luma, g: luma, b: luma, alpha: alpha, evenOdd: evenOdd})
		fp = &ip.fills[len(ip.fills)-1]
	}

	if doStroke {
		ip.merg.reset(ip.cfg.EnableSegmentMerge)
	}

	var cur, subStart vec.Vec2
	haveCur := false
	closed := op.Paint.IsClosed()

	emitSeg := func(a, b vec.Vec2, allowMerge bool) {
		ip.sourceSegmentCount++
		if fp != nil {
			fp.segs = append(fp.segs, a.X, a.Y, b.X, b.Y)
			growFillBounds(fp, a, b)
		}
		if doStroke {
			ip.flushOrExtend(allowMerge, a, b, halfWidth, luma, alpha)
		}
	}

	flushSubpath := func() {
		if doStroke {
			ip.merg.flush(func(s mergedSeg) {
				ip.strokes = append(ip.strokes, rawStroke{s.x0, s.y0, s.x1, s.y1, halfWidth, luma, alpha})
			})
		}
	}

	malformed := false
pathLoop:
	for _, rec := range op.Path {
		switch rec.Cmd {
		case opstream.PathMoveTo:
			flushSubpath()
			p := apply(ip.cur.ctm, vec.Vec2{X: rec.Points[0][0], Y: rec.Points[0][1]})
			cur, subStart = p, p
			haveCur = true

		case opstream.PathLineTo:
			if !haveCur {
				malformed = true
				break pathLoop
			}
			p := apply(ip.cur.ctm, vec.Vec2{X: rec.Points[0][0], Y: rec.Points[0][1]})
			emitSeg(cur, p, true)
			cur = p

		case opstream.PathQuadTo:
			if !haveCur {
				malformed = true
				break pathLoop
			}
			c1 := apply(ip.cur.ctm, vec.Vec2{X: rec.Points[0][0], Y: rec.Points[0][1]})
			end := apply(ip.cur.ctm, vec.Vec2{X: rec.Points[1][0], Y: rec.Points[1][1]})
			from := cur
			ip.flat.flattenQuadratic(from, c1, end, func(a, b vec.Vec2) {
				emitSeg(a, b, false)
			})
			cur = end

		case opstream.PathCurveTo:
			if !haveCur {
				malformed = true
				break pathLoop
			}
			c1 := apply(ip.cur.ctm, vec.Vec2{X: rec.Points[0][0], Y: rec.Points[0][1]})
			c2 := apply(ip.cur.ctm, vec.Vec2{X: rec.Points[1][0], Y: rec.Points[1][1]})
			end := apply(ip.cur.ctm, vec.Vec2{X: rec.Points[2][0], Y: rec.Points[2][1]})
			from := cur
			ip.flat.flattenCubic(from, c1, c2, end, func(a, b vec.Vec2) {
				emitSeg(a, b, false)
			})
			cur = end

		case opstream.PathClose:
			if !haveCur {
				malformed = true
				break pathLoop
			}
			if cur != subStart {
				emitSeg(cur, subStart, true)
			}
			cur = subStart

		default:
			malformed = true
			break pathLoop
		}
	}
	_ = closed // closed-paint variants behave identically here: Close already
	// emits the implicit segment when present; an unclosed final subpath
	// under a close* paint op is left as-is, matching §4.1's silence on
	// synthesising a missing Close record.

	flushSubpath()

	if malformed {
		ip.malformedPaths++
		ip.logger.Warn("vectorscene: malformed path truncated", "segments_so_far", ip.sourceSegmentCount)
	}
}

// flushOrExtend feeds one flattened segment to the path's pending
// merge state, flushing a completed stroke primitive when the merger
// decides the run has ended.
func (ip *interpreter) flushOrExtend(allowMerge bool, a, b vec.Vec2, halfWidth, luma, alpha float64) {
	ip.merg.add(a, b, allowMerge, func(s mergedSeg) {
		ip.strokes = append(ip.strokes, rawStroke{s.x0, s.y0, s.x1, s.y1, halfWidth, luma, alpha})
	})
}

func growFillBounds(fp *rawFillPath, a, b vec.Vec2) {
	if len(fp.segs) == 4 {
		fp.minX, fp.maxX = minF(a.X, b.X), maxF(a.X, b.X)
		fp.minY, fp.maxY = minF(a.Y, b.Y), maxF(a.Y, b.Y)
		return
	}
	fp.minX = minF(fp.minX, minF(a.X, b.X))
	fp.minY = minF(fp.minY, minF(a.Y, b.Y))
	fp.maxX = maxF(fp.maxX, maxF(a.X, b.X))
	fp.maxY = maxF(fp.maxY, maxF(a.Y, b.Y))
}

func minF(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxF(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

// strokeHalfWidth implements §4.1's stroke-width rule: a zero line
// width falls back to a fixed hairline half-width rather than the
// general formula (which would otherwise floor it at 0.2 anyway, but
// the spec calls out 0.35 explicitly as the hairline default).
func strokeHalfWidth(lineWidth float64, ctm matrix.Matrix) float64 {
	if lineWidth == 0 {
		return 0.35
	}
	hw := lineWidth * scale(ctm) * 0.5
	if hw < minHalfWidth {
		return minHalfWidth
	}
	return hw
}

// parseColour resolves a set_stroke_colour operand to a luma value
// using Rec. 709 weights, after a naive K-subtraction for CMYK input.
// It reports ok=false for operands that cannot be parsed, leaving the
// caller to preserve the previous luma.
func parseColour(c opstream.ColourOperand) (luma float64, ok bool) {
	switch c.Space {
	case opstream.ColourGray:
		g := clampFloat(c.Components[0], 0, 1)
		return g, true

	case opstream.ColourRGB:
		r := clampFloat(c.Components[0], 0, 1)
		g := clampFloat(c.Components[1], 0, 1)
		b := clampFloat(c.Components[2], 0, 1)
		return rec709(r, g, b), true

	case opstream.ColourCMYK:
		cy := clampFloat(c.Components[0], 0, 1)
		m := clampFloat(c.Components[1], 0, 1)
		y := clampFloat(c.Components[2], 0, 1)
		k := clampFloat(c.Components[3], 0, 1)
		r := (1 - cy) * (1 - k)
		g := (1 - m) * (1 - k)
		b := (1 - y) * (1 - k)
		return rec709(r, g, b), true

	case opstream.ColourHex:
		r, g, b, ok := parseHexColour(c.Hex)
		if !ok {
			return 0, false
		}
		return rec709(r, g, b), true
	}
	return 0, false
}

// rec709 computes scalar luma from linear RGB components already
// normalised to [0,1].
func rec709(r, g, b float64) float64 {
	return clampFloat(0.2126*r+0.7152*g+0.0722*b, 0, 1)
}

// parseHexColour parses a "#RRGGBB" or "RRGGBB" literal into [0,1]
// components.
func parseHexColour(s string) (r, g, b float64, ok bool) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return 0, 0, 0, false
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, 0, 0, false
	}
	r = float64((v>>16)&0xff) / 255
	g = float64((v>>8)&0xff) / 255
	b = float64(v&0xff) / 255
	return r, g, b, true
}
