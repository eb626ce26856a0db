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

// Package opstream defines the minimal operator-stream provider
// interface consumed by the extraction pipeline, plus an in-memory
// Recording implementation used by tests. A real
// host (a PDF content-stream parser, say) implements Provider against
// its own page model; nothing in this package depends on PDF itself.
package opstream

import "context"

// Opcode identifies one of the operators recognised by the
// interpreter. Unknown opcodes never appear in a well-formed
// Recording; a host Provider is expected to have already filtered its
// own opcode set down to these before handing operators to the
// pipeline.
type Opcode int

const (
	OpSave Opcode = iota
	OpRestore
	OpTransform
	OpSetLineWidth
	OpSetStrokeColour
	OpSetGState
	OpConstructPath
)

// PaintOp is the paint operator closing a construct_path operator. It
// determines whether, and how, the path is emitted to the stroke
// and/or fill subpipelines.
type PaintOp int

const (
	PaintNone PaintOp = iota
	PaintStroke
	PaintCloseStroke
	PaintFill
	PaintEOFill
	PaintFillStroke
	PaintEOFillStroke
	PaintCloseFillStroke
	PaintCloseEOFillStroke
)

// IsStroke reports whether p paints a stroke subpipeline output.
func (p PaintOp) IsStroke() bool {
	switch p {
	case PaintStroke, PaintCloseStroke, PaintFillStroke, PaintEOFillStroke,
		PaintCloseFillStroke, PaintCloseEOFillStroke:
		return true
	}
	return false
}

// IsFill reports whether p paints a fill subpipeline output, and if
// so, whether that fill uses the even-odd winding rule.
func (p PaintOp) IsFill() (fill bool, evenOdd bool) {
	switch p {
	case PaintFill, PaintFillStroke, PaintCloseFillStroke:
		return true, false
	case PaintEOFill, PaintEOFillStroke, PaintCloseEOFillStroke:
		return true, true
	}
	return false, false
}

// IsClosed reports whether the path's final subpath should be
// implicitly closed before stroking, per the paint operator.
func (p PaintOp) IsClosed() bool {
	switch p {
	case PaintCloseStroke, PaintCloseFillStroke, PaintCloseEOFillStroke:
		return true
	}
	return false
}

// PathCmd is one subcommand opcode inside a construct_path operator's
// packed path data.
type PathCmd int

const (
	PathMoveTo PathCmd = iota
	PathLineTo
	PathCurveTo
	PathQuadTo
	PathClose
)

// PathRecord is one subcommand of a construct_path operator. Points
// holds as many (x,y) pairs as the command consumes: 1 for MoveTo and
// LineTo, 2 for QuadTo, 3 for CurveTo, 0 for Close.
type PathRecord struct {
	Cmd    PathCmd
	Points [3][2]float64
}

// ColourSpace tags the operand shape of a set_stroke_colour operator.
type ColourSpace int

const (
	ColourGray ColourSpace = iota
	ColourRGB
	ColourCMYK
	ColourHex
	ColourInvalid
)

// ColourOperand is the operand of a set_stroke_colour operator.
// Components holds 1 (gray), 3 (rgb), or 4 (cmyk) meaningful entries;
// Hex holds the raw literal for ColourHex.
type ColourOperand struct {
	Space      ColourSpace
	Components [4]float64
	Hex        string
}

// GStateEntry is one (key, value) pair from a set_gstate operator.
// Only numeric entries are representable; non-numeric entries (and
// all keys besides "CA" and "LW") are ignored by the interpreter.
type GStateEntry struct {
	Key   string
	Value float64
}

// Operator is one parsed entry from a page's operator stream. Only
// the fields relevant to Op are meaningful; the rest are zero.
type Operator struct {
	Op Opcode

	Transform [6]float64    // OpTransform
	LineWidth float64       // OpSetLineWidth
	Colour    ColourOperand // OpSetStrokeColour
	GState    []GStateEntry // OpSetGState
	Paint     PaintOp       // OpConstructPath
	Path      []PathRecord  // OpConstructPath
}

// Handle is an opened operator-stream source. It is consumed
// page-by-page and is not restartable: PageOperators yields each
// page's sequence once.
type Handle interface {
	// PageCount returns the number of pages available.
	PageCount() int

	// PageOperators returns the finite operator sequence for page idx
	// as a range-over-func iterator. The sequence must not be
	// consumed more than once.
	PageOperators(ctx context.Context, idx int) (func(yield func(Operator) bool), error)

	// PageView returns the page's view rectangle (minX, minY, maxX, maxY)
	// in the host's native page-space units.
	PageView(idx int) (minX, minY, maxX, maxY float64)

	// PageViewTransform returns the affine mapping page space to the
	// orientation requested by rotation (a multiple of 90 degrees).
	PageViewTransform(idx int, rotation int) [6]float64

	// Close releases any resources held by the handle.
	Close() error
}

// Provider opens a named source and returns a Handle.
type Provider interface {
	Open(ctx context.Context, source string) (Handle, error)
}
