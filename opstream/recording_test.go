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

package opstream_test

import (
	"context"
	"testing"

	"seehuhn.de/go/vectorscene/opstream"
)

func TestRecordingPageOperators(t *testing.T) {
	rec := opstream.NewRecording()
	idx := rec.AddPage(0, 0, 100, 100,
		opstream.Operator{Op: opstream.OpSave},
		opstream.Operator{Op: opstream.OpSetLineWidth, LineWidth: 2},
		opstream.Operator{Op: opstream.OpRestore},
	)
	if idx != 0 {
		t.Fatalf("AddPage returned index %d, want 0", idx)
	}
	if rec.PageCount() != 1 {
		t.Fatalf("PageCount = %d, want 1", rec.PageCount())
	}

	iter, err := rec.PageOperators(context.Background(), 0)
	if err != nil {
		t.Fatalf("PageOperators: %v", err)
	}
	var got []opstream.Opcode
	iter(func(op opstream.Operator) bool {
		got = append(got, op.Op)
		return true
	})
	want := []opstream.Opcode{opstream.OpSave, opstream.OpSetLineWidth, opstream.OpRestore}
	if len(got) != len(want) {
		t.Fatalf("got %d ops, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("op[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestRecordingPageOperatorsStopsEarly(t *testing.T) {
	rec := opstream.NewRecording()
	rec.AddPage(0, 0, 10, 10,
		opstream.Operator{Op: opstream.OpSave},
		opstream.Operator{Op: opstream.OpRestore},
		opstream.Operator{Op: opstream.OpSave},
	)
	iter, err := rec.PageOperators(context.Background(), 0)
	if err != nil {
		t.Fatalf("PageOperators: %v", err)
	}
	n := 0
	iter(func(op opstream.Operator) bool {
		n++
		return n < 1 // stop after the first op
	})
	if n != 1 {
		t.Fatalf("yield was called %d times after early stop, want 1", n)
	}
}

func TestRecordingPageOperatorsOutOfRange(t *testing.T) {
	rec := opstream.NewRecording()
	rec.AddPage(0, 0, 10, 10)
	if _, err := rec.PageOperators(context.Background(), 5); err == nil {
		t.Fatal("expected an error for an out-of-range page index")
	}
}

func TestRecordingPageViewTransform(t *testing.T) {
	rec := opstream.NewRecording()
	rec.AddPage(0, 0, 10, 10)

	id := rec.PageViewTransform(0, 0)
	if id != [6]float64{1, 0, 0, 1, 0, 0} {
		t.Fatalf("rotation 0 = %v, want identity", id)
	}

	r90 := rec.PageViewTransform(0, 90)
	if r90 != [6]float64{0, 1, -1, 0, 0, 0} {
		t.Fatalf("rotation 90 = %v", r90)
	}

	// Negative and >360 rotations normalise the same as their positive
	// equivalent modulo 360.
	rNeg := rec.PageViewTransform(0, -270)
	if rNeg != r90 {
		t.Fatalf("rotation -270 = %v, want %v (same as 90)", rNeg, r90)
	}
}

func TestInMemoryProviderOpen(t *testing.T) {
	rec := opstream.NewRecording()
	rec.AddPage(0, 0, 10, 10)
	p := opstream.InMemoryProvider{"doc-a": rec}

	h, err := p.Open(context.Background(), "doc-a")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if h.PageCount() != 1 {
		t.Fatalf("PageCount = %d, want 1", h.PageCount())
	}

	if _, err := p.Open(context.Background(), "missing"); err == nil {
		t.Fatal("expected an error opening an unknown source")
	}
}

func TestPaintOpClassification(t *testing.T) {
	cases := []struct {
		op             opstream.PaintOp
		stroke         bool
		fill, evenOdd  bool
		closed         bool
	}{
		{opstream.PaintNone, false, false, false, false},
		{opstream.PaintStroke, true, false, false, false},
		{opstream.PaintCloseStroke, true, false, false, true},
		{opstream.PaintFill, false, true, false, false},
		{opstream.PaintEOFill, false, true, true, false},
		{opstream.PaintFillStroke, true, true, false, false},
		{opstream.PaintEOFillStroke, true, true, true, false},
		{opstream.PaintCloseFillStroke, true, true, false, true},
		{opstream.PaintCloseEOFillStroke, true, true, true, true},
	}
	for _, c := range cases {
		if got := c.op.IsStroke(); got != c.stroke {
			t.Errorf("%v.IsStroke() = %v, want %v", c.op, got, c.stroke)
		}
		fill, evenOdd := c.op.IsFill()
		if fill != c.fill || evenOdd != c.evenOdd {
			t.Errorf("%v.IsFill() = (%v,%v), want (%v,%v)", c.op, fill, evenOdd, c.fill, c.evenOdd)
		}
		if got := c.op.IsClosed(); got != c.closed {
			t.Errorf("%v.IsClosed() = %v, want %v", c.op, got, c.closed)
		}
	}
}
