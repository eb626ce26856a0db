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

package opstream

import (
	"context"
	"fmt"
)

// Page is one page of a Recording: a finite operator list plus the
// view geometry the interpreter needs for page composition.
type Page struct {
	Operators []Operator
	ViewMinX  float64
	ViewMinY  float64
	ViewMaxX  float64
	ViewMaxY  float64
}

// Recording is an in-memory, hand-built Handle used by tests to drive
// the pipeline without a real host parser attached, mirroring the teacher's testcases package of hand-built
// path.Data fixtures.
type Recording struct {
	Pages []Page
}

var _ Handle = (*Recording)(nil)

// NewRecording returns an empty Recording ready to have pages
// appended to it.
func NewRecording() *Recording {
	return &Recording{}
}

// AddPage appends a page built from ops, with the given view
// rectangle, and returns its index.
func (r *Recording) AddPage(minX, minY, maxX, maxY float64, ops ...Operator) int {
	r.Pages = append(r.Pages, Page{
		Operators: ops,
		ViewMinX:  minX,
		ViewMinY:  minY,
		ViewMaxX:  maxX,
		ViewMaxY:  maxY,
	})
	return len(r.Pages) - 1
}

func (r *Recording) PageCount() int {
	return len(r.Pages)
}

func (r *Recording) PageOperators(ctx context.Context, idx int) (func(yield func(Operator) bool), error) {
	if idx < 0 || idx >= len(r.Pages) {
		return nil, fmt.Errorf("opstream: page %d out of range [0,%d)", idx, len(r.Pages))
	}
	ops := r.Pages[idx].Operators
	return func(yield func(Operator) bool) {
		for _, op := range ops {
			if ctx.Err() != nil {
				return
			}
			if !yield(op) {
				return
			}
		}
	}, nil
}

func (r *Recording) PageView(idx int) (minX, minY, maxX, maxY float64) {
	p := r.Pages[idx]
	return p.ViewMinX, p.ViewMinY, p.ViewMaxX, p.ViewMaxY
}

func (r *Recording) PageViewTransform(idx int, rotation int) [6]float64 {
	switch ((rotation % 360) + 360) % 360 {
	case 90:
		return [6]float64{0, 1, -1, 0, 0, 0}
	case 180:
		return [6]float64{-1, 0, 0, -1, 0, 0}
	case 270:
		return [6]float64{0, -1, 1, 0, 0, 0}
	default:
		return [6]float64{1, 0, 0, 1, 0, 0}
	}
}

func (r *Recording) Close() error {
	return nil
}

// InMemoryProvider resolves a source name to a pre-built Recording,
// for tests that want Provider's indirection without a real host
// parser.
type InMemoryProvider map[string]*Recording

var _ Provider = InMemoryProvider(nil)

func (p InMemoryProvider) Open(ctx context.Context, source string) (Handle, error) {
	rec, ok := p[source]
	if !ok {
		return nil, fmt.Errorf("opstream: unknown source %q", source)
	}
	return rec, nil
}
