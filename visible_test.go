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
	"testing"

	"seehuhn.de/go/vectorscene/fixtures"
	"seehuhn.de/go/vectorscene/opstream"
)

func TestVisibleSetBuilderFindsNearbyOnly(t *testing.T) {
	rec := opstream.NewRecording()
	rec.AddPage(0, 0, 2000, 2000,
		fixtures.SetLineWidth(2),
		fixtures.Polyline([][2]float64{{0, 0}, {10, 0}}),
		fixtures.Polyline([][2]float64{{1900, 1900}, {1910, 1900}}),
	)
	scene, err := Build(context.Background(), nil, rec)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	grid := BuildGrid(scene)
	vb := NewVisibleSetBuilder(scene, grid)

	visible := vb.Build(5, 0, 4, 100, 100, true)
	if len(visible) != 1 {
		t.Fatalf("visible = %v, want exactly the one nearby stroke", visible)
	}
}

func TestVisibleSetBuilderCoverageEscapeHatch(t *testing.T) {
	rec := opstream.NewRecording()
	rec.AddPage(0, 0, 100, 100,
		fixtures.SetLineWidth(2),
		fixtures.Polyline([][2]float64{{0, 0}, {10, 0}}),
		fixtures.Polyline([][2]float64{{80, 80}, {90, 80}}),
	)
	scene, err := Build(context.Background(), nil, rec)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	grid := BuildGrid(scene)
	vb := NewVisibleSetBuilder(scene, grid)

	// Zoomed far out over the whole scene, not interacting: should hit
	// the "return everything" escape hatch.
	all := vb.Build(50, 50, 0.01, 100, 100, false)
	if len(all) != scene.StrokeCount {
		t.Fatalf("len(all) = %d, want %d strokes via the coverage escape hatch", len(all), scene.StrokeCount)
	}

	// Same view, but interacting: escape hatch must be disabled.
	interacting := vb.Build(50, 50, 0.01, 100, 100, true)
	if len(interacting) != scene.StrokeCount {
		t.Fatalf("len(interacting) = %d, want %d (still covers everything by grid walk)", len(interacting), scene.StrokeCount)
	}
}

func TestVisibleSetBuilderEmptySceneReturnsEmpty(t *testing.T) {
	rec := opstream.NewRecording()
	rec.AddPage(0, 0, 10, 10)
	scene, err := Build(context.Background(), nil, rec)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	grid := BuildGrid(scene)
	vb := NewVisibleSetBuilder(scene, grid)

	out := vb.Build(0, 0, 1, 10, 10, false)
	if len(out) != 0 {
		t.Fatalf("len(out) = %d, want 0", len(out))
	}
}

func TestVisibleSetBuilderDedupsSpanningMultipleCells(t *testing.T) {
	rec := opstream.NewRecording()
	rec.AddPage(0, 0, 5000, 5000,
		fixtures.SetLineWidth(2),
		// A long stroke spanning many grid cells must appear exactly once.
		fixtures.Polyline([][2]float64{{0, 0}, {4000, 0}}),
	)
	cfg := DefaultConfig()
	cfg.EnableSegmentMerge = false
	scene, err := Build(context.Background(), cfg, rec)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	grid := BuildGrid(scene)
	vb := NewVisibleSetBuilder(scene, grid)

	out := vb.Build(2000, 0, 1, 5000, 200, true)
	seen := make(map[int32]int)
	for _, idx := range out {
		seen[idx]++
	}
	for idx, n := range seen {
		if n != 1 {
			t.Fatalf("stroke %d appeared %d times, want exactly once", idx, n)
		}
	}
}
