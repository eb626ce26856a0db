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

// Command vsdump builds a VectorScene from a parsed-scene archive and
// prints a four-line summary of its counts and grid statistics,
// following the teacher's testcases/export and testcases/genpdf
// commands as small, direct library-driving entry points.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"seehuhn.de/go/vectorscene"
	"seehuhn.de/go/vectorscene/archive"
)

func main() {
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: vsdump <archive-path>")
		os.Exit(2)
	}

	if err := run(flag.Arg(0)); err != nil {
		fmt.Fprintln(os.Stderr, "vsdump:", err)
		os.Exit(1)
	}
}

func run(path string) error {
	scene, err := archive.Read(path)
	if err != nil {
		return err
	}

	grid := vectorscene.BuildGrid(scene)

	fmt.Printf("strokes=%d fills=%d (segments=%d) rasters=%d pages=%d (%d per row)\n",
		scene.StrokeCount, scene.FillPathCount, scene.FillSegmentCount, scene.RasterLayerCount,
		scene.PageCount, scene.PagesPerRow)
	fmt.Printf("source_segments=%d merged_segments=%d discarded(transparent=%d degenerate=%d duplicate=%d contained=%d)\n",
		scene.SourceSegmentCount, scene.MergedSegmentCount,
		scene.DiscardedTransparent, scene.DiscardedDegenerate, scene.DiscardedDuplicate, scene.DiscardedContained)
	fmt.Printf("bounds=%+v max_half_width=%.3f\n", scene.Bounds, scene.MaxHalfWidth)
	fmt.Printf("grid=%dx%d max_cell_population=%d\n", grid.GW, grid.GH, grid.MaxCellPopulation)

	slog.Debug("vsdump: build complete", "path", path)
	return nil
}
