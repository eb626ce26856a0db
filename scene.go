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
	"io"
	"log/slog"
	"math"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"

	"seehuhn.de/go/vectorscene/opstream"
)

// SourceKind selects how a caller's source string should be
// interpreted by the Open convenience wrapper.
type SourceKind int

const (
	SourceAuto SourceKind = iota
	SourceOperatorStream
	SourceParsedArchive
)

// Config is the configuration surface of §6. A nil *Config passed to
// Build is equivalent to DefaultConfig().
type Config struct {
	EnableSegmentMerge  bool
	EnableInvisibleCull bool
	MaxPages            int // 0 or negative: no limit
	PagesPerRow         int // 0: ceil(sqrt(page_count))
	CurveFlatness       float64
	MaxCurveSplitDepth  int
	SourceKind          SourceKind

	// MaxTextureSide bounds the side length of any packed texture; 0
	// disables the check. This is the "implementation-configured" GPU
	// maximum referenced by §7's resource-bound error kind.
	MaxTextureSide int

	// Logger receives operator-anomaly diagnostics (§7's "operator
	// anomaly" case). A nil Logger discards them.
	Logger *slog.Logger
}

// DefaultConfig returns the configuration surface's documented
// defaults.
func DefaultConfig() *Config {
	return &Config{
		EnableSegmentMerge:  true,
		EnableInvisibleCull: true,
		MaxPages:            0,
		PagesPerRow:         0,
		CurveFlatness:       defaultFlatness,
		MaxCurveSplitDepth:  maxCurveSplitDepth,
		SourceKind:          SourceAuto,
		MaxTextureSide:      0,
	}
}

func (c *Config) withDefaults() *Config {
	if c == nil {
		return DefaultConfig()
	}
	cp := *c
	if cp.CurveFlatness <= 0 {
		cp.CurveFlatness = defaultFlatness
	}
	if cp.MaxCurveSplitDepth <= 0 {
		cp.MaxCurveSplitDepth = maxCurveSplitDepth
	}
	return &cp
}

func (c *Config) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// FloatTexture is one packed RGBA32F texture: Width*Height texels,
// each four floats, row-major. LogicalCount is the number of leading
// records that are meaningful; the remainder is zero-filled padding
// the renderer must ignore, per §4.5.
type FloatTexture struct {
	Width, Height int
	LogicalCount  int
	Data          []float32
}

// RasterLayer is one decoded raster primitive: premultiplied RGBA8
// pixels plus the affine placement matrix mapping the unit image
// square into page space.
type RasterLayer struct {
	Width, Height int
	Pixels        []byte
	Matrix        matrix.Matrix
}

// VectorScene is the immutable, GPU-ready output of a build. Every
// array field is authoritative only up to the matching count field;
// physical storage may be padded per FloatTexture's layout.
type VectorScene struct {
	StrokeCount       int
	FillPathCount     int
	FillSegmentCount  int
	TextInstanceCount int
	GlyphCount        int
	GlyphSegmentCount int
	RasterLayerCount  int

	SourceSegmentCount    int
	MergedSegmentCount    int
	DiscardedTransparent  int
	DiscardedDegenerate   int
	DiscardedDuplicate    int
	DiscardedContained    int
	MalformedPathCount    int

	StrokeEndpoints       FloatTexture
	StrokePrimitiveMeta   FloatTexture
	StrokeStyles          FloatTexture
	StrokePrimitiveBounds FloatTexture

	FillPathMetaA FloatTexture
	FillPathMetaB FloatTexture
	FillPathMetaC FloatTexture
	FillSegmentsA FloatTexture
	FillSegmentsB FloatTexture

	TextInstanceMetaA FloatTexture
	TextInstanceMetaB FloatTexture
	TextInstanceMetaC FloatTexture
	GlyphMetaA        FloatTexture
	GlyphMetaB        FloatTexture
	GlyphSegmentsA    FloatTexture
	GlyphSegmentsB    FloatTexture

	Rasters []RasterLayer

	Bounds      rect.Rect
	PageBounds  rect.Rect
	PageRects   []rect.Rect
	PageCount   int
	PagesPerRow int

	MaxHalfWidth float64
}

// pageLayout is the page-composition geometry computed before any
// operator is interpreted, since it depends only on each page's view
// rectangle (§4.5's "Page composition").
type pageLayout struct {
	view      rect.Rect
	translate vec.Vec2
	dest      rect.Rect
}

const pageGap = 32.0

// Build consumes every page of h (subject to cfg.MaxPages) and
// produces a VectorScene, following the straight-pipeline,
// single-threaded-per-build model of §5: interpreter → flattener →
// merger → culler → packer. It checks ctx between pages and between
// operator chunks; on cancellation it returns ErrCancelled and no
// partial scene.
func Build(ctx context.Context, cfg *Config, h opstream.Handle) (*VectorScene, error) {
	cfg = cfg.withDefaults()
	logger := cfg.logger()

	pageCount := h.PageCount()
	if cfg.MaxPages > 0 && pageCount > cfg.MaxPages {
		pageCount = cfg.MaxPages
	}

	pagesPerRow := cfg.PagesPerRow
	if pagesPerRow <= 0 {
		pagesPerRow = int(math.Ceil(math.Sqrt(float64(max(pageCount, 1)))))
	}
	if pagesPerRow < 1 {
		pagesPerRow = 1
	}

	layouts := computePageLayouts(h, pageCount, pagesPerRow)

	var allStrokes []rawStroke
	var allFills []rawFillPath
	sourceSegTotal := 0
	malformedTotal := 0

	for idx := 0; idx < pageCount; idx++ {
		if ctx.Err() != nil {
			return nil, ErrCancelled
		}

		ops, err := h.PageOperators(ctx, idx)
		if err != nil {
			return nil, newBuildError(KindInvalidSource, "interpreter", "", err.Error(), err)
		}

		ip := newInterpreter(cfg, logger)
		ip.flat = newFlattenerWithConfig(cfg.CurveFlatness, cfg.MaxCurveSplitDepth)
		l := layouts[idx]
		ip.cur.ctm = matrix.Matrix{1, 0, 0, 1, l.translate.X, l.translate.Y}

		ip.run(ctx, ops)
		if ctx.Err() != nil {
			return nil, ErrCancelled
		}

		allStrokes = append(allStrokes, ip.strokes...)
		allFills = append(allFills, ip.fills...)
		sourceSegTotal += ip.sourceSegmentCount
		malformedTotal += ip.malformedPaths
	}

	mergedSegTotal := len(allStrokes)

	strokes, cullCounts := cullStrokes(allStrokes, cfg.EnableInvisibleCull)
	fills := cullFills(allFills)

	scene, err := packScene(cfg, strokes, fills, layouts, pagesPerRow)
	if err != nil {
		return nil, err
	}

	scene.SourceSegmentCount = sourceSegTotal
	scene.MergedSegmentCount = mergedSegTotal
	scene.DiscardedTransparent = cullCounts.transparent
	scene.DiscardedDegenerate = cullCounts.degenerate
	scene.DiscardedDuplicate = cullCounts.duplicate
	scene.DiscardedContained = cullCounts.contained
	scene.MalformedPathCount = malformedTotal

	return scene, nil
}

// computePageLayouts assigns each page a row-major grid cell and
// translation offset, per §4.5: within a row, every page shares that
// row's horizontal stride (the row's widest page) and the grid's
// vertical stride for that row (the row's tallest page), each plus a
// fixed 32-unit gap.
func computePageLayouts(h opstream.Handle, pageCount, pagesPerRow int) []pageLayout {
	layouts := make([]pageLayout, pageCount)
	if pageCount == 0 {
		return layouts
	}

	for i := 0; i < pageCount; i++ {
		minX, minY, maxX, maxY := h.PageView(i)
		layouts[i].view = rect.Rect{LLx: minX, LLy: minY, URx: maxX, URy: maxY}
	}

	var yOffset float64
	for rowStart := 0; rowStart < pageCount; rowStart += pagesPerRow {
		rowEnd := min(rowStart+pagesPerRow, pageCount)

		var strideX, strideY float64
		for j := rowStart; j < rowEnd; j++ {
			v := layouts[j].view
			strideX = math.Max(strideX, v.URx-v.LLx)
			strideY = math.Max(strideY, v.URy-v.LLy)
		}

		for j := rowStart; j < rowEnd; j++ {
			col := j - rowStart
			v := layouts[j].view
			tx := float64(col)*(strideX+pageGap) - v.LLx
			ty := yOffset - v.LLy
			layouts[j].translate = vec.Vec2{X: tx, Y: ty}
			layouts[j].dest = rect.Rect{
				LLx: tx + v.LLx,
				LLy: ty + v.LLy,
				URx: tx + v.URx,
				URy: ty + v.URy,
			}
		}

		yOffset += strideY + pageGap
	}

	return layouts
}
