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

// Package archive reads and writes the parsed-scene archive format of
// §4.8: a named-file container holding manifest.json plus one binary
// payload per packed texture, so an independent implementation can
// round-trip a VectorScene.
package archive

import (
	"archive/zip"
	"compress/flate"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"

	"seehuhn.de/go/geom/rect"

	"seehuhn.de/go/vectorscene"
)

// FormatVersion is the manifest format version this package writes
// and the minimum it accepts on read.
const FormatVersion = 3

// Compression selects the zip storage method used for texture
// payloads; it maps directly onto archive/zip's own method constants.
type Compression int

const (
	Store Compression = iota
	Deflate
)

// WriteOptions controls archive encoding.
type WriteOptions struct {
	EncodeRasterImages bool
	Compression        Compression
	DeflateLevel       int // 0-9: zip deflate level when Compression == Deflate; also selects the PNG level of encoded rasters
}

// DefaultWriteOptions returns the documented defaults of §6's archive
// writer configuration surface.
func DefaultWriteOptions() WriteOptions {
	return WriteOptions{
		EncodeRasterImages: true,
		Compression:        Deflate,
		DeflateLevel:       6,
	}
}

type manifest struct {
	FormatVersion int             `json:"formatVersion"`
	Scene         sceneManifest   `json:"scene"`
	Textures      []textureEntry  `json:"textures"`
	SourcePdfFile string          `json:"sourcePdfFile,omitempty"`
}

type sceneManifest struct {
	StrokeCount       int `json:"strokeCount"`
	FillPathCount     int `json:"fillPathCount"`
	FillSegmentCount  int `json:"fillSegmentCount"`
	TextInstanceCount int `json:"textInstanceCount"`
	GlyphCount        int `json:"glyphCount"`
	GlyphSegmentCount int `json:"glyphSegmentCount"`
	RasterLayerCount  int `json:"rasterLayerCount"`

	SourceSegmentCount   int `json:"sourceSegmentCount"`
	MergedSegmentCount   int `json:"mergedSegmentCount"`
	DiscardedTransparent int `json:"discardedTransparent"`
	DiscardedDegenerate  int `json:"discardedDegenerate"`
	DiscardedDuplicate   int `json:"discardedDuplicate"`
	DiscardedContained   int `json:"discardedContained"`

	Bounds       [4]float64    `json:"bounds"`
	PageBounds   [4]float64    `json:"pageBounds"`
	PageRects    [][4]float64  `json:"pageRects"`
	PageCount    int           `json:"pageCount"`
	PagesPerRow  int           `json:"pagesPerRow"`
	MaxHalfWidth float64       `json:"maxHalfWidth"`
	RasterLayers []rasterEntry `json:"rasterLayers"`
}

type rasterEntry struct {
	Width    int        `json:"width"`
	Height   int        `json:"height"`
	Matrix   [6]float64 `json:"matrix"`
	File     string     `json:"file"`
	Encoding string     `json:"encoding"`
}

type textureEntry struct {
	Name               string `json:"name"`
	File               string `json:"file"`
	Width              int    `json:"width"`
	Height             int    `json:"height"`
	Channels           int    `json:"channels"`
	ComponentType      string `json:"componentType"`
	Layout             string `json:"layout"`
	LogicalItemCount   int    `json:"logicalItemCount"`
	LogicalFloatCount  int    `json:"logicalFloatCount"`
	PaddedFloatCount   int    `json:"paddedFloatCount"`
}

// namedTexture pairs a manifest texture name with the scene field it
// corresponds to, so writing and reading can share one table.
type namedTexture struct {
	name     string
	texture  *vectorscene.FloatTexture
	required bool
}

func texturesOf(scene *vectorscene.VectorScene) []namedTexture {
	return []namedTexture{
		{"stroke-endpoints", &scene.StrokeEndpoints, true},
		{"stroke-primitive-meta", &scene.StrokePrimitiveMeta, true},
		{"stroke-styles", &scene.StrokeStyles, true},
		{"stroke-primitive-bounds", &scene.StrokePrimitiveBounds, false},
		{"fill-path-meta-a", &scene.FillPathMetaA, false},
		{"fill-path-meta-b", &scene.FillPathMetaB, false},
		{"fill-path-meta-c", &scene.FillPathMetaC, false},
		{"fill-segments-a", &scene.FillSegmentsA, false},
		{"fill-segments-b", &scene.FillSegmentsB, false},
	}
}

// Write encodes scene as a named-file archive at path.
func Write(path string, scene *vectorscene.VectorScene, opts WriteOptions) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	method := uint16(zip.Store)
	if opts.Compression == Deflate {
		method = zip.Deflate
		level := opts.DeflateLevel
		zw.RegisterCompressor(zip.Deflate, func(w io.Writer) (io.WriteCloser, error) {
			return flate.NewWriter(w, level)
		})
	}

	m := manifest{
		FormatVersion: FormatVersion,
		Scene: sceneManifest{
			StrokeCount:          scene.StrokeCount,
			FillPathCount:        scene.FillPathCount,
			FillSegmentCount:     scene.FillSegmentCount,
			TextInstanceCount:    scene.TextInstanceCount,
			GlyphCount:           scene.GlyphCount,
			GlyphSegmentCount:    scene.GlyphSegmentCount,
			RasterLayerCount:     scene.RasterLayerCount,
			SourceSegmentCount:   scene.SourceSegmentCount,
			MergedSegmentCount:   scene.MergedSegmentCount,
			DiscardedTransparent: scene.DiscardedTransparent,
			DiscardedDegenerate:  scene.DiscardedDegenerate,
			DiscardedDuplicate:   scene.DiscardedDuplicate,
			DiscardedContained:   scene.DiscardedContained,
			Bounds:               rectTo4(scene.Bounds),
			PageBounds:           rectTo4(scene.PageBounds),
			PageRects:            rectsTo4(scene.PageRects),
			PageCount:            scene.PageCount,
			PagesPerRow:          scene.PagesPerRow,
			MaxHalfWidth:         scene.MaxHalfWidth,
		},
	}

	for _, nt := range texturesOf(scene) {
		if nt.texture.LogicalCount == 0 {
			continue
		}
		file := nt.name + ".bin"
		if err := writeTextureFile(zw, file, method, opts.DeflateLevel, *nt.texture); err != nil {
			return err
		}
		m.Textures = append(m.Textures, textureEntry{
			Name:              nt.name,
			File:              file,
			Width:             nt.texture.Width,
			Height:            nt.texture.Height,
			Channels:          4,
			ComponentType:     "float32",
			Layout:            "interleaved",
			LogicalItemCount:  nt.texture.LogicalCount,
			LogicalFloatCount: nt.texture.LogicalCount * 4,
			PaddedFloatCount:  nt.texture.Width * nt.texture.Height * 4,
		})
	}

	for i, r := range scene.Rasters {
		encoding := "raw"
		fileName := fmt.Sprintf("raster-%d.rgba", i)
		if opts.EncodeRasterImages {
			encoding = "png"
			fileName = fmt.Sprintf("raster-%d.png", i)
		}
		if err := writeRasterFile(zw, fileName, method, opts.DeflateLevel, r, encoding); err != nil {
			return err
		}
		m.Scene.RasterLayers = append(m.Scene.RasterLayers, rasterEntry{
			Width: r.Width, Height: r.Height, Matrix: [6]float64(r.Matrix),
			File: fileName, Encoding: encoding,
		})
	}

	mw, err := zw.CreateHeader(&zip.FileHeader{Name: "manifest.json", Method: zip.Store})
	if err != nil {
		return err
	}
	enc := json.NewEncoder(mw)
	enc.SetIndent("", "  ")
	if err := enc.Encode(m); err != nil {
		return err
	}

	return zw.Close()
}

func writeTextureFile(zw *zip.Writer, name string, method uint16, level int, tex vectorscene.FloatTexture) error {
	hdr := &zip.FileHeader{Name: name, Method: method}
	w, err := zw.CreateHeader(hdr)
	if err != nil {
		return err
	}
	buf := make([]byte, len(tex.Data)*4)
	for i, v := range tex.Data {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	_, err = w.Write(buf)
	return err
}

func rectTo4(r rect.Rect) [4]float64 {
	return [4]float64{r.LLx, r.LLy, r.URx, r.URy}
}

func rectsTo4(rs []rect.Rect) [][4]float64 {
	out := make([][4]float64, len(rs))
	for i, r := range rs {
		out[i] = rectTo4(r)
	}
	return out
}

// Read decodes a named-file archive at path back into a VectorScene.
func Read(path string) (*vectorscene.VectorScene, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, invalidSource(path, "cannot open archive", err)
	}
	defer zr.Close()

	files := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		files[f.Name] = f
	}

	mf, ok := files["manifest.json"]
	if !ok {
		return nil, invalidSource(path, "missing manifest.json", nil)
	}
	rc, err := mf.Open()
	if err != nil {
		return nil, invalidSource(path, "cannot open manifest.json", err)
	}
	var m manifest
	err = json.NewDecoder(rc).Decode(&m)
	rc.Close()
	if err != nil {
		return nil, invalidSource(path, "cannot parse manifest.json", err)
	}
	if m.FormatVersion < FormatVersion {
		return nil, invalidSource(path, fmt.Sprintf("unsupported formatVersion %d", m.FormatVersion), nil)
	}

	scene := &vectorscene.VectorScene{
		StrokeCount:          m.Scene.StrokeCount,
		FillPathCount:        m.Scene.FillPathCount,
		FillSegmentCount:     m.Scene.FillSegmentCount,
		TextInstanceCount:    m.Scene.TextInstanceCount,
		GlyphCount:           m.Scene.GlyphCount,
		GlyphSegmentCount:    m.Scene.GlyphSegmentCount,
		RasterLayerCount:     m.Scene.RasterLayerCount,
		SourceSegmentCount:   m.Scene.SourceSegmentCount,
		MergedSegmentCount:   m.Scene.MergedSegmentCount,
		DiscardedTransparent: m.Scene.DiscardedTransparent,
		DiscardedDegenerate:  m.Scene.DiscardedDegenerate,
		DiscardedDuplicate:   m.Scene.DiscardedDuplicate,
		DiscardedContained:   m.Scene.DiscardedContained,
		Bounds:               rectFrom4(m.Scene.Bounds),
		PageBounds:           rectFrom4(m.Scene.PageBounds),
		PageRects:            rectsFrom4(m.Scene.PageRects),
		PageCount:            m.Scene.PageCount,
		PagesPerRow:          m.Scene.PagesPerRow,
		MaxHalfWidth:         m.Scene.MaxHalfWidth,
	}

	byName := make(map[string]textureEntry, len(m.Textures))
	for _, t := range m.Textures {
		byName[t.Name] = t
	}

	for _, nt := range texturesOf(scene) {
		entry, ok := byName[nt.name]
		if !ok {
			if nt.required && scene.StrokeCount > 0 {
				return nil, invalidSource(path, "missing required texture "+nt.name, nil)
			}
			continue
		}
		tex, err := readTextureFile(files, path, entry)
		if err != nil {
			return nil, err
		}
		*nt.texture = tex
	}

	if scene.StrokePrimitiveBounds.LogicalCount == 0 && scene.StrokeCount > 0 {
		scene.StrokePrimitiveBounds = deriveStrokeBounds(scene)
	}

	migrateLegacyStrokeColour(scene)

	for _, re := range m.Scene.RasterLayers {
		f, ok := files[re.File]
		if !ok {
			return nil, invalidSource(path, "missing raster file "+re.File, nil)
		}
		pixels, err := decodeRaster(f, re.Encoding, re.Width, re.Height)
		if err != nil {
			return nil, invalidSource(path, "cannot decode raster "+re.File, err)
		}
		scene.Rasters = append(scene.Rasters, vectorscene.RasterLayer{
			Width: re.Width, Height: re.Height, Pixels: pixels,
			Matrix: re.Matrix,
		})
	}

	return scene, nil
}

func readTextureFile(files map[string]*zip.File, path string, entry textureEntry) (vectorscene.FloatTexture, error) {
	f, ok := files[entry.File]
	if !ok {
		return vectorscene.FloatTexture{}, invalidSource(path, "missing texture file "+entry.File, nil)
	}
	rc, err := f.Open()
	if err != nil {
		return vectorscene.FloatTexture{}, invalidSource(path, "cannot open "+entry.File, err)
	}
	defer rc.Close()
	raw, err := io.ReadAll(rc)
	if err != nil {
		return vectorscene.FloatTexture{}, invalidSource(path, "cannot read "+entry.File, err)
	}
	if len(raw) < entry.LogicalFloatCount*4 {
		return vectorscene.FloatTexture{}, truncated(path, entry.Name)
	}

	floats := make([]float32, len(raw)/4)
	if entry.Layout == "channel-major" {
		decodeChannelMajor(raw, floats)
	} else {
		for i := range floats {
			floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:]))
		}
	}

	return vectorscene.FloatTexture{
		Width:        entry.Width,
		Height:       entry.Height,
		LogicalCount: entry.LogicalItemCount,
		Data:         floats,
	}, nil
}

// decodeChannelMajor un-interleaves a channel-major payload (four
// consecutive planes, each paddedFloatCount/4 long) into the
// interleaved layout every in-memory FloatTexture uses.
func decodeChannelMajor(raw []byte, out []float32) {
	n := len(out) / 4
	for ch := 0; ch < 4; ch++ {
		plane := raw[ch*n*4:]
		for i := 0; i < n; i++ {
			out[i*4+ch] = math.Float32frombits(binary.LittleEndian.Uint32(plane[i*4:]))
		}
	}
}

// deriveStrokeBounds reconstructs primitive_bounds from endpoints and
// half-width, per §9's derived-texture rule, when an archive omits it.
func deriveStrokeBounds(scene *vectorscene.VectorScene) vectorscene.FloatTexture {
	n := scene.StrokeCount
	w := int(math.Ceil(math.Sqrt(float64(n))))
	h := int(math.Ceil(float64(n) / float64(max(w, 1))))
	out := make([]float32, w*h*4)
	for i := 0; i < n; i++ {
		e := scene.StrokeEndpoints.Data[i*4 : i*4+4]
		hw := float64(scene.StrokeStyles.Data[i*4])
		minX := math.Min(float64(e[0]), float64(e[2])) - hw - 0.35
		minY := math.Min(float64(e[1]), float64(e[3])) - hw - 0.35
		maxX := math.Max(float64(e[0]), float64(e[2])) + hw + 0.35
		maxY := math.Max(float64(e[1]), float64(e[3])) + hw + 0.35
		out[i*4], out[i*4+1], out[i*4+2], out[i*4+3] = float32(minX), float32(minY), float32(maxX), float32(maxY)
	}
	return vectorscene.FloatTexture{Width: w, Height: h, LogicalCount: n, Data: out}
}

// migrateLegacyStrokeColour handles an archive written before strokes
// carried a per-channel colour tile, detected by primitive_meta.w being
// zero for every stroke. It sets primitive_meta.w to 1 for every stroke
// (opaque, no style flags), since the legacy layout this migrates from
// never persisted a per-stroke alpha either. The styles tile is left as
// read: no luma is broadcast into its r, g, b channels.
func migrateLegacyStrokeColour(scene *vectorscene.VectorScene) {
	n := scene.StrokeCount
	if n == 0 {
		return
	}
	for i := 0; i < n; i++ {
		if scene.StrokePrimitiveMeta.Data[i*4+3] != 0 {
			return
		}
	}
	for i := 0; i < n; i++ {
		scene.StrokePrimitiveMeta.Data[i*4+3] = 1 // alpha=1, style_flags=0
	}
}

func rectFrom4(a [4]float64) rect.Rect {
	return rect.Rect{LLx: a[0], LLy: a[1], URx: a[2], URy: a[3]}
}

func rectsFrom4(a [][4]float64) []rect.Rect {
	out := make([]rect.Rect, len(a))
	for i, v := range a {
		out[i] = rectFrom4(v)
	}
	return out
}

func invalidSource(path, msg string, cause error) *vectorscene.BuildError {
	return vectorscene.NewBuildError(vectorscene.KindInvalidSource, "archive", path, msg, cause)
}

func truncated(path, name string) *vectorscene.BuildError {
	return vectorscene.NewBuildError(vectorscene.KindTruncatedTexture, "archive", path, "texture "+name+" shorter than logicalFloatCount", nil)
}
