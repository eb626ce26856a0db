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

package archive

import (
	"archive/zip"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"io"

	"golang.org/x/image/webp"

	"seehuhn.de/go/vectorscene"
)

// writeRasterFile encodes one raster layer's premultiplied RGBA8
// pixels as PNG (encoding == "png") or as a raw .rgba payload
// (anything else), per §4.8/§9's premultiplied-alpha convention —
// Go's image.RGBA is itself alpha-premultiplied, so no conversion is
// needed before handing pixels to image/png.
func writeRasterFile(zw *zip.Writer, name string, method uint16, level int, layer vectorscene.RasterLayer, encoding string) error {
	w, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: method})
	if err != nil {
		return err
	}

	if encoding != "png" {
		_, err = w.Write(layer.Pixels)
		return err
	}

	img := &image.RGBA{
		Pix:    layer.Pixels,
		Stride: layer.Width * 4,
		Rect:   image.Rect(0, 0, layer.Width, layer.Height),
	}
	enc := &png.Encoder{CompressionLevel: pngLevel(level)}
	return enc.Encode(w, img)
}

func pngLevel(level int) png.CompressionLevel {
	switch {
	case level <= 0:
		return png.NoCompression
	case level <= 3:
		return png.BestSpeed
	case level >= 8:
		return png.BestCompression
	default:
		return png.DefaultCompression
	}
}

// decodeRaster reads and decodes one raster layer file according to
// its declared encoding, returning premultiplied RGBA8 pixels in
// row-major order.
func decodeRaster(f *zip.File, encoding string, width, height int) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	switch encoding {
	case "png":
		img, err := png.Decode(rc)
		if err != nil {
			return nil, err
		}
		return toPremultipliedRGBA(img, width, height), nil

	case "webp":
		img, err := webp.Decode(rc)
		if err != nil {
			return nil, err
		}
		return toPremultipliedRGBA(img, width, height), nil

	case "raw", "":
		raw, err := io.ReadAll(rc)
		if err != nil {
			return nil, err
		}
		if len(raw) < width*height*4 {
			return nil, fmt.Errorf("archive: raw raster shorter than width*height*4")
		}
		return raw[:width*height*4], nil

	default:
		return nil, fmt.Errorf("archive: unknown raster encoding %q", encoding)
	}
}

// toPremultipliedRGBA converts any decoded image.Image to premultiplied
// RGBA8 bytes; image.RGBA's own Pix is already in that layout, so this
// is a plain draw.Draw when the source isn't already image.RGBA.
func toPremultipliedRGBA(img image.Image, width, height int) []byte {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Stride == width*4 && rgba.Rect == image.Rect(0, 0, width, height) {
		return rgba.Pix
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(dst, dst.Bounds(), img, img.Bounds().Min, draw.Src)
	return dst.Pix
}
