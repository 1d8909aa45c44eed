// Package flatfile implements texio.Reader over ordinary flat image
// files (PNG, JPEG, TGA) decoded with the standard image package plus
// the registered TGA decoder. A flat file has exactly one subimage
// (level 0) whose tile is the whole image — there is no MIP chain,
// matching a texture authored without pre-built lower-resolution
// levels.
package flatfile

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"os"

	_ "github.com/ftrvxmtrx/tga"

	"tiletexcore/internal/texspec"
)

// Reader decodes a single flat image file into an in-memory NRGBA
// buffer on Open, then serves ReadTile by copying the whole buffer.
type Reader struct {
	img *image.NRGBA
}

// New returns a texio.Reader backend for flat image files.
func New() *Reader {
	return &Reader{}
}

func (r *Reader) Open(path string) (texspec.Spec, error) {
	f, err := os.Open(path)
	if err != nil {
		return texspec.Spec{}, fmt.Errorf("flatfile: open %s: %w", path, err)
	}
	defer f.Close()

	src, _, err := image.Decode(f)
	if err != nil {
		return texspec.Spec{}, fmt.Errorf("flatfile: decode %s: %w", path, err)
	}
	r.img = toNRGBA(src)

	b := r.img.Bounds()
	w, h := b.Dx(), b.Dy()
	return texspec.Spec{
		Level: texspec.Level{
			Width: w, Height: h, Depth: 1,
			FullWidth: w, FullHeight: h,
			TileWidth: w, TileHeight: h, TileDepth: 1,
			Channels: 4,
			Format:   texspec.Float32,
		},
	}, nil
}

func (r *Reader) SeekSubimage(level int) (texspec.Spec, bool) {
	return texspec.Spec{}, false
}

func (r *Reader) CurrentSubimage() int { return 0 }

func (r *Reader) ReadTile(x, y, z int, format texspec.PixelFormat, dst []float32) bool {
	if r.img == nil || format != texspec.Float32 || x != 0 || y != 0 || z != 0 {
		return false
	}
	b := r.img.Bounds()
	w, h := b.Dx(), b.Dy()
	if len(dst) < w*h*4 {
		return false
	}
	off := 0
	for py := 0; py < h; py++ {
		for px := 0; px < w; px++ {
			i := r.img.PixOffset(b.Min.X+px, b.Min.Y+py)
			dst[off+0] = float32(r.img.Pix[i+0]) / 255
			dst[off+1] = float32(r.img.Pix[i+1]) / 255
			dst[off+2] = float32(r.img.Pix[i+2]) / 255
			dst[off+3] = float32(r.img.Pix[i+3]) / 255
			off += 4
		}
	}
	return true
}

func (r *Reader) Close() error {
	r.img = nil
	return nil
}

func (r *Reader) FormatName() string { return "flatfile" }

func toNRGBA(src image.Image) *image.NRGBA {
	if n, ok := src.(*image.NRGBA); ok {
		return n
	}
	b := src.Bounds()
	dst := image.NewNRGBA(b)
	switch src.(type) {
	case *image.YCbCr, *image.Gray:
		draw.Draw(dst, b, src, b.Min, draw.Src)
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				dst.Pix[dst.PixOffset(x, y)+3] = 255
			}
		}
	default:
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				c := color.NRGBAModel.Convert(src.At(x, y)).(color.NRGBA)
				i := dst.PixOffset(x, y)
				dst.Pix[i], dst.Pix[i+1], dst.Pix[i+2], dst.Pix[i+3] = c.R, c.G, c.B, c.A
			}
		}
	}
	return dst
}
