package carrier

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"

	// Decoders accepted as input carriers. Output is always PNG.
	_ "image/gif"
	_ "image/jpeg"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/faanross/stegocrypt/internal/spec"
)

// ImageCarrier holds an opaque 8-bit RGB pixel grid. Slots run row-major,
// then R, G, B within each pixel.
type ImageCarrier struct {
	Img    *image.NRGBA
	Format string
}

// DefaultMaxPixels caps width*height of image carriers, about 160 MiB of
// decoded NRGBA.
const DefaultMaxPixels = 40_000_000

// LoadImage decodes r and converts it to an RGB grid. Alpha is discarded.
func LoadImage(r io.Reader) (*ImageCarrier, error) {
	return LoadImageLimited(r, DefaultMaxPixels)
}

// LoadImageLimited is LoadImage with a cap on width*height, checked against
// the header before any pixel data is decoded. maxPixels <= 0 disables it.
func LoadImageLimited(r io.Reader, maxPixels int) (*ImageCarrier, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading image failed: %w", err)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCarrierFormat, err)
	}
	if maxPixels > 0 && cfg.Width*cfg.Height > maxPixels {
		return nil, fmt.Errorf("%w: %dx%d image exceeds %d pixels",
			ErrCarrierFormat, cfg.Width, cfg.Height, maxPixels)
	}

	src, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCarrierFormat, err)
	}
	return NewImageCarrier(src, format), nil
}

// NewImageCarrier copies src into a fresh opaque grid anchored at (0, 0).
func NewImageCarrier(src image.Image, format string) *ImageCarrier {
	bounds := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))

	// Straight-alpha sources are copied as-is so colour under transparent
	// pixels survives; everything else goes through the colour model.
	if nrgba, ok := src.(*image.NRGBA); ok {
		for y := 0; y < bounds.Dy(); y++ {
			start := nrgba.PixOffset(bounds.Min.X, bounds.Min.Y+y)
			copy(dst.Pix[y*dst.Stride:(y+1)*dst.Stride], nrgba.Pix[start:start+dst.Stride])
		}
	} else {
		draw.Draw(dst, dst.Bounds(), src, bounds.Min, draw.Src)
	}

	for i := 3; i < len(dst.Pix); i += 4 {
		dst.Pix[i] = 0xFF
	}

	return &ImageCarrier{Img: dst, Format: format}
}

func (c *ImageCarrier) Width() int {
	return c.Img.Bounds().Dx()
}

func (c *ImageCarrier) Height() int {
	return c.Img.Bounds().Dy()
}

// SlotPosition maps slot i to its pixel coordinates and channel index
// (0 = R, 1 = G, 2 = B).
func (c *ImageCarrier) SlotPosition(i int) (row, col, channel int) {
	pixel := i / spec.CHANNELS
	return pixel / c.Width(), pixel % c.Width(), i % spec.CHANNELS
}

func (c *ImageCarrier) offset(i int) int {
	row, col, channel := c.SlotPosition(i)
	return c.Img.PixOffset(col, row) + channel
}

// Len is the capacity in bits: width * height * 3.
func (c *ImageCarrier) Len() int {
	return c.Width() * c.Height() * spec.CHANNELS
}

func (c *ImageCarrier) Get(i int) byte {
	return c.Img.Pix[c.offset(i)]
}

func (c *ImageCarrier) Set(i int, v byte) {
	c.Img.Pix[c.offset(i)] = v
}

// RGB returns the colour at (x, y) without alpha.
func (c *ImageCarrier) RGB(x, y int) color.RGBA {
	p := c.Img.NRGBAAt(x, y)
	return color.RGBA{R: p.R, G: p.G, B: p.B, A: 0xFF}
}

// Encode writes the grid as PNG. Every pixel is opaque, so the encoder
// emits 8-bit truecolour without alpha.
func (c *ImageCarrier) Encode(w io.Writer) error {
	if err := png.Encode(w, c.Img); err != nil {
		return fmt.Errorf("PNG encoding failed: %w", err)
	}
	return nil
}
