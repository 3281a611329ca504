package normalizer

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const (
	maxSourceBytes   = 20 << 20
	DefaultMaxPixels = 40_000_000
)

// JPEGNormalizer decodes any supported image, scales it down to MaxWidth and
// re-encodes it as JPEG on a white background. Sources declaring more than
// MaxPixels pixels are rejected before their pixel data is decoded.
type JPEGNormalizer struct {
	MaxWidth  int
	MaxPixels int
	Quality   int
}

func NewJPEGNormalizer(maxWidth, maxPixels, quality int) *JPEGNormalizer {
	return &JPEGNormalizer{MaxWidth: maxWidth, MaxPixels: maxPixels, Quality: quality}
}

func (n *JPEGNormalizer) Normalize(src io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(src, maxSourceBytes))
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	if limit := n.maxPixels(); int64(cfg.Width)*int64(cfg.Height) > int64(limit) {
		return nil, fmt.Errorf("decode image: %dx%d exceeds %d pixels", cfg.Width, cfg.Height, limit)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w == 0 || h == 0 {
		return nil, fmt.Errorf("decode image: empty %dx%d image", w, h)
	}

	dstW, dstH := w, h
	if n.MaxWidth > 0 && w > n.MaxWidth {
		dstW = n.MaxWidth
		dstH = h * n.MaxWidth / w
		if dstH == 0 {
			dstH = 1
		}
	}

	dst := image.NewRGBA(image.Rect(0, 0, dstW, dstH))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	if dstW == w && dstH == h {
		draw.Draw(dst, dst.Bounds(), img, bounds.Min, draw.Over)
	} else {
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: n.quality()}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

func (n *JPEGNormalizer) maxPixels() int {
	if n.MaxPixels <= 0 {
		return DefaultMaxPixels
	}
	return n.MaxPixels
}

func (n *JPEGNormalizer) quality() int {
	if n.Quality < 1 || n.Quality > 100 {
		return jpeg.DefaultQuality
	}
	return n.Quality
}
