// Package imagenorm re-encodes uploaded puzzle pictures into a bounded-width JPEG.
package imagenorm

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"sync"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-puzzle-api/internal/domain"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// OutputMIME is the only format Normalize produces.
const OutputMIME = "image/jpeg"

const (
	jpegQuality = 85
	// maxPixels bounds the decoded bitmap so a small compressed file cannot
	// expand into gigabytes of memory.
	maxPixels = 50_000_000
)

var acceptedMIME = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}

// Normalizer is stateless apart from its limits and safe for concurrent use.
type Normalizer struct {
	maxWidth int
	maxBytes int64
}

func New(maxWidth int, maxBytes int64) *Normalizer {
	return &Normalizer{maxWidth: maxWidth, maxBytes: maxBytes}
}

// MaxBytes is the upload ceiling; transports use it to bound request bodies.
func (n *Normalizer) MaxBytes() int64 { return n.maxBytes }

// Normalize returns nil for an absent image, otherwise the image re-encoded
// as JPEG with a width of at most maxWidth. Height scales proportionally and
// smaller images are never enlarged.
func (n *Normalizer) Normalize(ctx context.Context, raw []byte) ([]byte, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	if int64(len(raw)) > n.maxBytes {
		return nil, fmt.Errorf("%d bytes exceeds limit of %d: %w", len(raw), n.maxBytes, domain.ErrImageTooLarge)
	}
	mt := mimetype.Detect(raw)
	if !mimetype.EqualsAny(mt.String(), acceptedMIME...) {
		return nil, fmt.Errorf("detected %s: %w", mt.String(), domain.ErrUnsupportedImage)
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("read image header: %w", domain.ErrUnsupportedImage)
	}
	if cfg.Width*cfg.Height > maxPixels {
		return nil, fmt.Errorf("%dx%d pixels: %w", cfg.Width, cfg.Height, domain.ErrImageTooLarge)
	}
	src, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", domain.ErrUnsupportedImage)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return encode(n.fit(src))
}

// fit scales src down to maxWidth and flattens transparency onto white,
// since JPEG has no alpha channel.
func (n *Normalizer) fit(src image.Image) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w > n.maxWidth {
		h = max(1, h*n.maxWidth/w)
		w = n.maxWidth
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	if w == b.Dx() && h == b.Dy() {
		draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Over)
	} else {
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	}
	return dst
}

func encode(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// DataURI renders an encoded image for inline display.
func DataURI(img []byte) string {
	return "data:" + OutputMIME + ";base64," + base64.StdEncoding.EncodeToString(img)
}

var (
	placeholderOnce sync.Once
	placeholderURI  string
)

// PlaceholderURI is shown for records that have no image of their own.
func PlaceholderURI() string {
	placeholderOnce.Do(func() {
		img := image.NewRGBA(image.Rect(0, 0, 300, 200))
		draw.Draw(img, img.Bounds(), image.NewUniform(color.RGBA{R: 0xe0, G: 0xe0, B: 0xe0, A: 0xff}), image.Point{}, draw.Src)
		// a darker inner frame so the tile reads as "no picture"
		inner := image.Rect(20, 20, 280, 180)
		draw.Draw(img, inner, image.NewUniform(color.RGBA{R: 0xc8, G: 0xc8, B: 0xc8, A: 0xff}), image.Point{}, draw.Src)
		b, err := encode(img)
		if err != nil {
			panic("imagenorm: encode placeholder: " + err.Error())
		}
		placeholderURI = DataURI(b)
	})
	return placeholderURI
}
