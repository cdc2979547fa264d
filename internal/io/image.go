package ioutils

import (
	"bytes"
	"context"
	"image"
	_ "image/gif" // GIF decoder registration
	_ "image/jpeg"
	"image/png"

	_ "golang.org/x/image/bmp" // extra cover formats seen on IPFS
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// CoverInfo describes an encoded cover image.
type CoverInfo struct {
	Format string
	Width  int
	Height int
}

// ImageService provides image processing operations for downloaded covers.
//
// ImageService is used to:
//   - Identify the format and dimensions of a cover without decoding it fully
//   - Scale covers down to fit maximum dimensions, re-encoded as PNG
//
// Example usage:
//
//	svc := NewImageService()
//
//	info, err := svc.Probe(coverData)
//	fmt.Printf("%s %dx%d\n", info.Format, info.Width, info.Height)
//
//	small, err := svc.FitPNG(ctx, coverData, 1000, 1000)
type ImageService struct{}

// NewImageService creates a new ImageService.
func NewImageService() *ImageService {
	return &ImageService{}
}

// Probe reads the image header of data.
//
// PNG, JPEG, GIF, WebP, BMP and TIFF are recognised.
func (s *ImageService) Probe(data []byte) (CoverInfo, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return CoverInfo{}, err
	}
	return CoverInfo{Format: format, Width: cfg.Width, Height: cfg.Height}, nil
}

// FitPNG scales an image to fit within the specified maximum dimensions
// and encodes the result as PNG.
//
// The aspect ratio is preserved. An image that already fits is returned
// unchanged, without re-encoding.
//
// The Catmull-Rom algorithm is used for high-quality resizing.
//
// Example:
//
//	// A 3000x2000 cover becomes 1000x666
//	resized, err := svc.FitPNG(ctx, coverData, 1000, 1000)
func (s *ImageService) FitPNG(ctx context.Context, data []byte, maxWidth, maxHeight int) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	if width <= maxWidth && height <= maxHeight {
		return data, nil
	}

	ratio := float64(width) / float64(height)
	if float64(maxWidth)/float64(maxHeight) > ratio {
		// Height is the limiting factor
		width = max(int(float64(maxHeight)*ratio), 1)
		height = maxHeight
	} else {
		// Width is the limiting factor
		height = max(int(float64(maxWidth)/ratio), 1)
		width = maxWidth
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
