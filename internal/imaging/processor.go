package imaging

import (
	"bytes"
	"fmt"
	"image"
	"io"

	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	"github.com/nfnt/resize"
)

// Result holds the processed photo: a web-sized JPEG, its thumbnail, and the
// final pixel dimensions of the web-sized image.
type Result struct {
	Image     []byte
	Thumbnail []byte
	Width     int
	Height    int
}

// Processor turns uploaded photos into normalized JPEG derivatives.
type Processor interface {
	Process(r io.Reader) (Result, error)
}

const (
	maxWidth  = 1920
	maxHeight = 1080

	thumbWidth  = 400
	thumbHeight = 300

	imageQuality = 85
	thumbQuality = 80
)

// JPEGProcessor decodes JPEG, PNG and GIF uploads and re-encodes them as
// JPEG, downscaling anything larger than full HD.
type JPEGProcessor struct{}

// NewJPEGProcessor constructs the default photo processor.
func NewJPEGProcessor() *JPEGProcessor {
	return &JPEGProcessor{}
}

// Process decodes the upload and produces the web image and thumbnail.
func (p *JPEGProcessor) Process(r io.Reader) (Result, error) {
	src, _, err := image.Decode(r)
	if err != nil {
		return Result{}, fmt.Errorf("decode image: %w", err)
	}

	web := resize.Thumbnail(maxWidth, maxHeight, src, resize.Lanczos3)
	thumb := resize.Thumbnail(thumbWidth, thumbHeight, src, resize.Lanczos3)

	var imageBuf bytes.Buffer
	if err := jpeg.Encode(&imageBuf, web, &jpeg.Options{Quality: imageQuality}); err != nil {
		return Result{}, fmt.Errorf("encode image: %w", err)
	}

	var thumbBuf bytes.Buffer
	if err := jpeg.Encode(&thumbBuf, thumb, &jpeg.Options{Quality: thumbQuality}); err != nil {
		return Result{}, fmt.Errorf("encode thumbnail: %w", err)
	}

	bounds := web.Bounds()
	return Result{
		Image:     imageBuf.Bytes(),
		Thumbnail: thumbBuf.Bytes(),
		Width:     bounds.Dx(),
		Height:    bounds.Dy(),
	}, nil
}

var _ Processor = (*JPEGProcessor)(nil)
