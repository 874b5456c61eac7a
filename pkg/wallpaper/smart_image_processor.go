package wallpaper

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"math"

	"github.com/disintegration/imaging"
	"github.com/muesli/smartcrop"
	_ "golang.org/x/image/webp" // register the webp decoder
)

// DefaultAspectThreshold is how far the image aspect ratio may be from the screen's before
// the image is cropped instead of only resized.
const DefaultAspectThreshold = 0.01

// smartImageProcessor fits artwork to the desktop, using smart cropping when the aspect ratio differs.
type smartImageProcessor struct {
	os              OS
	aspectThreshold float64
	resampler       imaging.ResampleFilter
}

func newSmartImageProcessor(o OS) *smartImageProcessor {
	return &smartImageProcessor{
		os:              o,
		aspectThreshold: DefaultAspectThreshold,
		resampler:       imaging.Lanczos,
	}
}

// DecodeImage decodes a jpeg, png or webp image.
func (c *smartImageProcessor) DecodeImage(ctx context.Context, r io.Reader) (image.Image, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}
	return img, checkContext(ctx)
}

// EncodeImage encodes an image as jpeg.
func (c *smartImageProcessor) EncodeImage(ctx context.Context, img image.Image) ([]byte, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 95}); err != nil {
		return nil, fmt.Errorf("encoding image: %w", err)
	}
	return buf.Bytes(), checkContext(ctx)
}

// FitImage scales and crops img to the desktop size. Images smaller than the desktop are
// returned unchanged and left for the OS to scale.
func (c *smartImageProcessor) FitImage(ctx context.Context, img image.Image) (image.Image, error) {
	systemWidth, systemHeight, err := c.os.getDesktopDimension()
	if err != nil {
		return nil, fmt.Errorf("getting desktop dimensions: %w", err)
	}
	if systemWidth <= 0 || systemHeight <= 0 {
		return nil, fmt.Errorf("invalid desktop dimensions %dx%d", systemWidth, systemHeight)
	}
	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	imageWidth := img.Bounds().Dx()
	imageHeight := img.Bounds().Dy()
	systemAspect := float64(systemWidth) / float64(systemHeight)
	imageAspect := float64(imageWidth) / float64(imageHeight)

	r := &resizer{resampler: c.resampler}

	switch {
	case imageWidth < systemWidth || imageHeight < systemHeight:
		return img, nil
	case imageWidth == systemWidth && imageHeight == systemHeight:
		return img, nil
	case math.Abs(systemAspect-imageAspect) <= c.aspectThreshold:
		resizedImg := r.resizeWithContext(ctx, img, uint(systemWidth), uint(systemHeight))
		if resizedImg == nil {
			return nil, ctx.Err()
		}
		return resizedImg, nil
	default:
		croppedImg, err := c.cropImage(ctx, img, systemWidth, systemHeight)
		if err != nil {
			return nil, fmt.Errorf("cropping image: %w", err)
		}
		return croppedImg, nil
	}
}

func (c *smartImageProcessor) cropImage(ctx context.Context, img image.Image, width, height int) (image.Image, error) {
	r := &resizer{resampler: c.resampler}
	analyzer := smartcrop.NewAnalyzer(r)

	type cropResult struct {
		crop image.Rectangle
		err  error
	}
	resultChan := make(chan cropResult, 1)

	go func() {
		topCrop, err := analyzer.FindBestCrop(img, width, height)
		resultChan <- cropResult{crop: topCrop, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case result := <-resultChan:
		if result.err != nil {
			return nil, fmt.Errorf("finding best crop: %w", result.err)
		}

		cropped := imaging.Crop(img, result.crop)
		resizedImg := r.resizeWithContext(ctx, cropped, uint(width), uint(height))
		if resizedImg == nil {
			return nil, ctx.Err()
		}
		return resizedImg, nil
	}
}

// resizer implements the smartcrop.Resizer interface.
type resizer struct {
	resampler imaging.ResampleFilter
}

// Resize satisfies smartcrop's resizer, which has no context.
func (r *resizer) Resize(img image.Image, width, height uint) image.Image {
	return imaging.Resize(img, int(width), int(height), r.resampler)
}

// resizeWithContext returns nil if ctx is cancelled before the resize finishes.
func (r *resizer) resizeWithContext(ctx context.Context, img image.Image, width, height uint) image.Image {
	resultChan := make(chan image.Image, 1)

	go func() {
		resultChan <- imaging.Resize(img, int(width), int(height), r.resampler)
	}()

	select {
	case <-ctx.Done():
		return nil
	case result := <-resultChan:
		return result
	}
}

func checkContext(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}
