package media

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif" // Register GIF decoder
	"image/jpeg"
	_ "image/png" // Register PNG decoder

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

// Post cards show images cropped to this size
const (
	ThumbnailWidth   = 960
	ThumbnailHeight  = 339
	thumbnailQuality = 85
)

var supportedFormats = map[string]string{
	"gif":  ".gif",
	"jpeg": ".jpg",
	"png":  ".png",
	"webp": ".webp",
}

// decodeImage decodes data and returns the image and its canonical file extension
func decodeImage(data []byte) (image.Image, string, error) {
	if len(data) == 0 {
		return nil, "", fmt.Errorf("%w: empty file", ErrInvalidImage)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}

	ext, ok := supportedFormats[format]
	if !ok {
		return nil, "", fmt.Errorf("%w: format %s", ErrInvalidImage, format)
	}
	return img, ext, nil
}

// thumbnail scales the image to cover the card area and crops the overflow.
// Small images are upscaled so every card has the same shape.
func thumbnail(img image.Image) ([]byte, error) {
	processed := imaging.Fill(img, ThumbnailWidth, ThumbnailHeight, imaging.Center, imaging.Lanczos)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, processed, &jpeg.Options{Quality: thumbnailQuality}); err != nil {
		return nil, fmt.Errorf("failed to encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}
