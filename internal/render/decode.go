package render

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"

	"github.com/h2non/filetype"
	_ "golang.org/x/image/tiff"
)

// ErrUnsupportedImage is returned for photo blobs that cannot be drawn.
var ErrUnsupportedImage = errors.New("unsupported image")

var supportedMIME = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/tiff": true,
}

// SupportedFormats returns the file extensions a photo may have.
func SupportedFormats() []string {
	return []string{".jpg", ".jpeg", ".png", ".tif", ".tiff"}
}

// DecodePhoto sniffs and decodes an encoded still.
func DecodePhoto(blob []byte) (image.Image, error) {
	kind, err := filetype.Match(blob)
	if err != nil || !supportedMIME[kind.MIME.Value] {
		return nil, fmt.Errorf("photo of type %s: %w", kind.Extension, ErrUnsupportedImage)
	}
	img, _, err := image.Decode(bytes.NewReader(blob))
	if err != nil {
		return nil, fmt.Errorf("failed to decode photo: %w: %w", ErrUnsupportedImage, err)
	}
	return img, nil
}
