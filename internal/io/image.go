package ioutils

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/jpeg" // JPEG decoder registration
	"image/png"

	"golang.org/x/image/draw"
)

// ProfileIconSize is the edge length of launcher profile icons.
const ProfileIconSize = 128

// ImageService converts user supplied images into launcher profile icons.
//
// Example usage:
//
//	svc := NewImageService()
//	icon, err := svc.ProfileIcon(pngData)
//	// icon is "data:image/png;base64,..."
type ImageService struct{}

// NewImageService creates a new ImageService.
func NewImageService() *ImageService {
	return &ImageService{}
}

// ProfileIcon scales an image to fit a ProfileIconSize square, centres it on
// a transparent background and returns it as a PNG data URI.
//
// The aspect ratio is preserved. Smaller images are scaled up.
// The Catmull-Rom algorithm is used for resizing.
func (s *ImageService) ProfileIcon(data []byte) (string, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("decode icon: %w", err)
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width == 0 || height == 0 {
		return "", fmt.Errorf("decode icon: empty image")
	}

	// fit the longer edge
	if width >= height {
		height = height * ProfileIconSize / width
		width = ProfileIconSize
	} else {
		width = width * ProfileIconSize / height
		height = ProfileIconSize
	}
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, ProfileIconSize, ProfileIconSize))
	x := (ProfileIconSize - width) / 2
	y := (ProfileIconSize - height) / 2
	draw.CatmullRom.Scale(dst, image.Rect(x, y, x+width, y+height), img, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return "", err
	}

	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
