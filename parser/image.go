package parser

import (
	"bytes"
	"errors"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	"golang.org/x/image/webp"
)

// ImageInfo is what the cover filter needs to know about a downloaded image.
type ImageInfo struct {
	Format string
	Width  int
	Height int
}

// Matches reports whether the image has exactly the given pixel size.
func (i ImageInfo) Matches(width, height int) bool {
	return i.Width == width && i.Height == height
}

func (i ImageInfo) String() string {
	return fmt.Sprintf("%s %dx%d", i.Format, i.Width, i.Height)
}

// detectImageFormat reads the magic bytes and returns the image format string
func detectImageFormat(data []byte) (string, error) {
	if len(data) < 12 {
		return "", errors.New("data too short to determine format")
	}

	if data[0] == 0xFF && data[1] == 0xD8 && data[2] == 0xFF {
		return "jpeg", nil
	}
	if data[0] == 0x89 && data[1] == 0x50 && data[2] == 0x4E && data[3] == 0x47 {
		return "png", nil
	}
	if string(data[0:6]) == "GIF87a" || string(data[0:6]) == "GIF89a" {
		return "gif", nil
	}
	if string(data[0:4]) == "RIFF" && string(data[8:12]) == "WEBP" {
		return "webp", nil
	}

	return "", errors.New("unknown image format")
}

// InspectImage decodes imgBytes and returns its format and pixel size.
// The whole image is decoded so truncated downloads are rejected.
func InspectImage(imgBytes []byte) (ImageInfo, error) {
	if len(imgBytes) == 0 {
		return ImageInfo{}, errors.New("empty image data")
	}

	format, err := detectImageFormat(imgBytes)
	if err != nil {
		return ImageInfo{}, err
	}

	var img image.Image
	reader := bytes.NewReader(imgBytes)

	switch format {
	case "webp":
		img, err = webp.Decode(reader)
	default:
		img, err = imaging.Decode(reader, imaging.AutoOrientation(false))
	}
	if err != nil {
		return ImageInfo{}, fmt.Errorf("failed to decode %s image: %w", format, err)
	}

	bounds := img.Bounds()
	return ImageInfo{
		Format: format,
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
	}, nil
}
