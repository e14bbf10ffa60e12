package cli

import (
	"bytes"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// LoadImage reads an image file and returns it along with the format name
// reported by the registered decoder (png, jpeg, gif, bmp, tiff, webp).
func LoadImage(path string) (image.Image, string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, "", err
	}
	img, format, err := image.Decode(bytes.NewReader(b))
	if err != nil {
		return nil, "", fmt.Errorf("decode %s: %w", path, err)
	}
	return img, format, nil
}

// SaveImage writes img using the encoder implied by the file extension.
// Supports .png, .jpg/.jpeg, .gif, .bmp and .tif/.tiff; anything else is
// written as PNG.
func SaveImage(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := encodeByExt(f, filepath.Ext(path), img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

func encodeByExt(f *os.File, ext string, img image.Image) error {
	switch strings.ToLower(ext) {
	case ".jpg", ".jpeg":
		return jpeg.Encode(f, img, &jpeg.Options{Quality: 92})
	case ".gif":
		return gif.Encode(f, img, nil)
	case ".bmp":
		return bmp.Encode(f, img)
	case ".tif", ".tiff":
		return tiff.Encode(f, img, &tiff.Options{Compression: tiff.Deflate})
	default:
		return png.Encode(f, img)
	}
}

// ImageInfo returns a short description of img.
func ImageInfo(img image.Image, format string) (string, error) {
	if img == nil {
		return "", fmt.Errorf("nil image")
	}
	if format == "" {
		format = "unknown"
	}
	b := img.Bounds()
	return fmt.Sprintf("Format: %s, Width: %d, Height: %d", strings.ToUpper(format), b.Dx(), b.Dy()), nil
}
