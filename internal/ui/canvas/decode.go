package canvas

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// Source is a decoded image together with the bytes it came from
type Source struct {
	Name   string
	Format string
	Data   []byte
	Image  image.Image
}

// Size returns the pixel dimensions of the image
func (s *Source) Size() image.Point {
	return s.Image.Bounds().Size()
}

// Decode decodes data as png, jpeg, gif, bmp or webp
func Decode(name string, data []byte) (*Source, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", name, err)
	}
	return &Source{Name: name, Format: format, Data: data, Image: img}, nil
}

// Load reads and decodes the image file at path
func Load(path string) (*Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	return Decode(filepath.Base(path), data)
}
