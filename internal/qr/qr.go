// Package qr encodes promo codes into scannable PNG images and reads codes
// back from staff-submitted photos. No code-format logic lives here.
package qr

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"

	"github.com/makiuchi-d/gozxing"
	zxqrcode "github.com/makiuchi-d/gozxing/qrcode"
	"github.com/skip2/go-qrcode"
)

type Generator struct {
	size int
}

func NewGenerator(size int) *Generator {
	return &Generator{size: size}
}

// Encode renders the code string as a PNG image.
func (g *Generator) Encode(code string) ([]byte, error) {
	png, err := qrcode.Encode(code, qrcode.Medium, g.size)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}
	return png, nil
}

// Decode extracts the embedded text from a photo. Any failure, including a
// photo with no recognizable QR code, is returned as an error.
func (g *Generator) Decode(photo []byte) (string, error) {
	img, _, err := image.Decode(bytes.NewReader(photo))
	if err != nil {
		return "", fmt.Errorf("decode image: %w", err)
	}

	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return "", fmt.Errorf("prepare bitmap: %w", err)
	}

	result, err := zxqrcode.NewQRCodeReader().Decode(bmp, nil)
	if err != nil {
		return "", fmt.Errorf("read qr: %w", err)
	}
	return result.GetText(), nil
}
