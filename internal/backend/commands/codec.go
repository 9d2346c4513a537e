package commands

import (
	"bytes"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

const defaultJpegQuality = 90

// normalizeFormat maps decoder and config names onto png, jpeg or gif.
func normalizeFormat(format string) string {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "jpg" {
		return "jpeg"
	}
	return format
}

// decodeImage decodes any registered format and reports its normalized name.
func decodeImage(data []byte) (image.Image, string, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}
	return img, normalizeFormat(format), nil
}

// encodeImage writes img as png, jpeg or gif. Other decoded formats are
// written as PNG since there is no encoder for them.
func encodeImage(img image.Image, format string, quality int) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	switch format {
	case "jpeg":
		if quality <= 0 {
			quality = defaultJpegQuality
		}
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality})
	case "gif":
		err = gif.Encode(&buf, img, nil)
	default:
		err = png.Encode(&buf, img)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to encode image to %s: %w", format, err)
	}
	return buf.Bytes(), nil
}

// hasCorrectSignature checks whether the provided data begins with a valid signature for the given image format.
func hasCorrectSignature(data []byte, format string) bool {
	switch format {
	case "png":
		// PNG signature: 0x89 'P' 'N' 'G' 0x0D 0x0A 0x1A 0x0A
		if len(data) < 8 {
			return false
		}
		expected := []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}
		return bytes.Equal(data[:8], expected)
	case "jpeg":
		// JPEG signature: 0xFF 0xD8 0xFF (third byte is a marker like 0xE0, 0xE1, etc.)
		if len(data) < 3 {
			return false
		}
		return data[0] == 0xFF && data[1] == 0xD8 && data[2] == 0xFF
	case "gif":
		// GIF signatures: "GIF87a" or "GIF89a"
		if len(data) < 6 {
			return false
		}
		sig := data[:6]
		return bytes.Equal(sig, []byte("GIF87a")) || bytes.Equal(sig, []byte("GIF89a"))
	default:
		return false
	}
}

// IsJPEG reports whether data starts with a JPEG signature.
func IsJPEG(data []byte) bool {
	return hasCorrectSignature(data, "jpeg")
}
