package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"

	"golang.org/x/image/draw"
	"golang.org/x/image/webp"
)

// Compress downscales f so its width does not exceed maxWidth and re-encodes
// it. JPEG input stays JPEG at the given quality (1-100); other formats are
// re-encoded as PNG. Images already within maxWidth are returned unchanged.
func Compress(f *File, maxWidth, quality int) (*File, error) {
	img, err := decode(f)
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= maxWidth {
		return f, nil
	}

	newW := maxWidth
	newH := int(float64(h) * float64(maxWidth) / float64(w))
	if newH < 1 {
		newH = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)

	var buf bytes.Buffer
	out := &File{Name: f.Name}
	if f.MIMEType == "image/jpeg" {
		if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: quality}); err != nil {
			return nil, fmt.Errorf("encoding JPEG: %w", err)
		}
		out.MIMEType = "image/jpeg"
	} else {
		if err := png.Encode(&buf, dst); err != nil {
			return nil, fmt.Errorf("encoding PNG: %w", err)
		}
		out.MIMEType = "image/png"
	}
	out.Data = buf.Bytes()
	return out, nil
}

func decode(f *File) (image.Image, error) {
	r := bytes.NewReader(f.Data)
	var (
		img image.Image
		err error
	)
	switch f.MIMEType {
	case "image/jpeg":
		img, err = jpeg.Decode(r)
	case "image/png":
		img, err = png.Decode(r)
	case "image/gif":
		img, err = gif.Decode(r)
	case "image/webp":
		img, err = webp.Decode(r)
	default:
		return nil, fmt.Errorf("unsupported image format: %s", f.MIMEType)
	}
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}
	return img, nil
}
