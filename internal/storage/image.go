package storage

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

var (
	ErrUnsupportedImage = errors.New("storage: unsupported image format")
	ErrImageTooLarge    = errors.New("storage: image too large")
)

const MaxImageBytes = 10 << 20

// Image is a stored upload with the natural size the zone editor fits
// into its container.
type Image struct {
	Key    string `json:"key"`
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Format string `json:"format"`
}

// ImageIntake validates uploads and downscales anything wider or taller
// than maxDim. Zones use relative coordinates, so resizing never moves
// them.
type ImageIntake struct {
	store  BlobStore
	maxDim int
}

func NewImageIntake(store BlobStore, maxDim int) *ImageIntake {
	return &ImageIntake{store: store, maxDim: maxDim}
}

func (in *ImageIntake) Ingest(r io.Reader, filename string) (Image, error) {
	all, err := io.ReadAll(io.LimitReader(r, MaxImageBytes+1))
	if err != nil {
		return Image{}, err
	}
	if len(all) > MaxImageBytes {
		return Image{}, ErrImageTooLarge
	}
	format := sniff(all, filename)
	if format == "" {
		return Image{}, fmt.Errorf("%w: %s", ErrUnsupportedImage, filename)
	}

	cfg, err := decodeConfig(all, format)
	if err != nil {
		return Image{}, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}
	w, h := cfg.Width, cfg.Height
	if in.maxDim > 0 && (w > in.maxDim || h > in.maxDim) {
		if all, w, h, err = downscale(all, format, in.maxDim); err != nil {
			return Image{}, err
		}
	}

	key := fmt.Sprintf("images/%s.%s", uuid.NewString(), format)
	if key, err = in.store.Put(key, bytes.NewReader(all)); err != nil {
		return Image{}, err
	}
	return Image{Key: key, URL: in.store.URL(key), Width: w, Height: h, Format: format}, nil
}

// sniff detects the format from content, falling back to the extension.
func sniff(all []byte, filename string) string {
	head := all
	if len(head) > 512 {
		head = head[:512]
	}
	ct := http.DetectContentType(head)
	for _, f := range []string{"jpeg", "png", "gif", "webp"} {
		if strings.Contains(ct, f) {
			return f
		}
	}
	if strings.EqualFold(filepath.Ext(filename), ".webp") {
		return "webp"
	}
	return ""
}

func decodeConfig(all []byte, format string) (image.Config, error) {
	r := bytes.NewReader(all)
	switch format {
	case "jpeg":
		return jpeg.DecodeConfig(r)
	case "png":
		return png.DecodeConfig(r)
	case "gif":
		return gif.DecodeConfig(r)
	case "webp":
		return webp.DecodeConfig(r)
	}
	return image.Config{}, ErrUnsupportedImage
}

func downscale(all []byte, format string, maxDim int) ([]byte, int, int, error) {
	var (
		src image.Image
		err error
	)
	if format == "webp" {
		src, err = webp.Decode(bytes.NewReader(all))
	} else {
		src, err = imaging.Decode(bytes.NewReader(all), imaging.AutoOrientation(true))
	}
	if err != nil {
		return nil, 0, 0, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}
	dst := imaging.Fit(src, maxDim, maxDim, imaging.Lanczos)

	var buf bytes.Buffer
	switch format {
	case "webp":
		err = webp.Encode(&buf, dst, &webp.Options{Quality: 85})
	case "jpeg":
		err = imaging.Encode(&buf, dst, imaging.JPEG, imaging.JPEGQuality(85))
	case "png":
		err = imaging.Encode(&buf, dst, imaging.PNG)
	case "gif":
		err = imaging.Encode(&buf, dst, imaging.GIF)
	}
	if err != nil {
		return nil, 0, 0, err
	}
	b := dst.Bounds()
	return buf.Bytes(), b.Dx(), b.Dy(), nil
}
