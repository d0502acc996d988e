package storage

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"path/filepath"
	"strings"

	_ "image/gif"
	_ "image/png"

	"github.com/disintegration/imaging"
)

type ImageProcessor struct {
	MaxSize       int64 // bytes
	ThumbnailSize int   // px, cạnh dài nhất
}

func NewImageProcessor(thumbnailSize int) *ImageProcessor {
	if thumbnailSize <= 0 {
		thumbnailSize = 300
	}
	return &ImageProcessor{MaxSize: 10 * 1024 * 1024, ThumbnailSize: thumbnailSize}
}

// ValidateImage check size và decode được header (jpeg/png/gif)
func (p *ImageProcessor) ValidateImage(data []byte) (string, error) {
	if int64(len(data)) > p.MaxSize {
		return "", fmt.Errorf("image exceeds %dMB", p.MaxSize/(1024*1024))
	}
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("not an image: %w", err)
	}
	return format, nil
}

// Thumbnail resize giữ tỉ lệ rồi encode JPEG chất lượng 85
func (p *ImageProcessor) Thumbnail(data []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("cannot decode image: %w", err)
	}

	resized := imaging.Fit(img, p.ThumbnailSize, p.ThumbnailSize, imaging.Lanczos)

	b := new(bytes.Buffer)
	if err := jpeg.Encode(b, resized, &jpeg.Options{Quality: 85}); err != nil {
		return nil, fmt.Errorf("cannot encode thumbnail: %w", err)
	}
	return b.Bytes(), nil
}

// ThumbnailName: abc123.png -> thumb_abc123.jpg
func ThumbnailName(name string) string {
	return "thumb_" + strings.TrimSuffix(name, filepath.Ext(name)) + ".jpg"
}

// ContentType map image.Decode format sang MIME type
func ContentType(format string) string {
	switch format {
	case "jpeg":
		return "image/jpeg"
	case "png":
		return "image/png"
	case "gif":
		return "image/gif"
	default:
		return "application/octet-stream"
	}
}
