package job

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"book-records-api/internal/infrastructure/storage"
	types "book-records-api/internal/shared"
)

// ImageFiles là phần disk store mà jobs cần
type ImageFiles interface {
	Read(name string) ([]byte, error)
	Put(ctx context.Context, name string, data []byte) error
	Remove(name string) error
}

// ObjectMirror là bucket phụ chứa bản sao ảnh (MinIO)
type ObjectMirror interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
	RemoveObjects(ctx context.Context, keys []string) error
}

// ProcessImageHandler tạo thumbnail cho ảnh vừa upload và mirror lên bucket nếu có
type ProcessImageHandler struct {
	files     ImageFiles
	processor *storage.ImageProcessor
	mirror    ObjectMirror
}

// NewProcessImageHandler. mirror có thể nil khi MinIO tắt
func NewProcessImageHandler(files ImageFiles, processor *storage.ImageProcessor, mirror ObjectMirror) *ProcessImageHandler {
	return &ProcessImageHandler{
		files:     files,
		processor: processor,
		mirror:    mirror,
	}
}

// ProcessTask xử lý task book:process_image
func (h *ProcessImageHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	payload, err := decodePayload(task)
	if err != nil {
		return err
	}
	name := payload.Filename

	data, err := h.files.Read(name)
	if errors.Is(err, fs.ErrNotExist) {
		// record đã bị update/delete trước khi worker chạy
		log.Warn().Str("image", name).Msg("Uploaded image no longer exists, skipping")
		return nil
	}
	if err != nil {
		return fmt.Errorf("read image: %w", err)
	}

	format, err := h.processor.ValidateImage(data)
	if err != nil {
		log.Warn().Err(err).Str("image", name).Msg("Upload is not a decodable image, no thumbnail")
		return nil
	}

	thumb, err := h.processor.Thumbnail(data)
	if err != nil {
		return fmt.Errorf("build thumbnail: %w", err)
	}

	thumbName := storage.ThumbnailName(name)
	if err := h.files.Put(ctx, thumbName, thumb); err != nil {
		return fmt.Errorf("store thumbnail: %w", err)
	}

	if h.mirror != nil {
		if _, err := h.mirror.Upload(ctx, storage.ObjectKey(name), data, storage.ContentType(format)); err != nil {
			return fmt.Errorf("mirror image: %w", err)
		}
		if _, err := h.mirror.Upload(ctx, storage.ObjectKey(thumbName), thumb, "image/jpeg"); err != nil {
			return fmt.Errorf("mirror thumbnail: %w", err)
		}
	}

	log.Info().
		Str("image", name).
		Str("thumbnail", thumbName).
		Bool("mirrored", h.mirror != nil).
		Msg("Book image processed successfully")

	return nil
}

func decodePayload(task *asynq.Task) (types.ImageTaskPayload, error) {
	var payload types.ImageTaskPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		log.Error().Err(err).Str("type", task.Type()).Msg("Failed to unmarshal image payload")
		return payload, fmt.Errorf("unmarshal payload: %v: %w", err, asynq.SkipRetry)
	}
	if payload.Filename == "" {
		return payload, fmt.Errorf("empty filename: %w", asynq.SkipRetry)
	}
	return payload, nil
}
