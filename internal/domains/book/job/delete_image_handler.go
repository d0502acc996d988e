package job

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"book-records-api/internal/infrastructure/storage"
)

// DeleteImageHandler xóa ảnh cũ của book (sau delete hoặc khi update thay ảnh)
type DeleteImageHandler struct {
	files  ImageFiles
	mirror ObjectMirror
}

func NewDeleteImageHandler(files ImageFiles, mirror ObjectMirror) *DeleteImageHandler {
	return &DeleteImageHandler{
		files:  files,
		mirror: mirror,
	}
}

// ProcessTask xóa file gốc, thumbnail và bản mirror. File không tồn tại không phải lỗi
func (h *DeleteImageHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	payload, err := decodePayload(task)
	if err != nil {
		return err
	}
	name := payload.Filename
	thumbName := storage.ThumbnailName(name)

	for _, f := range []string{name, thumbName} {
		if err := h.files.Remove(f); err != nil {
			return fmt.Errorf("remove %s: %w", f, err)
		}
	}

	if h.mirror != nil {
		keys := []string{storage.ObjectKey(name), storage.ObjectKey(thumbName)}
		if err := h.mirror.RemoveObjects(ctx, keys); err != nil {
			return fmt.Errorf("remove mirrored objects: %w", err)
		}
	}

	log.Info().Str("image", name).Msg("Book image deleted")
	return nil
}
