package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"book-records-api/internal/shared"
)

// BookTaskClient enqueue các background task của book domain
type BookTaskClient struct {
	client *asynq.Client
}

func NewBookTaskClient(redisAddr, password string, db int) *BookTaskClient {
	return &BookTaskClient{
		client: asynq.NewClient(asynq.RedisClientOpt{
			Addr:     redisAddr,
			Password: password,
			DB:       db,
		}),
	}
}

// NewImageTask build task cho một file ảnh
func NewImageTask(taskType, filename string) (*asynq.Task, error) {
	payload, err := json.Marshal(shared.ImageTaskPayload{Filename: filename})
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", taskType, err)
	}
	return asynq.NewTask(taskType, payload), nil
}

func (q *BookTaskClient) EnqueueProcessImage(ctx context.Context, filename string) error {
	return q.enqueue(ctx, shared.TypeProcessBookImage, filename, asynq.MaxRetry(3), asynq.Timeout(2*time.Minute))
}

func (q *BookTaskClient) EnqueueDeleteImage(ctx context.Context, filename string) error {
	// delay để process_image của cùng file (nếu còn pending) chạy trước
	return q.enqueue(ctx, shared.TypeDeleteBookImage, filename, asynq.MaxRetry(5), asynq.ProcessIn(30*time.Second))
}

func (q *BookTaskClient) enqueue(ctx context.Context, taskType, filename string, opts ...asynq.Option) error {
	task, err := NewImageTask(taskType, filename)
	if err != nil {
		return err
	}

	opts = append(opts, asynq.Queue(shared.QueueBook))
	if _, err := q.client.EnqueueContext(ctx, task, opts...); err != nil {
		return fmt.Errorf("enqueue %s: %w", taskType, err)
	}
	return nil
}

func (q *BookTaskClient) Close() error {
	return q.client.Close()
}
