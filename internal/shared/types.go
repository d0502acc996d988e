package shared

// Asynq task types
const (
	TypeProcessBookImage = "book:process_image"
	TypeDeleteBookImage  = "book:delete_image"
)

// Asynq queues
const (
	QueueBook = "book"
)

// ImageTaskPayload là payload chung cho các task xử lý ảnh sách
type ImageTaskPayload struct {
	Filename string `json:"filename"`
}
