package model

import (
	"time"
)

// BookInput là request body cho create/update (multipart, urlencoded hoặc JSON)
type BookInput struct {
	ISBN        string `form:"isbn" json:"isbn"`
	Name        string `form:"name" json:"name"`
	Year        string `form:"year" json:"year"`
	Author      string `form:"author" json:"author"`
	Description string `form:"description" json:"description"`
}

// Value trả về giá trị field theo tên dùng trong rule table
func (in BookInput) Value(field string) string {
	switch field {
	case FieldISBN:
		return in.ISBN
	case FieldName:
		return in.Name
	case FieldYear:
		return in.Year
	case FieldAuthor:
		return in.Author
	case FieldDescription:
		return in.Description
	}
	return ""
}

// BookResponse is what clients see: Image carries the served path, not the stored name.
type BookResponse struct {
	ID          int64     `json:"id"`
	ISBN        string    `json:"isbn"`
	Name        string    `json:"name"`
	Year        string    `json:"year"`
	Author      string    `json:"author"`
	Description string    `json:"description"`
	Image       string    `json:"image"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ImagePath map stored filename sang route public; "" giữ nguyên là ""
func ImagePath(urlPrefix, image string) string {
	if image == "" {
		return ""
	}
	return urlPrefix + image
}

func ToBookResponse(b Book, urlPrefix string) BookResponse {
	return BookResponse{
		ID:          b.ID,
		ISBN:        b.ISBN,
		Name:        b.Name,
		Year:        b.Year,
		Author:      b.Author,
		Description: b.Description,
		Image:       ImagePath(urlPrefix, b.Image),
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
}

// ToBookResponses luôn trả về slice non-nil để JSON là [] thay vì null
func ToBookResponses(books []Book, urlPrefix string) []BookResponse {
	result := make([]BookResponse, 0, len(books))
	for _, b := range books {
		result = append(result, ToBookResponse(b, urlPrefix))
	}
	return result
}

// Mutation response messages
const (
	StatusSuccess = "success"
	StatusError   = "error"

	MessageBookAdded   = "Book Added"
	MessageBookUpdated = "Book Updated"
	MessageBookDeleted = "Book Deleted"
	MessageFailed      = "Failed"
)

// Chuỗi nguyên văn của API cũ, client cũ có thể match đúng từng ký tự
const (
	LegacyStatusDeleted  = "succes"
	LegacyMessageAdded   = "Book Addeds"
	LegacyMessageDeleted = "Book Delete"
)

// MessageSet là bộ status/message handler trả về cho create/update/delete
type MessageSet struct {
	Added         string
	Updated       string
	Deleted       string
	DeletedStatus string
	Failed        string
}

// DefaultMessages dùng chính tả đã sửa
var DefaultMessages = MessageSet{
	Added:         MessageBookAdded,
	Updated:       MessageBookUpdated,
	Deleted:       MessageBookDeleted,
	DeletedStatus: StatusSuccess,
	Failed:        MessageFailed,
}

// LegacyMessages giữ nguyên các chuỗi cũ, bật bằng LEGACY_MESSAGES=true
var LegacyMessages = MessageSet{
	Added:         LegacyMessageAdded,
	Updated:       MessageBookUpdated,
	Deleted:       LegacyMessageDeleted,
	DeletedStatus: LegacyStatusDeleted,
	Failed:        MessageFailed,
}

// MutationResponse is the {status, message, data} envelope of create/update/delete.
type MutationResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}
