package service

import (
	"book-records-api/internal/domains/book/model"
	"context"

	"github.com/xuri/excelize/v2"
)

// ServiceInterface - Định nghĩa business logic methods
type ServiceInterface interface {
	ListBooks(ctx context.Context) ([]model.Book, error)
	ListBooksCreatedBefore(ctx context.Context) ([]model.Book, error)
	GetBook(ctx context.Context, isbn string) (*model.Book, error)
	CreateBook(ctx context.Context, input model.BookInput, image string) (*model.Book, error)
	UpdateBook(ctx context.Context, input model.BookInput, image string) (*model.Book, error)
	DeleteBook(ctx context.Context, isbn string) (bool, error)
	ExportBooks(ctx context.Context) (*excelize.File, error)
}

// BookValidator chạy rule table trước mỗi mutation
type BookValidator interface {
	Validate(ctx context.Context, op model.Operation, input model.BookInput) error
}

// ImageTaskEnqueuer đẩy task xử lý ảnh cho worker
type ImageTaskEnqueuer interface {
	EnqueueProcessImage(ctx context.Context, filename string) error
	EnqueueDeleteImage(ctx context.Context, filename string) error
}
