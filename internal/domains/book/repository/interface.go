package repository

import (
	"book-records-api/internal/domains/book/model"
	"context"
	"time"
)

// RepositoryInterface - Định nghĩa data access methods cho bảng book
type RepositoryInterface interface {
	ListBooks(ctx context.Context) ([]model.Book, error)
	ListBooksCreatedBefore(ctx context.Context, cutoff time.Time) ([]model.Book, error)
	FindByISBN(ctx context.Context, isbn string) (*model.Book, error)
	ExistsByISBN(ctx context.Context, isbn string) (bool, error)
	CreateBook(ctx context.Context, book *model.Book) error
	// UpdateByISBN overwrites every row with book.ISBN and returns the images those rows held before.
	UpdateByISBN(ctx context.Context, book *model.Book) ([]string, error)
	// DeleteByISBN removes every row with isbn and returns their images; empty means nothing matched.
	DeleteByISBN(ctx context.Context, isbn string) ([]string, error)
}
