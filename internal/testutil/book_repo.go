// Package testutil holds in-memory fakes used by the book tests.
package testutil

import (
	"book-records-api/internal/domains/book/model"
	"context"
	"sync"
	"time"
)

// MemoryBookRepo là RepositoryInterface in-memory; Err được trả về bởi mọi call khi != nil
type MemoryBookRepo struct {
	mu     sync.Mutex
	books  []model.Book
	nextID int64
	Now    func() time.Time
	Err    error
}

func NewMemoryBookRepo(seed ...model.Book) *MemoryBookRepo {
	r := &MemoryBookRepo{nextID: 1, Now: time.Now}
	for _, b := range seed {
		b := b
		_ = r.CreateBook(context.Background(), &b)
	}
	return r
}

func (r *MemoryBookRepo) ListBooks(_ context.Context) ([]model.Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	return append(make([]model.Book, 0, len(r.books)), r.books...), nil
}

func (r *MemoryBookRepo) ListBooksCreatedBefore(_ context.Context, cutoff time.Time) ([]model.Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	out := make([]model.Book, 0, len(r.books))
	for _, b := range r.books {
		if b.CreatedAt.Before(cutoff) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *MemoryBookRepo) FindByISBN(_ context.Context, isbn string) (*model.Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	for _, b := range r.books {
		if b.ISBN == isbn {
			found := b
			return &found, nil
		}
	}
	return nil, model.ErrBookNotFound
}

func (r *MemoryBookRepo) ExistsByISBN(ctx context.Context, isbn string) (bool, error) {
	_, err := r.FindByISBN(ctx, isbn)
	if err == model.ErrBookNotFound {
		return false, nil
	}
	return err == nil, err
}

func (r *MemoryBookRepo) CreateBook(_ context.Context, book *model.Book) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	now := r.Now()
	book.ID = r.nextID
	book.CreatedAt = now
	book.UpdatedAt = now
	r.nextID++
	r.books = append(r.books, *book)
	return nil
}

func (r *MemoryBookRepo) UpdateByISBN(_ context.Context, book *model.Book) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	old := make([]string, 0)
	for i := range r.books {
		b := &r.books[i]
		if b.ISBN != book.ISBN {
			continue
		}
		old = append(old, b.Image)
		b.Name = book.Name
		b.Year = book.Year
		b.Author = book.Author
		b.Description = book.Description
		b.Image = book.Image
		b.UpdatedAt = r.Now()
	}
	return old, nil
}

func (r *MemoryBookRepo) DeleteByISBN(_ context.Context, isbn string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	removed := make([]string, 0)
	kept := r.books[:0]
	for _, b := range r.books {
		if b.ISBN == isbn {
			removed = append(removed, b.Image)
			continue
		}
		kept = append(kept, b)
	}
	r.books = kept
	return removed, nil
}

// Len số records hiện có
func (r *MemoryBookRepo) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.books)
}

// VanishingBookRepo: ExistsByISBN vẫn thấy isbn nhưng update/delete/re-read không match row nào,
// giống khi row bị xóa ngay sau bước validate
type VanishingBookRepo struct {
	*MemoryBookRepo
}

func (r *VanishingBookRepo) FindByISBN(_ context.Context, _ string) (*model.Book, error) {
	return nil, model.ErrBookNotFound
}

func (r *VanishingBookRepo) UpdateByISBN(_ context.Context, _ *model.Book) ([]string, error) {
	return []string{}, nil
}

func (r *VanishingBookRepo) DeleteByISBN(_ context.Context, _ string) ([]string, error) {
	return []string{}, nil
}

// ReloadFailingBookRepo trả ReloadErr từ FindByISBN sau khi UpdateByISBN đã ghi
type ReloadFailingBookRepo struct {
	*MemoryBookRepo
	ReloadErr error

	mu      sync.Mutex
	updated bool
}

func (r *ReloadFailingBookRepo) UpdateByISBN(ctx context.Context, book *model.Book) ([]string, error) {
	old, err := r.MemoryBookRepo.UpdateByISBN(ctx, book)
	if err == nil {
		r.mu.Lock()
		r.updated = true
		r.mu.Unlock()
	}
	return old, err
}

func (r *ReloadFailingBookRepo) FindByISBN(ctx context.Context, isbn string) (*model.Book, error) {
	r.mu.Lock()
	updated := r.updated
	r.mu.Unlock()
	if updated {
		return nil, r.ReloadErr
	}
	return r.MemoryBookRepo.FindByISBN(ctx, isbn)
}
