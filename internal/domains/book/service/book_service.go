package service

import (
	"book-records-api/internal/domains/book/model"
	"book-records-api/internal/domains/book/repository"
	"book-records-api/pkg/cache"
	"book-records-api/pkg/logger"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"
)

const (
	listCacheKey     = "books:list"
	listCachePattern = "books:list*"
	exportSheetName  = "Book list"
)

// BookService - Implements ServiceInterface
type BookService struct {
	repo      repository.RepositoryInterface
	validator BookValidator
	cache     cache.Cache
	tasks     ImageTaskEnqueuer
	listTTL   time.Duration
	now       func() time.Time
}

// NewService - Constructor with DI. cache và tasks có thể nil
func NewService(
	repo repository.RepositoryInterface,
	validator BookValidator,
	cache cache.Cache,
	tasks ImageTaskEnqueuer,
	listTTL time.Duration,
) *BookService {
	return &BookService{
		repo:      repo,
		validator: validator,
		cache:     cache,
		tasks:     tasks,
		listTTL:   listTTL,
		now:       time.Now,
	}
}

// ============================================
// READ
// ============================================

// ListBooks - cache-aside trên books:list
func (s *BookService) ListBooks(ctx context.Context) ([]model.Book, error) {
	if s.cache != nil {
		var cached []model.Book
		found, err := s.cache.Get(ctx, listCacheKey, &cached)
		if err != nil {
			logger.Warn("Cache GET error for key "+listCacheKey, err)
		} else if found {
			return cached, nil
		}
	}

	books, err := s.repo.ListBooks(ctx)
	if err != nil {
		return nil, fmt.Errorf("list books error: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, listCacheKey, books, s.listTTL); err != nil {
			logger.Warn("Cache SET error for key "+listCacheKey, err)
		}
	}
	return books, nil
}

// ListBooksCreatedBefore - records tạo trước thời điểm hiện tại của service
func (s *BookService) ListBooksCreatedBefore(ctx context.Context) ([]model.Book, error) {
	books, err := s.repo.ListBooksCreatedBefore(ctx, s.now())
	if err != nil {
		return nil, fmt.Errorf("list books by date error: %w", err)
	}
	return books, nil
}

func (s *BookService) GetBook(ctx context.Context, isbn string) (*model.Book, error) {
	return s.repo.FindByISBN(ctx, isbn)
}

// ============================================
// MUTATIONS
// ============================================

// CreateBook validate rồi insert. image là tên file đã lưu hoặc ""
func (s *BookService) CreateBook(ctx context.Context, input model.BookInput, image string) (*model.Book, error) {
	if err := s.validator.Validate(ctx, model.OpCreate, input); err != nil {
		return nil, err
	}

	book := model.ToBookEntity(input, image)
	if err := s.repo.CreateBook(ctx, book); err != nil {
		return nil, fmt.Errorf("create book error: %w", err)
	}

	s.invalidateList(ctx)
	s.enqueueProcess(ctx, image)

	log.Info().Str("isbn", book.ISBN).Int64("id", book.ID).Msg("Book created")
	return book, nil
}

// UpdateBook ghi đè name, year, author, description, image cho mọi row cùng isbn rồi đọc lại.
// Returns (nil, nil) when no row matched or the re-read finds nothing.
// Lỗi sau khi đã ghi được wrap bằng model.ErrReloadFailed.
func (s *BookService) UpdateBook(ctx context.Context, input model.BookInput, image string) (*model.Book, error) {
	if err := s.validator.Validate(ctx, model.OpUpdate, input); err != nil {
		return nil, err
	}

	oldImages, err := s.repo.UpdateByISBN(ctx, model.ToBookEntity(input, image))
	if err != nil {
		return nil, fmt.Errorf("update book error: %w", err)
	}
	if len(oldImages) == 0 {
		// Row bị xóa giữa validate và update
		log.Warn().Str("isbn", input.ISBN).Msg("Update matched no rows")
		return nil, nil
	}

	s.invalidateList(ctx)
	s.enqueueProcess(ctx, image)
	s.enqueueDeletes(ctx, oldImages, image)

	updated, err := s.repo.FindByISBN(ctx, input.ISBN)
	if errors.Is(err, model.ErrBookNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrReloadFailed, err)
	}

	log.Info().Str("isbn", input.ISBN).Int("rows", len(oldImages)).Msg("Book updated")
	return updated, nil
}

// DeleteBook trả về true khi ít nhất một row bị xóa
func (s *BookService) DeleteBook(ctx context.Context, isbn string) (bool, error) {
	if err := s.validator.Validate(ctx, model.OpDelete, model.BookInput{ISBN: isbn}); err != nil {
		return false, err
	}

	images, err := s.repo.DeleteByISBN(ctx, isbn)
	if err != nil {
		return false, fmt.Errorf("delete book error: %w", err)
	}
	if len(images) == 0 {
		return false, nil
	}

	s.invalidateList(ctx)
	s.enqueueDeletes(ctx, images, "")

	log.Info().Str("isbn", isbn).Int("rows", len(images)).Msg("Book deleted")
	return true, nil
}

// ============================================
// EXPORT
// ============================================

// ExportBooks build file xlsx từ toàn bộ records (không qua cache)
func (s *BookService) ExportBooks(ctx context.Context) (*excelize.File, error) {
	books, err := s.repo.ListBooks(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}

	f, err := buildBooksExcelFile(books)
	if err != nil {
		return nil, fmt.Errorf("failed to build excel file: %w", err)
	}
	return f, nil
}

func buildBooksExcelFile(books []model.Book) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", exportSheetName); err != nil {
		return nil, err
	}

	headers := []string{"ID", "ISBN", "Name", "Year", "Author", "Description", "Image", "Created At", "Updated At"}
	for colIdx, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(colIdx+1, 1)
		if err := f.SetCellValue(exportSheetName, cell, header); err != nil {
			return nil, err
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		lastCell, _ := excelize.CoordinatesToCellName(len(headers), 1)
		_ = f.SetCellStyle(exportSheetName, "A1", lastCell, headerStyle)
	}

	// Data rows, bắt đầu từ row 2
	for i, b := range books {
		row := []interface{}{
			b.ID,
			b.ISBN,
			b.Name,
			b.Year,
			b.Author,
			b.Description,
			b.Image,
			b.CreatedAt.Format(time.RFC3339),
			b.UpdatedAt.Format(time.RFC3339),
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(exportSheetName, cell, &row); err != nil {
			return nil, err
		}
	}

	return f, nil
}

// ============================================
// HELPERS
// ============================================

func (s *BookService) invalidateList(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeletePattern(ctx, listCachePattern); err != nil {
		logger.Warn("Cache invalidation error for "+listCachePattern, err)
	}
}

func (s *BookService) enqueueProcess(ctx context.Context, image string) {
	if s.tasks == nil || image == "" {
		return
	}
	if err := s.tasks.EnqueueProcessImage(ctx, image); err != nil {
		log.Warn().Err(err).Str("image", image).Msg("Failed to enqueue image processing")
	}
}

// enqueueDeletes xóa các ảnh cũ không còn được tham chiếu (trừ keep)
func (s *BookService) enqueueDeletes(ctx context.Context, images []string, keep string) {
	if s.tasks == nil {
		return
	}
	seen := make(map[string]struct{}, len(images))
	for _, img := range images {
		if img == "" || img == keep {
			continue
		}
		if _, dup := seen[img]; dup {
			continue
		}
		seen[img] = struct{}{}

		if err := s.tasks.EnqueueDeleteImage(ctx, img); err != nil {
			log.Warn().Err(err).Str("image", img).Msg("Failed to enqueue image deletion")
		}
	}
}
