package repository

import (
	"book-records-api/internal/domains/book/model"
	"book-records-api/internal/infrastructure/database"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

const bookColumns = `id, isbn, name, year, author, description, image, created_at, updated_at`

// postgresRepository - Raw SQL với pgxpool
type postgresRepository struct {
	db    *database.PostgresDB
	table string // đã quote
}

// NewPostgresRepository - Constructor. table là tên bảng chưa quote (DB_TABLE)
func NewPostgresRepository(db *database.PostgresDB, table string) RepositoryInterface {
	return &postgresRepository{
		db:    db,
		table: pq.QuoteIdentifier(table),
	}
}

// pool trả về pool + context có deadline; lỗi khi DB chưa connect được
func (r *postgresRepository) pool(ctx context.Context) (*pgxpool.Pool, context.Context, context.CancelFunc, error) {
	pool, err := r.db.Acquire()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("%w: %v", model.ErrStorageUnavailable, err)
	}
	qctx, cancel := r.db.WithQueryTimeout(ctx)
	return pool, qctx, cancel, nil
}

// queryError: server không kết nối được thì trả ErrStorageUnavailable (503)
func queryError(msg string, err error) error {
	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return fmt.Errorf("%w: %s: %v", model.ErrStorageUnavailable, msg, err)
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// ============================================
// READ
// ============================================

func (r *postgresRepository) ListBooks(ctx context.Context) ([]model.Book, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY id`, bookColumns, r.table)
	return r.queryBooks(ctx, query)
}

// ListBooksCreatedBefore - records có created_at < cutoff
func (r *postgresRepository) ListBooksCreatedBefore(ctx context.Context, cutoff time.Time) ([]model.Book, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE created_at < $1 ORDER BY id`, bookColumns, r.table)
	return r.queryBooks(ctx, query, cutoff)
}

// FindByISBN - isbn không unique nên lấy row cũ nhất
func (r *postgresRepository) FindByISBN(ctx context.Context, isbn string) (*model.Book, error) {
	pool, qctx, cancel, err := r.pool(ctx)
	if err != nil {
		return nil, err
	}
	defer cancel()

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE isbn = $1 ORDER BY id LIMIT 1`, bookColumns, r.table)

	book, err := scanBook(pool.QueryRow(qctx, query, isbn))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrBookNotFound
	}
	if err != nil {
		return nil, queryError("failed to get book", err)
	}
	return book, nil
}

func (r *postgresRepository) ExistsByISBN(ctx context.Context, isbn string) (bool, error) {
	pool, qctx, cancel, err := r.pool(ctx)
	if err != nil {
		return false, err
	}
	defer cancel()

	query := fmt.Sprintf(`SELECT EXISTS(SELECT 1 FROM %s WHERE isbn = $1)`, r.table)

	var exists bool
	if err := pool.QueryRow(qctx, query, isbn).Scan(&exists); err != nil {
		return false, queryError("failed to check ISBN", err)
	}
	return exists, nil
}

// ============================================
// WRITE
// ============================================

// CreateBook - insert và fill ID, CreatedAt, UpdatedAt từ DB
func (r *postgresRepository) CreateBook(ctx context.Context, book *model.Book) error {
	pool, qctx, cancel, err := r.pool(ctx)
	if err != nil {
		return err
	}
	defer cancel()

	query := fmt.Sprintf(`
		INSERT INTO %s (isbn, name, year, author, description, image)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`, r.table)

	err = pool.QueryRow(qctx, query,
		book.ISBN, book.Name, book.Year, book.Author, book.Description, book.Image,
	).Scan(&book.ID, &book.CreatedAt, &book.UpdatedAt)
	if err != nil {
		return queryError("failed to create book", err)
	}
	return nil
}

func (r *postgresRepository) UpdateByISBN(ctx context.Context, book *model.Book) ([]string, error) {
	pool, qctx, cancel, err := r.pool(ctx)
	if err != nil {
		return nil, err
	}
	defer cancel()

	// old.image là giá trị trước khi UPDATE
	query := fmt.Sprintf(`
		UPDATE %[1]s AS b
		SET name = $2, year = $3, author = $4, description = $5, image = $6, updated_at = now()
		FROM (SELECT id, image FROM %[1]s WHERE isbn = $1 FOR UPDATE) AS old
		WHERE b.id = old.id
		RETURNING old.image
	`, r.table)

	images, err := r.collectImages(qctx, pool, query,
		book.ISBN, book.Name, book.Year, book.Author, book.Description, book.Image,
	)
	if err != nil {
		return nil, queryError("failed to update book", err)
	}
	return images, nil
}

func (r *postgresRepository) DeleteByISBN(ctx context.Context, isbn string) ([]string, error) {
	pool, qctx, cancel, err := r.pool(ctx)
	if err != nil {
		return nil, err
	}
	defer cancel()

	query := fmt.Sprintf(`DELETE FROM %s WHERE isbn = $1 RETURNING image`, r.table)

	images, err := r.collectImages(qctx, pool, query, isbn)
	if err != nil {
		return nil, queryError("failed to delete book", err)
	}
	return images, nil
}

// ============================================
// HELPER METHODS
// ============================================

func (r *postgresRepository) queryBooks(ctx context.Context, query string, args ...interface{}) ([]model.Book, error) {
	pool, qctx, cancel, err := r.pool(ctx)
	if err != nil {
		return nil, err
	}
	defer cancel()

	rows, err := pool.Query(qctx, query, args...)
	if err != nil {
		log.Error().Err(err).Msg("[Repository] List query error")
		return nil, queryError("list query failed", err)
	}
	defer rows.Close()

	books := make([]model.Book, 0)
	for rows.Next() {
		book, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan book: %w", err)
		}
		books = append(books, *book)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return books, nil
}

func (r *postgresRepository) collectImages(ctx context.Context, pool *pgxpool.Pool, query string, args ...interface{}) ([]string, error) {
	rows, err := pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	images := make([]string, 0)
	for rows.Next() {
		var image string
		if err := rows.Scan(&image); err != nil {
			return nil, err
		}
		images = append(images, image)
	}
	return images, rows.Err()
}

func scanBook(row pgx.Row) (*model.Book, error) {
	var b model.Book
	err := row.Scan(
		&b.ID, &b.ISBN, &b.Name, &b.Year, &b.Author, &b.Description, &b.Image,
		&b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}
