package service

import (
	"book-records-api/internal/domains/book/model"
	"book-records-api/internal/testutil"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type serviceFixture struct {
	svc   *BookService
	repo  *testutil.MemoryBookRepo
	cache *testutil.MockCache
	tasks *testutil.MockTaskEnqueuer
}

func newServiceFixture(t *testing.T, seed ...model.Book) *serviceFixture {
	t.Helper()
	repo := testutil.NewMemoryBookRepo(seed...)
	mc := &testutil.MockCache{}
	mt := &testutil.MockTaskEnqueuer{}
	svc := NewService(repo, NewValidator(repo), mc, mt, time.Minute)
	return &serviceFixture{svc: svc, repo: repo, cache: mc, tasks: mt}
}

func duneInput() model.BookInput {
	return model.BookInput{
		ISBN:        "9780441013593",
		Name:        "Dune",
		Year:        "1965",
		Author:      "Frank Herbert",
		Description: "Desert planet epic",
	}
}

func TestBookService_ListBooks_CacheMissThenSet(t *testing.T) {
	f := newServiceFixture(t, model.Book{ISBN: "12345", Name: "Dune"})
	ctx := context.Background()

	f.cache.On("Get", ctx, listCacheKey, mock.Anything).Return(false, nil).Once()
	f.cache.On("Set", ctx, listCacheKey, mock.Anything, time.Minute).Return(nil).Once()

	books, err := f.svc.ListBooks(ctx)
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, "12345", books[0].ISBN)
	f.cache.AssertExpectations(t)
}

func TestBookService_ListBooks_CacheHit(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	cached := []model.Book{{ID: 9, ISBN: "55555"}}

	f.cache.On("Get", ctx, listCacheKey, mock.Anything).
		Run(func(args mock.Arguments) {
			*args.Get(2).(*[]model.Book) = cached
		}).
		Return(true, nil).Once()

	books, err := f.svc.ListBooks(ctx)
	require.NoError(t, err)
	assert.Equal(t, cached, books)
	f.cache.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestBookService_ListBooks_CacheErrorFallsBack(t *testing.T) {
	f := newServiceFixture(t, model.Book{ISBN: "12345"})
	ctx := context.Background()

	f.cache.On("Get", ctx, listCacheKey, mock.Anything).Return(false, errors.New("redis down"))
	f.cache.On("Set", ctx, listCacheKey, mock.Anything, time.Minute).Return(errors.New("redis down"))

	books, err := f.svc.ListBooks(ctx)
	require.NoError(t, err)
	assert.Len(t, books, 1)
}

func TestBookService_ListBooks_StorageError(t *testing.T) {
	f := newServiceFixture(t)
	f.repo.Err = model.ErrStorageUnavailable
	ctx := context.Background()

	f.cache.On("Get", ctx, listCacheKey, mock.Anything).Return(false, nil)

	_, err := f.svc.ListBooks(ctx)
	assert.ErrorIs(t, err, model.ErrStorageUnavailable)
}

func TestBookService_ListBooksCreatedBefore(t *testing.T) {
	f := newServiceFixture(t)
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	f.repo.Now = func() time.Time { return base }
	require.NoError(t, f.repo.CreateBook(context.Background(), &model.Book{ISBN: "11111"}))
	f.repo.Now = func() time.Time { return base.Add(time.Hour) }
	require.NoError(t, f.repo.CreateBook(context.Background(), &model.Book{ISBN: "22222"}))

	f.svc.now = func() time.Time { return base.Add(30 * time.Minute) }

	books, err := f.svc.ListBooksCreatedBefore(context.Background())
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, "11111", books[0].ISBN)
}

func TestBookService_CreateBook_WithImage(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	f.cache.On("DeletePattern", ctx, listCachePattern).Return(nil).Once()
	f.tasks.On("EnqueueProcessImage", ctx, "abc.jpg").Return(nil).Once()

	book, err := f.svc.CreateBook(ctx, duneInput(), "abc.jpg")
	require.NoError(t, err)
	assert.NotZero(t, book.ID)
	assert.Equal(t, "Dune", book.Name)
	assert.Equal(t, "abc.jpg", book.Image)
	assert.False(t, book.CreatedAt.IsZero())

	f.cache.AssertExpectations(t)
	f.tasks.AssertExpectations(t)
}

func TestBookService_CreateBook_WithoutImage(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	f.cache.On("DeletePattern", ctx, listCachePattern).Return(nil)

	book, err := f.svc.CreateBook(ctx, duneInput(), "")
	require.NoError(t, err)
	assert.Equal(t, "", book.Image)
	f.tasks.AssertNotCalled(t, "EnqueueProcessImage", mock.Anything, mock.Anything)
}

func TestBookService_CreateBook_EnqueueFailureIsNotFatal(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	f.cache.On("DeletePattern", ctx, listCachePattern).Return(errors.New("redis down"))
	f.tasks.On("EnqueueProcessImage", ctx, "abc.jpg").Return(errors.New("queue down"))

	_, err := f.svc.CreateBook(ctx, duneInput(), "abc.jpg")
	require.NoError(t, err)
	assert.Equal(t, 1, f.repo.Len())
}

func TestBookService_CreateBook_DuplicateISBN(t *testing.T) {
	f := newServiceFixture(t, model.Book{ISBN: "9780441013593"})

	_, err := f.svc.CreateBook(context.Background(), duneInput(), "")

	var verrs model.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, model.MsgISBNInUse, verrs[model.FieldISBN])
	assert.Equal(t, 1, f.repo.Len())
	f.cache.AssertNotCalled(t, "DeletePattern", mock.Anything, mock.Anything)
}

func TestBookService_UpdateBook_ReplacesImage(t *testing.T) {
	f := newServiceFixture(t, model.Book{ISBN: "12345", Name: "Old", Image: "old.jpg"})
	ctx := context.Background()

	f.cache.On("DeletePattern", ctx, listCachePattern).Return(nil)
	f.tasks.On("EnqueueProcessImage", ctx, "new.jpg").Return(nil).Once()
	f.tasks.On("EnqueueDeleteImage", ctx, "old.jpg").Return(nil).Once()

	in := model.BookInput{ISBN: "12345", Name: "New", Year: "2001", Author: "Someone", Description: "Updated description"}
	book, err := f.svc.UpdateBook(ctx, in, "new.jpg")
	require.NoError(t, err)
	require.NotNil(t, book)
	assert.Equal(t, "New", book.Name)
	assert.Equal(t, "2001", book.Year)
	assert.Equal(t, "new.jpg", book.Image)

	f.tasks.AssertExpectations(t)
}

func TestBookService_UpdateBook_WithoutUploadClearsImage(t *testing.T) {
	f := newServiceFixture(t, model.Book{ISBN: "12345", Name: "Old", Image: "old.jpg"})
	ctx := context.Background()

	f.cache.On("DeletePattern", ctx, listCachePattern).Return(nil)
	f.tasks.On("EnqueueDeleteImage", ctx, "old.jpg").Return(nil).Once()

	book, err := f.svc.UpdateBook(ctx, model.BookInput{ISBN: "12345", Name: "New"}, "")
	require.NoError(t, err)
	assert.Equal(t, "", book.Image)
	f.tasks.AssertNotCalled(t, "EnqueueProcessImage", mock.Anything, mock.Anything)
}

func TestBookService_UpdateBook_Idempotent(t *testing.T) {
	f := newServiceFixture(t, model.Book{ISBN: "12345", Name: "Old"})
	ctx := context.Background()
	f.cache.On("DeletePattern", ctx, listCachePattern).Return(nil)

	in := model.BookInput{ISBN: "12345", Name: "New", Year: "2001"}
	first, err := f.svc.UpdateBook(ctx, in, "")
	require.NoError(t, err)
	second, err := f.svc.UpdateBook(ctx, in, "")
	require.NoError(t, err)

	first.UpdatedAt, second.UpdatedAt = time.Time{}, time.Time{}
	assert.Equal(t, first, second)
}

func TestBookService_UpdateBook_UnknownISBN(t *testing.T) {
	f := newServiceFixture(t)

	_, err := f.svc.UpdateBook(context.Background(), model.BookInput{ISBN: "12345", Name: "New"}, "")

	var verrs model.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, model.MsgISBNNotFound, verrs[model.FieldISBN])
}

func TestBookService_UpdateBook_ReloadFailureAfterWrite(t *testing.T) {
	repo := &testutil.ReloadFailingBookRepo{
		MemoryBookRepo: testutil.NewMemoryBookRepo(model.Book{ISBN: "12345", Name: "Old", Image: "old.jpg"}),
		ReloadErr:      errors.New("connection reset"),
	}
	mc := &testutil.MockCache{}
	mt := &testutil.MockTaskEnqueuer{}
	svc := NewService(repo, NewValidator(repo), mc, mt, time.Minute)
	ctx := context.Background()

	mc.On("DeletePattern", ctx, listCachePattern).Return(nil).Once()
	mt.On("EnqueueProcessImage", ctx, "new.jpg").Return(nil).Once()
	mt.On("EnqueueDeleteImage", ctx, "old.jpg").Return(nil).Once()

	book, err := svc.UpdateBook(ctx, model.BookInput{ISBN: "12345", Name: "New"}, "new.jpg")
	assert.Nil(t, book)
	require.ErrorIs(t, err, model.ErrReloadFailed)

	stored, err := repo.MemoryBookRepo.FindByISBN(ctx, "12345")
	require.NoError(t, err)
	assert.Equal(t, "new.jpg", stored.Image)
	mt.AssertExpectations(t)
}

func TestBookService_UpdateBook_RowVanishedAfterValidation(t *testing.T) {
	repo := &testutil.VanishingBookRepo{MemoryBookRepo: testutil.NewMemoryBookRepo(model.Book{ISBN: "12345", Name: "Old"})}
	mc := &testutil.MockCache{}
	mt := &testutil.MockTaskEnqueuer{}
	svc := NewService(repo, NewValidator(repo), mc, mt, time.Minute)

	book, err := svc.UpdateBook(context.Background(), model.BookInput{ISBN: "12345", Name: "New"}, "new.jpg")
	require.NoError(t, err)
	assert.Nil(t, book)
	mc.AssertNotCalled(t, "DeletePattern", mock.Anything, mock.Anything)
	mt.AssertNotCalled(t, "EnqueueProcessImage", mock.Anything, mock.Anything)
}

func TestBookService_DeleteBook(t *testing.T) {
	f := newServiceFixture(t,
		model.Book{ISBN: "12345", Image: "a.jpg"},
		model.Book{ISBN: "12345", Image: ""},
		model.Book{ISBN: "67890"},
	)
	ctx := context.Background()

	f.cache.On("DeletePattern", ctx, listCachePattern).Return(nil).Once()
	f.tasks.On("EnqueueDeleteImage", ctx, "a.jpg").Return(nil).Once()

	deleted, err := f.svc.DeleteBook(ctx, "12345")
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.Equal(t, 1, f.repo.Len())
	f.tasks.AssertExpectations(t)
}

func TestBookService_DeleteBook_UnknownISBN(t *testing.T) {
	f := newServiceFixture(t)

	deleted, err := f.svc.DeleteBook(context.Background(), "12345")
	assert.False(t, deleted)

	var verrs model.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, model.MsgISBNNotFound, verrs[model.FieldISBN])
}

func TestBookService_DeleteBook_RowVanishedAfterValidation(t *testing.T) {
	repo := &testutil.VanishingBookRepo{MemoryBookRepo: testutil.NewMemoryBookRepo(model.Book{ISBN: "12345", Image: "a.jpg"})}
	mc := &testutil.MockCache{}
	mt := &testutil.MockTaskEnqueuer{}
	svc := NewService(repo, NewValidator(repo), mc, mt, time.Minute)

	deleted, err := svc.DeleteBook(context.Background(), "12345")
	require.NoError(t, err)
	assert.False(t, deleted)
	mc.AssertNotCalled(t, "DeletePattern", mock.Anything, mock.Anything)
	mt.AssertNotCalled(t, "EnqueueDeleteImage", mock.Anything, mock.Anything)
}

func TestBookService_GetBook(t *testing.T) {
	f := newServiceFixture(t, model.Book{ISBN: "12345", Name: "Dune"})

	book, err := f.svc.GetBook(context.Background(), "12345")
	require.NoError(t, err)
	assert.Equal(t, "Dune", book.Name)

	_, err = f.svc.GetBook(context.Background(), "00000")
	assert.ErrorIs(t, err, model.ErrBookNotFound)
}

func TestBookService_ExportBooks(t *testing.T) {
	f := newServiceFixture(t,
		model.Book{ISBN: "12345", Name: "Dune", Year: "1965", Author: "Frank Herbert", Image: "a.jpg"},
	)

	file, err := f.svc.ExportBooks(context.Background())
	require.NoError(t, err)
	defer file.Close()

	rows, err := file.GetRows(exportSheetName)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"ID", "ISBN", "Name", "Year", "Author", "Description", "Image", "Created At", "Updated At"}, rows[0])
	assert.Equal(t, "1", rows[1][0])
	assert.Equal(t, "12345", rows[1][1])
	assert.Equal(t, "Dune", rows[1][2])
	assert.Equal(t, "a.jpg", rows[1][6])
}
