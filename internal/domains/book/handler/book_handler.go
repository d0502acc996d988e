package handler

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"book-records-api/internal/domains/book/model"
	service "book-records-api/internal/domains/book/service"
	"book-records-api/internal/shared/middleware"
	"book-records-api/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// ImageRemover xóa file upload không được dùng (orphan)
type ImageRemover interface {
	Remove(name string) error
}

// Handler - HTTP Handler cho /book.
//
// Message mặc định dùng chính tả đã sửa ("Book Added", "Book Deleted", status "success").
// API cũ trả "Book Addeds", "Book Delete" và status "succes"; client còn match các chuỗi đó
// thì dùng WithMessages(model.LegacyMessages).
type Handler struct {
	service   service.ServiceInterface
	files     ImageRemover
	urlPrefix string
	messages  model.MessageSet
}

// NewHandler - Constructor with DI. urlPrefix là route public của ảnh (vd: /img/)
func NewHandler(service service.ServiceInterface, files ImageRemover, urlPrefix string) *Handler {
	return &Handler{
		service:   service,
		files:     files,
		urlPrefix: urlPrefix,
		messages:  model.DefaultMessages,
	}
}

// WithMessages thay bộ message của mutation response
func (h *Handler) WithMessages(messages model.MessageSet) *Handler {
	h.messages = messages
	return h
}

// RegisterRoutes gắn các route của book vào group; upload chỉ chạy cho POST/PUT
func (h *Handler) RegisterRoutes(books *gin.RouterGroup, upload gin.HandlerFunc) {
	for _, root := range []string{"", "/"} {
		books.GET(root, h.ListBooks)
		books.POST(root, upload, h.CreateBook)
		books.PUT(root, upload, h.UpdateBook)
	}
	books.GET("/date", h.ListBooksByDate)
	books.GET("/export", h.ExportBooks)
	books.GET("/:isbn", h.GetBook)
	books.DELETE("/:isbn", h.DeleteBook)
}

// ListBooks - GET /book/
func (h *Handler) ListBooks(c *gin.Context) {
	books, err := h.service.ListBooks(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.ToBookResponses(books, h.urlPrefix))
}

// ListBooksByDate - GET /book/date
func (h *Handler) ListBooksByDate(c *gin.Context) {
	books, err := h.service.ListBooksCreatedBefore(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.ToBookResponses(books, h.urlPrefix))
}

// GetBook - GET /book/:isbn
func (h *Handler) GetBook(c *gin.Context) {
	book, err := h.service.GetBook(c.Request.Context(), c.Param("isbn"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.ToBookResponse(*book, h.urlPrefix))
}

// CreateBook - POST /book/ (multipart, urlencoded hoặc JSON)
func (h *Handler) CreateBook(c *gin.Context) {
	image := c.GetString(middleware.UploadedImageKey)

	var input model.BookInput
	if err := c.ShouldBind(&input); err != nil {
		h.discardUpload(image)
		response.BadRequest(c, "Invalid request body")
		return
	}

	book, err := h.service.CreateBook(c.Request.Context(), input, image)
	if err != nil {
		h.discardUpload(image)
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.MutationResponse{
		Status:  model.StatusSuccess,
		Message: h.messages.Added,
		Data:    model.ToBookResponse(*book, h.urlPrefix),
	})
}

// UpdateBook - PUT /book, match theo isbn trong body
func (h *Handler) UpdateBook(c *gin.Context) {
	image := c.GetString(middleware.UploadedImageKey)

	var input model.BookInput
	if err := c.ShouldBind(&input); err != nil {
		h.discardUpload(image)
		response.BadRequest(c, "Invalid request body")
		return
	}

	book, err := h.service.UpdateBook(c.Request.Context(), input, image)
	if err != nil {
		// Row đã trỏ tới ảnh mới thì không được xóa file
		if !errors.Is(err, model.ErrReloadFailed) {
			h.discardUpload(image)
		}
		h.handleError(c, err)
		return
	}

	// Không còn row nào thì data là null và ảnh upload thành orphan
	var data interface{}
	if book != nil {
		data = model.ToBookResponse(*book, h.urlPrefix)
	} else {
		h.discardUpload(image)
	}

	c.JSON(http.StatusOK, model.MutationResponse{
		Status:  model.StatusSuccess,
		Message: h.messages.Updated,
		Data:    data,
	})
}

// DeleteBook - DELETE /book/:isbn. Luôn 200, status trong body cho biết có row bị xóa hay không
func (h *Handler) DeleteBook(c *gin.Context) {
	deleted, err := h.service.DeleteBook(c.Request.Context(), c.Param("isbn"))
	if err != nil {
		h.handleError(c, err)
		return
	}

	res := model.MutationResponse{Status: h.messages.DeletedStatus, Message: h.messages.Deleted}
	if !deleted {
		res = model.MutationResponse{Status: model.StatusError, Message: h.messages.Failed}
	}
	c.JSON(http.StatusOK, res)
}

// ExportBooks - GET /book/export
func (h *Handler) ExportBooks(c *gin.Context) {
	f, err := h.service.ExportBooks(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	defer f.Close()

	filename := fmt.Sprintf("books_%s.xlsx", time.Now().Format("20060102_150405"))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Status(http.StatusOK)

	if err := f.Write(c.Writer); err != nil {
		log.Error().Err(err).Msg("Failed to write export file")
	}
}

// ============================================
// HELPERS
// ============================================

func (h *Handler) handleError(c *gin.Context, err error) {
	var verrs model.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		response.ValidationFailed(c, verrs)
	case errors.Is(err, model.ErrBookNotFound):
		response.NotFound(c, "Book not found")
	case errors.Is(err, model.ErrStorageUnavailable):
		log.Error().Err(err).Str("request_id", c.GetString("request_id")).Msg("Storage unavailable")
		response.ServiceUnavailable(c, "Storage unavailable")
	default:
		log.Error().Err(err).Str("request_id", c.GetString("request_id")).Msg("Book request failed")
		response.InternalServerError(c, "Internal server error")
	}
	_ = c.Error(err)
}

func (h *Handler) discardUpload(image string) {
	if image == "" || h.files == nil {
		return
	}
	if err := h.files.Remove(image); err != nil {
		log.Warn().Err(err).Str("image", image).Msg("Failed to remove orphan upload")
	}
}
