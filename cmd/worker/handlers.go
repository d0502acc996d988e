package main

import (
	"github.com/hibiken/asynq"

	bookJob "book-records-api/internal/domains/book/job"
	"book-records-api/internal/shared"
	"book-records-api/pkg/container"
)

// HandlerRegistry holds all job handlers
type HandlerRegistry struct {
	processBookImage *bookJob.ProcessImageHandler
	deleteBookImage  *bookJob.DeleteImageHandler
}

// initializeHandlers creates all job handlers with their dependencies
func initializeHandlers(c *container.Container) *HandlerRegistry {
	mirror := c.ObjectMirror()
	return &HandlerRegistry{
		processBookImage: bookJob.NewProcessImageHandler(c.Images, c.Processor, mirror),
		deleteBookImage:  bookJob.NewDeleteImageHandler(c.Images, mirror),
	}
}

// RegisterHandlers registers all handlers with the mux
func (h *HandlerRegistry) RegisterHandlers(mux *asynq.ServeMux) {
	mux.HandleFunc(shared.TypeProcessBookImage, h.processBookImage.ProcessTask)
	mux.HandleFunc(shared.TypeDeleteBookImage, h.deleteBookImage.ProcessTask)
}
