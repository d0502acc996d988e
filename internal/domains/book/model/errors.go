package model

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrBookNotFound       = errors.New("book not found")
	ErrStorageUnavailable = errors.New("book storage unavailable")
	ErrUnknownOperation   = errors.New("unknown validation operation")

	// ErrReloadFailed: update đã commit nhưng đọc lại row lỗi, ảnh mới đã thuộc về record
	ErrReloadFailed = errors.New("book updated but reload failed")
)

// Validation messages
const (
	MsgISBNInUse    = "ISBN already in use"
	MsgISBNNotFound = "ISBN not found"
)

// ValidationErrors map field -> message của rule đầu tiên bị vi phạm
type ValidationErrors map[string]string

func (v ValidationErrors) Error() string {
	fields := make([]string, 0, len(v))
	for f := range v {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+v[f])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// ValidationErrorResponse là body của HTTP 422
type ValidationErrorResponse struct {
	Errors ValidationErrors `json:"errors"`
}
