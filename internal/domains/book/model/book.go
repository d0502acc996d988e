package model

import (
	"time"
)

// Book is the single stored record.
// Image holds the stored filename only, "" when nothing was uploaded; never NULL.
type Book struct {
	ID          int64     `json:"id" db:"id"`
	ISBN        string    `json:"isbn" db:"isbn"`
	Name        string    `json:"name" db:"name"`
	Year        string    `json:"year" db:"year"`
	Author      string    `json:"author" db:"author"`
	Description string    `json:"description" db:"description"`
	Image       string    `json:"image" db:"image"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
}

// ToBookEntity build entity từ input đã validate
func ToBookEntity(in BookInput, image string) *Book {
	return &Book{
		ISBN:        in.ISBN,
		Name:        in.Name,
		Year:        in.Year,
		Author:      in.Author,
		Description: in.Description,
		Image:       image,
	}
}
