package service

import (
	"book-records-api/internal/domains/book/model"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubLookup struct {
	existing map[string]bool
	err      error
	calls    int
}

func (s *stubLookup) ExistsByISBN(_ context.Context, isbn string) (bool, error) {
	s.calls++
	if s.err != nil {
		return false, s.err
	}
	return s.existing[isbn], nil
}

func validCreateInput() model.BookInput {
	return model.BookInput{
		ISBN:        "9780441013593",
		Name:        "Dune",
		Year:        "1965",
		Author:      "Frank Herbert",
		Description: "Desert planet epic",
	}
}

func validationErrors(t *testing.T, err error) model.ValidationErrors {
	t.Helper()
	var verrs model.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	return verrs
}

func TestValidator_CreateValid(t *testing.T) {
	lookup := &stubLookup{}
	v := NewValidator(lookup)

	require.NoError(t, v.Validate(context.Background(), model.OpCreate, validCreateInput()))
	assert.Equal(t, 1, lookup.calls)
}

func TestValidator_ISBNRules(t *testing.T) {
	tests := []struct {
		name    string
		isbn    string
		wantMsg string
	}{
		{"empty", "", "is required"},
		{"too short", "1234", "must be at least 5 characters"},
		{"non digit", "12a45", "must contain digits only"},
		{"in use", "11111", model.MsgISBNInUse},
	}

	v := NewValidator(&stubLookup{existing: map[string]bool{"11111": true}})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validCreateInput()
			in.ISBN = tt.isbn

			verrs := validationErrors(t, v.Validate(context.Background(), model.OpCreate, in))
			assert.Equal(t, model.ValidationErrors{model.FieldISBN: tt.wantMsg}, verrs)
		})
	}
}

func TestValidator_ReportsEveryFailingField(t *testing.T) {
	v := NewValidator(&stubLookup{})

	in := model.BookInput{ISBN: "12", Name: "D", Year: "65", Author: "F", Description: "short"}
	verrs := validationErrors(t, v.Validate(context.Background(), model.OpCreate, in))

	assert.Equal(t, model.ValidationErrors{
		"isbn":        "must be at least 5 characters",
		"name":        "must be at least 2 characters",
		"year":        "must be exactly 4 characters",
		"author":      "must be at least 2 characters",
		"description": "must be at least 10 characters",
	}, verrs)
}

func TestValidator_SkipsLookupWhenSyncRulesFail(t *testing.T) {
	lookup := &stubLookup{}
	v := NewValidator(lookup)

	in := validCreateInput()
	in.ISBN = "12x"
	_ = v.Validate(context.Background(), model.OpCreate, in)

	assert.Zero(t, lookup.calls)
}

func TestValidator_UpdateRequiresExistingISBN(t *testing.T) {
	v := NewValidator(&stubLookup{existing: map[string]bool{"12345": true}})
	ctx := context.Background()

	require.NoError(t, v.Validate(ctx, model.OpUpdate, model.BookInput{ISBN: "12345", Name: "Dune"}))

	verrs := validationErrors(t, v.Validate(ctx, model.OpUpdate, model.BookInput{ISBN: "99999", Name: "Dune"}))
	assert.Equal(t, model.MsgISBNNotFound, verrs[model.FieldISBN])
}

func TestValidator_UpdateYearOnlyCheckedWhenSupplied(t *testing.T) {
	v := NewValidator(&stubLookup{existing: map[string]bool{"12345": true}})
	ctx := context.Background()

	require.NoError(t, v.Validate(ctx, model.OpUpdate, model.BookInput{ISBN: "12345", Name: "Dune"}))

	verrs := validationErrors(t, v.Validate(ctx, model.OpUpdate, model.BookInput{ISBN: "12345", Name: "Dune", Year: "19x5"}))
	assert.Equal(t, model.ValidationErrors{model.FieldYear: "must contain digits only"}, verrs)
}

func TestValidator_DeleteOnlyChecksISBN(t *testing.T) {
	v := NewValidator(&stubLookup{existing: map[string]bool{"12345": true}})
	ctx := context.Background()

	require.NoError(t, v.Validate(ctx, model.OpDelete, model.BookInput{ISBN: "12345"}))

	verrs := validationErrors(t, v.Validate(ctx, model.OpDelete, model.BookInput{ISBN: "54321"}))
	assert.Equal(t, model.ValidationErrors{model.FieldISBN: model.MsgISBNNotFound}, verrs)
}

func TestValidator_LookupErrorIsNotAValidationMessage(t *testing.T) {
	v := NewValidator(&stubLookup{err: model.ErrStorageUnavailable})

	err := v.Validate(context.Background(), model.OpCreate, validCreateInput())
	require.Error(t, err)

	var verrs model.ValidationErrors
	assert.False(t, errors.As(err, &verrs))
	assert.ErrorIs(t, err, model.ErrStorageUnavailable)
}

func TestValidator_UnknownOperation(t *testing.T) {
	v := NewValidator(&stubLookup{})
	err := v.Validate(context.Background(), model.Operation("archive"), model.BookInput{})
	assert.ErrorIs(t, err, model.ErrUnknownOperation)
}
