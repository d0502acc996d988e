package service

import (
	"book-records-api/internal/domains/book/model"
	"context"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// ISBNLookup là phần repository mà validator cần
type ISBNLookup interface {
	ExistsByISBN(ctx context.Context, isbn string) (bool, error)
}

// Validator đánh giá rule table cho một operation
type Validator struct {
	lookup ISBNLookup
	rules  map[model.Operation][]model.FieldRule
}

func NewValidator(lookup ISBNLookup) *Validator {
	return &Validator{
		lookup: lookup,
		rules:  model.RuleTable,
	}
}

// Validate trả về nil, model.ValidationErrors, hoặc lỗi storage khi check isbn không chạy được.
// Every field is evaluated; each field reports only its first failing rule.
func (v *Validator) Validate(ctx context.Context, op model.Operation, input model.BookInput) error {
	rules, ok := v.rules[op]
	if !ok {
		return fmt.Errorf("%w: %s", model.ErrUnknownOperation, op)
	}

	violations := model.ValidationErrors{}
	for _, rule := range rules {
		err := validation.ValidateWithContext(ctx, input.Value(rule.Field), v.buildRules(rule)...)
		if err == nil {
			continue
		}
		if ie, ok := err.(validation.InternalError); ok {
			return fmt.Errorf("validate %s: %w", rule.Field, ie.InternalError())
		}
		violations[rule.Field] = err.Error()
	}

	if len(violations) > 0 {
		return violations
	}
	return nil
}

// buildRules map một FieldRule sang ozzo rules; storage check luôn đứng cuối
func (v *Validator) buildRules(rule model.FieldRule) []validation.Rule {
	rules := make([]validation.Rule, 0, 4)

	if !rule.Optional {
		rules = append(rules, validation.Required.Error("is required"))
	}
	if rule.Min > 0 || rule.Max > 0 {
		rules = append(rules, validation.RuneLength(rule.Min, rule.Max).Error(lengthMessage(rule)))
	}
	if rule.Numeric {
		rules = append(rules, is.Digit.Error("must contain digits only"))
	}
	if rule.Check != model.CheckNone {
		rules = append(rules, v.isbnRule(rule.Check))
	}
	return rules
}

func (v *Validator) isbnRule(check model.ISBNCheck) validation.Rule {
	return validation.WithContext(func(ctx context.Context, value interface{}) error {
		isbn, _ := value.(string)
		if isbn == "" {
			return nil
		}

		exists, err := v.lookup.ExistsByISBN(ctx, isbn)
		if err != nil {
			return validation.NewInternalError(err)
		}

		switch {
		case check == model.CheckUnique && exists:
			return validation.NewError("validation_isbn_in_use", model.MsgISBNInUse)
		case check == model.CheckExists && !exists:
			return validation.NewError("validation_isbn_not_found", model.MsgISBNNotFound)
		}
		return nil
	})
}

func lengthMessage(rule model.FieldRule) string {
	switch {
	case rule.Min > 0 && rule.Min == rule.Max:
		return fmt.Sprintf("must be exactly %d characters", rule.Min)
	case rule.Max == 0:
		return fmt.Sprintf("must be at least %d characters", rule.Min)
	case rule.Min == 0:
		return fmt.Sprintf("must be at most %d characters", rule.Max)
	}
	return fmt.Sprintf("must be between %d and %d characters", rule.Min, rule.Max)
}
