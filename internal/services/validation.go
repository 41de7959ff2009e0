package services

import (
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var validate = validator.New()

// check returns a validation error carrying message when value fails tag.
func check(value any, tag, message string) error {
	if err := validate.Var(value, tag); err != nil {
		return validationError(message)
	}
	return nil
}

// firstFailure runs checks in order and stops at the first failing one.
func firstFailure(checks ...func() error) error {
	for _, c := range checks {
		if err := c(); err != nil {
			return err
		}
	}
	return nil
}

func validID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return validationError("Invalid id format")
	}
	return nil
}

// Pagination is a validated page request.
type Pagination struct {
	Page   int
	Limit  int
	Search string
}

// Offset is the number of records to skip.
func (p Pagination) Offset() int {
	return (p.Page - 1) * p.Limit
}

// TotalPages returns ceil(total/limit).
func (p Pagination) TotalPages(total int64) int64 {
	limit := int64(p.Limit)
	return (total + limit - 1) / limit
}

func (p Pagination) validate() error {
	return firstFailure(
		func() error { return check(p.Page, "min=1", "Page number must be greater than 0") },
		func() error { return check(p.Limit, "min=1,max=100", "Limit must be between 1 and 100") },
	)
}

// pick returns supplied when it is non-empty, otherwise current.
func pick[T ~string](supplied string, current T) T {
	if supplied != "" {
		return T(supplied)
	}
	return current
}
