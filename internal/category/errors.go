// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package category

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a category id or slug does not exist.
	ErrNotFound = errors.New("category not found")

	// ErrSelfParent is returned when a category would become its own parent.
	ErrSelfParent = errors.New("category cannot be its own parent")

	// ErrCircularHierarchy is returned when a new parent would make the
	// category its own ancestor.
	ErrCircularHierarchy = errors.New("category hierarchy would contain a cycle")

	// ErrConflict is returned when a name or slug is already taken.
	ErrConflict = errors.New("category name or slug already exists")
)

// ValidationError describes a rejected input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
