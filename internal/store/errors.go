// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"repairshop/internal/category"
)

// PostgreSQL SQLSTATE codes the store translates.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// translateError maps constraint violations onto the category package's
// error kinds. Anything else is returned unchanged.
func translateError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case pgUniqueViolation:
		return fmt.Errorf("%w (%s)", category.ErrConflict, pgErr.ConstraintName)
	case pgForeignKeyViolation:
		return &category.ValidationError{Field: "parent_id", Message: "parent category does not exist"}
	}
	return err
}
