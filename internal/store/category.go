// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"repairshop/internal/category"
	"repairshop/internal/models"
)

// CategoryStore manages categories in the database.
type CategoryStore struct {
	db *sql.DB
}

// NewCategoryStore returns a new CategoryStore.
func NewCategoryStore(db *sql.DB) *CategoryStore {
	return &CategoryStore{db: db}
}

var _ category.Repository = (*CategoryStore)(nil)

const categoryColumns = `id, name, slug, description, icon, image_url, parent_id,
	sort_order, show_in_navbar, is_active, created_at, updated_at`

// displayOrder is the sibling ordering used by every listing.
const displayOrder = `ORDER BY sort_order, name`

// flagColumns whitelists the columns SetFlag may write.
var flagColumns = map[category.Flag]string{
	category.FlagActive: "is_active",
	category.FlagNavbar: "show_in_navbar",
}

// scanCategory scans a row into a Category struct.
func scanCategory(scanner interface{ Scan(...any) error }) (*models.Category, error) {
	var c models.Category
	err := scanner.Scan(
		&c.ID, &c.Name, &c.Slug, &c.Description, &c.Icon, &c.ImageURL, &c.ParentID,
		&c.Order, &c.ShowInNavbar, &c.IsActive, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *CategoryStore) queryCategories(ctx context.Context, query string, args ...any) ([]models.Category, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		items = append(items, *c)
	}
	return items, rows.Err()
}

// FindByID retrieves a category by ID. Returns nil if not found.
func (s *CategoryStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id)
	c, err := scanCategory(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find category by id: %w", err)
	}
	return c, nil
}

// FindBySlug retrieves a category by slug. Returns nil if not found.
func (s *CategoryStore) FindBySlug(ctx context.Context, slug string) (*models.Category, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM categories WHERE slug = $1`, slug)
	c, err := scanCategory(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find category by slug: %w", err)
	}
	return c, nil
}

// ParentOf reads only the parent_id column of a category.
func (s *CategoryStore) ParentOf(ctx context.Context, id uuid.UUID) (*uuid.UUID, bool, error) {
	var parentID *uuid.UUID
	err := s.db.QueryRowContext(ctx, `SELECT parent_id FROM categories WHERE id = $1`, id).Scan(&parentID)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("find parent of %s: %w", id, err)
	}
	return parentID, true, nil
}

// ChildIDs returns the ids of all direct children of the given parents.
func (s *CategoryStore) ChildIDs(ctx context.Context, parentIDs []uuid.UUID) ([]uuid.UUID, error) {
	if len(parentIDs) == 0 {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id FROM categories WHERE parent_id = ANY($1::uuid[])`, uuidStrings(parentIDs))
	if err != nil {
		return nil, fmt.Errorf("list child ids: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan child id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Children returns the direct children of parentID in display order.
func (s *CategoryStore) Children(ctx context.Context, parentID uuid.UUID) ([]models.Category, error) {
	items, err := s.queryCategories(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE parent_id = $1 `+displayOrder, parentID)
	if err != nil {
		return nil, fmt.Errorf("list child categories: %w", err)
	}
	return items, nil
}

// SetFlag sets one boolean flag on many categories in a single statement.
// Rows that already hold value are left alone, so repeating the call is a
// no-op.
func (s *CategoryStore) SetFlag(ctx context.Context, ids []uuid.UUID, flag category.Flag, value bool) error {
	col, ok := flagColumns[flag]
	if !ok {
		return fmt.Errorf("set flag: unknown flag %q", flag)
	}
	if len(ids) == 0 {
		return nil
	}
	_, err := s.db.ExecContext(ctx, `
		UPDATE categories SET `+col+` = $1, updated_at = NOW()
		WHERE id = ANY($2::uuid[]) AND `+col+` <> $1`,
		value, uuidStrings(ids),
	)
	if err != nil {
		return fmt.Errorf("set %s on %d categories: %w", col, len(ids), err)
	}
	return nil
}

// Create inserts a new category and returns it.
func (s *CategoryStore) Create(ctx context.Context, c *models.Category) (*models.Category, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO categories (name, slug, description, icon, image_url, parent_id,
			sort_order, show_in_navbar, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+categoryColumns,
		c.Name, c.Slug, c.Description, c.Icon, c.ImageURL, c.ParentID,
		c.Order, c.ShowInNavbar, c.IsActive,
	)
	result, err := scanCategory(row)
	if err != nil {
		return nil, translateError(fmt.Errorf("create category: %w", err))
	}
	return result, nil
}

// Update writes the non-nil fields of patch and returns the updated row.
// Returns nil if the category does not exist.
func (s *CategoryStore) Update(ctx context.Context, id uuid.UUID, p models.CategoryPatch) (*models.Category, error) {
	var sets []string
	var args []any
	add := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if p.Name != nil {
		add("name", *p.Name)
	}
	if p.Slug != nil {
		add("slug", *p.Slug)
	}
	if p.Description != nil {
		add("description", *p.Description)
	}
	if p.Icon != nil {
		add("icon", *p.Icon)
	}
	if p.ImageURL != nil {
		add("image_url", *p.ImageURL)
	}
	if p.ParentID.Set {
		add("parent_id", p.ParentID.ID)
	}
	if p.Order != nil {
		add("sort_order", *p.Order)
	}
	if p.ShowInNavbar != nil {
		add("show_in_navbar", *p.ShowInNavbar)
	}
	if p.IsActive != nil {
		add("is_active", *p.IsActive)
	}
	if len(sets) == 0 {
		return s.FindByID(ctx, id)
	}

	args = append(args, id)
	query := `UPDATE categories SET ` + strings.Join(sets, ", ") + `, updated_at = NOW()
		WHERE id = $` + fmt.Sprint(len(args)) + ` RETURNING ` + categoryColumns

	c, err := scanCategory(s.db.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, translateError(fmt.Errorf("update category: %w", err))
	}
	return c, nil
}

// Delete removes a category by ID and returns the removed row, or nil if it
// did not exist. Children are re-parented (ON DELETE SET NULL).
func (s *CategoryStore) Delete(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	row := s.db.QueryRowContext(ctx, `DELETE FROM categories WHERE id = $1 RETURNING `+categoryColumns, id)
	c, err := scanCategory(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("delete category: %w", err)
	}
	return c, nil
}

// DeleteMany removes all listed categories and returns the removed rows.
func (s *CategoryStore) DeleteMany(ctx context.Context, ids []uuid.UUID) ([]models.Category, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	items, err := s.queryCategories(ctx,
		`DELETE FROM categories WHERE id = ANY($1::uuid[]) RETURNING `+categoryColumns, uuidStrings(ids))
	if err != nil {
		return nil, fmt.Errorf("delete categories: %w", err)
	}
	return items, nil
}

// List returns categories ordered by sort_order and name, each with its
// immediate parent attached.
func (s *CategoryStore) List(ctx context.Context, includeInactive bool) ([]models.Category, error) {
	query := `
		SELECT c.id, c.name, c.slug, c.description, c.icon, c.image_url, c.parent_id,
		       c.sort_order, c.show_in_navbar, c.is_active, c.created_at, c.updated_at,
		       p.id, p.name, p.slug, p.description, p.icon, p.image_url, p.parent_id,
		       p.sort_order, p.show_in_navbar, p.is_active, p.created_at, p.updated_at
		FROM categories c
		LEFT JOIN categories p ON p.id = c.parent_id`
	if !includeInactive {
		query += ` WHERE c.is_active = true`
	}
	query += ` ORDER BY c.sort_order, c.name`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var items []models.Category
	for rows.Next() {
		var c models.Category
		var p nullableCategory
		err := rows.Scan(
			&c.ID, &c.Name, &c.Slug, &c.Description, &c.Icon, &c.ImageURL, &c.ParentID,
			&c.Order, &c.ShowInNavbar, &c.IsActive, &c.CreatedAt, &c.UpdatedAt,
			&p.ID, &p.Name, &p.Slug, &p.Description, &p.Icon, &p.ImageURL, &p.ParentID,
			&p.Order, &p.ShowInNavbar, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		c.Parent = p.category()
		items = append(items, c)
	}
	return items, rows.Err()
}

// ListNavbarEligible returns active categories flagged for the navbar.
func (s *CategoryStore) ListNavbarEligible(ctx context.Context) ([]models.Category, error) {
	items, err := s.queryCategories(ctx, `SELECT `+categoryColumns+` FROM categories
		WHERE is_active = true AND show_in_navbar = true `+displayOrder)
	if err != nil {
		return nil, fmt.Errorf("list navbar categories: %w", err)
	}
	return items, nil
}

// NameTaken reports whether another category already uses name.
func (s *CategoryStore) NameTaken(ctx context.Context, name string, excludeID *uuid.UUID) (bool, error) {
	return s.exists(ctx, "name", name, excludeID)
}

// SlugTaken reports whether another category already uses slug.
func (s *CategoryStore) SlugTaken(ctx context.Context, slug string, excludeID *uuid.UUID) (bool, error) {
	return s.exists(ctx, "slug", slug, excludeID)
}

func (s *CategoryStore) exists(ctx context.Context, col, value string, excludeID *uuid.UUID) (bool, error) {
	var taken bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM categories WHERE `+col+` = $1 AND ($2::uuid IS NULL OR id <> $2))`,
		value, excludeID,
	).Scan(&taken)
	if err != nil {
		return false, fmt.Errorf("check category %s: %w", col, err)
	}
	return taken, nil
}

// nullableCategory receives the columns of an optional LEFT JOIN row.
type nullableCategory struct {
	ID           *uuid.UUID
	Name         *string
	Slug         *string
	Description  *string
	Icon         *string
	ImageURL     *string
	ParentID     *uuid.UUID
	Order        *int
	ShowInNavbar *bool
	IsActive     *bool
	CreatedAt    *time.Time
	UpdatedAt    *time.Time
}

func (n nullableCategory) category() *models.Category {
	if n.ID == nil {
		return nil
	}
	return &models.Category{
		ID:           *n.ID,
		Name:         deref(n.Name),
		Slug:         deref(n.Slug),
		Description:  deref(n.Description),
		Icon:         deref(n.Icon),
		ImageURL:     deref(n.ImageURL),
		ParentID:     n.ParentID,
		Order:        deref(n.Order),
		ShowInNavbar: deref(n.ShowInNavbar),
		IsActive:     deref(n.IsActive),
		CreatedAt:    deref(n.CreatedAt),
		UpdatedAt:    deref(n.UpdatedAt),
	}
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
