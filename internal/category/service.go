// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package category owns the catalog category tree: parent assignment
// checks, downward cascading of the active/navbar flags, and the derived
// flat and navbar views. Persistence and object storage are reached through
// the small interfaces declared here.
package category

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"repairshop/internal/markdown"
	"repairshop/internal/models"
	"repairshop/internal/slug"
)

var tracer = otel.Tracer("repairshop/internal/category")

// Repository is the relational store the service runs against. Lookups
// that find nothing return a nil category and a nil error.
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
	FindBySlug(ctx context.Context, slug string) (*models.Category, error)

	// ParentOf returns the parent id of id; found is false when id does
	// not exist.
	ParentOf(ctx context.Context, id uuid.UUID) (parentID *uuid.UUID, found bool, err error)

	// ChildIDs returns the ids of the direct children of all parentIDs.
	ChildIDs(ctx context.Context, parentIDs []uuid.UUID) ([]uuid.UUID, error)

	// Children returns the direct children of parentID ordered for display.
	Children(ctx context.Context, parentID uuid.UUID) ([]models.Category, error)

	// SetFlag writes value into flag on all ids in a single statement.
	SetFlag(ctx context.Context, ids []uuid.UUID, flag Flag, value bool) error

	Create(ctx context.Context, c *models.Category) (*models.Category, error)
	Update(ctx context.Context, id uuid.UUID, patch models.CategoryPatch) (*models.Category, error)
	Delete(ctx context.Context, id uuid.UUID) (*models.Category, error)
	DeleteMany(ctx context.Context, ids []uuid.UUID) ([]models.Category, error)

	// List returns every category (or only active ones) ordered by
	// (order, name) with Parent populated.
	List(ctx context.Context, includeInactive bool) ([]models.Category, error)

	// ListNavbarEligible returns categories that are both active and shown
	// in the navbar, ordered by (order, name).
	ListNavbarEligible(ctx context.Context) ([]models.Category, error)

	NameTaken(ctx context.Context, name string, excludeID *uuid.UUID) (bool, error)
	SlugTaken(ctx context.Context, slug string, excludeID *uuid.UUID) (bool, error)
}

// ImageRemover deletes a previously uploaded image given its public URL.
type ImageRemover interface {
	DeleteByURL(ctx context.Context, url string) error
}

// NavbarCache stores the rendered navbar tree between mutations.
type NavbarCache interface {
	Get(ctx context.Context) ([]models.Category, bool)
	Set(ctx context.Context, tree []models.Category)
	Invalidate(ctx context.Context)
}

// Service enforces the category tree invariants on top of a Repository.
type Service struct {
	repo   Repository
	images ImageRemover
	navbar NavbarCache
}

// Option configures optional collaborators of a Service.
type Option func(*Service)

// WithImageRemover enables cleanup of replaced and deleted images.
func WithImageRemover(r ImageRemover) Option {
	return func(s *Service) { s.images = r }
}

// WithNavbarCache enables caching of FindManyForNavbar results.
func WithNavbarCache(c NavbarCache) Option {
	return func(s *Service) { s.navbar = c }
}

// NewService returns a Service backed by repo.
func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{repo: repo}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Uniqueness reports which of a proposed name and slug are still free.
type Uniqueness struct {
	NameAvailable bool `json:"name_available"`
	SlugAvailable bool `json:"slug_available"`
}

// Create validates and inserts a new category. The slug is derived from
// the name when omitted.
func (s *Service) Create(ctx context.Context, in models.CategoryInput) (*models.Category, error) {
	ctx, span := tracer.Start(ctx, "category.create")
	defer span.End()

	in.Name = strings.TrimSpace(in.Name)
	in.Slug = strings.TrimSpace(in.Slug)
	if err := checkStruct(in); err != nil {
		return nil, recordErr(span, err)
	}
	if in.Slug == "" {
		in.Slug = slug.Generate(in.Name)
		if in.Slug == "" {
			return nil, recordErr(span, &ValidationError{Field: "slug", Message: "cannot be derived from name"})
		}
	}

	if err := s.ValidateParentAssignment(ctx, nil, in.ParentID); err != nil {
		return nil, recordErr(span, err)
	}

	active, show := true, false
	if in.IsActive != nil {
		active = *in.IsActive
	}
	if in.ShowInNavbar != nil {
		show = *in.ShowInNavbar
	}
	flags := ApplyConsistencyRule(models.CategoryPatch{IsActive: &active, ShowInNavbar: &show}, models.Category{})

	created, err := s.repo.Create(ctx, &models.Category{
		Name:         in.Name,
		Slug:         in.Slug,
		Description:  in.Description,
		Icon:         in.Icon,
		ImageURL:     in.ImageURL,
		ParentID:     in.ParentID,
		Order:        in.Order,
		IsActive:     *flags.IsActive,
		ShowInNavbar: *flags.ShowInNavbar,
	})
	if err != nil {
		return nil, recordErr(span, fmt.Errorf("create category: %w", err))
	}
	span.SetAttributes(attribute.String("category.id", created.ID.String()))

	s.invalidateNavbar(ctx)
	slog.Info("category created", "id", created.ID.String(), "slug", created.Slug)
	return created, nil
}

// Update applies a partial update. Parent changes are validated first, the
// active/navbar consistency rule is folded into the write, and any "off"
// transition of a flag is cascaded to all descendants before returning.
// The cascades run after the row write, outside its statement.
func (s *Service) Update(ctx context.Context, id uuid.UUID, patch models.CategoryPatch) (*models.Category, error) {
	ctx, span := tracer.Start(ctx, "category.update", trace.WithAttributes(
		attribute.String("category.id", id.String()),
	))
	defer span.End()

	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, recordErr(span, fmt.Errorf("load category: %w", err))
	}
	if current == nil {
		return nil, recordErr(span, ErrNotFound)
	}

	if patch.Name != nil {
		trimmed := strings.TrimSpace(*patch.Name)
		if trimmed == "" {
			return nil, recordErr(span, &ValidationError{Field: "name", Message: "is required"})
		}
		patch.Name = &trimmed
	}
	if patch.Slug != nil {
		trimmed := strings.TrimSpace(*patch.Slug)
		if trimmed == "" {
			return nil, recordErr(span, &ValidationError{Field: "slug", Message: "is required"})
		}
		patch.Slug = &trimmed
	}
	if err := checkStruct(patch); err != nil {
		return nil, recordErr(span, err)
	}

	if patch.ParentID.Set && !sameID(patch.ParentID.ID, current.ParentID) {
		if err := s.ValidateParentAssignment(ctx, &id, patch.ParentID.ID); err != nil {
			return nil, recordErr(span, err)
		}
	}

	payload := ApplyConsistencyRule(patch, *current)
	if payload.Empty() {
		return current, nil
	}
	cascades := cascadesFor(patch, payload)

	var staleImage string
	if payload.ImageURL != nil && current.ImageURL != "" && *payload.ImageURL != current.ImageURL {
		staleImage = current.ImageURL
	}

	updated, err := s.repo.Update(ctx, id, payload)
	if err != nil {
		return nil, recordErr(span, fmt.Errorf("update category: %w", err))
	}
	if updated == nil {
		return nil, recordErr(span, ErrNotFound)
	}

	s.removeImage(ctx, staleImage)

	// The two flags live in different columns, so their cascades do not
	// interfere with each other.
	g, gctx := errgroup.WithContext(ctx)
	for _, flag := range cascades {
		g.Go(func() error {
			return s.PropagateFlagToDescendants(gctx, id, flag, false)
		})
	}
	cascadeErr := g.Wait()

	s.invalidateNavbar(ctx)
	if cascadeErr != nil {
		slog.Error("category cascade incomplete", "id", id.String(), "error", cascadeErr)
		return nil, recordErr(span, cascadeErr)
	}

	slog.Info("category updated", "id", id.String(), "cascades", len(cascades))
	return updated, nil
}

// Delete removes a category. Its children become roots.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	ctx, span := tracer.Start(ctx, "category.delete", trace.WithAttributes(
		attribute.String("category.id", id.String()),
	))
	defer span.End()

	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return recordErr(span, fmt.Errorf("delete category: %w", err))
	}
	if deleted == nil {
		return recordErr(span, ErrNotFound)
	}

	s.removeImage(ctx, deleted.ImageURL)
	s.invalidateNavbar(ctx)
	slog.Info("category deleted", "id", id.String())
	return nil
}

// BulkDelete removes every listed category that exists and returns how
// many rows were deleted.
func (s *Service) BulkDelete(ctx context.Context, ids []uuid.UUID) (int, error) {
	ctx, span := tracer.Start(ctx, "category.bulk_delete")
	defer span.End()

	if len(ids) == 0 {
		return 0, recordErr(span, &ValidationError{Field: "ids", Message: "is required"})
	}

	seen := make(map[uuid.UUID]bool, len(ids))
	unique := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			unique = append(unique, id)
		}
	}

	deleted, err := s.repo.DeleteMany(ctx, unique)
	if err != nil {
		return 0, recordErr(span, fmt.Errorf("bulk delete categories: %w", err))
	}
	for _, c := range deleted {
		s.removeImage(ctx, c.ImageURL)
	}

	span.SetAttributes(attribute.Int("category.deleted", len(deleted)))
	if len(deleted) > 0 {
		s.invalidateNavbar(ctx)
	}
	slog.Info("categories bulk deleted", "requested", len(unique), "deleted", len(deleted))
	return len(deleted), nil
}

// FindMany returns a flat list ordered by (order, name), each entry
// carrying its immediate parent.
func (s *Service) FindMany(ctx context.Context, includeInactive bool) ([]models.Category, error) {
	items, err := s.repo.List(ctx, includeInactive)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	if items == nil {
		items = []models.Category{}
	}
	return items, nil
}

// FindByIDOrSlug looks a category up by uuid or, failing that, by slug,
// and attaches its parent, direct children and rendered description.
func (s *Service) FindByIDOrSlug(ctx context.Context, key string) (*models.Category, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, &ValidationError{Field: "key", Message: "is required"}
	}

	var c *models.Category
	var err error
	if id, perr := uuid.Parse(key); perr == nil {
		c, err = s.repo.FindByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("find category by id: %w", err)
		}
	}
	if c == nil {
		c, err = s.repo.FindBySlug(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("find category by slug: %w", err)
		}
	}
	if c == nil {
		return nil, ErrNotFound
	}

	if c.ParentID != nil {
		parent, err := s.repo.FindByID(ctx, *c.ParentID)
		if err != nil {
			return nil, fmt.Errorf("find parent category: %w", err)
		}
		c.Parent = parent
	}
	children, err := s.repo.Children(ctx, c.ID)
	if err != nil {
		return nil, fmt.Errorf("find child categories: %w", err)
	}
	c.Children = children

	if c.DescriptionHTML, err = markdown.ToHTML(c.Description); err != nil {
		slog.Warn("category description render failed", "id", c.ID.String(), "error", err)
	}
	return c, nil
}

// FindManyForNavbar returns the public navigation tree.
func (s *Service) FindManyForNavbar(ctx context.Context) ([]models.Category, error) {
	if s.navbar != nil {
		if tree, ok := s.navbar.Get(ctx); ok {
			return tree, nil
		}
	}

	flat, err := s.repo.ListNavbarEligible(ctx)
	if err != nil {
		return nil, fmt.Errorf("list navbar categories: %w", err)
	}
	tree := BuildNavbarTree(flat)

	if s.navbar != nil {
		s.navbar.Set(ctx, tree)
	}
	return tree, nil
}

// CheckUniqueness reports whether name and slug are free, ignoring
// excludeID. Empty arguments are reported as available. The result is
// advisory; the unique constraints in the store remain authoritative.
func (s *Service) CheckUniqueness(ctx context.Context, name, slugValue string, excludeID *uuid.UUID) (Uniqueness, error) {
	res := Uniqueness{NameAvailable: true, SlugAvailable: true}

	if name = strings.TrimSpace(name); name != "" {
		taken, err := s.repo.NameTaken(ctx, name, excludeID)
		if err != nil {
			return res, fmt.Errorf("check name: %w", err)
		}
		res.NameAvailable = !taken
	}
	if slugValue = strings.TrimSpace(slugValue); slugValue != "" {
		taken, err := s.repo.SlugTaken(ctx, slugValue, excludeID)
		if err != nil {
			return res, fmt.Errorf("check slug: %w", err)
		}
		res.SlugAvailable = !taken
	}
	return res, nil
}

// removeImage deletes url from object storage. Failures are logged and
// never reach the caller.
func (s *Service) removeImage(ctx context.Context, url string) {
	if s.images == nil || url == "" {
		return
	}
	if err := s.images.DeleteByURL(ctx, url); err != nil {
		slog.Warn("category image cleanup failed", "url", url, "error", err)
	}
}

func (s *Service) invalidateNavbar(ctx context.Context) {
	if s.navbar != nil {
		s.navbar.Invalidate(ctx)
	}
}

func sameID(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func recordErr(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
