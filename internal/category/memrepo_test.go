// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// memrepo_test.go provides an in-memory Repository so the service can be
// tested without PostgreSQL.
package category

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"repairshop/internal/models"
)

type memRepo struct {
	mu   sync.Mutex
	rows map[uuid.UUID]models.Category

	parentLookups int
	setFlagCalls  [][]uuid.UUID
	setFlagErr    error
	updateCalls   int
}

func newMemRepo() *memRepo {
	return &memRepo{rows: make(map[uuid.UUID]models.Category)}
}

// put inserts a row directly, bypassing the service.
func (m *memRepo) put(c models.Category) models.Category {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.Slug == "" {
		c.Slug = c.ID.String()
	}
	m.rows[c.ID] = c
	return c
}

func (m *memRepo) get(id uuid.UUID) models.Category {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rows[id]
}

func (m *memRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.rows[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (m *memRepo) FindBySlug(_ context.Context, slug string) (*models.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.rows {
		if c.Slug == slug {
			return &c, nil
		}
	}
	return nil, nil
}

func (m *memRepo) ParentOf(_ context.Context, id uuid.UUID) (*uuid.UUID, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.parentLookups++
	c, ok := m.rows[id]
	if !ok {
		return nil, false, nil
	}
	return c.ParentID, true, nil
}

func (m *memRepo) ChildIDs(_ context.Context, parentIDs []uuid.UUID) ([]uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	want := make(map[uuid.UUID]bool, len(parentIDs))
	for _, id := range parentIDs {
		want[id] = true
	}
	var ids []uuid.UUID
	for _, c := range m.rows {
		if c.ParentID != nil && want[*c.ParentID] {
			ids = append(ids, c.ID)
		}
	}
	return ids, nil
}

func (m *memRepo) Children(_ context.Context, parentID uuid.UUID) ([]models.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var items []models.Category
	for _, c := range m.rows {
		if c.ParentID != nil && *c.ParentID == parentID {
			items = append(items, c)
		}
	}
	sortForDisplay(items)
	return items, nil
}

func (m *memRepo) SetFlag(_ context.Context, ids []uuid.UUID, flag Flag, value bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setFlagErr != nil {
		return m.setFlagErr
	}
	m.setFlagCalls = append(m.setFlagCalls, append([]uuid.UUID(nil), ids...))
	for _, id := range ids {
		c, ok := m.rows[id]
		if !ok {
			continue
		}
		switch flag {
		case FlagActive:
			c.IsActive = value
		case FlagNavbar:
			c.ShowInNavbar = value
		}
		m.rows[id] = c
	}
	return nil
}

func (m *memRepo) taken(name, slug string, exclude uuid.UUID) bool {
	for _, c := range m.rows {
		if c.ID == exclude {
			continue
		}
		if (name != "" && c.Name == name) || (slug != "" && c.Slug == slug) {
			return true
		}
	}
	return false
}

func (m *memRepo) Create(_ context.Context, c *models.Category) (*models.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.taken(c.Name, c.Slug, uuid.Nil) {
		return nil, ErrConflict
	}
	row := *c
	row.ID = uuid.New()
	row.CreatedAt = time.Now()
	row.UpdatedAt = row.CreatedAt
	m.rows[row.ID] = row
	return &row, nil
}

func (m *memRepo) Update(_ context.Context, id uuid.UUID, p models.CategoryPatch) (*models.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updateCalls++
	c, ok := m.rows[id]
	if !ok {
		return nil, nil
	}
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Slug != nil {
		c.Slug = *p.Slug
	}
	if m.taken(c.Name, c.Slug, id) {
		return nil, ErrConflict
	}
	if p.Description != nil {
		c.Description = *p.Description
	}
	if p.Icon != nil {
		c.Icon = *p.Icon
	}
	if p.ImageURL != nil {
		c.ImageURL = *p.ImageURL
	}
	if p.ParentID.Set {
		c.ParentID = p.ParentID.ID
	}
	if p.Order != nil {
		c.Order = *p.Order
	}
	if p.ShowInNavbar != nil {
		c.ShowInNavbar = *p.ShowInNavbar
	}
	if p.IsActive != nil {
		c.IsActive = *p.IsActive
	}
	c.UpdatedAt = time.Now()
	m.rows[id] = c
	return &c, nil
}

func (m *memRepo) Delete(_ context.Context, id uuid.UUID) (*models.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.rows[id]
	if !ok {
		return nil, nil
	}
	delete(m.rows, id)
	m.reRoot(id)
	return &c, nil
}

func (m *memRepo) DeleteMany(_ context.Context, ids []uuid.UUID) ([]models.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var deleted []models.Category
	for _, id := range ids {
		if c, ok := m.rows[id]; ok {
			deleted = append(deleted, c)
			delete(m.rows, id)
			m.reRoot(id)
		}
	}
	return deleted, nil
}

// reRoot mirrors ON DELETE SET NULL.
func (m *memRepo) reRoot(parentID uuid.UUID) {
	for id, c := range m.rows {
		if c.ParentID != nil && *c.ParentID == parentID {
			c.ParentID = nil
			m.rows[id] = c
		}
	}
}

func (m *memRepo) List(_ context.Context, includeInactive bool) ([]models.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var items []models.Category
	for _, c := range m.rows {
		if !includeInactive && !c.IsActive {
			continue
		}
		if c.ParentID != nil {
			if p, ok := m.rows[*c.ParentID]; ok {
				c.Parent = &p
			}
		}
		items = append(items, c)
	}
	sortForDisplay(items)
	return items, nil
}

func (m *memRepo) ListNavbarEligible(_ context.Context) ([]models.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var items []models.Category
	for _, c := range m.rows {
		if c.IsActive && c.ShowInNavbar {
			items = append(items, c)
		}
	}
	// Deliberately unsorted by id to prove the tree builder orders siblings.
	sort.Slice(items, func(i, j int) bool { return items[i].ID.String() < items[j].ID.String() })
	return items, nil
}

func (m *memRepo) NameTaken(_ context.Context, name string, excludeID *uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	exclude := uuid.Nil
	if excludeID != nil {
		exclude = *excludeID
	}
	return m.taken(name, "", exclude), nil
}

func (m *memRepo) SlugTaken(_ context.Context, slug string, excludeID *uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	exclude := uuid.Nil
	if excludeID != nil {
		exclude = *excludeID
	}
	return m.taken("", slug, exclude), nil
}

// fakeImages records deletions and can be told to fail.
type fakeImages struct {
	mu      sync.Mutex
	deleted []string
	err     error
}

func (f *fakeImages) DeleteByURL(_ context.Context, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, url)
	return f.err
}

// fakeNavbarCache is a single-slot cache.
type fakeNavbarCache struct {
	tree        []models.Category
	ok          bool
	invalidated int
}

func (f *fakeNavbarCache) Get(context.Context) ([]models.Category, bool) { return f.tree, f.ok }
func (f *fakeNavbarCache) Set(_ context.Context, tree []models.Category) {
	f.tree, f.ok = tree, true
}
func (f *fakeNavbarCache) Invalidate(context.Context) {
	f.tree, f.ok = nil, false
	f.invalidated++
}
