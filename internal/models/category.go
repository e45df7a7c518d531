// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Category represents a node in the self-referencing catalog tree.
// A nil ParentID marks a root category.
type Category struct {
	ID           uuid.UUID  `json:"id"`
	Name         string     `json:"name"`
	Slug         string     `json:"slug"`
	Description  string     `json:"description"`
	Icon         string     `json:"icon"`
	ImageURL     string     `json:"image_url"`
	ParentID     *uuid.UUID `json:"parent_id"`
	Order        int        `json:"order"`
	ShowInNavbar bool       `json:"show_in_navbar"`
	IsActive     bool       `json:"is_active"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`

	// Virtual fields populated by store and service methods.
	DescriptionHTML string     `json:"description_html,omitempty"`
	Parent          *Category  `json:"parent,omitempty"`
	Children        []Category `json:"children,omitempty"`
}

// IsRoot reports whether the category has no parent.
func (c *Category) IsRoot() bool {
	return c.ParentID == nil
}

// CategoryInput is the payload for creating a category.
type CategoryInput struct {
	Name         string     `json:"name" validate:"required,max=200"`
	Slug         string     `json:"slug" validate:"omitempty,max=200,slug"`
	Description  string     `json:"description" validate:"max=2000"`
	Icon         string     `json:"icon" validate:"max=200"`
	ImageURL     string     `json:"image_url" validate:"omitempty,url"`
	ParentID     *uuid.UUID `json:"parent_id"`
	Order        int        `json:"order" validate:"gte=0"`
	ShowInNavbar *bool      `json:"show_in_navbar"`
	IsActive     *bool      `json:"is_active"`
}

// CategoryPatch is a partial update. Nil pointers leave the stored value
// untouched; ParentID distinguishes "absent" from an explicit null.
type CategoryPatch struct {
	Name         *string    `json:"name" validate:"omitempty,max=200"`
	Slug         *string    `json:"slug" validate:"omitempty,max=200,slug"`
	Description  *string    `json:"description" validate:"omitempty,max=2000"`
	Icon         *string    `json:"icon" validate:"omitempty,max=200"`
	ImageURL     *string    `json:"image_url" validate:"omitempty,url|len=0"`
	ParentID     OptionalID `json:"parent_id"`
	Order        *int       `json:"order" validate:"omitempty,gte=0"`
	ShowInNavbar *bool      `json:"show_in_navbar"`
	IsActive     *bool      `json:"is_active"`
}

// Empty reports whether the patch changes nothing.
func (p *CategoryPatch) Empty() bool {
	return p.Name == nil && p.Slug == nil && p.Description == nil &&
		p.Icon == nil && p.ImageURL == nil && !p.ParentID.Set &&
		p.Order == nil && p.ShowInNavbar == nil && p.IsActive == nil
}

// OptionalID is a nullable id that remembers whether it was supplied at all.
type OptionalID struct {
	Set bool
	ID  *uuid.UUID
}

// SetID returns an OptionalID pointing at id.
func SetID(id uuid.UUID) OptionalID {
	return OptionalID{Set: true, ID: &id}
}

// SetNull returns an OptionalID that explicitly clears the value.
func SetNull() OptionalID {
	return OptionalID{Set: true}
}

// UnmarshalJSON is only invoked when the key is present, so both a value
// and a literal null mark the field as set.
func (o *OptionalID) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.ID = nil
		return nil
	}
	var id uuid.UUID
	if err := json.Unmarshal(data, &id); err != nil {
		return err
	}
	o.ID = &id
	return nil
}

// MarshalJSON renders the id or null.
func (o OptionalID) MarshalJSON() ([]byte, error) {
	if o.ID == nil {
		return []byte("null"), nil
	}
	return json.Marshal(o.ID)
}
