// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package category

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"repairshop/internal/models"
)

// MaxAncestorHops bounds the ancestor walk in ValidateParentAssignment.
// A well-formed tree never gets near it; it only matters if rows were
// written around the service.
const MaxAncestorHops = 100

// Flag names a boolean column that cascades to descendants.
type Flag string

const (
	FlagActive Flag = "is_active"
	FlagNavbar Flag = "show_in_navbar"
)

// Valid reports whether f is one of the known cascading flags.
func (f Flag) Valid() bool {
	return f == FlagActive || f == FlagNavbar
}

// ValidateParentAssignment checks that placing targetID under newParentID
// keeps the tree acyclic. targetID is nil when the category does not exist
// yet. A nil newParentID (becoming a root) is always allowed.
//
// The walk follows parent links upward from newParentID and stops at a
// root, at a dangling reference, or after MaxAncestorHops hops.
func (s *Service) ValidateParentAssignment(ctx context.Context, targetID, newParentID *uuid.UUID) error {
	if newParentID == nil {
		return nil
	}
	if targetID != nil && *targetID == *newParentID {
		return ErrSelfParent
	}

	current := *newParentID
	for hops := 0; hops < MaxAncestorHops; hops++ {
		if targetID != nil && current == *targetID {
			return ErrCircularHierarchy
		}
		parentID, found, err := s.repo.ParentOf(ctx, current)
		if err != nil {
			return fmt.Errorf("trace ancestors of %s: %w", current, err)
		}
		if !found || parentID == nil {
			return nil
		}
		current = *parentID
	}

	slog.Warn("ancestor walk hit hop ceiling",
		"parent_id", newParentID.String(),
		"max_hops", MaxAncestorHops,
	)
	return nil
}

// PropagateFlagToDescendants writes value into flag on every transitive
// descendant of rootID. Each tree level is discovered with one query and
// written with one batched update before the next level is visited.
// Running it again with the same arguments changes nothing.
func (s *Service) PropagateFlagToDescendants(ctx context.Context, rootID uuid.UUID, flag Flag, value bool) error {
	if !flag.Valid() {
		return fmt.Errorf("propagate flag: unknown flag %q", flag)
	}

	ctx, span := tracer.Start(ctx, "category.cascade")
	defer span.End()
	span.SetAttributes(
		attribute.String("category.id", rootID.String()),
		attribute.String("category.flag", string(flag)),
	)

	visited := map[uuid.UUID]bool{rootID: true}
	level := []uuid.UUID{rootID}
	depth := 0
	total := 0

	for len(level) > 0 {
		children, err := s.repo.ChildIDs(ctx, level)
		if err != nil {
			return recordErr(span, fmt.Errorf("cascade %s level %d: list children: %w", flag, depth, err))
		}

		next := make([]uuid.UUID, 0, len(children))
		for _, id := range children {
			if visited[id] {
				continue
			}
			visited[id] = true
			next = append(next, id)
		}
		if len(next) == 0 {
			break
		}

		if err := s.repo.SetFlag(ctx, next, flag, value); err != nil {
			return recordErr(span, fmt.Errorf("cascade %s level %d: write %d rows: %w", flag, depth, len(next), err))
		}

		total += len(next)
		depth++
		level = next
	}

	span.SetAttributes(attribute.Int("category.cascade.rows", total))
	slog.Debug("flag cascaded",
		"root_id", rootID.String(),
		"flag", string(flag),
		"value", value,
		"levels", depth,
		"rows", total,
	)
	return nil
}

// ApplyConsistencyRule forces show_in_navbar off whenever the category ends
// up inactive, so a single write can never leave it hidden-but-listed.
func ApplyConsistencyRule(pending models.CategoryPatch, current models.Category) models.CategoryPatch {
	active := current.IsActive
	if pending.IsActive != nil {
		active = *pending.IsActive
	}
	if !active {
		off := false
		pending.ShowInNavbar = &off
	}
	return pending
}

// cascadesFor returns the flags whose "off" transition must be pushed down
// after payload is written.
func cascadesFor(requested, payload models.CategoryPatch) []Flag {
	var flags []Flag
	if requested.IsActive != nil && !*requested.IsActive {
		flags = append(flags, FlagActive)
	}
	if payload.ShowInNavbar != nil && !*payload.ShowInNavbar {
		flags = append(flags, FlagNavbar)
	}
	return flags
}
