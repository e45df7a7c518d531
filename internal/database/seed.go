// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// seedNode is one category in the development tree.
type seedNode struct {
	name, slug, icon string
	navbar           bool
	children         []seedNode
}

var seedTree = []seedNode{
	{name: "Phone Repair", slug: "phone-repair", icon: "smartphone", navbar: true, children: []seedNode{
		{name: "Screen Replacement", slug: "screen-replacement", icon: "monitor", navbar: true, children: []seedNode{
			{name: "OLED Screens", slug: "oled-screens", navbar: true},
			{name: "LCD Screens", slug: "lcd-screens", navbar: true},
		}},
		{name: "Battery Replacement", slug: "battery-replacement", icon: "battery", navbar: true},
	}},
	{name: "Laptop Repair", slug: "laptop-repair", icon: "laptop", navbar: true, children: []seedNode{
		{name: "Keyboards", slug: "keyboards", navbar: true},
		{name: "Data Recovery", slug: "data-recovery"},
	}},
	{name: "Accessories", slug: "accessories", icon: "shopping-bag", navbar: true, children: []seedNode{
		{name: "Cases", slug: "cases", navbar: true},
		{name: "Chargers", slug: "chargers", navbar: true},
	}},
}

// Seed populates an empty categories table with a sample repair-shop
// hierarchy. It is a no-op once any category exists.
func Seed(ctx context.Context, db *sql.DB) error {
	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM categories").Scan(&count); err != nil {
		return fmt.Errorf("seed check categories: %w", err)
	}

	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed begin: %w", err)
	}
	defer tx.Rollback()

	inserted := 0
	var insert func(nodes []seedNode, parent *string) error
	insert = func(nodes []seedNode, parent *string) error {
		for i, n := range nodes {
			var id string
			err := tx.QueryRowContext(ctx, `
				INSERT INTO categories (name, slug, icon, parent_id, sort_order, show_in_navbar)
				VALUES ($1, $2, $3, $4, $5, $6)
				RETURNING id`,
				n.name, n.slug, n.icon, parent, i, n.navbar,
			).Scan(&id)
			if err != nil {
				return fmt.Errorf("seed insert %s: %w", n.slug, err)
			}
			inserted++
			if err := insert(n.children, &id); err != nil {
				return err
			}
		}
		return nil
	}
	if err := insert(seedTree, nil); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed commit: %w", err)
	}

	slog.Info("database seeded with sample categories", "count", inserted)
	return nil
}
