// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package category

import (
	"sort"

	"github.com/google/uuid"

	"repairshop/internal/models"
)

// navbarDepth is how many levels below the roots the navbar tree carries.
const navbarDepth = 2

// BuildNavbarTree nests navbar-eligible categories under their parents.
// Only roots appear at the top level, each level is ordered by (order,
// name), and nesting stops navbarDepth levels below the roots. Entries
// whose parent is not in flat are unreachable and dropped.
func BuildNavbarTree(flat []models.Category) []models.Category {
	byParent := make(map[uuid.UUID][]models.Category)
	var roots []models.Category
	for _, c := range flat {
		if c.ParentID == nil {
			roots = append(roots, c)
			continue
		}
		byParent[*c.ParentID] = append(byParent[*c.ParentID], c)
	}

	tree := attachChildren(roots, byParent, navbarDepth)
	if tree == nil {
		tree = []models.Category{}
	}
	return tree
}

func attachChildren(nodes []models.Category, byParent map[uuid.UUID][]models.Category, depth int) []models.Category {
	sortForDisplay(nodes)
	for i := range nodes {
		nodes[i].Parent = nil
		nodes[i].Children = nil
		if depth > 0 {
			if kids := byParent[nodes[i].ID]; len(kids) > 0 {
				nodes[i].Children = attachChildren(append([]models.Category(nil), kids...), byParent, depth-1)
			}
		}
	}
	return nodes
}

// sortForDisplay orders siblings by order ascending, then name.
func sortForDisplay(items []models.Category) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Order != items[j].Order {
			return items[i].Order < items[j].Order
		}
		return items[i].Name < items[j].Name
	})
}
