package category

import (
	"testing"

	"github.com/google/uuid"

	"repairshop/internal/models"
)

func TestBuildNavbarTree(t *testing.T) {
	id := func() uuid.UUID { return uuid.New() }
	rootA, rootB, mid, leaf, deep, stray := id(), id(), id(), id(), id(), id()
	missing := id()

	flat := []models.Category{
		{ID: deep, Name: "Level 4", ParentID: &leaf},
		{ID: rootB, Name: "Accessories", Order: 1},
		{ID: leaf, Name: "Batteries", ParentID: &mid},
		{ID: rootA, Name: "Phones", Order: 0},
		{ID: mid, Name: "Parts", ParentID: &rootA},
		{ID: stray, Name: "Stray", ParentID: &missing},
	}

	tree := BuildNavbarTree(flat)

	if len(tree) != 2 {
		t.Fatalf("roots: got %d, want 2", len(tree))
	}
	if tree[0].ID != rootA || tree[1].ID != rootB {
		t.Errorf("root order: got %s, %s", tree[0].Name, tree[1].Name)
	}
	if len(tree[0].Children) != 1 || tree[0].Children[0].ID != mid {
		t.Fatalf("expected Parts under Phones, got %+v", tree[0].Children)
	}
	grand := tree[0].Children[0].Children
	if len(grand) != 1 || grand[0].ID != leaf {
		t.Fatalf("expected Batteries under Parts, got %+v", grand)
	}
	if grand[0].Children != nil {
		t.Errorf("tree must stop two levels below the roots, got %d extra", len(grand[0].Children))
	}
}

func TestBuildNavbarTreeSiblingOrder(t *testing.T) {
	root := uuid.New()
	flat := []models.Category{
		{ID: root, Name: "Repairs"},
		{ID: uuid.New(), Name: "Screens", Order: 1, ParentID: &root},
		{ID: uuid.New(), Name: "Batteries", Order: 1, ParentID: &root},
		{ID: uuid.New(), Name: "Water damage", Order: 0, ParentID: &root},
	}

	tree := BuildNavbarTree(flat)
	got := []string{}
	for _, c := range tree[0].Children {
		got = append(got, c.Name)
	}
	want := []string{"Water damage", "Batteries", "Screens"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("children order: got %v, want %v", got, want)
		}
	}
}

func TestBuildNavbarTreeEmpty(t *testing.T) {
	tree := BuildNavbarTree(nil)
	if tree == nil || len(tree) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", tree)
	}
}
