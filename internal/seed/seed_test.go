package seed

import (
	"context"
	"testing"

	"github.com/jacksonlee411/Shelves-And-Sectors/modules/taxonomy/domain/types"
	"github.com/jacksonlee411/Shelves-And-Sectors/modules/taxonomy/infrastructure/persistence"
	"github.com/jacksonlee411/Shelves-And-Sectors/modules/taxonomy/services"
)

const fixture = `
version: 1
nodes:
  - name: Electronics
    code: LCT
    children:
      - name: Audio
        code: D
        children:
          - name: Headphones
            code: HDPH
  - name: Food
products:
  - name: Earbuds
    node: HDPH
  - name: Olive Oil
    node: FD
`

func TestParse(t *testing.T) {
	t.Parallel()

	f, err := Parse([]byte(fixture))
	if err != nil {
		t.Fatal(err)
	}
	if len(f.Nodes) != 2 || len(f.Products) != 2 {
		t.Fatalf("nodes=%d products=%d", len(f.Nodes), len(f.Products))
	}
	if f.Nodes[0].Children[0].Children[0].Code != "HDPH" {
		t.Fatalf("nested code=%q", f.Nodes[0].Children[0].Children[0].Code)
	}
}

func TestParse_Errors(t *testing.T) {
	t.Parallel()

	if _, err := Parse([]byte("version: 9\nnodes: [{name: X}]")); err == nil {
		t.Fatal("expected version error")
	}
	if _, err := Parse([]byte("version: 1")); err == nil {
		t.Fatal("expected empty nodes error")
	}
	if _, err := Parse([]byte("{")); err == nil {
		t.Fatal("expected yaml error")
	}
}

func TestApply_BuildsValidStore(t *testing.T) {
	t.Parallel()

	f, err := Parse([]byte(fixture))
	if err != nil {
		t.Fatal(err)
	}
	store := persistence.NewMemoryStore()
	svc := services.NewTaxonomyWriteService(store, store)
	if err := Apply(context.Background(), f, store, svc); err != nil {
		t.Fatal(err)
	}

	nodes := store.All()
	if len(nodes) != 4 {
		t.Fatalf("nodes=%d", len(nodes))
	}
	for _, n := range nodes {
		depth := services.DepthOf(store, n.ID)
		if n.Type != types.TypeForDepth(depth) {
			t.Fatalf("%s type=%s depth=%d", n.Name, n.Type, depth)
		}
	}

	// Food had no code in the seed, so the allocator supplied FD and
	// the product reference resolves.
	forest := services.BuildForest(store.All(), store.AllProducts())
	var food *types.TreeNode
	for _, tn := range forest {
		if tn.Name == "Food" {
			food = tn
		}
	}
	if food == nil || food.BranchCode != "FD" {
		t.Fatalf("food=%+v", food)
	}
	if food.ProductCount != 1 {
		t.Fatalf("food count=%d", food.ProductCount)
	}
}

func TestApply_UnknownProductNode(t *testing.T) {
	t.Parallel()

	f, err := Parse([]byte("version: 1\nnodes: [{name: Solo}]\nproducts: [{name: Lost, node: NOPE}]"))
	if err != nil {
		t.Fatal(err)
	}
	store := persistence.NewMemoryStore()
	svc := services.NewTaxonomyWriteService(store, store)
	if err := Apply(context.Background(), f, store, svc); err == nil {
		t.Fatal("expected unknown node error")
	}
}
