package seed

import (
	"context"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/jacksonlee411/Shelves-And-Sectors/modules/taxonomy/domain/types"
	"github.com/jacksonlee411/Shelves-And-Sectors/modules/taxonomy/infrastructure/persistence"
	"github.com/jacksonlee411/Shelves-And-Sectors/modules/taxonomy/services"
)

// File is the on-disk shape of a taxonomy seed. Products reference
// their node by branch code so seeds stay readable and stable across
// regenerated node ids.
type File struct {
	Version  int           `yaml:"version"`
	Nodes    []NodeSpec    `yaml:"nodes"`
	Products []ProductSpec `yaml:"products"`
}

type NodeSpec struct {
	Name        string     `yaml:"name"`
	Code        string     `yaml:"code"`
	Type        string     `yaml:"type"`
	Description string     `yaml:"description"`
	Children    []NodeSpec `yaml:"children"`
}

type ProductSpec struct {
	Name string `yaml:"name"`
	Node string `yaml:"node"`
}

func Parse(b []byte) (File, error) {
	var f File
	if err := yaml.Unmarshal(b, &f); err != nil {
		return File{}, err
	}
	if f.Version != 1 {
		return File{}, errors.New("seed: unsupported version")
	}
	if len(f.Nodes) == 0 {
		return File{}, errors.New("seed: no nodes")
	}
	return f, nil
}

func Load(path string) (File, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return File{}, err
	}
	return Parse(b)
}

// Apply replays the seed through the write service so every invariant
// (depth typing, code uniqueness, color allocation) is enforced on
// load, and installs the product index keyed by resolved node ids.
func Apply(ctx context.Context, f File, store *persistence.MemoryStore, svc services.TaxonomyWriteService) error {
	byCode := make(map[string]string)
	if err := applyNodes(ctx, f.Nodes, "", byCode, svc); err != nil {
		return err
	}

	products := make([]types.Product, 0, len(f.Products))
	for i, p := range f.Products {
		nodeID, ok := byCode[p.Node]
		if !ok {
			return fmt.Errorf("seed: product %q references unknown node code %q", p.Name, p.Node)
		}
		products = append(products, types.Product{
			ID:     fmt.Sprintf("seed-p%d", i+1),
			Name:   p.Name,
			NodeID: nodeID,
		})
	}
	store.SetProducts(products)
	return nil
}

func applyNodes(ctx context.Context, specs []NodeSpec, parentID string, byCode map[string]string, svc services.TaxonomyWriteService) error {
	for _, spec := range specs {
		node, err := svc.Add(ctx, services.AddNodeRequest{
			ParentID:    parentID,
			Name:        spec.Name,
			Type:        types.NodeType(spec.Type),
			BranchCode:  spec.Code,
			Description: spec.Description,
		})
		if err != nil {
			return fmt.Errorf("seed: node %q: %w", spec.Name, err)
		}
		byCode[node.BranchCode] = node.ID
		if err := applyNodes(ctx, spec.Children, node.ID, byCode, svc); err != nil {
			return err
		}
	}
	return nil
}
