package persistence

import (
	"sync"

	"github.com/jacksonlee411/Shelves-And-Sectors/modules/taxonomy/domain/ports"
	"github.com/jacksonlee411/Shelves-And-Sectors/modules/taxonomy/domain/types"
)

// MemoryStore is the in-memory node store plus the product index the
// engine counts against. All() returns nodes in insertion order so tree
// builds and sibling ordering stay deterministic across reads. Safe for
// concurrent use: HTTP handlers hit it from multiple goroutines.
type MemoryStore struct {
	mu       sync.Mutex
	nodes    map[string]types.Node
	order    []string
	products []types.Product
	revision uint64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{nodes: make(map[string]types.Node)}
}

func (s *MemoryStore) Get(id string) (types.Node, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.nodes[id]
	return n, ok
}

func (s *MemoryStore) All() []types.Node {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]types.Node, 0, len(s.order))
	for _, id := range s.order {
		if n, ok := s.nodes[id]; ok {
			out = append(out, n)
		}
	}
	return out
}

func (s *MemoryStore) Insert(node types.Node) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.nodes[node.ID]; !exists {
		s.order = append(s.order, node.ID)
	}
	s.nodes[node.ID] = node
	s.revision++
}

func (s *MemoryStore) Update(id string, patch ports.NodePatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.nodes[id]
	if !ok {
		return ports.ErrNodeNotFound
	}
	if patch.Name != nil {
		n.Name = *patch.Name
	}
	if patch.Type != nil {
		n.Type = *patch.Type
	}
	if patch.ParentID != nil {
		n.ParentID = *patch.ParentID
	}
	if patch.Description != nil {
		n.Description = *patch.Description
	}
	if patch.BranchCode != nil {
		n.BranchCode = *patch.BranchCode
	}
	if patch.ClearSectorExtras {
		n.SectorExtras = nil
	} else if patch.SectorExtras != nil {
		extras := *patch.SectorExtras
		n.SectorExtras = &extras
	}
	s.nodes[id] = n
	s.revision++
	return nil
}

func (s *MemoryStore) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.nodes[id]; !ok {
		return ports.ErrNodeNotFound
	}
	delete(s.nodes, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	s.revision++
	return nil
}

func (s *MemoryStore) Revision() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.revision
}

func (s *MemoryStore) AllProducts() []types.Product {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]types.Product, len(s.products))
	copy(out, s.products)
	return out
}

// SetProducts replaces the product index. Products are owned by another
// subsystem; the store only holds them for counting.
func (s *MemoryStore) SetProducts(products []types.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.products = make([]types.Product, len(products))
	copy(s.products, products)
	s.revision++
}
