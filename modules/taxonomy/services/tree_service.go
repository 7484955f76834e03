package services

import (
	"strings"
	"sync"

	"github.com/jacksonlee411/Shelves-And-Sectors/modules/taxonomy/domain/ports"
	"github.com/jacksonlee411/Shelves-And-Sectors/modules/taxonomy/domain/types"
)

// TreeService derives the rooted forest view from the flat node store.
// The forest is rebuilt lazily: a store write bumps the revision and the
// next read recomputes. A built forest is never mutated afterward, only
// replaced, so handing the cached slice to concurrent readers is safe.
type TreeService struct {
	store    ports.NodeStore
	products ports.ProductSource

	mu           sync.Mutex
	cachedAt     uint64
	cachedForest []*types.TreeNode
}

func NewTreeService(store ports.NodeStore, products ports.ProductSource) *TreeService {
	return &TreeService{store: store, products: products}
}

// Tree returns the current forest, rebuilding it when the store has
// changed since the last read.
func (s *TreeService) Tree() []*types.TreeNode {
	s.mu.Lock()
	defer s.mu.Unlock()

	rev := s.store.Revision()
	if s.cachedForest == nil || s.cachedAt != rev {
		s.cachedForest = BuildForest(s.store.All(), s.products.AllProducts())
		s.cachedAt = rev
	}
	return s.cachedForest
}

// TotalProductCount is the global count, independent of tree shape.
func (s *TreeService) TotalProductCount() int {
	return len(s.products.AllProducts())
}

// BuildForest groups the flat collection into a forest rooted at the
// nodes with no parent. Works for arbitrary depth: the group type exists
// precisely because depth is unbounded. Siblings keep store order.
func BuildForest(nodes []types.Node, products []types.Product) []*types.TreeNode {
	childrenOf := make(map[string][]types.Node)
	for _, n := range nodes {
		childrenOf[n.ParentID] = append(childrenOf[n.ParentID], n)
	}
	productsAt := make(map[string]int)
	for _, p := range products {
		productsAt[p.NodeID]++
	}
	return buildLevel(childrenOf, productsAt, "", 1)
}

func buildLevel(childrenOf map[string][]types.Node, productsAt map[string]int, parentID string, level int) []*types.TreeNode {
	group := childrenOf[parentID]
	if len(group) == 0 {
		return nil
	}
	out := make([]*types.TreeNode, 0, len(group))
	for _, n := range group {
		tn := &types.TreeNode{
			Node:          n,
			Level:         level,
			Children:      buildLevel(childrenOf, productsAt, n.ID, level+1),
			DescendantIDs: map[string]bool{n.ID: true},
		}
		tn.ProductCount = productsAt[n.ID]
		for _, child := range tn.Children {
			for id := range child.DescendantIDs {
				tn.DescendantIDs[id] = true
			}
			tn.ProductCount += child.ProductCount
		}
		out = append(out, tn)
	}
	return out
}

// FindTreeNode locates a node in the forest by id.
func FindTreeNode(forest []*types.TreeNode, id string) *types.TreeNode {
	for _, tn := range forest {
		if tn.ID == id {
			return tn
		}
		if found := FindTreeNode(tn.Children, id); found != nil {
			return found
		}
	}
	return nil
}

// DescendantIDs returns the descendant-inclusive id set of a node, or
// nil if the node is absent from the forest.
func DescendantIDs(forest []*types.TreeNode, id string) map[string]bool {
	tn := FindTreeNode(forest, id)
	if tn == nil {
		return nil
	}
	return tn.DescendantIDs
}

// ResolvePath walks ParentID links up to the root and returns the
// ordered root-to-node name sequence, e.g. Sector > Category > Leaf.
func ResolvePath(store ports.NodeStore, id string) ([]string, error) {
	var names []string
	seen := make(map[string]bool)
	current := id
	for current != "" {
		if seen[current] {
			// Corrupt parent chain; bail out rather than loop.
			return nil, ports.ErrCyclicMove
		}
		seen[current] = true
		n, ok := store.Get(current)
		if !ok {
			return nil, ports.ErrNodeNotFound
		}
		names = append(names, n.Name)
		current = n.ParentID
	}
	for i, j := 0, len(names)-1; i < j; i, j = i+1, j-1 {
		names[i], names[j] = names[j], names[i]
	}
	return names, nil
}

// PathString renders a resolved path in display form.
func PathString(names []string) string {
	return strings.Join(names, " > ")
}

// DepthOf returns a node's depth (root-level = 1) by walking its parent
// chain, or 0 if the node is absent.
func DepthOf(store ports.NodeStore, id string) int {
	depth := 0
	seen := make(map[string]bool)
	current := id
	for current != "" && !seen[current] {
		seen[current] = true
		n, ok := store.Get(current)
		if !ok {
			return 0
		}
		depth++
		current = n.ParentID
	}
	return depth
}
