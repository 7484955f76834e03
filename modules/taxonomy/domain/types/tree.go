package types

// TreeNode is the derived per-node view produced by the tree service.
// Level is the node's depth (root-level = 1). DescendantIDs is the
// descendant-inclusive id set: the node itself plus every node
// transitively parented under it.
type TreeNode struct {
	Node
	Level         int             `json:"level"`
	Children      []*TreeNode     `json:"children"`
	DescendantIDs map[string]bool `json:"-"`
	ProductCount  int             `json:"product_count"`
}

type DropKind string

const (
	DropBefore DropKind = "before"
	DropAfter  DropKind = "after"
	DropInside DropKind = "inside"
)

// ClassifyDrop derives the drop zone from where a gesture ended relative
// to the target node's visual bounds: top quartile is before, bottom
// quartile is after, the middle half is inside.
func ClassifyDrop(offsetY, height float64) DropKind {
	if height <= 0 {
		return DropInside
	}
	switch {
	case offsetY < height/4:
		return DropBefore
	case offsetY > height*3/4:
		return DropAfter
	default:
		return DropInside
	}
}
