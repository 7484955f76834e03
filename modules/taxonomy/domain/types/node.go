package types

type NodeType string

const (
	NodeTypeSector      NodeType = "sector"
	NodeTypeCategory    NodeType = "category"
	NodeTypeSubcategory NodeType = "subcategory"
	NodeTypeGroup       NodeType = "group"
)

// TypeForDepth maps a node's depth to its canonical type. Root-level
// nodes have depth 1. The mapping is total: anything at depth 4 or
// deeper is a free-form group.
func TypeForDepth(depth int) NodeType {
	switch depth {
	case 1:
		return NodeTypeSector
	case 2:
		return NodeTypeCategory
	case 3:
		return NodeTypeSubcategory
	default:
		return NodeTypeGroup
	}
}

// SectorColorPaletteSize is the number of distinct color slots available
// to root-level sectors.
const SectorColorPaletteSize = 12

// SectorExtras carries attributes that only exist on sector-typed nodes.
type SectorExtras struct {
	ColorIndex int `json:"color_index"`
}

// Node is the canonical stored shape of one taxonomy entry. ParentID is
// empty for root-level nodes. Type is stored explicitly because a move
// can change a node's depth; it is always recomputed from depth, never
// trusted as authoritative after structural changes.
type Node struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Type         NodeType      `json:"type"`
	ParentID     string        `json:"parent_id,omitempty"`
	Description  string        `json:"description,omitempty"`
	BranchCode   string        `json:"branch_code,omitempty"`
	SectorExtras *SectorExtras `json:"sector_extras,omitempty"`
}

// Product is read-only from the engine's perspective: it is never
// mutated here, only counted against the node it is filed under.
type Product struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	NodeID string `json:"node_id"`
}
