package ports

import (
	"errors"

	"github.com/jacksonlee411/Shelves-And-Sectors/modules/taxonomy/domain/types"
)

var (
	ErrNodeNotFound  = errors.New("node_not_found")
	ErrEmptyName     = errors.New("name_required")
	ErrSelfParent    = errors.New("self_parent")
	ErrCyclicMove    = errors.New("cyclic_move")
	ErrStaleProposal = errors.New("stale_proposal")
)

// NodePatch is a partial update; nil fields are left untouched.
// ClearSectorExtras exists because SectorExtras must be dropped, not
// just replaced, when a node stops being a sector.
type NodePatch struct {
	Name              *string
	Type              *types.NodeType
	ParentID          *string
	Description       *string
	BranchCode        *string
	SectorExtras      *types.SectorExtras
	ClearSectorExtras bool
}

// NodeStore is the canonical flat collection of nodes. It performs no
// validation; the mutation service is responsible for every invariant.
// Revision increments on every write so derived views can recompute
// lazily on next read.
type NodeStore interface {
	Get(id string) (types.Node, bool)
	All() []types.Node
	Insert(node types.Node)
	Update(id string, patch NodePatch) error
	Remove(id string) error
	Revision() uint64
}

// ProductSource is the read-only product collection the engine counts
// against; it is owned elsewhere and never mutated here.
type ProductSource interface {
	AllProducts() []types.Product
}
