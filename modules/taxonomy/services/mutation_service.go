package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/jacksonlee411/Shelves-And-Sectors/modules/taxonomy/domain/ports"
	"github.com/jacksonlee411/Shelves-And-Sectors/modules/taxonomy/domain/types"
	"github.com/jacksonlee411/Shelves-And-Sectors/pkg/branchcode"
	"github.com/jacksonlee411/Shelves-And-Sectors/pkg/httperr"
	"github.com/jacksonlee411/Shelves-And-Sectors/pkg/nodeid"
)

var newNodeID = nodeid.NewString

// TaxonomyWriteService validates and applies the structural operations.
// Move and Delete are two-phase: Propose computes and validates the
// outcome with zero side effects; Confirm re-validates against the
// current store before mutating, so a stale proposal can never corrupt
// the tree. Every operation is all-or-nothing.
type TaxonomyWriteService interface {
	Add(ctx context.Context, req AddNodeRequest) (types.Node, error)
	Rename(ctx context.Context, req RenameNodeRequest) error
	ProposeMove(ctx context.Context, req MoveNodeRequest) (MoveProposal, error)
	ConfirmMove(ctx context.Context, proposal MoveProposal) error
	Move(ctx context.Context, req MoveNodeRequest) error
	ProposeDelete(ctx context.Context, nodeID string) (DeleteProposal, error)
	ConfirmDelete(ctx context.Context, proposal DeleteProposal) error
	Delete(ctx context.Context, nodeID string) error
}

type AddNodeRequest struct {
	ParentID    string
	Name        string
	Type        types.NodeType // optional override, e.g. force group
	BranchCode  string
	Description string
}

type RenameNodeRequest struct {
	NodeID  string
	NewName string
}

type MoveNodeRequest struct {
	NodeID   string
	TargetID string
	Drop     types.DropKind
}

// MoveProposal is the validated outcome of a requested move. Confirm
// recomputes the proposal against the live store and refuses to apply
// when the outcome would differ from what the caller previewed.
type MoveProposal struct {
	NodeID              string         `json:"node_id"`
	TargetID            string         `json:"target_id"`
	Drop                types.DropKind `json:"drop"`
	NewParentID         string         `json:"new_parent_id,omitempty"`
	NewDepth            int            `json:"new_depth"`
	NewType             types.NodeType `json:"new_type"`
	AffectedDescendants int            `json:"affected_descendants"`
	AffectedProducts    int            `json:"affected_products"`
	Summary             string         `json:"summary"`
}

type DeleteProposal struct {
	NodeID           string   `json:"node_id"`
	SubtreeIDs       []string `json:"subtree_ids"`
	AffectedProducts int      `json:"affected_products"`
	Summary          string   `json:"summary"`
}

type taxonomyWriteService struct {
	store    ports.NodeStore
	products ports.ProductSource
}

func NewTaxonomyWriteService(store ports.NodeStore, products ports.ProductSource) TaxonomyWriteService {
	return &taxonomyWriteService{store: store, products: products}
}

func (s *taxonomyWriteService) Add(_ context.Context, req AddNodeRequest) (types.Node, error) {
	name := strings.TrimSpace(req.Name)
	parentID := strings.TrimSpace(req.ParentID)

	parentExists := parentID == ""
	parentDepth := 0
	if parentID != "" {
		if _, ok := s.store.Get(parentID); ok {
			parentExists = true
			parentDepth = DepthOf(s.store, parentID)
		}
	}

	decision, err := ResolveTaxonomyMutationPolicy(TaxonomyMutationPolicyKey{ActionKind: TaxonomyActionAdd}, TaxonomyMutationPolicyFacts{
		CanWrite:     true,
		NameEmpty:    name == "",
		TargetExists: parentExists,
	})
	if err != nil {
		return types.Node{}, err
	}
	if !decision.Enabled {
		return types.Node{}, errForDenyReasons(decision.DenyReasons)
	}

	impliedType := types.TypeForDepth(parentDepth + 1)
	nodeType := req.Type
	if nodeType == "" {
		nodeType = impliedType
	} else if !validNodeType(nodeType) {
		return types.Node{}, httperr.NewBadRequest("invalid node type")
	} else if nodeType != impliedType && nodeType != types.NodeTypeGroup {
		// The only permitted override is forcing a free-form group at
		// any depth; everything else stays a projection of depth.
		return types.Node{}, httperr.NewBadRequest("node type must match depth")
	}

	existing := s.branchCodesInUse("")
	code := strings.TrimSpace(req.BranchCode)
	if code != "" {
		if err := branchcode.Validate(code, existing); err != nil {
			return types.Node{}, err
		}
	} else {
		code, err = branchcode.Suggest(name, existing)
		if err != nil {
			return types.Node{}, err
		}
	}

	id, err := newNodeID()
	if err != nil {
		return types.Node{}, err
	}

	node := types.Node{
		ID:          id,
		Name:        name,
		Type:        nodeType,
		ParentID:    parentID,
		Description: strings.TrimSpace(req.Description),
		BranchCode:  code,
	}
	if node.Type == types.NodeTypeSector {
		node.SectorExtras = &types.SectorExtras{ColorIndex: s.lowestFreeColorIndex("")}
	}

	s.store.Insert(node)
	return node, nil
}

func (s *taxonomyWriteService) Rename(_ context.Context, req RenameNodeRequest) error {
	newName := strings.TrimSpace(req.NewName)
	_, exists := s.store.Get(req.NodeID)

	decision, err := ResolveTaxonomyMutationPolicy(TaxonomyMutationPolicyKey{ActionKind: TaxonomyActionRename}, TaxonomyMutationPolicyFacts{
		CanWrite:   true,
		NameEmpty:  newName == "",
		NodeExists: exists,
	})
	if err != nil {
		return err
	}
	if !decision.Enabled {
		return errForDenyReasons(decision.DenyReasons)
	}

	return s.store.Update(req.NodeID, ports.NodePatch{Name: &newName})
}

func (s *taxonomyWriteService) ProposeMove(_ context.Context, req MoveNodeRequest) (MoveProposal, error) {
	return s.computeMoveProposal(req)
}

func (s *taxonomyWriteService) ConfirmMove(ctx context.Context, proposal MoveProposal) error {
	// The tree may have changed between Propose and Confirm; recompute
	// and require the outcome the caller previewed to still hold.
	current, err := s.computeMoveProposal(MoveNodeRequest{
		NodeID:   proposal.NodeID,
		TargetID: proposal.TargetID,
		Drop:     proposal.Drop,
	})
	if err != nil {
		return err
	}
	if current.NewParentID != proposal.NewParentID || current.NewDepth != proposal.NewDepth || current.NewType != proposal.NewType {
		return ports.ErrStaleProposal
	}
	return s.applyMove(current)
}

func (s *taxonomyWriteService) Move(ctx context.Context, req MoveNodeRequest) error {
	proposal, err := s.ProposeMove(ctx, req)
	if err != nil {
		return err
	}
	return s.applyMove(proposal)
}

func (s *taxonomyWriteService) computeMoveProposal(req MoveNodeRequest) (MoveProposal, error) {
	node, nodeExists := s.store.Get(req.NodeID)
	target, targetExists := s.store.Get(req.TargetID)

	var newParentID string
	newDepth := 0
	if targetExists {
		targetDepth := DepthOf(s.store, req.TargetID)
		switch req.Drop {
		case types.DropBefore, types.DropAfter:
			// The node becomes a sibling of the target, not a child.
			newParentID = target.ParentID
			newDepth = targetDepth
		case types.DropInside:
			newParentID = target.ID
			newDepth = targetDepth + 1
		default:
			return MoveProposal{}, httperr.NewBadRequest("invalid drop kind")
		}
	}

	forest := BuildForest(s.store.All(), nil)
	subtree := DescendantIDs(forest, req.NodeID)

	decision, err := ResolveTaxonomyMutationPolicy(TaxonomyMutationPolicyKey{ActionKind: TaxonomyActionMove}, TaxonomyMutationPolicyFacts{
		CanWrite:            true,
		NodeExists:          nodeExists,
		TargetExists:        targetExists,
		IsSelfTarget:        nodeExists && newParentID == node.ID,
		TargetInsideSubtree: nodeExists && newParentID != "" && newParentID != node.ID && subtree[newParentID],
	})
	if err != nil {
		return MoveProposal{}, err
	}
	if !decision.Enabled {
		return MoveProposal{}, errForDenyReasons(decision.DenyReasons)
	}

	newType := types.TypeForDepth(newDepth)
	affectedProducts := 0
	for _, p := range s.products.AllProducts() {
		if subtree[p.NodeID] {
			affectedProducts++
		}
	}

	proposal := MoveProposal{
		NodeID:              node.ID,
		TargetID:            target.ID,
		Drop:                req.Drop,
		NewParentID:         newParentID,
		NewDepth:            newDepth,
		NewType:             newType,
		AffectedDescendants: len(subtree) - 1,
		AffectedProducts:    affectedProducts,
	}
	proposal.Summary = fmt.Sprintf("move %q %s %q as %s (%d descendants retyped)",
		node.Name, req.Drop, target.Name, newType, proposal.AffectedDescendants)
	return proposal, nil
}

func (s *taxonomyWriteService) applyMove(proposal MoveProposal) error {
	oldDepth := DepthOf(s.store, proposal.NodeID)
	if oldDepth == 0 {
		return ports.ErrNodeNotFound
	}
	delta := proposal.NewDepth - oldDepth

	// Snapshot every descendant's depth before touching the store: the
	// subtree moves rigidly, so each one shifts by the same delta.
	forest := BuildForest(s.store.All(), nil)
	subtree := DescendantIDs(forest, proposal.NodeID)
	depths := make(map[string]int, len(subtree))
	for id := range subtree {
		depths[id] = DepthOf(s.store, id)
	}

	newParentID := proposal.NewParentID
	if err := s.applyRetype(proposal.NodeID, proposal.NewDepth, &newParentID); err != nil {
		return err
	}
	for id, depth := range depths {
		if id == proposal.NodeID {
			continue
		}
		if err := s.applyRetype(id, depth+delta, nil); err != nil {
			return err
		}
	}
	return nil
}

// applyRetype updates one node's type for its new depth, attaching or
// dropping sector extras as it crosses the root boundary. parentID is
// only set for the moved node itself; descendants keep their parents.
func (s *taxonomyWriteService) applyRetype(id string, newDepth int, parentID *string) error {
	node, ok := s.store.Get(id)
	if !ok {
		return ports.ErrNodeNotFound
	}
	newType := types.TypeForDepth(newDepth)
	patch := ports.NodePatch{Type: &newType, ParentID: parentID}
	switch {
	case newType == types.NodeTypeSector && node.SectorExtras == nil:
		patch.SectorExtras = &types.SectorExtras{ColorIndex: s.lowestFreeColorIndex(id)}
	case newType != types.NodeTypeSector && node.SectorExtras != nil:
		patch.ClearSectorExtras = true
	}
	return s.store.Update(id, patch)
}

func (s *taxonomyWriteService) ProposeDelete(_ context.Context, nodeID string) (DeleteProposal, error) {
	return s.computeDeleteProposal(nodeID)
}

func (s *taxonomyWriteService) ConfirmDelete(_ context.Context, proposal DeleteProposal) error {
	// Same staleness guard as ConfirmMove: the subtree about to be
	// removed must be exactly the one the caller previewed, so a node
	// added underneath in the meantime is never deleted unseen.
	current, err := s.computeDeleteProposal(proposal.NodeID)
	if err != nil {
		return err
	}
	if !sameIDSet(current.SubtreeIDs, proposal.SubtreeIDs) {
		return ports.ErrStaleProposal
	}
	return s.applyDelete(current)
}

func sameIDSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	set := make(map[string]bool, len(a))
	for _, id := range a {
		set[id] = true
	}
	for _, id := range b {
		if !set[id] {
			return false
		}
	}
	return true
}

func (s *taxonomyWriteService) Delete(ctx context.Context, nodeID string) error {
	proposal, err := s.ProposeDelete(ctx, nodeID)
	if err != nil {
		return err
	}
	return s.applyDelete(proposal)
}

func (s *taxonomyWriteService) computeDeleteProposal(nodeID string) (DeleteProposal, error) {
	node, exists := s.store.Get(nodeID)

	decision, err := ResolveTaxonomyMutationPolicy(TaxonomyMutationPolicyKey{ActionKind: TaxonomyActionDelete}, TaxonomyMutationPolicyFacts{
		CanWrite:   true,
		NodeExists: exists,
	})
	if err != nil {
		return DeleteProposal{}, err
	}
	if !decision.Enabled {
		return DeleteProposal{}, errForDenyReasons(decision.DenyReasons)
	}

	forest := BuildForest(s.store.All(), nil)
	subtree := DescendantIDs(forest, nodeID)
	ids := collectSubtreeLeafFirst(FindTreeNode(forest, nodeID))

	affectedProducts := 0
	for _, p := range s.products.AllProducts() {
		if subtree[p.NodeID] {
			affectedProducts++
		}
	}

	return DeleteProposal{
		NodeID:           nodeID,
		SubtreeIDs:       ids,
		AffectedProducts: affectedProducts,
		Summary: fmt.Sprintf("delete %q and %d descendant(s), affecting %d product(s)",
			node.Name, len(ids)-1, affectedProducts),
	}, nil
}

// applyDelete cascades over the whole subtree, leaf first, so no
// remaining node ever points at a deleted parent.
func (s *taxonomyWriteService) applyDelete(proposal DeleteProposal) error {
	for _, id := range proposal.SubtreeIDs {
		if err := s.store.Remove(id); err != nil {
			return err
		}
	}
	return nil
}

func collectSubtreeLeafFirst(tn *types.TreeNode) []string {
	if tn == nil {
		return nil
	}
	var ids []string
	for _, child := range tn.Children {
		ids = append(ids, collectSubtreeLeafFirst(child)...)
	}
	return append(ids, tn.ID)
}

func (s *taxonomyWriteService) branchCodesInUse(excludeID string) map[string]bool {
	codes := make(map[string]bool)
	for _, n := range s.store.All() {
		if n.ID != excludeID && n.BranchCode != "" {
			codes[n.BranchCode] = true
		}
	}
	return codes
}

// lowestFreeColorIndex allocates the lowest palette slot not already
// used by another root-level sector. Slots free up when a sector is
// deleted or moved off the root, so indexes get reused. Past the
// twelfth sector the palette wraps and colors repeat; the index always
// stays inside [0, SectorColorPaletteSize).
func (s *taxonomyWriteService) lowestFreeColorIndex(excludeID string) int {
	used := make(map[int]bool)
	sectors := 0
	for _, n := range s.store.All() {
		if n.ID == excludeID || n.ParentID != "" {
			continue
		}
		if n.Type == types.NodeTypeSector && n.SectorExtras != nil {
			used[n.SectorExtras.ColorIndex] = true
			sectors++
		}
	}
	for i := 0; i < types.SectorColorPaletteSize; i++ {
		if !used[i] {
			return i
		}
	}
	return sectors % types.SectorColorPaletteSize
}

func validNodeType(t types.NodeType) bool {
	switch t {
	case types.NodeTypeSector, types.NodeTypeCategory, types.NodeTypeSubcategory, types.NodeTypeGroup:
		return true
	}
	return false
}

// errForDenyReasons maps a decision's deny reasons onto a single typed
// error, in validation-priority order (existence, then name, then
// self-parent, then cycle).
func errForDenyReasons(reasons []string) error {
	set := make(map[string]bool, len(reasons))
	for _, r := range reasons {
		set[r] = true
	}
	switch {
	case set[denyNodeNotFound] || set[denyTargetNotFound]:
		return ports.ErrNodeNotFound
	case set[denyNameRequired]:
		return ports.ErrEmptyName
	case set[denySelfParent]:
		return ports.ErrSelfParent
	case set[denyCyclicMove]:
		return ports.ErrCyclicMove
	case set[denyForbidden]:
		return httperr.NewBadRequest("forbidden")
	}
	return httperr.NewBadRequest("invalid argument")
}
