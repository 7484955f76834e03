package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/jacksonlee411/Shelves-And-Sectors/internal/routing"
	"github.com/jacksonlee411/Shelves-And-Sectors/modules/taxonomy/domain/ports"
	"github.com/jacksonlee411/Shelves-And-Sectors/modules/taxonomy/domain/types"
	"github.com/jacksonlee411/Shelves-And-Sectors/modules/taxonomy/services"
	"github.com/jacksonlee411/Shelves-And-Sectors/pkg/branchcode"
	"github.com/jacksonlee411/Shelves-And-Sectors/pkg/httperr"
)

type taxonomyNodeCreateAPIRequest struct {
	ParentID    string `json:"parent_id"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	BranchCode  string `json:"branch_code"`
	Description string `json:"description"`
}

func handleTaxonomyNodesCreateAPI(w http.ResponseWriter, r *http.Request, svc services.TaxonomyWriteService) {
	var req taxonomyNodeCreateAPIRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		routing.WriteError(w, r, routing.RouteClassInternalAPI, http.StatusBadRequest, "bad_json", "bad json")
		return
	}
	node, err := svc.Add(r.Context(), services.AddNodeRequest{
		ParentID:    req.ParentID,
		Name:        req.Name,
		Type:        types.NodeType(strings.TrimSpace(req.Type)),
		BranchCode:  strings.ToUpper(strings.TrimSpace(req.BranchCode)),
		Description: req.Description,
	})
	if err != nil {
		writeTaxonomyError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, node)
}

type taxonomyRenameAPIRequest struct {
	NewName string `json:"new_name"`
}

func handleTaxonomyNodeRenameAPI(w http.ResponseWriter, r *http.Request, svc services.TaxonomyWriteService) {
	params, ok := routing.MatchParams("/taxonomy/api/nodes/{id}/rename", r.URL.Path)
	if !ok {
		routing.WriteError(w, r, routing.RouteClassInternalAPI, http.StatusNotFound, "not_found", "not found")
		return
	}
	var req taxonomyRenameAPIRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		routing.WriteError(w, r, routing.RouteClassInternalAPI, http.StatusBadRequest, "bad_json", "bad json")
		return
	}
	if err := svc.Rename(r.Context(), services.RenameNodeRequest{NodeID: params["id"], NewName: req.NewName}); err != nil {
		writeTaxonomyError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": params["id"], "name": strings.TrimSpace(req.NewName)})
}

type taxonomyMoveAPIRequest struct {
	NodeID   string `json:"node_id"`
	TargetID string `json:"target_id"`
	Drop     string `json:"drop"`

	// Optional raw gesture geometry; used to derive drop when the
	// caller passes the pointer position instead of a zone.
	OffsetY float64 `json:"offset_y"`
	Height  float64 `json:"height"`
}

func (req taxonomyMoveAPIRequest) dropKind() types.DropKind {
	if req.Drop != "" {
		return types.DropKind(req.Drop)
	}
	return types.ClassifyDrop(req.OffsetY, req.Height)
}

func handleTaxonomyMovesAPI(w http.ResponseWriter, r *http.Request, svc services.TaxonomyWriteService) {
	var req taxonomyMoveAPIRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		routing.WriteError(w, r, routing.RouteClassInternalAPI, http.StatusBadRequest, "bad_json", "bad json")
		return
	}
	proposal, err := svc.ProposeMove(r.Context(), services.MoveNodeRequest{
		NodeID:   req.NodeID,
		TargetID: req.TargetID,
		Drop:     req.dropKind(),
	})
	if err != nil {
		writeTaxonomyError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"proposal": proposal})
}

func handleTaxonomyMovesConfirmAPI(w http.ResponseWriter, r *http.Request, svc services.TaxonomyWriteService) {
	var req struct {
		Proposal services.MoveProposal `json:"proposal"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		routing.WriteError(w, r, routing.RouteClassInternalAPI, http.StatusBadRequest, "bad_json", "bad json")
		return
	}
	if err := svc.ConfirmMove(r.Context(), req.Proposal); err != nil {
		writeTaxonomyError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "applied"})
}

func handleTaxonomyDeletesAPI(w http.ResponseWriter, r *http.Request, svc services.TaxonomyWriteService) {
	var req struct {
		NodeID string `json:"node_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		routing.WriteError(w, r, routing.RouteClassInternalAPI, http.StatusBadRequest, "bad_json", "bad json")
		return
	}
	proposal, err := svc.ProposeDelete(r.Context(), req.NodeID)
	if err != nil {
		writeTaxonomyError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"proposal": proposal})
}

func handleTaxonomyDeletesConfirmAPI(w http.ResponseWriter, r *http.Request, svc services.TaxonomyWriteService) {
	var req struct {
		Proposal services.DeleteProposal `json:"proposal"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		routing.WriteError(w, r, routing.RouteClassInternalAPI, http.StatusBadRequest, "bad_json", "bad json")
		return
	}
	if err := svc.ConfirmDelete(r.Context(), req.Proposal); err != nil {
		writeTaxonomyError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "applied"})
}

func handleTaxonomyCodesSuggestAPI(w http.ResponseWriter, r *http.Request, store ports.NodeStore) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		routing.WriteError(w, r, routing.RouteClassInternalAPI, http.StatusBadRequest, "bad_json", "bad json")
		return
	}

	existing := make(map[string]bool)
	for _, n := range store.All() {
		if n.BranchCode != "" {
			existing[n.BranchCode] = true
		}
	}
	code, err := branchcode.Suggest(req.Name, existing)
	if err != nil {
		writeTaxonomyError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"code": code})
}

// writeTaxonomyError maps service sentinels onto the error envelope.
func writeTaxonomyError(w http.ResponseWriter, r *http.Request, err error) {
	rc := routing.RouteClassInternalAPI
	switch {
	case errors.Is(err, ports.ErrNodeNotFound):
		routing.WriteError(w, r, rc, http.StatusNotFound, "node_not_found", "node not found")
	case errors.Is(err, ports.ErrEmptyName):
		routing.WriteError(w, r, rc, http.StatusBadRequest, "name_required", "name required")
	case errors.Is(err, ports.ErrSelfParent):
		routing.WriteError(w, r, rc, http.StatusBadRequest, "self_parent", "node cannot be its own parent")
	case errors.Is(err, ports.ErrCyclicMove):
		routing.WriteError(w, r, rc, http.StatusConflict, "cyclic_move", "node cannot move inside its own subtree")
	case errors.Is(err, ports.ErrStaleProposal):
		routing.WriteError(w, r, rc, http.StatusConflict, "stale_proposal", "tree changed since proposal")
	case errors.Is(err, branchcode.ErrBranchCodeInvalid):
		routing.WriteError(w, r, rc, http.StatusBadRequest, "branch_code_invalid", "branch code invalid")
	case errors.Is(err, branchcode.ErrBranchCodeTaken):
		routing.WriteError(w, r, rc, http.StatusConflict, "branch_code_taken", "branch code already in use")
	case errors.Is(err, branchcode.ErrAllocationExhausted):
		routing.WriteError(w, r, rc, http.StatusConflict, "branch_code_exhausted", "no free branch code suffix")
	case httperr.IsBadRequest(err):
		routing.WriteError(w, r, rc, http.StatusBadRequest, "invalid_request", err.Error())
	case httperr.IsNotFound(err):
		routing.WriteError(w, r, rc, http.StatusNotFound, "not_found", err.Error())
	case httperr.IsConflict(err):
		routing.WriteError(w, r, rc, http.StatusConflict, "conflict", err.Error())
	default:
		routing.WriteError(w, r, rc, http.StatusInternalServerError, "internal_error", "internal error")
	}
}
