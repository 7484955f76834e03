package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/jacksonlee411/Shelves-And-Sectors/internal/routing"
	"github.com/jacksonlee411/Shelves-And-Sectors/modules/taxonomy/domain/ports"
	"github.com/jacksonlee411/Shelves-And-Sectors/modules/taxonomy/domain/types"
	"github.com/jacksonlee411/Shelves-And-Sectors/modules/taxonomy/services"
)

type taxonomyTreeAPIResponse struct {
	Tree          []*types.TreeNode `json:"tree"`
	ExpandedIDs   []string          `json:"expanded_ids"`
	TotalProducts int               `json:"total_products"`
}

func handleTaxonomyTreeAPI(w http.ResponseWriter, r *http.Request, trees *services.TreeService) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	forest := trees.Tree()

	resp := taxonomyTreeAPIResponse{
		Tree:          forest,
		TotalProducts: trees.TotalProductCount(),
	}
	if query != "" {
		resp.Tree = services.Filter(forest, query)
		resp.ExpandedIDs = services.CollectIDs(resp.Tree)
	}
	if resp.Tree == nil {
		resp.Tree = []*types.TreeNode{}
	}
	writeJSON(w, http.StatusOK, resp)
}

func handleTaxonomyNodesListAPI(w http.ResponseWriter, _ *http.Request, store ports.NodeStore) {
	nodes := store.All()
	if nodes == nil {
		nodes = []types.Node{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"nodes": nodes})
}

func handleTaxonomyNodePathAPI(w http.ResponseWriter, r *http.Request, store ports.NodeStore) {
	params, ok := routing.MatchParams("/taxonomy/api/nodes/{id}/path", r.URL.Path)
	if !ok {
		routing.WriteError(w, r, routing.RouteClassInternalAPI, http.StatusNotFound, "not_found", "not found")
		return
	}

	names, err := services.ResolvePath(store, params["id"])
	if err != nil {
		writeTaxonomyError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"path":    names,
		"display": services.PathString(names),
	})
}

func handleTaxonomyCountsAPI(w http.ResponseWriter, _ *http.Request, trees *services.TreeService) {
	counts := make(map[string]int)
	var walk func(tns []*types.TreeNode)
	walk = func(tns []*types.TreeNode) {
		for _, tn := range tns {
			counts[tn.ID] = tn.ProductCount
			walk(tn.Children)
		}
	}
	walk(trees.Tree())

	writeJSON(w, http.StatusOK, map[string]any{
		"by_node": counts,
		"total":   trees.TotalProductCount(),
	})
}

type taxonomyQueryAPIRequest struct {
	Expression string `json:"expression"`
}

func handleTaxonomyQueryAPI(w http.ResponseWriter, r *http.Request, trees *services.TreeService) {
	var req taxonomyQueryAPIRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		routing.WriteError(w, r, routing.RouteClassInternalAPI, http.StatusBadRequest, "bad_json", "bad json")
		return
	}
	ids, err := services.FilterExpr(trees.Tree(), req.Expression)
	if err != nil {
		routing.WriteError(w, r, routing.RouteClassInternalAPI, http.StatusBadRequest, "invalid_expression", err.Error())
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"ids": ids})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
