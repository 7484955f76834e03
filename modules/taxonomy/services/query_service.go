package services

import (
	"errors"
	"strings"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/jacksonlee411/Shelves-And-Sectors/modules/taxonomy/domain/types"
)

// Filter returns the subset of the forest matching query by
// case-insensitive name containment, preserving ancestor paths. The
// retention rule is asymmetric on purpose: a node whose own name
// matches keeps its entire original subtree, while a node retained only
// because some descendant matched keeps just the pruned children. An
// empty query returns the input unchanged.
func Filter(forest []*types.TreeNode, query string) []*types.TreeNode {
	query = strings.TrimSpace(query)
	if query == "" {
		return forest
	}
	needle := strings.ToLower(query)

	var out []*types.TreeNode
	for _, tn := range forest {
		if strings.Contains(strings.ToLower(tn.Name), needle) {
			out = append(out, tn)
			continue
		}
		if kept := Filter(tn.Children, query); kept != nil {
			pruned := *tn
			pruned.Children = kept
			out = append(out, &pruned)
		}
	}
	return out
}

// CollectIDs gathers the id of every node present in a filtered forest,
// so a consuming view can auto-expand their containers.
func CollectIDs(forest []*types.TreeNode) []string {
	var ids []string
	for _, tn := range forest {
		ids = append(ids, tn.ID)
		ids = append(ids, CollectIDs(tn.Children)...)
	}
	return ids
}

var newNodeFilterCELEnv = func() (*cel.Env, error) {
	return cel.NewEnv(cel.Variable("node", cel.MapType(cel.StringType, cel.DynType)))
}

var nodeFilterProgramCache sync.Map

// FilterExpr evaluates a CEL boolean expression against every node of
// the forest (flattened) and returns the ids of the nodes it selects.
// The expression sees a node map with id, name, type, parent_id,
// branch_code, level and product_count.
func FilterExpr(forest []*types.TreeNode, expr string) ([]string, error) {
	program, err := loadOrCompileNodeFilterProgram(expr)
	if err != nil {
		return nil, err
	}

	var ids []string
	var walk func(tns []*types.TreeNode) error
	walk = func(tns []*types.TreeNode) error {
		for _, tn := range tns {
			out, _, err := program.Eval(map[string]any{"node": map[string]any{
				"id":            tn.ID,
				"name":          tn.Name,
				"type":          string(tn.Type),
				"parent_id":     tn.ParentID,
				"branch_code":   tn.BranchCode,
				"level":         tn.Level,
				"product_count": tn.ProductCount,
			}})
			if err != nil {
				return err
			}
			if selected, ok := out.Value().(bool); ok && selected {
				ids = append(ids, tn.ID)
			}
			if err := walk(tn.Children); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(forest); err != nil {
		return nil, err
	}
	return ids, nil
}

func loadOrCompileNodeFilterProgram(expr string) (cel.Program, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, errors.New("expression required")
	}
	if cached, ok := nodeFilterProgramCache.Load(expr); ok {
		return cached.(cel.Program), nil
	}
	env, err := newNodeFilterCELEnv()
	if err != nil {
		return nil, err
	}
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, issues.Err()
	}
	if ast.OutputType() != cel.BoolType {
		return nil, errors.New("expression must be boolean")
	}
	program, err := env.Program(ast)
	if err != nil {
		return nil, err
	}
	nodeFilterProgramCache.Store(expr, program)
	return program, nil
}
