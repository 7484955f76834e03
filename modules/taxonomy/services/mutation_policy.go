package services

import (
	"errors"
	"sort"
)

type TaxonomyActionKind string

const (
	TaxonomyActionAdd    TaxonomyActionKind = "add"
	TaxonomyActionRename TaxonomyActionKind = "rename"
	TaxonomyActionMove   TaxonomyActionKind = "move"
	TaxonomyActionDelete TaxonomyActionKind = "delete"
)

type TaxonomyMutationPolicyKey struct {
	ActionKind TaxonomyActionKind
}

// TaxonomyMutationPolicyFacts are the pre-resolved facts a caller feeds
// into policy resolution. The facts are computed against the same store
// snapshot the mutation will run on.
type TaxonomyMutationPolicyFacts struct {
	CanWrite            bool
	NodeExists          bool
	TargetExists        bool
	NameEmpty           bool
	IsSelfTarget        bool
	TargetInsideSubtree bool
}

type TaxonomyMutationPolicyDecision struct {
	Enabled     bool
	DenyReasons []string
}

const (
	denyForbidden      = "FORBIDDEN"
	denyNodeNotFound   = "NODE_NOT_FOUND"
	denyTargetNotFound = "TARGET_NOT_FOUND"
	denyNameRequired   = "NAME_REQUIRED"
	denySelfParent     = "SELF_PARENT"
	denyCyclicMove     = "CYCLIC_MOVE"
)

// ResolveTaxonomyMutationPolicy decides whether a structural operation
// may proceed. Every deny reason that applies is reported, sorted and
// deduped, so a caller can surface the full picture in one pass.
func ResolveTaxonomyMutationPolicy(key TaxonomyMutationPolicyKey, facts TaxonomyMutationPolicyFacts) (TaxonomyMutationPolicyDecision, error) {
	deny := []string{}
	if !facts.CanWrite {
		deny = append(deny, denyForbidden)
	}

	switch key.ActionKind {
	case TaxonomyActionAdd:
		if facts.NameEmpty {
			deny = append(deny, denyNameRequired)
		}
		if !facts.TargetExists {
			deny = append(deny, denyTargetNotFound)
		}
	case TaxonomyActionRename:
		if facts.NameEmpty {
			deny = append(deny, denyNameRequired)
		}
		if !facts.NodeExists {
			deny = append(deny, denyNodeNotFound)
		}
	case TaxonomyActionMove:
		if !facts.NodeExists {
			deny = append(deny, denyNodeNotFound)
		}
		if !facts.TargetExists {
			deny = append(deny, denyTargetNotFound)
		}
		if facts.IsSelfTarget {
			deny = append(deny, denySelfParent)
		}
		if facts.TargetInsideSubtree {
			deny = append(deny, denyCyclicMove)
		}
	case TaxonomyActionDelete:
		if !facts.NodeExists {
			deny = append(deny, denyNodeNotFound)
		}
	default:
		return TaxonomyMutationPolicyDecision{}, errors.New("taxonomy mutation policy: invalid key")
	}

	deny = dedupAndSortDenyReasons(deny)
	return TaxonomyMutationPolicyDecision{
		Enabled:     len(deny) == 0,
		DenyReasons: deny,
	}, nil
}

func dedupAndSortDenyReasons(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, r := range in {
		if r == "" || seen[r] {
			continue
		}
		seen[r] = true
		out = append(out, r)
	}
	sort.Strings(out)
	return out
}
