package services

import (
	"reflect"
	"testing"
)

func TestResolveTaxonomyMutationPolicy_AllowsCleanFacts(t *testing.T) {
	t.Parallel()

	for _, kind := range []TaxonomyActionKind{TaxonomyActionAdd, TaxonomyActionRename, TaxonomyActionMove, TaxonomyActionDelete} {
		decision, err := ResolveTaxonomyMutationPolicy(TaxonomyMutationPolicyKey{ActionKind: kind}, TaxonomyMutationPolicyFacts{
			CanWrite:     true,
			NodeExists:   true,
			TargetExists: true,
		})
		if err != nil {
			t.Fatal(err)
		}
		if !decision.Enabled || len(decision.DenyReasons) != 0 {
			t.Fatalf("%s decision=%+v", kind, decision)
		}
	}
}

func TestResolveTaxonomyMutationPolicy_DenyReasonsSortedDeduped(t *testing.T) {
	t.Parallel()

	decision, err := ResolveTaxonomyMutationPolicy(TaxonomyMutationPolicyKey{ActionKind: TaxonomyActionMove}, TaxonomyMutationPolicyFacts{
		CanWrite:            false,
		NodeExists:          true,
		TargetExists:        true,
		IsSelfTarget:        true,
		TargetInsideSubtree: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	if decision.Enabled {
		t.Fatalf("expected disabled")
	}
	want := []string{"CYCLIC_MOVE", "FORBIDDEN", "SELF_PARENT"}
	if !reflect.DeepEqual(decision.DenyReasons, want) {
		t.Fatalf("deny=%v", decision.DenyReasons)
	}
}

func TestResolveTaxonomyMutationPolicy_AddRequiresNameAndParent(t *testing.T) {
	t.Parallel()

	decision, err := ResolveTaxonomyMutationPolicy(TaxonomyMutationPolicyKey{ActionKind: TaxonomyActionAdd}, TaxonomyMutationPolicyFacts{
		CanWrite:  true,
		NameEmpty: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"NAME_REQUIRED", "TARGET_NOT_FOUND"}
	if !reflect.DeepEqual(decision.DenyReasons, want) {
		t.Fatalf("deny=%v", decision.DenyReasons)
	}
}

func TestResolveTaxonomyMutationPolicy_InvalidKey(t *testing.T) {
	t.Parallel()

	if _, err := ResolveTaxonomyMutationPolicy(TaxonomyMutationPolicyKey{ActionKind: "explode"}, TaxonomyMutationPolicyFacts{}); err == nil {
		t.Fatalf("expected error")
	}
}
