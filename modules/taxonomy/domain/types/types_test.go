package types

import "testing"

func TestTypeForDepth(t *testing.T) {
	t.Parallel()

	cases := []struct {
		depth int
		want  NodeType
	}{
		{1, NodeTypeSector},
		{2, NodeTypeCategory},
		{3, NodeTypeSubcategory},
		{4, NodeTypeGroup},
		{7, NodeTypeGroup},
		{0, NodeTypeGroup},
	}
	for _, tc := range cases {
		if got := TypeForDepth(tc.depth); got != tc.want {
			t.Fatalf("TypeForDepth(%d)=%q want %q", tc.depth, got, tc.want)
		}
	}
}

func TestClassifyDrop(t *testing.T) {
	t.Parallel()

	cases := []struct {
		offsetY float64
		height  float64
		want    DropKind
	}{
		{0, 40, DropBefore},
		{9.9, 40, DropBefore},
		{10, 40, DropInside},
		{20, 40, DropInside},
		{30, 40, DropInside},
		{30.1, 40, DropAfter},
		{40, 40, DropAfter},
		{5, 0, DropInside},
		{5, -1, DropInside},
	}
	for _, tc := range cases {
		if got := ClassifyDrop(tc.offsetY, tc.height); got != tc.want {
			t.Fatalf("ClassifyDrop(%v, %v)=%q want %q", tc.offsetY, tc.height, got, tc.want)
		}
	}
}
