package packing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllocateZeroPieces(t *testing.T) {
	plan := Allocate(0)
	assert.Equal(t, Plan{}, plan)
	assert.Empty(t, plan.Materials)
}

func TestAllocateBoxTiers(t *testing.T) {
	tests := []struct {
		pieces int
		small  int
		large  int
	}{
		{1, 1, 0},
		{18, 1, 0},
		{19, 0, 1},
		{33, 0, 1},
		{34, 1, 1},
		{51, 1, 1},
		{52, 0, 2},
		{66, 0, 2},
		{67, 1, 2},  // 2 large + remainder 1 → 1 small
		{84, 1, 2},  // remainder 18, still fits a small
		{85, 0, 3},  // remainder 19 needs another large
		{99, 0, 3},  // exact multiple of 33
		{100, 1, 3}, // remainder 1
		{151, 0, 5}, // 4 large + remainder 19 → 5 large
	}

	for _, tc := range tests {
		plan := Allocate(tc.pieces)
		assert.Equal(t, tc.small, plan.SmallBoxes, "pieces=%d small boxes", tc.pieces)
		assert.Equal(t, tc.large, plan.LargeBoxes, "pieces=%d large boxes", tc.pieces)
	}
}

func TestAllocateEveryCountInFirstTwoTiers(t *testing.T) {
	for p := 1; p <= SmallBoxCapacity; p++ {
		plan := Allocate(p)
		assert.Equal(t, 1, plan.SmallBoxes, "pieces=%d", p)
		assert.Equal(t, 0, plan.LargeBoxes, "pieces=%d", p)
	}
	for p := SmallBoxCapacity + 1; p <= LargeBoxCapacity; p++ {
		plan := Allocate(p)
		assert.Equal(t, 0, plan.SmallBoxes, "pieces=%d", p)
		assert.Equal(t, 1, plan.LargeBoxes, "pieces=%d", p)
	}
}

func TestAllocateIceAndLabels(t *testing.T) {
	// 1 small box: 3 dry + 3 regular, 1 label.
	small := Allocate(10)
	assert.Equal(t, 1, small.Labels)
	assert.Equal(t, 3, small.DryIce)
	assert.Equal(t, 3, small.RegularIce)

	// 1 large box: 4 dry + 5 regular.
	large := Allocate(25)
	assert.Equal(t, 1, large.Labels)
	assert.Equal(t, 4, large.DryIce)
	assert.Equal(t, 5, large.RegularIce)

	// 1 small + 1 large.
	mixed := Allocate(40)
	assert.Equal(t, 2, mixed.Labels)
	assert.Equal(t, 7, mixed.DryIce)
	assert.Equal(t, 8, mixed.RegularIce)
}

func TestAllocateMaterials(t *testing.T) {
	plan := Allocate(40) // 1 small + 1 large

	codes := make(map[string]int)
	for _, m := range plan.Materials {
		codes[m.Code] = m.Quantity
	}

	assert.Equal(t, map[string]int{
		CodeLargeBox:         1,
		CodeLargeInsertTop:   1,
		CodeLargeInsertSides: 1,
		CodeSmallBox:         1,
		CodeSmallInsertTop:   1,
		CodeSmallInsertSides: 1,
		CodeDryIce:           7,
		CodeRegularIce:       8,
	}, codes)

	// Large box materials come first, then small, then ice.
	assert.Equal(t, CodeLargeBox, plan.Materials[0].Code)
	assert.Equal(t, CodeSmallBox, plan.Materials[3].Code)
	assert.Equal(t, CodeDryIce, plan.Materials[6].Code)
}

func TestAllocateSmallOnlyMaterials(t *testing.T) {
	plan := Allocate(5)

	var codes []string
	for _, m := range plan.Materials {
		codes = append(codes, m.Code)
	}
	assert.Equal(t, []string{
		CodeSmallBox, CodeSmallInsertTop, CodeSmallInsertSides,
		CodeDryIce, CodeRegularIce,
	}, codes)
}
