// Package packing turns an order's total piece count into the boxes,
// ice packs, labels and packaging materials the warehouse needs to
// pick alongside the products.
package packing

// Box capacities in pieces.
const (
	SmallBoxCapacity = 18
	LargeBoxCapacity = 33
)

// Ice packs per box type. Applied on box count alone: ambient-only
// orders still receive ice, which is an unresolved question upstream.
const (
	smallDryIce     = 3
	smallRegularIce = 3
	largeDryIce     = 4
	largeRegularIce = 5
)

// Fulfillment partner packaging product codes. Ice codes are
// placeholders until the partner confirms the real ones.
const (
	CodeLargeBox         = "5OSL"
	CodeLargeInsertTop   = "5OSLI"
	CodeLargeInsertSides = "5OSLIS"
	CodeSmallBox         = "5OSS"
	CodeSmallInsertTop   = "5OSSI"
	CodeSmallInsertSides = "5OSSIS"
	CodeDryIce           = "DRYICE1KG"
	CodeRegularIce       = "ICEPACK"
)

// Material is one packaging line for the packing list, shaped like a
// product line.
type Material struct {
	Code        string
	Description string
	Quantity    int
}

// Plan is the full packaging bill of materials for one order.
type Plan struct {
	TotalPieces int
	SmallBoxes  int
	LargeBoxes  int
	Labels      int // one address label per box
	DryIce      int
	RegularIce  int
	Materials   []Material
}

// Allocate computes the packaging plan for a given piece count. Zero
// pieces yields an empty plan. The tiers:
//
//	1–18   1 small
//	19–33  1 large
//	34–51  1 small + 1 large
//	52–66  2 large
//	67+    fill large boxes, small for a remainder of 18 or fewer
//
// The 67+ rule is an assumption still awaiting confirmation from the
// business; the pattern continues the observed tiers but has not been
// verified against real shipments.
func Allocate(totalPieces int) Plan {
	if totalPieces <= 0 {
		return Plan{}
	}

	small, large := boxesFor(totalPieces)

	plan := Plan{
		TotalPieces: totalPieces,
		SmallBoxes:  small,
		LargeBoxes:  large,
		Labels:      small + large,
		DryIce:      small*smallDryIce + large*largeDryIce,
		RegularIce:  small*smallRegularIce + large*largeRegularIce,
	}

	if large > 0 {
		plan.Materials = append(plan.Materials,
			Material{CodeLargeBox, "Online Shop Box Large", large},
			Material{CodeLargeInsertTop, "Online Shop Box Large Insert - Top", large},
			Material{CodeLargeInsertSides, "Online Shop Box Large Insert - Sides", large},
		)
	}
	if small > 0 {
		plan.Materials = append(plan.Materials,
			Material{CodeSmallBox, "Online Shop Box Small", small},
			Material{CodeSmallInsertTop, "Online Shop Box Small Insert - Top", small},
			Material{CodeSmallInsertSides, "Online Shop Box Small Insert - Sides", small},
		)
	}
	if plan.DryIce > 0 {
		plan.Materials = append(plan.Materials, Material{CodeDryIce, "Dry Ice 1kg", plan.DryIce})
	}
	if plan.RegularIce > 0 {
		plan.Materials = append(plan.Materials, Material{CodeRegularIce, "Ice Pack", plan.RegularIce})
	}

	return plan
}

func boxesFor(pieces int) (small, large int) {
	switch {
	case pieces <= SmallBoxCapacity:
		return 1, 0
	case pieces <= LargeBoxCapacity:
		return 0, 1
	case pieces <= SmallBoxCapacity+LargeBoxCapacity:
		return 1, 1
	case pieces <= 2*LargeBoxCapacity:
		return 0, 2
	}

	large = pieces / LargeBoxCapacity
	remainder := pieces % LargeBoxCapacity

	switch {
	case remainder == 0:
		return 0, large
	case remainder <= SmallBoxCapacity:
		return 1, large
	default:
		return 0, large + 1
	}
}
