package runtime

// Ordering is the result of a total-order comparison
type Ordering int8

const (
	// LT means the left operand sorts first
	LT Ordering = -1
	// EQ means both operands are equal
	EQ Ordering = 0
	// GT means the left operand sorts last
	GT Ordering = 1
)

// String returns "LT", "EQ" or "GT"
func (o Ordering) String() string {
	switch o {
	case LT:
		return "LT"
	case EQ:
		return "EQ"
	case GT:
		return "GT"
	default:
		return "Ordering(?)"
	}
}

// Reverse swaps LT and GT
func (o Ordering) Reverse() Ordering {
	return -o
}

// FromCompare converts a cmp.Compare style integer into an Ordering
func FromCompare(c int) Ordering {
	switch {
	case c < 0:
		return LT
	case c > 0:
		return GT
	default:
		return EQ
	}
}
