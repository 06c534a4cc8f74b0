package cachemodel

import (
	"fmt"
)

// Kind tags a Quantity.
type Kind uint8

const (
	Unknown Kind = iota
	Layers
	Bytes
	Wildcard
)

// Quantity is how much of a data-bin is held: nothing known, a number of
// quality layers, a number of bytes, or all of it.
type Quantity struct {
	Kind Kind
	N    uint64
}

var (
	UnknownQuantity  = Quantity{}
	WildcardQuantity = Quantity{Kind: Wildcard}
)

// LayersOf is n quality layers.
func LayersOf(n uint64) Quantity {
	return Quantity{Kind: Layers, N: n}
}

// BytesOf is n leading bytes.
func BytesOf(n uint64) Quantity {
	return Quantity{Kind: Bytes, N: n}
}

// IsKnown reports whether the quantity tells anything.
func (q Quantity) IsKnown() bool {
	return q.Kind != Unknown
}

// add merges an additive report: the larger of two values of one kind, a
// wildcard dominates, a report of another kind replaces the old one.
func (q Quantity) add(v Quantity) Quantity {
	switch {
	case q.Kind == Wildcard || v.Kind == Wildcard:
		return WildcardQuantity
	case q.Kind == v.Kind:
		if v.N > q.N {
			return v
		}
		return q
	}
	return v
}

// sub merges a subtractive report: the smaller of two values of one kind, a
// subtractive wildcard forgets everything. Values of different kinds cannot
// be compared, nothing is assumed then.
func (q Quantity) sub(v Quantity) Quantity {
	switch {
	case v.Kind == Wildcard:
		return UnknownQuantity
	case q.Kind == Unknown:
		return UnknownQuantity
	case q.Kind == Wildcard:
		return v
	case q.Kind == v.Kind:
		if v.N < q.N {
			return v
		}
		return q
	}
	return UnknownQuantity
}

func (q Quantity) String() string {
	switch q.Kind {
	case Unknown:
		return "?"
	case Layers:
		return fmt.Sprintf("L%d", q.N)
	case Bytes:
		return fmt.Sprintf("%d", q.N)
	case Wildcard:
		return "*"
	}
	return fmt.Sprintf("kind-%d", q.Kind)
}
