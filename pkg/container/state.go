package container

import (
	"fmt"
	"strings"
)

// State is the observable state of one container. The zero State is the
// initial state.
type State[E any] struct {
	Entities      []E   // Last applied list or search result, in server order.
	Entity        E     // Focused entity, or the zero value.
	Loading       bool  // A read is in flight.
	Updating      bool  // A write is in flight.
	UpdateSuccess bool  // The last write settled successfully and has not been consumed.
	Err           error // Last failure, a *types.RequestFailed for transport failures.
	TotalItems    int64 // Collection total reported with the last applied list.
}

// Sequencing selects how settled responses are reconciled with the state.
type Sequencing int

const (
	// LatestWins applies a settled response only if no newer request has
	// been issued on the same container since it was dispatched.
	LatestWins Sequencing = iota
	// ArrivalOrder applies every settled response in the order it lands, so
	// a slow earlier request can overwrite the result of a faster later one.
	ArrivalOrder
)

func (s Sequencing) String() string {
	switch s {
	case LatestWins:
		return "latest"
	case ArrivalOrder:
		return "arrival"
	default:
		return fmt.Sprintf("Sequencing(%d)", int(s))
	}
}

// ParseSequencing parses "latest" or "arrival".
func ParseSequencing(s string) (Sequencing, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "latest":
		return LatestWins, nil
	case "arrival":
		return ArrivalOrder, nil
	default:
		return 0, fmt.Errorf("unknown sequencing %q (valid: latest, arrival)", s)
	}
}
