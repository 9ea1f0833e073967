package moves

import (
	"fmt"

	"moveck/internal/mir"
)

// MovePath is the canonical tree node for one place. Parent/child edges
// mirror prefix/extension relations on places; children of a node are linked
// intrusively through FirstChild/NextSibling, newest child first.
type MovePath struct {
	Place       mir.Place
	Parent      MovePathID
	FirstChild  MovePathID
	NextSibling MovePathID
}

func (mp MovePath) String() string {
	return fmt.Sprintf("MovePath{%s}", mp.Place)
}

// LookupKind distinguishes exact hits from nearest-ancestor results.
type LookupKind uint8

const (
	// LookupExact means the queried place has its own move path.
	LookupExact LookupKind = iota
	// LookupParent means only a proper prefix of the place is tracked; Path
	// holds the nearest tracked ancestor, or NoMovePathID when even the base
	// local is unknown.
	LookupParent
)

// LookupResult is the outcome of RevLookup.Find. A Parent result is a normal
// outcome, not a failure: the exact sub-place was simply never tracked.
type LookupResult struct {
	Kind LookupKind
	Path MovePathID
}

type projKey struct {
	parent MovePathID
	elem   mir.PlaceProj
}

// RevLookup maps places back to move paths: one eagerly-created root per
// declared local, plus a memoization table from (tracked path, one projection
// element) to the extending child path.
type RevLookup struct {
	locals      []MovePathID
	projections map[projKey]MovePathID
}

// Find walks the memoization table from the root of the place's base local,
// one projection element at a time. Pure: never creates tree nodes.
func (rl *RevLookup) Find(p mir.Place) LookupResult {
	if rl == nil || int(p.Local) < 0 || int(p.Local) >= len(rl.locals) {
		return LookupResult{Kind: LookupParent, Path: NoMovePathID}
	}
	cur := rl.locals[p.Local]
	if cur == NoMovePathID {
		return LookupResult{Kind: LookupParent, Path: NoMovePathID}
	}
	for _, elem := range p.Proj {
		child, ok := rl.projections[projKey{parent: cur, elem: elem}]
		if !ok {
			return LookupResult{Kind: LookupParent, Path: cur}
		}
		cur = child
	}
	return LookupResult{Kind: LookupExact, Path: cur}
}

// LocalRoot returns the root path of a declared local.
func (rl *RevLookup) LocalRoot(local mir.LocalID) MovePathID {
	if rl == nil || int(local) < 0 || int(local) >= len(rl.locals) {
		return NoMovePathID
	}
	return rl.locals[local]
}
