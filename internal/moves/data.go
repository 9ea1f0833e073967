package moves

import (
	"fmt"
	"iter"

	"fortio.org/safecast"

	"moveck/internal/mir"
)

// MoveOut records that a path's place became uninitialized at a location.
type MoveOut struct {
	Path MovePathID
	Loc  mir.Location
}

// InitKind qualifies how much of a place an init covers under unwinding.
type InitKind uint8

const (
	// InitDeep: the place and all sub-places are initialized, even on the
	// unwind path.
	InitDeep InitKind = iota
	// InitShallow: only the top-level place.
	InitShallow
	// InitNonPanicPathOnly: not guaranteed if control escaped by unwinding.
	InitNonPanicPathOnly
)

func (k InitKind) String() string {
	switch k {
	case InitDeep:
		return "deep"
	case InitShallow:
		return "shallow"
	case InitNonPanicPathOnly:
		return "non_panic_path_only"
	default:
		return fmt.Sprintf("InitKind(%d)", k)
	}
}

// Init records that a path's place became (re)initialized. Argument-bound
// inits come from the calling convention and carry no location;
// statement-bound inits carry the program point.
type Init struct {
	Path  MovePathID
	Kind  InitKind
	IsArg bool
	Loc   mir.Location // meaningful only when !IsArg
}

// MoveData is the finalized result of the gather pass: the move-path tree,
// the event arenas and the four lookup tables. It is built once per body and
// never mutated afterwards, so it may be shared freely across readers.
type MoveData struct {
	paths []MovePath
	moves []MoveOut
	inits []Init

	locMap      map[mir.Location][]MoveOutID
	pathMap     [][]MoveOutID
	initLocMap  map[mir.Location][]InitID
	initPathMap [][]InitID

	rev RevLookup
}

// newMoveData seeds the tree with one root path per declared local. Argument
// locals arrive initialized by the calling convention, so their roots receive
// a Deep argument-bound init before any statement is walked.
func newMoveData(body *mir.Body) *MoveData {
	d := &MoveData{
		locMap:     make(map[mir.Location][]MoveOutID),
		initLocMap: make(map[mir.Location][]InitID),
	}
	d.rev.projections = make(map[projKey]MovePathID)
	d.rev.locals = make([]MovePathID, len(body.Locals))
	for i := range body.Locals {
		root := d.newMovePath(mir.PlaceFor(mir.LocalID(safeInt32(i))), NoMovePathID)
		d.rev.locals[i] = root
		if body.Locals[i].IsArg {
			d.recordArgInit(root)
		}
	}
	return d
}

// newMovePath appends a node to the arena, links it as the newest child of
// its parent and registers its (empty) entries in both path-keyed tables.
func (d *MoveData) newMovePath(place mir.Place, parent MovePathID) MovePathID {
	id := MovePathID(safeInt32(len(d.paths)))
	mp := MovePath{
		Place:       place,
		Parent:      parent,
		FirstChild:  NoMovePathID,
		NextSibling: NoMovePathID,
	}
	if parent != NoMovePathID {
		mp.NextSibling = d.paths[parent].FirstChild
		d.paths[parent].FirstChild = id
	}
	d.paths = append(d.paths, mp)
	d.pathMap = append(d.pathMap, nil)
	d.initPathMap = append(d.initPathMap, nil)
	return id
}

// ensureChild returns the child of parent extending it by elem, creating and
// memoizing it on first use. Referential identity: identical (parent, elem)
// pairs always yield the same node.
func (d *MoveData) ensureChild(parent MovePathID, elem mir.PlaceProj, place mir.Place) MovePathID {
	key := projKey{parent: parent, elem: elem}
	if id, ok := d.rev.projections[key]; ok {
		return id
	}
	id := d.newMovePath(place, parent)
	d.rev.projections[key] = id
	return id
}

func (d *MoveData) recordMove(path MovePathID, loc mir.Location) {
	id := MoveOutID(safeInt32(len(d.moves)))
	d.moves = append(d.moves, MoveOut{Path: path, Loc: loc})
	d.locMap[loc] = append(d.locMap[loc], id)
	d.pathMap[path] = append(d.pathMap[path], id)
}

func (d *MoveData) recordInit(path MovePathID, kind InitKind, loc mir.Location) {
	id := InitID(safeInt32(len(d.inits)))
	d.inits = append(d.inits, Init{Path: path, Kind: kind, Loc: loc})
	d.initLocMap[loc] = append(d.initLocMap[loc], id)
	d.initPathMap[path] = append(d.initPathMap[path], id)
}

// recordArgInit records a calling-convention init. It has no program point,
// so only the path-keyed table carries it.
func (d *MoveData) recordArgInit(path MovePathID) {
	id := InitID(safeInt32(len(d.inits)))
	d.inits = append(d.inits, Init{Path: path, Kind: InitDeep, IsArg: true})
	d.initPathMap[path] = append(d.initPathMap[path], id)
}

// Accessors -------------------------------------------------------------

// NumPaths returns the number of move paths, for sizing bit-vectors.
func (d *MoveData) NumPaths() int { return len(d.paths) }

// NumMoves returns the number of move-out events.
func (d *MoveData) NumMoves() int { return len(d.moves) }

// NumInits returns the number of init events.
func (d *MoveData) NumInits() int { return len(d.inits) }

// Path returns the node for a move-path identity.
func (d *MoveData) Path(id MovePathID) MovePath { return d.paths[id] }

// Move returns the event for a move-out identity.
func (d *MoveData) Move(id MoveOutID) MoveOut { return d.moves[id] }

// Init returns the event for an init identity.
func (d *MoveData) Init(id InitID) Init { return d.inits[id] }

// Rev exposes the place-to-path reverse lookup.
func (d *MoveData) Rev() *RevLookup { return &d.rev }

// MovesAt returns the move-outs recorded at a location. The slice is shared;
// callers must not mutate it.
func (d *MoveData) MovesAt(loc mir.Location) []MoveOutID { return d.locMap[loc] }

// MovesOf returns the move-outs recorded against a path.
func (d *MoveData) MovesOf(path MovePathID) []MoveOutID { return d.pathMap[path] }

// InitsAt returns the statement-bound inits recorded at a location.
func (d *MoveData) InitsAt(loc mir.Location) []InitID { return d.initLocMap[loc] }

// InitsOf returns the inits recorded against a path.
func (d *MoveData) InitsOf(path MovePathID) []InitID { return d.initPathMap[path] }

// Ancestors yields path, path.parent, ... up to and including the root.
// The sequence is lazy and restartable.
func (d *MoveData) Ancestors(path MovePathID) iter.Seq[MovePathID] {
	return func(yield func(MovePathID) bool) {
		for cur := path; cur != NoMovePathID; cur = d.paths[cur].Parent {
			if !yield(cur) {
				return
			}
		}
	}
}

// Children yields the previously-created one-projection extensions of path,
// newest first.
func (d *MoveData) Children(path MovePathID) iter.Seq[MovePathID] {
	return func(yield func(MovePathID) bool) {
		for cur := d.paths[path].FirstChild; cur != NoMovePathID; cur = d.paths[cur].NextSibling {
			if !yield(cur) {
				return
			}
		}
	}
}

// BaseLocal follows ancestors to the root and returns its local.
func (d *MoveData) BaseLocal(path MovePathID) mir.LocalID {
	root := path
	for cur := range d.Ancestors(path) {
		root = cur
	}
	return d.paths[root].Place.Local
}

func safeInt32(n int) int32 {
	raw, err := safecast.Conv[int32](n)
	if err != nil {
		panic(fmt.Errorf("arena size overflow: %w", err))
	}
	return raw
}
