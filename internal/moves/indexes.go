// Package moves builds the move/initialization substrate for a body: the
// canonical move-path tree plus the move-out and init event tables that a
// dataflow pass turns into per-location bit-vectors.
package moves

// Dense zero-based identities, fresh per MoveData. Each is an index into the
// owning arena, so bit-vectors over paths or events can be sized directly
// from the counts.
type MovePathID int32
type MoveOutID int32
type InitID int32

const (
	NoMovePathID MovePathID = -1
	NoMoveOutID  MoveOutID  = -1
	NoInitID     InitID     = -1
)
