package moves

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"
)

// snapshotVersion is bumped whenever the encoded layout changes.
const snapshotVersion = 1

// Snapshot is the serializable form of a finalized MoveData: the three
// arenas in creation order. The lookup tables are derivable and not stored.
type Snapshot struct {
	Version int
	Body    string
	Paths   []MovePath
	Moves   []MoveOut
	Inits   []Init
}

// Snapshot flattens the finalized MoveData for serialization.
func (d *MoveData) Snapshot(bodyName string) *Snapshot {
	return &Snapshot{
		Version: snapshotVersion,
		Body:    bodyName,
		Paths:   d.paths,
		Moves:   d.moves,
		Inits:   d.inits,
	}
}

// WriteSnapshot atomically writes the msgpack encoding of the snapshot.
func WriteSnapshot(path string, snap *Snapshot) error {
	if snap == nil {
		return errors.New("nil snapshot")
	}
	f, err := os.CreateTemp(filepath.Dir(path), "tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(f.Name())

	enc := msgpack.NewEncoder(f)
	if err := enc.Encode(snap); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), path)
}

// ReadSnapshot reads a snapshot written by WriteSnapshot.
func ReadSnapshot(path string) (*Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var snap Snapshot
	dec := msgpack.NewDecoder(f)
	if err := dec.Decode(&snap); err != nil {
		return nil, err
	}
	if snap.Version != snapshotVersion {
		return nil, fmt.Errorf("%s: snapshot version %d, want %d", path, snap.Version, snapshotVersion)
	}
	return &snap, nil
}
