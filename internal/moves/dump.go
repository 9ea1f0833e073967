package moves

import (
	"fmt"
	"io"
)

// DumpMoveData writes a human-readable listing of the tree and the event
// tables. The order is creation order, which downstream tooling relies on.
func DumpMoveData(w io.Writer, d *MoveData) error {
	if w == nil || d == nil {
		return nil
	}

	if _, err := fmt.Fprintf(w, "move_paths=%d\n", d.NumPaths()); err != nil {
		return err
	}
	for i := range d.paths {
		mp := &d.paths[i]
		parent := "-"
		if mp.Parent != NoMovePathID {
			parent = fmt.Sprintf("mp%d", mp.Parent)
		}
		fmt.Fprintf(w, "  mp%d: %s parent=%s", i, mp.Place, parent)
		if mp.FirstChild != NoMovePathID {
			first := true
			fmt.Fprintf(w, " children=[")
			for child := range d.Children(MovePathID(safeInt32(i))) {
				if !first {
					fmt.Fprintf(w, ", ")
				}
				fmt.Fprintf(w, "mp%d", child)
				first = false
			}
			fmt.Fprintf(w, "]")
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "moves=%d\n", d.NumMoves())
	for i := range d.moves {
		mo := &d.moves[i]
		fmt.Fprintf(w, "  mo%d: mp%d at %s\n", i, mo.Path, mo.Loc)
	}

	fmt.Fprintf(w, "inits=%d\n", d.NumInits())
	for i := range d.inits {
		in := &d.inits[i]
		if in.IsArg {
			fmt.Fprintf(w, "  in%d: mp%d %s arg\n", i, in.Path, in.Kind)
			continue
		}
		fmt.Fprintf(w, "  in%d: mp%d %s at %s\n", i, in.Path, in.Kind, in.Loc)
	}

	return nil
}
