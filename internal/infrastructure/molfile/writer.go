package molfile

import (
	"bufio"
	"fmt"
	"io"

	"github.com/turtacn/ninchi/internal/domain/molecule"
	"github.com/turtacn/ninchi/pkg/errors"
	"github.com/turtacn/ninchi/pkg/periodic"
)

// VersionTag replaces the program line of every written header.
const VersionTag = "nInChI v3.0.3"

// Write emits g as a V3000 molfile using s for the header, footer and atom
// attributes layout.  Atom records follow g's order; the attributes carried
// by each atom keep the source coordinates attached to the right atom.
func Write(w io.Writer, s *Structure, g *molecule.Graph, table periodic.Table) error {
	bw := bufio.NewWriter(w)

	for _, line := range header(s) {
		fmt.Fprintln(bw, line)
	}

	bonds := g.Bonds()
	fmt.Fprintf(bw, "%sCOUNTS %d %d 0 0 1\n", v30Prefix, g.Len(), len(bonds))

	fmt.Fprintf(bw, "%sBEGIN ATOM\n", v30Prefix)
	for i, a := range g.Atoms() {
		sym, err := table.Symbol(a.AtomicNumber)
		if err != nil {
			return err
		}
		fmt.Fprintf(bw, "%s%d %s%s\n", v30Prefix, i+1, sym, a.Attributes)
	}
	fmt.Fprintf(bw, "%sEND ATOM\n", v30Prefix)

	fmt.Fprintf(bw, "%sBEGIN BOND\n", v30Prefix)
	for k, b := range bonds {
		fmt.Fprintf(bw, "%s%d 1 %d %d\n", v30Prefix, k+1, b.A+1, b.B+1)
	}
	fmt.Fprintf(bw, "%sEND BOND\n", v30Prefix)

	for _, line := range footer(s) {
		fmt.Fprintln(bw, line)
	}

	if err := bw.Flush(); err != nil {
		return errors.Wrap(err, errors.CodeOutput, "failed to write molfile")
	}
	return nil
}

// header returns the five V3000 header lines with the program line replaced.
func header(s *Structure) []string {
	name := ""
	if s != nil {
		name = s.Name
	}
	out := []string{name, VersionTag, "", v3000Header, v30Prefix + "BEGIN CTAB"}
	if s == nil {
		return out
	}
	if len(s.Header) > 0 {
		out[0] = s.Header[0]
	}
	if len(s.Header) > 2 {
		out[2] = s.Header[2]
	}
	if s.Format == FormatV3000 && len(s.Header) >= 5 {
		out[3] = s.Header[3]
		out[4] = s.Header[4]
	}
	return out
}

func footer(s *Structure) []string {
	if s != nil && s.Format == FormatV3000 && len(s.Footer) > 0 {
		return s.Footer
	}
	return []string{v30Prefix + "END CTAB", "M  END"}
}
