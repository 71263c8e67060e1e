// Package render draws molecular graphs for humans.  DOT emits a Graphviz
// undirected graph with one colored node per atom.
package render

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/turtacn/ninchi/internal/domain/molecule"
	"github.com/turtacn/ninchi/pkg/errors"
	"github.com/turtacn/ninchi/pkg/periodic"
)

// DOT writes g as a Graphviz graph called name.  Node labels are
// "<symbol> <index>"; colors come from table, falling back to the table's
// default for unmapped symbols.
func DOT(w io.Writer, name string, g *molecule.Graph, table periodic.Table) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "graph %s\n{\n  bgcolor=grey\n", graphID(name))

	for i, a := range g.Atoms() {
		sym, err := table.Symbol(a.AtomicNumber)
		if err != nil {
			return err
		}
		fmt.Fprintf(bw, "  %d [label=\"%s %d\" color=%s,style=filled,shape=circle,fontname=Calibri];\n",
			i, sym, i, table.Color(sym))
	}
	for _, b := range g.Bonds() {
		fmt.Fprintf(bw, "  %d -- %d [color=black,style=bold];\n", b.A, b.B)
	}
	bw.WriteString("}\n")

	if err := bw.Flush(); err != nil {
		return errors.Wrap(err, errors.CodeOutput, "failed to write dot file")
	}
	return nil
}

var plainID = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// graphID returns name as a DOT identifier, quoting it unless it is a plain
// alphanumeric ID.
func graphID(name string) string {
	if plainID.MatchString(name) {
		return name
	}
	return `"` + strings.ReplaceAll(name, `"`, `\"`) + `"`
}
