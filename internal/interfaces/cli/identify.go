package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/turtacn/ninchi/internal/application/identify"
	"github.com/turtacn/ninchi/internal/infrastructure/monitoring/logging"
)

type identifyOptions struct {
	permute      bool
	seed         int64
	printDOT     bool
	printMolfile bool
	auxiliary    bool
}

// NewIdentifyCmd creates the identify command.
func NewIdentifyCmd() *cobra.Command {
	opts := &identifyOptions{}

	cmd := &cobra.Command{
		Use:   "identify <molfile>",
		Short: "Compute the nInChI identifier of a structure file",
		Long: "Read a V3000 or V2000 molfile, canonicalize the atom order and print the\n" +
			"identifier.  --permute-input shuffles the atoms first, which must not change\n" +
			"the result.",
		Args: requireStructureArgs(1, 1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIdentify(cmd, args[0], opts)
		},
	}

	f := cmd.Flags()
	f.BoolVar(&opts.permute, "permute-input", false, "randomly permute the atom indices before canonicalizing")
	f.Int64Var(&opts.seed, "seed", 0, "seed for --permute-input (0 picks a time-based seed)")
	f.BoolVar(&opts.printDOT, "print-dotfile", false, "also print the canonical graph as a Graphviz DOT file")
	f.BoolVar(&opts.printMolfile, "print-molfile", false, "also print the canonically ordered V3000 molfile")
	f.BoolVar(&opts.auxiliary, "auxiliary", false, "also print the auxiliary encodings")

	return cmd
}

func runIdentify(cmd *cobra.Command, path string, opts *identifyOptions) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}

	res, err := cliCtx.Service.Identify(cmd.Context(), &identify.Request{
		Path:             path,
		Permute:          opts.permute,
		Seed:             opts.seed,
		IncludeDOT:       opts.printDOT,
		IncludeMolfile:   opts.printMolfile,
		IncludeAuxiliary: opts.auxiliary,
	})
	if err != nil {
		return err
	}
	if res.Warning != "" {
		cliCtx.Logger.Warn("identifier computed from a non-converged ordering",
			logging.String("path", path),
			logging.String("warning", res.Warning),
		)
	}

	return PrintResult(cmd, res, func(w io.Writer) error {
		return writeIdentifyText(w, res, cliCtx.Verbose)
	})
}

func writeIdentifyText(w io.Writer, res *identify.Result, verbose bool) error {
	if _, err := fmt.Fprintln(w, res.Identifier); err != nil {
		return err
	}
	if verbose {
		fmt.Fprintf(w, "iterations: %d converged: %t run_id: %s\n", res.Iterations, res.Converged, res.RunID)
		if res.Permutation != nil {
			fmt.Fprintf(w, "seed: %d permutation: %v\n", res.Seed, res.Permutation)
		}
	}
	if aux := res.Auxiliary; aux != nil {
		fmt.Fprintf(w, "\nsum formula:         %s\n", aux.SumFormula)
		fmt.Fprintf(w, "connection table:    %s\n", aux.ConnectionTable)
		fmt.Fprintf(w, "layered connections: %s\n", aux.LayeredConnections)
		fmt.Fprintf(w, "neighbor index sums: %s\n", aux.NeighborIndexSums)
		fmt.Fprintf(w, "bit string:          %s\n", aux.BitString)
		fmt.Fprintf(w, "decimal:             %s\n", aux.Numerals.Decimal)
		fmt.Fprintf(w, "%s\n%s\n", aux.Numerals.Hex, aux.Numerals.Base32)
	}
	if res.DOT != "" {
		fmt.Fprintf(w, "\n%s", res.DOT)
	}
	if res.Molfile != "" {
		fmt.Fprintf(w, "\n%s", res.Molfile)
	}
	return nil
}
