package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/turtacn/ninchi/pkg/errors"
)

// batchRecord is the structured form of one batch line.
type batchRecord struct {
	Path       string `json:"path" yaml:"path"`
	Identifier string `json:"identifier,omitempty" yaml:"identifier,omitempty"`
	Converged  bool   `json:"converged" yaml:"converged"`
	Error      string `json:"error,omitempty" yaml:"error,omitempty"`
}

// NewBatchCmd creates the batch command.
func NewBatchCmd() *cobra.Command {
	var concurrency int

	cmd := &cobra.Command{
		Use:   "batch <molfile>...",
		Short: "Compute identifiers for many structure files concurrently",
		Long: "Identify every structure file given on the command line.  One line is printed\n" +
			"per file, in argument order: \"<path>\\t<identifier>\" or \"<path>\\tERROR <message>\".\n" +
			"The exit status is non-zero when any file failed.",
		Args: requireStructureArgs(1, 0),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd, args, concurrency)
		},
	}

	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "maximum structures processed at once (default: batch.concurrency from config)")
	return cmd
}

func runBatch(cmd *cobra.Command, paths []string, concurrency int) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}
	if concurrency < 1 {
		concurrency = cliCtx.Config.Batch.Concurrency
	}

	items := cliCtx.Service.IdentifyBatch(cmd.Context(), paths, concurrency)

	records := make([]batchRecord, len(items))
	var firstErr error
	failed := 0
	for i, it := range items {
		records[i].Path = it.Path
		if it.Err != nil {
			records[i].Error = it.Err.Error()
			if firstErr == nil {
				firstErr = it.Err
			}
			failed++
			continue
		}
		records[i].Identifier = it.Result.Identifier
		records[i].Converged = it.Result.Converged
	}

	if err := PrintResult(cmd, records, func(w io.Writer) error {
		for _, r := range records {
			if r.Error != "" {
				fmt.Fprintf(w, "%s\tERROR %s\n", r.Path, r.Error)
				continue
			}
			if _, err := fmt.Fprintf(w, "%s\t%s\n", r.Path, r.Identifier); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return err
	}

	if failed > 0 {
		return errors.Newf(errors.GetCode(firstErr), "%d of %d structures failed", failed, len(items))
	}
	return nil
}
