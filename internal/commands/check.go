package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/simonhull/firebird-suite/prismafix/internal/output"
)

// errNeedsRepair makes check exit non-zero.
var errNeedsRepair = errors.New("schema needs repair (run: prismafix repair)")

func newCheckCmd(a *app) *cobra.Command {
	var showDiff bool

	cmd := &cobra.Command{
		Use:   "check [schema]",
		Short: "Fail if the schema has malformed relation fields",
		Long: `Reports whether repair would change the schema, without writing it.
Exits with status 1 when it would, which makes it usable as a CI gate or
a pre-commit hook.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := a.schemaPath(args)

			r, err := a.repairer()
			if err != nil {
				return err
			}
			res, err := r.Load(path)
			if err != nil {
				return err
			}

			if !res.Changed() {
				output.Success(path + " is clean")
				return nil
			}

			if len(res.Removed) == 0 {
				output.Warn(path + " has runs of blank lines to collapse")
			} else {
				output.Warn(fmt.Sprintf("%s has %s", path, plural(len(res.Removed), "malformed relation field")))
				for _, line := range res.Removed {
					output.Step(fmt.Sprintf("line %d: %s", line.Number, strings.TrimSpace(line.Text)))
				}
			}

			if showDiff {
				if err := a.showDiff(res); err != nil {
					return err
				}
			}
			return errNeedsRepair
		},
	}

	cmd.Flags().BoolVar(&showDiff, "diff", false, "Show a unified diff of the pending changes")

	return cmd
}
