package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/simonhull/firebird-suite/prismafix/internal/diff"
	"github.com/simonhull/firebird-suite/prismafix/internal/output"
	"github.com/simonhull/firebird-suite/prismafix/internal/repair"
	"github.com/simonhull/firebird-suite/prismafix/internal/tui"
)

type repairOptions struct {
	dryRun      bool
	diff        bool
	backup      bool
	interactive bool
}

func (o *repairOptions) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&o.dryRun, "dry-run", false, "Report what would change without writing")
	cmd.Flags().BoolVar(&o.diff, "diff", false, "Show a unified diff of the changes")
	cmd.Flags().BoolVar(&o.backup, "backup", false, "Keep the previous schema as <schema>.bak")
	cmd.Flags().BoolVarP(&o.interactive, "interactive", "i", false, "Ask before writing")
}

func newRepairCmd(a *app) *cobra.Command {
	var opts repairOptions

	cmd := &cobra.Command{
		Use:   "repair [schema]",
		Short: "Strip malformed relation fields and rewrite the schema",
		Long: `Reads the schema, removes every line that consists only of a malformed
relation field (tenants Tenant or tenants Tenant[] by default), collapses
runs of blank lines, and overwrites the file.

The schema path defaults to the "schema" setting in prismafix.yml, or
apps/api/prisma/schema.prisma when no config exists.

Examples:
  prismafix repair
  prismafix repair prisma/schema.prisma --backup
  prismafix repair --dry-run --diff`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runRepair(cmd.Context(), args, opts)
		},
	}
	opts.register(cmd)

	return cmd
}

func (a *app) runRepair(ctx context.Context, args []string, opts repairOptions) error {
	path := a.schemaPath(args)

	r, err := a.repairer()
	if err != nil {
		return err
	}

	res, err := r.Load(path)
	if err != nil {
		return err
	}
	for _, line := range res.Removed {
		output.Verbose(fmt.Sprintf("line %d: %s", line.Number, strings.TrimSpace(line.Text)))
	}

	if opts.diff {
		if err := a.showDiff(res); err != nil {
			return err
		}
	}

	if opts.interactive && res.Changed() && !opts.dryRun {
		apply, err := a.confirm(res)
		if err != nil {
			return err
		}
		if !apply {
			output.Info("Cancelled, schema left unchanged")
			return nil
		}
	}

	err = r.Write(ctx, res, repair.WriteOptions{
		DryRun: opts.dryRun,
		Backup: opts.backup || a.cfg.Backup,
	})
	if err != nil {
		return err
	}

	if opts.dryRun {
		output.Info(fmt.Sprintf("[DRY RUN] Would remove %s from %s", plural(len(res.Removed), "relation field"), path))
		return nil
	}
	if opts.backup || a.cfg.Backup {
		output.Verbose("Backup written to " + path + ".bak")
	}
	output.Success("Fixed relation fields in " + path)
	return nil
}

// showDiff prints the pending change, paging it when it is long and
// stdout is a terminal.
func (a *app) showDiff(res *repair.Result) error {
	tty := output.IsTerminal()
	body := diff.Renderer{Color: tty}.Unified(res.Path, res.Path, res.Before, res.After)
	if body == "" {
		output.Info("No changes for " + res.Path)
		return nil
	}

	if tty && tui.NeedsPager(body) {
		return tui.Page(res.Path, body)
	}
	output.Plain(body)
	return nil
}

// confirm asks whether to apply the fix, showing the diff on request.
func (a *app) confirm(res *repair.Result) (bool, error) {
	if !output.IsTerminal() {
		return false, errors.New("--interactive requires a terminal")
	}

	for {
		choice, err := tui.Confirm(res.Path, len(res.Removed))
		if err != nil {
			return false, err
		}

		switch choice {
		case tui.Apply:
			return true, nil
		case tui.ShowDiff:
			if err := a.showDiff(res); err != nil {
				return false, err
			}
		default:
			return false, nil
		}
	}
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
