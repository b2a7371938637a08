package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/simonhull/firebird-suite/prismafix/internal/output"
	"github.com/simonhull/firebird-suite/prismafix/internal/repair"
	"github.com/simonhull/firebird-suite/prismafix/internal/watch"
)

func newWatchCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch [schema]",
		Short: "Repair the schema every time it changes",
		Long: `Repairs the schema once, then watches it and repairs it again whenever it
changes, for example after "prisma db pull". Stop with Ctrl+C.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runWatch(cmd.Context(), a.schemaPath(args))
		},
	}

	return cmd
}

func (a *app) runWatch(ctx context.Context, path string) error {
	r, err := a.repairer()
	if err != nil {
		return err
	}

	handle := func(ctx context.Context, p string) error {
		res, err := r.RepairFile(ctx, p, repair.WriteOptions{
			Backup:        a.cfg.Backup,
			SkipUnchanged: true,
		})
		if err != nil {
			return err
		}
		if res.Written {
			output.Success("Fixed relation fields in " + p)
		}
		return nil
	}

	if err := handle(ctx, path); err != nil {
		return err
	}

	w, err := watch.New(path, a.cfg.Watch.Debounce, handle, a.log)
	if err != nil {
		return err
	}

	output.Info("Watching " + path + " (Ctrl+C to stop)")
	return w.Run(ctx)
}
