package commands

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/simonhull/firebird-suite/prismafix/internal/config"
	"github.com/simonhull/firebird-suite/prismafix/internal/output"
)

func newInitCmd(a *app) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Write a default " + config.FileName,
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipConfig: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			path := filepath.Join(a.workDir, config.FileName)
			if err := config.Save(a.fs, path, config.DefaultConfig(), force); err != nil {
				return err
			}

			output.Success("Created " + path)
			output.Step("Edit the schema path and rules, then run: prismafix")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing config file")

	return cmd
}
