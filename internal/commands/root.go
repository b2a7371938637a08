package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/simonhull/firebird-suite/prismafix"
	"github.com/simonhull/firebird-suite/prismafix/internal/config"
	"github.com/simonhull/firebird-suite/prismafix/internal/logging"
	"github.com/simonhull/firebird-suite/prismafix/internal/output"
	"github.com/simonhull/firebird-suite/prismafix/internal/repair"
)

// skipConfig marks commands that must run without reading prismafix.yml.
const skipConfig = "prismafix/skip-config"

// app holds state shared by all commands for one invocation.
type app struct {
	fs      afero.Fs
	workDir string

	// flags
	configPath string
	logFile    string
	verbose    bool

	cfg      *config.Config
	log      *zap.Logger
	closeLog func() error
}

func newApp() *app {
	return &app{fs: afero.NewOsFs(), workDir: "."}
}

// Execute runs the prismafix CLI with os.Args and reports any error.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := execute(ctx, newApp(), os.Args[1:])
	if err != nil {
		output.Error(err.Error())
	}
	return err
}

func execute(ctx context.Context, a *app, args []string) error {
	defer a.teardown()

	cmd := newRootCmd(a)
	cmd.SetArgs(args)
	return cmd.ExecuteContext(ctx)
}

func newRootCmd(a *app) *cobra.Command {
	var opts repairOptions

	cmd := &cobra.Command{
		Use:   "prismafix [schema]",
		Short: "Remove malformed relation fields from a Prisma schema",
		Long: `prismafix strips stray back-relation fields such as

  tenants Tenant[]

from a Prisma schema and collapses the blank lines they leave behind.
Running it again on a clean schema changes nothing.

Without a subcommand it behaves like "prismafix repair".

Examples:
  prismafix
  prismafix apps/api/prisma/schema.prisma --diff
  prismafix check
  prismafix watch`,
		Version:       prismafix.Version,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runRepair(cmd.Context(), args, opts)
		},
	}

	flags := cmd.PersistentFlags()
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "Enable verbose output for debugging")
	flags.StringVarP(&a.configPath, "config", "c", "", "Path to config file (default ./"+config.FileName+")")
	flags.StringVar(&a.logFile, "log-file", "", "Also write JSON logs to this file (rotated)")

	opts.register(cmd)

	cmd.AddCommand(
		newRepairCmd(a),
		newCheckCmd(a),
		newWatchCmd(a),
		newInitCmd(a),
		newVersionCmd(),
	)

	return cmd
}

// setup loads configuration and builds the logger before any command runs.
func (a *app) setup(cmd *cobra.Command) error {
	output.SetVerbose(a.verbose)

	if cmd.Annotations[skipConfig] == "true" {
		a.cfg = config.DefaultConfig()
	} else {
		cfg, err := config.Load(a.fs, a.workDir, a.configPath)
		if err != nil {
			return err
		}
		a.cfg = cfg
	}

	if a.log == nil {
		logFile := a.logFile
		if logFile == "" {
			logFile = a.cfg.Log.File
		}
		log, closeLog, err := logging.New(logging.Options{
			Level:   a.cfg.Log.Level,
			Verbose: a.verbose,
			File:    logFile,
		})
		if err != nil {
			return err
		}
		a.log, a.closeLog = log, closeLog
	}

	a.log.Debug("config loaded",
		zap.String("schema", a.cfg.Schema),
		zap.Int("rules", len(a.cfg.Rules)))
	return nil
}

func (a *app) teardown() {
	if a.closeLog != nil {
		_ = a.closeLog()
		a.closeLog = nil
	}
}

// schemaPath picks the schema from the first argument or the config.
// Relative paths are resolved against the working directory.
func (a *app) schemaPath(args []string) string {
	path := a.cfg.Schema
	if len(args) > 0 && args[0] != "" {
		path = args[0]
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(a.workDir, path)
	}
	return path
}

// repairer builds a Repairer with the configured rules.
func (a *app) repairer() (*repair.Repairer, error) {
	rules := make([]repair.Rule, 0, len(a.cfg.Rules))
	for i, rc := range a.cfg.Rules {
		rule, err := repair.NewRule(rc.Field, rc.Model)
		if err != nil {
			return nil, fmt.Errorf("config rules[%d]: %w", i, err)
		}
		rules = append(rules, rule)
	}

	return repair.New(a.fs,
		repair.WithRules(rules...),
		repair.WithLogger(a.log),
	), nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print version information",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipConfig: "true"},
		Run: func(cmd *cobra.Command, args []string) {
			output.Plain(fmt.Sprintf("prismafix v%s\n", prismafix.Version))
		},
	}
}
