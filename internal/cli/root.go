// Package cli implements the conveyor command line.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/skosovsky/conveyor/engine"
	"github.com/skosovsky/conveyor/internal/config"
	"github.com/skosovsky/conveyor/internal/logging"
	"github.com/skosovsky/conveyor/registry"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var version = "dev"

// SetVersion sets the version string reported by --version.
func SetVersion(v string) { version = v }

// app carries the resolved settings from the root command into subcommands.
type app struct {
	v       *viper.Viper
	cfgFile string
	cfg     config.Config
	logger  *zap.Logger
}

// Execute runs the command line with os.Args and returns the process exit code.
func Execute() int {
	return run(os.Args[1:], os.Stdout, os.Stderr)
}

func run(args []string, stdout, stderr io.Writer) int {
	cmd := NewRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(stderr, "conveyor: %v\n", err)
		return 1
	}
	return 0
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	a := &app{v: config.New(), logger: zap.NewNop()}
	d := config.Defaults()

	cmd := &cobra.Command{
		Use:           "conveyor",
		Short:         "Assemble kickstart files from reusable parts",
		Long:          "Assemble kickstart files from reusable parts.\n\nParts live in <base-dir>/parts/<section>/<name>; templates in\n<base-dir>/templates/<id>/<section>/<name> link to them.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			_ = a.logger.Sync()
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&a.cfgFile, "config", "c", "", "config file (default: <base-dir>/conveyor.yaml, then ~/.config/conveyor/conveyor.yaml)")
	pf.StringP("base-dir", "b", d.BaseDir, "conveyor belt location")
	pf.StringSliceP("ignore-dirs", "i", d.Ignore, "comma-separated part names to ignore")
	pf.Bool("debug", false, "verbose logging to stderr")

	cmd.AddCommand(
		assembleCmd(a),
		initCmd(a),
		addpartCmd(a),
		mvpartCmd(a),
		lspartsCmd(a),
		lstemplatesCmd(a),
		cloneCmd(a),
		createCmd(a),
		diffCmd(a),
		exportCmd(a),
	)
	return cmd
}

func (a *app) setup(cmd *cobra.Command) error {
	pf := cmd.Root().PersistentFlags()
	_ = a.v.BindPFlag(config.KeyBaseDir, pf.Lookup("base-dir"))
	_ = a.v.BindPFlag(config.KeyIgnore, pf.Lookup("ignore-dirs"))
	_ = a.v.BindPFlag(config.KeyDebug, pf.Lookup("debug"))
	if f := cmd.Flags().Lookup("packages-opts"); f != nil {
		_ = a.v.BindPFlag(config.KeyPackagesOpts, f)
	}
	cfg, err := config.Load(a.v, a.cfgFile)
	if err != nil {
		return err
	}
	a.cfg = cfg
	logger, err := logging.New(logging.Config{Debug: cfg.Debug})
	if err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	a.logger = logger
	a.logger.Debug("configuration resolved", zap.String("base_dir", cfg.BaseDir),
		zap.Strings("ignore", cfg.Ignore), zap.String("config", a.v.ConfigFileUsed()))
	return nil
}

// open loads the parts registry and the template store under the base directory.
func (a *app) open() (*engine.Engine, error) {
	return engine.Open(a.cfg.BaseDir,
		engine.WithLogger(a.logger),
		engine.WithRegistryOptions(registry.WithBlacklist(a.cfg.Ignore...)),
	)
}
