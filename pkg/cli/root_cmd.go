package cli

// NewRootCmd builds the root cobra command and wires persistent flags. The
// command's PersistentPreRunE loads the config file, overlays flag values,
// builds the process logger, and loads the report registry so every
// subcommand starts from the same state. Tests can pre-populate Deps and
// inspect it after Execute.

import (
	"os"

	"github.com/jlrickert/cli-toolkit/mylog"
	"github.com/reportsmith/reportsmith/pkg/smith"
	"github.com/spf13/cobra"
)

// Deps carries the flag values and the handles PersistentPreRunE resolves
// from them. Subcommands read Config and Store instead of re-parsing flags.
type Deps struct {
	ConfigPath string
	LogFile    string
	LogLevel   string
	LogJSON    bool

	Config *smith.Config
	Store  *smith.Store
}

func NewRootCmd(deps *Deps) *cobra.Command {
	if deps == nil {
		deps = &Deps{}
	}

	cmd := &cobra.Command{
		Use:   "rsmith",
		Short: "Manage Power BI report definitions on disk",
		Long: `rsmith manages folders of Power BI report definitions: it creates
reports from a baseline, lists and describes what is loaded, and serves
the editing tools to MCP clients over stdio.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			path := deps.ConfigPath
			if path == "" {
				if p, err := smith.DefaultConfigPath(); err == nil {
					path = p
				}
			}
			cfg, err := smith.ReadConfig(ctx, path)
			if err != nil {
				return err
			}
			cfg.Merge(&smith.Config{Log: smith.LogConfig{
				Level: deps.LogLevel,
				File:  deps.LogFile,
				JSON:  deps.LogJSON,
			}})
			deps.Config = cfg

			var out = os.Stderr
			if cfg.Log.File != "" {
				f, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
				if err != nil {
					return err
				}
				out = f
			}
			lg := mylog.NewLogger(mylog.LoggerConfig{
				Out:     out,
				Level:   mylog.ParseLevel(cfg.Log.Level),
				JSON:    cfg.Log.JSON,
				Version: Version,
			})
			ctx = mylog.WithLogger(ctx, lg)

			store := smith.NewStore(cfg.ReportsRoot, cfg.BaselinePath)
			if err := store.Load(ctx); err != nil {
				return err
			}
			deps.Store = store

			cmd.SetContext(ctx)
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&deps.LogFile, "log-file", "", "write logs to file (default stderr)")
	cmd.PersistentFlags().StringVar(&deps.LogLevel, "log-level", "", `minimum log level (default "info")`)
	cmd.PersistentFlags().BoolVar(&deps.LogJSON, "log-json", false, "output logs as JSON")
	cmd.PersistentFlags().StringVarP(&deps.ConfigPath, "config", "c", "", "path to config file")

	cmd.AddCommand(
		NewCreateCmd(deps),
		NewDescribeCmd(deps),
		NewListCmd(deps),
		NewServeCmd(deps),
		NewVersionCmd(deps),
	)

	return cmd
}
