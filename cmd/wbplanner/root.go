package main

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"wbplanner/internal/config"
	"wbplanner/internal/logger"
)

type rootOpts struct {
	cfgFile string
	envFile string
}

// app carries the state shared by subcommands.
type app struct {
	v    *viper.Viper
	opts rootOpts
	cfg  *config.Config
	log  *logrus.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{v: config.New()}

	cmd := &cobra.Command{
		Use:   "wbplanner",
		Short: "Plan how spreadsheet columns upload into a schema",
		Long: `wbplanner maps the column headers of a spreadsheet onto paths through a
schema graph, and commits the mapping to an upload plan.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.init,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.opts.cfgFile, "config", "", "config file (default .wbplanner.yaml in the working directory)")
	flags.StringVar(&a.opts.envFile, "env-file", ".env", "file with environment overrides")
	flags.String("schema", "", "schema description (YAML)")
	flags.String("rules", "", "automapper rules (YAML)")
	flags.StringP("base-table", "t", "", "base table of the plan")
	flags.Int("max-depth", 0, "maximum number of relationship hops")
	flags.String("log-level", "", "log level")
	flags.String("log-format", "", "log format: text or json")
	flags.String("session", "", "reuse the cache session with this id across runs")

	for key, flag := range map[string]string{
		config.KeySchema:    "schema",
		config.KeyRules:     "rules",
		config.KeyBaseTable: "base-table",
		config.KeyMaxDepth:  "max-depth",
		config.KeyLogLevel:  "log-level",
		config.KeyLogFormat: "log-format",
		config.KeySession:   "session",
	} {
		// The flags exist, binding cannot fail.
		_ = a.v.BindPFlag(key, flags.Lookup(flag))
	}

	cmd.AddCommand(
		newVersionCmd(),
		newPathsCmd(a),
		newSuggestCmd(a),
		newPlanCmd(a),
		newCheckCmd(a),
		newEndSessionCmd(a),
	)

	return cmd
}

func (a *app) init(cmd *cobra.Command, _ []string) error {
	if cmd.Name() == "version" {
		return nil
	}

	cfg, err := config.Load(a.v, config.Options{File: a.opts.cfgFile, EnvFile: a.opts.envFile})
	if err != nil {
		return err
	}

	if err := logger.Init(cfg.Log.Level, cfg.Log.Format); err != nil {
		return err
	}

	log, err := logger.New(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.log = log

	return nil
}
