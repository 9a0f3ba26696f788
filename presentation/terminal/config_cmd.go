package terminal

import (
	"github.com/spf13/cobra"

	"authflow_automation/infrastructure/config"
)

type configCmd struct {
	gs        *globalState
	noColor   *bool
	overrides overrideFlags
}

func newConfigCommand(gs *globalState, noColor *bool) *cobra.Command {
	c := &configCmd{gs: gs, noColor: noColor}

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the resolved configuration",
		Long:  "Print the configuration a run would use, after profiles, environment variables and flags. Secrets are masked.",
		Args:  cobra.NoArgs,
		RunE:  c.run,
	}
	c.overrides.register(cmd)
	return cmd
}

func (c *configCmd) run(cmd *cobra.Command, _ []string) error {
	cfg, err := c.gs.loadConfig(c.overrides.resolve(cmd))
	if err != nil {
		return err
	}

	p := newPrinter(cmd.OutOrStdout(), *c.noColor)
	p.properties("Configuration", cfg.Summary())
	return nil
}

// overrideFlags are the configuration flags shared by run and config
type overrideFlags struct {
	environment string
	browser     string
	driver      string
	headless    bool
	profileFile string
	tablesFile  string
}

func (o *overrideFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&o.environment, "env", "", "environment profile: dev, qa, prod (default dev)")
	flags.StringVar(&o.browser, "browser", "", "browser: chrome, firefox, edge")
	flags.StringVar(&o.driver, "driver", "", "driver: playwright, cdp, webdriver")
	flags.BoolVar(&o.headless, "headless", true, "run the browser without a window")
	flags.StringVar(&o.profileFile, "profile-file", "", "TOML file with environment profiles")
	flags.StringVar(&o.tablesFile, "tables-file", "", "YAML file with selectors and credentials")
}

// resolve - only flags set on the command line override other sources
func (o *overrideFlags) resolve(cmd *cobra.Command) config.Overrides {
	overrides := config.Overrides{
		Environment: o.environment,
		Browser:     o.browser,
		Driver:      o.driver,
		ProfileFile: o.profileFile,
		TablesFile:  o.tablesFile,
	}
	if cmd.Flags().Changed("headless") {
		headless := o.headless
		overrides.Headless = &headless
	}
	return overrides
}
