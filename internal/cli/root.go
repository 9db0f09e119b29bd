package cli

import (
	"github.com/spf13/cobra"

	"github.com/meigma/jarscan/internal/config"
)

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "jarscan inventories the classes and resources of JAR and WAR files",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(c.configPath)
			if err != nil {
				return err
			}
			c.config = cfg
			return nil
		},
	}

	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "path to a TOML or YAML config file")

	root.AddCommand(c.jarCommand())
	root.AddCommand(c.warCommand())
	root.AddCommand(c.cacheCommand())

	return root
}
