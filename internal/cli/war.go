package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/meigma/jarscan"
)

// warCommand creates the "war" command.
func (c *CLI) warCommand() *cobra.Command {
	var flags scanFlags

	cmd := &cobra.Command{
		Use:   "war <file|url>",
		Short: "Inventory the libraries of a web archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.apply(cmd, *c.config)
			if err != nil {
				return err
			}
			jar, err := c.jarLoader(cfg)
			if err != nil {
				return err
			}
			loader := jarscan.NewWarLoader(jar,
				jarscan.WithWorkers(cfg.Workers),
				jarscan.WithTimeout(cfg.Timeout),
				jarscan.WithFailurePolicy(cfg.FailurePolicy()),
				jarscan.WithWarLogger(c.slogger()),
			)

			start := time.Now()
			src, err := source(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			res, err := loader.LoadSource(cmd.Context(), src)
			if err != nil {
				return err
			}
			c.Logger.Infof("Loaded %d archives (%s)", len(res.Archives), time.Since(start).Round(time.Millisecond))
			return render(c.out, flags.format, res)
		},
	}
	flags.bind(cmd, true)
	return cmd
}
