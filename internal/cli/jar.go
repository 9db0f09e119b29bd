package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/meigma/jarscan"
)

// jarCommand creates the "jar" command.
func (c *CLI) jarCommand() *cobra.Command {
	var flags scanFlags

	cmd := &cobra.Command{
		Use:   "jar <file|url>...",
		Short: "Inventory JAR files and the archives nested in them",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.apply(cmd, *c.config)
			if err != nil {
				return err
			}
			loader, err := c.jarLoader(cfg)
			if err != nil {
				return err
			}

			start := time.Now()
			total := &jarscan.Result{}
			for _, path := range args {
				src, err := source(cmd.Context(), path)
				if err != nil {
					return err
				}
				res, err := loader.LoadSource(cmd.Context(), src)
				if err != nil {
					return err
				}
				total.Archives = append(total.Archives, res.Archives...)
				total.Problems = append(total.Problems, res.Problems...)
			}
			c.Logger.Infof("Loaded %d archives (%s)", len(total.Archives), time.Since(start).Round(time.Millisecond))
			return render(c.out, flags.format, total)
		},
	}
	flags.bind(cmd, false)
	return cmd
}
