package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/verso/internal/ui/report"
)

func (c *CLI) newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "List versioned revisions and their modules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := c.app.Status(options(cmd))
			if err != nil {
				return err
			}
			return report.NewPrinter(cmd.OutOrStdout()).Status(m)
		},
	}
}
