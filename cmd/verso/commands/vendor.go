package commands

import "github.com/spf13/cobra"

func (c *CLI) newVendorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vendor",
		Short: "Copy an upstream module into the owning tree",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			module, _ := cmd.Flags().GetString("module")
			platform, _ := cmd.Flags().GetString("platform")
			return c.app.Vendor(cmd.Context(), options(cmd), module, platform)
		},
	}
	cmd.Flags().StringP("module", "m", "", "Registered module to vendor")
	cmd.Flags().StringP("platform", "p", "android", "Subtrees to vendor: android, ios or all")
	return cmd
}
