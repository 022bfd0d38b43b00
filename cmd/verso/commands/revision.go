package commands

import (
	"errors"

	"github.com/spf13/cobra"
	"go.trai.ch/verso/internal/ui/report"
)

func (c *CLI) newVersionModuleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version-module",
		Short: "Version one module into a revision",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			module, _ := cmd.Flags().GetString("module")
			revision, _ := cmd.Flags().GetString("revision")
			return c.app.VersionModule(cmd.Context(), options(cmd), module, revision)
		},
	}
	cmd.Flags().StringP("module", "m", "", "Registered module to version")
	cmd.Flags().String("revision", "", "Target revision, MAJOR.MINOR.PATCH")
	return cmd
}

func (c *CLI) newAddRevisionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add-revision",
		Short: "Version registered modules into a new revision",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			revision, _ := cmd.Flags().GetString("revision")
			modules, _ := cmd.Flags().GetStringSlice("module")
			r, err := c.app.AddRevision(cmd.Context(), options(cmd), revision, modules)
			if r != nil {
				err = errors.Join(err, report.NewPrinter(cmd.OutOrStdout()).Run(r))
			}
			return err
		},
	}
	cmd.Flags().String("revision", "", "Target revision, MAJOR.MINOR.PATCH")
	cmd.Flags().StringSliceP("module", "m", nil, "Modules to version (default every registered module)")
	return cmd
}

func (c *CLI) newRemoveRevisionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remove-revision",
		Short: "Delete a revision and regenerate the façades",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			revision, _ := cmd.Flags().GetString("revision")
			return c.app.RemoveRevision(cmd.Context(), options(cmd), revision)
		},
	}
	cmd.Flags().String("revision", "", "Revision to remove, MAJOR.MINOR.PATCH")
	return cmd
}

func (c *CLI) newGenerateWrappersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "generate-wrappers",
		Short: "Regenerate every façade from the manifest",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.app.GenerateWrappers(cmd.Context(), options(cmd))
		},
	}
}
