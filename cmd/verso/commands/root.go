// Package commands implements the CLI commands for verso.
package commands

import (
	"context"
	"io"

	"github.com/spf13/cobra"
	"go.trai.ch/verso/internal/app"
	"go.trai.ch/verso/internal/build"
)

// CLI represents the command line interface for verso.
type CLI struct {
	app     *app.App
	rootCmd *cobra.Command
}

// New creates a new CLI instance with the given app.
func New(a *app.App) *CLI {
	rootCmd := &cobra.Command{
		Use:           "verso",
		Short:         "Embed several revisions of a native module side by side",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
	}

	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	rootCmd.PersistentFlags().StringP("root", "r", ".", "Root of the owning tree")
	rootCmd.PersistentFlags().StringP("config", "c", "", "Module registry file (default <root>/verso.yaml)")
	rootCmd.PersistentFlags().IntP("parallelism", "j", 0, "Module pipelines to run at once (default one per CPU)")
	rootCmd.PersistentFlags().BoolP("force", "f", false, "Rerun work that is already up to date")

	c := &CLI{
		app:     a,
		rootCmd: rootCmd,
	}

	rootCmd.AddCommand(c.newVersionModuleCmd())
	rootCmd.AddCommand(c.newAddRevisionCmd())
	rootCmd.AddCommand(c.newRemoveRevisionCmd())
	rootCmd.AddCommand(c.newVendorCmd())
	rootCmd.AddCommand(c.newGenerateWrappersCmd())
	rootCmd.AddCommand(c.newStatusCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetOutput redirects command output. Used for testing.
func (c *CLI) SetOutput(w io.Writer) {
	c.rootCmd.SetOut(w)
	c.rootCmd.SetErr(w)
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// options reads the persistent flags.
func options(cmd *cobra.Command) app.Options {
	root, _ := cmd.Flags().GetString("root")
	config, _ := cmd.Flags().GetString("config")
	parallelism, _ := cmd.Flags().GetInt("parallelism")
	force, _ := cmd.Flags().GetBool("force")
	return app.Options{
		Root:        root,
		ConfigPath:  config,
		Parallelism: parallelism,
		Force:       force,
	}
}
