package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/castup/castup/internal/logcfg"
)

func newConfigCmd(ctx *context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Work with the central logging configuration",
	}
	cmd.AddCommand(newConfigShowCmd(ctx))
	cmd.AddCommand(newConfigSetCmd(ctx))
	return cmd
}

func newConfigShowCmd(ctx *context) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the resolved central logging endpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			resolver := ctx.resolver()
			resolver.Output = cmd.ErrOrStderr()
			endpoint := resolver.Resolve()
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", endpoint.Address, endpoint.Source)
			return nil
		},
	}
}

func newConfigSetCmd(ctx *context) *cobra.Command {
	return &cobra.Command{
		Use:   "set <address>",
		Short: "Persist the central logging endpoint",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := ctx.configPath()
			if err != nil {
				return err
			}
			if err := logcfg.Write(path, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Central logging endpoint %s written to %s\n", args[0], path)
			return nil
		},
	}
}
