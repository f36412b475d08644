package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/castup/castup/internal/stack"
)

func newPlanCmd(ctx *context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show the launch plan without starting anything",
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := ctx.loadStack(cmd.Flags().Changed("file"))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Stack %s\n", doc.Stack.Name)
			fmt.Fprintln(out, "Launch order:")
			for i, name := range stack.KnownServices() {
				svc := doc.Services[name]
				fmt.Fprintf(out, "  %d. %s: %s\n", i+1, name, strings.Join(svc.Command, " "))
				if name == stack.ServiceSignalingServer {
					fmt.Fprintf(out, "     (settle %s before next launch)\n", doc.Settings.SettleDelay.Duration)
				}
			}
			fmt.Fprintf(out, "Receiver arguments: --signaling %s --room %s\n", doc.Settings.Signaling, doc.Settings.Room)
			return nil
		},
	}
	return cmd
}
