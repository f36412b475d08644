package cli

import (
	stdcontext "context"
	"fmt"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/castup/castup/internal/metrics"
	"github.com/castup/castup/internal/runtime/proc"
	"github.com/castup/castup/internal/supervisor"
)

const shutdownTimeout = 10 * time.Second

func newUpCmd(ctx *context) *cobra.Command {
	var (
		signaling    string
		room         string
		settle       time.Duration
		waitReady    bool
		readyAddr    string
		readyTimeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "up",
		Short: "Start the stack and supervise it until stopped",
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := ctx.loadStack(cmd.Flags().Changed("file"))
			if err != nil {
				return err
			}

			resolver := ctx.resolver()
			resolver.Output = cmd.ErrOrStderr()
			endpoint := resolver.Resolve()
			fmt.Fprintf(cmd.OutOrStdout(), "Central logging endpoint %s (%s)\n", endpoint.Address, endpoint.Source)

			events := make(chan supervisor.Event, 64)
			var printer sync.WaitGroup
			printer.Add(1)
			go func() {
				defer printer.Done()
				printEvents(cmd.OutOrStdout(), cmd.ErrOrStderr(), events)
			}()

			opts := supervisor.Options{
				Signaling:    signaling,
				Room:         room,
				WaitReady:    waitReady,
				ReadyAddr:    readyAddr,
				ReadyTimeout: readyTimeout,
			}
			if cmd.Flags().Changed("settle") {
				opts.SettleDelay = settle
			}

			sup := supervisor.New(doc, proc.New(), events, opts)

			trigger := supervisor.TriggerSignal
			if err := sup.Launch(cmd.Context()); err == nil {
				operator, restore := waitForKey(cmd.InOrStdin())
				fmt.Fprintln(cmd.OutOrStdout(), "Stack running. Press any key to stop.")
				trigger = sup.Wait(cmd.Context(), operator)
				restore()
			}

			metrics.AddShutdownTrigger(string(trigger))

			stopCtx, cancel := stdcontext.WithTimeout(stdcontext.WithoutCancel(cmd.Context()), shutdownTimeout)
			defer cancel()
			sup.Shutdown(stopCtx)

			sup.Drain()
			close(events)
			printer.Wait()

			fmt.Fprintf(cmd.OutOrStdout(), "Stack %s shut down (trigger: %s).\n", doc.Stack.Name, trigger)
			return nil
		},
	}

	cmd.Flags().StringVar(&signaling, "signaling", "", "Signaling server URL passed to the receiver (default from manifest)")
	cmd.Flags().StringVar(&room, "room", "", "Room identifier passed to the receiver (default from manifest)")
	cmd.Flags().DurationVar(&settle, "settle", 0, "Settle delay between starting the signaling server and the receiver")
	cmd.Flags().BoolVar(&waitReady, "wait-ready", false, "Probe the signaling server instead of sleeping for the settle delay")
	cmd.Flags().StringVar(&readyAddr, "ready-addr", "localhost:8000", "Address probed when --wait-ready is set")
	cmd.Flags().DurationVar(&readyTimeout, "ready-timeout", 10*time.Second, "Upper bound on the readiness probe")

	return cmd
}
