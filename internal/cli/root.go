package cli

import (
	stdcontext "context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/castup/castup/internal/logcfg"
	"github.com/castup/castup/internal/stack"
)

const defaultStackFile = "castup.yaml"

func NewRootCmd() *cobra.Command {
	root, _ := newRootCommand()
	return root
}

func newRootCommand() (*cobra.Command, *context) {
	var stackFile string
	var logConfigPath string

	root := &cobra.Command{
		Use:   "castup",
		Short: "Supervisor for the screen-share service stack",
	}

	root.PersistentFlags().
		StringVarP(&stackFile, "file", "f", defaultStackFile, "Path to stack manifest")
	root.PersistentFlags().
		StringVar(&logConfigPath, "log-config", "", "Path to the persisted central logging config (default ~/.central_log_config)")

	ctx := &context{stackFile: &stackFile, logConfigPath: &logConfigPath}
	root.AddCommand(newUpCmd(ctx))
	root.AddCommand(newPlanCmd(ctx))
	root.AddCommand(newConfigCmd(ctx))

	root.SilenceUsage = true
	root.SilenceErrors = true

	return root, ctx
}

// Execute runs the CLI entrypoint.
func Execute() {
	ctx, stop := signal.NotifyContext(stdcontext.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := NewRootCmd()
	root.SetContext(ctx)

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type context struct {
	stackFile     *string
	logConfigPath *string
}

// loadStack parses the manifest. If the default path is absent the built-in
// stack is used; an explicitly requested file must exist.
func (c *context) loadStack(explicit bool) (*stack.File, error) {
	path := *c.stackFile
	doc, err := stack.Load(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return stack.Default(), nil
		}
		return nil, err
	}
	return doc, nil
}

func (c *context) resolver() *logcfg.Resolver {
	return &logcfg.Resolver{Path: *c.logConfigPath}
}

func (c *context) configPath() (string, error) {
	if *c.logConfigPath != "" {
		return *c.logConfigPath, nil
	}
	return logcfg.ConfigPath()
}
