package main

import (
	"fmt"
	"os"

	contextcmd "drover/cmd/drover/context"
	"drover/internal/buildinfo"
	"drover/internal/logging"

	"github.com/spf13/cobra"
)

func main() {
	var (
		debug       bool
		endpoint    string
		contextName string
	)

	if err := logging.Configure(logging.LevelWarn); err != nil {
		_, _ = os.Stderr.WriteString("configure logger: " + err.Error() + "\n")
		os.Exit(1)
	}

	root := &cobra.Command{
		Use:           "drover",
		Short:         "Remote control of daemon node lifecycles",
		Version:       buildinfo.Version,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return logging.Configure(logging.Level(logging.LevelWarn, debug))
		},
	}

	root.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	root.PersistentFlags().StringVar(&endpoint, "endpoint", "", "Connect directly to a socket path or host:port")
	root.PersistentFlags().StringVar(&contextName, "context", "", "Context name to use")

	conn := &connection{endpoint: &endpoint, context: &contextName}
	root.AddCommand(
		spawnCmd(conn),
		initCmd(conn),
		startCmd(conn),
		stopCmd(conn),
		cleanupCmd(conn),
		statusCmd(conn),
		listCmd(conn),
		pidCmd(conn),
		versionCmd(conn),
		contextcmd.Cmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
