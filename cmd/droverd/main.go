package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"drover/controlplane"
	"drover/daemon"
	"drover/internal/buildinfo"
	"drover/internal/logging"
	"drover/internal/telemetry"
	"drover/nodeproc"

	"github.com/spf13/cobra"
)

const telemetryShutdownTimeout = 5 * time.Second

func main() {
	if err := logging.Configure(logging.LevelInfo); err != nil {
		_, _ = os.Stderr.WriteString("configure logger: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := rootCmd().Execute(); err != nil {
		slog.Error("command failed", "err", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		listen  string
		nodeBin string
		debug   bool
		trace   bool
	)

	cmd := &cobra.Command{
		Use:     "droverd",
		Short:   "Drover node control-plane daemon",
		Version: buildinfo.Version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return logging.Configure(logging.Level(logging.LevelInfo, debug))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			tp, err := telemetry.New(trace)
			if err != nil {
				return err
			}
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), telemetryShutdownTimeout)
				defer cancel()
				if err := tp.Shutdown(shutdownCtx); err != nil {
					slog.Error("Failed to flush telemetry.", "err", err)
				}
			}()

			ctrl := controlplane.New(
				nodeproc.New(nodeproc.WithBinary(nodeBin)),
				controlplane.WithTracer(tp.Tracer()),
			)
			return daemon.Run(ctx, ctrl, listen)
		},
	}

	cmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	cmd.Flags().StringVar(&listen, "listen", defaultSocketPath(), "Unix socket path or TCP host:port")
	cmd.Flags().StringVar(&nodeBin, "node-bin", "casd", "Default node binary")
	cmd.Flags().BoolVar(&trace, "trace", false, "Export operation traces to stderr")
	return cmd
}

func defaultSocketPath() string {
	if runtime.GOOS == "darwin" {
		return "/tmp/droverd.sock"
	}
	return "/var/run/droverd.sock"
}
