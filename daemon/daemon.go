package daemon

import (
	"context"
	"log/slog"
	"time"

	"drover/controlplane"

	"golang.org/x/sync/errgroup"
)

// shutdownCleanupTimeout bounds node teardown once the daemon is asked
// to exit.
const shutdownCleanupTimeout = 30 * time.Second

// Run serves the control plane on addr until ctx is cancelled, then
// cleans up every remaining node so a daemon shutdown does not leak
// child processes.
func Run(ctx context.Context, ctrl *controlplane.Controller, addr string) error {
	srv := NewServer(ctrl)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.ListenAndServe(ctx, addr) })
	g.Go(func() error {
		<-ctx.Done()

		cleanupCtx, cancel := context.WithTimeout(context.Background(), shutdownCleanupTimeout)
		defer cancel()

		for _, info := range ctrl.List(cleanupCtx) {
			if err := ctrl.Cleanup(cleanupCtx, info.Handle); err != nil {
				slog.Error("Failed to clean up node on shutdown.", "handle", info.Handle, "err", err)
			}
		}
		return nil
	})
	return g.Wait()
}
