package preview

import (
	"context"
	"net/http"
	"time"

	"github.com/pkg/errors"
)

const shutdownGrace = 2 * time.Second

// Serve runs the preview loop alongside the HTTP server. The server shuts
// down as soon as the context is cancelled or the loop exits, so a fatal
// loop error surfaces to the caller instead of leaving a dead stream being
// served.
func Serve(ctx context.Context, server *http.Server, run func(context.Context) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	loopErr := make(chan error, 1)
	go func() {
		loopErr <- run(ctx)
		cancel()
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, stop := context.WithTimeout(context.Background(), shutdownGrace)
		defer stop()
		server.Shutdown(shutdownCtx)
	}()

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	if err := <-loopErr; err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
