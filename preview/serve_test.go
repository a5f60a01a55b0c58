package preview

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/pkg/errors"
)

func serveDone(t *testing.T, ctx context.Context, run func(context.Context) error) chan error {
	t.Helper()
	server := &http.Server{Addr: "127.0.0.1:0", Handler: Router(NewBroadcaster())}
	done := make(chan error, 1)
	go func() { done <- Serve(ctx, server, run) }()
	return done
}

func TestServeExitsWhenLoopFails(t *testing.T) {
	loopFailure := errors.New("source has no duration")
	done := serveDone(t, context.Background(), func(context.Context) error {
		return loopFailure
	})

	select {
	case err := <-done:
		if !errors.Is(err, loopFailure) {
			t.Fatalf("expected the loop error to surface, got %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("server kept serving a dead stream after the loop exited")
	}
}

func TestServeStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := serveDone(t, ctx, func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("cancellation is a clean shutdown, got %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("server did not shut down on cancellation")
	}
}
