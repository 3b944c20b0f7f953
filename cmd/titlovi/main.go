// Command titlovi searches and downloads subtitles from Titlovi.com.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/getsentry/sentry-go"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := newRootCommand().ExecuteContext(ctx)
	stop()

	if err != nil && !errors.Is(err, context.Canceled) {
		sentry.CaptureException(err)
		fmt.Fprintln(os.Stderr, err)
	}
	flushSentry()
	if err != nil {
		os.Exit(1)
	}
}
