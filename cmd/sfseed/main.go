package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/sfseed/sfseed/internal/interfaces/cli"
	pkgErrors "github.com/sfseed/sfseed/pkg/errors"
)

// main wires the signal handler around the command. The first interrupt
// requests a graceful stop at the next stage boundary; the second one
// exits immediately.
//
// Exit codes: 0 on completion (per-record failures included), 2 on
// invalid input, 3 on authentication failure, 1 otherwise.
func main() {
	var abort atomic.Bool

	sigs := make(chan os.Signal, 2)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigs
		abort.Store(true)
		fmt.Fprintln(os.Stderr, "\nStopping after the current stage; interrupt again to force exit")
		<-sigs
		os.Exit(130)
	}()

	if err := cli.Execute(context.Background(), &abort); err != nil {
		fmt.Fprintf(os.Stderr, "Error [%s]: %v\n", pkgErrors.GetErrorCode(err), err)
		switch {
		case pkgErrors.IsValidation(err):
			os.Exit(2)
		case pkgErrors.IsAuth(err):
			os.Exit(3)
		}
		os.Exit(1)
	}
}
