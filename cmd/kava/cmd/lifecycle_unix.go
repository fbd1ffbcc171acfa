//go:build !windows

package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/PizzaHomicide/kava/internal/log"
)

// forwardLifecycle pauses analytics while kava is stopped by job control (ctrl+z) and resumes it on SIGCONT.
// Catching SIGTSTP replaces the default stop, so the process stops itself once the tracker has been told.
func forwardLifecycle(ctx context.Context, app appLifecycle) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGTSTP, syscall.SIGCONT)

	f := &lifecycleForwarder{app: app}
	go func() {
		defer signal.Stop(sigs)
		for {
			select {
			case <-ctx.Done():
				return
			case sig := <-sigs:
				switch sig {
				case syscall.SIGTSTP:
					log.Info("Suspended, pausing analytics")
					f.suspend()
					if err := syscall.Kill(os.Getpid(), syscall.SIGSTOP); err != nil {
						log.Warn("Failed to stop process", "error", err)
					}
				case syscall.SIGCONT:
					log.Info("Continued, resuming analytics")
					f.resume()
				}
			}
		}
	}()
}
