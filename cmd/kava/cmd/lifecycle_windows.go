//go:build windows

package cmd

import "context"

// forwardLifecycle does nothing on Windows, which has no job control signals
func forwardLifecycle(context.Context, appLifecycle) {}
