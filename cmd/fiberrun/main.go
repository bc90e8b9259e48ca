// File: cmd/fiberrun/main.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// fiberrun is an optional process-boundary entry point: it installs
// SIGPIPE-ignore and SIGINT/SIGTERM->RequestShutdown handlers, spawns a
// demonstration entry fiber, and runs the scheduler to completion. The
// exit status is 0 once the loop stops and 1 if the runtime cannot be
// created or the command line is invalid; the entry fiber has no return
// value, so it does not set the exit status. A real host embeds Runtime directly instead of
// shelling out to this binary; it exists so the runtime is exercisable
// from the command line.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/momentics/fiberloop"
	"github.com/momentics/fiberloop/future"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var sleepMillis int

	cmd := &cobra.Command{
		Use:   "fiberrun",
		Short: "Run the fiberloop scheduler with a demonstration fiber",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(time.Duration(sleepMillis) * time.Millisecond)
		},
	}
	cmd.Flags().IntVar(&sleepMillis, "sleep-ms", 100, "duration the demo fiber awaits before exiting")
	return cmd
}

func run(sleep time.Duration) error {
	rt, err := fiberloop.New(fiberloop.DefaultConfig())
	if err != nil {
		return fmt.Errorf("fiberrun: runtime init: %w", err)
	}

	signal.Ignore(syscall.SIGPIPE)
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logrus.Info("fiberrun: shutdown signal received")
		rt.RequestShutdown()
	}()

	rt.Spawn(func() {
		future.NewTimeout(sleep).Await(rt.Scheduler())
		logrus.WithField("slept", sleep).Info("fiberrun: demo fiber done")
	})

	rt.Run()
	return nil
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
