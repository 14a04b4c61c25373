package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"pollrt/internal/executor"
)

var demoWait time.Duration

func init() {
	demoCmd.Flags().DurationVar(&demoWait, "wait", 2*time.Second, "how long the task sleeps between the two lines")
}

// demoCmd spawns a single task that prints, sleeps on a Timer and prints
// again, then runs the executor until it drains.
var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: `Print "howdy!", wait on a timer, print "done!"`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		out := cmd.OutOrStdout()
		exec, spawner := executor.New(executor.DefaultQueueSize)
		spawner.Spawn(executor.Sequence(
			executor.Do(func() { fmt.Fprintln(out, "howdy!") }),
			executor.Sleep(demoWait),
			executor.Do(func() { fmt.Fprintln(out, "done!") }),
		))
		// Last spawner gone: Run returns once the task completes.
		spawner.Close()
		return exec.Run()
	},
}
