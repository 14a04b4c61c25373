package main

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"

	"pollrt/internal/app"
	"pollrt/internal/executor"
)

var (
	headerColor = color.New(color.FgCyan, color.Bold)
	okColor     = color.New(color.FgGreen)
	warnColor   = color.New(color.FgYellow)
	dimColor    = color.New(color.Faint)
)

// summaryRuns caps the history lines printed after a run.
const summaryRuns = 10

func renderSummary(out io.Writer, snap executor.Snapshot, reason app.StopReason) {
	fmt.Fprintln(out, headerColor.Sprint("pollrt summary"))

	status := okColor.Sprint(string(reason))
	if reason != app.StopDrained || snap.Live > 0 {
		status = warnColor.Sprint(string(reason))
	}
	fmt.Fprintf(out, "  stop:      %s\n", status)
	fmt.Fprintf(out, "  tasks:     %d spawned, %d completed, %d live\n", snap.Spawned, snap.Completed, snap.Live)
	fmt.Fprintf(out, "  polls:     %d (%d stale)\n", snap.Polls, snap.StalePolls)
	if snap.Abandoned > 0 {
		fmt.Fprintf(out, "  abandoned: %s\n", warnColor.Sprint(snap.Abandoned))
	}
	fmt.Fprintf(out, "  queue cap: %d\n", snap.QueueCap)

	h := snap.History
	if len(h) > summaryRuns {
		h = h[len(h)-summaryRuns:]
	}
	for _, item := range h {
		fmt.Fprintf(out, "  %s %-16s %s\n",
			okColor.Sprint("✓"),
			item.Name,
			dimColor.Sprintf("%d polls in %s", item.Polls, item.Duration.Round(time.Millisecond)),
		)
	}
}
