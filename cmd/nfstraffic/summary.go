package main

import (
	"io"
	"time"

	"github.com/FairForge/nfstraffic/internal/traffic"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// renderSummary writes one row per worker of a finished run.
func renderSummary(w io.Writer, reports []traffic.WorkerReport) error {
	p := message.NewPrinter(language.English)

	_, _ = color.New(color.Bold).Fprintln(w, "TRAFFIC SUMMARY")
	if len(reports) == 0 {
		_, _ = color.New(color.FgYellow).Fprintln(w, "no workers ran")
		return nil
	}

	table := tablewriter.NewWriter(w)
	table.Header("Worker", "Mode", "State", "Passes", "Failures", "Bytes", "Elapsed", "Bytes/sec")

	var total int64
	for _, r := range reports {
		state := r.Loop.State.String()
		if r.Err != nil {
			state = "failed: " + r.Err.Error()
		}
		var bps int64
		if secs := r.Loop.Elapsed.Seconds(); secs > 0 {
			bps = int64(float64(r.Loop.Bytes) / secs)
		}
		total += r.Loop.Bytes

		_ = table.Append(
			r.Identity.Name(),
			string(r.Mode),
			state,
			p.Sprintf("%d", r.Loop.Passes),
			p.Sprintf("%d", r.Loop.Failures),
			p.Sprintf("%d", r.Loop.Bytes),
			r.Loop.Elapsed.Round(time.Millisecond).String(),
			p.Sprintf("%d", bps),
		)
	}

	if err := table.Render(); err != nil {
		return err
	}

	_, _ = color.New(color.FgGreen).Fprintln(w, p.Sprintf("Total bytes: %d", total))
	return nil
}
