package main

import (
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jamiealquiza/tachymeter"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/pulse-dev/pulse/pkg/pulse"
)

func diamondCmd() *cobra.Command {
	var (
		widths []int
		iters  int
	)

	cmd := &cobra.Command{
		Use:   "diamond",
		Short: "Time writes through wide diamond graphs",
		Long: `diamond builds one source fanning out to W memos that all feed a
single sum memo watched by one effect, then times repeated source
writes. The effect must run exactly once per write regardless of
width; the run count is checked after each grid.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			tbl := table.NewWriter()
			tbl.SetTitle("Diamond")
			tbl.SetOutputMirror(os.Stdout)
			tbl.AppendHeader(table.Row{"benchmark", "nodes", "avg", "min", "p75", "p99", "max"})

			for _, w := range widths {
				calc, runs := runDiamond(w, iters)
				if runs != iters+1 {
					warn("diamond %d: effect ran %d times, expected %d", w, runs, iters+1)
				}
				tbl.AppendRows([]table.Row{
					{
						fmt.Sprintf("diamond: %d wide", w),
						humanize.Comma(int64(w + 3)),
						calc.Time.Avg,
						calc.Time.Min,
						calc.Time.P75,
						calc.Time.P99,
						calc.Time.Max,
					},
				})
			}

			tbl.Render()
			success("completed %s iterations per diamond", humanize.Comma(int64(iters)))
			return nil
		},
	}

	cmd.Flags().IntSliceVar(&widths, "widths", []int{1, 10, 100, 1000}, "diamond widths to benchmark")
	cmd.Flags().IntVar(&iters, "iters", 100, "timed writes per diamond")

	return cmd
}

// runDiamond times iters writes through a w-wide diamond and returns the
// effect's total run count, including the run at creation.
func runDiamond(w, iters int) (*tachymeter.Metrics, int) {
	tach := tachymeter.New(&tachymeter.Config{Size: iters})

	rt := pulse.NewRuntime()
	src := pulse.NewSignal(rt, 1)

	arms := make([]*pulse.Memo[int], w)
	for i := 0; i < w; i++ {
		arms[i] = pulse.NewMemo(rt, func() int {
			return src.Get() + 1
		})
	}

	sum := pulse.NewMemo(rt, func() int {
		total := 0
		for _, arm := range arms {
			total += arm.Get()
		}
		return total
	})

	runs := 0
	pulse.NewEffect(rt, func() pulse.Cleanup {
		_ = sum.Get()
		runs++
		return nil
	})

	for i := 0; i < iters; i++ {
		start := time.Now()
		src.Set(src.Peek() + 1)
		tach.AddTime(time.Since(start))
	}

	return tach.Calc(), runs
}
