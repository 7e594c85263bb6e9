package main

import (
	"fmt"
	"os"
	"runtime/pprof"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jamiealquiza/tachymeter"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/pulse-dev/pulse/pkg/pulse"
)

func propagateCmd() *cobra.Command {
	var (
		widths     []int
		heights    []int
		iters      int
		cpuprofile string
	)

	cmd := &cobra.Command{
		Use:   "propagate",
		Short: "Time writes through width x height memo grids",
		Long: `propagate builds one source signal feeding W independent chains of
H memos each, with an effect at the end of every chain, then times
repeated source writes.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cpuprofile != "" {
				f, err := os.Create(cpuprofile)
				if err != nil {
					return fmt.Errorf("create profile: %w", err)
				}
				defer f.Close()
				if err := pprof.StartCPUProfile(f); err != nil {
					return fmt.Errorf("start profile: %w", err)
				}
				defer pprof.StopCPUProfile()
				info("writing CPU profile to %s", cpuprofile)
			}

			tbl := table.NewWriter()
			tbl.SetTitle("Propagate")
			tbl.SetOutputMirror(os.Stdout)
			tbl.AppendHeader(table.Row{"benchmark", "nodes", "avg", "min", "p75", "p99", "max"})

			for _, w := range widths {
				for _, h := range heights {
					calc := runPropagate(w, h, iters)
					tbl.AppendRows([]table.Row{
						{
							fmt.Sprintf("propagate: %d * %d", w, h),
							humanize.Comma(int64(w*h + w + 1)),
							calc.Time.Avg,
							calc.Time.Min,
							calc.Time.P75,
							calc.Time.P99,
							calc.Time.Max,
						},
					})
				}
			}

			tbl.Render()
			success("completed %s iterations per grid", humanize.Comma(int64(iters)))
			return nil
		},
	}

	cmd.Flags().IntSliceVar(&widths, "widths", []int{1, 10, 100, 1000}, "chain counts to benchmark")
	cmd.Flags().IntSliceVar(&heights, "heights", []int{1, 10, 100, 1000}, "chain depths to benchmark")
	cmd.Flags().IntVar(&iters, "iters", 100, "timed writes per grid")
	cmd.Flags().StringVar(&cpuprofile, "cpuprofile", "", "write a CPU profile to this file")

	return cmd
}

// runPropagate times iters writes through a w-by-h memo grid.
func runPropagate(w, h, iters int) *tachymeter.Metrics {
	tach := tachymeter.New(&tachymeter.Config{Size: iters})

	rt := pulse.NewRuntime()
	src := pulse.NewSignal(rt, 1)

	for i := 0; i < w; i++ {
		last := src.Get
		for j := 0; j < h; j++ {
			prev := last
			m := pulse.NewMemo(rt, func() int {
				return prev() + 1
			})
			last = m.Get
		}

		tail := last
		pulse.NewEffect(rt, func() pulse.Cleanup {
			_ = tail()
			return nil
		})
	}

	for i := 0; i < iters; i++ {
		start := time.Now()
		src.Set(src.Peek() + 1)
		tach.AddTime(time.Since(start))
	}

	return tach.Calc()
}
