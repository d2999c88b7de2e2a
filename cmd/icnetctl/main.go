// Command icnetctl boots built-in interaction-net programs and reduces
// them sequentially or in parallel, printing rewrite statistics. It exists
// to exercise pkg/icnet end to end the way z80opt's subcommands exercise
// pkg/search: a thin cobra tree over a library that does the real work.
package main

import (
	goflag "flag"
	"fmt"
	"os"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/golang/glog"
	"github.com/icnet/runtime/pkg/icnet"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func main() {
	pflag.CommandLine.AddGoFlagSet(goflag.CommandLine)

	rootCmd := &cobra.Command{
		Use:   "icnetctl",
		Short: "Boot and reduce built-in interaction-net programs",
	}

	var heapSize uint64
	var workers int
	var limit uint64
	var traceCap int

	runCmd := &cobra.Command{
		Use:       fmt.Sprintf("run %s", demoNames()),
		Short:     "Reduce one built-in program to normal form (or to --limit rewrites)",
		Args:      cobra.ExactArgs(1),
		ValidArgs: sortedDemoNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := lookupDemo(args[0])
			if err != nil {
				return err
			}
			fmt.Println(d.about)

			heap := icnet.NewHeap(heapSize)
			host := icnet.NewHost()

			start := time.Now()
			var stats icnet.Counters
			var answer string

			if workers <= 1 {
				n := icnet.NewNet(heap, host)
				if traceCap > 0 {
					n.EnableTrace(traceCap)
				}
				readback := d.prepare(n, host)
				if limit > 0 {
					done := n.ReduceLimit(limit)
					if done == limit {
						fmt.Printf("stopped after %d rewrites (--limit reached)\n", done)
					}
				} else {
					n.Normal()
				}
				stats = n.Stats()
				answer = readback()
			} else {
				pool := icnet.NewPool(heap, host, workers)
				if traceCap > 0 {
					pool.EnableTrace(traceCap)
				}
				readback := d.prepare(pool.Net(0), host)
				pool.ParallelNormal()
				stats = pool.Stats()
				answer = readback()
			}
			elapsed := time.Since(start)

			glog.V(1).Infof("icnetctl: %s reduced in %s across %d worker(s)", d.name, elapsed, workers)
			fmt.Printf("answer:  %s\n", answer)
			fmt.Printf("rewrites: anni=%d comm=%d eras=%d dref=%d oper=%d total=%d\n",
				stats.Anni, stats.Comm, stats.Eras, stats.Dref, stats.Oper, stats.Total())
			fmt.Printf("elapsed: %s\n", elapsed)
			return nil
		},
	}
	runCmd.Flags().Uint64Var(&heapSize, "heap", 1<<16, "arena size in cells")
	runCmd.Flags().IntVar(&workers, "workers", 1, "worker count (rounded down to a power of two); 1 runs sequentially")
	runCmd.Flags().Uint64Var(&limit, "limit", 0, "cap sequential reduction at this many rewrites (0 = run to normal form); ignored for workers > 1")
	runCmd.Flags().IntVar(&traceCap, "trace-cap", 0, "enable a ring-buffer trace of this capacity (0 = disabled)")

	var benchWorkersStr string
	benchCmd := &cobra.Command{
		Use:   fmt.Sprintf("bench %s", demoNames()),
		Short: "Reduce one built-in program at a series of worker counts and compare elapsed time",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := lookupDemo(args[0])
			if err != nil {
				return err
			}
			counts, err := parseWorkerList(benchWorkersStr)
			if err != nil {
				return err
			}
			fmt.Println(d.about)
			for _, w := range counts {
				heap := icnet.NewHeap(heapSize)
				host := icnet.NewHost()
				start := time.Now()
				var stats icnet.Counters
				if w <= 1 {
					n := icnet.NewNet(heap, host)
					d.prepare(n, host)
					n.Normal()
					stats = n.Stats()
				} else {
					pool := icnet.NewPool(heap, host, w)
					d.prepare(pool.Net(0), host)
					pool.ParallelNormal()
					stats = pool.Stats()
				}
				elapsed := time.Since(start)
				fmt.Printf("workers=%-4d rewrites=%-10d elapsed=%s\n", w, stats.Total(), elapsed)
			}
			return nil
		},
	}
	benchCmd.Flags().Uint64Var(&heapSize, "heap", 1<<16, "arena size in cells")
	benchCmd.Flags().StringVar(&benchWorkersStr, "workers", fmt.Sprintf("1,2,4,%d", runtime.NumCPU()), "comma-separated worker counts to compare")

	traceCmd := &cobra.Command{
		Use:   fmt.Sprintf("trace %s", demoNames()),
		Short: "Reduce one built-in program with tracing enabled and print the recorded events",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := lookupDemo(args[0])
			if err != nil {
				return err
			}
			heap := icnet.NewHeap(heapSize)
			host := icnet.NewHost()
			n := icnet.NewNet(heap, host)
			n.EnableTrace(traceCap)
			d.prepare(n, host)
			n.Normal()

			for i, ev := range n.TraceSnapshot() {
				fmt.Printf("[%3d] worker=%d tick=%-4d %s:%d x %s:%d\n",
					i, ev.Worker, ev.Tick, ev.ATag, ev.ALabel, ev.BTag, ev.BLabel)
			}
			return nil
		},
	}
	traceCmd.Flags().Uint64Var(&heapSize, "heap", 1<<16, "arena size in cells")
	traceCmd.Flags().IntVar(&traceCap, "trace-cap", 4096, "ring buffer capacity")

	rootCmd.AddCommand(runCmd, benchCmd, traceCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func demoNames() string {
	return "{" + strings.Join(sortedDemoNames(), "|") + "}"
}

func sortedDemoNames() []string {
	names := make([]string, 0, len(demos))
	for name := range demos {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func lookupDemo(name string) (demo, error) {
	d, ok := demos[name]
	if !ok {
		return demo{}, fmt.Errorf("unknown program %q, choose one of %s", name, demoNames())
	}
	return d, nil
}

func parseWorkerList(s string) ([]int, error) {
	var out []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		v, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid worker count %q: %w", part, err)
		}
		out = append(out, v)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no worker counts given")
	}
	return out, nil
}
