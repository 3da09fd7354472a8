// ═══════════════════════════════════════════════════════════════════════════
// ddrsim — DDR5 memory-controller scheduler simulator, CLI entry point
// ═══════════════════════════════════════════════════════════════════════════

package main

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	dimm "github.com/kalmaniii/DDR5-Memory-Controller"
	"github.com/kalmaniii/DDR5-Memory-Controller/proto/policy"
	"github.com/kalmaniii/DDR5-Memory-Controller/queue"
	"github.com/kalmaniii/DDR5-Memory-Controller/trace"
)

// errShowUsage is a sentinel RunE returns for -? to tell main "usage was
// requested, exit non-zero".
var errShowUsage = errors.New("usage requested")

func main() {
	var inputFile, outputFile string
	var schedulingLevel int

	rootCmd := &cobra.Command{
		Use:   "ddrsim",
		Short: "Cycle-accurate DDR5 memory-controller scheduler simulator",
		RunE: func(cmd *cobra.Command, args []string) error {
			help, _ := cmd.Flags().GetBool("help")
			usage, _ := cmd.Flags().GetBool("usage")
			if help || usage {
				return errShowUsage
			}
			if schedulingLevel < 0 || schedulingLevel > 3 {
				return fmt.Errorf("invalid scheduling policy: %d. Must be between 0 and 3", schedulingLevel)
			}
			return runSimulation(inputFile, outputFile, policy.Level(schedulingLevel))
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.Flags().StringVarP(&inputFile, "input", "i", "trace.txt", "input trace file")
	rootCmd.Flags().StringVarP(&outputFile, "output", "o", "dram.txt", "output command log file")
	rootCmd.Flags().IntVarP(&schedulingLevel, "scheduling", "s", 0, "scheduling policy level (0-3)")
	// cobra answers -h/--help itself before RunE runs (it prints help and
	// Execute returns nil), so main checks the flag afterwards and exits
	// non-zero; -? goes through RunE and errShowUsage.
	rootCmd.Flags().BoolP("help", "h", false, "print usage and exit")
	rootCmd.Flags().BoolP("usage", "?", false, "print usage and exit")

	err := rootCmd.Execute()
	if help, _ := rootCmd.Flags().GetBool("help"); help {
		os.Exit(1)
	}
	if errors.Is(err, errShowUsage) {
		_ = rootCmd.Usage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runSimulation(inputFile, outputFile string, level policy.Level) error {
	in, err := os.Open(inputFile)
	if err != nil {
		return fmt.Errorf("opening input file: %w", err)
	}
	defer in.Close()

	out, err := os.Create(outputFile)
	if err != nil {
		return fmt.Errorf("opening output file: %w", err)
	}
	defer out.Close()

	log.Printf("scheduling policy level: %d", level)
	log.Printf("input file: %s", inputFile)
	log.Printf("output file: %s", outputFile)

	cfg := dimm.DefaultConfig()
	d := dimm.New(cfg, out)
	q := queue.New[dimm.Request]()
	reader := trace.NewReader(in)
	trcReload := cfg.BankTiming[dimm.TRC]

	var pending *dimm.Request
	cycle := uint64(0)

	for {
		if pending == nil && !reader.Done() {
			entry, ok, err := reader.Next()
			if err != nil {
				return fmt.Errorf("reading trace: %w", err)
			}
			if ok {
				req := dimm.NewRequest(entry.Cycle, 0, entry.Op, 0, entry.Address)
				pending = &req
			}
		}

		if cycle%2 == 0 && !q.IsEmpty() {
			if err := policy.Advance(d, q, cycle, level); err != nil {
				return err
			}
			d.Tick()
			if err := policy.IncrementAging(q); err != nil {
				return err
			}
		}

		if pending != nil && pending.Time <= cycle && !q.IsFull() {
			if err := policy.Admit(q, *pending, level, trcReload); err != nil {
				return err
			}
			pending = nil
		}

		if reader.Done() && q.IsEmpty() && pending == nil {
			log.Printf("end of simulation at cycle %d", cycle)
			break
		}

		if q.IsEmpty() && pending != nil && pending.Time > cycle {
			log.Printf("advancing clock to next arrival at cycle %d", pending.Time)
			cycle = pending.Time
		} else {
			cycle++
		}
	}

	if err := d.Emitter.Flush(); err != nil {
		return fmt.Errorf("flushing output: %w", err)
	}
	return nil
}
