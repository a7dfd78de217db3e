package commands

import (
	"context"
	"fmt"
	"math/big"
	"os"
	"strconv"

	"github.com/kr/pretty"

	"collatz"
	"collatz/cmd/collatz/internal/report"
)

const defaultTraceMaxSteps = 100000

// TraceCommand implements `collatz trace <n> [x] [--debug]`.
func TraceCommand(args []string, epoch int64) error {
	debug := false
	args = filterFlag(args, "--debug", &debug)

	if len(args) < 1 {
		return fmt.Errorf("usage: collatz trace <n> [x] [--debug]")
	}
	n, ok := new(big.Int).SetString(args[0], 10)
	if !ok {
		return fmt.Errorf("invalid n: %q", args[0])
	}
	x := uint64(3)
	if len(args) > 1 {
		parsed, err := strconv.ParseUint(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid x: %q", args[1])
		}
		x = parsed
	}

	result, err := collatz.TraceTrajectory(n, x, defaultTraceMaxSteps)
	if err != nil {
		return err
	}
	if debug {
		fmt.Fprintf(os.Stderr, "%# v\n", pretty.Formatter(result))
	}

	fmt.Printf("total_steps=%d\n", result.TotalSteps)
	fmt.Printf("reached_one=%t\n", result.ReachedOne)
	fmt.Printf("max_value_bits=%d\n", result.MaxValue.BitLen())

	summaryPath, csvPath, err := report.WriteTraceReport(context.Background(), x, result, defaultTraceMaxSteps, true, epoch)
	if err != nil {
		fmt.Printf("save_path=(none: %v)\n", err)
		return nil
	}
	fmt.Printf("save_path=%s\n", summaryPath)
	fmt.Printf("csv_path=%s\n", csvPath)
	return nil
}
