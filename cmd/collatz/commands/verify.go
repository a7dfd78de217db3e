package commands

import (
	"context"
	"fmt"
	"math/big"
	"strconv"

	"collatz"
	"collatz/cmd/collatz/internal/report"
)

const defaultVerifyMaxSteps = 100000

// VerifyCommand implements `collatz verify <start> <end> [x]`.
func VerifyCommand(args []string, epoch int64) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: collatz verify <start> <end> [x]")
	}
	start, ok := new(big.Int).SetString(args[0], 10)
	if !ok {
		return fmt.Errorf("invalid start: %q", args[0])
	}
	end, ok := new(big.Int).SetString(args[1], 10)
	if !ok {
		return fmt.Errorf("invalid end: %q", args[1])
	}
	x := uint64(3)
	if len(args) > 2 {
		parsed, err := strconv.ParseUint(args[2], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid x: %q", args[2])
		}
		x = parsed
	}

	result, err := collatz.VerifyRangeParallelCancellable(context.Background(), start, end, x, defaultVerifyMaxSteps, func(checked uint64) {
		fmt.Printf("progress: %d checked\n", checked)
	})
	if err != nil {
		return err
	}

	fmt.Printf("total_checked=%d\n", result.TotalChecked)
	fmt.Printf("all_converged=%t\n", result.AllConverged)
	fmt.Printf("max_stopping_time=%d\n", result.MaxStoppingTime)
	if result.MaxStoppingTimeNumber != nil {
		fmt.Printf("max_stopping_time_number=%s\n", result.MaxStoppingTimeNumber.String())
	}
	fmt.Printf("failures=%d\n", len(result.Failures))

	path, err := report.WriteVerifySummary(x, start, end, defaultVerifyMaxSteps, result.GpkStats, result.AllConverged, epoch)
	if err != nil {
		fmt.Printf("save_path=(none: %v)\n", err)
		return nil
	}
	fmt.Printf("save_path=%s\n", path)
	return nil
}
