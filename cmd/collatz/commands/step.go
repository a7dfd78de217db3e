package commands

import (
	"fmt"
	"math/big"
	"strconv"

	"collatz"
	"collatz/cmd/collatz/internal/report"
)

// StepCommand implements `collatz step <n> [x]`.
func StepCommand(args []string, epoch int64) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: collatz step <n> [x]")
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

	pn := collatz.FromBinary(n)
	res, err := collatz.SequentialStep(pn, x, true)
	if err != nil {
		return err
	}

	fmt.Printf("d=%d\n", res.D)
	fmt.Printf("exchanged=%t\n", res.Exchanged)
	fmt.Printf("next=%s\n", res.Next.ToBinary().String())
	if res.Gpk != nil {
		fmt.Printf("g=%d p=%d k=%d max_carry_chain=%d\n", res.Gpk.GCount, res.Gpk.PCount, res.Gpk.KCount, res.Gpk.MaxCarryChain)
	}

	path, err := report.WriteStepSummary(x, res.D, res.Exchanged, res.Next, epoch)
	if err != nil {
		fmt.Printf("save_path=(none: %v)\n", err)
		return nil
	}
	fmt.Printf("save_path=%s\n", path)
	return nil
}
