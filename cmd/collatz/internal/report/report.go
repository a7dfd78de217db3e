// Package report writes the CLI's output files: a UTF-8 key-value
// summary and, for traces, a companion CSV of per-step fields (step, n,
// d, exchanged and, when GPK collection is on, the G/P/K counts and max
// carry chain). The CSV has no predicate columns.
package report

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"collatz/internal/gpk"
	"collatz/internal/pairnum"
	"collatz/internal/trajectory"
)

// outputDir is created on demand; the core itself never touches the
// filesystem, only this CLI-local reporting layer does.
const outputDir = "output"

// Mode names the CLI subcommand that produced a report, used in file
// naming.
type Mode string

const (
	ModeStep   Mode = "step"
	ModeTrace  Mode = "trace"
	ModeVerify Mode = "verify"
)

// fileBase builds the shared file-name stem: mode, x, an abbreviated
// n-or-range, max_steps, a GPK flag, and a POSIX-epoch-derived
// YYYYDDD_HHMMSS timestamp (not a calendar library, per the output
// contract).
func fileBase(mode Mode, x uint64, abbreviated string, maxSteps uint64, gpkFlag bool, epoch int64) string {
	stamp := epochStamp(epoch)
	gpkPart := "nogpk"
	if gpkFlag {
		gpkPart = "gpk"
	}
	return fmt.Sprintf("%s_x%d_%s_m%s_%s_%s", mode, x, abbreviated, humanize.Comma(int64(maxSteps)), gpkPart, stamp)
}

// epochStamp formats a Unix timestamp as YYYYDDD_HHMMSS by hand,
// deliberately not routing through time.Format's calendar machinery for
// the date component: DDD is the 1-indexed day-of-year computed from a
// manual days-in-month table, honoring the output contract's "not a
// calendar library" requirement.
func epochStamp(epoch int64) string {
	const secondsPerDay = 86400
	days := epoch / secondsPerDay
	secOfDay := epoch % secondsPerDay
	if secOfDay < 0 {
		secOfDay += secondsPerDay
		days--
	}
	hh := secOfDay / 3600
	mm := (secOfDay % 3600) / 60
	ss := secOfDay % 60

	year, dayOfYear := civilFromEpochDay(days)
	return fmt.Sprintf("%04d%03d_%02d%02d%02d", year, dayOfYear, hh, mm, ss)
}

// civilFromEpochDay converts a day count since 1970-01-01 into a
// (year, 1-indexed day-of-year) pair using plain Gregorian leap-year
// arithmetic, with no time package calendar calls.
func civilFromEpochDay(days int64) (year int, dayOfYear int) {
	year = 1970
	for {
		length := int64(365)
		if isLeapYear(year) {
			length = 366
		}
		if days < length {
			return year, int(days) + 1
		}
		days -= length
		year++
	}
}

func isLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// EnsureOutputDir creates ./output/ if missing.
func EnsureOutputDir() error {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return errors.Wrap(err, "creating output directory")
	}
	return nil
}

// WriteStepSummary writes a key-value summary for a single step.
func WriteStepSummary(x uint64, d uint64, exchanged bool, next pairnum.PairNumber, epoch int64) (string, error) {
	if err := EnsureOutputDir(); err != nil {
		return "", err
	}
	abbrev := abbreviateStringer(next.ToBinary())
	name := fileBase(ModeStep, x, abbrev, 0, false, epoch) + ".txt"
	path := filepath.Join(outputDir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", errors.Wrap(err, "creating step summary")
	}
	defer f.Close()

	runID := uuid.New().String()
	fmt.Fprintf(f, "run_id=%s\n", runID)
	fmt.Fprintf(f, "x=%d\n", x)
	fmt.Fprintf(f, "d=%d\n", d)
	fmt.Fprintf(f, "exchanged=%t\n", exchanged)
	fmt.Fprintf(f, "next=%s\n", next.ToBinary().String())
	return path, nil
}

// WriteTraceReport writes both the key-value summary and the
// companion per-step CSV for a trajectory result.
func WriteTraceReport(ctx context.Context, x uint64, result trajectory.Result, maxSteps uint64, collectGpk bool, epoch int64) (summaryPath, csvPath string, err error) {
	if err := EnsureOutputDir(); err != nil {
		return "", "", err
	}
	abbrev := abbreviateStringer(result.Start)
	base := fileBase(ModeTrace, x, abbrev, maxSteps, collectGpk, epoch)
	runID := uuid.New().String()

	summaryPath = filepath.Join(outputDir, base+".txt")
	sf, err := os.Create(summaryPath)
	if err != nil {
		return "", "", errors.Wrap(err, "creating trace summary")
	}
	defer sf.Close()
	fmt.Fprintf(sf, "run_id=%s\n", runID)
	fmt.Fprintf(sf, "x=%d\n", x)
	fmt.Fprintf(sf, "start=%s\n", result.Start.String())
	fmt.Fprintf(sf, "total_steps=%d\n", result.TotalSteps)
	fmt.Fprintf(sf, "reached_one=%t\n", result.ReachedOne)
	fmt.Fprintf(sf, "max_value_bits=%d\n", result.MaxValue.BitLen())

	csvPath = filepath.Join(outputDir, base+".csv")
	cf, err := os.Create(csvPath)
	if err != nil {
		return summaryPath, "", errors.Wrap(err, "creating trace csv")
	}
	defer cf.Close()

	w := csv.NewWriter(cf)
	defer w.Flush()

	header := []string{"step", "n", "d", "exchanged"}
	if collectGpk {
		header = append(header, "G", "P", "K", "max_carry_chain")
	}
	if err := w.Write(header); err != nil {
		return summaryPath, csvPath, errors.Wrap(err, "writing csv header")
	}

	for i, step := range result.Steps {
		select {
		case <-ctx.Done():
			return summaryPath, csvPath, nil
		default:
		}
		row := []string{
			strconv.Itoa(i),
			step.Pair.ToBinary().String(),
			strconv.FormatUint(step.D, 10),
			strconv.FormatBool(step.Exchanged),
		}
		if collectGpk && step.Gpk != nil {
			row = append(row,
				strconv.FormatUint(step.Gpk.GCount, 10),
				strconv.FormatUint(step.Gpk.PCount, 10),
				strconv.FormatUint(step.Gpk.KCount, 10),
				strconv.FormatUint(step.Gpk.MaxCarryChain, 10),
			)
		}
		if err := w.Write(row); err != nil {
			return summaryPath, csvPath, errors.Wrap(err, "writing csv row")
		}
	}
	return summaryPath, csvPath, nil
}

// WriteVerifySummary writes a key-value summary for a range-verify run.
func WriteVerifySummary(x uint64, start, end fmt.Stringer, maxSteps uint64, stats *gpk.Stats, allConverged bool, epoch int64) (string, error) {
	if err := EnsureOutputDir(); err != nil {
		return "", err
	}
	abbrev := fmt.Sprintf("%s-%s", abbreviateStringer(start), abbreviateStringer(end))
	name := fileBase(ModeVerify, x, abbrev, maxSteps, stats != nil, epoch) + ".txt"
	path := filepath.Join(outputDir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", errors.Wrap(err, "creating verify summary")
	}
	defer f.Close()

	fmt.Fprintf(f, "run_id=%s\n", uuid.New().String())
	fmt.Fprintf(f, "x=%d\n", x)
	fmt.Fprintf(f, "start=%s\n", start.String())
	fmt.Fprintf(f, "end=%s\n", end.String())
	fmt.Fprintf(f, "all_converged=%t\n", allConverged)
	if stats != nil {
		fmt.Fprintf(f, "total_g=%d\n", stats.GCount)
		fmt.Fprintf(f, "total_p=%d\n", stats.PCount)
		fmt.Fprintf(f, "total_k=%d\n", stats.KCount)
	}
	return path, nil
}

func abbreviateStringer(s fmt.Stringer) string {
	str := s.String()
	const maxLen = 12
	if len(str) <= maxLen {
		return str
	}
	return str[:maxLen/2] + "_" + str[len(str)-maxLen/2:]
}
