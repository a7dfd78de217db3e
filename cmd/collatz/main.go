// cmd/collatz/main.go
package main

import (
	"fmt"
	"log"
	"os"
	"runtime"
	"time"

	"github.com/mattn/go-isatty"
	"golang.org/x/sys/cpu"

	"collatz/cmd/collatz/commands"
	"collatz/cmd/collatz/internal/locale"
)

const version = "1.0.0"

// commandAliases mirrors the teacher CLI's short-form aliasing.
var commandAliases = map[string]string{
	"s": "step",
	"t": "trace",
	"v": "verify",
}

func main() {
	if runtime.GOARCH == "amd64" && !cpu.X86.HasAVX2 {
		fmt.Fprintln(os.Stderr, locale.NoAVX2Message(locale.DetectLocale()))
		os.Exit(1)
	}

	args := os.Args[1:]
	if len(args) == 0 {
		showUsage()
		return
	}

	cmd := args[0]
	if alias, ok := commandAliases[cmd]; ok {
		cmd = alias
	}

	if cmd == "--help" || cmd == "-h" || cmd == "help" {
		showUsage()
		return
	}
	if cmd == "--version" || cmd == "-v" || cmd == "version" {
		fmt.Println(version)
		return
	}

	epoch := time.Now().Unix()

	var err error
	switch cmd {
	case "step":
		err = commands.StepCommand(args[1:], epoch)
	case "trace":
		err = commands.TraceCommand(args[1:], epoch)
	case "verify":
		err = commands.VerifyCommand(args[1:], epoch)
	default:
		showUsage()
		return
	}
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func showUsage() {
	out := os.Stdout
	if !isatty.IsTerminal(out.Fd()) {
		fmt.Fprintln(out, "collatz: bit-parallel generalized-Collatz scan engine")
	}
	fmt.Fprintln(out, "Usage:")
	fmt.Fprintln(out, "  collatz step <n> [x]")
	fmt.Fprintln(out, "  collatz trace <n> [x]")
	fmt.Fprintln(out, "  collatz verify <start> <end> [x]")
}
