package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kgrange/thumb-emulator/config"
	"github.com/kgrange/thumb-emulator/debugger"
	"github.com/kgrange/thumb-emulator/service"
	"github.com/kgrange/thumb-emulator/vm"
)

// Version information - can be overridden at build time with:
// go build -ldflags "-X main.Version=v1.2.3"
var (
	Version = "dev"     // Version number (set by git tag at build time)
	Commit  = "unknown" // Git commit hash
	Date    = "unknown" // Build date
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "thumb-emulator",
		Short:         "Assembler and interpreter for a Thumb-2 assembly subset",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.AddCommand(runCommand())
	rootCmd.AddCommand(checkCommand())
	rootCmd.AddCommand(debugCommand())
	rootCmd.AddCommand(versionCommand())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// normalizeDir ensures the project path ends with the path separator, the
// form the compile command expects.
func normalizeDir(dir string) string {
	if !strings.HasSuffix(dir, string(os.PathSeparator)) {
		return dir + string(os.PathSeparator)
	}
	return dir
}

func runCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "run <dir>",
		Short: "Compile the project in <dir> and run it to completion",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			host := service.NewHost(config.LoadSettings())
			if errs := host.Compile(normalizeDir(args[0]), nil); errs != nil {
				return fmt.Errorf("compile failed:\n%s", strings.Join(errs, "\n"))
			}

			stdin := bufio.NewReader(os.Stdin)
			var stdInput *int32
			for {
				stdOut, input, status, err := host.Run(stdInput)
				fmt.Print(stdOut)
				if err != nil {
					return err
				}
				if status == vm.DebugEnd {
					return nil
				}
				value, readErr := readInput(stdin, input)
				if readErr != nil {
					return readErr
				}
				stdInput = &value
			}
		},
	}
}

// readInput services a getchar/getnumber request from the terminal.
func readInput(stdin *bufio.Reader, input vm.InputStatus) (int32, error) {
	switch input {
	case vm.InputGetChar:
		r, _, err := stdin.ReadRune()
		if err != nil {
			return 0, fmt.Errorf("reading input character: %w", err)
		}
		return int32(r), nil
	case vm.InputGetNumber:
		for {
			text, err := stdin.ReadString('\n')
			if err != nil {
				return 0, fmt.Errorf("reading input number: %w", err)
			}
			n, convErr := strconv.ParseInt(strings.TrimSpace(text), 10, 32)
			if convErr == nil {
				return int32(n), nil
			}
			fmt.Println("not a number, try again")
		}
	}
	return 0, fmt.Errorf("unexpected input request")
}

func checkCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check <dir>",
		Short: "Compile the project in <dir> and report diagnostics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			host := service.NewHost(config.LoadSettings())
			if errs := host.Compile(normalizeDir(args[0]), nil); errs != nil {
				for _, e := range errs {
					fmt.Fprintln(os.Stderr, e)
				}
				return fmt.Errorf("%d error(s)", len(errs))
			}
			fmt.Println("OK")
			return nil
		},
	}
}

func debugCommand() *cobra.Command {
	var breakFlags []string

	cmd := &cobra.Command{
		Use:   "debug <dir>",
		Short: "Open the interactive debugger on the project in <dir>",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			breakpoints := debugger.NewBreakpointManager()
			for _, spec := range breakFlags {
				file, line, err := parseBreakSpec(spec)
				if err != nil {
					return err
				}
				breakpoints.Add(file, line)
			}

			host := service.NewHost(config.LoadSettings())
			tui := debugger.NewTUI(host, breakpoints, normalizeDir(args[0]))
			return tui.Run()
		},
	}
	cmd.Flags().StringArrayVar(&breakFlags, "break", nil, "breakpoint as file.s:line (repeatable)")
	return cmd
}

// parseBreakSpec splits a file.s:line breakpoint flag.
func parseBreakSpec(spec string) (string, int, error) {
	idx := strings.LastIndex(spec, ":")
	if idx <= 0 {
		return "", 0, fmt.Errorf("invalid breakpoint %q, expected file.s:line", spec)
	}
	line, err := strconv.Atoi(spec[idx+1:])
	if err != nil || line < 1 {
		return "", 0, fmt.Errorf("invalid breakpoint line in %q", spec)
	}
	return spec[:idx], line, nil
}

func versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("thumb-emulator %s\n", Version)
			if Commit != "unknown" {
				fmt.Printf("Commit: %s\n", Commit)
			}
			if Date != "unknown" {
				fmt.Printf("Built: %s\n", Date)
			}
		},
	}
}
